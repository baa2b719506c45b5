package chat_test

import (
	"strings"
	"testing"

	"github.com/callegarimattia/battleship/internal/chat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftValidateText(t *testing.T) {
	t.Parallel()

	ok := chat.Draft{Kind: chat.KindText, Text: strings.Repeat("a", 240)}
	msg, err := ok.Validate()
	require.NoError(t, err)
	assert.Len(t, []rune(msg.Text), 240)

	tooLong := chat.Draft{Kind: chat.KindText, Text: strings.Repeat("a", 241)}
	_, err = tooLong.Validate()
	assert.ErrorIs(t, err, chat.ErrInvalidPayload)
}

func TestDraftValidateEmojiAndGif(t *testing.T) {
	t.Parallel()

	_, err := chat.Draft{Kind: chat.KindEmoji, Emoji: "gg"}.Validate()
	require.NoError(t, err)

	_, err = chat.Draft{Kind: chat.KindEmoji, Emoji: "not-allowed"}.Validate()
	assert.ErrorIs(t, err, chat.ErrInvalidPayload)

	_, err = chat.Draft{Kind: chat.KindGif, GifID: "gif-1"}.Validate()
	require.NoError(t, err)

	_, err = chat.Draft{Kind: chat.KindGif, GifID: "unknown"}.Validate()
	assert.ErrorIs(t, err, chat.ErrInvalidPayload)
}

func TestHistoryEvictsOldest(t *testing.T) {
	t.Parallel()

	h := &chat.History{}
	for i := 0; i < chat.MaxHistory+10; i++ {
		h.Append(chat.Message{Kind: chat.KindSystem, Text: "m"})
	}
	assert.Len(t, h.Messages(), chat.MaxHistory)
}

func TestDraftValidateStripsControlChars(t *testing.T) {
	t.Parallel()

	msg, err := chat.Draft{Kind: chat.KindText, Text: "hi\x00there"}.Validate()
	require.NoError(t, err)
	assert.Equal(t, "hithere", msg.Text)
}

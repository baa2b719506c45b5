package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a cross-instance Store backed by Redis. Waiting order is
// kept in a sorted set scored by JoinedAt (unix nanos); entry bodies live in
// a hash; parked entries are plain keys with a TTL. TakeMatch and
// TakeTimedOut are implemented as Lua scripts so the read-then-delete pair
// is atomic across server instances, per spec.md's server-side-scripting
// requirement for these two operations.
type RedisStore struct {
	rdb    *redis.Client
	prefix string

	takeMatchSHA    string
	takeTimedOutSHA string
}

const (
	waitingZSet    = "queue:joined"
	waitingHash    = "queue:entries"
	parkedKeyFmt   = "queue:parked:%s"
	tokenIndexFmt  = "queue:token:%s"
	takeMatchLua   = `
local zkey, hkey, tokenfmt = KEYS[1], KEYS[2], ARGV[1]
local pair = redis.call('ZRANGE', zkey, 0, 1)
if #pair < 2 then
	return {}
end
local a = redis.call('HGET', hkey, pair[1])
local b = redis.call('HGET', hkey, pair[2])
redis.call('ZREM', zkey, pair[1], pair[2])
redis.call('HDEL', hkey, pair[1], pair[2])
if a then
	redis.call('DEL', string.format(tokenfmt, cjson.decode(a).token))
end
if b then
	redis.call('DEL', string.format(tokenfmt, cjson.decode(b).token))
end
return {a, b}
`
	takeTimedOutLua = `
local zkey, hkey, tokenfmt, cutoff, limit = KEYS[1], KEYS[2], ARGV[1], ARGV[2], tonumber(ARGV[3])
local ids = redis.call('ZRANGEBYSCORE', zkey, '-inf', cutoff, 'LIMIT', 0, limit)
if #ids == 0 then
	return {}
end
local out = {}
for _, id in ipairs(ids) do
	local body = redis.call('HGET', hkey, id)
	if body then
		table.insert(out, body)
		redis.call('DEL', string.format(tokenfmt, cjson.decode(body).token))
	end
	redis.call('ZREM', zkey, id)
	redis.call('HDEL', hkey, id)
end
return out
`
)

// NewRedisStore creates a RedisStore and preloads its Lua scripts.
func NewRedisStore(ctx context.Context, rdb *redis.Client, keyPrefix string) (*RedisStore, error) {
	s := &RedisStore{rdb: rdb, prefix: keyPrefix}

	sha, err := rdb.ScriptLoad(ctx, takeMatchLua).Result()
	if err != nil {
		return nil, fmt.Errorf("queue: load takeMatch script: %w", err)
	}
	s.takeMatchSHA = sha

	sha, err = rdb.ScriptLoad(ctx, takeTimedOutLua).Result()
	if err != nil {
		return nil, fmt.Errorf("queue: load takeTimedOut script: %w", err)
	}
	s.takeTimedOutSHA = sha

	return s, nil
}

func (s *RedisStore) key(suffix string) string { return s.prefix + suffix }

func (s *RedisStore) Upsert(ctx context.Context, e Entry) error {
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, s.key(waitingHash), e.PlayerID, body)
	pipe.ZAdd(ctx, s.key(waitingZSet), redis.Z{Score: float64(e.JoinedAt.UnixNano()), Member: e.PlayerID})
	pipe.Set(ctx, s.key(fmt.Sprintf(tokenIndexFmt, e.Token)), e.PlayerID, 0)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) RemoveByPlayerID(ctx context.Context, playerID string) error {
	e, err := s.GetByPlayerID(ctx, playerID)
	if err != nil {
		if err == ErrNotFound {
			return nil
		}
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.ZRem(ctx, s.key(waitingZSet), playerID)
	pipe.HDel(ctx, s.key(waitingHash), playerID)
	pipe.Del(ctx, s.key(fmt.Sprintf(tokenIndexFmt, e.Token)))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) RemoveByToken(ctx context.Context, token string) error {
	playerID, err := s.rdb.Get(ctx, s.key(fmt.Sprintf(tokenIndexFmt, token))).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	return s.RemoveByPlayerID(ctx, playerID)
}

func (s *RedisStore) GetByToken(ctx context.Context, token string) (Entry, error) {
	playerID, err := s.rdb.Get(ctx, s.key(fmt.Sprintf(tokenIndexFmt, token))).Result()
	if err == redis.Nil {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, err
	}
	return s.GetByPlayerID(ctx, playerID)
}

func (s *RedisStore) GetByPlayerID(ctx context.Context, playerID string) (Entry, error) {
	body, err := s.rdb.HGet(ctx, s.key(waitingHash), playerID).Result()
	if err == redis.Nil {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, err
	}
	var e Entry
	if err := json.Unmarshal([]byte(body), &e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

func (s *RedisStore) Park(ctx context.Context, e Entry, ttl time.Duration) error {
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.ZRem(ctx, s.key(waitingZSet), e.PlayerID)
	pipe.HDel(ctx, s.key(waitingHash), e.PlayerID)
	pipe.Set(ctx, s.key(fmt.Sprintf(parkedKeyFmt, e.Token)), body, ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) GetParked(ctx context.Context, token string) (Entry, error) {
	body, err := s.rdb.Get(ctx, s.key(fmt.Sprintf(parkedKeyFmt, token))).Result()
	if err == redis.Nil {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, err
	}
	var e Entry
	if err := json.Unmarshal([]byte(body), &e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

func (s *RedisStore) PromoteParked(ctx context.Context, token string) (Entry, error) {
	e, err := s.GetParked(ctx, token)
	if err != nil {
		return Entry{}, err
	}
	if err := s.rdb.Del(ctx, s.key(fmt.Sprintf(parkedKeyFmt, token))).Err(); err != nil {
		return Entry{}, err
	}
	e.JoinedAt = time.Now()
	if err := s.Upsert(ctx, e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

func (s *RedisStore) TakeMatch(ctx context.Context) (a, b Entry, ok bool, err error) {
	res, err := s.rdb.EvalSha(ctx, s.takeMatchSHA,
		[]string{s.key(waitingZSet), s.key(waitingHash)},
		s.key(tokenIndexFmt),
	).Result()
	if err != nil {
		return Entry{}, Entry{}, false, fmt.Errorf("queue: takeMatch: %w", err)
	}

	pair, ok := res.([]interface{})
	if !ok || len(pair) < 2 {
		return Entry{}, Entry{}, false, nil
	}
	if err := json.Unmarshal([]byte(pair[0].(string)), &a); err != nil {
		return Entry{}, Entry{}, false, err
	}
	if err := json.Unmarshal([]byte(pair[1].(string)), &b); err != nil {
		return Entry{}, Entry{}, false, err
	}
	return a, b, true, nil
}

func (s *RedisStore) TakeTimedOut(ctx context.Context, cutoff time.Time, limit int) ([]Entry, error) {
	res, err := s.rdb.EvalSha(ctx, s.takeTimedOutSHA,
		[]string{s.key(waitingZSet), s.key(waitingHash)},
		s.key(tokenIndexFmt), cutoff.UnixNano(), limit,
	).Result()
	if err != nil {
		return nil, fmt.Errorf("queue: takeTimedOut: %w", err)
	}

	items, ok := res.([]interface{})
	if !ok {
		return nil, nil
	}
	out := make([]Entry, 0, len(items))
	for _, raw := range items {
		var e Entry
		if err := json.Unmarshal([]byte(raw.(string)), &e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *RedisStore) Len(ctx context.Context) (int, error) {
	n, err := s.rdb.ZCard(ctx, s.key(waitingZSet)).Result()
	return int(n), err
}

package journal

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/rustyeddy/tradejournal/ledger"
)

// RedisConfig configures the Redis store.
type RedisConfig struct {
	Addr     string // e.g. "localhost:6379"
	Password string
	DB       int
	Prefix   string // prepended to every key
}

// redisKV is the part of *goredis.Client the store uses.
type redisKV interface {
	MGet(ctx context.Context, keys ...string) *goredis.SliceCmd
	MSet(ctx context.Context, values ...interface{}) *goredis.StatusCmd
	Close() error
}

// RedisStore keeps the three values under plain string keys.
type RedisStore struct {
	client redisKV
	prefix string
}

// NewRedis connects and pings the server.
func NewRedis(cfg RedisConfig) (*RedisStore, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return newRedisStore(client, cfg.Prefix), nil
}

func newRedisStore(client redisKV, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) keys() []string {
	return []string{r.prefix + KeyTrades, r.prefix + KeyBalance, r.prefix + KeyBalanceSet}
}

func (r *RedisStore) Load(ctx context.Context) (ledger.State, error) {
	keys := r.keys()
	res, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return ledger.State{}, fmt.Errorf("redis mget: %w", err)
	}

	vals := map[string]string{}
	for i, v := range res {
		if v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return ledger.State{}, fmt.Errorf("%w: %s is %T", ledger.ErrCorruptState, keys[i], v)
		}
		vals[keys[i][len(r.prefix):]] = s
	}
	return decodeState(vals)
}

// Save writes all three keys with a single MSET so readers never see a
// half-written ledger.
func (r *RedisStore) Save(ctx context.Context, s ledger.State) error {
	vals, err := encodeState(s)
	if err != nil {
		return err
	}
	args := make([]interface{}, 0, 2*len(vals))
	for _, k := range []string{KeyTrades, KeyBalance, KeyBalanceSet} {
		args = append(args, r.prefix+k, vals[k])
	}
	if err := r.client.MSet(ctx, args...).Err(); err != nil {
		return fmt.Errorf("redis mset: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

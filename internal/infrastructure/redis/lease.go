package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/baechuer/admin-dashboard/services/account-service/internal/domain"
)

// Lease is a single-holder lock: SET NX PX with a random token, released by
// a compare-and-delete so a holder whose lease expired cannot free someone
// else's.
type Lease struct {
	rdb *goredis.Client
}

func NewLease(c *Client) *Lease {
	if c == nil {
		return &Lease{}
	}
	return &Lease{rdb: c.rdb}
}

const releaseLua = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

var releaseScript = goredis.NewScript(releaseLua)

// Acquire tries to take key for ttl. ok=false means another holder has it.
func (l *Lease) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	if l.rdb == nil {
		return nil, false, domain.ErrLeaseUnavailable(errors.New("redis disabled"))
	}
	if ttl <= 0 {
		ttl = time.Minute
	}

	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, domain.ErrLeaseUnavailable(fmt.Errorf("redis setnx: %w", err))
	}
	if !ok {
		return nil, false, nil
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.rdb, []string{key}, token).Err(); err != nil {
			return domain.ErrLeaseUnavailable(fmt.Errorf("redis release: %w", err))
		}
		return nil
	}
	return release, true, nil
}

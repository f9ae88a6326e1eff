// Package redis holds the optional coordination store. The account core
// only uses it for the cross-instance role migration lease.
package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	pingTimeout = 2 * time.Second
	dialTimeout = 2 * time.Second
	ioTimeout   = time.Second
)

type Client struct {
	rdb *goredis.Client
}

func New(addr, password string, db int) *Client {
	return &Client{
		rdb: goredis.NewClient(&goredis.Options{
			Addr:         addr,
			Password:     password,
			DB:           db,
			DialTimeout:  dialTimeout,
			ReadTimeout:  ioTimeout,
			WriteTimeout: ioTimeout,
		}),
	}
}

// NewFromClient wraps an existing go-redis client.
func NewFromClient(rdb *goredis.Client) *Client {
	return &Client{rdb: rdb}
}

// Ping bounds the check so bootstrap never hangs on an absent Redis.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

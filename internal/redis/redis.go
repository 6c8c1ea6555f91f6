package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type Client struct {
	*goredis.Client
}

// New builds the presence-store client from either a redis:// URL or an
// addr/password pair and verifies the connection before returning. An empty
// or malformed endpoint fails here, at startup, not on first use.
func New(url, addr, password string) (*Client, error) {
	var opts *goredis.Options

	switch {
	case url != "":
		parsed, err := goredis.ParseURL(url)
		if err != nil {
			return nil, fmt.Errorf("redis: invalid url: %w", err)
		}
		opts = parsed
	case addr != "":
		opts = &goredis.Options{
			Addr:     addr,
			Password: password,
			DB:       0,
		}
	default:
		return nil, errors.New("redis: no endpoint configured")
	}

	client := goredis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Client{Client: client}, nil
}

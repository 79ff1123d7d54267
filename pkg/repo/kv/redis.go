package kv

import (
	"context"
	"errors"

	r "github.com/redis/go-redis/v9"
	"github.com/scienceol/molbank/pkg/common/code"
	"github.com/scienceol/molbank/pkg/repo"
)

const redisKeyPrefix = "molbank:kv:"

type redisStore struct {
	client *r.Client
}

func NewRedis(client *r.Client) repo.KVStore {
	return &redisStore{client: client}
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, r.Nil) {
		return nil, code.RecordNotFound.WithMsgf("key: %s", key)
	}
	if err != nil {
		return nil, code.StoreReadErr.WithErr(err)
	}
	return data, nil
}

func (s *redisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, redisKeyPrefix+key, value, 0).Err(); err != nil {
		return code.StoreWriteErr.WithErr(err)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return code.StoreWriteErr.WithErr(err)
	}
	return nil
}

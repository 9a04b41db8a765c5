package cache

import (
	"context"
	"fmt"
)

// Backend names a cache implementation.
type Backend string

const (
	BackendNone  Backend = "none"
	BackendFile  Backend = "file"
	BackendRedis Backend = "redis"
	BackendMongo Backend = "mongo"
)

// Options selects and configures a backend.
type Options struct {
	Backend Backend
	Dir     string
	Redis   RedisConfig
	Mongo   MongoConfig
}

// Open creates the configured cache. An empty backend disables caching.
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case "", BackendNone:
		return NewNullCache(), nil
	case BackendFile:
		fc, err := NewFileCache(opts.Dir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	case BackendRedis:
		return NewRedisCache(ctx, opts.Redis)
	case BackendMongo:
		return NewMongoCache(ctx, opts.Mongo)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}

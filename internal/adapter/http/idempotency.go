package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/YelzhanWeb/restaurant/internal/adapter/logger"

	"github.com/redis/go-redis/v9"
)

const IdempotencyHeader = "Idempotency-Key"

// IdempotencyStore remembers request keys for a while.
type IdempotencyStore interface {
	// Seen records key and reports whether it had already been recorded.
	Seen(ctx context.Context, key string) (bool, error)
	// Release forgets key so the request may be sent again.
	Release(ctx context.Context, key string) error
}

type redisIdempotencyStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisIdempotencyStore(rdb *redis.Client, ttl time.Duration) IdempotencyStore {
	return &redisIdempotencyStore{rdb: rdb, ttl: ttl}
}

func (s *redisIdempotencyStore) Seen(ctx context.Context, key string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, key, "1", s.ttl).Result()
	if err != nil {
		return false, err
	}
	return !ok, nil
}

func (s *redisIdempotencyStore) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

// IdempotencyMiddleware rejects a replayed Idempotency-Key with 409. Requests
// without the header pass through. When the store is down the request is
// served and the failure logged. A key is kept only when its request
// succeeded, so a failed request can be retried with the same key.
func IdempotencyMiddleware(store IdempotencyStore, lgr logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyHeader)
			if store == nil || key == "" {
				next.ServeHTTP(w, r)
				return
			}

			storeKey := fmt.Sprintf("idem:%s:%s:%s", r.Method, r.URL.Path, key)
			seen, err := store.Seen(r.Context(), storeKey)
			if err != nil {
				lgr.Error("idempotency_check_failed", "Idempotency store unavailable", logger.RequestID(r.Context()), map[string]interface{}{
					"key": key,
				}, err)
				next.ServeHTTP(w, r)
				return
			}
			if seen {
				writeJSON(w, http.StatusConflict, ErrorResponse{
					Error:   "duplicate_request",
					Message: "a request with this idempotency key was already processed",
				})
				return
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			succeeded := false
			defer func() {
				if succeeded {
					return
				}
				if err := store.Release(context.WithoutCancel(r.Context()), storeKey); err != nil {
					lgr.Error("idempotency_release_failed", "Failed to release idempotency key", logger.RequestID(r.Context()), map[string]interface{}{
						"key": key,
					}, err)
				}
			}()

			next.ServeHTTP(rec, r)
			succeeded = rec.status >= 200 && rec.status < 300
		})
	}
}

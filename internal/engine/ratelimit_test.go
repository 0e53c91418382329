package engine

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeLimiterStore struct {
	count int64
	err   error
}

func (f *fakeLimiterStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.count++
	return f.count, nil
}

func limitedHandler(store LimiterStore, limit int64) http.Handler {
	rl := NewRateLimiter(store, limit, time.Minute, zap.NewNop())
	return rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRateLimiterAllowsUnderLimit(t *testing.T) {
	h := limitedHandler(&fakeLimiterStore{}, 3)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/compliance/check", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimiterRejectsOverLimit(t *testing.T) {
	h := limitedHandler(&fakeLimiterStore{}, 2)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/compliance/check", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/compliance/check", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t,
		`{"error":"rate limit exceeded","details":"too many compliance checks, slow down"}`,
		rec.Body.String())
}

func TestRateLimiterFailsOpenOnStoreError(t *testing.T) {
	h := limitedHandler(&fakeLimiterStore{err: errors.New("redis down")}, 1)

	// Недоступный store не должен блокировать проверки
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/compliance/check", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

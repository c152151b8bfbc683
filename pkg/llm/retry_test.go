package llm

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/require"
)

func TestRetryHandlerRetriesRateLimit(t *testing.T) {
	handler := NewRetryHandler(RetryConfig{
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
	})

	calls := 0
	err := handler.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return &openai.Error{StatusCode: http.StatusTooManyRequests}
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestRetryHandlerExhaustsAttempts(t *testing.T) {
	handler := NewRetryHandler(RetryConfig{
		MaxRetries:     1,
		InitialBackoff: time.Millisecond,
	})

	calls := 0
	err := handler.Do(context.Background(), func() error {
		calls++
		return &openai.Error{StatusCode: http.StatusRequestTimeout}
	})
	require.Error(t, err)
	require.Equal(t, 2, calls)
}

func TestRetryHandlerDoesNotRetryClientErrors(t *testing.T) {
	handler := NewRetryHandler(RetryConfig{
		MaxRetries:     3,
		InitialBackoff: time.Millisecond,
	})

	calls := 0
	err := handler.Do(context.Background(), func() error {
		calls++
		return &openai.Error{StatusCode: http.StatusBadRequest}
	})
	require.Error(t, err)
	require.Equal(t, 1, calls)
}

func TestRetryHandlerDoesNotRetryPlainErrors(t *testing.T) {
	handler := NewRetryHandler(RetryConfig{
		MaxRetries:     3,
		InitialBackoff: time.Millisecond,
	})

	calls := 0
	err := handler.Do(context.Background(), func() error {
		calls++
		return errors.New("schema mismatch")
	})
	require.Error(t, err)
	require.Equal(t, 1, calls)
}

func TestRetryHandlerHonoursContextCancel(t *testing.T) {
	handler := NewRetryHandler(RetryConfig{
		MaxRetries:     5,
		InitialBackoff: 50 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := handler.Do(ctx, func() error {
		calls++
		return &openai.Error{StatusCode: http.StatusTooManyRequests}
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)
}

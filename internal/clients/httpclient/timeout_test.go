package httpclient

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWithTimeout_SetsDeadline(t *testing.T) {
	t.Parallel()

	const d = 40 * time.Millisecond

	start := time.Now()
	_, err := WithTimeout(d)(func(ctx context.Context, _ *Request) (*Response, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})(context.Background(), &Request{})

	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.GreaterOrEqual(t, time.Since(start), d)
}

// TestWithTimeout_EarlierCallerDeadlineWins — дедлайн вызывающего раньше d остаётся в силе.
func TestWithTimeout_EarlierCallerDeadlineWins(t *testing.T) {
	t.Parallel()

	parent, cancel := context.WithTimeout(context.Background(), 25*time.Millisecond)
	defer cancel()
	parentDL, ok := parent.Deadline()
	require.True(t, ok)

	var childDL time.Time
	_, err := WithTimeout(time.Second)(func(ctx context.Context, _ *Request) (*Response, error) {
		childDL, _ = ctx.Deadline()
		return &Response{}, nil
	})(parent, &Request{})

	require.NoError(t, err)
	require.WithinDuration(t, parentDL, childDL, time.Millisecond)
}

// TestWithTimeout_LaterCallerDeadlineStillTimesOut — длинный дедлайн вызывающего
// не отменяет таймаут попытки.
func TestWithTimeout_LaterCallerDeadlineStillTimesOut(t *testing.T) {
	t.Parallel()

	const d = 40 * time.Millisecond

	parent, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	start := time.Now()
	_, err := WithTimeout(d)(func(ctx context.Context, _ *Request) (*Response, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})(parent, &Request{})

	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.GreaterOrEqual(t, time.Since(start), d)
	require.Less(t, time.Since(start), 10*time.Second)
	require.NoError(t, parent.Err())
}

func TestWithTimeout_ZeroDuration_PassThrough(t *testing.T) {
	t.Parallel()

	var hasDL bool
	_, err := WithTimeout(0)(func(ctx context.Context, _ *Request) (*Response, error) {
		_, hasDL = ctx.Deadline()
		return &Response{}, nil
	})(context.Background(), &Request{})

	require.NoError(t, err)
	require.False(t, hasDL)
}

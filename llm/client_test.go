package llm

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIsRateLimit(t *testing.T) {
	require.True(t, IsRateLimit(errors.New("gemini returned 429: quota exceeded")))
	require.True(t, IsRateLimit(errors.New("Too Many Requests")))
	require.False(t, IsRateLimit(errors.New("gemini returned 500: internal")))
	require.False(t, IsRateLimit(nil))
}

func TestRetryDelay_ParsedFromError(t *testing.T) {
	d := RetryDelay(`gemini returned 429: {"retryDelay": "30s"}`, 0)
	require.Equal(t, 30*time.Second, d)

	d = RetryDelay("429 retry after 5s", 2)
	require.Equal(t, 5*time.Second, d)
}

func TestRetryDelay_ExponentialFallback(t *testing.T) {
	require.Equal(t, 2*time.Second, RetryDelay("429", 0))
	require.Equal(t, 4*time.Second, RetryDelay("429", 1))
	require.Equal(t, 8*time.Second, RetryDelay("429", 2))
}

func TestStripCodeFence(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"```json\n{\"score\": 80}\n```", `{"score": 80}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{`{"score": 80}`, `{"score": 80}`},
		{"  plain text  ", "plain text"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, StripCodeFence(c.in), "input %q", c.in)
	}
}

package retry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDelayElapses(t *testing.T) {
	start := time.Now()
	Delay(20 * time.Millisecond)
	require.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestDelayClampsNonPositive(t *testing.T) {
	start := time.Now()
	Delay(0)
	Delay(-5 * time.Second)
	require.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestBackoff(t *testing.T) {
	require.Equal(t, time.Duration(0), Backoff(0))
	require.Equal(t, time.Duration(0), Backoff(1))
	require.Equal(t, time.Second, Backoff(2))
	require.Equal(t, 5*time.Second, Backoff(6))
	require.Equal(t, 60*time.Second, Backoff(61))
	require.Equal(t, 60*time.Second, Backoff(1000))
}

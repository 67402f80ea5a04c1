package worker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryPolicyNextDelay(t *testing.T) {
	p := RetryPolicy{InitialDelay: 10 * time.Second, MaxDelay: time.Minute, BackoffFactor: 2}

	assert.Equal(t, 10*time.Second, p.NextDelay(0))
	assert.Equal(t, 10*time.Second, p.NextDelay(1))
	assert.Equal(t, 20*time.Second, p.NextDelay(2))
	assert.Equal(t, 40*time.Second, p.NextDelay(3))
	assert.Equal(t, time.Minute, p.NextDelay(4))
}

func TestRetryPolicyDefaults(t *testing.T) {
	p := RetryPolicy{}
	assert.Equal(t, time.Second, p.NextDelay(1))
	assert.Equal(t, 2*time.Second, p.NextDelay(2))
	assert.False(t, p.Exhausted(3))
	assert.True(t, p.Exhausted(4))
}

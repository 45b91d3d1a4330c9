package httpclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewTimeout(t *testing.T) {
	assert.Equal(t, 5*time.Second, New(5*time.Second).Timeout)
	assert.Equal(t, 30*time.Second, New(0).Timeout)
	assert.Equal(t, 30*time.Second, Default.Timeout)
}

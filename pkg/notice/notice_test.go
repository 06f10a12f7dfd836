package notice

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/hubpanel/pkg/device"
)

func TestBoard_FailureUsesHubDetail(t *testing.T) {
	b := NewBoard(time.Minute)
	n := b.Failure("Toggle", &device.RejectionError{Status: 404, Detail: "Device d9 not found"})
	assert.Equal(t, LevelError, n.Level)
	assert.Equal(t, "Toggle failed: Device d9 not found", n.Message)

	n = b.Failure("Rename", fmt.Errorf("%w: dial tcp", device.ErrNetwork))
	assert.Equal(t, "Rename failed: Connection to the hub failed", n.Message)

	assert.Equal(t, []string{
		"Toggle failed: Device d9 not found",
		"Rename failed: Connection to the hub failed",
	}, b.Messages())
}

func TestBoard_Dismiss(t *testing.T) {
	b := NewBoard(time.Minute)
	n := b.Info("Pairing finished")
	require.Len(t, b.Active(), 1)
	b.Dismiss(n.ID)
	assert.Empty(t, b.Active())
}

func TestBoard_Expiry(t *testing.T) {
	b := NewBoard(20 * time.Millisecond)
	b.Info("short lived")
	assert.Eventually(t, func() bool { return len(b.Active()) == 0 }, time.Second, 5*time.Millisecond)
}

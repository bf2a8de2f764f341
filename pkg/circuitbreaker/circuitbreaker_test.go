package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestNew_TripsAfterConsecutiveFailures(t *testing.T) {
	cfg := DefaultConfig("test")
	cfg.ConsecutiveFailures = 2
	cfg.Timeout = time.Hour
	cb := New[int](cfg)

	for i := 0; i < 2; i++ {
		_, err := cb.Execute(func() (int, error) { return 0, errBoom })
		require.ErrorIs(t, err, errBoom)
	}

	_, err := cb.Execute(func() (int, error) { return 1, nil })
	assert.True(t, IsOpen(err))
}

func TestNew_IsSuccessfulExcludesErrors(t *testing.T) {
	errClient := errors.New("client error")
	cfg := DefaultConfig("test")
	cfg.ConsecutiveFailures = 1
	cfg.IsSuccessful = func(err error) bool { return err == nil || errors.Is(err, errClient) }
	cb := New[int](cfg)

	for i := 0; i < 3; i++ {
		_, err := cb.Execute(func() (int, error) { return 0, errClient })
		require.ErrorIs(t, err, errClient)
	}

	v, err := cb.Execute(func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestIsOpen(t *testing.T) {
	assert.False(t, IsOpen(errBoom))
	assert.False(t, IsOpen(nil))
}

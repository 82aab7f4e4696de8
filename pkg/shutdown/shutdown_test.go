package shutdown

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amir-mohammad-HP/adbreboot/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RunsTasksInOrder(t *testing.T) {
	m := NewManager(logger.NewNullLogger(), time.Second)

	var order []string
	m.RegisterTask("worker", func() error { order = append(order, "worker"); return nil })
	m.RegisterTask("bridge", func() error { order = append(order, "bridge"); return errors.New("closed") })
	m.RegisterTask("logger", func() error { order = append(order, "logger"); return nil })

	m.Initiate()
	m.Initiate()

	require.NoError(t, m.Wait(context.Background()))
	assert.Equal(t, []string{"worker", "bridge", "logger"}, order)
}

func TestManager_WaitHonorsContext(t *testing.T) {
	m := NewManager(logger.NewNullLogger(), time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, m.Wait(ctx), context.Canceled)
}

func TestManager_Timeout(t *testing.T) {
	m := NewManager(logger.NewNullLogger(), 20*time.Millisecond)
	release := make(chan struct{})
	defer close(release)

	m.RegisterTask("stuck", func() error { <-release; return nil })
	m.Initiate()

	assert.ErrorContains(t, m.Wait(context.Background()), "did not finish")
}

package obsctl_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/thesyncim/obsctl"
	"github.com/thesyncim/obsctl/obstest"
)

func newController(t *testing.T, eng *obstest.Engine, creds obsctl.ServiceCredentials) *obsctl.Controller {
	t.Helper()
	c := obsctl.NewController(eng.Factory(), creds, obsctl.Options{})
	t.Cleanup(func() { c.Cleanup(context.Background()) })
	return c
}

func TestControllerHappyPath(t *testing.T) {
	ctx := context.Background()
	eng := obstest.NewEngine()
	c := newController(t, eng, twitch)

	r := c.Init(ctx)
	require.True(t, r.OK, r.String())
	assert.Equal(t, obsctl.ResultInitialized, r.Kind)
	assert.Equal(t, "successfully initialized engine", r.Status)

	snap, ok := c.Snapshot()
	require.True(t, ok)
	assert.Equal(t, obsctl.StateConfigured, snap.State)

	r = c.Start(ctx)
	assert.Equal(t, obsctl.ResultStarted, r.Kind)
	r = c.Stop(ctx)
	assert.Equal(t, obsctl.ResultStopped, r.Kind)
	r = c.Cleanup(ctx)
	assert.Equal(t, obsctl.ResultCleared, r.Kind)
	assert.Equal(t, "engine context cleared", r.Status)

	_, ok = c.Snapshot()
	assert.False(t, ok)
	assert.Equal(t, 1, eng.Shutdowns())
	assert.True(t, eng.Outputs()[0].Released())
}

func TestControllerInitTwice(t *testing.T) {
	ctx := context.Background()
	c := newController(t, obstest.NewEngine(), twitch)

	require.True(t, c.Init(ctx).OK)
	r := c.Init(ctx)
	assert.False(t, r.OK)
	assert.Equal(t, obsctl.ResultAlreadyInitialized, r.Kind)
	assert.Equal(t, "engine already initialized", r.String())

	// A second controller in the same process sees the live session.
	other := newController(t, obstest.NewEngine(), twitch)
	r = other.Init(ctx)
	assert.Equal(t, obsctl.ResultAlreadyInitialized, r.Kind)
}

func TestControllerNotInitialized(t *testing.T) {
	ctx := context.Background()
	c := newController(t, obstest.NewEngine(), twitch)

	assert.Equal(t, obsctl.ResultNotInitialized, c.Start(ctx).Kind)
	assert.Equal(t, obsctl.ResultNotInitialized, c.Stop(ctx).Kind)
	assert.Equal(t, obsctl.ResultNotInitialized, c.Configure(ctx, twitch).Kind)
	assert.Equal(t, "engine context isn't initialized", c.Start(ctx).Status)

	r := c.Cleanup(ctx)
	assert.True(t, r.OK)
	assert.Equal(t, obsctl.ResultCleared, r.Kind)
}

func TestControllerInitFailureStopsEarly(t *testing.T) {
	ctx := context.Background()
	eng := obstest.NewEngine()
	eng.OpenCode = obsctl.ModuleFileNotFound
	c := newController(t, eng, twitch)

	r := c.Init(ctx)
	assert.False(t, r.OK)
	assert.Equal(t, obsctl.ResultInitFailed, r.Kind)
	assert.Contains(t, r.Detail, "code -2")
	assert.NotContains(t, eng.Calls(), "settings.create")

	assert.Equal(t, obsctl.ResultNotInitialized, c.Start(ctx).Kind)
	assert.Empty(t, eng.Outputs())

	// Bring-up failures leave no live session behind.
	eng.OpenCode = obsctl.ModuleSuccess
	assert.True(t, c.Init(ctx).OK)
}

func TestControllerEngineFactoryError(t *testing.T) {
	ctx := context.Background()
	c := obsctl.NewController(func() (obsctl.Engine, error) {
		return nil, obsctl.ErrUnsupportedPlatform
	}, twitch, obsctl.Options{})

	r := c.Init(ctx)
	assert.Equal(t, obsctl.ResultInitFailed, r.Kind)
	assert.Contains(t, r.Detail, "platform not supported")
}

func TestControllerPlaceholderKey(t *testing.T) {
	ctx := context.Background()
	creds := twitch
	creds.Key = obsctl.PlaceholderKey
	c := newController(t, obstest.NewEngine(), creds)

	r := c.Init(ctx)
	assert.False(t, r.OK)
	assert.Equal(t, obsctl.ResultConfigureFailed, r.Kind)
	assert.Equal(t, "failed to configure stream", r.Status)

	// The engine stays up; a later configure with a real key recovers.
	assert.Equal(t, obsctl.ResultAlreadyInitialized, c.Init(ctx).Kind)
	snap, ok := c.Snapshot()
	require.True(t, ok)
	assert.Equal(t, obsctl.StateFailed, snap.State)

	r = c.Start(ctx)
	assert.Equal(t, obsctl.ResultNotConfigured, r.Kind)
	assert.Equal(t, "output not configured", r.Status)
	assert.Contains(t, r.Detail, "not configured")

	require.True(t, c.Configure(ctx, twitch).OK)
	assert.Equal(t, obsctl.ResultStarted, c.Start(ctx).Kind)
}

func TestControllerStartFailure(t *testing.T) {
	ctx := context.Background()
	eng := obstest.NewEngine()
	c := newController(t, eng, twitch)
	require.True(t, c.Init(ctx).OK)

	eng.StartErr = errors.New("handshake rejected")
	r := c.Start(ctx)
	assert.False(t, r.OK)
	assert.Equal(t, obsctl.ResultStartFailed, r.Kind)
	assert.Equal(t, "stream failed to start: "+r.Detail, r.String())
	assert.Contains(t, r.Detail, "handshake rejected")

	eng.StartErr = nil
	assert.True(t, c.Start(ctx).OK)
}

func TestControllerConcurrentCalls(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	eng := obstest.NewEngine()
	c := obsctl.NewController(eng.Factory(), twitch, obsctl.Options{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				switch (i + j) % 5 {
				case 0:
					c.Init(ctx)
				case 1:
					c.Start(ctx)
				case 2:
					c.Stop(ctx)
				case 3:
					c.Snapshot()
				default:
					c.Cleanup(ctx)
				}
			}
		}(i)
	}
	wg.Wait()

	c.Cleanup(ctx)
	assert.False(t, eng.Up())
	for _, out := range eng.Outputs() {
		assert.True(t, out.Released())
	}
}

func TestResultKindString(t *testing.T) {
	assert.Equal(t, "unknown result", obsctl.ResultKind(99).String())
	r := obsctl.Result{Kind: obsctl.ResultStopped}
	assert.Equal(t, "stream stopped", r.String())
}

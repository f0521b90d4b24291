package obsctl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	legal := [][2]State{
		{StateUninitialized, StateBringingUp},
		{StateBringingUp, StateReady},
		{StateReady, StateConfiguring},
		{StateConfiguring, StateConfigured},
		{StateConfiguring, StateStopped},
		{StateConfigured, StateStreaming},
		{StateConfigured, StateConfiguring},
		{StateStreaming, StateStopped},
		{StateStopped, StateStreaming},
		{StateStopped, StateConfiguring},
		{StateFailed, StateConfiguring},
	}
	for _, e := range legal {
		assert.True(t, canTransition(e[0], e[1]), "%s -> %s", e[0], e[1])
	}

	illegal := [][2]State{
		{StateUninitialized, StateReady},
		{StateReady, StateStreaming},
		{StateStreaming, StateConfiguring},
		{StateStopped, StateReady},
		{StateFailed, StateReady},
		{StateTornDown, StateBringingUp},
		{StateTornDown, StateFailed},
	}
	for _, e := range illegal {
		assert.False(t, canTransition(e[0], e[1]), "%s -> %s", e[0], e[1])
	}

	for _, s := range AllStates {
		if s == StateTornDown {
			continue
		}
		assert.True(t, canTransition(s, StateFailed), "%s -> failed", s)
		assert.True(t, canTransition(s, StateTornDown), "%s -> torn_down", s)
	}
}

func TestStatePredicates(t *testing.T) {
	for _, s := range AllStates {
		switch s {
		case StateConfigured, StateStreaming, StateStopped:
			assert.True(t, s.HasOutput(), s)
			assert.True(t, s.Live(), s)
		case StateReady, StateConfiguring:
			assert.False(t, s.HasOutput(), s)
			assert.True(t, s.Live(), s)
		default:
			assert.False(t, s.HasOutput(), s)
			assert.False(t, s.Live(), s)
		}
	}
}

func TestSetStatePanicsOnIllegalEdge(t *testing.T) {
	s := &Session{state: StateReady}
	assert.PanicsWithError(t, "invalid transition: ready -> streaming", func() {
		s.setState(StateStreaming)
	})
}

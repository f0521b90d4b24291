package main

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thesyncim/obsctl"
)

func startTestIngest(t *testing.T, app string) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	in := newIngest(app, zerolog.Nop())
	done := make(chan error, 1)
	go func() { done <- in.Serve(ln) }()
	t.Cleanup(func() {
		require.NoError(t, in.Close())
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("ingest did not stop")
		}
	})
	return ln.Addr().String()
}

func TestIngestAcceptsProbe(t *testing.T) {
	addr := startTestIngest(t, "/live/")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, obsctl.ProbeServer(ctx, "rtmp://"+addr+"/live"))
}

func TestIngestRejectsUnknownApp(t *testing.T) {
	addr := startTestIngest(t, "live")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.Error(t, obsctl.ProbeServer(ctx, "rtmp://"+addr+"/other"))
}

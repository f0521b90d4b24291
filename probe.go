package obsctl

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"sync"
	"syscall"

	"github.com/yutopp/go-rtmp"
	rtmpmsg "github.com/yutopp/go-rtmp/message"
)

const defaultRTMPPort = "1935"

// ProbeTarget is an RTMP ingest endpoint split into dial address and app.
type ProbeTarget struct {
	Addr  string
	App   string
	TCURL string
	TLS   bool
}

// ParseProbeTarget splits an rtmp:// or rtmps:// server URI.
func ParseProbeTarget(server string) (ProbeTarget, error) {
	if err := validateServer(server); err != nil {
		return ProbeTarget{}, err
	}
	u, _ := url.Parse(server)
	host := u.Host
	if u.Port() == "" {
		port := defaultRTMPPort
		if u.Scheme == "rtmps" {
			port = "443"
		}
		host = net.JoinHostPort(u.Hostname(), port)
	}
	return ProbeTarget{
		Addr:  host,
		App:   strings.Trim(u.Path, "/"),
		TCURL: server,
		TLS:   u.Scheme == "rtmps",
	}, nil
}

// ProbeServer dials server and completes the RTMP connect handshake. It does
// not publish. rtmps endpoints are not probed and return nil. When ctx ends
// the socket is shut down, so a silent server cannot hold the connection.
func ProbeServer(ctx context.Context, server string) error {
	target, err := ParseProbeTarget(server)
	if err != nil {
		return err
	}
	if target.TLS {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return probe(ctx, target)
}

func probe(ctx context.Context, target ProbeTarget) error {
	var sock socket
	dialer := &net.Dialer{ControlContext: sock.capture}
	if deadline, ok := ctx.Deadline(); ok {
		dialer.Deadline = deadline
	}
	stop := context.AfterFunc(ctx, sock.shutdown)
	defer stop()

	client, err := rtmp.DialWithDialer(dialer, "rtmp", target.Addr, &rtmp.ConnConfig{})
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("probe %s: %w", target.Addr, ctx.Err())
		}
		return fmt.Errorf("probe dial %s: %w", target.Addr, err)
	}
	defer client.Close()

	// Connect waits for the server's reply without a timeout of its own.
	done := make(chan error, 1)
	go func() {
		done <- client.Connect(&rtmpmsg.NetConnectionConnect{
			Command: rtmpmsg.NetConnectionConnectCommand{
				App:      target.App,
				Type:     "nonprivate",
				FlashVer: "FMLE/3.0 (compatible; obsctl)",
				TCURL:    target.TCURL,
			},
		})
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("probe connect %s: %w", target.Addr, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("probe %s: %w", target.Addr, ctx.Err())
	}
}

// socket keeps the raw descriptor of the dialed connection so it can be shut
// down while the rtmp client is blocked reading from it.
type socket struct {
	mu sync.Mutex
	rc syscall.RawConn
}

func (s *socket) capture(_ context.Context, _, _ string, rc syscall.RawConn) error {
	s.mu.Lock()
	s.rc = rc
	s.mu.Unlock()
	return nil
}

// shutdown is a no-op once the connection is closed: Control fails on a
// closed descriptor.
func (s *socket) shutdown() {
	s.mu.Lock()
	rc := s.rc
	s.mu.Unlock()
	if rc != nil {
		_ = rc.Control(shutdownFD)
	}
}

package main

import (
	"errors"
	"io"
	"net"
	"strings"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/yutopp/go-rtmp"
	rtmpmsg "github.com/yutopp/go-rtmp/message"
)

var (
	ingestPublishers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "obsctl_ingest_publishers",
		Help: "Number of streams currently publishing to the local ingest.",
	})
	ingestBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "obsctl_ingest_bytes_total",
		Help: "Total payload bytes received by the local ingest, by track.",
	}, []string{"track"})
)

// ingest is a local RTMP sink the output can push to. It accepts one app,
// drains audio and video, and counts what it receives.
type ingest struct {
	app    string
	logger zerolog.Logger
	srv    *rtmp.Server

	closed atomic.Bool
}

func newIngest(app string, logger zerolog.Logger) *ingest {
	in := &ingest{app: strings.Trim(app, "/"), logger: logger}
	in.srv = rtmp.NewServer(&rtmp.ServerConfig{
		OnConnect: func(conn net.Conn) (io.ReadWriteCloser, *rtmp.ConnConfig) {
			return conn, &rtmp.ConnConfig{
				Handler: &ingestHandler{ingest: in, remote: conn.RemoteAddr().String()},
				ControlState: rtmp.StreamControlStateConfig{
					DefaultBandwidthWindowSize: 6 * 1024 * 1024,
				},
			}
		},
	})
	return in
}

// Serve accepts connections on ln until Close.
func (in *ingest) Serve(ln net.Listener) error {
	err := in.srv.Serve(ln)
	if in.closed.Load() {
		return nil
	}
	return err
}

// Close stops accepting connections.
func (in *ingest) Close() error {
	in.closed.Store(true)
	return in.srv.Close()
}

type ingestHandler struct {
	rtmp.DefaultHandler
	ingest     *ingest
	remote     string
	publishing bool
}

func (h *ingestHandler) OnConnect(_ uint32, cmd *rtmpmsg.NetConnectionConnect) error {
	if app := strings.Trim(cmd.Command.App, "/"); app != h.ingest.app {
		h.ingest.logger.Warn().
			Str("event", "ingest.rejected").
			Str("remote", h.remote).
			Str("app", app).
			Msg("connect to unknown app")
		return errUnknownApp
	}
	return nil
}

func (h *ingestHandler) OnPublish(_ *rtmp.StreamContext, _ uint32, cmd *rtmpmsg.NetStreamPublish) error {
	h.publishing = true
	ingestPublishers.Inc()
	// The publishing name is the stream key.
	h.ingest.logger.Info().
		Str("event", "ingest.publish").
		Str("remote", h.remote).
		Bool("has_key", cmd.PublishingName != "").
		Msg("stream publishing")
	return nil
}

func (h *ingestHandler) OnAudio(_ uint32, payload io.Reader) error {
	n, err := io.Copy(io.Discard, payload)
	ingestBytes.WithLabelValues("audio").Add(float64(n))
	return err
}

func (h *ingestHandler) OnVideo(_ uint32, payload io.Reader) error {
	n, err := io.Copy(io.Discard, payload)
	ingestBytes.WithLabelValues("video").Add(float64(n))
	return err
}

func (h *ingestHandler) OnClose() {
	if h.publishing {
		h.publishing = false
		ingestPublishers.Dec()
	}
	h.ingest.logger.Info().
		Str("event", "ingest.closed").
		Str("remote", h.remote).
		Msg("connection closed")
}

var errUnknownApp = errors.New("unknown app")

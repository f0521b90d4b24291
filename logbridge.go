package obsctl

import (
	"sync/atomic"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// LogLevel is an engine log level. Values match libobs (LOG_ERROR..LOG_DEBUG).
type LogLevel int

const (
	LogError   LogLevel = 100
	LogWarning LogLevel = 200
	LogInfo    LogLevel = 300
	LogDebug   LogLevel = 400
)

// String returns the level label, or "" for levels the engine does not define.
func (l LogLevel) String() string {
	switch l {
	case LogError:
		return "error"
	case LogWarning:
		return "warning"
	case LogInfo:
		return "info"
	case LogDebug:
		return "debug"
	default:
		return ""
	}
}

// MaxLogMessage bounds a formatted engine log message, including the
// terminating NUL the native formatter writes.
const MaxLogMessage = 4096

// Record is one engine log event.
type Record struct {
	Level   LogLevel
	Message string
	Context map[string]string
}

// LogSink receives every engine log record. Implementations must be safe for
// concurrent use; the engine logs from its own threads.
type LogSink interface {
	Log(r Record)
}

// LogSinkFunc adapts a function to LogSink.
type LogSinkFunc func(r Record)

// Log calls f(r).
func (f LogSinkFunc) Log(r Record) { f(r) }

type sinkHolder struct{ sink LogSink }

var installedSink atomic.Pointer[sinkHolder]

// InstallLogSink registers sink as the process-wide engine log sink,
// replacing any previous one. A nil sink discards records.
func InstallLogSink(sink LogSink) {
	installedSink.Store(&sinkHolder{sink: sink})
}

// emit forwards one record to the installed sink. It is the function handed
// to Engine.SetLogHandler.
func emit(level LogLevel, message string) {
	engineLogRecords.WithLabelValues(levelLabel(level)).Inc()
	h := installedSink.Load()
	if h == nil || h.sink == nil {
		return
	}
	h.sink.Log(Record{
		Level:   level,
		Message: boundMessage(message),
		Context: map[string]string{"source": "engine"},
	})
}

// boundMessage truncates s to fit MaxLogMessage without splitting a rune.
func boundMessage(s string) string {
	if len(s) < MaxLogMessage {
		return s
	}
	s = s[:MaxLogMessage-1]
	for i := len(s) - 1; i >= 0 && len(s)-i <= utf8.UTFMax; i-- {
		if utf8.RuneStart(s[i]) {
			if !utf8.FullRuneInString(s[i:]) {
				s = s[:i]
			}
			break
		}
	}
	return s
}

// messageFromBuffer returns the NUL-terminated string written into buf.
func messageFromBuffer(buf []byte) string {
	for i, b := range buf {
		if b == 0 {
			return string(buf[:i])
		}
	}
	return string(buf)
}

func levelLabel(l LogLevel) string {
	if s := l.String(); s != "" {
		return s
	}
	return "unlabeled"
}

// ZerologSink returns a LogSink that writes records to logger with
// component=engine. Unmapped levels are logged without a level.
func ZerologSink(logger zerolog.Logger) LogSink {
	l := logger.With().Str("component", "engine").Logger()
	return LogSinkFunc(func(r Record) {
		var ev *zerolog.Event
		switch r.Level {
		case LogError:
			ev = l.Error()
		case LogWarning:
			ev = l.Warn()
		case LogInfo:
			ev = l.Info()
		case LogDebug:
			ev = l.Debug()
		default:
			ev = l.Log().Int("engine_level", int(r.Level))
		}
		for k, v := range r.Context {
			ev = ev.Str(k, v)
		}
		ev.Msg(r.Message)
	})
}

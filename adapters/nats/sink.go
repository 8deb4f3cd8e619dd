package nats

import (
	"log/slog"
	"strings"
	"time"

	natsgo "github.com/nats-io/nats.go"

	"github.com/codewandler/troupe-go/core/events"
	"github.com/codewandler/troupe-go/internal/codec"
	"github.com/codewandler/troupe-go/internal/msgtype"
)

const defaultSubjectPrefix = "troupe.events"

// SinkConfig configures a [Sink].
type SinkConfig struct {
	// Connect creates the underlying connection; ConnectDefault when nil.
	Connect Connector
	Log     *slog.Logger
	// SubjectPrefix defaults to "troupe.events". Events are published to
	// "<prefix>.<EventType>".
	SubjectPrefix string
	// Codec encodes the wire envelope; JSON when nil.
	Codec codec.Codec
}

// Sink subscribes to an event stream and republishes every event to NATS,
// one subject per event type. Publishing is fire-and-forget: a failed
// publish is logged and dropped, never retried, so a flaky server cannot
// back-pressure the runtime.
type Sink struct {
	nc      *natsgo.Conn
	closeNc closeFunc
	log     *slog.Logger
	prefix  string
	codec   codec.Codec

	stream *events.Stream
	sub    *events.Subscription
}

// wireEvent is the published envelope. Type carries the fully qualified
// event type; the subject only carries the last segment.
type wireEvent struct {
	Type  string    `json:"type"`
	At    time.Time `json:"at"`
	Event any       `json:"event"`
}

// NewSink attaches a sink to stream. Detach with Close.
func NewSink(cfg SinkConfig, stream *events.Stream) (*Sink, error) {
	doConnect := cfg.Connect
	if doConnect == nil {
		doConnect = ConnectDefault()
	}
	nc, closeNc, err := doConnect()
	if err != nil {
		return nil, err
	}

	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	prefix := cfg.SubjectPrefix
	if prefix == "" {
		prefix = defaultSubjectPrefix
	}
	c := cfg.Codec
	if c == nil {
		c = codec.JSONCodec{}
	}

	s := &Sink{
		nc:      nc,
		closeNc: closeNc,
		log:     log.With(slog.String("sink", "nats"), slog.String("subject_prefix", prefix)),
		prefix:  prefix,
		codec:   c,
		stream:  stream,
	}
	s.sub = stream.Subscribe(s.publish)

	return s, nil
}

func (s *Sink) publish(evt any) {
	if s.nc.IsClosed() {
		return
	}

	name := msgtype.Of(evt).Name
	data, err := s.codec.Marshal(wireEvent{Type: name, At: time.Now(), Event: evt})
	if err != nil {
		s.log.Error("failed to encode event",
			slog.String("event", name),
			slog.Any("error", err),
		)
		return
	}

	msg := natsgo.NewMsg(s.prefix + "." + subjectToken(name))
	msg.Header.Set("x-event-type", name)
	msg.Data = data

	if err := s.nc.PublishMsg(msg); err != nil {
		s.log.Error("failed to publish event",
			slog.String("event", name),
			slog.Any("error", err),
		)
	}
}

// Close detaches from the stream, flushes pending publishes and releases
// the connection.
func (s *Sink) Close() {
	s.stream.Unsubscribe(s.sub)
	if err := s.nc.FlushTimeout(5 * time.Second); err != nil {
		s.log.Warn("flush failed", slog.Any("error", err))
	}
	s.closeNc()
}

// subjectToken maps a qualified type name onto one NATS subject token:
// the last dot-separated segment, with anything outside [A-Za-z0-9_-]
// replaced.
func subjectToken(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, name)
}

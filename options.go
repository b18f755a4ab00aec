package mqttclient

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Defaults and limits from spec §6.3, expressed as named constants
// rather than magic numbers scattered through Options/Client.
const (
	// DefaultReceiveMaximum is the pending-table capacity (C6) used when
	// WithReceiveMaximum is not supplied.
	DefaultReceiveMaximum = 32

	// DefaultCorrelationDataMaximum bounds the CorrelationData property
	// accepted on an inbound PUBLISH; longer correlation data is dropped.
	DefaultCorrelationDataMaximum = 65535

	// DefaultMaxPacketSize is the receive buffer size assumed before a
	// CONNACK establishes the broker's actual advertised maximum (open
	// question decision 4: never trust a zero-valued buffer size before
	// the session has heard from the broker).
	DefaultMaxPacketSize = 8192

	// DefaultPollTimeout is the Options.PollTimeout value when the caller
	// does not override it. Poll does not pass it to the transport: how
	// long a Recv waits is up to the Transport (TCPTransport uses its own
	// fixed pollReadTimeout).
	DefaultPollTimeout = 250 * time.Millisecond

	// MQTTPort is the IANA-registered default port for unencrypted MQTT.
	MQTTPort = 1883

	// DefaultKeepAlive is the keep-alive interval, in seconds, sent in
	// CONNECT when WithKeepAlive is not supplied.
	DefaultKeepAlive = 60
)

// Options configures a Client. Construct one only through New with
// Option values; the zero Options is not meaningful on its own.
type Options struct {
	Address               string
	ClientID              string
	KeepAlive             uint16
	CleanStart            bool
	Username              *string
	Password              []byte
	Will                  *WillMessage
	ReceiveMaximum        int
	CorrelationDataMaximum int
	PollTimeout           time.Duration
	Transport             Transport
	Sink                  NotificationSink
	Logger                *Logger
	Registry              *prometheus.Registry
}

// WillMessage is the user-facing form of a CONNECT will message (spec
// §4.4's Will, without the wire-only Properties pointer).
type WillMessage struct {
	Topic   string
	Payload []byte
	QoS     byte
	Retain  bool
}

// Option mutates Options; pass any number to New.
type Option func(*Options)

func defaultOptions() Options {
	return Options{
		Address:                "127.0.0.1:1883",
		ClientID:               "mqttclient",
		KeepAlive:              DefaultKeepAlive,
		CleanStart:             true,
		ReceiveMaximum:         DefaultReceiveMaximum,
		CorrelationDataMaximum: DefaultCorrelationDataMaximum,
		PollTimeout:            DefaultPollTimeout,
		Sink:                   NoopSink{},
		Logger:                 NewLogger(slog.Default()),
	}
}

// WithAddress sets the broker address (host:port). Default is
// "127.0.0.1:1883".
func WithAddress(address string) Option {
	return func(o *Options) { o.Address = address }
}

// WithClientID sets the CONNECT client identifier.
func WithClientID(id string) Option {
	return func(o *Options) { o.ClientID = id }
}

// WithKeepAlive sets the CONNECT keep-alive interval in seconds.
func WithKeepAlive(seconds uint16) Option {
	return func(o *Options) { o.KeepAlive = seconds }
}

// WithCleanStart overrides the CONNECT clean-start flag (default true).
func WithCleanStart(clean bool) Option {
	return func(o *Options) { o.CleanStart = clean }
}

// WithCredentials sets CONNECT username/password.
func WithCredentials(username string, password []byte) Option {
	return func(o *Options) {
		o.Username = &username
		o.Password = password
	}
}

// WithWill sets the CONNECT will message.
func WithWill(w WillMessage) Option {
	return func(o *Options) { o.Will = &w }
}

// WithReceiveMaximum overrides the pending-table capacity (default
// DefaultReceiveMaximum).
func WithReceiveMaximum(n int) Option {
	return func(o *Options) { o.ReceiveMaximum = n }
}

// WithCorrelationDataMaximum bounds inbound CorrelationData length; an
// inbound PUBLISH carrying more has its CorrelationData dropped.
func WithCorrelationDataMaximum(n int) Option {
	return func(o *Options) { o.CorrelationDataMaximum = n }
}

// WithPollTimeout sets Options.PollTimeout. Poll does not use it; the
// transport decides how long each Recv waits.
func WithPollTimeout(d time.Duration) Option {
	return func(o *Options) { o.PollTimeout = d }
}

// WithTransport injects the byte-stream adapter (C8). Required: New
// returns ErrInvalidArgument if no transport is supplied.
func WithTransport(t Transport) Option {
	return func(o *Options) { o.Transport = t }
}

// WithNotificationSink sets the sink that receives session events.
// Default is NoopSink{}.
func WithNotificationSink(sink NotificationSink) Option {
	return func(o *Options) { o.Sink = sink }
}

// WithLogger sets the structured logger. Default wraps slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = NewLogger(l) }
}

// WithMetricsRegistry registers the client's counters/gauges on reg. If
// never called, metrics are created but left unregistered.
func WithMetricsRegistry(reg *prometheus.Registry) Option {
	return func(o *Options) { o.Registry = reg }
}

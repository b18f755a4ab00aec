package mqttclient

import (
	"strings"
	"time"

	"github.com/ionmesh/mqttclient/packet"
)

// State is the connection lifecycle of a Client (spec §4.7, C7).
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// Client owns the whole session: connection lifecycle, the expected-
// packet-type mask, the pending table, and the server limits learned
// from CONNACK. It has exactly one logical owner; none of its methods
// take a lock, matching the single cooperative owner model (spec §5).
type Client struct {
	opts     Options
	state    State
	expected packet.TypeMask
	pending  *pendingTable
	connack  ConnackInfo
	metrics  *metrics
	recvBuf  []byte

	deferred    bool
	deferredBuf []byte
}

// New constructs a Client. A Transport is mandatory; every other Option
// has a default.
func New(opts ...Option) (*Client, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Transport == nil {
		return nil, ErrInvalidArgument.WithMsg("WithTransport is required")
	}
	if o.ReceiveMaximum <= 0 {
		return nil, ErrInvalidArgument.WithMsg("ReceiveMaximum must be positive")
	}

	m := newMetrics()
	m.register(o.Registry)

	c := &Client{
		opts:     o,
		state:    StateDisconnected,
		expected: packet.TypeMask(0).With(packet.Pingresp),
		pending:  newPendingTable(o.ReceiveMaximum),
		connack:  defaultConnackInfo(o.KeepAlive),
		metrics:  m,
		recvBuf:  make([]byte, DefaultMaxPacketSize),
	}
	return c, nil
}

// State reports the current connection lifecycle state.
func (c *Client) State() State { return c.state }

// Connack returns the server limits captured on the last successful
// CONNACK. Meaningful only once State() == StateConnected.
func (c *Client) Connack() ConnackInfo { return c.connack }

// Connect opens the transport and sends CONNECT. If the transport
// defers connection establishment, the CONNECT buffer is parked and
// flushed by a later Poll call once Transport.Connected() reports true.
func (c *Client) Connect() error {
	if c.state != StateDisconnected {
		return ErrNotConnected.WithMsg("already connecting or connected")
	}

	deferred, err := c.opts.Transport.Open(c.opts.Address)
	if err != nil {
		return err
	}

	buf := c.buildConnect()
	c.state = StateConnecting
	c.expected = c.expected.With(packet.Connack)

	if deferred {
		c.deferred = true
		c.deferredBuf = buf
		return ErrPending
	}
	return c.sendRaw(packet.Connect, buf)
}

func (c *Client) buildConnect() []byte {
	conn := &packet.Connect{
		CleanStart: c.opts.CleanStart,
		KeepAlive:  c.opts.KeepAlive,
		ClientID:   c.opts.ClientID,
		Username:   c.opts.Username,
		Password:   c.opts.Password,
	}
	if c.opts.Will != nil {
		conn.Will = &packet.Will{
			QoS:     packet.QoS(c.opts.Will.QoS),
			Retain:  c.opts.Will.Retain,
			Topic:   c.opts.Will.Topic,
			Payload: c.opts.Will.Payload,
		}
	}
	return conn.Build()
}

// Poll drives the deferred-connect completion and one transport receive
// cycle, dispatching any full packet that arrives to ProcessPacket. It
// is a convenience for transports that implement Recv; push-only
// transports should call ProcessPacket directly instead (spec §9: the
// LwIP-style adapter has no recv, data arrives via callback).
func (c *Client) Poll() error {
	if c.deferred {
		if c.opts.Transport.Connected() {
			buf := c.deferredBuf
			c.deferredBuf = nil
			c.deferred = false
			if err := c.sendRaw(packet.Connect, buf); err != nil {
				return err
			}
		}
		return nil
	}

	n, err := c.opts.Transport.Recv(c.recvBuf)
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	return c.ProcessPacket(c.recvBuf[:n])
}

// ProcessPacket parses and dispatches exactly one control packet. It is
// the public entry point independent of Poll/Transport.Recv so a
// callback-driven transport can feed the engine directly (spec §9, open
// question decision 5). The payload of any inbound PUBLISH delivered to
// the notification sink during this call is a borrow into b and becomes
// invalid once ProcessPacket returns.
func (c *Client) ProcessPacket(b []byte) error {
	typ, pkt, err := packet.Parse(b, c.expected)
	if err != nil {
		if e, ok := err.(*packet.Error); ok {
			c.metrics.recordError(e.Kind)
		}
		return err
	}
	c.metrics.received(typ, len(b))
	c.opts.Logger.Debug("packet received", "type", typ.String(), "bytes", len(b))
	defer func() { c.metrics.setOccupancy(c.pending.occupancy()) }()

	switch p := pkt.(type) {
	case *packet.Connack:
		return c.handleConnack(p)
	case *packet.Publish:
		return c.handleInboundPublish(p)
	case *packet.Puback_:
		return c.handlePuback((*packet.AckFamily)(p))
	case *packet.Pubrec_:
		return c.handlePubrec((*packet.AckFamily)(p))
	case *packet.Pubrel_:
		return c.handleInboundPubrel((*packet.AckFamily)(p))
	case *packet.Pubcomp_:
		return c.handlePubcomp((*packet.AckFamily)(p))
	case *packet.Suback:
		return c.handleSuback(p)
	case *packet.Unsuback:
		return c.handleUnsuback(p)
	case *packet.Disconnect:
		return c.handleInboundDisconnect(p)
	case *packet.Pingresp_:
		c.opts.Sink.PingReceived()
		return nil
	default:
		return ErrUnexpectedPacketType.WithMsg(typ.String())
	}
}

func (c *Client) handleConnack(p *packet.Connack) error {
	if p.ReasonCode.IsError() {
		c.teardown()
		return ErrServerDeclined.WithReason(byte(p.ReasonCode))
	}

	c.state = StateConnected
	c.expected = c.expected.With(packet.Publish).With(packet.Disconnect)
	c.connack = c.applyConnackProperties(p)
	if c.connack.MaxPacketSize != 0 && uint32(len(c.recvBuf)) != c.connack.MaxPacketSize {
		c.recvBuf = make([]byte, c.connack.MaxPacketSize)
	}
	c.opts.Sink.Connected(c.connack)
	return nil
}

// applyConnackProperties folds server-advertised properties over the
// client's proposed defaults; a missing property keeps its MQTT-
// specified default rather than zeroing out (spec §3 connack_info).
func (c *Client) applyConnackProperties(p *packet.Connack) ConnackInfo {
	info := defaultConnackInfo(c.opts.KeepAlive)
	info.SessionPresent = p.SessionPresent
	props := p.Properties
	if props == nil {
		return info
	}
	if props.MaximumQoS != nil {
		info.MaxQoS = packet.QoS(*props.MaximumQoS)
	}
	if props.RetainAvailable != nil {
		info.RetainAvailable = *props.RetainAvailable != 0
	}
	if props.WildcardSubscriptionAvailable != nil {
		info.WildcardSubAvailable = *props.WildcardSubscriptionAvailable != 0
	}
	if props.SharedSubscriptionAvailable != nil {
		info.SharedSubAvailable = *props.SharedSubscriptionAvailable != 0
	}
	if props.SubscriptionIdentifierAvailable != nil {
		info.SubIDAvailable = *props.SubscriptionIdentifierAvailable != 0
	}
	if props.ServerKeepAlive != nil {
		info.ServerKeepAlive = *props.ServerKeepAlive
	}
	if props.MaximumPacketSize != nil {
		info.MaxPacketSize = *props.MaximumPacketSize
	}
	if props.TopicAliasMaximum != nil {
		info.TopicAliasMax = *props.TopicAliasMaximum
	}
	if props.AssignedClientIdentifier != nil {
		info.AssignedClientID = *props.AssignedClientIdentifier
	}
	if props.ResponseInformation != nil {
		info.ResponseInformation = *props.ResponseInformation
	}
	if props.ServerReference != nil {
		info.ServerReference = *props.ServerReference
	}
	if props.ReasonString != nil {
		info.ReasonString = *props.ReasonString
	}
	return info
}

func (c *Client) handleInboundPublish(p *packet.Publish) error {
	if p.Properties != nil && len(p.Properties.CorrelationData) > c.opts.CorrelationDataMaximum {
		p.Properties.CorrelationData = nil
	}

	msg := ReceivedPublish{
		Topic:    p.Topic,
		PacketID: p.PacketID,
		QoS:      p.QoS,
		Retain:   p.Retain,
		Dup:      p.Dup,
		Payload:  p.Payload,
	}
	if p.Properties != nil {
		if p.Properties.ResponseTopic != nil {
			msg.ResponseTopic = *p.Properties.ResponseTopic
		}
		if p.Properties.ContentType != nil {
			msg.ContentType = *p.Properties.ContentType
		}
		msg.Properties = p.Properties
	}

	// Acknowledge before notifying: a sink is free to send its own
	// packets from inside PublishReceived (spec §5), and the ack for
	// this PUBLISH must go out first or it interleaves behind whatever
	// the sink sends.
	switch p.QoS {
	case packet.QoS0:
		c.opts.Sink.PublishReceived(msg)
		return nil
	case packet.QoS1:
		if err := c.sendRaw(packet.Puback, packet.BuildPuback(packet.AckFamily{PacketID: p.PacketID, ReasonCode: packet.ReasonSuccess})); err != nil {
			return err
		}
		c.opts.Sink.PublishReceived(msg)
		return nil
	case packet.QoS2:
		if err := c.pending.reserveForInbound(p.PacketID, packet.Pubrel); err != nil {
			return err
		}
		c.expected = c.expected.With(packet.Pubrel)
		if err := c.sendRaw(packet.Pubrec, packet.BuildPubrec(packet.AckFamily{PacketID: p.PacketID, ReasonCode: packet.ReasonSuccess})); err != nil {
			return err
		}
		c.opts.Sink.PublishReceived(msg)
		return nil
	default:
		return ErrInvalidQoS
	}
}

func (c *Client) handlePuback(a *packet.AckFamily) error {
	if c.pending.expectedFor(a.PacketID) != packet.Puback {
		return ErrUnexpectedPacketType.WithMsg("PUBACK")
	}
	if err := c.pending.release(a.PacketID); err != nil {
		return err
	}
	if !c.pending.anyAwaits(packet.Puback) {
		c.expected = c.expected.Without(packet.Puback)
	}
	c.opts.Sink.PublishAcknowledged(a.PacketID, a.ReasonCode)
	return nil
}

func (c *Client) handlePubrec(a *packet.AckFamily) error {
	if c.pending.expectedFor(a.PacketID) != packet.Pubrec {
		return ErrUnexpectedPacketType.WithMsg("PUBREC")
	}
	c.pending.advance(a.PacketID, packet.Pubcomp)
	if !c.pending.anyAwaits(packet.Pubrec) {
		c.expected = c.expected.Without(packet.Pubrec)
	}
	c.expected = c.expected.With(packet.Pubcomp)
	return c.sendRaw(packet.Pubrel, packet.BuildPubrel(packet.AckFamily{PacketID: a.PacketID, ReasonCode: packet.ReasonSuccess}))
}

func (c *Client) handleInboundPubrel(a *packet.AckFamily) error {
	if c.pending.expectedFor(a.PacketID) != packet.Pubrel {
		return ErrUnexpectedPacketType.WithMsg("PUBREL")
	}
	if err := c.pending.release(a.PacketID); err != nil {
		return err
	}
	if !c.pending.anyAwaits(packet.Pubrel) {
		c.expected = c.expected.Without(packet.Pubrel)
	}
	return c.sendRaw(packet.Pubcomp, packet.BuildPubcomp(packet.AckFamily{PacketID: a.PacketID, ReasonCode: packet.ReasonSuccess}))
}

func (c *Client) handlePubcomp(a *packet.AckFamily) error {
	if c.pending.expectedFor(a.PacketID) != packet.Pubcomp {
		return ErrUnexpectedPacketType.WithMsg("PUBCOMP")
	}
	if err := c.pending.release(a.PacketID); err != nil {
		return err
	}
	if !c.pending.anyAwaits(packet.Pubcomp) {
		c.expected = c.expected.Without(packet.Pubcomp)
	}
	c.opts.Sink.PublishCompleted(a.PacketID, a.ReasonCode)
	return nil
}

func (c *Client) handleSuback(p *packet.Suback) error {
	if c.pending.expectedFor(p.PacketID) != packet.Suback {
		return ErrUnexpectedPacketType.WithMsg("SUBACK")
	}
	if err := c.pending.release(p.PacketID); err != nil {
		return err
	}
	if !c.pending.anyAwaits(packet.Suback) {
		c.expected = c.expected.Without(packet.Suback)
	}
	for i, code := range p.ReasonCodes {
		if code <= packet.ReasonGrantedQoS2 {
			c.opts.Sink.SubscriptionGranted(p.PacketID, i, packet.QoS(code))
		} else {
			c.opts.Sink.SubscriptionDeclined(p.PacketID, i, code)
		}
	}
	return nil
}

func (c *Client) handleUnsuback(p *packet.Unsuback) error {
	if c.pending.expectedFor(p.PacketID) != packet.Unsuback {
		return ErrUnexpectedPacketType.WithMsg("UNSUBACK")
	}
	if err := c.pending.release(p.PacketID); err != nil {
		return err
	}
	if !c.pending.anyAwaits(packet.Unsuback) {
		c.expected = c.expected.Without(packet.Unsuback)
	}
	c.opts.Sink.UnsubscribeCompleted(p.PacketID)
	return nil
}

func (c *Client) handleInboundDisconnect(p *packet.Disconnect) error {
	c.teardown()
	c.opts.Sink.ReceivedDisconnect(p.ReasonCode)
	return nil
}

// teardown drops the session back to Disconnected: resets the expected
// mask, zeroes the pending table, and closes the transport (spec §4.6,
// "no persistence: on disconnect, the table is zeroed").
func (c *Client) teardown() {
	c.state = StateDisconnected
	c.expected = packet.TypeMask(0).With(packet.Pingresp)
	c.pending.reset()
	c.metrics.setOccupancy(0)
	c.deferred = false
	c.deferredBuf = nil
	_ = c.opts.Transport.Close()
}

// publishPropertiesValidUTF8 checks every string-valued PUBLISH property a
// caller can set (ContentType, ResponseTopic, and each UserProperty key and
// value) the same way Publish checks the topic: Go strings are not
// guaranteed valid UTF-8, and DecodeString already enforces this on the
// inbound path, so the pre-flight guard must enforce it on the way out too.
func publishPropertiesValidUTF8(props *packet.Properties) bool {
	if props == nil {
		return true
	}
	if props.ContentType != nil && !packet.ValidUTF8([]byte(*props.ContentType)) {
		return false
	}
	if props.ResponseTopic != nil && !packet.ValidUTF8([]byte(*props.ResponseTopic)) {
		return false
	}
	for _, up := range props.UserProperties {
		if !packet.ValidUTF8([]byte(up.Key)) || !packet.ValidUTF8([]byte(up.Value)) {
			return false
		}
	}
	return true
}

// Publish sends a PUBLISH after the pre-flight validation in spec §4.7.
// Returns the assigned packet id (0 for QoS 0).
func (c *Client) Publish(msg PublishMessage) (uint16, error) {
	if c.state != StateConnected {
		return 0, ErrNotConnected
	}
	if !msg.QoS.Valid() {
		return 0, ErrInvalidQoS
	}
	if msg.QoS > c.connack.MaxQoS {
		return 0, ErrQoSNotSupported
	}
	if msg.Retain && !c.connack.RetainAvailable {
		return 0, ErrRetainNotSupported
	}
	if strings.ContainsAny(msg.Topic, "+#") {
		return 0, ErrInvalidTopic
	}
	if !packet.ValidUTF8([]byte(msg.Topic)) {
		return 0, ErrInvalidEncoding
	}
	if !publishPropertiesValidUTF8(msg.Properties) {
		return 0, ErrInvalidEncoding
	}
	if p := msg.Properties; p != nil && p.PayloadFormatIndicator != nil && *p.PayloadFormatIndicator == 1 && !packet.ValidUTF8(msg.Payload) {
		return 0, ErrInvalidEncoding
	}

	var packetID uint16
	if msg.QoS > packet.QoS0 {
		await := packet.Puback
		if msg.QoS == packet.QoS2 {
			await = packet.Pubrec
		}
		id, err := c.pending.reserveForOutbound(await)
		if err != nil {
			return 0, err
		}
		packetID = id
	}

	buf := (&packet.Publish{
		QoS:        msg.QoS,
		Retain:     msg.Retain,
		Dup:        msg.Dup,
		Topic:      msg.Topic,
		PacketID:   packetID,
		Properties: msg.Properties,
		Payload:    msg.Payload,
	}).Build()

	if err := c.sendRaw(packet.Publish, buf); err != nil {
		if packetID != 0 {
			_ = c.pending.release(packetID)
		}
		return 0, err
	}

	switch msg.QoS {
	case packet.QoS1:
		c.expected = c.expected.With(packet.Puback)
	case packet.QoS2:
		c.expected = c.expected.With(packet.Pubrec)
	}
	return packetID, nil
}

// Subscribe sends a SUBSCRIBE with one pending slot covering every
// entry, after per-entry validation (spec §4.7).
func (c *Client) Subscribe(entries []SubscriptionEntry) (uint16, error) {
	if c.state != StateConnected {
		return 0, ErrNotConnected
	}
	if len(entries) == 0 {
		return 0, ErrInvalidArgument.WithMsg("no subscription entries")
	}
	for _, e := range entries {
		if !e.QoS.Valid() || e.QoS > c.connack.MaxQoS {
			return 0, ErrQoSNotSupported
		}
		if e.RetainHandling > 2 {
			return 0, ErrInvalidArgument.WithMsg("retain_handling out of range")
		}
		if strings.HasPrefix(e.TopicFilter, "$share/") && !c.connack.SharedSubAvailable {
			return 0, ErrUnsupported.WithMsg("shared subscriptions not supported by server")
		}
		if strings.ContainsAny(e.TopicFilter, "+#") && !c.connack.WildcardSubAvailable {
			return 0, ErrUnsupported.WithMsg("wildcard subscriptions not supported by server")
		}
		if !packet.ValidUTF8([]byte(e.TopicFilter)) {
			return 0, ErrInvalidEncoding
		}
	}

	id, err := c.pending.reserveForOutbound(packet.Suback)
	if err != nil {
		return 0, err
	}

	buf := (&packet.Subscribe{PacketID: id, Entries: entries}).Build()
	if err := c.sendRaw(packet.Subscribe, buf); err != nil {
		_ = c.pending.release(id)
		return 0, err
	}
	c.expected = c.expected.With(packet.Suback)
	return id, nil
}

// Unsubscribe sends an UNSUBSCRIBE covering every filter.
func (c *Client) Unsubscribe(filters []string) (uint16, error) {
	if c.state != StateConnected {
		return 0, ErrNotConnected
	}
	if len(filters) == 0 {
		return 0, ErrInvalidArgument.WithMsg("no topic filters")
	}
	for _, f := range filters {
		if !packet.ValidUTF8([]byte(f)) {
			return 0, ErrInvalidEncoding
		}
	}

	id, err := c.pending.reserveForOutbound(packet.Unsuback)
	if err != nil {
		return 0, err
	}

	buf := (&packet.Unsubscribe{PacketID: id, TopicFilters: filters}).Build()
	if err := c.sendRaw(packet.Unsubscribe, buf); err != nil {
		_ = c.pending.release(id)
		return 0, err
	}
	c.expected = c.expected.With(packet.Unsuback)
	return id, nil
}

// Ping sends PINGREQ. PINGRESP is always in the expected mask, so no
// pending-table slot is reserved for the exchange.
func (c *Client) Ping() error {
	if c.state != StateConnected {
		return ErrNotConnected
	}
	return c.sendRaw(packet.Pingreq, packet.BuildPingreq())
}

// Disconnect sends DISCONNECT and tears the session down locally; the
// transport is closed regardless of whether the send succeeds.
func (c *Client) Disconnect(reasonCode packet.ReasonCode) error {
	if c.state == StateDisconnected {
		return nil
	}
	buf := (&packet.Disconnect{ReasonCode: reasonCode}).Build()
	sendErr := c.sendRaw(packet.Disconnect, buf)
	c.teardown()
	return sendErr
}

// NextPingDeadline returns the instant by which a caller's own event
// loop should have sent a PINGREQ to stay within the server's
// keep-alive, given the last activity at now. The engine owns no timer
// itself (spec §5, "cancellation/timeout: not a concern of the core").
func (c *Client) NextPingDeadline(now time.Time) time.Time {
	ka := c.connack.ServerKeepAlive
	if ka == 0 {
		ka = c.opts.KeepAlive
	}
	return now.Add(time.Duration(ka) * time.Second)
}

func (c *Client) sendRaw(t packet.Type, buf []byte) error {
	err := c.opts.Transport.Send(buf)
	if err != nil {
		c.opts.Logger.Warn("send failed", "type", t.String(), "err", err)
		return err
	}
	c.metrics.sent(t, len(buf))
	c.metrics.setOccupancy(c.pending.occupancy())
	c.opts.Logger.Debug("packet sent", "type", t.String(), "bytes", len(buf))
	return nil
}

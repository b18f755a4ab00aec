package mqttclient

import (
	"testing"

	"github.com/ionmesh/mqttclient/packet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport is an in-memory Transport recording every Send call, used
// instead of a real socket since the session owns no concurrency and
// every test drives it synchronously.
type fakeTransport struct {
	connected bool
	closed    bool
	deferOpen bool
	sendErr   error
	sent      [][]byte
}

func (f *fakeTransport) Open(string) (bool, error) {
	f.connected = !f.deferOpen
	return f.deferOpen, nil
}
func (f *fakeTransport) Connected() bool { return f.connected }
func (f *fakeTransport) Close() error    { f.closed = true; return nil }
func (f *fakeTransport) Send(buf []byte) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	cp := append([]byte(nil), buf...)
	f.sent = append(f.sent, cp)
	return nil
}
func (f *fakeTransport) Recv([]byte) (int, error) { return 0, nil }

// recordingSink captures every notification fired during a test.
type recordingSink struct {
	NoopSink
	connected     []ConnackInfo
	acked         []uint16
	completed     []uint16
	granted       []int
	declined      []int
	unsubscribed  []uint16
	pings         int
	disconnected  []packet.ReasonCode
	received      []ReceivedPublish
}

func (s *recordingSink) Connected(info ConnackInfo)       { s.connected = append(s.connected, info) }
func (s *recordingSink) PublishReceived(m ReceivedPublish) { s.received = append(s.received, m) }
func (s *recordingSink) PublishAcknowledged(id uint16, _ packet.ReasonCode) {
	s.acked = append(s.acked, id)
}
func (s *recordingSink) PublishCompleted(id uint16, _ packet.ReasonCode) {
	s.completed = append(s.completed, id)
}
func (s *recordingSink) SubscriptionGranted(_ uint16, index int, _ packet.QoS) {
	s.granted = append(s.granted, index)
}
func (s *recordingSink) SubscriptionDeclined(_ uint16, index int, _ packet.ReasonCode) {
	s.declined = append(s.declined, index)
}
func (s *recordingSink) UnsubscribeCompleted(id uint16) { s.unsubscribed = append(s.unsubscribed, id) }
func (s *recordingSink) PingReceived()                  { s.pings++ }
func (s *recordingSink) ReceivedDisconnect(r packet.ReasonCode) {
	s.disconnected = append(s.disconnected, r)
}

func connackBytes(reason packet.ReasonCode) []byte {
	return []byte{0x20, 0x03, 0x00, byte(reason), 0x00}
}

// newConnected builds a Client already past CONNECT/CONNACK, matching
// the state every scenario in spec §8 starts from.
func newConnected(t *testing.T, sink NotificationSink) (*Client, *fakeTransport) {
	t.Helper()
	ft := &fakeTransport{}
	if sink == nil {
		sink = &recordingSink{}
	}
	c, err := New(WithTransport(ft), WithClientID("test-client"), WithNotificationSink(sink))
	require.NoError(t, err)
	require.NoError(t, c.Connect())
	require.NoError(t, c.ProcessPacket(connackBytes(packet.ReasonSuccess)))
	require.Equal(t, StateConnected, c.State())
	ft.sent = nil
	return c, ft
}

func TestConnectSendsConnectAndAwaitsConnack(t *testing.T) {
	ft := &fakeTransport{}
	c, err := New(WithTransport(ft), WithClientID("c1"))
	require.NoError(t, err)

	require.NoError(t, c.Connect())
	assert.Equal(t, StateConnecting, c.State())
	require.Len(t, ft.sent, 1)

	// Parse only decodes packet types a client receives, so the sent
	// CONNECT is checked through its fixed header.
	rl, n, err := packet.DecodeVarint(ft.sent[0][1:])
	require.NoError(t, err)
	assert.Equal(t, len(ft.sent[0]), 1+n+int(rl))
	assert.Equal(t, packet.Connect, packet.Type(ft.sent[0][0]>>4))
	assert.True(t, c.expected.Has(packet.Connack))
}

func TestDeferredConnectFlushesOnPoll(t *testing.T) {
	ft := &fakeTransport{deferOpen: true}
	c, err := New(WithTransport(ft), WithClientID("c1"))
	require.NoError(t, err)

	err = c.Connect()
	assert.ErrorIs(t, err, ErrPending)
	assert.Empty(t, ft.sent)

	ft.connected = true
	require.NoError(t, c.Poll())
	require.Len(t, ft.sent, 1)
}

func TestConnackSuccessTransitionsAndSetsExpectedMask(t *testing.T) {
	sink := &recordingSink{}
	c, _ := newConnected(t, sink)

	assert.True(t, c.expected.Has(packet.Publish))
	assert.True(t, c.expected.Has(packet.Disconnect))
	assert.True(t, c.expected.Has(packet.Pingresp))
	require.Len(t, sink.connected, 1)
	assert.True(t, sink.connected[0].RetainAvailable)
}

func TestConnackDeclinedReturnsServerDeclinedAndResetsState(t *testing.T) {
	ft := &fakeTransport{}
	c, err := New(WithTransport(ft), WithClientID("c1"))
	require.NoError(t, err)
	require.NoError(t, c.Connect())

	err = c.ProcessPacket(connackBytes(packet.ReasonNotAuthorized))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServerDeclined)
	assert.Equal(t, StateDisconnected, c.State())
	assert.True(t, ft.closed)
}

func TestQoS1PublishRoundTrip(t *testing.T) {
	sink := &recordingSink{}
	c, ft := newConnected(t, sink)

	id, err := c.Publish(PublishMessage{Topic: "a/b", Payload: []byte("hi"), QoS: packet.QoS1})
	require.NoError(t, err)
	assert.Equal(t, uint16(1), id)
	assert.True(t, c.expected.Has(packet.Puback))
	require.Len(t, ft.sent, 1)
	assert.Equal(t, []byte{0x32, 0x0A, 0x00, 0x03, 0x61, 0x2F, 0x62, 0x00, 0x01, 0x00, 0x68, 0x69}, ft.sent[0])

	require.NoError(t, c.ProcessPacket([]byte{0x40, 0x03, 0x00, 0x01, 0x00}))
	assert.Equal(t, []uint16{1}, sink.acked)
	assert.False(t, c.expected.Has(packet.Puback))
	assert.Equal(t, 0, c.pending.occupancy())
}

func TestQoS2FullFlowReturnsPendingTableToPriorSize(t *testing.T) {
	sink := &recordingSink{}
	c, ft := newConnected(t, sink)
	assert.Equal(t, 0, c.pending.occupancy())

	id, err := c.Publish(PublishMessage{Topic: "a/b", Payload: []byte("hi"), QoS: packet.QoS2})
	require.NoError(t, err)
	assert.Equal(t, uint16(1), id)
	assert.Equal(t, 1, c.pending.occupancy())
	assert.True(t, c.expected.Has(packet.Pubrec))

	require.NoError(t, c.ProcessPacket([]byte{0x50, 0x03, 0x00, 0x01, 0x00}))
	assert.Equal(t, 1, c.pending.occupancy())
	assert.True(t, c.expected.Has(packet.Pubcomp))
	assert.False(t, c.expected.Has(packet.Pubrec))
	require.Len(t, ft.sent, 2)
	assert.Equal(t, []byte{0x62, 0x03, 0x00, 0x01, 0x00}, ft.sent[1])

	require.NoError(t, c.ProcessPacket([]byte{0x70, 0x03, 0x00, 0x01, 0x00}))
	assert.Equal(t, 0, c.pending.occupancy())
	assert.Equal(t, []uint16{1}, sink.completed)

	err = c.ProcessPacket([]byte{0x70, 0x03, 0x00, 0x01, 0x00})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnexpectedPacketType)
}

func TestSubscribeGrantedAndDeclined(t *testing.T) {
	sink := &recordingSink{}
	c, ft := newConnected(t, sink)

	id, err := c.Subscribe([]SubscriptionEntry{
		{TopicFilter: "sensors/+", QoS: packet.QoS1},
		{TopicFilter: "alerts/#", QoS: packet.QoS2},
	})
	require.NoError(t, err)
	assert.Equal(t, uint16(1), id)
	assert.Equal(t, byte(0x80|0b0010), ft.sent[0][0])

	// Reason 0x01 grants entry 0 at QoS 1; 0x80 declines entry 1.
	require.NoError(t, c.ProcessPacket([]byte{0x90, 0x05, 0x00, 0x01, 0x00, 0x01, 0x80}))
	assert.Equal(t, []int{0}, sink.granted)
	assert.Equal(t, []int{1}, sink.declined)
	assert.False(t, c.expected.Has(packet.Suback))
}

func TestInboundQoS2PublishSendsPubrecThenAcceptsPubrel(t *testing.T) {
	sink := &recordingSink{}
	c, ft := newConnected(t, sink)

	incoming := (&packet.Publish{
		QoS:      packet.QoS2,
		Topic:    "sensors/x",
		PacketID: 0x2A,
		Payload:  []byte("23.5"),
	}).Build()

	require.NoError(t, c.ProcessPacket(incoming))
	require.Len(t, sink.received, 1)
	assert.Equal(t, "sensors/x", sink.received[0].Topic)
	require.Len(t, ft.sent, 1)
	assert.Equal(t, []byte{0x50, 0x03, 0x00, 0x2A, 0x00}, ft.sent[0])
	assert.True(t, c.expected.Has(packet.Pubrel))

	rel := packet.BuildPubrel(packet.AckFamily{PacketID: 0x2A, ReasonCode: packet.ReasonSuccess})
	require.NoError(t, c.ProcessPacket(rel))
	require.Len(t, ft.sent, 2)
	assert.Equal(t, []byte{0x70, 0x03, 0x00, 0x2A, 0x00}, ft.sent[1])
	assert.False(t, c.expected.Has(packet.Pubrel))
}

func TestPublishRejectsWildcardTopic(t *testing.T) {
	c, _ := newConnected(t, nil)
	_, err := c.Publish(PublishMessage{Topic: "a/+", Payload: []byte("x")})
	assert.ErrorIs(t, err, ErrInvalidTopic)
}

func TestPublishRejectsQoSAboveServerMaximum(t *testing.T) {
	c, _ := newConnected(t, nil)
	c.connack.MaxQoS = packet.QoS0
	_, err := c.Publish(PublishMessage{Topic: "a/b", Payload: []byte("x"), QoS: packet.QoS1})
	assert.ErrorIs(t, err, ErrQoSNotSupported)
}

func TestPublishBeforeConnectedFails(t *testing.T) {
	ft := &fakeTransport{}
	c, err := New(WithTransport(ft))
	require.NoError(t, err)
	_, err = c.Publish(PublishMessage{Topic: "a/b"})
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestMalformedSizeYieldsInvalidPacketSize(t *testing.T) {
	c, _ := newConnected(t, nil)
	bad := []byte{0x30, 0x14}
	bad = append(bad, make([]byte, 18)...)
	err := c.ProcessPacket(bad)
	assert.ErrorIs(t, err, ErrInvalidPacketSize)
	assert.Equal(t, StateConnected, c.State())
}

func TestDisconnectTearsDownSession(t *testing.T) {
	c, ft := newConnected(t, nil)
	require.NoError(t, c.Disconnect(packet.ReasonDisconnectNormal))
	assert.Equal(t, StateDisconnected, c.State())
	assert.True(t, ft.closed)
	assert.Equal(t, packet.TypeMask(0).With(packet.Pingresp), c.expected)
}

func TestInboundDisconnectNotifiesAndTearsDown(t *testing.T) {
	sink := &recordingSink{}
	c, _ := newConnected(t, sink)
	require.NoError(t, c.ProcessPacket([]byte{0xE0, 0x01, 0x8E}))
	assert.Equal(t, StateDisconnected, c.State())
	assert.Equal(t, []packet.ReasonCode{packet.ReasonSessionTakenOver}, sink.disconnected)
}

func TestPingRoundTrip(t *testing.T) {
	sink := &recordingSink{}
	c, ft := newConnected(t, sink)
	require.NoError(t, c.Ping())
	assert.Equal(t, []byte{0xC0, 0x00}, ft.sent[0])
	require.NoError(t, c.ProcessPacket([]byte{0xD0, 0x00}))
	assert.Equal(t, 1, sink.pings)
}

package packet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScenarioQoS0Publish is spec §8 S1: a QoS 0 publish end-to-end. The
// remaining-length byte documented there (0x0A) double-counts the fixed
// header; the wire-correct value for an 8-byte body is 0x08 (see
// SPEC_FULL.md open questions).
func TestScenarioQoS0Publish(t *testing.T) {
	p := &Publish{Topic: "a/b", Payload: []byte("hi")}
	got := p.Build()
	want := []byte{0x30, 0x08, 0x00, 0x03, 0x61, 0x2F, 0x62, 0x00, 0x68, 0x69}
	assert.Equal(t, want, got)
}

// TestScenarioQoS1Publish is spec §8 S2, with the same remaining-length
// correction (0x0C -> 0x0A) as S1.
func TestScenarioQoS1Publish(t *testing.T) {
	p := &Publish{QoS: QoS1, Topic: "a/b", PacketID: 1, Payload: []byte("hi")}
	got := p.Build()
	want := []byte{0x32, 0x0A, 0x00, 0x03, 0x61, 0x2F, 0x62, 0x00, 0x01, 0x00, 0x68, 0x69}
	assert.Equal(t, want, got)

	// PUBACK carrying an explicit reason byte with properties omitted
	// outright (3-byte body), exactly as spec §8 documents it.
	puback := []byte{0x40, 0x03, 0x00, 0x01, 0x00}
	typ, pkt, err := Parse(puback, TypeMask(0).With(Puback))
	require.NoError(t, err)
	assert.Equal(t, Puback, typ)
	a := (*AckFamily)(pkt.(*Puback_))
	assert.EqualValues(t, 1, a.PacketID)
	assert.Equal(t, ReasonSuccess, a.ReasonCode)
}

// TestScenarioQoS2Flow is spec §8 S3.
func TestScenarioQoS2Flow(t *testing.T) {
	p := &Publish{QoS: QoS2, Topic: "a/b", PacketID: 1, Payload: []byte("hi")}
	built := p.Build()
	assert.Equal(t, byte(0x34), built[0])

	pubrec := []byte{0x50, 0x03, 0x00, 0x01, 0x00}
	typ, pkt, err := Parse(pubrec, TypeMask(0).With(Pubrec))
	require.NoError(t, err)
	assert.Equal(t, Pubrec, typ)
	rec := (*AckFamily)(pkt.(*Pubrec_))
	assert.EqualValues(t, 1, rec.PacketID)
	assert.Equal(t, ReasonSuccess, rec.ReasonCode)

	pubrel := BuildPubrel(AckFamily{PacketID: 1, ReasonCode: ReasonSuccess})
	assert.Equal(t, []byte{0x62, 0x03, 0x00, 0x01, 0x00}, pubrel)

	pubcomp := []byte{0x70, 0x03, 0x00, 0x01, 0x00}
	typ, pkt, err = Parse(pubcomp, TypeMask(0).With(Pubcomp))
	require.NoError(t, err)
	assert.Equal(t, Pubcomp, typ)
	comp := (*AckFamily)(pkt.(*Pubcomp_))
	assert.EqualValues(t, 1, comp.PacketID)

	// A duplicate PUBCOMP with nothing expecting it is unexpected.
	_, _, err = Parse(pubcomp, TypeMask(0))
	assert.ErrorIs(t, err, ErrUnexpectedPacketType)
}

// TestScenarioSubscribeAndReceive is spec §8 S4.
func TestScenarioSubscribeAndReceive(t *testing.T) {
	sub := &Subscribe{
		PacketID: 1,
		Entries:  []SubscriptionEntry{{TopicFilter: "sensors/+", QoS: QoS1}},
	}
	built := sub.Build()
	assert.Equal(t, byte(0x82), built[0])
	assert.Equal(t, byte(0b0010), built[0]&0x0F)

	suback := []byte{0x90, 0x04, 0x00, 0x01, 0x00, 0x01}
	typ, pkt, err := Parse(suback, TypeMask(0).With(Suback))
	require.NoError(t, err)
	assert.Equal(t, Suback, typ)
	sa := pkt.(*Suback)
	assert.EqualValues(t, 1, sa.PacketID)
	require.Len(t, sa.ReasonCodes, 1)
	assert.Equal(t, ReasonGrantedQoS1, sa.ReasonCodes[0])

	// Remaining length corrected to 0x12 (18): spec §8's literal here
	// carries a stray extra byte and a remaining-length value that counts
	// the fixed header twice, the same documentation slip as S1/S2.
	incoming := []byte{
		0x32, 0x12,
		0x00, 0x09, 0x73, 0x65, 0x6E, 0x73, 0x6F, 0x72, 0x73, 0x2F, 0x78, // "sensors/x"
		0x00, 0x2A, // packet id 0x002A
		0x00,                   // properties length 0
		0x32, 0x33, 0x2E, 0x35, // "23.5"
	}
	typ, pkt, err = Parse(incoming, TypeMask(0).With(Publish))
	require.NoError(t, err)
	assert.Equal(t, Publish, typ)
	pub := pkt.(*Publish)
	assert.Equal(t, "sensors/x", pub.Topic)
	assert.EqualValues(t, 0x002A, pub.PacketID)
	assert.Equal(t, "23.5", string(pub.Payload))
}

// TestScenarioMalformedSize is spec §8 S5.
func TestScenarioMalformedSize(t *testing.T) {
	b := make([]byte, 1+1+18)
	b[0] = byte(Publish) << 4
	b[1] = 20 // declares 20 remaining bytes but the buffer only has 18
	_, _, err := Parse(b, TypeMask(0).With(Publish))
	assert.ErrorIs(t, err, ErrInvalidPacketSize)
}

// TestScenarioUTF8Rejection is spec §8 S6.
func TestScenarioUTF8Rejection(t *testing.T) {
	badTopic := []byte{0xED, 0xA0, 0x80} // surrogate
	body := append(append([]byte{0x00, 0x03}, badTopic...), 0x00) // len=3, topic, props-len=0
	b := buildFixed(Publish, 0, body)
	_, _, err := Parse(b, TypeMask(0).With(Publish))
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestConnectConnackRoundTrip(t *testing.T) {
	c := &Connect{
		CleanStart: true,
		KeepAlive:  60,
		ClientID:   "client-1",
		Properties: &Properties{SessionExpiryInterval: u32p(30)},
	}
	built := c.Build()
	assert.Equal(t, byte(Connect)<<4, built[0])
	// built[9] is the connect flags byte, after the fixed header (2),
	// protocol name (6) and version (1).
	assert.Equal(t, byte(0b0000_0010), built[9]) // clean start bit set

	connack := buildFixed(Connack, 0, []byte{0x00, 0x00, 0x00})
	typ, pkt, err := Parse(connack, TypeMask(0).With(Connack))
	require.NoError(t, err)
	assert.Equal(t, Connack, typ)
	ca := pkt.(*Connack)
	assert.False(t, ca.SessionPresent)
	assert.Equal(t, ReasonSuccess, ca.ReasonCode)
}

func TestConnackServerDeclined(t *testing.T) {
	connack := buildFixed(Connack, 0, []byte{0x00, byte(ReasonNotAuthorized), 0x00})
	_, pkt, err := Parse(connack, TypeMask(0).With(Connack))
	require.NoError(t, err) // parse itself succeeds; the session layer maps reason>=0x80
	ca := pkt.(*Connack)
	assert.True(t, ca.ReasonCode.IsError())
}

func TestUnsubscribeUnsubackRoundTrip(t *testing.T) {
	u := &Unsubscribe{PacketID: 9, TopicFilters: []string{"a/b", "c/d"}}
	built := u.Build()
	assert.Equal(t, byte(0b0010), built[0]&0x0F)

	unsuback := buildFixed(Unsuback, 0, []byte{0x00, 0x09, 0x00, 0x00, 0x11})
	typ, pkt, err := Parse(unsuback, TypeMask(0).With(Unsuback))
	require.NoError(t, err)
	assert.Equal(t, Unsuback, typ)
	ua := pkt.(*Unsuback)
	assert.EqualValues(t, 9, ua.PacketID)
	assert.Equal(t, []ReasonCode{ReasonSuccess, ReasonNoSubscriptionExisted}, ua.ReasonCodes)
}

func TestPingAndDisconnect(t *testing.T) {
	assert.Equal(t, []byte{0xC0, 0x00}, BuildPingreq())

	typ, pkt, err := Parse([]byte{0xD0, 0x00}, TypeMask(0).With(Pingresp))
	require.NoError(t, err)
	assert.Equal(t, Pingresp, typ)
	assert.IsType(t, &Pingresp_{}, pkt)

	d := &Disconnect{ReasonCode: ReasonSuccess}
	assert.Equal(t, []byte{0xE0, 0x00}, d.Build())

	withReason := &Disconnect{ReasonCode: ReasonServerShuttingDown}
	built := withReason.Build()
	typ, pkt, err = Parse(built, TypeMask(0).With(Disconnect))
	require.NoError(t, err)
	assert.Equal(t, Disconnect, typ)
	dd := pkt.(*Disconnect)
	assert.Equal(t, ReasonServerShuttingDown, dd.ReasonCode)
}

func TestAuthRoundTrip(t *testing.T) {
	a := &Auth{ReasonCode: ReasonSuccess}
	assert.Equal(t, []byte{0xF0, 0x00}, a.Build())

	method := "SCRAM"
	withMethod := &Auth{
		ReasonCode: ReasonContinueAuth,
		Properties: &Properties{AuthenticationMethod: strp(method)},
	}
	built := withMethod.Build()
	typ, pkt, err := Parse(built, TypeMask(0).With(Auth))
	require.NoError(t, err)
	assert.Equal(t, Auth, typ)
	got := pkt.(*Auth)
	assert.Equal(t, ReasonContinueAuth, got.ReasonCode)
	require.NotNil(t, got.Properties.AuthenticationMethod)
	assert.Equal(t, method, *got.Properties.AuthenticationMethod)
}

func TestBuildTwoPassesAgree(t *testing.T) {
	// Property law 4: the sizer pass and the writer pass must agree to
	// the byte for every builder. Exercised here across varied inputs
	// for the richest builder (CONNECT with a will and credentials).
	user := "bob"
	for i := 0; i < 50; i++ {
		c := &Connect{
			CleanStart: i%2 == 0,
			KeepAlive:  uint16(i * 7),
			ClientID:   "client",
			Will: &Will{
				QoS:     QoS(i % 3),
				Topic:   "will/topic",
				Payload: make([]byte, i),
			},
			Username: &user,
			Password: []byte("secret"),
			Properties: &Properties{
				SessionExpiryInterval: u32p(uint32(i)),
			},
		}
		built := c.Build()
		_, n, err := DecodeVarint(built[1:])
		require.NoError(t, err)
		rl, _, _ := DecodeVarint(built[1:])
		assert.Equal(t, len(built), 1+n+int(rl))
	}
}

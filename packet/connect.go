package packet

// ProtocolName and ProtocolVersion are fixed for MQTT 5.0 (spec §4.4).
const (
	ProtocolName    = "MQTT"
	ProtocolVersion = 5
)

// Will describes the optional CONNECT will message.
type Will struct {
	QoS        QoS
	Retain     bool
	Topic      string
	Payload    []byte
	Properties *Properties
}

// Connect is the outbound CONNECT build request.
type Connect struct {
	CleanStart bool
	KeepAlive  uint16
	ClientID   string
	Will       *Will
	Username   *string
	Password   []byte
	Properties *Properties
}

// Build encodes c as a CONNECT packet (spec §4.4): protocol name/version,
// connect flags, keep-alive, properties, client id, then conditionally
// will properties/topic/payload, username, password.
func (c *Connect) Build() []byte {
	props := c.Properties.Encode()
	var willProps []byte
	if c.Will != nil {
		willProps = c.Will.Properties.Encode()
	}

	flags := byte(0)
	if c.CleanStart {
		flags |= 0b0000_0010
	}
	if c.Will != nil {
		flags |= 0b0000_0100
		flags |= byte(c.Will.QoS) << 3
		if c.Will.Retain {
			flags |= 0b0010_0000
		}
	}
	if c.Password != nil {
		flags |= 0b0100_0000
	}
	if c.Username != nil {
		flags |= 0b1000_0000
	}

	build := func(cur cursor) {
		cur.str(ProtocolName)
		cur.u8(ProtocolVersion)
		cur.u8(flags)
		cur.u16(c.KeepAlive)
		cur.varint(uint32(len(props)))
		cur.raw(props)
		cur.str(c.ClientID)
		if c.Will != nil {
			cur.varint(uint32(len(willProps)))
			cur.raw(willProps)
			cur.str(c.Will.Topic)
			cur.u16(uint16(len(c.Will.Payload)))
			cur.raw(c.Will.Payload)
		}
		if c.Username != nil {
			cur.str(*c.Username)
		}
		if c.Password != nil {
			cur.u16(uint16(len(c.Password)))
			cur.raw(c.Password)
		}
	}

	s := &sizer{}
	build(s)
	buf := make([]byte, s.n)
	build(newWriter(buf))
	return buildFixed(Connect, 0, buf)
}

package packet

// Publish is both the outbound build request and the decoded inbound
// form of a PUBLISH packet. Payload is never copied by Parse — it is a
// slice into the buffer Parse was given, matching the zero-copy borrow
// spec §3 describes for ReceivedPublish. Callers that need to keep it
// past the lifetime of that buffer must copy it themselves.
type Publish struct {
	Dup      bool
	QoS      QoS
	Retain   bool
	Topic    string
	PacketID uint16 // only meaningful/present on wire when QoS > 0
	Properties *Properties
	Payload  []byte
}

// Build encodes p as a PUBLISH packet. The caller is responsible for
// having already validated Topic (UTF-8, no wildcards) and, if
// PayloadFormatIndicator is set to 1, that Payload is valid UTF-8 —
// Build itself does not re-validate, since the session orchestrates
// those checks once during the publish pre-flight (spec §4.7).
func (p *Publish) Build() []byte {
	props := p.Properties.Encode()

	build := func(c cursor) {
		c.str(p.Topic)
		if p.QoS > QoS0 {
			c.u16(p.PacketID)
		}
		c.varint(uint32(len(props)))
		c.raw(props)
		c.raw(p.Payload)
	}

	s := &sizer{}
	build(s)
	buf := make([]byte, s.n)
	build(newWriter(buf))

	flags := byte(0)
	if p.Dup {
		flags |= 0b1000
	}
	flags |= byte(p.QoS) << 1
	if p.Retain {
		flags |= 0b0001
	}
	return buildFixed(Publish, flags, buf)
}

func parsePublish(flags byte, body []byte) (*Publish, error) {
	p := &Publish{
		Dup:    flags&0b1000 != 0,
		QoS:    QoS((flags & 0b0110) >> 1),
		Retain: flags&0b0001 != 0,
	}
	if !p.QoS.Valid() {
		return nil, ErrInvalidQoS
	}
	topic, n, err := DecodeString(body)
	if err != nil {
		return nil, err
	}
	p.Topic = topic
	pos := n

	if p.QoS > QoS0 {
		id, k, err := decodeU16(body[pos:])
		if err != nil {
			return nil, err
		}
		if id == 0 {
			return nil, ErrInvalidPacketID
		}
		p.PacketID = id
		pos += k
	}

	props, k, err := DecodeProperties(body[pos:])
	if err != nil {
		return nil, err
	}
	pos += k
	p.Properties = props

	p.Payload = body[pos:]

	if props.PayloadFormatIndicator != nil && *props.PayloadFormatIndicator == 1 {
		if !ValidUTF8(p.Payload) {
			return nil, ErrInvalidEncoding
		}
	}
	return p, nil
}

package packet

// SubscriptionEntry is one topic filter within a SUBSCRIBE packet.
type SubscriptionEntry struct {
	TopicFilter     string
	QoS             QoS
	NoLocal         bool
	RetainAsPublished bool
	RetainHandling  uint8 // 0, 1 or 2
}

// Subscribe is the outbound SUBSCRIBE build request.
type Subscribe struct {
	PacketID   uint16
	Properties *Properties
	Entries    []SubscriptionEntry
}

// Build encodes s as a SUBSCRIBE packet. Fixed-header flags are the
// reserved 0b0010 nibble (spec §4.4).
func (s *Subscribe) Build() []byte {
	props := s.Properties.Encode()

	build := func(c cursor) {
		c.u16(s.PacketID)
		c.varint(uint32(len(props)))
		c.raw(props)
		for _, e := range s.Entries {
			c.str(e.TopicFilter)
			opt := byte(e.RetainHandling&0x03) << 4
			if e.RetainAsPublished {
				opt |= 0b0000_1000
			}
			if e.NoLocal {
				opt |= 0b0000_0100
			}
			opt |= byte(e.QoS) & 0x03
			c.u8(opt)
		}
	}

	sz := &sizer{}
	build(sz)
	buf := make([]byte, sz.n)
	build(newWriter(buf))
	return buildFixed(Subscribe, 0b0010, buf)
}

// Suback is the decoded SUBACK packet: one reason code per requested
// subscription entry, in request order.
type Suback struct {
	PacketID    uint16
	Properties  *Properties
	ReasonCodes []ReasonCode
}

func parseSuback(body []byte) (*Suback, error) {
	id, n, err := decodeU16(body)
	if err != nil {
		return nil, err
	}
	if id == 0 {
		return nil, ErrInvalidPacketID
	}
	props, k, err := DecodeProperties(body[n:])
	if err != nil {
		return nil, err
	}
	n += k
	if n > len(body) {
		return nil, ErrInvalidPacketSize
	}
	codes := make([]ReasonCode, 0, len(body)-n)
	for _, b := range body[n:] {
		codes = append(codes, ReasonCode(b))
	}
	return &Suback{PacketID: id, Properties: props, ReasonCodes: codes}, nil
}

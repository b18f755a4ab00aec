package packet

// Unsubscribe is the outbound UNSUBSCRIBE build request.
type Unsubscribe struct {
	PacketID     uint16
	Properties   *Properties
	TopicFilters []string
}

// Build encodes u as an UNSUBSCRIBE packet. Fixed-header flags are the
// reserved 0b0010 nibble (spec §4.4).
func (u *Unsubscribe) Build() []byte {
	props := u.Properties.Encode()

	build := func(c cursor) {
		c.u16(u.PacketID)
		c.varint(uint32(len(props)))
		c.raw(props)
		for _, f := range u.TopicFilters {
			c.str(f)
		}
	}

	sz := &sizer{}
	build(sz)
	buf := make([]byte, sz.n)
	build(newWriter(buf))
	return buildFixed(Unsubscribe, 0b0010, buf)
}

// Unsuback is the decoded UNSUBACK packet.
type Unsuback struct {
	PacketID    uint16
	Properties  *Properties
	ReasonCodes []ReasonCode
}

func parseUnsuback(body []byte) (*Unsuback, error) {
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
	return &Unsuback{PacketID: id, Properties: props, ReasonCodes: codes}, nil
}

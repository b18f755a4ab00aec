package packet

// Disconnect is both the outbound build request and the decoded inbound
// form of DISCONNECT.
type Disconnect struct {
	ReasonCode ReasonCode
	Properties *Properties
}

// Build encodes d as a DISCONNECT packet, picking the shortest legal wire
// form: empty body when the reason would be Success with no properties,
// reason-only when there are no properties, or reason + property-length +
// properties otherwise. The ACK family, unlike DISCONNECT, always writes
// its reason byte.
func (d *Disconnect) Build() []byte {
	props := d.Properties.Encode()
	switch {
	case d.ReasonCode == ReasonSuccess && len(props) == 0:
		return buildFixed(Disconnect, 0, nil)
	case len(props) == 0:
		return buildFixed(Disconnect, 0, []byte{byte(d.ReasonCode)})
	default:
		build := func(c cursor) {
			c.u8(byte(d.ReasonCode))
			c.varint(uint32(len(props)))
			c.raw(props)
		}
		s := &sizer{}
		build(s)
		buf := make([]byte, s.n)
		build(newWriter(buf))
		return buildFixed(Disconnect, 0, buf)
	}
}

func parseDisconnect(body []byte) (*Disconnect, error) {
	switch len(body) {
	case 0:
		return &Disconnect{ReasonCode: ReasonSuccess}, nil
	case 1:
		return &Disconnect{ReasonCode: ReasonCode(body[0])}, nil
	}
	props, n, err := DecodeProperties(body[1:])
	if err != nil {
		return nil, err
	}
	if 1+n != len(body) {
		return nil, ErrInvalidPacketSize
	}
	return &Disconnect{ReasonCode: ReasonCode(body[0]), Properties: props}, nil
}

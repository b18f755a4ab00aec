package packet

// Auth is the AUTH packet (MQTT 5.0 enhanced authentication exchange).
// It is not part of the core flows spec.md names (§4.4/§4.5 only cover
// CONNECT through PINGRESP/DISCONNECT), but the packet type is reserved
// in spec §3 and several Authentication Method/Data properties in §6.1
// have nowhere else to be exercised, so the builder/parser pair is added
// here (see SPEC_FULL.md §4).
type Auth struct {
	ReasonCode ReasonCode
	Properties *Properties
}

// Build encodes a as an AUTH packet, using the same three-way short-form
// scheme as DISCONNECT (empty body, reason only, or reason + properties).
func (a *Auth) Build() []byte {
	props := a.Properties.Encode()
	switch {
	case a.ReasonCode == ReasonSuccess && len(props) == 0:
		return buildFixed(Auth, 0, nil)
	case len(props) == 0:
		return buildFixed(Auth, 0, []byte{byte(a.ReasonCode)})
	default:
		build := func(c cursor) {
			c.u8(byte(a.ReasonCode))
			c.varint(uint32(len(props)))
			c.raw(props)
		}
		s := &sizer{}
		build(s)
		buf := make([]byte, s.n)
		build(newWriter(buf))
		return buildFixed(Auth, 0, buf)
	}
}

func parseAuth(body []byte) (*Auth, error) {
	switch len(body) {
	case 0:
		return &Auth{ReasonCode: ReasonSuccess}, nil
	case 1:
		return &Auth{ReasonCode: ReasonCode(body[0])}, nil
	}
	props, n, err := DecodeProperties(body[1:])
	if err != nil {
		return nil, err
	}
	if 1+n != len(body) {
		return nil, ErrInvalidPacketSize
	}
	return &Auth{ReasonCode: ReasonCode(body[0]), Properties: props}, nil
}

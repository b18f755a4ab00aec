package packet

// Connack is the decoded CONNACK packet.
type Connack struct {
	SessionPresent bool
	ReasonCode     ReasonCode
	Properties     *Properties
}

func parseConnack(body []byte) (*Connack, error) {
	if len(body) < 2 {
		return nil, ErrMalformedPacket.WithMsg("short connack")
	}
	if body[0]&0xFE != 0 {
		return nil, ErrMalformedPacket.WithMsg("connack acknowledge flags reserved bits set")
	}
	c := &Connack{
		SessionPresent: body[0]&0x01 != 0,
		ReasonCode:     ReasonCode(body[1]),
	}
	props, n, err := DecodeProperties(body[2:])
	if err != nil {
		return nil, err
	}
	if 2+n != len(body) {
		return nil, ErrInvalidPacketSize
	}
	c.Properties = props
	return c, nil
}

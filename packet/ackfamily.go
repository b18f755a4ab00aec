package packet

// AckFamily is the shared shape of PUBACK, PUBREC, PUBREL and PUBCOMP:
// packet id, a reason code, and optional properties. Per spec §4.4/§8,
// this engine always writes the reason byte on send and only omits the
// property-length/property list when there are none — the scenario
// bytes in spec §8 S2/S3 show PUBACK/PUBREC/PUBREL/PUBCOMP with an
// explicit reason byte even for Success. The bare 2-byte id-only form is
// still accepted on receive (spec §4.5: any ack body that ends right
// after the packet id means Success, no properties), since nothing rules
// out a broker using it.
type AckFamily struct {
	PacketID   uint16
	ReasonCode ReasonCode
	Properties *Properties
}

// Distinct named types so Parse's type switch/return value tells apart
// which packet was decoded while sharing one encode/decode implementation.
type (
	Puback_  AckFamily
	Pubrec_  AckFamily
	Pubrel_  AckFamily
	Pubcomp_ AckFamily
)

// buildAckFamily always writes the packet id and reason code, adding a
// property-length and property list only when there are properties.
func buildAckFamily(t Type, flags byte, a AckFamily) []byte {
	props := a.Properties.Encode()
	build := func(c cursor) {
		c.u16(a.PacketID)
		c.u8(byte(a.ReasonCode))
		if len(props) > 0 {
			c.varint(uint32(len(props)))
			c.raw(props)
		}
	}
	s := &sizer{}
	build(s)
	buf := make([]byte, s.n)
	build(newWriter(buf))
	return buildFixed(t, flags, buf)
}

// parseAckFamily accepts three body forms: a 2-byte body is id-only
// (Success, no properties; buildAckFamily never emits it), a 3-byte body
// is id + reason with properties omitted outright, anything longer carries
// a property-length and property list after the reason code.
func parseAckFamily(body []byte) (*AckFamily, error) {
	id, n, err := decodeU16(body)
	if err != nil {
		return nil, err
	}
	if id == 0 {
		return nil, ErrInvalidPacketID
	}
	a := &AckFamily{PacketID: id, ReasonCode: ReasonSuccess}
	switch {
	case n == len(body):
		return a, nil
	case n+1 == len(body):
		a.ReasonCode = ReasonCode(body[n])
		return a, nil
	}
	a.ReasonCode = ReasonCode(body[n])
	n++
	props, k, err := DecodeProperties(body[n:])
	if err != nil {
		return nil, err
	}
	n += k
	if n != len(body) {
		return nil, ErrInvalidPacketSize
	}
	a.Properties = props
	return a, nil
}

// BuildPuback, BuildPubrec, BuildPubcomp encode their respective ACK
// packet; flags are always 0 for these three.
func BuildPuback(a AckFamily) []byte  { return buildAckFamily(Puback, 0, a) }
func BuildPubrec(a AckFamily) []byte  { return buildAckFamily(Pubrec, 0, a) }
func BuildPubcomp(a AckFamily) []byte { return buildAckFamily(Pubcomp, 0, a) }

// BuildPubrel encodes PUBREL, whose fixed-header flags are the reserved
// 0b0010 nibble (spec §4.4).
func BuildPubrel(a AckFamily) []byte { return buildAckFamily(Pubrel, 0b0010, a) }

package packet

// BuildPingreq encodes the PINGREQ packet: no variable header, no
// payload, remaining length 0 (spec §4.4).
func BuildPingreq() []byte { return buildFixed(Pingreq, 0, nil) }

// Pingresp_ is the decoded PINGRESP packet; it carries no data.
type Pingresp_ struct{}

package packet

// Property identifiers from the MQTT 5.0 registry, restricted to the
// subset this engine recognises (spec §6.1).
const (
	propPayloadFormatIndicator          = 0x01
	propMessageExpiryInterval           = 0x02
	propContentType                     = 0x03
	propResponseTopic                   = 0x08
	propCorrelationData                 = 0x09
	propSubscriptionIdentifier          = 0x0B
	propSessionExpiryInterval           = 0x11
	propAssignedClientIdentifier        = 0x12
	propServerKeepAlive                 = 0x13
	propAuthenticationMethod            = 0x15
	propAuthenticationData              = 0x16
	propRequestProblemInformation       = 0x17
	propWillDelayInterval               = 0x18
	propRequestResponseInformation      = 0x19
	propResponseInformation             = 0x1A
	propServerReference                 = 0x1C
	propReasonString                    = 0x1F
	propReceiveMaximum                  = 0x21
	propTopicAliasMaximum               = 0x22
	propTopicAlias                      = 0x23
	propMaximumQoS                      = 0x24
	propRetainAvailable                 = 0x25
	propUserProperty                    = 0x26
	propMaximumPacketSize               = 0x27
	propWildcardSubscriptionAvailable   = 0x28
	propSubscriptionIdentifierAvailable = 0x29
	propSharedSubscriptionAvailable     = 0x2A
)

// UserProperty is a repeatable MQTT 5.0 string-pair property; order among
// repeats is preserved.
type UserProperty struct {
	Key   string
	Value string
}

// Properties is the decoded form of an MQTT 5.0 property list. Every
// field is optional (nil/zero-length means absent); only the identifiers
// relevant to the packet type being built or parsed are consulted, per
// the per-context table in spec §6.1.
type Properties struct {
	PayloadFormatIndicator          *byte
	MessageExpiryInterval           *uint32
	ContentType                     *string
	ResponseTopic                   *string
	CorrelationData                 []byte
	SubscriptionIdentifier          *uint32
	SessionExpiryInterval           *uint32
	AssignedClientIdentifier        *string
	ServerKeepAlive                 *uint16
	AuthenticationMethod            *string
	AuthenticationData              []byte
	RequestProblemInformation       *byte
	WillDelayInterval                *uint32
	RequestResponseInformation      *byte
	ResponseInformation             *string
	ServerReference                 *string
	ReasonString                    *string
	ReceiveMaximum                  *uint16
	TopicAliasMaximum               *uint16
	TopicAlias                      *uint16
	MaximumQoS                      *byte
	RetainAvailable                 *byte
	UserProperties                  []UserProperty
	MaximumPacketSize                *uint32
	WildcardSubscriptionAvailable    *byte
	SubscriptionIdentifierAvailable  *byte
	SharedSubscriptionAvailable      *byte
}

func u8p(b byte) *byte       { return &b }
func u16p(v uint16) *uint16  { return &v }
func u32p(v uint32) *uint32  { return &v }
func strp(s string) *string  { return &s }

// Encode serialises the set fields of p into the raw (id, value) pair
// stream, without the leading length prefix — callers prepend
// varint(len(result)) themselves (spec §4.3).
func (p *Properties) Encode() []byte {
	if p == nil {
		return nil
	}
	s := &sizer{}
	p.walk(s)
	buf := make([]byte, s.n)
	w := newWriter(buf)
	p.walk(w)
	return buf
}

// walk writes every set property to c in a fixed, deterministic order.
// Running it once against a sizer and once against a writer is what
// keeps the two encode passes byte-identical (spec §4.4 invariant).
func (p *Properties) walk(c cursor) {
	if p.PayloadFormatIndicator != nil {
		c.u8(propPayloadFormatIndicator)
		c.u8(*p.PayloadFormatIndicator)
	}
	if p.MessageExpiryInterval != nil {
		c.u8(propMessageExpiryInterval)
		c.u32(*p.MessageExpiryInterval)
	}
	if p.ContentType != nil {
		c.u8(propContentType)
		c.str(*p.ContentType)
	}
	if p.ResponseTopic != nil {
		c.u8(propResponseTopic)
		c.str(*p.ResponseTopic)
	}
	if p.CorrelationData != nil {
		c.u8(propCorrelationData)
		c.u16(uint16(len(p.CorrelationData)))
		c.raw(p.CorrelationData)
	}
	if p.SubscriptionIdentifier != nil {
		c.u8(propSubscriptionIdentifier)
		c.varint(*p.SubscriptionIdentifier)
	}
	if p.SessionExpiryInterval != nil {
		c.u8(propSessionExpiryInterval)
		c.u32(*p.SessionExpiryInterval)
	}
	if p.AssignedClientIdentifier != nil {
		c.u8(propAssignedClientIdentifier)
		c.str(*p.AssignedClientIdentifier)
	}
	if p.ServerKeepAlive != nil {
		c.u8(propServerKeepAlive)
		c.u16(*p.ServerKeepAlive)
	}
	if p.AuthenticationMethod != nil {
		c.u8(propAuthenticationMethod)
		c.str(*p.AuthenticationMethod)
	}
	if p.AuthenticationData != nil {
		c.u8(propAuthenticationData)
		c.u16(uint16(len(p.AuthenticationData)))
		c.raw(p.AuthenticationData)
	}
	if p.RequestProblemInformation != nil {
		c.u8(propRequestProblemInformation)
		c.u8(*p.RequestProblemInformation)
	}
	if p.WillDelayInterval != nil {
		c.u8(propWillDelayInterval)
		c.u32(*p.WillDelayInterval)
	}
	if p.RequestResponseInformation != nil {
		c.u8(propRequestResponseInformation)
		c.u8(*p.RequestResponseInformation)
	}
	if p.ResponseInformation != nil {
		c.u8(propResponseInformation)
		c.str(*p.ResponseInformation)
	}
	if p.ServerReference != nil {
		c.u8(propServerReference)
		c.str(*p.ServerReference)
	}
	if p.ReasonString != nil {
		c.u8(propReasonString)
		c.str(*p.ReasonString)
	}
	if p.ReceiveMaximum != nil {
		c.u8(propReceiveMaximum)
		c.u16(*p.ReceiveMaximum)
	}
	if p.TopicAliasMaximum != nil {
		c.u8(propTopicAliasMaximum)
		c.u16(*p.TopicAliasMaximum)
	}
	if p.TopicAlias != nil {
		c.u8(propTopicAlias)
		c.u16(*p.TopicAlias)
	}
	if p.MaximumQoS != nil {
		c.u8(propMaximumQoS)
		c.u8(*p.MaximumQoS)
	}
	if p.RetainAvailable != nil {
		c.u8(propRetainAvailable)
		c.u8(*p.RetainAvailable)
	}
	for _, up := range p.UserProperties {
		c.u8(propUserProperty)
		c.str(up.Key)
		c.str(up.Value)
	}
	if p.MaximumPacketSize != nil {
		c.u8(propMaximumPacketSize)
		c.u32(*p.MaximumPacketSize)
	}
	if p.WildcardSubscriptionAvailable != nil {
		c.u8(propWildcardSubscriptionAvailable)
		c.u8(*p.WildcardSubscriptionAvailable)
	}
	if p.SubscriptionIdentifierAvailable != nil {
		c.u8(propSubscriptionIdentifierAvailable)
		c.u8(*p.SubscriptionIdentifierAvailable)
	}
	if p.SharedSubscriptionAvailable != nil {
		c.u8(propSharedSubscriptionAvailable)
		c.u8(*p.SharedSubscriptionAvailable)
	}
}

// DecodeProperties reads a varint length prefix followed by that many
// bytes of (id, value) pairs from b, returning the decoded Properties and
// the total bytes consumed (including the length prefix).
//
// An unrecognised identifier yields ErrUnknownIdentifier; if the declared
// length runs out mid-value, ErrMalformedPacket.
func DecodeProperties(b []byte) (*Properties, int, error) {
	length, n, err := DecodeVarint(b)
	if err != nil {
		return nil, 0, err
	}
	total := n + int(length)
	if len(b) < total {
		return nil, 0, ErrMalformedPacket.WithMsg("truncated properties")
	}
	rest := b[n:total]
	p := &Properties{}
	pos := 0
	for pos < len(rest) {
		id := rest[pos]
		pos++
		consume := func(k int) ([]byte, error) {
			if pos+k > len(rest) {
				return nil, ErrMalformedPacket.WithMsg("truncated property value")
			}
			v := rest[pos : pos+k]
			pos += k
			return v, nil
		}
		switch id {
		case propPayloadFormatIndicator:
			v, err := consume(1)
			if err != nil {
				return nil, 0, err
			}
			p.PayloadFormatIndicator = u8p(v[0])
		case propMessageExpiryInterval:
			v, err := consume(4)
			if err != nil {
				return nil, 0, err
			}
			p.MessageExpiryInterval = u32p(be32(v))
		case propContentType:
			s, k, err := DecodeString(rest[pos:])
			if err != nil {
				return nil, 0, err
			}
			pos += k
			p.ContentType = strp(s)
		case propResponseTopic:
			s, k, err := DecodeString(rest[pos:])
			if err != nil {
				return nil, 0, err
			}
			pos += k
			p.ResponseTopic = strp(s)
		case propCorrelationData:
			bin, k, err := DecodeBinary(rest[pos:])
			if err != nil {
				return nil, 0, err
			}
			pos += k
			p.CorrelationData = bin
		case propSubscriptionIdentifier:
			v, k, err := DecodeVarint(rest[pos:])
			if err != nil {
				return nil, 0, err
			}
			pos += k
			p.SubscriptionIdentifier = u32p(v)
		case propSessionExpiryInterval:
			v, err := consume(4)
			if err != nil {
				return nil, 0, err
			}
			p.SessionExpiryInterval = u32p(be32(v))
		case propAssignedClientIdentifier:
			s, k, err := DecodeString(rest[pos:])
			if err != nil {
				return nil, 0, err
			}
			pos += k
			p.AssignedClientIdentifier = strp(s)
		case propServerKeepAlive:
			v, err := consume(2)
			if err != nil {
				return nil, 0, err
			}
			p.ServerKeepAlive = u16p(be16(v))
		case propAuthenticationMethod:
			s, k, err := DecodeString(rest[pos:])
			if err != nil {
				return nil, 0, err
			}
			pos += k
			p.AuthenticationMethod = strp(s)
		case propAuthenticationData:
			bin, k, err := DecodeBinary(rest[pos:])
			if err != nil {
				return nil, 0, err
			}
			pos += k
			p.AuthenticationData = bin
		case propRequestProblemInformation:
			v, err := consume(1)
			if err != nil {
				return nil, 0, err
			}
			p.RequestProblemInformation = u8p(v[0])
		case propWillDelayInterval:
			v, err := consume(4)
			if err != nil {
				return nil, 0, err
			}
			p.WillDelayInterval = u32p(be32(v))
		case propRequestResponseInformation:
			v, err := consume(1)
			if err != nil {
				return nil, 0, err
			}
			p.RequestResponseInformation = u8p(v[0])
		case propResponseInformation:
			s, k, err := DecodeString(rest[pos:])
			if err != nil {
				return nil, 0, err
			}
			pos += k
			p.ResponseInformation = strp(s)
		case propServerReference:
			s, k, err := DecodeString(rest[pos:])
			if err != nil {
				return nil, 0, err
			}
			pos += k
			p.ServerReference = strp(s)
		case propReasonString:
			s, k, err := DecodeString(rest[pos:])
			if err != nil {
				return nil, 0, err
			}
			pos += k
			p.ReasonString = strp(s)
		case propReceiveMaximum:
			v, err := consume(2)
			if err != nil {
				return nil, 0, err
			}
			p.ReceiveMaximum = u16p(be16(v))
		case propTopicAliasMaximum:
			v, err := consume(2)
			if err != nil {
				return nil, 0, err
			}
			p.TopicAliasMaximum = u16p(be16(v))
		case propTopicAlias:
			v, err := consume(2)
			if err != nil {
				return nil, 0, err
			}
			p.TopicAlias = u16p(be16(v))
		case propMaximumQoS:
			v, err := consume(1)
			if err != nil {
				return nil, 0, err
			}
			p.MaximumQoS = u8p(v[0])
		case propRetainAvailable:
			v, err := consume(1)
			if err != nil {
				return nil, 0, err
			}
			p.RetainAvailable = u8p(v[0])
		case propUserProperty:
			k, n1, err := DecodeString(rest[pos:])
			if err != nil {
				return nil, 0, err
			}
			pos += n1
			v, n2, err := DecodeString(rest[pos:])
			if err != nil {
				return nil, 0, err
			}
			pos += n2
			p.UserProperties = append(p.UserProperties, UserProperty{Key: k, Value: v})
		case propMaximumPacketSize:
			v, err := consume(4)
			if err != nil {
				return nil, 0, err
			}
			p.MaximumPacketSize = u32p(be32(v))
		case propWildcardSubscriptionAvailable:
			v, err := consume(1)
			if err != nil {
				return nil, 0, err
			}
			p.WildcardSubscriptionAvailable = u8p(v[0])
		case propSubscriptionIdentifierAvailable:
			v, err := consume(1)
			if err != nil {
				return nil, 0, err
			}
			p.SubscriptionIdentifierAvailable = u8p(v[0])
		case propSharedSubscriptionAvailable:
			v, err := consume(1)
			if err != nil {
				return nil, 0, err
			}
			p.SharedSubscriptionAvailable = u8p(v[0])
		default:
			return nil, 0, ErrUnknownIdentifier.WithMsg("unrecognised property id")
		}
	}
	return p, total, nil
}

func be16(b []byte) uint16 { return uint16(b[0])<<8 | uint16(b[1]) }
func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

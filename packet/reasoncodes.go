package packet

// ReasonCode is a single-byte MQTT 5.0 reason code. Codes below 0x80 are
// successful outcomes (possibly qualified, e.g. granted QoS); codes at or
// above 0x80 are errors.
type ReasonCode byte

// Success-range reason codes (below 0x80), shared by several ACK packets.
const (
	ReasonSuccess            ReasonCode = 0x00
	ReasonGrantedQoS0        ReasonCode = 0x00
	ReasonGrantedQoS1        ReasonCode = 0x01
	ReasonGrantedQoS2        ReasonCode = 0x02
	ReasonDisconnectNormal   ReasonCode = 0x00
	ReasonDisconnectWithWill ReasonCode = 0x04
	ReasonNoMatchingSubs     ReasonCode = 0x10
	ReasonNoSubscriptionExisted ReasonCode = 0x11
	ReasonContinueAuth       ReasonCode = 0x18
	ReasonReAuthenticate     ReasonCode = 0x19
)

// Error-range reason codes (0x80+) relevant to a client.
const (
	ReasonUnspecifiedError          ReasonCode = 0x80
	ReasonMalformedPacket           ReasonCode = 0x81
	ReasonProtocolError              ReasonCode = 0x82
	ReasonImplementationSpecific     ReasonCode = 0x83
	ReasonUnsupportedProtoVersion    ReasonCode = 0x84
	ReasonClientIdentifierNotValid   ReasonCode = 0x85
	ReasonBadUsernameOrPassword      ReasonCode = 0x86
	ReasonNotAuthorized              ReasonCode = 0x87
	ReasonServerUnavailable          ReasonCode = 0x88
	ReasonServerBusy                 ReasonCode = 0x89
	ReasonBanned                     ReasonCode = 0x8A
	ReasonServerShuttingDown         ReasonCode = 0x8B
	ReasonBadAuthMethod              ReasonCode = 0x8C
	ReasonKeepAliveTimeout           ReasonCode = 0x8D
	ReasonSessionTakenOver           ReasonCode = 0x8E
	ReasonTopicFilterInvalid         ReasonCode = 0x8F
	ReasonTopicNameInvalid           ReasonCode = 0x90
	ReasonPacketIdentifierInUse      ReasonCode = 0x91
	ReasonPacketIdentifierNotFound   ReasonCode = 0x92
	ReasonReceiveMaximumExceeded     ReasonCode = 0x93
	ReasonTopicAliasInvalid          ReasonCode = 0x94
	ReasonPacketTooLarge             ReasonCode = 0x95
	ReasonMessageRateTooHigh         ReasonCode = 0x96
	ReasonQuotaExceeded              ReasonCode = 0x97
	ReasonAdministrativeAction       ReasonCode = 0x98
	ReasonPayloadFormatInvalid       ReasonCode = 0x99
	ReasonRetainNotSupported         ReasonCode = 0x9A
	ReasonQoSNotSupported            ReasonCode = 0x9B
	ReasonUseAnotherServer           ReasonCode = 0x9C
	ReasonServerMoved                ReasonCode = 0x9D
	ReasonSharedSubsNotSupported     ReasonCode = 0x9E
	ReasonConnectionRateExceeded     ReasonCode = 0x9F
	ReasonMaxConnectTime             ReasonCode = 0xA0
	ReasonSubIdentifiersNotSupported ReasonCode = 0xA1
	ReasonWildcardSubsNotSupported   ReasonCode = 0xA2
)

// IsError reports whether the reason code denotes failure (>= 0x80), the
// threshold CONNACK and every other ACK-family packet uses.
func (r ReasonCode) IsError() bool { return r >= 0x80 }

func (r ReasonCode) String() string {
	if name, ok := reasonNames[r]; ok {
		return name
	}
	return "unknown reason code"
}

var reasonNames = map[ReasonCode]string{
	ReasonSuccess:                    "success",
	ReasonGrantedQoS1:                "granted qos 1",
	ReasonGrantedQoS2:                "granted qos 2",
	ReasonDisconnectWithWill:         "disconnect with will message",
	ReasonNoMatchingSubs:             "no matching subscribers",
	ReasonNoSubscriptionExisted:      "no subscription existed",
	ReasonContinueAuth:               "continue authentication",
	ReasonReAuthenticate:             "re-authenticate",
	ReasonUnspecifiedError:           "unspecified error",
	ReasonMalformedPacket:            "malformed packet",
	ReasonProtocolError:              "protocol error",
	ReasonImplementationSpecific:     "implementation specific error",
	ReasonUnsupportedProtoVersion:    "unsupported protocol version",
	ReasonClientIdentifierNotValid:   "client identifier not valid",
	ReasonBadUsernameOrPassword:      "bad username or password",
	ReasonNotAuthorized:              "not authorized",
	ReasonServerUnavailable:          "server unavailable",
	ReasonServerBusy:                 "server busy",
	ReasonBanned:                     "banned",
	ReasonServerShuttingDown:         "server shutting down",
	ReasonBadAuthMethod:              "bad authentication method",
	ReasonKeepAliveTimeout:           "keep alive timeout",
	ReasonSessionTakenOver:           "session taken over",
	ReasonTopicFilterInvalid:         "topic filter invalid",
	ReasonTopicNameInvalid:           "topic name invalid",
	ReasonPacketIdentifierInUse:      "packet identifier in use",
	ReasonPacketIdentifierNotFound:   "packet identifier not found",
	ReasonReceiveMaximumExceeded:     "receive maximum exceeded",
	ReasonTopicAliasInvalid:          "topic alias invalid",
	ReasonPacketTooLarge:             "packet too large",
	ReasonMessageRateTooHigh:         "message rate too high",
	ReasonQuotaExceeded:              "quota exceeded",
	ReasonAdministrativeAction:       "administrative action",
	ReasonPayloadFormatInvalid:       "payload format invalid",
	ReasonRetainNotSupported:         "retain not supported",
	ReasonQoSNotSupported:            "qos not supported",
	ReasonUseAnotherServer:           "use another server",
	ReasonServerMoved:                "server moved",
	ReasonSharedSubsNotSupported:     "shared subscriptions not supported",
	ReasonConnectionRateExceeded:     "connection rate exceeded",
	ReasonMaxConnectTime:             "maximum connect time",
	ReasonSubIdentifiersNotSupported: "subscription identifiers not supported",
	ReasonWildcardSubsNotSupported:   "wildcard subscriptions not supported",
}

package mqttclient

import "github.com/ionmesh/mqttclient/packet"

// Error and Kind are the taxonomy from spec §7; packet already defines
// them (they are also the vocabulary the codec layer raises), so the
// client package re-exports rather than duplicating the type.
type (
	Error = packet.Error
	Kind  = packet.Kind
)

var (
	ErrNullReference        = packet.ErrNullReference
	ErrInvalidArgument      = packet.ErrInvalidArgument
	ErrNotConnected         = packet.ErrNotConnected
	ErrOutOfMemory          = packet.ErrOutOfMemory
	ErrOutOfResource        = packet.ErrOutOfResource
	ErrInvalidEncoding      = packet.ErrInvalidEncoding
	ErrMalformedPacket      = packet.ErrMalformedPacket
	ErrInvalidPacketSize    = packet.ErrInvalidPacketSize
	ErrUnknownIdentifier    = packet.ErrUnknownIdentifier
	ErrUnexpectedPacketType = packet.ErrUnexpectedPacketType
	ErrInvalidPacketID      = packet.ErrInvalidPacketID
	ErrInvalidQoS           = packet.ErrInvalidQoS
	ErrQoSNotSupported      = packet.ErrQoSNotSupported
	ErrRetainNotSupported   = packet.ErrRetainNotSupported
	ErrInvalidTopic         = packet.ErrInvalidTopic
	ErrUnsupported          = packet.ErrUnsupported
	ErrServerDeclined       = packet.ErrServerDeclined
	ErrHostUnavailable      = packet.ErrHostUnavailable
	ErrHwFailure            = packet.ErrHwFailure
	ErrSwFailure            = packet.ErrSwFailure
	ErrBusy                 = packet.ErrBusy
	ErrPending              = packet.ErrPending
)

package mqttclient

import "github.com/ionmesh/mqttclient/packet"

// PublishMessage is an outbound publish request. PacketID is assigned by
// the engine when QoS > 0 and is ignored on input.
type PublishMessage struct {
	Topic      string
	Payload    []byte
	QoS        packet.QoS
	Retain     bool
	Dup        bool
	PacketID   uint16
	Properties *packet.Properties
}

// ReceivedPublish is the last-message latch for an inbound PUBLISH.
// Payload borrows the buffer ProcessPacket was called with and is only
// valid until the next call to ProcessPacket or Poll.
type ReceivedPublish struct {
	Topic         string
	PacketID      uint16
	QoS           packet.QoS
	Retain        bool
	Dup           bool
	Payload       []byte
	ResponseTopic string
	ContentType   string
	Properties    *packet.Properties
}

// SubscriptionEntry mirrors packet.SubscriptionEntry at the API surface so
// callers don't need to import the packet package for a basic Subscribe
// call.
type SubscriptionEntry = packet.SubscriptionEntry

// ConnackInfo captures the server-advertised session limits learned from
// CONNACK (spec §3's connack_info), each defaulted per the MQTT 5.0
// specification until overridden by the broker.
type ConnackInfo struct {
	SessionPresent       bool
	MaxQoS               packet.QoS
	RetainAvailable      bool
	WildcardSubAvailable bool
	SharedSubAvailable   bool
	SubIDAvailable       bool
	ServerKeepAlive      uint16
	MaxPacketSize        uint32
	TopicAliasMax        uint16
	AssignedClientID     string
	ResponseInformation  string
	ServerReference      string
	ReasonString         string
}

func defaultConnackInfo(proposedKeepAlive uint16) ConnackInfo {
	return ConnackInfo{
		MaxQoS:               packet.QoS2,
		RetainAvailable:      true,
		WildcardSubAvailable: true,
		SharedSubAvailable:   true,
		SubIDAvailable:       true,
		ServerKeepAlive:      proposedKeepAlive,
		MaxPacketSize:        DefaultMaxPacketSize,
	}
}

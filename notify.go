package mqttclient

import "github.com/ionmesh/mqttclient/packet"

// NotificationSink receives every user-facing event the session fires.
// It replaces the null-callable "weak" notification hooks the source
// models as global function pointers (spec §9) with a single interface;
// embed NoopSink to implement only the notifications a caller cares
// about.
type NotificationSink interface {
	Connected(info ConnackInfo)
	Disconnected(reason packet.ReasonCode)
	PublishReceived(msg ReceivedPublish)
	PublishAcknowledged(packetID uint16, reasonCode packet.ReasonCode)
	PublishCompleted(packetID uint16, reasonCode packet.ReasonCode)
	SubscriptionGranted(packetID uint16, index int, qos packet.QoS)
	SubscriptionDeclined(packetID uint16, index int, reasonCode packet.ReasonCode)
	UnsubscribeCompleted(packetID uint16)
	PingReceived()
	ReceivedDisconnect(reasonCode packet.ReasonCode)
}

// NoopSink is the zero-cost default notification sink: embed it to pick
// up no-op implementations for every method and override only the ones a
// caller needs.
type NoopSink struct{}

func (NoopSink) Connected(ConnackInfo)                                        {}
func (NoopSink) Disconnected(packet.ReasonCode)                               {}
func (NoopSink) PublishReceived(ReceivedPublish)                              {}
func (NoopSink) PublishAcknowledged(uint16, packet.ReasonCode)                {}
func (NoopSink) PublishCompleted(uint16, packet.ReasonCode)                   {}
func (NoopSink) SubscriptionGranted(uint16, int, packet.QoS)                  {}
func (NoopSink) SubscriptionDeclined(uint16, int, packet.ReasonCode)          {}
func (NoopSink) UnsubscribeCompleted(uint16)                                  {}
func (NoopSink) PingReceived()                                                {}
func (NoopSink) ReceivedDisconnect(packet.ReasonCode)                         {}

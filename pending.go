package mqttclient

import "github.com/ionmesh/mqttclient/packet"

// slot is one entry in the pending table: a live packet id and the packet
// type the session is waiting to see in response. PacketID == 0 marks a
// free slot (spec §3 "Pending entry").
type slot struct {
	packetID uint16
	await    packet.Type
}

// pendingTable is the fixed-capacity table of in-flight packet
// identifiers described in spec §4.6 (C6). It is owned exclusively by one
// Client and is never accessed concurrently.
type pendingTable struct {
	slots   []slot
	counter uint16 // last-assigned packet id; wraps 65535 -> 1, never 0
}

func newPendingTable(capacity int) *pendingTable {
	return &pendingTable{slots: make([]slot, capacity)}
}

func (p *pendingTable) nextID() uint16 {
	p.counter++
	if p.counter == 0 {
		p.counter = 1
	}
	return p.counter
}

func (p *pendingTable) freeIndex() int {
	for i := range p.slots {
		if p.slots[i].packetID == 0 {
			return i
		}
	}
	return -1
}

// reserveForOutbound finds a free slot, mints a new packet id (skipping
// the in-use ones, bounded by table capacity), and stores await.
func (p *pendingTable) reserveForOutbound(await packet.Type) (uint16, error) {
	i := p.freeIndex()
	if i < 0 {
		return 0, ErrOutOfResource
	}
	for attempts := 0; attempts < 65535; attempts++ {
		id := p.nextID()
		if p.indexOf(id) < 0 {
			p.slots[i] = slot{packetID: id, await: await}
			return id, nil
		}
	}
	return 0, ErrOutOfResource
}

// reserveForInbound stores an entry keyed by a packet id the broker
// already chose (used for the QoS 2 inbound PUBLISH -> await PUBREL case).
func (p *pendingTable) reserveForInbound(packetID uint16, await packet.Type) error {
	if packetID == 0 {
		return ErrInvalidPacketID
	}
	i := p.freeIndex()
	if i < 0 {
		return ErrOutOfResource
	}
	p.slots[i] = slot{packetID: packetID, await: await}
	return nil
}

func (p *pendingTable) indexOf(packetID uint16) int {
	for i := range p.slots {
		if p.slots[i].packetID == packetID {
			return i
		}
	}
	return -1
}

// advance rewrites the await field of packetID's slot. No-op if absent.
func (p *pendingTable) advance(packetID uint16, newAwait packet.Type) {
	if i := p.indexOf(packetID); i >= 0 {
		p.slots[i].await = newAwait
	}
}

// release frees packetID's slot.
func (p *pendingTable) release(packetID uint16) error {
	i := p.indexOf(packetID)
	if i < 0 {
		return ErrInvalidPacketID
	}
	p.slots[i] = slot{}
	return nil
}

// expectedFor returns the await type registered for packetID, or
// packet.Unknown if there is no live entry.
func (p *pendingTable) expectedFor(packetID uint16) packet.Type {
	if i := p.indexOf(packetID); i >= 0 {
		return p.slots[i].await
	}
	return packet.Unknown
}

// anyAwaits reports whether any live slot is waiting on the given type.
func (p *pendingTable) anyAwaits(await packet.Type) bool {
	for _, s := range p.slots {
		if s.packetID != 0 && s.await == await {
			return true
		}
	}
	return false
}

// occupancy returns the number of live slots, exposed for metrics.
func (p *pendingTable) occupancy() int {
	n := 0
	for _, s := range p.slots {
		if s.packetID != 0 {
			n++
		}
	}
	return n
}

// reset zeroes every slot, used on disconnect (spec §4.6: "no
// persistence: on disconnect, the table is zeroed").
func (p *pendingTable) reset() {
	for i := range p.slots {
		p.slots[i] = slot{}
	}
}

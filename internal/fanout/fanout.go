// Package fanout pushes appended ledger events to live subscribers grouped
// into rooms. Delivery is at-least-once and best-effort: a slow subscriber's
// push is dropped rather than blocking the publisher, and the ledger's query
// surface is the authoritative gap-fill. Subscribers de-duplicate by seq.
package fanout

import (
	"sync"

	"bid-ledger/internal/metrics"
	model "bid-ledger/internal/models"
	"bid-ledger/utils"
)

// RoomAdmin receives every appended event, matching the admin dashboard's
// channel contract.
const RoomAdmin = "admin-bid-tracking"

const defaultBuffer = 64

// AuctionRoom names the room scoped to a single auction.
func AuctionRoom(auctionID string) string {
	return "auction:" + auctionID
}

// Subscriber receives events for one room over a buffered channel. The
// channel closes when the subscriber is removed or the hub shuts down.
type Subscriber struct {
	id   string
	room string
	ch   chan model.BidEvent
}

// Events is the subscriber's receive channel.
func (s *Subscriber) Events() <-chan model.BidEvent {
	return s.ch
}

// Hub routes appended events to room subscribers.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[string]*Subscriber // room -> subscriber id -> subscriber
	buffer int
	closed bool
}

// Option configures a Hub.
type Option func(*Hub)

// WithBuffer sets the per-subscriber channel buffer.
func WithBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.buffer = n
		}
	}
}

// NewHub creates an empty hub.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		rooms:  make(map[string]map[string]*Subscriber),
		buffer: defaultBuffer,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscribe joins a room. The caller must Unsubscribe when done.
func (h *Hub) Subscribe(room string) *Subscriber {
	sub := &Subscriber{
		id:   utils.GenerateID(),
		room: room,
		ch:   make(chan model.BidEvent, h.buffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		close(sub.ch)
		return sub
	}
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[string]*Subscriber)
	}
	h.rooms[room][sub.id] = sub
	metrics.UpdateSubscriberCount(1)
	return sub
}

// Unsubscribe removes the subscriber and closes its channel.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.rooms[sub.room]
	if !ok {
		return
	}
	if _, ok := subs[sub.id]; !ok {
		return
	}
	delete(subs, sub.id)
	if len(subs) == 0 {
		delete(h.rooms, sub.room)
	}
	close(sub.ch)
	metrics.UpdateSubscriberCount(-1)
}

// Publish pushes events, in append order, to the admin room and each
// event's auction room. A full subscriber buffer drops the push for that
// subscriber; they recover through ledger backfill.
func (h *Hub) Publish(events []model.BidEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}
	for _, e := range events {
		h.deliverLocked(RoomAdmin, e)
		if e.AuctionID != "" {
			h.deliverLocked(AuctionRoom(e.AuctionID), e)
		}
	}
}

func (h *Hub) deliverLocked(room string, e model.BidEvent) {
	for _, sub := range h.rooms[room] {
		select {
		case sub.ch <- e:
		default:
			metrics.RecordFanoutDropped()
		}
	}
}

// Close shuts the hub down and closes every subscriber channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for room, subs := range h.rooms {
		for _, sub := range subs {
			close(sub.ch)
			metrics.UpdateSubscriberCount(-1)
		}
		delete(h.rooms, room)
	}
}

// Package realtime pushes change notifications to connected clients over
// Server-Sent Events and, optionally, to a RabbitMQ fanout exchange.
package realtime

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/project-sy789/coffeeorder-sub000/internal/logger"
)

// Event types.
const (
	OrderCreated       = "order.created"
	OrderUpdated       = "order.updated"
	OrderStatusChanged = "order.status_changed"
	OrderPaid          = "order.paid"
	ProductChanged     = "product.changed"
	CategoryChanged    = "category.changed"
	OptionChanged      = "option.changed"
	MemberChanged      = "member.changed"
	InventoryChanged   = "inventory.changed"
	InventoryLowStock  = "inventory.low_stock"
	PromotionChanged   = "promotion.changed"
	PointsChanged      = "points.changed"
	SettingsChanged    = "settings.changed"
	UserChanged        = "user.changed"
)

type Event struct {
	ID      string      `json:"id"`
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	At      time.Time   `json:"at"`
}

// Publisher is what the business layer depends on.
type Publisher interface {
	Publish(ctx context.Context, typ string, payload interface{}) Event
}

// Sink receives every event after local subscribers, on its own goroutine.
type Sink interface {
	Send(ctx context.Context, ev Event) error
	Close() error
}

type Subscription struct {
	C     <-chan Event
	ch    chan Event
	types map[string]bool
}

func (s *Subscription) wants(typ string) bool {
	return len(s.types) == 0 || s.types[typ]
}

type sinkWorker struct {
	sink  Sink
	queue chan Event
	done  chan struct{}
}

// Hub fans events out to subscribers. Publish never blocks on a slow
// subscriber; events that do not fit in its buffer are dropped.
type Hub struct {
	mu      sync.RWMutex
	subs    map[*Subscription]struct{}
	sinks   []*sinkWorker
	buffer  int
	closed  bool
	dropped atomic.Uint64
	lg      *logger.Logger
}

func NewHub(lg *logger.Logger, buffer int) *Hub {
	if buffer <= 0 {
		buffer = 64
	}
	return &Hub{
		subs:   make(map[*Subscription]struct{}),
		buffer: buffer,
		lg:     lg.With("realtime"),
	}
}

// AddSink starts forwarding events to s until the hub is closed.
func (h *Hub) AddSink(s Sink) {
	w := &sinkWorker{sink: s, queue: make(chan Event, h.buffer*4), done: make(chan struct{})}
	go func() {
		defer close(w.done)
		for ev := range w.queue {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := s.Send(ctx, ev); err != nil {
				h.lg.Error("sink_send_failed", err, map[string]any{"event_id": ev.ID, "type": ev.Type})
			}
			cancel()
		}
	}()
	h.mu.Lock()
	h.sinks = append(h.sinks, w)
	h.mu.Unlock()
}

// Subscribe registers a listener. With no types every event is delivered.
func (h *Hub) Subscribe(types ...string) *Subscription {
	ch := make(chan Event, h.buffer)
	sub := &Subscription{C: ch, ch: ch, types: make(map[string]bool, len(types))}
	for _, t := range types {
		if t != "" {
			sub.types[t] = true
		}
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return sub
	}
	h.subs[sub] = struct{}{}
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.ch)
	}
}

func (h *Hub) Publish(ctx context.Context, typ string, payload interface{}) Event {
	ev := Event{ID: uuid.NewString(), Type: typ, Payload: payload, At: time.Now().UTC()}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return ev
	}
	for sub := range h.subs {
		if !sub.wants(typ) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			h.dropped.Add(1)
		}
	}
	for _, w := range h.sinks {
		select {
		case w.queue <- ev:
		default:
			h.dropped.Add(1)
			h.lg.Warn("sink_queue_full", map[string]any{"event_id": ev.ID, "type": typ})
		}
	}
	return ev
}

func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Dropped counts events discarded because a subscriber or sink was full.
func (h *Hub) Dropped() uint64 { return h.dropped.Load() }

// Close disconnects subscribers, drains the sinks and closes them.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	for sub := range h.subs {
		close(sub.ch)
	}
	h.subs = map[*Subscription]struct{}{}
	sinks := h.sinks
	h.mu.Unlock()

	for _, w := range sinks {
		close(w.queue)
		<-w.done
		if err := w.sink.Close(); err != nil {
			h.lg.Error("sink_close_failed", err, nil)
		}
	}
}

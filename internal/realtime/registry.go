package realtime

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultSubscriberBuffer is the per-subscriber channel depth. A subscriber
// that falls further behind than this starts losing updates.
const DefaultSubscriberBuffer = 16

// SnapshotFunc produces the initial message for a group so a new subscriber
// sees the current state before any live update arrives. Returning nil means
// the group has no snapshot (nothing tracked yet). It runs while the registry
// lock is held and must not call back into the Registry.
type SnapshotFunc func(ctx context.Context, group GroupKey) (*Message, error)

// Registry is the subscription hub. It maps group keys to subscriber
// channels and fans published messages out without ever blocking the
// publisher: a full subscriber channel drops the message for that subscriber
// only.
//
// All methods are safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	groups map[GroupKey]map[*Subscription]struct{}

	buffer   int
	snapshot SnapshotFunc
	logger   *slog.Logger

	dropped atomic.Int64
}

// NewRegistry creates a registry with the given per-subscriber buffer depth.
// snapshot may be nil to disable snapshots on join.
func NewRegistry(buffer int, snapshot SnapshotFunc, logger *slog.Logger) *Registry {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	return &Registry{
		groups:   make(map[GroupKey]map[*Subscription]struct{}),
		buffer:   buffer,
		snapshot: snapshot,
		logger:   logger.With("component", "connection-registry"),
	}
}

// Subscription is one subscriber's membership in one group. Messages are
// consumed from Messages(); Close leaves the group and releases the channel.
type Subscription struct {
	group    GroupKey
	ch       chan Message
	registry *Registry
	closed   sync.Once
}

// Group returns the group this subscription belongs to.
func (s *Subscription) Group() GroupKey { return s.group }

// Messages returns the channel live updates arrive on. The channel is closed
// when the subscription is closed.
func (s *Subscription) Messages() <-chan Message { return s.ch }

// Close leaves the group. Safe to call more than once; the subscription is
// fully detached before the channel closes, so no send can race the close.
func (s *Subscription) Close() {
	s.closed.Do(func() {
		s.registry.remove(s)
		close(s.ch)
	})
}

// Subscribe joins a group and returns the subscription. When a snapshot
// function is configured, the group's current state is queued as the first
// message; a snapshot failure is logged and skipped so a transient read error
// never blocks joining.
//
// The snapshot read and the registration happen under the registry lock.
// Publishers broadcast only after their commit, so a publish that waits on
// the lock here is for state the snapshot read already sees: the subscriber
// may receive an update twice, but never misses one.
func (r *Registry) Subscribe(ctx context.Context, group GroupKey) *Subscription {
	sub := &Subscription{
		group:    group,
		ch:       make(chan Message, r.buffer),
		registry: r,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.snapshot != nil {
		snapshot, err := r.snapshot(ctx, group)
		switch {
		case err != nil:
			r.logger.Warn("snapshot on join failed", "group", string(group), "error", err)
		case snapshot != nil:
			sub.ch <- *snapshot
		}
	}

	members, ok := r.groups[group]
	if !ok {
		members = make(map[*Subscription]struct{})
		r.groups[group] = members
	}
	members[sub] = struct{}{}

	return sub
}

func (r *Registry) remove(sub *Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.groups[sub.group]
	if !ok {
		return
	}
	delete(members, sub)
	if len(members) == 0 {
		delete(r.groups, sub.group)
	}
}

// Publish delivers a message to every subscriber of the group. Publishing to
// a group with no subscribers is a no-op. Never blocks: subscribers whose
// buffers are full lose this message.
func (r *Registry) Publish(group GroupKey, msg Message) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for sub := range r.groups[group] {
		select {
		case sub.ch <- msg:
		default:
			r.dropped.Add(1)
			r.logger.Debug("dropping message for slow subscriber",
				"group", string(group), "type", string(msg.Type))
		}
	}
}

// SubscriberCount returns the current membership of a group.
func (r *Registry) SubscriberCount(group GroupKey) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.groups[group])
}

// DroppedMessages returns the total number of messages dropped for slow
// subscribers since startup.
func (r *Registry) DroppedMessages() int64 {
	return r.dropped.Load()
}

// CloseAll closes every subscription, used on shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	subs := make([]*Subscription, 0)
	for _, members := range r.groups {
		for sub := range members {
			subs = append(subs, sub)
		}
	}
	r.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
}

// clockNow is swapped in tests.
var clockNow = time.Now

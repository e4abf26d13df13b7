package board

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"laundrybook/database/store"
	"laundrybook/models"
	"laundrybook/utils"

	"go.uber.org/zap"
)

// DefaultBoard is the production BoardService.
type DefaultBoard struct {
	Store    store.DocumentStore
	Notifier Notifier

	mu          sync.Mutex
	slots       map[string]models.Slot
	pending     map[string]bool
	faulted     bool
	watchers    map[int]chan View
	nextWatcher int
	unsubscribe func()
}

func NewDefaultBoard(st store.DocumentStore, notifier Notifier) *DefaultBoard {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &DefaultBoard{
		Store:    st,
		Notifier: notifier,
		slots:    make(map[string]models.Slot),
		pending:  make(map[string]bool),
		watchers: make(map[int]chan View),
	}
}

// Start opens the live subscription. The subscription is the single source
// of truth for rendered slot state from here on.
func (b *DefaultBoard) Start(ctx context.Context) error {
	unsubscribe, err := b.Store.Subscribe(ctx, SlotsCollection, b.onSnapshot, b.onSubscribeError)
	if err != nil {
		return fmt.Errorf("failed to subscribe to slots: %w", err)
	}
	b.mu.Lock()
	b.unsubscribe = unsubscribe
	b.mu.Unlock()
	return nil
}

func (b *DefaultBoard) Stop() {
	b.mu.Lock()
	unsubscribe := b.unsubscribe
	b.unsubscribe = nil
	b.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

// onSnapshot re-renders the whole board from a complete collection snapshot.
// Documents that fail schema validation are rejected at the boundary: logged
// and dropped, never rendered.
func (b *DefaultBoard) onSnapshot(snap store.Snapshot) {
	parsed := make(map[string]models.Slot, len(snap))
	for id, fields := range snap {
		slot, err := models.SlotFromFields(id, fields)
		if err != nil {
			utils.GetLogger().Warn("Dropping malformed slot document", zap.String("id", id), zap.Error(err))
			continue
		}
		parsed[id] = slot
	}

	b.mu.Lock()
	b.slots = parsed
	b.faulted = false
	view := b.renderLocked()
	b.mu.Unlock()

	b.broadcast(view)
}

// onSubscribeError degrades the board to an empty/error view. No automatic
// retry: recovery is a manual refresh (a new Start).
func (b *DefaultBoard) onSubscribeError(err error) {
	utils.GetLogger().Error("Slot subscription failed", zap.Error(err))

	b.mu.Lock()
	b.slots = make(map[string]models.Slot)
	b.faulted = true
	view := b.renderLocked()
	b.mu.Unlock()

	b.broadcast(view)
}

// View returns the current rendered state.
func (b *DefaultBoard) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.renderLocked()
}

// Watch registers a live view channel. The channel carries the latest view
// only; a slow receiver sees intermediate views replaced, never a backlog.
func (b *DefaultBoard) Watch() (<-chan View, func()) {
	ch := make(chan View, 1)

	b.mu.Lock()
	id := b.nextWatcher
	b.nextWatcher++
	b.watchers[id] = ch
	view := b.renderLocked()
	b.mu.Unlock()

	ch <- view

	cancel := func() {
		b.mu.Lock()
		delete(b.watchers, id)
		b.mu.Unlock()
	}
	return ch, cancel
}

// Reserve books one slot for a room via an atomic conditional update guarded
// by the slot's availability, evaluated at the store. Exactly one of two
// contending reservations succeeds; the loser gets ErrAlreadyBooked.
//
// The rendered view is never mutated here. On success the next subscription
// push shows the slot held; on any failure the view stays exactly as last
// pushed.
func (b *DefaultBoard) Reserve(ctx context.Context, slotID, room string) (models.Slot, error) {
	b.mu.Lock()
	slot, known := b.slots[slotID]
	if !known {
		b.mu.Unlock()
		return models.Slot{}, ErrUnknownSlot
	}
	if !slot.Available {
		b.mu.Unlock()
		return models.Slot{}, ErrAlreadyBooked
	}
	if b.pending[slotID] {
		b.mu.Unlock()
		return models.Slot{}, ErrReservationPending
	}
	b.pending[slotID] = true
	view := b.renderLocked()
	b.mu.Unlock()
	b.broadcast(view)

	defer func() {
		b.mu.Lock()
		delete(b.pending, slotID)
		view := b.renderLocked()
		b.mu.Unlock()
		b.broadcast(view)
	}()

	err := b.Store.UpdateIf(ctx, SlotsCollection, slotID,
		store.Fields{"available": true},
		store.Fields{"available": false, "bookedBy": room},
	)
	switch {
	case errors.Is(err, store.ErrPreconditionFailed):
		return models.Slot{}, ErrAlreadyBooked
	case errors.Is(err, store.ErrNotFound):
		return models.Slot{}, ErrUnknownSlot
	case err != nil:
		return models.Slot{}, fmt.Errorf("reservation failed: %w", err)
	}

	utils.GetLogger().Info("Slot reserved",
		zap.String("slot", slotID),
		zap.String("time", slot.Time),
		zap.String("room", room),
	)
	b.Notifier.ReservationConfirmed(ctx, room, slot)
	return slot, nil
}

// renderLocked builds the ordered view from current state. Caller holds b.mu.
func (b *DefaultBoard) renderLocked() View {
	slots := make([]models.Slot, 0, len(b.slots))
	for _, s := range b.slots {
		slots = append(slots, s)
	}
	models.SortSlots(slots)

	view := View{
		Slots:   make([]SlotView, 0, len(slots)),
		Total:   len(slots),
		Faulted: b.faulted,
	}
	for _, s := range slots {
		if s.Available {
			view.Available++
		}
		view.Slots = append(view.Slots, SlotView{Slot: s, Booking: b.pending[s.ID]})
	}
	return view
}

// broadcast pushes the view to all watchers, replacing any undelivered one.
func (b *DefaultBoard) broadcast(view View) {
	b.mu.Lock()
	watchers := make([]chan View, 0, len(b.watchers))
	for _, ch := range b.watchers {
		watchers = append(watchers, ch)
	}
	b.mu.Unlock()

	for _, ch := range watchers {
		select {
		case ch <- view:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- view:
			default:
			}
		}
	}
}

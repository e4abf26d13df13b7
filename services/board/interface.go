package board

import (
	"context"
	"errors"

	"laundrybook/models"
)

// SlotsCollection is the document store collection holding bookable slots.
const SlotsCollection = "slots"

var (
	// ErrAlreadyBooked: the slot's availability guard failed, another room
	// holds it. Surfaced instead of a silent last-writer-wins overwrite.
	ErrAlreadyBooked = errors.New("board: slot already taken")

	// ErrUnknownSlot: no slot with that id exists.
	ErrUnknownSlot = errors.New("board: no such slot")

	// ErrReservationPending: a reservation for this slot is already in
	// flight from this board. Other slots stay independently actionable.
	ErrReservationPending = errors.New("board: reservation already in progress for this slot")
)

// SlotView is one slot as rendered: the validated document plus the
// transient per-slot "booking in progress" indicator.
type SlotView struct {
	models.Slot
	Booking bool `json:"booking"`
}

// Actionable reports whether the book action is enabled for this slot.
func (v SlotView) Actionable() bool {
	return v.Available && !v.Booking
}

// View is the rendered state of the whole board. It always reflects the last
// snapshot pushed by the subscription; a reservation in flight never mutates
// it speculatively.
type View struct {
	Slots     []SlotView `json:"slots"`
	Total     int        `json:"total"`
	Available int        `json:"available"`

	// Faulted is set when the subscription transport failed. The board shows
	// an empty/error state and waits for a manual refresh; it does not retry.
	Faulted bool `json:"faulted"`
}

// Notifier is told about confirmed reservations. Delivery is best-effort and
// never affects reservation state.
type Notifier interface {
	ReservationConfirmed(ctx context.Context, room string, slot models.Slot)
}

// NopNotifier discards notifications.
type NopNotifier struct{}

func (NopNotifier) ReservationConfirmed(context.Context, string, models.Slot) {}

// BoardService is the reservation core: a live view over the slot collection
// plus the single state-changing operation.
type BoardService interface {
	Start(ctx context.Context) error
	Stop()
	View() View
	Watch() (<-chan View, func())
	Reserve(ctx context.Context, slotID, room string) (models.Slot, error)
}

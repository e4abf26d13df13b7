package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Slot represents one bookable laundry time window.
//
// Slots are provisioned out-of-band with Available=true. A reservation
// transitions a slot to Available=false with BookedBy set to the holder's
// room. There is no transition back: no cancel/unbook operation exists.
type Slot struct {
	ID           string `bson:"_id" json:"id"`
	Time         string `bson:"time" json:"time" validate:"required"`
	Date         string `bson:"date" json:"date" validate:"required"`
	StartMinutes int    `bson:"startMinutes" json:"startMinutes" validate:"gte=0,lt=1440"`
	Available    bool   `bson:"available" json:"available"`
	BookedBy     string `bson:"bookedBy,omitempty" json:"bookedBy,omitempty"`
}

// Validate checks field shape plus the holder invariant: a slot is
// unavailable exactly when a room holds it.
func (s *Slot) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid slot document: %w", err)
	}
	if s.Available && s.BookedBy != "" {
		return fmt.Errorf("invalid slot document %q: available slot has bookedBy %q", s.ID, s.BookedBy)
	}
	if !s.Available && s.BookedBy == "" {
		return fmt.Errorf("invalid slot document %q: unavailable slot has no holder", s.ID)
	}
	return nil
}

// SlotFromFields maps a raw store document onto a Slot and validates it.
// Documents from the store are loosely typed; nothing past this function
// should ever see an unvalidated slot.
func SlotFromFields(id string, fields map[string]any) (Slot, error) {
	s := Slot{ID: id}
	s.Time, _ = fields["time"].(string)
	s.Date, _ = fields["date"].(string)
	s.Available, _ = fields["available"].(bool)
	s.BookedBy, _ = fields["bookedBy"].(string)

	switch v := fields["startMinutes"].(type) {
	case int:
		s.StartMinutes = v
	case int32:
		s.StartMinutes = int(v)
	case int64:
		s.StartMinutes = int(v)
	case float64:
		s.StartMinutes = int(v)
	default:
		return Slot{}, fmt.Errorf("invalid slot document %q: startMinutes has type %T", id, fields["startMinutes"])
	}

	if err := s.Validate(); err != nil {
		return Slot{}, err
	}
	return s, nil
}

// SortSlots orders slots for display: by day, then by start ordinal, then by
// id for determinism. The time label is presentation only and is never used
// as a sort key.
func SortSlots(slots []Slot) {
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Date != slots[j].Date {
			return slots[i].Date < slots[j].Date
		}
		if slots[i].StartMinutes != slots[j].StartMinutes {
			return slots[i].StartMinutes < slots[j].StartMinutes
		}
		return slots[i].ID < slots[j].ID
	})
}

// ParseTimeLabel converts a display label like "08:00 AM" into minutes from
// midnight. Labels must be zero padded with an AM/PM suffix.
func ParseTimeLabel(label string) (int, error) {
	parts := strings.Fields(label)
	if len(parts) != 2 {
		return 0, fmt.Errorf("malformed time label %q", label)
	}
	hm := strings.Split(parts[0], ":")
	if len(hm) != 2 || len(hm[0]) != 2 || len(hm[1]) != 2 {
		return 0, fmt.Errorf("malformed time label %q: expected zero-padded HH:MM", label)
	}
	hour, err := strconv.Atoi(hm[0])
	if err != nil {
		return 0, fmt.Errorf("malformed time label %q: %w", label, err)
	}
	minute, err := strconv.Atoi(hm[1])
	if err != nil {
		return 0, fmt.Errorf("malformed time label %q: %w", label, err)
	}
	if hour < 1 || hour > 12 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("time label %q out of range", label)
	}
	switch parts[1] {
	case "AM":
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour != 12 {
			hour += 12
		}
	default:
		return 0, fmt.Errorf("time label %q: suffix must be AM or PM", label)
	}
	return hour*60 + minute, nil
}

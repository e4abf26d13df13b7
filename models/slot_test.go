package models

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotValidateHolderInvariant(t *testing.T) {
	tests := []struct {
		name    string
		slot    Slot
		wantErr bool
	}{
		{
			name: "available with no holder",
			slot: Slot{ID: "1", Time: "08:00 AM", Date: "Today, Oct 2", StartMinutes: 480, Available: true},
		},
		{
			name: "held by a room",
			slot: Slot{ID: "2", Time: "10:00 AM", Date: "Today, Oct 2", StartMinutes: 600, Available: false, BookedBy: "B-101"},
		},
		{
			name:    "available but holder set",
			slot:    Slot{ID: "3", Time: "08:00 AM", Date: "Today, Oct 2", StartMinutes: 480, Available: true, BookedBy: "A-204"},
			wantErr: true,
		},
		{
			name:    "held with no holder recorded",
			slot:    Slot{ID: "4", Time: "08:00 AM", Date: "Today, Oct 2", StartMinutes: 480, Available: false},
			wantErr: true,
		},
		{
			name:    "missing time label",
			slot:    Slot{ID: "5", Date: "Today, Oct 2", StartMinutes: 480, Available: true},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.slot.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSlotFromFields(t *testing.T) {
	slot, err := SlotFromFields("s1", map[string]any{
		"time":         "08:00 AM",
		"date":         "Today, Oct 2",
		"startMinutes": 480,
		"available":    false,
		"bookedBy":     "A-204",
	})
	require.NoError(t, err)
	assert.Equal(t, "s1", slot.ID)
	assert.Equal(t, 480, slot.StartMinutes)
	assert.Equal(t, "A-204", slot.BookedBy)

	// Mongo decodes integers as int32/int64 depending on width.
	slot, err = SlotFromFields("s2", map[string]any{
		"time":         "10:00 AM",
		"date":         "Today, Oct 2",
		"startMinutes": int32(600),
		"available":    true,
	})
	require.NoError(t, err)
	assert.Equal(t, 600, slot.StartMinutes)
}

func TestSlotFromFieldsRejectsMalformed(t *testing.T) {
	// Holder invariant violated.
	_, err := SlotFromFields("bad1", map[string]any{
		"time":         "08:00 AM",
		"date":         "Today, Oct 2",
		"startMinutes": 480,
		"available":    true,
		"bookedBy":     "A-204",
	})
	assert.Error(t, err)

	// Wrong type for the ordinal.
	_, err = SlotFromFields("bad2", map[string]any{
		"time":         "08:00 AM",
		"date":         "Today, Oct 2",
		"startMinutes": "480",
		"available":    true,
	})
	assert.Error(t, err)

	// Missing fields entirely.
	_, err = SlotFromFields("bad3", map[string]any{"available": true, "startMinutes": 0})
	assert.Error(t, err)
}

func TestParseTimeLabel(t *testing.T) {
	tests := []struct {
		label   string
		want    int
		wantErr bool
	}{
		{label: "08:00 AM", want: 480},
		{label: "10:00 AM", want: 600},
		{label: "12:00 PM", want: 720},
		{label: "02:00 PM", want: 840},
		{label: "12:00 AM", want: 0},
		{label: "11:59 PM", want: 1439},
		{label: "8:00 AM", wantErr: true}, // unpadded hour is rejected
		{label: "08:00", wantErr: true},
		{label: "08:00 am", wantErr: true},
		{label: "13:00 PM", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, err := ParseTimeLabel(tt.label)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSortSlotsUsesOrdinalNotLabel(t *testing.T) {
	slots := []Slot{
		{ID: "c", Time: "02:00 PM", Date: "Today, Oct 2", StartMinutes: 840, Available: true},
		{ID: "a", Time: "08:00 AM", Date: "Today, Oct 2", StartMinutes: 480, Available: true},
		{ID: "d", Time: "08:00 AM", Date: "Tomorrow, Oct 3", StartMinutes: 480, Available: true},
		{ID: "b", Time: "12:00 PM", Date: "Today, Oct 2", StartMinutes: 720, Available: true},
	}
	SortSlots(slots)

	got := make([]string, len(slots))
	for i, s := range slots {
		got[i] = s.ID
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, got)
}

// Lexicographic label ordering matches chronological ordering only while all
// labels share a meridiem and stay zero padded. Crossing noon, or dropping
// the zero padding, breaks it. That fragility is why slots carry a numeric
// ordinal and the label is presentation only.
func TestLexicographicLabelOrderFragility(t *testing.T) {
	morning := []string{"08:00 AM", "09:30 AM", "10:00 AM", "11:45 AM"}
	assert.True(t, sort.StringsAreSorted(morning),
		"zero-padded same-meridiem labels must sort chronologically")

	// Unpadded variant regresses: "10:00 AM" sorts before "8:00 AM".
	assert.True(t, "10:00 AM" < "8:00 AM",
		"unpadded labels must not be trusted as a sort key")

	// Crossing noon regresses: "02:00 PM" sorts before "08:00 AM".
	fullDay := []string{"08:00 AM", "10:00 AM", "12:00 PM", "02:00 PM"}
	assert.False(t, sort.StringsAreSorted(fullDay),
		"labels crossing noon must not be trusted as a sort key")

	// The ordinal restores chronological order for the same labels.
	ordinals := make([]int, len(fullDay))
	for i, label := range fullDay {
		n, err := ParseTimeLabel(label)
		require.NoError(t, err)
		ordinals[i] = n
	}
	assert.True(t, sort.IntsAreSorted(ordinals))
}

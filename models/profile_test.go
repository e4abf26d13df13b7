package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileFromFields(t *testing.T) {
	p, err := ProfileFromFields("9876543210", map[string]any{
		"name": "Rahul Kumar",
		"room": "A-204",
	})
	require.NoError(t, err)
	assert.Equal(t, "Rahul Kumar", p.Name)
	assert.Equal(t, "A-204", p.Room)
	assert.Empty(t, p.FCMToken)
}

func TestProfileFromFieldsRejectsMalformed(t *testing.T) {
	// No room assignment.
	_, err := ProfileFromFields("9876543210", map[string]any{"name": "Rahul Kumar"})
	assert.Error(t, err)

	// Wrong type for name.
	_, err = ProfileFromFields("9876543210", map[string]any{"name": 42, "room": "A-204"})
	assert.Error(t, err)

	// Non-numeric phone key.
	_, err = ProfileFromFields("not-a-phone", map[string]any{"name": "Rahul Kumar", "room": "A-204"})
	assert.Error(t, err)
}

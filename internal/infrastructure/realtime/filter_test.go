package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"merovian.backend/internal/domain/entities"
)

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("")
	require.NoError(t, err)
	assert.True(t, f.IsZero())
	assert.Equal(t, "", f.String())

	f, err = ParseFilter("user_id=eq.abc-123")
	require.NoError(t, err)
	assert.Equal(t, Filter{Column: "user_id", Value: "abc-123"}, f)
	assert.Equal(t, "user_id=eq.abc-123", f.String())

	for _, bad := range []string{"user_id", "=eq.x", "user_id=gt.5", "user_id=eq."} {
		_, err := ParseFilter(bad)
		assert.Error(t, err, bad)
	}
}

func TestFilter_Matches(t *testing.T) {
	ev := entities.ChangeEvent{Columns: map[string]string{"id": "p1", "user_id": "u1"}}

	assert.True(t, Filter{}.Matches(ev))
	assert.True(t, Filter{Column: "user_id", Value: "u1"}.Matches(ev))
	assert.False(t, Filter{Column: "user_id", Value: "u2"}.Matches(ev))
	assert.False(t, Filter{Column: "ticket_id", Value: "u1"}.Matches(ev))
}

package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func monday() time.Time {
	return time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
}

func TestGeneratePool(t *testing.T) {
	t.Run("ten business days yields twenty slots", func(t *testing.T) {
		for offset := 0; offset < 7; offset++ {
			ref := monday().AddDate(0, 0, offset)
			pool, err := GeneratePool(ref, DefaultBusinessDays)
			require.NoError(t, err)
			assert.Equal(t, 20, pool.Len())

			perDate := map[string][]Period{}
			for _, s := range pool.Slots() {
				assert.True(t, IsBusinessDay(s.Date), "weekend slot %s", s.ID)
				key := s.Date.Format(DateLayout)
				perDate[key] = append(perDate[key], s.Period)
			}
			assert.Len(t, perDate, 10)
			for date, periods := range perDate {
				assert.Equal(t, []Period{PeriodMorning, PeriodAfternoon}, periods, date)
			}
		}
	})

	t.Run("counting starts on the reference date", func(t *testing.T) {
		pool, err := GeneratePool(monday().Add(15*time.Hour), 1)
		require.NoError(t, err)

		slots := pool.Slots()
		require.Len(t, slots, 2)
		assert.Equal(t, "2024-05-06-AM", slots[0].ID)
		assert.Equal(t, "2024-05-06-PM", slots[1].ID)
	})

	t.Run("weekend reference starts on monday", func(t *testing.T) {
		saturday := time.Date(2024, 5, 4, 10, 0, 0, 0, time.UTC)
		pool, err := GeneratePool(saturday, 1)
		require.NoError(t, err)
		assert.Equal(t, "2024-05-06-AM", pool.Slots()[0].ID)
	})

	t.Run("fresh slots are blank", func(t *testing.T) {
		pool, err := GeneratePool(monday(), DefaultBusinessDays)
		require.NoError(t, err)
		for _, s := range pool.Slots() {
			assert.False(t, s.ReceiverAvailable)
			assert.False(t, s.FacilitatorAvailable)
			assert.False(t, s.Selected)
			assert.Equal(t, ConfirmationPending, s.ReceiverConfirmation)
			assert.Equal(t, ConfirmationPending, s.FacilitatorConfirmation)
			assert.Nil(t, s.ReceiverRespondedAt)
			assert.Nil(t, s.FacilitatorRespondedAt)
		}
		assert.Empty(t, pool.SubmittedRoles())
		assert.NoError(t, pool.Validate())
	})

	t.Run("rejects non-positive day counts", func(t *testing.T) {
		_, err := GeneratePool(monday(), 0)
		assert.ErrorIs(t, err, ErrInvalidBusinessDays)
		_, err = GeneratePool(monday(), -3)
		assert.ErrorIs(t, err, ErrInvalidBusinessDays)
	})

	t.Run("last date skips the weekend", func(t *testing.T) {
		pool, err := GeneratePool(monday(), DefaultBusinessDays)
		require.NoError(t, err)
		slots := pool.Slots()
		assert.Equal(t, "2024-05-17-PM", slots[len(slots)-1].ID)
	})
}

func TestTimeSlot_Display(t *testing.T) {
	pool, err := GeneratePool(monday(), 1)
	require.NoError(t, err)
	slot, ok := pool.Slot("2024-05-06-PM")
	require.True(t, ok)

	assert.Equal(t, "Mon 6 May", slot.DisplayDate())
	assert.Equal(t, "14:00 - 19:00", slot.Period.DisplayRange())
	assert.Equal(t, time.Date(2024, 5, 6, 14, 0, 0, 0, time.UTC), slot.StartsAt())
	assert.Equal(t, time.Date(2024, 5, 6, 19, 0, 0, 0, time.UTC), slot.EndsAt())
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		input    string
		expected Role
		wantErr  bool
	}{
		{"provider", RoleProvider, false},
		{"SR", RoleReceiver, false},
		{" Facilitator ", RoleFacilitator, false},
		{"admin", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			role, err := ParseRole(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, role)
		})
	}
}

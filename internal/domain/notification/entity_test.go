package notification_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paddle-hub/paddle-practice-hub/internal/domain/notification"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/shared"
)

const testAccount = shared.AccountID("acc-123")

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name      string
		accountID shared.AccountID
		typ       notification.Type
		title     string
		body      string
		wantErr   error
	}{
		{
			name:      "valid",
			accountID: testAccount,
			typ:       notification.TypeLevelUp,
			title:     "Level up!",
			body:      "You reached 3.0",
		},
		{
			name:    "empty account",
			typ:     notification.TypeLevelUp,
			title:   "t",
			body:    "b",
			wantErr: shared.ErrInvalidID,
		},
		{
			name:      "unknown type",
			accountID: testAccount,
			typ:       notification.Type("carrier_pigeon"),
			title:     "t",
			body:      "b",
			wantErr:   shared.ErrInvalidInput,
		},
		{
			name:      "empty body",
			accountID: testAccount,
			typ:       notification.TypeWelcome,
			title:     "t",
			wantErr:   shared.ErrEmptyValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := notification.New(tt.accountID, tt.typ, tt.title, tt.body)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, n.ID.IsValid())
			assert.Equal(t, notification.StatusPending, n.Status)
			assert.Equal(t, notification.PriorityHigh, n.Priority)
		})
	}
}

func TestNotification_Lifecycle(t *testing.T) {
	n, err := notification.BadgeUnlocked(testAccount, "On Fire", "Achieve a 3-day streak")
	require.NoError(t, err)

	n.MarkFailed(errors.New("webhook returned 503"))
	assert.Equal(t, notification.StatusFailed, n.Status)
	assert.Equal(t, 1, n.Attempts)
	assert.Contains(t, n.LastError, "503")

	sentAt := time.Now().UTC()
	n.MarkSent(sentAt)
	assert.Equal(t, notification.StatusSent, n.Status)
	require.NotNil(t, n.SentAt)
	assert.Equal(t, sentAt, *n.SentAt)
}

func TestMessageBuilders(t *testing.T) {
	lvl, err := notification.LevelUp(testAccount, "Intermediate", 3.0)
	require.NoError(t, err)
	assert.Equal(t, notification.TypeLevelUp, lvl.Type)
	assert.Contains(t, lvl.Body, "DUPR 3.0")

	streak, err := notification.StreakReminder(testAccount, 7)
	require.NoError(t, err)
	assert.Equal(t, notification.PriorityNormal, streak.Priority)
	assert.Contains(t, streak.Body, "7-day streak")

	welcome, err := notification.Welcome(testAccount, "Player")
	require.NoError(t, err)
	assert.Contains(t, welcome.Body, "Player")
}

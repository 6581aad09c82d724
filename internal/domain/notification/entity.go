// Package notification contains the celebration and reminder model.
// Notifications congratulate players on progression milestones and nudge
// them when a streak is at risk. They motivate, never nag.
package notification

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/paddle-hub/paddle-practice-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// ID identifies a single notification.
type ID string

// NewID generates a fresh notification ID.
func NewID() ID {
	return ID(uuid.NewString())
}

// IsValid reports whether the ID is non-empty.
func (id ID) IsValid() bool {
	return len(id) > 0
}

func (id ID) String() string {
	return string(id)
}

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION TYPE
// ══════════════════════════════════════════════════════════════════════════════

// Type classifies a notification.
type Type string

const (
	// TypeLevelUp - the player's XP crossed a ladder tier boundary.
	// "Level up! You are now DUPR 3.0"
	TypeLevelUp Type = "level_up"

	// TypeBadgeUnlocked - a milestone badge was earned.
	// "New badge: On Fire!"
	TypeBadgeUnlocked Type = "badge_unlocked"

	// TypeStreakReminder - the daily streak is about to lapse.
	// "Keep your 7-day streak alive, log a drill today"
	TypeStreakReminder Type = "streak_reminder"

	// TypeWelcome - greets a freshly provisioned profile.
	TypeWelcome Type = "welcome"
)

// IsValid reports whether the type is one of the known kinds.
func (t Type) IsValid() bool {
	switch t {
	case TypeLevelUp, TypeBadgeUnlocked, TypeStreakReminder, TypeWelcome:
		return true
	default:
		return false
	}
}

// DefaultPriority returns the delivery priority for the type.
func (t Type) DefaultPriority() Priority {
	switch t {
	case TypeLevelUp, TypeBadgeUnlocked, TypeWelcome:
		return PriorityHigh
	default:
		return PriorityNormal
	}
}

// Priority orders deliveries when a batch is flushed.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityHigh:
		return "high"
	default:
		return "normal"
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// STATUS
// ══════════════════════════════════════════════════════════════════════════════

// Status tracks a notification through its delivery lifecycle.
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENTITY
// ══════════════════════════════════════════════════════════════════════════════

// Notification is one message addressed to one account.
type Notification struct {
	ID        ID
	AccountID shared.AccountID
	Type      Type
	Priority  Priority
	Title     string
	Body      string
	Status    Status
	Attempts  int
	LastError string
	CreatedAt time.Time
	SentAt    *time.Time
}

// New builds a pending notification. Title and body must be non-empty.
func New(accountID shared.AccountID, typ Type, title, body string) (*Notification, error) {
	if !accountID.IsValid() {
		return nil, shared.NewDomainError("notification", "New", shared.ErrInvalidID,
			"recipient account id is invalid")
	}
	if !typ.IsValid() {
		return nil, shared.NewDomainError("notification", "New", shared.ErrInvalidInput,
			fmt.Sprintf("unknown notification type %q", typ))
	}
	if title == "" || body == "" {
		return nil, shared.NewDomainError("notification", "New", shared.ErrEmptyValue,
			"title and body are required")
	}
	return &Notification{
		ID:        NewID(),
		AccountID: accountID,
		Type:      typ,
		Priority:  typ.DefaultPriority(),
		Title:     title,
		Body:      body,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// MarkSent transitions the notification to sent.
func (n *Notification) MarkSent(at time.Time) {
	n.Status = StatusSent
	n.SentAt = &at
}

// MarkFailed records a delivery failure and the error that caused it.
func (n *Notification) MarkFailed(err error) {
	n.Status = StatusFailed
	n.Attempts++
	if err != nil {
		n.LastError = err.Error()
	}
}

// MarkSkipped records that delivery was intentionally not attempted.
func (n *Notification) MarkSkipped(reason string) {
	n.Status = StatusSkipped
	n.LastError = reason
}

// ══════════════════════════════════════════════════════════════════════════════
// MESSAGE BUILDERS
// Each progression milestone has exactly one canonical message shape.
// ══════════════════════════════════════════════════════════════════════════════

// LevelUp builds the level-up celebration message.
func LevelUp(accountID shared.AccountID, levelName string, rating float64) (*Notification, error) {
	return New(accountID, TypeLevelUp,
		"Level up!",
		fmt.Sprintf("You reached %s (DUPR %.1f). Keep drilling!", levelName, rating))
}

// BadgeUnlocked builds the badge celebration message.
func BadgeUnlocked(accountID shared.AccountID, badgeName, badgeDescription string) (*Notification, error) {
	return New(accountID, TypeBadgeUnlocked,
		"New badge unlocked!",
		fmt.Sprintf("%s: %s", badgeName, badgeDescription))
}

// StreakReminder builds the streak-at-risk nudge.
func StreakReminder(accountID shared.AccountID, streakDays int) (*Notification, error) {
	return New(accountID, TypeStreakReminder,
		"Your streak is waiting",
		fmt.Sprintf("You have a %d-day streak. Log one drill today to keep it alive.", streakDays))
}

// Welcome builds the greeting for a newly provisioned profile.
func Welcome(accountID shared.AccountID, username string) (*Notification, error) {
	return New(accountID, TypeWelcome,
		"Welcome to Paddle Practice Hub",
		fmt.Sprintf("Hi %s! Pick a drill and log your first attempt to start earning XP.", username))
}

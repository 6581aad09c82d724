// Package shared contains common domain types, errors, events, and value
// objects used across all domain packages.
package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types - these drive the event-driven architecture.
// Each event represents something significant that happened in the domain.
const (
	// Attempt events
	EventAttemptLogged  EventType = "attempt.logged"
	EventAttemptDeleted EventType = "attempt.deleted"

	// Progression events
	EventXPGained      EventType = "progression.xp_gained"
	EventLevelUp       EventType = "progression.level_up"
	EventStreakUpdated EventType = "progression.streak_updated"

	// Badge events
	EventBadgeUnlocked EventType = "badge.unlocked"

	// Profile events
	EventProfileProvisioned EventType = "profile.provisioned"
	EventProfileUpdated     EventType = "profile.updated"

	// Leaderboard events
	EventLeaderboardRebuilt EventType = "leaderboard.rebuilt"

	// Notification events
	EventNotificationSent   EventType = "notification.sent"
	EventNotificationFailed EventType = "notification.failed"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// EventHandler processes domain events.
type EventHandler interface {
	// Handle processes the event. Errors are logged by the bus, not retried.
	Handle(event Event) error

	// HandledTypes returns the event types this handler is interested in.
	HandledTypes() []EventType
}

// EventPublisher publishes domain events to interested handlers.
type EventPublisher interface {
	Publish(event Event) error
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregate_id"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType { return e.Type }

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string { return e.AggregateId }

// NewBaseEvent creates a new base event stamped with the current time.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AggregateId: aggregateID,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ATTEMPT EVENTS
// ══════════════════════════════════════════════════════════════════════════════

// AttemptLoggedEvent is emitted when a practice attempt is committed.
type AttemptLoggedEvent struct {
	BaseEvent
	AttemptID string
	AccountID string
	Category  string
	DrillName string
	Mastery   int
	XPEarned  int
}

// NewAttemptLoggedEvent creates a new AttemptLoggedEvent.
func NewAttemptLoggedEvent(attemptID, accountID, category, drillName string, mastery, xpEarned int) AttemptLoggedEvent {
	return AttemptLoggedEvent{
		BaseEvent: NewBaseEvent(EventAttemptLogged, accountID),
		AttemptID: attemptID,
		AccountID: accountID,
		Category:  category,
		DrillName: drillName,
		Mastery:   mastery,
		XPEarned:  xpEarned,
	}
}

// Payload implements Event interface.
func (e AttemptLoggedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"attempt_id": e.AttemptID,
		"account_id": e.AccountID,
		"category":   e.Category,
		"drill":      e.DrillName,
		"mastery":    e.Mastery,
		"xp_earned":  e.XPEarned,
	}
}

// AttemptDeletedEvent is emitted when an attempt is removed from the log.
type AttemptDeletedEvent struct {
	BaseEvent
	AttemptID string
	AccountID string
}

// NewAttemptDeletedEvent creates a new AttemptDeletedEvent.
func NewAttemptDeletedEvent(attemptID, accountID string) AttemptDeletedEvent {
	return AttemptDeletedEvent{
		BaseEvent: NewBaseEvent(EventAttemptDeleted, accountID),
		AttemptID: attemptID,
		AccountID: accountID,
	}
}

// Payload implements Event interface.
func (e AttemptDeletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"attempt_id": e.AttemptID,
		"account_id": e.AccountID,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESSION EVENTS
// ══════════════════════════════════════════════════════════════════════════════

// XPGainedEvent is emitted when an account earns experience.
type XPGainedEvent struct {
	BaseEvent
	AccountID string
	OldXP     int
	NewXP     int
	Delta     int
}

// NewXPGainedEvent creates a new XPGainedEvent.
func NewXPGainedEvent(accountID string, oldXP, newXP int) XPGainedEvent {
	return XPGainedEvent{
		BaseEvent: NewBaseEvent(EventXPGained, accountID),
		AccountID: accountID,
		OldXP:     oldXP,
		NewXP:     newXP,
		Delta:     newXP - oldXP,
	}
}

// Payload implements Event interface.
func (e XPGainedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"account_id": e.AccountID,
		"old_xp":     e.OldXP,
		"new_xp":     e.NewXP,
		"delta":      e.Delta,
	}
}

// LevelUpEvent is emitted when the named proficiency tier changes.
type LevelUpEvent struct {
	BaseEvent
	AccountID string
	OldLevel  string
	NewLevel  string
	NewXP     int
}

// NewLevelUpEvent creates a new LevelUpEvent.
func NewLevelUpEvent(accountID, oldLevel, newLevel string, newXP int) LevelUpEvent {
	return LevelUpEvent{
		BaseEvent: NewBaseEvent(EventLevelUp, accountID),
		AccountID: accountID,
		OldLevel:  oldLevel,
		NewLevel:  newLevel,
		NewXP:     newXP,
	}
}

// Payload implements Event interface.
func (e LevelUpEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"account_id": e.AccountID,
		"old_level":  e.OldLevel,
		"new_level":  e.NewLevel,
		"new_xp":     e.NewXP,
	}
}

// StreakUpdatedEvent is emitted when the streak counter changes.
type StreakUpdatedEvent struct {
	BaseEvent
	AccountID string
	Streak    int
}

// NewStreakUpdatedEvent creates a new StreakUpdatedEvent.
func NewStreakUpdatedEvent(accountID string, streak int) StreakUpdatedEvent {
	return StreakUpdatedEvent{
		BaseEvent: NewBaseEvent(EventStreakUpdated, accountID),
		AccountID: accountID,
		Streak:    streak,
	}
}

// Payload implements Event interface.
func (e StreakUpdatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"account_id": e.AccountID,
		"streak":     e.Streak,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// BADGE EVENTS
// ══════════════════════════════════════════════════════════════════════════════

// BadgeUnlockedEvent is emitted once per newly unlocked badge.
type BadgeUnlockedEvent struct {
	BaseEvent
	AccountID string
	BadgeID   string
}

// NewBadgeUnlockedEvent creates a new BadgeUnlockedEvent.
func NewBadgeUnlockedEvent(accountID, badgeID string) BadgeUnlockedEvent {
	return BadgeUnlockedEvent{
		BaseEvent: NewBaseEvent(EventBadgeUnlocked, accountID),
		AccountID: accountID,
		BadgeID:   badgeID,
	}
}

// Payload implements Event interface.
func (e BadgeUnlockedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"account_id": e.AccountID,
		"badge_id":   e.BadgeID,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE EVENTS
// ══════════════════════════════════════════════════════════════════════════════

// ProfileProvisionedEvent is emitted when a profile record is first created.
type ProfileProvisionedEvent struct {
	BaseEvent
	AccountID string
	Username  string
}

// NewProfileProvisionedEvent creates a new ProfileProvisionedEvent.
func NewProfileProvisionedEvent(accountID, username string) ProfileProvisionedEvent {
	return ProfileProvisionedEvent{
		BaseEvent: NewBaseEvent(EventProfileProvisioned, accountID),
		AccountID: accountID,
		Username:  username,
	}
}

// Payload implements Event interface.
func (e ProfileProvisionedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"account_id": e.AccountID,
		"username":   e.Username,
	}
}

// ProfileUpdatedEvent is emitted when username or self-reported rating change.
type ProfileUpdatedEvent struct {
	BaseEvent
	AccountID string
	Fields    []string
}

// NewProfileUpdatedEvent creates a new ProfileUpdatedEvent.
func NewProfileUpdatedEvent(accountID string, fields []string) ProfileUpdatedEvent {
	return ProfileUpdatedEvent{
		BaseEvent: NewBaseEvent(EventProfileUpdated, accountID),
		AccountID: accountID,
		Fields:    fields,
	}
}

// Payload implements Event interface.
func (e ProfileUpdatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"account_id": e.AccountID,
		"fields":     e.Fields,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD EVENTS
// ══════════════════════════════════════════════════════════════════════════════

// LeaderboardRebuiltEvent is emitted after the worker rebuilds the cache.
type LeaderboardRebuiltEvent struct {
	BaseEvent
	Entries  int
	Duration time.Duration
}

// NewLeaderboardRebuiltEvent creates a new LeaderboardRebuiltEvent.
func NewLeaderboardRebuiltEvent(entries int, duration time.Duration) LeaderboardRebuiltEvent {
	return LeaderboardRebuiltEvent{
		BaseEvent: NewBaseEvent(EventLeaderboardRebuilt, "leaderboard"),
		Entries:   entries,
		Duration:  duration,
	}
}

// Payload implements Event interface.
func (e LeaderboardRebuiltEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"entries":     e.Entries,
		"duration_ms": e.Duration.Milliseconds(),
	}
}

// Package leaderboard contains the XP ranking read model. The board is a
// projection over profile XP, rebuilt periodically and cached; it never
// feeds back into progression state.
package leaderboard

import (
	"sort"
	"time"

	"github.com/paddle-hub/paddle-practice-hub/internal/domain/player"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RANK
// ══════════════════════════════════════════════════════════════════════════════

// Rank is a 1-based ranking position.
type Rank int

// IsValid reports whether the rank is positive.
func (r Rank) IsValid() bool {
	return r > 0
}

// IsPodium reports whether the rank is a top-3 spot.
func (r Rank) IsPodium() bool {
	return r >= 1 && r <= 3
}

// ══════════════════════════════════════════════════════════════════════════════
// ENTRY
// ══════════════════════════════════════════════════════════════════════════════

// Entry is one row of the board.
type Entry struct {
	Rank      Rank             `json:"rank"`
	AccountID shared.AccountID `json:"account_id"`
	Username  string           `json:"username"`
	XP        shared.XP        `json:"xp"`

	// LevelName is the ladder tier derived from XP.
	LevelName string `json:"level_name"`

	// Streak is the consecutive-attempt counter at rebuild time.
	Streak int `json:"streak"`
}

// EntryFromProfile projects a profile into a board row (rank unset).
func EntryFromProfile(p *player.Profile) Entry {
	return Entry{
		AccountID: p.ID,
		Username:  p.Username,
		XP:        p.XP,
		LevelName: p.Level().Current.Name,
		Streak:    p.Streak,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// BOARD
// ══════════════════════════════════════════════════════════════════════════════

// Board is a fully ranked snapshot.
type Board struct {
	Entries     []Entry   `json:"entries"`
	GeneratedAt time.Time `json:"generated_at"`
}

// NewBoard ranks the entries by XP descending (stable, so equal-XP rows
// keep their input order) and stamps the snapshot time.
func NewBoard(entries []Entry, now time.Time) *Board {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].XP > entries[j].XP
	})
	for i := range entries {
		entries[i].Rank = Rank(i + 1)
	}
	return &Board{Entries: entries, GeneratedAt: now}
}

// Top returns the first n rows.
func (b *Board) Top(n int) []Entry {
	if n > len(b.Entries) {
		n = len(b.Entries)
	}
	return b.Entries[:n]
}

// Find returns the account's row, or false.
func (b *Board) Find(accountID shared.AccountID) (Entry, bool) {
	for _, e := range b.Entries {
		if e.AccountID == accountID {
			return e, true
		}
	}
	return Entry{}, false
}

// Len returns the number of ranked rows.
func (b *Board) Len() int {
	return len(b.Entries)
}

package leaderboard_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paddle-hub/paddle-practice-hub/internal/domain/leaderboard"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/player"
	"github.com/paddle-hub/paddle-practice-hub/internal/domain/shared"
)

func TestNewBoard_RanksByXPDescending(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	board := leaderboard.NewBoard([]leaderboard.Entry{
		{AccountID: "a", Username: "Ann", XP: 150},
		{AccountID: "b", Username: "Bo", XP: 900},
		{AccountID: "c", Username: "Cy", XP: 400},
	}, now)

	require.Equal(t, 3, board.Len())
	assert.Equal(t, shared.AccountID("b"), board.Entries[0].AccountID)
	assert.Equal(t, leaderboard.Rank(1), board.Entries[0].Rank)
	assert.Equal(t, leaderboard.Rank(3), board.Entries[2].Rank)
	assert.Equal(t, now, board.GeneratedAt)
}

func TestNewBoard_StableForEqualXP(t *testing.T) {
	board := leaderboard.NewBoard([]leaderboard.Entry{
		{AccountID: "first", XP: 100},
		{AccountID: "second", XP: 100},
	}, time.Now())

	assert.Equal(t, shared.AccountID("first"), board.Entries[0].AccountID)
	assert.Equal(t, shared.AccountID("second"), board.Entries[1].AccountID)
}

func TestBoard_TopAndFind(t *testing.T) {
	board := leaderboard.NewBoard([]leaderboard.Entry{
		{AccountID: "a", XP: 10},
		{AccountID: "b", XP: 30},
		{AccountID: "c", XP: 20},
	}, time.Now())

	top := board.Top(2)
	require.Len(t, top, 2)
	assert.Equal(t, shared.AccountID("b"), top[0].AccountID)

	assert.Len(t, board.Top(10), 3)

	row, ok := board.Find("c")
	require.True(t, ok)
	assert.Equal(t, leaderboard.Rank(2), row.Rank)
	assert.True(t, row.Rank.IsPodium())

	_, ok = board.Find("zz")
	assert.False(t, ok)
}

func TestEntryFromProfile(t *testing.T) {
	p, err := player.NewProfile("acc-9")
	require.NoError(t, err)
	p.Username = "Smash"
	p.XP = 2600
	p.Streak = 4

	e := leaderboard.EntryFromProfile(p)
	assert.Equal(t, shared.AccountID("acc-9"), e.AccountID)
	assert.Equal(t, shared.XP(2600), e.XP)
	assert.Equal(t, 4, e.Streak)
	// 2600 XP sits in the DUPR 3.5 tier.
	assert.Equal(t, "DUPR 3.5", e.LevelName)
}

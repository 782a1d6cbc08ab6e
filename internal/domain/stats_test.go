package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlayer(nickname string) *Player {
	return &Player{Nickname: nickname, Role: RolePlayer, Rating: StartingRating}
}

func TestApplyMatch_FirstWin(t *testing.T) {
	p := newPlayer("alice")

	sub := MatchSubmission{Result: ResultWin, Kills: 20, Deaths: 10, HSPercentage: 50, MapName: "Mirage"}
	before, after := p.ApplyMatch(sub, 15)

	assert.Equal(t, 1050, before)
	assert.Equal(t, 1065, after)
	assert.Equal(t, 1, p.Matches)
	assert.Equal(t, 1, p.Wins)
	assert.Equal(t, 2.0, p.AvgKD)
	assert.Equal(t, 50.0, p.AvgHS)
	assert.Equal(t, 20.0, p.AvgKills)
	assert.Equal(t, 100.0, p.WinPercentage)
	assert.Equal(t, 20, p.TotalKills)
	assert.Equal(t, 10, p.TotalDeaths)
}

func TestApplyMatch_LossSubtractsDelta(t *testing.T) {
	p := newPlayer("bob")

	sub := MatchSubmission{Result: ResultLoss, Kills: 5, Deaths: 15, HSPercentage: 20, MapName: "Dust2"}
	before, after := p.ApplyMatch(sub, 30)

	assert.Equal(t, 1050, before)
	assert.Equal(t, 1020, after)
	assert.Equal(t, 1, p.Losses)
	assert.Equal(t, 0.0, p.WinPercentage)
}

func TestApplyMatch_TieKeepsRating(t *testing.T) {
	p := newPlayer("carol")

	_, after := p.ApplyMatch(MatchSubmission{Result: ResultTie, Kills: 10, Deaths: 10, HSPercentage: 30, MapName: "Inferno"}, 0)

	assert.Equal(t, 1050, after)
	assert.Equal(t, 1, p.Ties)
}

func TestApplyMatch_CountersAlwaysConsistent(t *testing.T) {
	p := newPlayer("dave")
	strategy := NewSeededRangeStrategy(func(n int) int { return n / 2 })

	results := []MatchResult{ResultWin, ResultLoss, ResultWin, ResultTie, ResultLoss, ResultWin, ResultTie}
	for i, res := range results {
		sub := MatchSubmission{Result: res, Kills: 10 + i, Deaths: 8, HSPercentage: 40, MapName: "Nuke"}
		p.ApplyMatch(sub, strategy.Delta(res))

		assert.Equal(t, p.Matches, p.Wins+p.Losses+p.Ties)
	}
	assert.Equal(t, 7, p.Matches)
	assert.Equal(t, 3, p.Wins)
	assert.Equal(t, 2, p.Losses)
	assert.Equal(t, 2, p.Ties)
	assert.InDelta(t, 42.9, p.WinPercentage, 0.05)
}

func TestApplyMatch_RunningAverages(t *testing.T) {
	p := newPlayer("erin")

	p.ApplyMatch(MatchSubmission{Result: ResultWin, Kills: 20, Deaths: 10, HSPercentage: 50, MapName: "Mirage"}, 10)
	p.ApplyMatch(MatchSubmission{Result: ResultLoss, Kills: 10, Deaths: 20, HSPercentage: 30, MapName: "Mirage"}, 30)

	// (2.0 + 0.5) / 2 and (50 + 30) / 2
	assert.Equal(t, 1.25, p.AvgKD)
	assert.Equal(t, 40.0, p.AvgHS)
	assert.Equal(t, 15.0, p.AvgKills)
	assert.Equal(t, 50.0, p.WinPercentage)
	assert.Equal(t, 30, p.TotalKills)
}

func TestResetStats_RestoresDefaults(t *testing.T) {
	p := newPlayer("frank")
	p.ApplyMatch(MatchSubmission{Result: ResultWin, Kills: 30, Deaths: 5, HSPercentage: 60, MapName: "Train"}, 20)
	require.NotEqual(t, StartingRating, p.Rating)

	p.ResetStats()

	assert.Equal(t, StartingRating, p.Rating)
	assert.Zero(t, p.Matches)
	assert.Zero(t, p.Wins)
	assert.Zero(t, p.TotalKills)
	assert.Zero(t, p.AvgKD)
	assert.Zero(t, p.WinPercentage)
}

func TestKDRatio_DeathlessMatch(t *testing.T) {
	sub := MatchSubmission{Kills: 17, Deaths: 0}
	assert.Equal(t, 17.0, sub.KDRatio())

	sub = MatchSubmission{Kills: 17, Deaths: 3}
	assert.Equal(t, 5.67, sub.KDRatio())
}

func TestMatchSubmission_Validate(t *testing.T) {
	tests := []struct {
		name    string
		sub     MatchSubmission
		wantErr string
	}{
		{"valid", MatchSubmission{Result: ResultWin, Kills: 10, Deaths: 5, HSPercentage: 40, MapName: "Mirage"}, ""},
		{"bad result", MatchSubmission{Result: "X", Kills: 10, Deaths: 5, MapName: "Mirage"}, "result"},
		{"negative kills", MatchSubmission{Result: ResultWin, Kills: -1, Deaths: 5, MapName: "Mirage"}, "negative"},
		{"hs over 100", MatchSubmission{Result: ResultWin, Kills: 1, Deaths: 1, HSPercentage: 101, MapName: "Mirage"}, "percentage"},
		{"missing map", MatchSubmission{Result: ResultWin, Kills: 1, Deaths: 1}, "map"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sub.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestRoundingPolicy(t *testing.T) {
	assert.Equal(t, 5.67, Round2(5.6667))
	assert.Equal(t, 42.9, Round1(42.857))
	assert.Equal(t, 1048.0, Round0(1047.6))
	assert.Equal(t, 1047.0, Round0(1047.4))
}

func TestBanExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	permanent := &Player{IsBanned: true}
	assert.False(t, permanent.BanExpired(now))

	expired := &Player{IsBanned: true, BanUntil: &past}
	assert.True(t, expired.BanExpired(now))

	active := &Player{IsBanned: true, BanUntil: &future}
	assert.False(t, active.BanExpired(now))

	clean := &Player{BanUntil: &past}
	assert.False(t, clean.BanExpired(now))
}

func TestPremiumGrant_ActiveAt(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	var missing *PremiumGrant
	assert.False(t, missing.ActiveAt(now))

	assert.False(t, (&PremiumGrant{IsPremium: true, Until: &past}).ActiveAt(now))
	assert.False(t, (&PremiumGrant{IsPremium: false, Until: &future}).ActiveAt(now))
	assert.False(t, (&PremiumGrant{IsPremium: true, Until: &now}).ActiveAt(now))
	assert.True(t, (&PremiumGrant{IsPremium: true, Until: &future}).ActiveAt(now))
}

func TestTournament_CanRegister(t *testing.T) {
	open := &Tournament{Status: TournamentPlanned, MaxPlayers: 8, CurrentPlayers: 7}
	assert.NoError(t, open.CanRegister())

	full := &Tournament{Status: TournamentPlanned, MaxPlayers: 8, CurrentPlayers: 8}
	assert.Error(t, full.CanRegister())

	started := &Tournament{Status: TournamentOngoing, MaxPlayers: 8, CurrentPlayers: 2}
	assert.Error(t, started.CanRegister())

	cancelled := &Tournament{Status: TournamentCancelled, MaxPlayers: 8}
	assert.Error(t, cancelled.CanRegister())
}

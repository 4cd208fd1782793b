package game

import "testing"

func TestLevelFromXP(t *testing.T) {
	m := NewProgressionManager(testLogger())

	tests := []struct {
		xp   int64
		want int
	}{
		{xp: -50, want: 1},
		{xp: 0, want: 1},
		{xp: 499, want: 1},
		{xp: 500, want: 2},
		{xp: 1499, want: 2},
		{xp: 1500, want: 3},
		{xp: 3500, want: 4},
		{xp: 7000, want: 5},
		{xp: 11999, want: 5},
		{xp: 12000, want: 6},
		{xp: 19999, want: 6},
		{xp: 20000, want: 7},
		{xp: 1_000_000, want: 7},
	}
	for _, tc := range tests {
		if got := m.LevelFromXP(tc.xp); got != tc.want {
			t.Fatalf("xp=%d got level %d, want %d", tc.xp, got, tc.want)
		}
	}
}

func TestLevelInfoClamps(t *testing.T) {
	m := NewProgressionManager(testLogger())
	if got := m.LevelInfo(0); got.Level != 1 {
		t.Fatalf("LevelInfo(0) = level %d, want 1", got.Level)
	}
	if got := m.LevelInfo(99); got.Level != 7 {
		t.Fatalf("LevelInfo(99) = level %d, want 7", got.Level)
	}
	if got := m.LevelInfo(4); got.Title != "Expert" {
		t.Fatalf("LevelInfo(4) title %q, want Expert", got.Title)
	}
}

func TestCalculateXP(t *testing.T) {
	m := NewProgressionManager(testLogger())

	tests := []struct {
		profit       int64
		isProfitable bool
		want         int64
	}{
		{profit: -5000, isProfitable: false, want: 20},
		{profit: 0, isProfitable: false, want: 20},
		{profit: 1000, isProfitable: true, want: 51},
		{profit: 50000, isProfitable: true, want: 100},
		{profit: 100000, isProfitable: true, want: 150},
		{profit: 5_000_000, isProfitable: true, want: 150}, // bonus capped
	}
	for _, tc := range tests {
		if got := m.CalculateXP(tc.profit, tc.isProfitable); got != tc.want {
			t.Fatalf("profit=%d win=%v got %d, want %d", tc.profit, tc.isProfitable, got, tc.want)
		}
	}
}

func TestCheckAchievementsIdempotent(t *testing.T) {
	m := NewProgressionManager(testLogger())
	player := Player{
		Level: 1,
		Stats: PlayerStats{TotalTrades: 1, TotalProfit: 2000, BestStreak: 1},
	}

	first := m.CheckAchievements(&player)
	second := m.CheckAchievements(&player)
	if len(first) != 1 || first[0].ID != "first_trade" {
		t.Fatalf("expected exactly first_trade, got %+v", first)
	}
	if len(second) != len(first) || second[0].ID != first[0].ID {
		t.Fatalf("repeat check diverged: %+v vs %+v", first, second)
	}

	m.AwardAchievement(&player, first[0])
	if again := m.CheckAchievements(&player); len(again) != 0 {
		t.Fatalf("already-awarded achievement offered again: %+v", again)
	}
}

func TestWinRateRequiresSampleSize(t *testing.T) {
	m := NewProgressionManager(testLogger())

	small := Player{Level: 1, Stats: PlayerStats{TotalTrades: 10, WinRate: 100}}
	for _, a := range m.CheckAchievements(&small) {
		if a.ID == "sharp_eye" {
			t.Fatalf("winrate achievement unlocked on only %d trades", small.Stats.TotalTrades)
		}
	}

	big := Player{Level: 1, Stats: PlayerStats{TotalTrades: 20, WinRate: 60}}
	found := false
	for _, a := range m.CheckAchievements(&big) {
		if a.ID == "sharp_eye" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected sharp_eye at 20 trades / 60%% winrate")
	}
}

func TestAwardAchievementAppliesReward(t *testing.T) {
	m := NewProgressionManager(testLogger())
	player := Player{Level: 1, XP: 450, Balance: 1000}

	var tenTrades Achievement
	for _, a := range Achievements {
		if a.ID == "ten_trades" {
			tenTrades = a
		}
	}
	m.AwardAchievement(&player, tenTrades)

	if !player.HasAchievement("ten_trades") {
		t.Fatalf("achievement not recorded")
	}
	if player.XP != 950 {
		t.Fatalf("xp %d, want 950", player.XP)
	}
	if player.Balance != 51000 {
		t.Fatalf("balance %d, want 51000", player.Balance)
	}
	if player.Level != 2 {
		t.Fatalf("level %d, want 2 after crossing 500 XP", player.Level)
	}
}

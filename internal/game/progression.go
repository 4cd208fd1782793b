package game

import "log/slog"

// Levels is the fixed 7-tier ladder. XPRequired thresholds are cumulative
// totals, not per-level deltas.
var Levels = []Level{
	{Level: 1, Title: "Rookie Trader", XPRequired: 0, Unlocks: []string{"Basic contracts", "Easy AI"}, Badge: Badge{Color: "gray", Icon: "seedling"}},
	{Level: 2, Title: "Apprentice", XPRequired: 500, Unlocks: []string{"Medium AI", "Market trends"}, Badge: Badge{Color: "blue", Icon: "graduation-cap"}},
	{Level: 3, Title: "Trader", XPRequired: 1500, Unlocks: []string{"Advanced stats", "Price history"}, Badge: Badge{Color: "green", Icon: "chart-line"}},
	{Level: 4, Title: "Expert", XPRequired: 3500, Unlocks: []string{"Hard AI", "All commodities"}, Badge: Badge{Color: "purple", Icon: "star"}},
	{Level: 5, Title: "Master", XPRequired: 7000, Unlocks: []string{"Demand insights", "Tips disabled"}, Badge: Badge{Color: "orange", Icon: "crown"}},
	{Level: 6, Title: "Legend", XPRequired: 12000, Unlocks: []string{"Elite achievements", "Leaderboard"}, Badge: Badge{Color: "red", Icon: "trophy"}},
	{Level: 7, Title: "Grandmaster", XPRequired: 20000, Unlocks: []string{"All features", "Special badge"}, Badge: Badge{Color: "gold", Icon: "gem"}},
}

// Achievements is the fixed milestone catalog. Definitions never carry
// unlocked state; membership lives on the player.
var Achievements = []Achievement{
	{
		ID:          "first_trade",
		Name:        "First Steps",
		Description: "Complete your first trade",
		Icon:        "handshake",
		Requirement: Requirement{Kind: RequireTrades, Value: 1},
		Reward:      Reward{XP: 100},
	},
	{
		ID:          "ten_trades",
		Name:        "Getting Started",
		Description: "Complete 10 trades",
		Icon:        "fire",
		Requirement: Requirement{Kind: RequireTrades, Value: 10},
		Reward:      Reward{XP: 500, Bonus: 50000},
	},
	{
		ID:          "profit_1l",
		Name:        "Profitable",
		Description: "Earn 1 lakh profit",
		Icon:        "money-bill-wave",
		Requirement: Requirement{Kind: RequireProfit, Value: 100000},
		Reward:      Reward{XP: 750},
	},
	{
		ID:          "streak_5",
		Name:        "Hot Streak",
		Description: "Win 5 trades in a row",
		Icon:        "bolt",
		Requirement: Requirement{Kind: RequireStreak, Value: 5},
		Reward:      Reward{XP: 600},
	},
	{
		ID:          "sharp_eye",
		Name:        "Sharp Eye",
		Description: "Keep a 60% win rate over 20+ trades",
		Icon:        "bullseye",
		Requirement: Requirement{Kind: RequireWinRate, Value: 60},
		Reward:      Reward{XP: 800},
	},
	{
		ID:          "seasoned_master",
		Name:        "Seasoned Master",
		Description: "Reach level 5",
		Icon:        "crown",
		Requirement: Requirement{Kind: RequireLevel, Value: 5},
		Reward:      Reward{XP: 1000, Bonus: 100000},
	},
}

// winRateMinTrades guards winrate achievements against tiny samples.
const winRateMinTrades = 20

// ProgressionManager converts trade outcomes into XP, levels and
// achievement unlocks. It holds no mutable state of its own.
type ProgressionManager struct {
	log *slog.Logger
}

func NewProgressionManager(logger *slog.Logger) *ProgressionManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressionManager{log: logger}
}

// LevelFromXP scans the ladder from the top and returns the first tier whose
// threshold the XP clears. Any XP below all thresholds, including garbage
// negative input, maps to level 1.
func (m *ProgressionManager) LevelFromXP(xp int64) int {
	for i := len(Levels) - 1; i >= 0; i-- {
		if xp >= Levels[i].XPRequired {
			return Levels[i].Level
		}
	}
	return 1
}

// LevelInfo returns the ladder entry for a level, clamped to valid tiers.
func (m *ProgressionManager) LevelInfo(level int) Level {
	for _, l := range Levels {
		if l.Level == level {
			return l
		}
	}
	if level > Levels[len(Levels)-1].Level {
		return Levels[len(Levels)-1]
	}
	return Levels[0]
}

// CalculateXP awards 50 base XP plus 1 per 1000 profit (capped at +100) on a
// win, and a flat consolation 20 on a loss.
func (m *ProgressionManager) CalculateXP(profit int64, isProfitable bool) int64 {
	if !isProfitable {
		return 20
	}
	bonus := profit / 1000
	if bonus > 100 {
		bonus = 100
	}
	return 50 + bonus
}

// CheckAchievements returns every achievement the player now qualifies for
// but has not yet unlocked. It never mutates the player, so calling it twice
// on unchanged input yields the same result.
func (m *ProgressionManager) CheckAchievements(player *Player) []Achievement {
	var newlyQualifying []Achievement
	for _, a := range Achievements {
		if player.HasAchievement(a.ID) {
			continue
		}
		if m.requirementMet(a.Requirement, player) {
			newlyQualifying = append(newlyQualifying, a)
		}
	}
	return newlyQualifying
}

func (m *ProgressionManager) requirementMet(req Requirement, player *Player) bool {
	switch req.Kind {
	case RequireTrades:
		return player.Stats.TotalTrades >= req.Value
	case RequireProfit:
		return player.Stats.TotalProfit >= req.Value
	case RequireStreak:
		return player.Stats.BestStreak >= req.Value
	case RequireWinRate:
		return player.Stats.TotalTrades >= winRateMinTrades && player.Stats.WinRate >= float64(req.Value)
	case RequireLevel:
		return int64(player.Level) >= req.Value
	default:
		m.log.Warn("unknown achievement requirement kind", "kind", req.Kind)
		return false
	}
}

// AwardAchievement applies the reward and records the unlock. Callers guard
// against double awards; this function does not re-check membership.
func (m *ProgressionManager) AwardAchievement(player *Player, a Achievement) {
	player.Achievements = append(player.Achievements, a.ID)
	player.XP += a.Reward.XP
	if a.Reward.Bonus != 0 {
		player.Balance += a.Reward.Bonus
	}
	player.Level = m.LevelFromXP(player.XP)
}

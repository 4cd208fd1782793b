package game

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Session wires the four components into one playable sandbox world: it
// applies the bot's verdicts to contract status, settles completed contracts
// with the canonical profit rule, and runs the progression pass. Host one
// Session per simulated world.
type Session struct {
	Market      *MarketEngine
	Bot         *NegotiationBot
	Progression *ProgressionManager
	Store       *ContractStore
	log         *slog.Logger
}

func NewSession(market *MarketEngine, bot *NegotiationBot, prog *ProgressionManager, store *ContractStore, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		Market:      market,
		Bot:         bot,
		Progression: prog,
		Store:       store,
		log:         logger,
	}
}

// TradeResult reports everything a settlement changed.
type TradeResult struct {
	Contract   Contract      `json:"contract"`
	Player     Player        `json:"player"`
	XPAwarded  int64         `json:"xp_awarded"`
	NewLevel   int           `json:"new_level"`
	LeveledUp  bool          `json:"leveled_up"`
	NewUnlocks []Achievement `json:"new_unlocks,omitempty"`
}

// SubmitOffer evaluates a player-authored proposal and persists the resulting
// contract. An accepted or rejected verdict lands directly on the contract
// status; a counter-offer leaves it pending with the counter price recorded,
// so the same contract id can be re-evaluated.
func (s *Session) SubmitOffer(ctx context.Context, p Proposal, role Role, playerLevel int) (Contract, Evaluation, error) {
	eval := s.Bot.EvaluateContract(p, playerLevel)

	player, _, err := s.Store.Player(ctx)
	if err != nil {
		return Contract{}, eval, err
	}

	c := Contract{
		PlayerID:              player.ID,
		Commodity:             p.Commodity,
		Quantity:              p.Quantity,
		Unit:                  DefaultUnit,
		ContractPrice:         p.ContractPrice,
		MarketPriceAtCreation: s.Market.CurrentPrice(p.Commodity),
		PlayerRole:            role,
		CreatedBy:             AuthorPlayer,
		AIDecision:            eval.Decision,
		AIReasoning:           eval.Reasoning,
		CounterOfferPrice:     eval.CounterPrice,
		Status:                statusFromDecision(eval.Decision),
		CreatedAt:             time.Now(),
	}
	if err := s.Store.SaveContract(ctx, &c); err != nil {
		return Contract{}, eval, err
	}
	s.log.Info("offer evaluated",
		"contract", c.ContractNumber,
		"commodity", c.Commodity,
		"decision", eval.Decision)
	return c, eval, nil
}

// ReEvaluate runs the bot again over a still-pending contract, refreshing the
// verdict, reasoning and counter price on the same record.
func (s *Session) ReEvaluate(ctx context.Context, contractID string, playerLevel int) (Contract, Evaluation, error) {
	c, ok, err := s.Store.Contract(ctx, contractID)
	if err != nil {
		return Contract{}, Evaluation{}, err
	}
	if !ok {
		return Contract{}, Evaluation{}, ErrContractNotFound
	}
	if c.Status != StatusPending {
		return c, Evaluation{}, fmt.Errorf("contract %s: %w", c.ContractNumber, ErrNotPending)
	}

	eval := s.Bot.EvaluateContract(Proposal{
		Commodity:     c.Commodity,
		Quantity:      c.Quantity,
		ContractPrice: c.ContractPrice,
	}, playerLevel)

	c.AIDecision = eval.Decision
	c.AIReasoning = eval.Reasoning
	c.CounterOfferPrice = eval.CounterPrice
	c.Status = statusFromDecision(eval.Decision)
	if err := s.Store.SaveContract(ctx, &c); err != nil {
		return Contract{}, eval, err
	}
	return c, eval, nil
}

// AcceptAIContract takes one of the bot's pending drafts for the player,
// persisting it as accepted.
func (s *Session) AcceptAIContract(ctx context.Context, draft Contract) (Contract, error) {
	player, _, err := s.Store.Player(ctx)
	if err != nil {
		return Contract{}, err
	}
	draft.PlayerID = player.ID
	draft.Status = StatusAccepted
	if err := s.Store.SaveContract(ctx, &draft); err != nil {
		return Contract{}, err
	}
	return draft, nil
}

// CompleteContract settles an accepted contract exactly once: profit/loss is
// computed against the market price frozen at creation, the player's stats,
// balance and XP move, and any newly qualifying achievements are awarded.
func (s *Session) CompleteContract(ctx context.Context, contractID string) (TradeResult, error) {
	c, ok, err := s.Store.Contract(ctx, contractID)
	if err != nil {
		return TradeResult{}, err
	}
	if !ok {
		return TradeResult{}, ErrContractNotFound
	}
	if c.Status == StatusCompleted {
		return TradeResult{}, fmt.Errorf("contract %s: %w", c.ContractNumber, ErrAlreadyCompleted)
	}
	if c.Status != StatusAccepted {
		return TradeResult{}, fmt.Errorf("contract %s: %w", c.ContractNumber, ErrNotAccepted)
	}

	player, ok, err := s.Store.Player(ctx)
	if err != nil {
		return TradeResult{}, err
	}
	if !ok {
		return TradeResult{}, ErrNoPlayer
	}
	prevLevel := player.Level

	pl := SettlementPL(c.PlayerRole, c.ContractPrice, c.MarketPriceAtCreation, c.Quantity)
	now := time.Now()
	c.Status = StatusCompleted
	c.CompletedAt = &now
	c.ProfitLoss = pl
	c.IsProfitable = pl > 0

	xp := s.Progression.CalculateXP(pl, c.IsProfitable)
	applyTradeOutcome(&player, pl, c.IsProfitable)
	player.XP += xp
	player.Level = s.Progression.LevelFromXP(player.XP)

	unlocked := s.Progression.CheckAchievements(&player)
	for _, a := range unlocked {
		s.Progression.AwardAchievement(&player, a)
	}

	if err := s.Store.SaveContract(ctx, &c); err != nil {
		return TradeResult{}, err
	}
	if err := s.Store.SavePlayer(ctx, &player); err != nil {
		return TradeResult{}, err
	}

	s.log.Info("contract settled",
		"contract", c.ContractNumber,
		"profit_loss", pl,
		"xp", xp,
		"level", player.Level,
		"unlocks", len(unlocked))

	return TradeResult{
		Contract:   c,
		Player:     player,
		XPAwarded:  xp,
		NewLevel:   player.Level,
		LeveledUp:  player.Level > prevLevel,
		NewUnlocks: unlocked,
	}, nil
}

// applyTradeOutcome folds one settled trade into the player's running stats:
// the win rate is a running average over all trades, streaks extend on a win
// and reset on a loss, and the bankroll moves by the realized amount.
func applyTradeOutcome(p *Player, profitLoss int64, isProfitable bool) {
	p.Stats.TotalTrades++
	n := float64(p.Stats.TotalTrades)
	if isProfitable {
		p.Stats.WinRate = (p.Stats.WinRate*(n-1) + 100) / n
		p.Stats.CurrentStreak++
		if p.Stats.CurrentStreak > p.Stats.BestStreak {
			p.Stats.BestStreak = p.Stats.CurrentStreak
		}
		p.Stats.TotalProfit += profitLoss
	} else {
		p.Stats.WinRate = p.Stats.WinRate * (n - 1) / n
		p.Stats.CurrentStreak = 0
	}
	p.Balance += profitLoss
}

func statusFromDecision(d Decision) ContractStatus {
	switch d {
	case DecisionAccepted:
		return StatusAccepted
	case DecisionRejected:
		return StatusRejected
	default:
		// Counter-offers keep the contract negotiable.
		return StatusPending
	}
}

package game

import "time"

type Trend string

const (
	TrendBullish Trend = "bullish"
	TrendBearish Trend = "bearish"
	TrendStable  Trend = "stable"
)

type DemandLevel string

const (
	DemandHigh   DemandLevel = "high"
	DemandMedium DemandLevel = "medium"
	DemandLow    DemandLevel = "low"
)

type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     int64     `json:"price"`
}

type Commodity struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	BasePrice    int64        `json:"base_price"`
	CurrentPrice int64        `json:"current_price"`
	Trend        Trend        `json:"trend"`
	DemandLevel  DemandLevel  `json:"demand_level"`
	Volatility   float64      `json:"volatility"`
	LastUpdated  time.Time    `json:"last_updated"`
	PriceHistory []PricePoint `json:"price_history"`
}

type PlayerStats struct {
	TotalTrades   int64   `json:"total_trades"`
	WinRate       float64 `json:"win_rate"`
	TotalProfit   int64   `json:"total_profit"`
	CurrentStreak int64   `json:"current_streak"`
	BestStreak    int64   `json:"best_streak"`
}

type Player struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Balance      int64       `json:"balance"`
	Level        int         `json:"level"`
	XP           int64       `json:"xp"`
	Stats        PlayerStats `json:"stats"`
	Achievements []string    `json:"achievements"`
	CreatedAt    time.Time   `json:"created_at"`
	LastPlayed   time.Time   `json:"last_played"`
}

// HasAchievement reports whether the achievement id has already been unlocked.
func (p *Player) HasAchievement(id string) bool {
	for _, a := range p.Achievements {
		if a == id {
			return true
		}
	}
	return false
}

type Role string

const (
	RoleFarmer Role = "farmer"
	RoleBuyer  Role = "buyer"
)

type Author string

const (
	AuthorPlayer Author = "player"
	AuthorAI     Author = "ai"
)

type ContractStatus string

const (
	StatusPending   ContractStatus = "pending"
	StatusAccepted  ContractStatus = "accepted"
	StatusRejected  ContractStatus = "rejected"
	StatusCompleted ContractStatus = "completed"
)

type Decision string

const (
	DecisionAccepted     Decision = "accepted"
	DecisionRejected     Decision = "rejected"
	DecisionCounterOffer Decision = "counter_offer"
)

type Contract struct {
	ID                    string         `json:"id"`
	PlayerID              string         `json:"player_id"`
	ContractNumber        string         `json:"contract_number"`
	Commodity             string         `json:"commodity"`
	Quantity              int64          `json:"quantity"`
	Unit                  string         `json:"unit"`
	ContractPrice         int64          `json:"contract_price"`
	MarketPriceAtCreation int64          `json:"market_price_at_creation"`
	PlayerRole            Role           `json:"player_role"`
	CreatedBy             Author         `json:"created_by"`
	AIDecision            Decision       `json:"ai_decision,omitempty"`
	AIReasoning           string         `json:"ai_reasoning,omitempty"`
	CounterOfferPrice     int64          `json:"counter_offer_price,omitempty"`
	Status                ContractStatus `json:"status"`
	CreatedAt             time.Time      `json:"created_at"`
	CompletedAt           *time.Time     `json:"completed_at,omitempty"`
	ProfitLoss            int64          `json:"profit_loss"`
	IsProfitable          bool           `json:"is_profitable"`
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// BotProfile is a named negotiation tier. Personality weights are carried as
// metadata for the presentation layer; the decision rule does not read them.
type BotProfile struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Difficulty          Difficulty `json:"difficulty"`
	AcceptanceThreshold float64    `json:"acceptance_threshold"`
	CounterOfferChance  float64    `json:"counter_offer_chance"`
	Aggressiveness      float64    `json:"aggressiveness"`
	RiskTolerance       float64    `json:"risk_tolerance"`
}

type RequirementKind string

const (
	RequireTrades  RequirementKind = "trades"
	RequireProfit  RequirementKind = "profit"
	RequireStreak  RequirementKind = "streak"
	RequireWinRate RequirementKind = "winrate"
	RequireLevel   RequirementKind = "level"
)

type Requirement struct {
	Kind  RequirementKind `json:"kind"`
	Value int64           `json:"value"`
}

type Reward struct {
	XP    int64 `json:"xp"`
	Bonus int64 `json:"bonus,omitempty"`
}

type Achievement struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Icon        string      `json:"icon"`
	Requirement Requirement `json:"requirement"`
	Reward      Reward      `json:"reward"`
}

type Badge struct {
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

type Level struct {
	Level      int      `json:"level"`
	Title      string   `json:"title"`
	XPRequired int64    `json:"xp_required"`
	Unlocks    []string `json:"unlocks"`
	Badge      Badge    `json:"badge"`
}

// Evaluation is the bot's verdict on a proposed contract.
type Evaluation struct {
	Decision     Decision `json:"decision"`
	Reasoning    string   `json:"reasoning"`
	CounterPrice int64    `json:"counter_price,omitempty"`
}

// Proposal is the subset of a contract the bot needs in order to evaluate it.
type Proposal struct {
	Commodity     string `json:"commodity"`
	Quantity      int64  `json:"quantity"`
	ContractPrice int64  `json:"contract_price"`
}

package game

import (
	"fmt"
	"log/slog"
	"math"
	mathrand "math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// botProfiles is the fixed difficulty roster the sandbox negotiates with.
var botProfiles = []BotProfile{
	{
		ID:                  "bot_easy",
		Name:                "Pratham Trader",
		Difficulty:          DifficultyEasy,
		AcceptanceThreshold: 0.15,
		CounterOfferChance:  0.3,
		Aggressiveness:      0.3,
		RiskTolerance:       0.7,
	},
	{
		ID:                  "bot_medium",
		Name:                "Madhyam Vyapari",
		Difficulty:          DifficultyMedium,
		AcceptanceThreshold: 0.10,
		CounterOfferChance:  0.5,
		Aggressiveness:      0.5,
		RiskTolerance:       0.5,
	},
	{
		ID:                  "bot_hard",
		Name:                "Expert Broker",
		Difficulty:          DifficultyHard,
		AcceptanceThreshold: 0.05,
		CounterOfferChance:  0.7,
		Aggressiveness:      0.8,
		RiskTolerance:       0.2,
	},
}

// NegotiationBot is the rule-based counterparty. It reads prices from the
// market engine but never mutates contract state itself; callers apply its
// verdicts.
type NegotiationBot struct {
	market *MarketEngine
	log    *slog.Logger

	mu   sync.Mutex
	rand *mathrand.Rand
}

func NewNegotiationBot(market *MarketEngine, logger *slog.Logger) *NegotiationBot {
	return NewNegotiationBotSeeded(market, logger, time.Now().UnixNano())
}

func NewNegotiationBotSeeded(market *MarketEngine, logger *slog.Logger, seed int64) *NegotiationBot {
	if logger == nil {
		logger = slog.Default()
	}
	return &NegotiationBot{
		market: market,
		log:    logger,
		rand:   mathrand.New(mathrand.NewSource(seed)),
	}
}

// SelectProfile maps the player's level to a negotiation tier.
func (b *NegotiationBot) SelectProfile(playerLevel int) BotProfile {
	switch {
	case playerLevel <= 2:
		return botProfiles[0]
	case playerLevel <= 5:
		return botProfiles[1]
	default:
		return botProfiles[2]
	}
}

// Profiles returns the full difficulty roster.
func (b *NegotiationBot) Profiles() []BotProfile {
	out := make([]BotProfile, len(botProfiles))
	copy(out, botProfiles)
	return out
}

// EvaluateContract decides whether the counterparty would take the proposed
// price. A price at or below market is always accepted: the bot is never
// choosy about a favorable deal. Above market, the tolerance is the tier
// threshold shifted by the commodity's demand regime, and a within-tolerance
// price may still draw a counter-offer.
func (b *NegotiationBot) EvaluateContract(p Proposal, playerLevel int) Evaluation {
	if p.ContractPrice <= 0 || p.Quantity <= 0 {
		return Evaluation{
			Decision:  DecisionRejected,
			Reasoning: "Contract needs a positive price and quantity.",
		}
	}
	marketPrice := b.market.CurrentPrice(p.Commodity)
	if marketPrice <= 0 {
		return Evaluation{
			Decision:  DecisionRejected,
			Reasoning: fmt.Sprintf("No market price available for %s.", p.Commodity),
		}
	}

	profile := b.SelectProfile(playerLevel)
	deviation := float64(p.ContractPrice-marketPrice) / float64(marketPrice)
	deviationPct := math.Abs(deviation * 100)

	demand := DemandMedium
	if c, ok := b.market.GetCommodity(p.Commodity); ok {
		demand = c.DemandLevel
	}
	adjusted := profile.AcceptanceThreshold
	switch demand {
	case DemandHigh:
		adjusted += 0.05
	case DemandLow:
		adjusted -= 0.05
	}

	if deviation <= 0 {
		return Evaluation{
			Decision: DecisionAccepted,
			Reasoning: fmt.Sprintf("Excellent deal! Your price is %.1f%% below market. Accepted immediately.",
				deviationPct),
		}
	}

	if deviationPct <= adjusted*100 {
		if b.nextFloat() < profile.CounterOfferChance {
			counter := RoundPrice(float64(marketPrice) * (1 + adjusted/2))
			return Evaluation{
				Decision: DecisionCounterOffer,
				Reasoning: fmt.Sprintf("Your price is %.1f%% above market. Counter-offering %d per quintal.",
					deviationPct, counter),
				CounterPrice: counter,
			}
		}
		return Evaluation{
			Decision: DecisionAccepted,
			Reasoning: fmt.Sprintf("Accepted. Price is %.1f%% above market, within range for current %s demand.",
				deviationPct, demand),
		}
	}

	return Evaluation{
		Decision: DecisionRejected,
		Reasoning: fmt.Sprintf("Price too high by %.1f%%. Market price is %d. Consider lowering your price.",
			deviationPct, marketPrice),
	}
}

// GenerateContract synthesizes a pending buyer-facing draft priced around the
// current market: roughly 40% of drafts land below market and the rest
// above, bounded by the tier's acceptance threshold.
func (b *NegotiationBot) GenerateContract(playerLevel int, commodities []Commodity) Contract {
	if len(commodities) == 0 {
		return Contract{}
	}
	profile := b.SelectProfile(playerLevel)

	c := commodities[b.nextIntn(len(commodities))]
	quantity := int64(math.Round((b.nextFloat()*90+10)/10)) * 10
	marketPrice := c.CurrentPrice

	var multiplier float64
	if b.nextFloat() < 0.4 {
		multiplier = 1 - b.nextFloat()*profile.AcceptanceThreshold
	} else {
		multiplier = 1 + b.nextFloat()*profile.AcceptanceThreshold
	}

	now := time.Now()
	return Contract{
		ID:                    "ai_contract_" + uuid.NewString(),
		Commodity:             c.Name,
		Quantity:              quantity,
		Unit:                  DefaultUnit,
		ContractPrice:         RoundPrice(float64(marketPrice) * multiplier),
		MarketPriceAtCreation: marketPrice,
		PlayerRole:            RoleBuyer,
		CreatedBy:             AuthorAI,
		Status:                StatusPending,
		CreatedAt:             now,
	}
}

// GeneratePool returns count fresh AI drafts over the engine's commodity set.
func (b *NegotiationBot) GeneratePool(playerLevel, count int) []Contract {
	commodities := b.market.AllCommodities()
	if len(commodities) == 0 {
		return nil
	}
	out := make([]Contract, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, b.GenerateContract(playerLevel, commodities))
	}
	return out
}

func (b *NegotiationBot) nextFloat() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rand.Float64()
}

func (b *NegotiationBot) nextIntn(n int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rand.Intn(n)
}

package game

import (
	"context"
	"strings"
	"testing"

	"mandisim/internal/snapshot"
)

func newTestBot(t *testing.T, seed int64) (*NegotiationBot, *MarketEngine) {
	t.Helper()
	e, _ := newTestEngine(t, seed)
	return NewNegotiationBotSeeded(e, testLogger(), seed), e
}

func TestSelectProfile(t *testing.T) {
	bot, _ := newTestBot(t, 1)

	tests := []struct {
		level int
		want  Difficulty
	}{
		{level: 1, want: DifficultyEasy},
		{level: 2, want: DifficultyEasy},
		{level: 3, want: DifficultyMedium},
		{level: 5, want: DifficultyMedium},
		{level: 6, want: DifficultyHard},
		{level: 10, want: DifficultyHard},
	}
	for _, tc := range tests {
		got := bot.SelectProfile(tc.level)
		if got.Difficulty != tc.want {
			t.Fatalf("level %d -> %s, want %s", tc.level, got.Difficulty, tc.want)
		}
	}
}

func TestEvaluateRejectsNonPositiveTerms(t *testing.T) {
	bot, _ := newTestBot(t, 1)

	proposals := []Proposal{
		{Commodity: "Soybean", Quantity: 0, ContractPrice: 4500},
		{Commodity: "Soybean", Quantity: -5, ContractPrice: 4500},
		{Commodity: "Soybean", Quantity: 10, ContractPrice: 0},
		{Commodity: "Soybean", Quantity: 10, ContractPrice: -100},
	}
	for _, p := range proposals {
		ev := bot.EvaluateContract(p, 3)
		if ev.Decision != DecisionRejected {
			t.Fatalf("proposal %+v: decision %s, want rejected", p, ev.Decision)
		}
	}
}

func TestEvaluateRejectsUnknownCommodity(t *testing.T) {
	bot, _ := newTestBot(t, 1)
	ev := bot.EvaluateContract(Proposal{Commodity: "Wheat", Quantity: 10, ContractPrice: 4500}, 3)
	if ev.Decision != DecisionRejected {
		t.Fatalf("decision %s, want rejected", ev.Decision)
	}
	if !strings.Contains(ev.Reasoning, "Wheat") {
		t.Fatalf("reasoning should name the commodity: %q", ev.Reasoning)
	}
}

func TestEvaluateBelowMarketAlwaysAccepted(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		bot, _ := newTestBot(t, seed)
		for _, level := range []int{1, 3, 6} {
			ev := bot.EvaluateContract(Proposal{Commodity: "Soybean", Quantity: 10, ContractPrice: 4000}, level)
			if ev.Decision != DecisionAccepted {
				t.Fatalf("seed %d level %d: below-market decision %s, want accepted", seed, level, ev.Decision)
			}
		}
	}
}

func TestEvaluateAtMarketAccepted(t *testing.T) {
	bot, _ := newTestBot(t, 1)
	ev := bot.EvaluateContract(Proposal{Commodity: "Soybean", Quantity: 10, ContractPrice: 4500}, 6)
	if ev.Decision != DecisionAccepted {
		t.Fatalf("at-market decision %s, want accepted", ev.Decision)
	}
}

// A price sitting exactly on the tier tolerance is never rejected; whether it
// comes back accepted or countered depends on the bot's dice.
func TestEvaluateBoundaryNeverRejected(t *testing.T) {
	sawAccept, sawCounter := false, false
	for seed := int64(1); seed <= 50; seed++ {
		bot, _ := newTestBot(t, seed)
		// Soybean market 4500, medium tier threshold 10%: 4950 is the edge.
		ev := bot.EvaluateContract(Proposal{Commodity: "Soybean", Quantity: 10, ContractPrice: 4950}, 3)
		switch ev.Decision {
		case DecisionAccepted:
			sawAccept = true
		case DecisionCounterOffer:
			sawCounter = true
			want := RoundPrice(4500 * 1.05)
			if ev.CounterPrice != want {
				t.Fatalf("seed %d: counter price %d, want %d", seed, ev.CounterPrice, want)
			}
		default:
			t.Fatalf("seed %d: boundary price rejected: %s", seed, ev.Reasoning)
		}
	}
	if !sawAccept || !sawCounter {
		t.Fatalf("expected both outcomes across seeds: accept=%v counter=%v", sawAccept, sawCounter)
	}
}

func TestEvaluateAboveToleranceRejected(t *testing.T) {
	tests := []struct {
		level int
		price int64
	}{
		{level: 3, price: 5000}, // 11.1% over, medium tolerates 10%
		{level: 6, price: 4950}, // 10% over, hard tolerates 5%
		{level: 1, price: 5200}, // 15.6% over, easy tolerates 15%
	}
	for _, tc := range tests {
		bot, _ := newTestBot(t, 1)
		ev := bot.EvaluateContract(Proposal{Commodity: "Soybean", Quantity: 10, ContractPrice: tc.price}, tc.level)
		if ev.Decision != DecisionRejected {
			t.Fatalf("level %d price %d: decision %s, want rejected", tc.level, tc.price, ev.Decision)
		}
	}
}

func TestEvaluateDemandShiftsTolerance(t *testing.T) {
	bot, e := newTestBot(t, 1)

	setDemand := func(d DemandLevel) {
		e.mu.Lock()
		e.commodities["Soybean"].DemandLevel = d
		e.mu.Unlock()
	}

	// 12% over market: outside medium's 10%, inside the high-demand 15%.
	high := Proposal{Commodity: "Soybean", Quantity: 10, ContractPrice: 5040}
	setDemand(DemandHigh)
	if ev := bot.EvaluateContract(high, 3); ev.Decision == DecisionRejected {
		t.Fatalf("high demand should widen tolerance: %s", ev.Reasoning)
	}

	// 10% over market: on medium's edge, outside the low-demand 5%.
	low := Proposal{Commodity: "Soybean", Quantity: 10, ContractPrice: 4950}
	setDemand(DemandLow)
	if ev := bot.EvaluateContract(low, 3); ev.Decision != DecisionRejected {
		t.Fatalf("low demand should narrow tolerance, got %s", ev.Decision)
	}
}

func TestGenerateContractShape(t *testing.T) {
	bot, e := newTestBot(t, 9)
	commodities := e.AllCommodities()

	for i := 0; i < 100; i++ {
		c := bot.GenerateContract(3, commodities)
		if !strings.HasPrefix(c.ID, "ai_contract_") {
			t.Fatalf("id %q missing ai_contract_ prefix", c.ID)
		}
		if c.CreatedBy != AuthorAI || c.PlayerRole != RoleBuyer || c.Status != StatusPending {
			t.Fatalf("draft metadata wrong: %+v", c)
		}
		if c.Quantity < 10 || c.Quantity > 100 || c.Quantity%10 != 0 {
			t.Fatalf("quantity %d outside 10..100 step 10", c.Quantity)
		}
		market := c.MarketPriceAtCreation
		lo := RoundPrice(float64(market) * 0.90)
		hi := RoundPrice(float64(market) * 1.10)
		if c.ContractPrice < lo-1 || c.ContractPrice > hi+1 {
			t.Fatalf("price %d outside [%d,%d] around market %d", c.ContractPrice, lo, hi, market)
		}
		if c.Unit != DefaultUnit {
			t.Fatalf("unit %q, want %q", c.Unit, DefaultUnit)
		}
	}
}

func TestGenerateContractEmptyCommodities(t *testing.T) {
	bot, _ := newTestBot(t, 1)
	if c := bot.GenerateContract(3, nil); c.ID != "" {
		t.Fatalf("nil commodity slice produced a draft: %+v", c)
	}
	if c := bot.GenerateContract(3, []Commodity{}); c.ID != "" {
		t.Fatalf("empty commodity slice produced a draft: %+v", c)
	}
}

func TestGeneratePool(t *testing.T) {
	bot, _ := newTestBot(t, 9)
	pool := bot.GeneratePool(3, 8)
	if len(pool) != 8 {
		t.Fatalf("pool size %d, want 8", len(pool))
	}

	empty := NewNegotiationBotSeeded(
		NewMarketEngineWith(context.Background(), snapshot.NewMemory(), testLogger(), MarketOptions{Seed: 1}),
		testLogger(), 1)
	empty.market.mu.Lock()
	empty.market.commodities = map[string]*Commodity{}
	empty.market.mu.Unlock()
	if pool := empty.GeneratePool(3, 5); pool != nil {
		t.Fatalf("expected nil pool on empty market, got %d drafts", len(pool))
	}
}

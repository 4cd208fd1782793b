package game

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	mathrand "math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"mandisim/internal/snapshot"
)

// Seed commodities, used whenever no market snapshot exists yet.
var commodityConfig = []struct {
	Name       string
	BasePrice  int64
	Volatility float64
}{
	{"Soybean", 4500, 0.12},
	{"Mustard", 5500, 0.15},
	{"Groundnut", 6200, 0.10},
	{"Sunflower", 5800, 0.14},
}

const (
	trendDrift       = 0.05
	trendSwitchProb  = 0.05
	demandSwitchProb = 0.10
	defaultTickMin   = 45 * time.Second
	defaultTickMax   = 60 * time.Second
)

var (
	allTrends  = []Trend{TrendBullish, TrendBearish, TrendStable}
	allDemands = []DemandLevel{DemandHigh, DemandMedium, DemandLow}
)

// MarketOptions tune a MarketEngine. The zero value gives production
// behavior: a time-based seed and the 45-60s jittered tick cadence.
type MarketOptions struct {
	Seed    int64
	TickMin time.Duration
	TickMax time.Duration
}

// MarketEngine owns the simulated commodity set and advances prices one tick
// at a time. All mutation happens inside UpdatePrices under a single lock, so
// reads never observe a half-applied tick.
type MarketEngine struct {
	store snapshot.Store
	log   *slog.Logger

	mu          sync.Mutex
	rand        *mathrand.Rand
	commodities map[string]*Commodity

	tickMin time.Duration
	tickMax time.Duration

	tickMu sync.Mutex
	stopCh chan struct{}
}

func NewMarketEngine(ctx context.Context, store snapshot.Store, logger *slog.Logger) *MarketEngine {
	return NewMarketEngineWith(ctx, store, logger, MarketOptions{})
}

func NewMarketEngineWith(ctx context.Context, store snapshot.Store, logger *slog.Logger, opts MarketOptions) *MarketEngine {
	if logger == nil {
		logger = slog.Default()
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	tickMin, tickMax := opts.TickMin, opts.TickMax
	if tickMin <= 0 {
		tickMin = defaultTickMin
	}
	if tickMax < tickMin {
		tickMax = tickMin
	}
	e := &MarketEngine{
		store:       store,
		log:         logger,
		rand:        mathrand.New(mathrand.NewSource(seed)),
		commodities: make(map[string]*Commodity),
		tickMin:     tickMin,
		tickMax:     tickMax,
	}
	e.restoreOrSeed(ctx)
	return e
}

// restoreOrSeed loads the persisted commodity set, falling back to fresh seed
// data when the snapshot is missing or unreadable.
func (e *MarketEngine) restoreOrSeed(ctx context.Context) {
	raw, err := e.store.Load(ctx, snapshot.KeyMarket)
	if err != nil {
		e.log.Warn("market snapshot load failed, reseeding", "err", err)
	}
	if err == nil && len(raw) > 0 {
		var stored []Commodity
		if err := json.Unmarshal(raw, &stored); err != nil {
			e.log.Warn("market snapshot corrupt, reseeding", "err", err)
		} else if len(stored) > 0 {
			for i := range stored {
				c := stored[i]
				e.commodities[c.Name] = &c
			}
			return
		}
	}

	now := time.Now()
	for _, cfg := range commodityConfig {
		e.commodities[cfg.Name] = &Commodity{
			ID:           "commodity_" + strings.ToLower(cfg.Name),
			Name:         cfg.Name,
			BasePrice:    cfg.BasePrice,
			CurrentPrice: cfg.BasePrice,
			Trend:        TrendStable,
			DemandLevel:  DemandMedium,
			Volatility:   cfg.Volatility,
			LastUpdated:  now,
			PriceHistory: []PricePoint{{Timestamp: now, Price: cfg.BasePrice}},
		}
	}
	if err := e.persistLocked(ctx); err != nil {
		e.log.Warn("market seed persist failed", "err", err)
	}
}

// CurrentPrice returns the live price for a commodity, or 0 when unknown.
func (e *MarketEngine) CurrentPrice(name string) int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if c, ok := e.commodities[name]; ok {
		return c.CurrentPrice
	}
	return 0
}

// GetCommodity returns a copy of the named commodity.
func (e *MarketEngine) GetCommodity(name string) (Commodity, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.commodities[name]
	if !ok {
		return Commodity{}, false
	}
	return copyCommodity(c), true
}

// AllCommodities returns copies of every commodity, ordered by name.
func (e *MarketEngine) AllCommodities() []Commodity {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Commodity, 0, len(e.commodities))
	for _, name := range e.sortedNamesLocked() {
		out = append(out, copyCommodity(e.commodities[name]))
	}
	return out
}

// UpdatePrices advances every commodity by exactly one tick and persists the
// resulting snapshot. Safe to call directly, independent of the auto-updater.
func (e *MarketEngine) UpdatePrices(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now()
	for _, name := range e.sortedNamesLocked() {
		e.tickCommodityLocked(e.commodities[name], now)
	}
	return e.persistLocked(ctx)
}

// tickCommodityLocked applies one simulated time-unit of movement: a
// volatility-scaled uniform shock around a trend drift, first-order reversion
// toward base outside the 15% band, a hard floor at half of base, then an
// independent chance of the trend and demand regimes being redrawn.
func (e *MarketEngine) tickCommodityLocked(c *Commodity, now time.Time) {
	drift := 0.0
	switch c.Trend {
	case TrendBullish:
		drift = trendDrift
	case TrendBearish:
		drift = -trendDrift
	}

	shock := e.rand.Float64()*2 - 1
	price := float64(c.CurrentPrice) + float64(c.CurrentPrice)*(drift+c.Volatility*shock)

	base := float64(c.BasePrice)
	if dev := price - base; math.Abs(dev) > ReversionBand*base {
		price -= dev * ReversionStrength
	}
	price = math.Max(price, PriceFloor(c.BasePrice))
	c.CurrentPrice = RoundPrice(price)

	if e.rand.Float64() < trendSwitchProb {
		c.Trend = allTrends[e.rand.Intn(len(allTrends))]
	}
	if e.rand.Float64() < demandSwitchProb {
		c.DemandLevel = allDemands[e.rand.Intn(len(allDemands))]
	}

	c.LastUpdated = now
	c.PriceHistory = append(c.PriceHistory, PricePoint{Timestamp: now, Price: c.CurrentPrice})
	if len(c.PriceHistory) > PriceHistoryCap {
		c.PriceHistory = c.PriceHistory[len(c.PriceHistory)-PriceHistoryCap:]
	}
}

func (e *MarketEngine) persistLocked(ctx context.Context) error {
	all := make([]Commodity, 0, len(e.commodities))
	for _, name := range e.sortedNamesLocked() {
		all = append(all, copyCommodity(e.commodities[name]))
	}
	raw, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("marshal market snapshot: %w", err)
	}
	if err := e.store.Save(ctx, snapshot.KeyMarket, raw); err != nil {
		return fmt.Errorf("persist market snapshot: %w", err)
	}
	return nil
}

func (e *MarketEngine) sortedNamesLocked() []string {
	names := make([]string, 0, len(e.commodities))
	for name := range e.commodities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StartAutoUpdate begins the recurring background tick. Calling it while the
// updater is already running is a no-op.
func (e *MarketEngine) StartAutoUpdate() {
	e.tickMu.Lock()
	defer e.tickMu.Unlock()
	if e.stopCh != nil {
		return
	}
	stop := make(chan struct{})
	e.stopCh = stop
	go e.autoUpdate(stop)
}

// StopAutoUpdate halts the background tick. A no-op when not running.
func (e *MarketEngine) StopAutoUpdate() {
	e.tickMu.Lock()
	defer e.tickMu.Unlock()
	if e.stopCh == nil {
		return
	}
	close(e.stopCh)
	e.stopCh = nil
}

func (e *MarketEngine) autoUpdate(stop <-chan struct{}) {
	timer := time.NewTimer(e.nextInterval())
	defer timer.Stop()
	for {
		select {
		case <-stop:
			return
		case <-timer.C:
			if err := e.UpdatePrices(context.Background()); err != nil {
				e.log.Error("market tick failed", "err", err)
			}
			timer.Reset(e.nextInterval())
		}
	}
}

// nextInterval draws a jittered tick cadence from [tickMin, tickMax].
func (e *MarketEngine) nextInterval() time.Duration {
	e.mu.Lock()
	f := e.rand.Float64()
	e.mu.Unlock()
	return e.tickMin + time.Duration(f*float64(e.tickMax-e.tickMin))
}

func copyCommodity(c *Commodity) Commodity {
	out := *c
	out.PriceHistory = make([]PricePoint, len(c.PriceHistory))
	copy(out.PriceHistory, c.PriceHistory)
	return out
}

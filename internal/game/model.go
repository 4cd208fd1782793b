package game

import (
	"errors"
	"fmt"
	"math"
	"time"
)

const (
	// StarterBalance is the virtual bankroll every new player begins with.
	StarterBalance = int64(1_000_000)

	// PriceHistoryCap bounds each commodity's retained price series.
	PriceHistoryCap = 50

	// PriceFloorRatio is the hard lower bound on price relative to base.
	PriceFloorRatio = 0.5

	// ReversionBand is the deviation from base beyond which reversion kicks in.
	ReversionBand = 0.15

	// ReversionStrength is the first-order pull applied outside the band.
	ReversionStrength = 0.1

	DefaultUnit = "quintals"
)

var (
	ErrCommodityNotFound = errors.New("commodity not found")
	ErrContractNotFound  = errors.New("contract not found")
	ErrNoPlayer          = errors.New("no player created yet")
	ErrAlreadyCompleted  = errors.New("contract already completed")
	ErrNotAccepted       = errors.New("contract is not in accepted state")
	ErrNotPending        = errors.New("contract is not in pending state")
)

// SettlementPL is the canonical profit/loss rule. A farmer locks a sale
// price, so anything above the market benchmark at creation is a gain; a
// buyer locks a purchase price, so the sign flips.
func SettlementPL(role Role, contractPrice, marketPriceAtCreation, quantity int64) int64 {
	if role == RoleBuyer {
		return (marketPriceAtCreation - contractPrice) * quantity
	}
	return (contractPrice - marketPriceAtCreation) * quantity
}

// NewContractNumber formats a human-readable contract number, e.g. SB-2026-042.
func NewContractNumber(at time.Time, seq int) string {
	return fmt.Sprintf("SB-%d-%03d", at.Year(), seq%1000)
}

// PriceFloor returns the minimum admissible price for a base anchor.
func PriceFloor(basePrice int64) float64 {
	return float64(basePrice) * PriceFloorRatio
}

// RoundPrice converts a simulated price to integer currency units.
func RoundPrice(p float64) int64 {
	return int64(math.Round(p))
}

package game

import (
	"testing"
	"time"
)

func TestSettlementPL(t *testing.T) {
	tests := []struct {
		role     Role
		price    int64
		market   int64
		quantity int64
		want     int64
	}{
		{role: RoleFarmer, price: 5000, market: 4500, quantity: 10, want: 5000},
		{role: RoleFarmer, price: 4000, market: 4500, quantity: 10, want: -5000},
		{role: RoleBuyer, price: 5000, market: 4500, quantity: 10, want: -5000},
		{role: RoleBuyer, price: 4000, market: 4500, quantity: 10, want: 5000},
		{role: RoleFarmer, price: 4500, market: 4500, quantity: 100, want: 0},
	}
	for _, tc := range tests {
		got := SettlementPL(tc.role, tc.price, tc.market, tc.quantity)
		if got != tc.want {
			t.Fatalf("%s price=%d market=%d qty=%d: got %d, want %d",
				tc.role, tc.price, tc.market, tc.quantity, got, tc.want)
		}
	}
}

func TestNewContractNumber(t *testing.T) {
	at := time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)
	if got := NewContractNumber(at, 7); got != "SB-2026-007" {
		t.Fatalf("got %q", got)
	}
	if got := NewContractNumber(at, 42); got != "SB-2026-042" {
		t.Fatalf("got %q", got)
	}
}

func TestPriceFloor(t *testing.T) {
	if got := PriceFloor(4500); got != 2250 {
		t.Fatalf("floor %f, want 2250", got)
	}
}

func TestRoundPrice(t *testing.T) {
	tests := []struct {
		in   float64
		want int64
	}{
		{in: 4724.4, want: 4724},
		{in: 4724.5, want: 4725},
		{in: 4725.0, want: 4725},
	}
	for _, tc := range tests {
		if got := RoundPrice(tc.in); got != tc.want {
			t.Fatalf("RoundPrice(%f) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

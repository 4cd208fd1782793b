package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"mandisim/internal/game"

	"github.com/fatih/color"
)

var (
	stdinReader = bufio.NewReader(os.Stdin)
	accent      = color.New(color.FgCyan, color.Bold)
	success     = color.New(color.FgGreen, color.Bold)
	warn        = color.New(color.FgYellow, color.Bold)
	danger      = color.New(color.FgRed, color.Bold)
	neutral     = color.New(color.FgHiWhite)
)

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func promptRequired(label string) (string, error) {
	for {
		fmt.Printf("%s: ", label)
		line, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		line = strings.TrimSpace(line)
		if line != "" {
			return line, nil
		}
		warn.Println("value required")
	}
}

func promptInt64(label string, min int64) (int64, error) {
	for {
		raw, err := promptRequired(label)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < min {
			warn.Printf("enter a whole number >= %d\n", min)
			continue
		}
		return v, nil
	}
}

func formatMoney(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	s := strconv.FormatInt(v, 10)
	var b strings.Builder
	for i, ch := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}
	return sign + "₹" + b.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func trendLabel(t game.Trend) string {
	switch t {
	case game.TrendBullish:
		return success.Sprint("bullish")
	case game.TrendBearish:
		return danger.Sprint("bearish")
	default:
		return neutral.Sprint("stable")
	}
}

func renderPrices(commodities []game.Commodity) {
	accent.Println("\n== MANDI PRICES ==")
	if len(commodities) == 0 {
		printInfo("no commodities available")
		return
	}
	fmt.Printf("%-12s %12s %12s %-10s %-8s\n", "COMMODITY", "PRICE", "BASE", "TREND", "DEMAND")
	for _, c := range commodities {
		fmt.Printf("%-12s %12s %12s %-10s %-8s\n",
			truncate(c.Name, 12),
			formatMoney(c.CurrentPrice),
			formatMoney(c.BasePrice),
			trendLabel(c.Trend),
			string(c.DemandLevel),
		)
	}
	fmt.Println()
}

func renderCommodity(c game.Commodity) {
	accent.Printf("\n== %s ==\n", strings.ToUpper(c.Name))
	fmt.Printf("price:      %s per quintal\n", formatMoney(c.CurrentPrice))
	fmt.Printf("base:       %s\n", formatMoney(c.BasePrice))
	fmt.Printf("volatility: %.2f\n", c.Volatility)
	fmt.Printf("trend:      %s\n", trendLabel(c.Trend))
	fmt.Printf("demand:     %s\n", c.DemandLevel)
	if len(c.PriceHistory) > 0 {
		accent.Println("\nrecent prices")
		start := 0
		if len(c.PriceHistory) > 10 {
			start = len(c.PriceHistory) - 10
		}
		for _, p := range c.PriceHistory[start:] {
			fmt.Printf("  %s  %12s\n", p.Timestamp.Format("15:04:05"), formatMoney(p.Price))
		}
	}
	fmt.Println()
}

func renderProfile(p game.Player) {
	accent.Printf("\n== %s ==\n", strings.ToUpper(p.Name))
	fmt.Printf("level:       %d (%s)\n", p.Level, levelTitle(p.Level))
	fmt.Printf("xp:          %d\n", p.XP)
	fmt.Printf("balance:     %s\n", formatMoney(p.Balance))
	fmt.Printf("trades:      %d\n", p.Stats.TotalTrades)
	fmt.Printf("win rate:    %.1f%%\n", p.Stats.WinRate)
	fmt.Printf("profit:      %s\n", formatMoney(p.Stats.TotalProfit))
	fmt.Printf("streak:      %d (best %d)\n", p.Stats.CurrentStreak, p.Stats.BestStreak)
	fmt.Printf("achievements: %d\n", len(p.Achievements))
	fmt.Println()
}

func levelTitle(level int) string {
	for _, l := range game.Levels {
		if l.Level == level {
			return l.Title
		}
	}
	return "Unknown"
}

func statusLabel(s game.ContractStatus) string {
	switch s {
	case game.StatusAccepted:
		return success.Sprint(string(s))
	case game.StatusRejected:
		return danger.Sprint(string(s))
	case game.StatusCompleted:
		return accent.Sprint(string(s))
	default:
		return warn.Sprint(string(s))
	}
}

func renderContracts(contracts []game.Contract) {
	accent.Println("\n== CONTRACTS ==")
	if len(contracts) == 0 {
		printInfo("no contracts")
		return
	}
	fmt.Printf("%-22s %-12s %-10s %8s %12s %-10s %-7s\n",
		"ID", "NUMBER", "COMMODITY", "QTY", "PRICE", "STATUS", "ROLE")
	for _, c := range contracts {
		fmt.Printf("%-22s %-12s %-10s %8d %12s %-10s %-7s\n",
			truncate(c.ID, 22),
			c.ContractNumber,
			truncate(c.Commodity, 10),
			c.Quantity,
			formatMoney(c.ContractPrice),
			statusLabel(c.Status),
			string(c.PlayerRole),
		)
	}
	fmt.Println()
}

func renderEvaluation(c game.Contract, ev game.Evaluation) {
	accent.Println("\n== COUNTERPARTY VERDICT ==")
	fmt.Printf("contract:  %s (%s)\n", c.ID, c.ContractNumber)
	fmt.Printf("terms:     %d %s of %s at %s\n", c.Quantity, c.Unit, c.Commodity, formatMoney(c.ContractPrice))
	switch ev.Decision {
	case game.DecisionAccepted:
		success.Printf("decision:  %s\n", ev.Decision)
	case game.DecisionCounterOffer:
		warn.Printf("decision:  %s at %s\n", ev.Decision, formatMoney(ev.CounterPrice))
	default:
		danger.Printf("decision:  %s\n", ev.Decision)
	}
	fmt.Printf("reasoning: %s\n\n", ev.Reasoning)
}

func renderTradeResult(r game.TradeResult) {
	accent.Println("\n== SETTLEMENT ==")
	c := r.Contract
	fmt.Printf("contract:  %s (%s)\n", c.ContractNumber, c.Commodity)
	if c.IsProfitable {
		success.Printf("result:    +%s\n", formatMoney(c.ProfitLoss))
	} else {
		danger.Printf("result:    %s\n", formatMoney(c.ProfitLoss))
	}
	fmt.Printf("xp earned: %d\n", r.XPAwarded)
	fmt.Printf("balance:   %s\n", formatMoney(r.Player.Balance))
	if r.LeveledUp {
		success.Printf("level up!  now level %d\n", r.NewLevel)
	}
	for _, u := range r.NewUnlocks {
		printInfo("achievement unlocked: " + u.Name)
	}
	fmt.Println()
}

func renderAchievements(all []game.Achievement, unlocked []string) {
	have := make(map[string]bool, len(unlocked))
	for _, id := range unlocked {
		have[id] = true
	}
	accent.Println("\n== ACHIEVEMENTS ==")
	for _, a := range all {
		mark := "[ ]"
		if have[a.ID] {
			mark = success.Sprint("[x]")
		}
		fmt.Printf("%s %s %-18s %s\n", mark, a.Icon, a.Name, a.Description)
	}
	fmt.Println()
}

func renderLevels(levels []game.Level) {
	accent.Println("\n== LEVEL LADDER ==")
	fmt.Printf("%-6s %-20s %10s  %s\n", "LEVEL", "TITLE", "XP", "UNLOCKS")
	for _, l := range levels {
		fmt.Printf("%-6d %-20s %10d  %s\n", l.Level, l.Title, l.XPRequired, strings.Join(l.Unlocks, ", "))
	}
	fmt.Println()
}

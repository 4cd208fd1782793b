package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	cl "mandisim/internal/cli"
	"mandisim/internal/config"
	"mandisim/internal/game"

	"github.com/spf13/cobra"
)

func main() {
	cfg := config.LoadCLIFromEnv()
	apiBase := cfg.APIBaseURL

	root := &cobra.Command{
		Use:          "mandi",
		Short:        "Mandisim hedging sandbox client",
		SilenceUsage: true,
	}

	root.AddCommand(
		newStartCmd(&apiBase),
		newProfileCmd(&apiBase),
		newPricesCmd(&apiBase),
		newCommodityCmd(&apiBase),
		newTickCmd(&apiBase),
		newOfferCmd(&apiBase),
		newContractsCmd(&apiBase),
		newEvaluateCmd(&apiBase),
		newAcceptCmd(&apiBase),
		newRejectCmd(&apiBase),
		newCompleteCmd(&apiBase),
		newDealsCmd(&apiBase),
		newAchievementsCmd(&apiBase),
		newLevelsCmd(&apiBase),
		newResetCmd(&apiBase),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(apiBase *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

func cmdContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 30*time.Second)
}

func newStartCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Create your sandbox trader",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := promptRequired("Trader name")
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			player, err := newClient(apiBase).CreatePlayer(ctx, name)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Welcome, %s! Starting balance %s.", player.Name, formatMoney(player.Balance)))
			return nil
		},
	}
}

func newProfileCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show your trader profile and stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			player, err := newClient(apiBase).Player(ctx)
			if err != nil {
				return err
			}
			renderProfile(player)
			return nil
		},
	}
}

func newPricesCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "prices",
		Short: "Show live commodity prices",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			commodities, err := newClient(apiBase).Commodities(ctx)
			if err != nil {
				return err
			}
			renderPrices(commodities)
			return nil
		},
	}
}

func newCommodityCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "commodity <name>",
		Short: "Show one commodity with recent price history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			c, err := newClient(apiBase).Commodity(ctx, args[0])
			if err != nil {
				return err
			}
			renderCommodity(c)
			return nil
		},
	}
}

func newTickCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tick",
		Short: "Force one market tick",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			commodities, err := newClient(apiBase).Tick(ctx)
			if err != nil {
				return err
			}
			printSuccess("Market advanced one tick.")
			renderPrices(commodities)
			return nil
		},
	}
}

func newOfferCmd(apiBase *string) *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "offer",
		Short: "Propose a contract to the counterparty",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			client := newClient(apiBase)

			commodities, err := client.Commodities(ctx)
			if err != nil {
				return err
			}
			renderPrices(commodities)

			commodity, err := promptRequired("Commodity")
			if err != nil {
				return err
			}
			quantity, err := promptInt64("Quantity (quintals)", 1)
			if err != nil {
				return err
			}
			price, err := promptInt64("Price per quintal", 1)
			if err != nil {
				return err
			}

			out, err := client.SubmitOffer(ctx, commodity, quantity, price, role)
			if err != nil {
				return err
			}
			renderEvaluation(out.Contract, out.Evaluation)
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", string(game.RoleFarmer), "your side of the deal (farmer or buyer)")
	return cmd
}

func newContractsCmd(apiBase *string) *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "contracts",
		Short: "List your contracts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			contracts, err := newClient(apiBase).Contracts(ctx, role)
			if err != nil {
				return err
			}
			renderContracts(contracts)
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "filter by role (farmer or buyer)")
	return cmd
}

func newEvaluateCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate <contract-id>",
		Short: "Ask the counterparty to re-evaluate a pending contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			out, err := newClient(apiBase).Evaluate(ctx, args[0])
			if err != nil {
				return err
			}
			renderEvaluation(out.Contract, out.Evaluation)
			return nil
		},
	}
}

func newAcceptCmd(apiBase *string) *cobra.Command {
	var useCounter bool
	cmd := &cobra.Command{
		Use:   "accept <contract-id>",
		Short: "Accept a pending contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			c, err := newClient(apiBase).Accept(ctx, args[0], useCounter)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Contract %s accepted at %s per %s.", c.ContractNumber, formatMoney(c.ContractPrice), c.Unit))
			return nil
		},
	}
	cmd.Flags().BoolVar(&useCounter, "counter", false, "accept at the counter-offer price")
	return cmd
}

func newRejectCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reject <contract-id>",
		Short: "Reject a pending contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			c, err := newClient(apiBase).Reject(ctx, args[0])
			if err != nil {
				return err
			}
			printWarn(fmt.Sprintf("Contract %s rejected.", c.ContractNumber))
			return nil
		},
	}
}

func newCompleteCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <contract-id>",
		Short: "Settle an accepted contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			result, err := newClient(apiBase).Complete(ctx, args[0])
			if err != nil {
				return err
			}
			renderTradeResult(result)
			return nil
		},
	}
}

func newDealsCmd(apiBase *string) *cobra.Command {
	var generate int
	cmd := &cobra.Command{
		Use:   "deals",
		Short: "Browse buyer deals offered by the AI",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			client := newClient(apiBase)
			if generate > 0 {
				contracts, err := client.GenerateAIContracts(ctx, generate)
				if err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("Generated %d new deals.", len(contracts)))
				renderContracts(contracts)
				return nil
			}
			contracts, err := client.PendingAIContracts(ctx)
			if err != nil {
				return err
			}
			renderContracts(contracts)
			return nil
		},
	}
	cmd.Flags().IntVar(&generate, "new", 0, "generate this many fresh deals first")
	return cmd
}

func newAchievementsCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "achievements",
		Short: "Show achievements and unlocks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			all, unlocked, err := newClient(apiBase).Achievements(ctx)
			if err != nil {
				return err
			}
			renderAchievements(all, unlocked)
			return nil
		},
	}
}

func newLevelsCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "levels",
		Short: "Show the level ladder",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			levels, err := newClient(apiBase).Levels(ctx)
			if err != nil {
				return err
			}
			renderLevels(levels)
			return nil
		},
	}
}

func newResetCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Wipe the sandbox player and contracts",
		RunE: func(cmd *cobra.Command, args []string) error {
			confirm, err := promptRequired("Type RESET to confirm")
			if err != nil {
				return err
			}
			if confirm != "RESET" {
				printWarn("Aborted.")
				return nil
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			if err := newClient(apiBase).Reset(ctx); err != nil {
				return err
			}
			printSuccess("Sandbox reset.")
			return nil
		},
	}
}

// Command tabletalk exercises the resolution layer from a terminal: resolve
// feature copy for a restaurant, chat with the concierge, and manage the
// on-device cache.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tabletalk/tabletalk-go/dine"
	"github.com/tabletalk/tabletalk-go/dine/provider"
	"github.com/tabletalk/tabletalk-go/internal/config"
	"github.com/tabletalk/tabletalk-go/kv"
)

var debug bool

var (
	restID      string
	restName    string
	restCuisine string
	restPrice   string
	restRating  float64
	restAddr    string
)

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tabletalk",
		Short: "TableTalk AI resolution layer CLI",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.InitLogger()
			if debug {
				config.SetLogLevel(zerolog.DebugLevel)
			}
		},
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&restID, "id", "", "restaurant id")
	rootCmd.PersistentFlags().StringVar(&restName, "name", "", "restaurant name")
	rootCmd.PersistentFlags().StringVar(&restCuisine, "cuisine", "", "primary cuisine")
	rootCmd.PersistentFlags().StringVar(&restPrice, "price", "", "price tier, e.g. $$")
	rootCmd.PersistentFlags().Float64Var(&restRating, "rating", 0, "rating")
	rootCmd.PersistentFlags().StringVar(&restAddr, "address", "", "formatted address")

	rootCmd.AddCommand(newWhyCmd(), newInviteCmd(), newPlanCmd(), newChatCmd(), newClearCacheCmd())
	return rootCmd
}

func snapshot() dine.RestaurantSnapshot {
	return dine.RestaurantSnapshot{
		ID:        restID,
		Name:      restName,
		Cuisine:   restCuisine,
		PriceTier: restPrice,
		Rating:    restRating,
		Location:  restAddr,
	}
}

// newEngine wires a SQLite-backed store and real provider clients from env
// configuration. The caller must Close both returned handles.
func newEngine() (*dine.Engine, *kv.SQLiteStore, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	cfg.Init()

	store, err := kv.NewSQLiteStore(cfg.DataPath)
	if err != nil {
		return nil, nil, err
	}
	chat := provider.NewChatClient(cfg.ChatAPIURL, provider.WithAPIKey(cfg.ChatAPIKey), provider.WithDebugLogging(debug))
	facts := provider.NewFactsClient(cfg.FactsAPIURL, provider.WithAPIKey(cfg.FactsAPIKey), provider.WithDebugLogging(debug))
	eng := dine.New(chat, facts, store, dine.WithLocale(cfg.Locale))
	return eng, store, nil
}

func runWithEngine(fn func(ctx context.Context, eng *dine.Engine) error) error {
	eng, store, err := newEngine()
	if err != nil {
		return err
	}
	defer func() {
		_ = eng.Close()
		_ = store.Close()
	}()
	return fn(context.Background(), eng)
}

func newWhyCmd() *cobra.Command {
	var cuisines, budgets []string
	cmd := &cobra.Command{
		Use:   "why",
		Short: "Explain why this table fits your taste",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithEngine(func(ctx context.Context, eng *dine.Engine) error {
				var taste *dine.TasteProfile
				if len(cuisines) > 0 || len(budgets) > 0 {
					taste = &dine.TasteProfile{TopCuisines: cuisines, BudgetTiers: budgets}
				}
				fmt.Println(eng.WhyThisTable(ctx, snapshot(), taste))
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&cuisines, "top-cuisines", nil, "your top cuisines")
	cmd.Flags().StringSliceVar(&budgets, "budgets", nil, "your budget tiers")
	return cmd
}

func newInviteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "invite",
		Short: "Draft a one-line invite for this restaurant",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithEngine(func(ctx context.Context, eng *dine.Engine) error {
				fmt.Println(eng.StarterInvite(ctx, snapshot()))
				return nil
			})
		},
	}
}

func newPlanCmd() *cobra.Command {
	var vibe string
	cmd := &cobra.Command{
		Use:       "plan [draft-invite|suggest-times|make-group-friendly]",
		Short:     "Run a plan-copilot action",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"draft-invite", "suggest-times", "make-group-friendly"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithEngine(func(ctx context.Context, eng *dine.Engine) error {
				out := eng.PlanCopilot(ctx, snapshot(), dine.PlanAction(args[0]), dine.PlanDraft{Vibe: vibe})
				fmt.Println(out)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&vibe, "vibe", "", "selected plan vibe, if any")
	return cmd
}

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat with the concierge about this restaurant",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithEngine(func(ctx context.Context, eng *dine.Engine) error {
				conv, err := eng.OpenConversation(ctx, snapshot(), nil)
				if err != nil {
					return err
				}
				defer conv.Close()

				for _, m := range conv.Messages() {
					fmt.Printf("%s: %s\n", m.Role, m.Text)
				}

				scanner := bufio.NewScanner(os.Stdin)
				fmt.Print("> ")
				for scanner.Scan() {
					q := strings.TrimSpace(scanner.Text())
					if q == "" || q == "exit" {
						break
					}
					msg, err := conv.Send(ctx, q)
					if err != nil {
						return err
					}
					fmt.Printf("%s: %s\n> ", msg.Role, msg.Text)
				}
				return scanner.Err()
			})
		},
	}
}

func newClearCacheCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-cache",
		Short: "Clear cached AI responses (all, or one restaurant via --id)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithEngine(func(ctx context.Context, eng *dine.Engine) error {
				if restID != "" {
					return eng.ClearEntityCache(ctx, restID)
				}
				return eng.ClearCache(ctx)
			})
		},
	}
}

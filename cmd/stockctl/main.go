package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"stockscope/internal/cache"
	"stockscope/internal/config"
	"stockscope/internal/handler"
	"stockscope/internal/provider"
	"stockscope/internal/service"
	"stockscope/pkg/tracing"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
)

var (
	loadEnvFunc    = godotenv.Load
	loadConfigFunc = config.Load
)

func main() {
	_ = loadEnvFunc()
	if err := newRootCmd(newStockService, os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

// newStockService builds the same provider stack as the server, backed by
// an in-process cache.
func newStockService() (handler.StockService, error) {
	cfg := loadConfigFunc()
	source, err := provider.NewSource(cfg.Provider, cfg.ProviderBaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.APIKey() == "" {
		log.Printf("warning: no API key configured for provider %s", source.Name())
	}
	tracer := otel.Tracer(tracing.ServiceName)
	client := provider.NewClient(tracer, source, cfg.APIKey(), cache.NewMemoryStore(),
		provider.WithTimeout(cfg.ProviderTimeout),
		provider.WithLimiter(provider.PerMinute(cfg.ProviderPerMinute)),
	)
	return service.NewStockService(tracer, client), nil
}

func newRootCmd(build func() (handler.StockService, error), out io.Writer) *cobra.Command {
	var svc handler.StockService

	root := &cobra.Command{
		Use:          "stockctl",
		Short:        "Query stock market data from the command line",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			s, err := build()
			if err != nil {
				return fmt.Errorf("configure provider: %w", err)
			}
			svc = s
			return nil
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "quote SYMBOL",
		Short: "Show the latest quote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := svc.GetQuote(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(out, q)
		},
	})

	history := &cobra.Command{
		Use:   "history SYMBOL",
		Short: "Show recent daily prices in chronological order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			days, _ := cmd.Flags().GetInt("days")
			h, err := svc.GetPriceHistory(cmd.Context(), args[0], days)
			if err != nil {
				return err
			}
			return printJSON(out, h)
		},
	}
	history.Flags().Int("days", service.DefaultHistoryDays, "Number of trading days")
	root.AddCommand(history)

	sma := &cobra.Command{
		Use:   "sma SYMBOL",
		Short: "Show the simple moving average of recent closes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			period, _ := cmd.Flags().GetInt("period")
			days, _ := cmd.Flags().GetInt("days")
			r, err := svc.GetSMA(cmd.Context(), args[0], period, days)
			if err != nil {
				return err
			}
			return printJSON(out, r)
		},
	}
	sma.Flags().Int("period", service.DefaultSMAPeriod, "Averaging window")
	sma.Flags().Int("days", service.DefaultSMADays, "Trading days to consider")
	root.AddCommand(sma)

	root.AddCommand(&cobra.Command{
		Use:   "profile SYMBOL",
		Short: "Show the company profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := svc.GetProfile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(out, p)
		},
	})

	return root
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/invoicer/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "invoicer",
	Short: "Render invoices and deliver them by download, print, email or chat",
	Long: `invoicer renders a transaction from the data service into a PDF invoice
and hands it to one delivery channel.

Configuration comes from the environment (and a .env file when present).`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(deliverCmd())
	rootCmd.AddCommand(templatesCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(exportCmd())
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/invoicer/internal/app"
	"github.com/MrJamesThe3rd/invoicer/internal/config"
	"github.com/MrJamesThe3rd/invoicer/internal/delivery"
	invoicerHttp "github.com/MrJamesThe3rd/invoicer/internal/http"
	deliveryHandler "github.com/MrJamesThe3rd/invoicer/internal/http/delivery"
	exportHandler "github.com/MrJamesThe3rd/invoicer/internal/http/export"
	txHandler "github.com/MrJamesThe3rd/invoicer/internal/http/transaction"
	"github.com/MrJamesThe3rd/invoicer/internal/telemetry"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	shutdown, err := telemetry.Setup(ctx, "invoicer-api", cfg.Telemetry.Endpoint)
	if err != nil {
		slog.Error("failed to set up tracing", "error", err)
		os.Exit(1)
	}
	defer shutdown(ctx)

	// Chat links are returned to the browser console instead of opened here.
	a, err := app.New(cfg, app.Overrides{Opener: delivery.LinkOpener{}})
	if err != nil {
		slog.Error("failed to build services", "error", err)
		os.Exit(1)
	}

	var (
		transactionH = txHandler.NewHandler(a.Transactions)
		deliveryH    = deliveryHandler.NewHandler(a.Transactions, a.Orchestrator, cfg.App.Role)
		exportH      = exportHandler.NewHandler(a.Export)
	)

	router := invoicerHttp.New(transactionH, deliveryH, exportH, invoicerHttp.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Timeout:        cfg.Server.Timeout,
	})

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

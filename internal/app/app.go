// Package app assembles the services every binary shares from configuration.
package app

import (
	"fmt"

	"github.com/spf13/afero"

	"github.com/MrJamesThe3rd/invoicer/internal/config"
	"github.com/MrJamesThe3rd/invoicer/internal/dataservice"
	"github.com/MrJamesThe3rd/invoicer/internal/delivery"
	"github.com/MrJamesThe3rd/invoicer/internal/export"
	"github.com/MrJamesThe3rd/invoicer/internal/resolve"
	"github.com/MrJamesThe3rd/invoicer/internal/status"
	"github.com/MrJamesThe3rd/invoicer/internal/transaction"
)

type App struct {
	Config       *config.Config
	Client       *dataservice.Client
	Transactions *transaction.Service
	Orchestrator *delivery.Orchestrator
	Export       *export.Service
}

// Overrides swaps the parts of the delivery stack that differ between the
// API, the console and the CLI.
type Overrides struct {
	Notifiers []status.Notifier
	Opener    delivery.Opener
	Prompt    delivery.PhonePrompt
	Fs        afero.Fs
}

func New(cfg *config.Config, o Overrides) (*App, error) {
	client, err := dataservice.New(dataservice.Options{
		BaseURL:   cfg.DataService.URL,
		Token:     cfg.DataService.Token,
		JWTSecret: cfg.DataService.JWTSecret,
		Subject:   cfg.DataService.Subject,
		Role:      cfg.App.Role,
		Timeout:   cfg.DataService.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("creating data service client: %w", err)
	}

	fs := o.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	notifiers := append([]status.Notifier{status.LogNotifier{}}, o.Notifiers...)

	orch := delivery.New(delivery.Options{
		Backend:  client,
		Resolver: resolve.NewService(client),
		Reporter: status.NewReporter(notifiers...),
		Saver:    delivery.NewFileSaver(fs, cfg.Download.Dir),
		Surfaces: func() delivery.Surface {
			return delivery.NewSpoolSurface(fs, cfg.Print.Command)
		},
		PrintTimeout: cfg.Print.Timeout,
		Opener:       o.Opener,
		Prompt:       o.Prompt,
		ChatHost:     cfg.Chat.Host,
		SendAs:       cfg.Email.SendAs,
	})

	transactions := transaction.NewService(client)

	return &App{
		Config:       cfg,
		Client:       client,
		Transactions: transactions,
		Orchestrator: orch,
		Export:       export.NewService(transactions, orch, cfg.App.Role),
	}, nil
}

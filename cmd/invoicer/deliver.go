package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/invoicer/internal/app"
	"github.com/MrJamesThe3rd/invoicer/internal/delivery"
	"github.com/MrJamesThe3rd/invoicer/internal/telemetry"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

type deliverOptions struct {
	channel  string
	phone    string
	detailed bool
	role     string
	template string
}

func deliverCmd() *cobra.Command {
	var opts deliverOptions

	cmd := &cobra.Command{
		Use:   "deliver <transaction-id>",
		Short: "Render a transaction and deliver it over one channel",
		Long: `Render the transaction's invoice and deliver it.

Channels:
  download  save the PDF into DOWNLOAD_DIR
  print     send the PDF to PRINT_COMMAND
  email     send through the account's email integration
  chat      save the PDF and open a pre-filled chat compose link`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeliver(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.channel, "channel", "c", string(delivery.ChannelDownload), "delivery channel: download, print, email or chat")
	cmd.Flags().StringVar(&opts.phone, "phone", "", "phone number for the chat channel, overrides the customer's")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include the line items in the chat message")
	cmd.Flags().StringVar(&opts.role, "role", "", "caller role, defaults to APP_ROLE")
	cmd.Flags().StringVarP(&opts.template, "template", "t", "", "template name, defaults to the account default")

	return cmd
}

func runDeliver(ctx context.Context, id string, opts deliverOptions) error {
	ch := delivery.Channel(opts.channel)
	if !ch.Valid() {
		return fmt.Errorf("unknown channel %q", opts.channel)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	shutdown, err := telemetry.Setup(ctx, "invoicer-cli", cfg.Telemetry.Endpoint)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer shutdown(context.Background())

	a, err := app.New(cfg, app.Overrides{Prompt: huhPrompt{}})
	if err != nil {
		return err
	}

	tx, err := a.Transactions.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load transaction %s: %w", id, err)
	}

	role := opts.role
	if role == "" {
		role = cfg.App.Role
	}

	att, err := a.Orchestrator.Deliver(ctx, delivery.Request{
		Channel:     ch,
		Transaction: tx,
		Phone:       opts.phone,
		Detailed:    opts.detailed,
		Role:        role,
		Template:    opts.template,
	})
	if err != nil {
		var derr *delivery.Error
		if errors.As(err, &derr) {
			fmt.Println(failureStyle.Render("✗ " + derr.Message))
			return fmt.Errorf("%s delivery failed: %s", ch, derr.Kind)
		}

		return err
	}

	fmt.Println(successStyle.Render("✓ " + att.Message))

	if att.Link != "" {
		fmt.Println(att.Link)
	}

	return nil
}

// huhPrompt asks for a phone number on the terminal.
type huhPrompt struct{}

func (huhPrompt) Phone(ctx context.Context, name string) (string, error) {
	var phone string

	title := "Phone number"
	if name != "" {
		title = fmt.Sprintf("Phone number for %s", name)
	}

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Description("Leave empty to cancel.").
				Value(&phone),
		),
	).RunWithContext(ctx)
	if err != nil {
		return "", err
	}

	return phone, nil
}

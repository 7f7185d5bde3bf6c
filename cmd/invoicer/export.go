package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/invoicer/internal/app"
	"github.com/MrJamesThe3rd/invoicer/internal/delivery"
	"github.com/MrJamesThe3rd/invoicer/internal/export"
	"github.com/MrJamesThe3rd/invoicer/internal/transaction"
)

func exportCmd() *cobra.Command {
	var (
		dir  string
		days int
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Save a PDF for every invoiceable transaction in a period",
		Long: `Render every invoiceable transaction from the last N days into DIR and
write summary.txt next to them. Transactions that fail are listed in the
summary and do not stop the rest.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if dir == "" {
				dir = cfg.Download.Dir
			}

			a, err := app.New(cfg, app.Overrides{})
			if err != nil {
				return err
			}

			filter := transaction.ListFilter{}
			if days > 0 {
				filter.StartDate = new(time.Now().AddDate(0, 0, -days))
			}

			fs := afero.NewOsFs()

			bar := &barProgress{w: cmd.ErrOrStderr()}

			items, err := a.Export.Export(cmd.Context(), filter, delivery.NewFileSaver(fs, dir), bar)
			if err != nil {
				return fmt.Errorf("failed to export: %w", err)
			}

			summary := export.Summary(items)

			if err := afero.WriteFile(fs, filepath.Join(dir, "summary.txt"), []byte(summary), 0o644); err != nil {
				return fmt.Errorf("failed to write summary: %w", err)
			}

			fmt.Fprint(cmd.OutOrStdout(), summary)

			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "output directory, defaults to DOWNLOAD_DIR")
	cmd.Flags().IntVar(&days, "days", 30, "export transactions from the last N days, 0 for all")

	return cmd
}

// barProgress draws export progress on the terminal.
type barProgress struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

func (p *barProgress) Start(total int) {
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Exporting invoices"),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(p.w)
		}),
	)
}

func (p *barProgress) Done(it export.Item) {
	if it.Err != nil {
		slog.Warn("failed to export transaction", "transaction_id", it.Transaction.ID, "error", it.Err)
	}

	if err := p.bar.Add(1); err != nil {
		slog.Warn("failed to update progress bar", "error", err)
	}
}

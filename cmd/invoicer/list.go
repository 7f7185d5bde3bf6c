package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/invoicer/internal/app"
	"github.com/MrJamesThe3rd/invoicer/internal/format"
	"github.com/MrJamesThe3rd/invoicer/internal/transaction"
)

func listCmd() *cobra.Command {
	var (
		all  bool
		days int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent invoiceable transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			a, err := app.New(cfg, app.Overrides{})
			if err != nil {
				return err
			}

			filter := transaction.ListFilter{}
			if days > 0 {
				filter.StartDate = new(time.Now().AddDate(0, 0, -days))
			}

			list := a.Transactions.ListInvoiceable
			if all {
				list = a.Transactions.List
			}

			txs, err := list(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("failed to list transactions: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNUMBER\tTYPE\tDATE\tAMOUNT")

			for _, tx := range txs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					tx.ID,
					tx.DocumentNumber(),
					tx.Type,
					format.ISODate(tx.Date.Time),
					format.Amount(tx.TotalAmount, tx.Currency),
				)
			}

			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include transaction types that cannot be invoiced")
	cmd.Flags().IntVar(&days, "days", 30, "only show transactions from the last N days, 0 for all")

	return cmd
}

package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func counterCommand(opts Options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "counter",
		Short: "Show the last committed and next invoice number",
		Args:  cobra.NoArgs,
		RunE: withEnv(opts, func(cmd *cobra.Command, _ []string, env *Env) error {
			ctx := cmd.Context()
			alloc := env.Services.Allocator
			out := struct {
				LastInvoiceNumber int    `json:"lastInvoiceNumber"`
				Next              int    `json:"next"`
				Policy            string `json:"policy"`
			}{alloc.Last(ctx), alloc.Peek(ctx), alloc.Policy().Name()}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), out)
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "last:   %d\nnext:   %d\npolicy: %s\n", out.LastInvoiceNumber, out.Next, out.Policy)
			return err
		}),
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func commitNumberCommand(opts Options) *cobra.Command {
	return &cobra.Command{
		Use:   "commit-number NUMBER",
		Short: "Record an invoice number as used without creating an invoice",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(opts, func(cmd *cobra.Command, args []string, env *Env) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invoice number %q is not an integer", args[0])
			}
			if err := env.Services.Invoices.CommitNumber(cmd.Context(), n); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "committed %d\n", n)
			return err
		}),
	}
}

func statsCommand(opts Options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print revenue and payment totals for active invoices",
		Args:  cobra.NoArgs,
		RunE: withEnv(opts, func(cmd *cobra.Command, _ []string, env *Env) error {
			summary, err := env.Services.Dashboard.Summary(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), summary)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "invoices:    %d\n", summary.InvoiceCount)
			fmt.Fprintf(w, "revenue:     %s\n", summary.Display.TotalRevenue)
			fmt.Fprintf(w, "paid:        %d (%s)\n", summary.PaidCount, summary.Display.PaidAmount)
			fmt.Fprintf(w, "unpaid:      %d (%s)\n", summary.UnpaidCount, summary.Display.UnpaidAmount)
			fmt.Fprintf(w, "partial:     %d (%s due)\n", summary.PartialCount, summary.Display.PartialBalance)
			_, err = fmt.Fprintf(w, "recycle bin: %d\n", summary.RecycleBinCount)
			return err
		}),
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func purgeBinCommand(opts Options) *cobra.Command {
	var olderThan int
	cmd := &cobra.Command{
		Use:   "purge-bin",
		Short: "Permanently delete invoices from the recycle bin",
		Args:  cobra.NoArgs,
		RunE: withEnv(opts, func(cmd *cobra.Command, _ []string, env *Env) error {
			ctx := cmd.Context()
			var (
				n   int
				err error
			)
			if olderThan > 0 {
				cutoff := time.Now().UTC().AddDate(0, 0, -olderThan)
				n, err = env.Services.Store.PurgeDeletedBefore(ctx, cutoff)
				if err == nil {
					env.Services.Dashboard.Invalidate(ctx)
				}
			} else {
				n, err = env.Services.Invoices.PurgeAll(ctx)
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "purged %d invoice(s)\n", n)
			return err
		}),
	}
	cmd.Flags().IntVar(&olderThan, "older-than", 0, "only purge invoices deleted more than this many days ago; 0 empties the bin")
	return cmd
}

func exportCommand(opts Options) *cobra.Command {
	var (
		output string
		dir    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the whole dataset as a backup document",
		Args:  cobra.NoArgs,
		RunE: withEnv(opts, func(cmd *cobra.Command, _ []string, env *Env) error {
			ctx := cmd.Context()
			if dir != "" {
				path, err := env.Services.Backup.WriteFile(ctx, dir)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
				return err
			}
			doc := env.Services.Backup.Export(ctx)
			if output == "" || output == "-" {
				return printJSON(cmd.OutOrStdout(), doc)
			}
			if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
				return err
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := printJSON(f, doc); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		}),
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	cmd.Flags().StringVar(&dir, "dir", "", "write a timestamped backup file into this directory")
	cmd.MarkFlagsMutuallyExclusive("output", "dir")
	return cmd
}

func importCommand(opts Options) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Replace the collections present in a backup document; - reads stdin",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(opts, func(cmd *cobra.Command, args []string, env *Env) error {
			var (
				raw []byte
				err error
			)
			if args[0] == "-" {
				raw, err = io.ReadAll(cmd.InOrStdin())
			} else {
				raw, err = os.ReadFile(args[0])
			}
			if err != nil {
				return err
			}
			res, err := env.Services.Backup.Import(cmd.Context(), raw)
			if err != nil {
				return err
			}
			if len(res.Replaced) == 0 {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "nothing to import")
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "replaced %s\n", strings.Join(res.Replaced, ", "))
			return err
		}),
	}
}

package callbacks

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/orris-inc/paypoint/internal/domain/confirmation"
	"github.com/orris-inc/paypoint/internal/infrastructure/config"
	"github.com/orris-inc/paypoint/internal/infrastructure/database"
	"github.com/orris-inc/paypoint/internal/infrastructure/repository"
	"github.com/orris-inc/paypoint/internal/shared/logger"
)

var (
	env        string
	configPath string
	orderRef   string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "callbacks",
		Short: "Inspect the payment callback log",
		Long:  `Read the payment_callbacks log to reconcile what the gateway sent against the state of an order.`,
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	cmd.AddCommand(newListCommand())

	return cmd
}

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the callbacks recorded for one order",
		Long:  `List every recorded callback for an order, oldest first. Legacy callbacks are keyed by order id, REST notifications by order GUID.`,
		RunE:  runList,
	}

	cmd.Flags().StringVarP(&orderRef, "order-ref", "o", "", "Order id or order GUID (required)")
	_ = cmd.MarkFlagRequired("order-ref")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	ref, err := confirmation.ParseOrderReference(orderRef)
	if err != nil {
		return err
	}

	cfg, err := config.Load(env, configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	repo := repository.NewPaymentCallbackRepository(database.Get())
	records, err := repo.ListByOrderRef(cmd.Context(), ref.String())
	if err != nil {
		logger.Error("failed to list payment callbacks", "order_ref", ref.String(), "error", err)
		return err
	}

	return printRecords(cmd.OutOrStdout(), ref.String(), records)
}

func printRecords(w io.Writer, ref string, records []*confirmation.CallbackRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintf(w, "No callbacks recorded for order %s\n", ref)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RECEIVED\tVARIANT\tSTAGE\tOUTCOME\tTRANSACTION\tREMOTE IP\tREASON")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ReceivedAt.UTC().Format(time.RFC3339),
			r.Variant,
			r.Stage,
			orDash(r.Outcome),
			orDash(r.TransactionID),
			orDash(r.RemoteIP),
			orDash(r.Reason),
		)
	}
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

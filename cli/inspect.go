package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/jlynch25/ticketbox/blockchain"
	"github.com/jlynch25/ticketbox/ticketing"
	"github.com/jlynch25/ticketbox/txerrors"
	"github.com/jlynch25/ticketbox/verifier"
)

func newInspectCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Decode captured node replies offline",
	}

	var as, id string
	object := &cobra.Command{
		Use:   "object <file>",
		Short: "Decode a getObject reply as a lot or a ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readPayload(args[0])
			if err != nil {
				return err
			}
			resp, err := blockchain.ParseObjectResponse(data)
			if err != nil {
				return err
			}
			obj, err := resp.Object(id)
			if err != nil {
				return err
			}
			decoder := ticketing.NewDecoder(a.log)
			out := cmd.OutOrStdout()
			switch as {
			case "lot":
				lot, ok := decoder.IssuanceLot(obj)
				if !ok {
					return txerrors.New(txerrors.KindDecode, "%s is not a readable lot", args[0])
				}
				printLot(out, lot)
			case "ticket":
				ticket, ok := decoder.Ticket(obj, id)
				if !ok {
					return txerrors.New(txerrors.KindDecode, "%s is not a readable ticket", args[0])
				}
				printTicket(out, ticket)
			default:
				return txerrors.Validation("--as must be lot or ticket, not %q", as)
			}
			return nil
		},
	}
	object.Flags().StringVar(&as, "as", "ticket", "decode as lot or ticket")
	object.Flags().StringVar(&id, "id", "", "object id when the payload does not carry one")

	tx := &cobra.Command{
		Use:   "tx <file>",
		Short: "Summarise a getTransactionBlock reply",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readPayload(args[0])
			if err != nil {
				return err
			}
			record, err := blockchain.ParseTransactionRecord(data)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), verifier.Summarize(record))
			return nil
		},
	}

	cmd.AddCommand(object, tx)
	return cmd
}

func newVerifyCommand(a *app) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "verify <digest>",
		Short: "Verify a transaction and the ticket it created from captured replies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := verifier.New(captureQuery{dir: dir}, a.log)
			res, err := v.Verify(cmd.Context(), args[0])
			if err != nil {
				return errors.New(verifier.FriendlyMessage(err))
			}
			out := cmd.OutOrStdout()
			printSummary(out, res.Summary)
			fmt.Fprintf(out, "content:    %s\n", res.TicketContent)
			if res.Ticket != nil {
				printTicket(out, res.Ticket)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "capture", ".", "directory of captured replies named by digest or object id")
	return cmd
}

func printLot(out io.Writer, lot *ticketing.IssuanceLot) {
	fmt.Fprintf(out, "lot:        %s\n", lot.ID)
	fmt.Fprintf(out, "event:      %d\n", lot.EventID)
	fmt.Fprintf(out, "sold:       %d/%d\n", lot.Sold, lot.Total)
	fmt.Fprintf(out, "price:      %d\n", lot.Price)
	if !lot.Consistent() {
		fmt.Fprintln(out, "warning:    sold exceeds total")
	}
}

func printTicket(out io.Writer, t *ticketing.Ticket) {
	fmt.Fprintf(out, "ticket:     %s\n", t.ID)
	fmt.Fprintf(out, "owner:      %s\n", t.Owner)
	fmt.Fprintf(out, "event:      %d\n", t.EventID)
	fmt.Fprintf(out, "price:      %d\n", t.Price)
	fmt.Fprintf(out, "used:       %s\n", t.Used)
}

func printSummary(out io.Writer, s verifier.Summary) {
	fmt.Fprintf(out, "digest:     %s\n", s.Digest)
	fmt.Fprintf(out, "status:     %s\n", s.Status)
	if s.StatusError != "" {
		fmt.Fprintf(out, "error:      %s\n", s.StatusError)
	}
	fmt.Fprintf(out, "checkpoint: %s\n", orDash(s.Checkpoint))
	ts := "-"
	if !s.Timestamp.IsZero() {
		ts = s.Timestamp.Format(time.RFC3339)
	}
	fmt.Fprintf(out, "timestamp:  %s\n", ts)
	ticket := orDash(s.TicketID)
	if s.TicketMatchedByFallback {
		ticket += " (first created object)"
	}
	fmt.Fprintf(out, "ticket id:  %s\n", ticket)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

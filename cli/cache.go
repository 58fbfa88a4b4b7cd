package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jlynch25/ticketbox/actions"
	"github.com/jlynch25/ticketbox/localcache"
)

func newCacheCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Show, reconcile or clear the identifiers cached for an account",
	}

	var showCapture string
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the cached lot and ticket ids, with their content when --capture is given",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			view, cache, err := a.accountView()
			if err != nil {
				return err
			}
			snap := view.Current()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "address: %s\n", snap.Address)
			if showCapture == "" {
				fmt.Fprintf(out, "lot:     %s\n", orDash(snap.LotID))
				fmt.Fprintf(out, "tickets: %d\n", len(snap.TicketIDs))
				for _, id := range snap.TicketIDs {
					fmt.Fprintf(out, "  %s\n", id)
				}
				return nil
			}

			orch := a.orchestrator(cache, showCapture)
			lot, err := orch.ActiveLot(cmd.Context(), snap.Address)
			if err != nil {
				return err
			}
			tickets, err := orch.Tickets(cmd.Context(), snap.Address)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "lot:     %s\n", lotLine(lot))
			fmt.Fprintf(out, "tickets: %d\n", len(tickets))
			for _, t := range tickets {
				fmt.Fprintf(out, "  %s\n", ticketLine(t))
			}
			return nil
		},
	}
	show.Flags().StringVar(&showCapture, "capture", "", "directory of captured getObject replies to read content from")

	var reconcileCapture string
	reconcile := &cobra.Command{
		Use:   "reconcile",
		Short: "Drop cached ids the ledger no longer knows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			view, cache, err := a.accountView()
			if err != nil {
				return err
			}
			address := view.Current().Address
			report, err := a.orchestrator(cache, reconcileCapture).Reconcile(cmd.Context(), address)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if report.DroppedLot == "" && len(report.DroppedTickets) == 0 {
				fmt.Fprintf(out, "nothing to drop for %s\n", address)
				return nil
			}
			if report.DroppedLot != "" {
				fmt.Fprintf(out, "dropped lot %s\n", report.DroppedLot)
			}
			for _, id := range report.DroppedTickets {
				fmt.Fprintf(out, "dropped ticket %s\n", id)
			}
			return nil
		},
	}
	reconcile.Flags().StringVar(&reconcileCapture, "capture", "", "directory of captured getObject replies")
	_ = reconcile.MarkFlagRequired("capture")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Forget everything cached for the account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			view, _, err := a.accountView()
			if err != nil {
				return err
			}
			if err := view.Reset(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", view.Current().Address)
			return nil
		},
	}

	cmd.AddCommand(show, reconcile, clearCmd)
	return cmd
}

func (a *app) accountView() (*localcache.AccountView, *localcache.Cache, error) {
	address, err := a.account()
	if err != nil {
		return nil, nil, err
	}
	cache, err := a.openCache()
	if err != nil {
		return nil, nil, err
	}
	view := localcache.NewAccountView(cache)
	if _, err := view.Switch(address); err != nil {
		return nil, nil, err
	}
	return view, cache, nil
}

// orchestrator reads through captured replies for the active network's
// package. It has no signer, so actions are rejected and only reads work.
func (a *app) orchestrator(cache *localcache.Cache, dir string) *actions.Orchestrator {
	q := captureQuery{dir: dir}
	return actions.New(a.cfg.Active().PackageID, nil, nil, cache,
		actions.WithLogger(a.log),
		actions.WithQuery(q),
	)
}

func lotLine(v actions.LotView) string {
	switch {
	case v.ID == "":
		return "-"
	case v.Missing:
		return v.ID + " (not found)"
	case v.Lot == nil:
		return v.ID + " (unreadable)"
	}
	line := fmt.Sprintf("%s sold %d/%d price %d", v.ID, v.Lot.Sold, v.Lot.Total, v.Lot.Price)
	if !v.Lot.Consistent() {
		line += " (sold exceeds total)"
	}
	return line
}

func ticketLine(v actions.TicketView) string {
	switch {
	case v.Missing:
		return v.ID + " (not found)"
	case v.Ticket == nil:
		return v.ID + " (unreadable)"
	}
	return fmt.Sprintf("%s event %d %s", v.ID, v.Ticket.EventID, v.Ticket.Used)
}

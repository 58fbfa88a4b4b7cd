package actions

import (
	"context"

	"github.com/jlynch25/ticketbox/blockchain"
	"github.com/jlynch25/ticketbox/ticketing"
	"github.com/jlynch25/ticketbox/txerrors"
)

// LotView is the cached lot id with its content fetched fresh. Lot is nil
// when the object exists but could not be decoded; Missing is set when the
// ledger no longer knows the id.
type LotView struct {
	ID      string
	Lot     *ticketing.IssuanceLot
	Missing bool
}

// TicketView is the ticket counterpart of LotView.
type TicketView struct {
	ID      string
	Ticket  *ticketing.Ticket
	Missing bool
}

// ReconcileReport lists the cached ids dropped by Reconcile.
type ReconcileReport struct {
	DroppedLot     string
	DroppedTickets []string
}

func (o *Orchestrator) requireQuery() error {
	if o.query == nil {
		return txerrors.Validation("no ledger query service configured")
	}
	return nil
}

// fetch reads one object. missing is true only for a not-found answer;
// every other failure is returned as an error.
func (o *Orchestrator) fetch(ctx context.Context, id string) (obj *blockchain.ObjectData, missing bool, err error) {
	resp, err := o.query.GetObject(ctx, id)
	if err != nil {
		if txerrors.IsNotFound(err) {
			return nil, true, nil
		}
		return nil, false, classify(err, txerrors.KindSubmission, "get object %s", id)
	}
	data, err := resp.Object(id)
	if txerrors.IsNotFound(err) {
		return nil, true, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, false, nil
}

// ActiveLot returns the actor's cached lot, read fresh from the ledger. An
// empty view means nothing is cached.
func (o *Orchestrator) ActiveLot(ctx context.Context, actor string) (LotView, error) {
	if err := o.requireQuery(); err != nil {
		return LotView{}, err
	}
	id, err := o.cache.LotID(actor)
	if err != nil || id == "" {
		return LotView{}, err
	}
	data, missing, err := o.fetch(ctx, id)
	if err != nil {
		return LotView{}, err
	}
	view := LotView{ID: id, Missing: missing}
	if !missing {
		view.Lot, _ = o.decoder.IssuanceLot(data)
	}
	return view, nil
}

// Tickets returns every cached ticket of actor, each read fresh.
func (o *Orchestrator) Tickets(ctx context.Context, actor string) ([]TicketView, error) {
	if err := o.requireQuery(); err != nil {
		return nil, err
	}
	ids, err := o.cache.TicketIDs(actor)
	if err != nil {
		return nil, err
	}
	views := make([]TicketView, 0, len(ids))
	for _, id := range ids {
		data, missing, err := o.fetch(ctx, id)
		if err != nil {
			return nil, err
		}
		view := TicketView{ID: id, Missing: missing}
		if !missing {
			view.Ticket, _ = o.decoder.Ticket(data, id)
		}
		views = append(views, view)
	}
	return views, nil
}

// Reconcile drops cached ids the ledger reports as not found. It refuses
// to run while an action of actor is in flight.
func (o *Orchestrator) Reconcile(ctx context.Context, actor string) (ReconcileReport, error) {
	var report ReconcileReport
	if err := o.requireQuery(); err != nil {
		return report, err
	}
	key := actorKey(actor)
	release, err := o.acquire(key, "", "reconcile")
	if err != nil {
		return report, err
	}
	defer release()

	lot, err := o.ActiveLot(ctx, key)
	if err != nil {
		return report, err
	}
	if lot.Missing {
		if err := o.cache.ClearLotID(key); err != nil {
			return report, err
		}
		report.DroppedLot = lot.ID
	}

	tickets, err := o.Tickets(ctx, key)
	if err != nil {
		return report, err
	}
	kept := make([]string, 0, len(tickets))
	for _, t := range tickets {
		if t.Missing {
			report.DroppedTickets = append(report.DroppedTickets, t.ID)
			continue
		}
		kept = append(kept, t.ID)
	}
	if len(report.DroppedTickets) > 0 {
		if err := o.cache.ReplaceTicketIDs(key, kept); err != nil {
			return report, err
		}
	}
	if report.DroppedLot != "" || len(report.DroppedTickets) > 0 {
		o.log.WithField("address", key).
			WithField("lot", report.DroppedLot).
			WithField("tickets", report.DroppedTickets).
			Warn("dropped stale cached ids")
	}
	return report, nil
}

// ClearLocal forgets everything cached for actor.
func (o *Orchestrator) ClearLocal(actor string) error {
	key := actorKey(actor)
	if key == "" {
		return txerrors.Validation("account address is required")
	}
	release, err := o.acquire(key, "", "clear")
	if err != nil {
		return err
	}
	defer release()
	return o.cache.Clear(key)
}

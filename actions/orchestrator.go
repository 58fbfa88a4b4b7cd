package actions

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jlynch25/ticketbox/blockchain"
	"github.com/jlynch25/ticketbox/localcache"
	"github.com/jlynch25/ticketbox/ticketing"
	"github.com/jlynch25/ticketbox/txerrors"
)

const defaultActivityLimit = 50

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger function
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *Orchestrator) {
		o.log = logger
	}
}

// WithQuery enables the read helpers (ActiveLot, Tickets, Reconcile).
func WithQuery(q blockchain.Query) Option {
	return func(o *Orchestrator) {
		o.query = q
	}
}

// WithObserver function
func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) {
		o.observers = append(o.observers, obs)
	}
}

// WithActivityLimit caps the in-memory activity log.
func WithActivityLimit(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.activityLimit = n
		}
	}
}

// Orchestrator runs create, buy and use actions end to end: build the call,
// have it signed, wait for finality, find the created object and record it
// in the local cache. At most one action runs per actor and per target
// entity at a time.
type Orchestrator struct {
	packageID string
	signer    blockchain.Signer
	confirmer blockchain.Confirmer
	query     blockchain.Query
	cache     *localcache.Cache
	decoder   *ticketing.Decoder
	validate  *validator.Validate
	log       logrus.FieldLogger
	observers []Observer

	mu            sync.Mutex
	busyActors    map[string]string
	busyEntities  map[string]string
	current       map[string]Result
	activity      []Result
	activityLimit int
}

// New function
func New(packageID string, signer blockchain.Signer, confirmer blockchain.Confirmer, cache *localcache.Cache, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		packageID:     packageID,
		signer:        signer,
		confirmer:     confirmer,
		cache:         cache,
		validate:      newValidator(),
		busyActors:    map[string]string{},
		busyEntities:  map[string]string{},
		current:       map[string]Result{},
		activityLimit: defaultActivityLimit,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = logrus.StandardLogger()
	}
	o.log = o.log.WithField("component", "actions")
	o.decoder = ticketing.NewDecoder(o.log)
	return o
}

// CreateLot submits create_box and caches the created lot id.
func (o *Orchestrator) CreateLot(ctx context.Context, actor string, eventID, total, price uint64) (Result, error) {
	req := createLotRequest{Actor: actorKey(actor), PackageID: o.packageID, EventID: eventID, Total: total, Price: price}
	res := o.begin(KindCreateLot, req.Actor, "")
	if err := check(o.validate, req); err != nil {
		return o.reject(res, err)
	}
	call := blockchain.CreateBoxCall(o.packageID, eventID, total, price)
	return o.run(ctx, res, call, blockchain.LotTypeSuffix, o.cache.SetLotID)
}

// BuyTicket submits buy_ticket against lotID and caches the new ticket id.
func (o *Orchestrator) BuyTicket(ctx context.Context, actor, lotID string) (Result, error) {
	req := buyTicketRequest{Actor: actorKey(actor), PackageID: o.packageID, LotID: clean(lotID)}
	res := o.begin(KindBuyTicket, req.Actor, req.LotID)
	if err := check(o.validate, req); err != nil {
		return o.reject(res, err)
	}
	call := blockchain.BuyTicketCall(o.packageID, req.LotID)
	return o.run(ctx, res, call, blockchain.TicketTypeSuffix, o.cache.AppendTicketID)
}

// UseTicket submits use_ticket. Nothing is created, so the cache is not
// touched.
func (o *Orchestrator) UseTicket(ctx context.Context, actor, ticketID string) (Result, error) {
	req := useTicketRequest{Actor: actorKey(actor), PackageID: o.packageID, TicketID: clean(ticketID)}
	res := o.begin(KindUseTicket, req.Actor, req.TicketID)
	if err := check(o.validate, req); err != nil {
		return o.reject(res, err)
	}
	call := blockchain.UseTicketCall(o.packageID, req.TicketID)
	return o.run(ctx, res, call, "", nil)
}

func clean(s string) string {
	return strings.TrimSpace(s)
}

// actorKey matches the cache's address normalisation.
func actorKey(addr string) string {
	return strings.ToLower(clean(addr))
}

func (o *Orchestrator) begin(kind Kind, actor, target string) Result {
	return Result{
		ActionID:  uuid.New().String(),
		Kind:      kind,
		Actor:     actor,
		Target:    target,
		State:     StateIdle,
		StartedAt: time.Now().UTC(),
	}
}

// reject ends an action that never left idle: nothing was sent.
func (o *Orchestrator) reject(res Result, err error) (Result, error) {
	res.Err = err
	res.FinishedAt = time.Now().UTC()
	o.logFor(res).WithError(err).Warn("action rejected")
	return res, err
}

func (o *Orchestrator) run(ctx context.Context, res Result, call blockchain.Call, suffix string, record func(actor, id string) error) (Result, error) {
	// read-only orchestrators are built without a signer
	if o.signer == nil || o.confirmer == nil {
		return o.reject(res, txerrors.Validation("no signer configured"))
	}
	release, err := o.acquire(res.Actor, res.Target, res.ActionID)
	if err != nil {
		return o.reject(res, err)
	}
	defer release()

	o.transition(&res, StateSubmitting)
	digest, err := o.signer.SignAndExecute(ctx, call)
	if err != nil {
		return o.fail(res, classify(err, txerrors.KindSigning, "sign and execute %s", call.Target))
	}
	res.Digest = digest
	o.transition(&res, StateAwaitingConfirmation)

	tx, err := o.confirmer.WaitForTransaction(ctx, digest)
	if err != nil {
		return o.fail(res, classify(err, txerrors.KindSubmission, "wait for %s", digest))
	}
	if tx.ExecStatus() == blockchain.StatusFailure {
		return o.fail(res, txerrors.New(txerrors.KindSubmission, "transaction %s aborted: %s", digest, tx.Effects.AbortMessage()))
	}

	if suffix != "" {
		m := blockchain.FindCreatedObject(tx.CreatedRecords(), suffix)
		switch {
		case !m.Found:
			o.logFor(res).Info("confirmed without created objects, cache unchanged")
		default:
			res.CreatedID = m.ID
			res.MatchedByFallback = m.Fallback
			if m.Fallback {
				o.logFor(res).WithField("object", m.ID).Warnf("no created object of type %s, using first created object", suffix)
			}
			if err := record(res.Actor, m.ID); err != nil {
				res.CacheErr = err
				o.logFor(res).WithError(err).Error("failed to update local cache")
			}
		}
	}

	res.FinishedAt = time.Now().UTC()
	o.transition(&res, StateConfirmed)
	return res, nil
}

// classify keeps an already classified error and wraps anything else with
// the given kind.
func classify(err error, kind txerrors.Kind, format string, args ...interface{}) error {
	if txerrors.KindOf(err) != txerrors.KindUnknown {
		return err
	}
	return txerrors.Wrap(kind, err, format, args...)
}

func (o *Orchestrator) fail(res Result, err error) (Result, error) {
	res.Err = err
	res.FinishedAt = time.Now().UTC()
	o.logFor(res).WithError(err).Error("action failed")
	o.transition(&res, StateFailed)
	return res, err
}

func (o *Orchestrator) transition(res *Result, state State) {
	res.State = state
	o.mu.Lock()
	o.current[res.Actor] = *res
	if state.Terminal() {
		o.activity = append([]Result{*res}, o.activity...)
		if len(o.activity) > o.activityLimit {
			o.activity = o.activity[:o.activityLimit]
		}
	}
	observers := o.observers
	o.mu.Unlock()

	o.logFor(*res).Debugf("-> %s", state)
	for _, obs := range observers {
		obs(*res)
	}
}

// acquire marks actor and entity busy; the returned func releases both.
func (o *Orchestrator) acquire(actor, entity, actionID string) (func(), error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, busy := o.busyActors[actor]; busy {
		return nil, txerrors.ErrActionInFlight
	}
	if entity != "" {
		if _, busy := o.busyEntities[entity]; busy {
			return nil, txerrors.ErrActionInFlight
		}
		o.busyEntities[entity] = actionID
	}
	o.busyActors[actor] = actionID
	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.busyActors, actor)
		if entity != "" {
			delete(o.busyEntities, entity)
		}
	}, nil
}

// Busy reports whether an action for actor is in flight.
func (o *Orchestrator) Busy(actor string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, busy := o.busyActors[actorKey(actor)]
	return busy
}

// EntityBusy reports whether an action targeting a lot or ticket is in
// flight. Callers use it to disable the triggering control.
func (o *Orchestrator) EntityBusy(id string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, busy := o.busyEntities[clean(id)]
	return busy
}

// Current returns the latest action state of actor.
func (o *Orchestrator) Current(actor string) (Result, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	res, ok := o.current[actorKey(actor)]
	return res, ok
}

// Activity returns terminal results, newest first.
func (o *Orchestrator) Activity() []Result {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Result(nil), o.activity...)
}

func (o *Orchestrator) logFor(res Result) *logrus.Entry {
	return o.log.WithFields(logrus.Fields{
		"action":  res.ActionID,
		"kind":    res.Kind,
		"address": res.Actor,
		"digest":  res.Digest,
	})
}

// Package verifier checks the outcome of any transaction by digest, straight
// from the ledger query service.
package verifier

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jlynch25/ticketbox/blockchain"
	"github.com/jlynch25/ticketbox/ticketing"
	"github.com/jlynch25/ticketbox/txerrors"
)

// NotIndexedMessage is shown when a digest is unknown to the node.
const NotIndexedMessage = "transaction id does not exist or is not indexed yet"

// State of the verifier.
type State string

// verifier states
const (
	StateIdle     State = "idle"
	StateChecking State = "checking"
	StateDone     State = "done"
	StateError    State = "error"
)

// TicketContent says what became of the ticket lookup.
type TicketContent string

// ticket content availability
const (
	// ContentNone: the transaction created no ticket.
	ContentNone        TicketContent = "none"
	ContentAvailable   TicketContent = "available"
	ContentUnavailable TicketContent = "unavailable"
	ContentUndecodable TicketContent = "undecodable"
)

// Summary is what a transaction record says on its own.
type Summary struct {
	Digest      string
	Status      blockchain.ExecStatus
	StatusError string
	// Checkpoint is empty when the node did not report one.
	Checkpoint string
	// Timestamp is zero when the node did not report one.
	Timestamp time.Time

	TicketID                string
	TicketMatchedByFallback bool
}

// Result of Verify: the summary plus the ticket read fresh.
type Result struct {
	Summary
	TicketContent TicketContent
	Ticket        *ticketing.Ticket
}

// Summarize interprets a record without any network access. The ticket id
// comes from object changes when one is a ticket, otherwise from the effects
// created list, falling back to its first entry.
func Summarize(tx *blockchain.TransactionRecord) Summary {
	var s Summary
	if tx == nil {
		s.Status = blockchain.StatusUnknown
		return s
	}
	s.Digest = tx.Digest
	s.Status = tx.ExecStatus()
	if tx.Effects != nil {
		s.StatusError = tx.Effects.AbortMessage()
	}
	s.Checkpoint, _ = tx.CheckpointRef()
	s.Timestamp, _ = tx.Timestamp()

	m := blockchain.FindMatchedObject(tx.ObjectChanges, blockchain.TicketTypeSuffix)
	if !m.Found {
		m = blockchain.FindCreatedObject(tx.CreatedRecords(), blockchain.TicketTypeSuffix)
	}
	if m.Found {
		s.TicketID = m.ID
		s.TicketMatchedByFallback = m.Fallback
	}
	return s
}

// Verifier struct
type Verifier struct {
	query   blockchain.Query
	decoder *ticketing.Decoder
	log     logrus.FieldLogger

	mu    sync.Mutex
	state State
}

// New function
func New(query blockchain.Query, logger logrus.FieldLogger) *Verifier {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger = logger.WithField("component", "verifier")
	return &Verifier{
		query:   query,
		decoder: ticketing.NewDecoder(logger),
		log:     logger,
		state:   StateIdle,
	}
}

// State returns the state of the latest verification.
func (v *Verifier) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *Verifier) setState(s State) {
	v.mu.Lock()
	v.state = s
	v.mu.Unlock()
}

// Verify fetches the transaction, locates the ticket it created and reads
// that ticket's current content.
func (v *Verifier) Verify(ctx context.Context, digest string) (*Result, error) {
	digest = strings.TrimSpace(digest)
	if digest == "" {
		v.setState(StateError)
		return nil, txerrors.Validation("transaction id is required")
	}
	log := v.log.WithField("digest", digest)
	if !blockchain.IsDigest(digest) {
		log.Warn("digest is not 32 byte base58, querying anyway")
	}

	v.setState(StateChecking)
	res, err := v.verify(ctx, digest, log)
	if err != nil {
		v.setState(StateError)
		log.WithError(err).Info("verification failed")
		return nil, err
	}
	v.setState(StateDone)
	log.WithFields(logrus.Fields{
		"status":  res.Status,
		"ticket":  res.TicketID,
		"content": res.TicketContent,
	}).Info("verified")
	return res, nil
}

func (v *Verifier) verify(ctx context.Context, digest string, log *logrus.Entry) (*Result, error) {
	tx, err := v.query.GetTransaction(ctx, digest)
	if err != nil {
		return nil, classify(err, "get transaction %s", digest)
	}
	res := &Result{Summary: Summarize(tx), TicketContent: ContentNone}
	if res.Digest == "" {
		res.Digest = digest
	}
	if res.TicketID == "" {
		return res, nil
	}
	if res.TicketMatchedByFallback {
		log.WithField("object", res.TicketID).Warn("no created ticket, using first created object")
	}

	resp, err := v.query.GetObject(ctx, res.TicketID)
	if err != nil {
		if txerrors.IsNotFound(err) {
			res.TicketContent = ContentUnavailable
			return res, nil
		}
		return nil, classify(err, "get ticket %s", res.TicketID)
	}
	obj, err := resp.Object(res.TicketID)
	switch {
	case txerrors.IsNotFound(err):
		res.TicketContent = ContentUnavailable
		return res, nil
	case err != nil:
		return nil, err
	}

	if !isTicket(obj) {
		res.TicketContent = ContentUndecodable
		return res, nil
	}
	ticket, ok := v.decoder.Ticket(obj, res.TicketID)
	if !ok {
		res.TicketContent = ContentUndecodable
		return res, nil
	}
	res.Ticket = ticket
	res.TicketContent = ContentAvailable
	return res, nil
}

// isTicket rejects objects whose declared type is some other struct. An
// object with no declared type is given the benefit of the doubt.
func isTicket(obj *blockchain.ObjectData) bool {
	typeName := obj.Type
	if obj.Content != nil && obj.Content.Type != "" {
		typeName = obj.Content.Type
	}
	return typeName == "" || blockchain.HasTypeSuffix(typeName, blockchain.TicketTypeSuffix)
}

func classify(err error, format string, args ...interface{}) error {
	if txerrors.KindOf(err) != txerrors.KindUnknown {
		return err
	}
	if txerrors.IsNotFound(err) {
		return txerrors.Wrap(txerrors.KindNotFound, err, format, args...)
	}
	return txerrors.Wrap(txerrors.KindSubmission, err, format, args...)
}

// FriendlyMessage turns a Verify error into the text shown to users.
func FriendlyMessage(err error) string {
	if err == nil {
		return ""
	}
	if txerrors.IsNotFound(err) {
		return NotIndexedMessage
	}
	return err.Error()
}

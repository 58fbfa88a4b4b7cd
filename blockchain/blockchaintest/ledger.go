// Package blockchaintest provides an in-memory ledger for tests.
package blockchaintest

import (
	"context"
	"fmt"
	"sync"

	"github.com/jlynch25/ticketbox/blockchain"
	"github.com/jlynch25/ticketbox/txerrors"
)

// Ledger implements Signer, Confirmer and Query from maps. Tests queue the
// digest and confirmed record each submitted call produces.
type Ledger struct {
	mu sync.Mutex

	Calls []blockchain.Call

	// SignErr, when set, is returned by the next SignAndExecute.
	SignErr error
	// ConfirmErr, when set, is returned by every WaitForTransaction.
	ConfirmErr error
	// BeforeConfirm runs inside WaitForTransaction before it returns.
	BeforeConfirm func(digest string)

	pending      []pendingTx
	transactions map[string]*blockchain.TransactionRecord
	objects      map[string]*blockchain.ObjectData
	queryErr     error
}

type pendingTx struct {
	digest string
	record *blockchain.TransactionRecord
}

// NewLedger function
func NewLedger() *Ledger {
	return &Ledger{
		transactions: make(map[string]*blockchain.TransactionRecord),
		objects:      make(map[string]*blockchain.ObjectData),
	}
}

// Expect queues the outcome of the next submitted call.
func (l *Ledger) Expect(digest string, record *blockchain.TransactionRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if record != nil && record.Digest == "" {
		record.Digest = digest
	}
	l.pending = append(l.pending, pendingTx{digest: digest, record: record})
}

// PutTransaction function
func (l *Ledger) PutTransaction(record *blockchain.TransactionRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.transactions[record.Digest] = record
}

// PutObject function
func (l *Ledger) PutObject(obj *blockchain.ObjectData) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.objects[obj.ObjectID] = obj
}

// DeleteObject function
func (l *Ledger) DeleteObject(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.objects, id)
}

// FailQueries makes every query return err.
func (l *Ledger) FailQueries(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.queryErr = err
}

// CallCount function
func (l *Ledger) CallCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Calls)
}

// SignAndExecute implements blockchain.Signer.
func (l *Ledger) SignAndExecute(ctx context.Context, call blockchain.Call) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Calls = append(l.Calls, call)
	if l.SignErr != nil {
		err := l.SignErr
		l.SignErr = nil
		return "", err
	}
	if len(l.pending) == 0 {
		return "", fmt.Errorf("blockchaintest: no transaction queued for %s", call.Target)
	}
	next := l.pending[0]
	l.pending = l.pending[1:]
	if next.record != nil {
		l.transactions[next.digest] = next.record
	}
	return next.digest, nil
}

// WaitForTransaction implements blockchain.Confirmer.
func (l *Ledger) WaitForTransaction(ctx context.Context, digest string) (*blockchain.TransactionRecord, error) {
	l.mu.Lock()
	hook := l.BeforeConfirm
	l.mu.Unlock()
	if hook != nil {
		hook(digest)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.ConfirmErr != nil {
		return nil, l.ConfirmErr
	}
	tx, ok := l.transactions[digest]
	if !ok {
		return nil, txerrors.NotFound("transaction", digest)
	}
	return tx, nil
}

// GetObject implements blockchain.Query.
func (l *Ledger) GetObject(ctx context.Context, id string) (*blockchain.ObjectResponse, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.queryErr != nil {
		return nil, l.queryErr
	}
	obj, ok := l.objects[id]
	if !ok {
		return &blockchain.ObjectResponse{Error: &blockchain.ObjectError{Code: "notExists", ObjectID: id}}, nil
	}
	return &blockchain.ObjectResponse{Data: obj}, nil
}

// GetTransaction implements blockchain.Query.
func (l *Ledger) GetTransaction(ctx context.Context, digest string) (*blockchain.TransactionRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.queryErr != nil {
		return nil, l.queryErr
	}
	tx, ok := l.transactions[digest]
	if !ok {
		return nil, txerrors.NotFound("transaction", digest)
	}
	return tx, nil
}

// Created builds a confirmed record whose effects list the given created
// objects, each given as id and type name.
func Created(digest string, objects ...[2]string) *blockchain.TransactionRecord {
	created := make([]blockchain.Record, 0, len(objects))
	for _, o := range objects {
		created = append(created, blockchain.Record{
			"owner":     map[string]interface{}{"AddressOwner": "0x1"},
			"reference": map[string]interface{}{"objectId": o[0], "version": "1"},
			"type":      o[1],
		})
	}
	return &blockchain.TransactionRecord{
		Digest: digest,
		Effects: &blockchain.Effects{
			Status:  &blockchain.ExecutionStatus{Status: "success"},
			Created: created,
		},
	}
}

// MoveObject builds object data with the given type and fields.
func MoveObject(id, typeName string, fields map[string]interface{}) *blockchain.ObjectData {
	return &blockchain.ObjectData{
		ObjectID: id,
		Version:  "7",
		Type:     typeName,
		Content: &blockchain.Content{
			DataType: "moveObject",
			Type:     typeName,
			Fields:   fields,
		},
	}
}

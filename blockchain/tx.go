package blockchain

import (
	"time"

	"github.com/jlynch25/ticketbox/txerrors"
)

// ExecStatus is the ledger's verdict on a transaction.
type ExecStatus string

// execution statuses
const (
	StatusSuccess ExecStatus = "success"
	StatusFailure ExecStatus = "failure"
	StatusUnknown ExecStatus = "unknown"
)

// ExecutionStatus struct
type ExecutionStatus struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// Effects struct
type Effects struct {
	Status  *ExecutionStatus `json:"status"`
	Created []Record         `json:"created"`
}

// ExecStatus function
func (e *Effects) ExecStatus() ExecStatus {
	if e == nil || e.Status == nil {
		return StatusUnknown
	}
	switch ExecStatus(e.Status.Status) {
	case StatusSuccess:
		return StatusSuccess
	case StatusFailure:
		return StatusFailure
	}
	return StatusUnknown
}

// AbortMessage returns the ledger's failure message, if any.
func (e *Effects) AbortMessage() string {
	if e == nil || e.Status == nil {
		return ""
	}
	return e.Status.Error
}

// TransactionRecord is a transaction as returned by the confirmation and
// query services. Every part of it is optional.
type TransactionRecord struct {
	Digest        string      `json:"digest"`
	Effects       *Effects    `json:"effects"`
	ObjectChanges []Record    `json:"objectChanges"`
	Checkpoint    interface{} `json:"checkpoint"`
	TimestampMs   interface{} `json:"timestampMs"`
}

// CreatedRecords returns the effects' created list.
func (tx *TransactionRecord) CreatedRecords() []Record {
	if tx == nil || tx.Effects == nil {
		return nil
	}
	return tx.Effects.Created
}

// ExecStatus function
func (tx *TransactionRecord) ExecStatus() ExecStatus {
	if tx == nil {
		return StatusUnknown
	}
	return tx.Effects.ExecStatus()
}

// CheckpointRef returns the checkpoint sequence number as text.
func (tx *TransactionRecord) CheckpointRef() (string, bool) {
	if tx == nil {
		return "", false
	}
	ref := Text(tx.Checkpoint)
	return ref, ref != ""
}

// Timestamp returns the commit time. A zero or missing value is absent.
func (tx *TransactionRecord) Timestamp() (time.Time, bool) {
	if tx == nil {
		return time.Time{}, false
	}
	ms, ok := Uint64(tx.TimestampMs)
	if !ok || ms == 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(ms)).UTC(), true
}

// ParseTransactionRecord decodes a raw transaction block reply.
func ParseTransactionRecord(data []byte) (*TransactionRecord, error) {
	var tx TransactionRecord
	if err := decodeJSON(data, &tx); err != nil {
		return nil, txerrors.Wrap(txerrors.KindDecode, err, "transaction record")
	}
	return &tx, nil
}

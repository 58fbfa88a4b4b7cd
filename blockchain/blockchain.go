package blockchain

import (
	"context"

	"github.com/mr-tron/base58"
)

const digestLength = 32

// Signer hands a call to the wallet and returns the transaction digest.
// A digest does not imply finality.
type Signer interface {
	SignAndExecute(ctx context.Context, call Call) (string, error)
}

// Confirmer blocks until the transaction is final and returns it with its
// effects. Timeouts are its own business.
type Confirmer interface {
	WaitForTransaction(ctx context.Context, digest string) (*TransactionRecord, error)
}

// Query reads objects and transactions. Missing items are reported with an
// error wrapping txerrors.ErrNotFound.
type Query interface {
	GetObject(ctx context.Context, id string) (*ObjectResponse, error)
	GetTransaction(ctx context.Context, digest string) (*TransactionRecord, error)
}

// IsDigest reports whether s decodes as a 32 byte base58 transaction digest.
func IsDigest(s string) bool {
	decoded, err := base58.Decode(s)
	if err != nil {
		return false
	}
	return len(decoded) == digestLength
}

// EncodeDigest function
func EncodeDigest(raw []byte) string {
	return base58.Encode(raw)
}

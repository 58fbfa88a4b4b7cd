package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"

	"github.com/jlynch25/ticketbox/blockchain"
	"github.com/jlynch25/ticketbox/txerrors"
)

// readPayload reads a captured node reply. Comments and trailing commas are
// allowed so captures can be annotated by hand.
func readPayload(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return jsonc.ToJSON(data), nil
}

// captureQuery answers ledger queries from a directory of captured replies,
// one file per digest or object id: <dir>/<key>.json or <dir>/<key>.jsonc.
type captureQuery struct {
	dir string
}

func (q captureQuery) read(key string) ([]byte, error) {
	for _, ext := range []string{".json", ".jsonc"} {
		data, err := readPayload(filepath.Join(q.dir, key+ext))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		return data, err
	}
	return nil, os.ErrNotExist
}

func (q captureQuery) GetTransaction(ctx context.Context, digest string) (*blockchain.TransactionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := q.read(digest)
	if errors.Is(err, os.ErrNotExist) {
		return nil, txerrors.NotFound("transaction", digest)
	}
	if err != nil {
		return nil, err
	}
	return blockchain.ParseTransactionRecord(data)
}

func (q captureQuery) GetObject(ctx context.Context, id string) (*blockchain.ObjectResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := q.read(id)
	if errors.Is(err, os.ErrNotExist) {
		return &blockchain.ObjectResponse{Error: &blockchain.ObjectError{Code: "notExists", ObjectID: id}}, nil
	}
	if err != nil {
		return nil, err
	}
	return blockchain.ParseObjectResponse(data)
}

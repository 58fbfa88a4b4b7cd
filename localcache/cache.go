package localcache

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/sirupsen/logrus"

	"github.com/jlynch25/ticketbox/txerrors"
)

const (
	lotKeyPrefix     = "ticket_box_"
	ticketsKeyPrefix = "tickets_"
)

// Snapshot is everything cached for one address.
type Snapshot struct {
	Address   string
	LotID     string
	TicketIDs []string
}

// Cache remembers, per account address, the active lot id and the ids of
// the tickets the account bought. Only identifiers are kept; object contents
// are always read from the ledger.
type Cache struct {
	store Store
	log   logrus.FieldLogger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New function
func New(store Store, logger logrus.FieldLogger) *Cache {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Cache{
		store: store,
		log:   logger.WithField("component", "localcache"),
		locks: map[string]*sync.Mutex{},
	}
}

func normalize(addr string) (string, error) {
	addr = strings.ToLower(strings.TrimSpace(addr))
	if addr == "" {
		return "", txerrors.Validation("account address is required")
	}
	return addr, nil
}

// lock serialises all mutations of one address namespace.
func (c *Cache) lock(addr string) func() {
	c.mu.Lock()
	l, ok := c.locks[addr]
	if !ok {
		l = &sync.Mutex{}
		c.locks[addr] = l
	}
	c.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// LotID returns the cached lot id, or "" when none is cached.
func (c *Cache) LotID(addr string) (string, error) {
	addr, err := normalize(addr)
	if err != nil {
		return "", err
	}
	return c.lotID(addr)
}

func (c *Cache) lotID(addr string) (string, error) {
	value, err := c.store.Get(lotKeyPrefix + addr)
	if errors.Is(err, ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(value), nil
}

// TicketIDs returns the cached ticket ids. A corrupt entry reads as empty.
func (c *Cache) TicketIDs(addr string) ([]string, error) {
	addr, err := normalize(addr)
	if err != nil {
		return nil, err
	}
	return c.ticketIDs(addr)
}

func (c *Cache) ticketIDs(addr string) ([]string, error) {
	value, err := c.store.Get(ticketsKeyPrefix + addr)
	if errors.Is(err, ErrKeyNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	ids, err := decodeIDs(value)
	if err != nil {
		c.log.WithField("address", addr).WithError(err).Warn("corrupt ticket list, treating as empty")
		return []string{}, nil
	}
	return ids, nil
}

// SetLotID function
func (c *Cache) SetLotID(addr, id string) error {
	addr, err := normalize(addr)
	if err != nil {
		return err
	}
	if id == "" {
		return txerrors.Validation("lot id is required")
	}
	defer c.lock(addr)()
	return c.store.Set(lotKeyPrefix+addr, []byte(id))
}

// AppendTicketID adds id to the address's ticket list unless it is already
// there.
func (c *Cache) AppendTicketID(addr, id string) error {
	addr, err := normalize(addr)
	if err != nil {
		return err
	}
	if id == "" {
		return txerrors.Validation("ticket id is required")
	}
	defer c.lock(addr)()

	return c.store.Update(ticketsKeyPrefix+addr, func(old []byte, found bool) ([]byte, error) {
		ids := []string{}
		if found {
			decoded, err := decodeIDs(old)
			if err != nil {
				c.log.WithField("address", addr).WithError(err).Warn("corrupt ticket list, treating as empty")
			} else {
				ids = decoded
			}
		}
		for _, existing := range ids {
			if existing == id {
				return old, nil
			}
		}
		return cbor.Marshal(append(ids, id))
	})
}

// ReplaceTicketIDs overwrites the ticket list. An empty list removes the
// entry.
func (c *Cache) ReplaceTicketIDs(addr string, ids []string) error {
	addr, err := normalize(addr)
	if err != nil {
		return err
	}
	defer c.lock(addr)()
	if len(ids) == 0 {
		return c.store.Delete(ticketsKeyPrefix + addr)
	}
	return c.writeIDs(addr, ids)
}

// ClearLotID removes only the lot entry.
func (c *Cache) ClearLotID(addr string) error {
	addr, err := normalize(addr)
	if err != nil {
		return err
	}
	defer c.lock(addr)()
	return c.store.Delete(lotKeyPrefix + addr)
}

// Clear deletes every entry of the address, leaving it as if it had never
// been used.
func (c *Cache) Clear(addr string) error {
	addr, err := normalize(addr)
	if err != nil {
		return err
	}
	defer c.lock(addr)()
	// attempt both deletes even when the first fails
	return errors.Join(
		c.store.Delete(lotKeyPrefix+addr),
		c.store.Delete(ticketsKeyPrefix+addr),
	)
}

// Snapshot reads both entries of addr under its lock.
func (c *Cache) Snapshot(addr string) (Snapshot, error) {
	addr, err := normalize(addr)
	if err != nil {
		return Snapshot{}, err
	}
	defer c.lock(addr)()
	lot, err := c.lotID(addr)
	if err != nil {
		return Snapshot{}, err
	}
	ids, err := c.ticketIDs(addr)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Address: addr, LotID: lot, TicketIDs: ids}, nil
}

func (c *Cache) writeIDs(addr string, ids []string) error {
	value, err := cbor.Marshal(ids)
	if err != nil {
		return err
	}
	return c.store.Set(ticketsKeyPrefix+addr, value)
}

// decodeIDs reads a CBOR array of strings. JSON arrays written by earlier
// versions are accepted too.
func decodeIDs(value []byte) ([]string, error) {
	var ids []string
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &ids); err == nil {
			return nonNil(ids), nil
		}
	}
	if err := cbor.Unmarshal(value, &ids); err != nil {
		return nil, err
	}
	return nonNil(ids), nil
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

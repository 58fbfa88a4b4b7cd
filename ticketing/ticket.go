package ticketing

import "fmt"

// UsedState is the ticket's used flag. A payload that does not carry the
// field decodes to UsedUnknown, never to UsedNo.
type UsedState int

// used states
const (
	UsedUnknown UsedState = iota
	UsedNo
	UsedYes
)

func (u UsedState) String() string {
	switch u {
	case UsedNo:
		return "unused"
	case UsedYes:
		return "used"
	}
	return "unknown"
}

// Known reports whether the ledger actually told us the value.
func (u UsedState) Known() bool {
	return u != UsedUnknown
}

// IssuanceLot is the on-chain ticket box: a capped pool of tickets for one
// event at a fixed price.
type IssuanceLot struct {
	ID      string
	EventID uint64
	Total   uint64
	Sold    uint64
	Price   uint64
}

// Remaining returns how many tickets can still be bought.
func (l IssuanceLot) Remaining() uint64 {
	if l.Sold >= l.Total {
		return 0
	}
	return l.Total - l.Sold
}

// Consistent reports whether sold <= total holds.
func (l IssuanceLot) Consistent() bool {
	return l.Sold <= l.Total
}

// Ticket struct
type Ticket struct {
	ID      string
	Owner   string
	EventID uint64
	Price   uint64
	Used    UsedState
	Version string
}

func (t Ticket) String() string {
	return fmt.Sprintf("ticket %s event=%d price=%d %s", t.ID, t.EventID, t.Price, t.Used)
}

package ticketing

import (
	"github.com/sirupsen/logrus"

	"github.com/jlynch25/ticketbox/blockchain"
)

// Decoder turns ledger objects into lots and tickets. It never fails loudly:
// anything it cannot read comes back as ok == false and a log line.
type Decoder struct {
	log logrus.FieldLogger
}

// NewDecoder function
func NewDecoder(logger logrus.FieldLogger) *Decoder {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Decoder{log: logger.WithField("component", "decoder")}
}

var std = NewDecoder(nil)

// DecodeIssuanceLot decodes with the standard logger.
func DecodeIssuanceLot(raw *blockchain.ObjectData) (*IssuanceLot, bool) {
	return std.IssuanceLot(raw)
}

// DecodeTicket decodes with the standard logger.
func DecodeTicket(raw *blockchain.ObjectData, id string) (*Ticket, bool) {
	return std.Ticket(raw, id)
}

// fieldMap returns the move object's fields, or false for anything that is
// not a move object with a field map.
func fieldMap(raw *blockchain.ObjectData) (map[string]interface{}, bool) {
	if raw == nil || raw.Content.Kind() != blockchain.ContentMoveObject {
		return nil, false
	}
	return raw.Content.FieldMap()
}

// IssuanceLot function
func (d *Decoder) IssuanceLot(raw *blockchain.ObjectData) (lot *IssuanceLot, ok bool) {
	defer d.recover("issuance lot", &ok)

	fields, found := fieldMap(raw)
	if !found {
		return nil, false
	}
	r := reader{fields: fields, log: d.log.WithField("object", raw.ObjectID)}
	return &IssuanceLot{
		ID:      raw.ObjectID,
		EventID: r.uint("event_id", "eventId"),
		Total:   r.uint("total"),
		Sold:    r.uint("sold"),
		Price:   r.uint("price"),
	}, true
}

// Ticket decodes a ticket object. id names the ticket when the payload
// does not carry its own object id.
func (d *Decoder) Ticket(raw *blockchain.ObjectData, id string) (ticket *Ticket, ok bool) {
	defer d.recover("ticket", &ok)

	fields, found := fieldMap(raw)
	if !found {
		return nil, false
	}
	if id == "" {
		id = raw.ObjectID
	}
	r := reader{fields: fields, log: d.log.WithField("object", id)}
	return &Ticket{
		ID:      id,
		Owner:   blockchain.Text(fields["owner"]),
		EventID: r.uint("event_id", "eventId"),
		Price:   r.uint("price"),
		Used:    r.used("used"),
		Version: blockchain.Text(raw.Version),
	}, true
}

func (d *Decoder) recover(what string, ok *bool) {
	if r := recover(); r != nil {
		d.log.WithField("panic", r).Errorf("failed to decode %s", what)
		*ok = false
	}
}

type reader struct {
	fields map[string]interface{}
	log    logrus.FieldLogger
}

// uint reads the first present key. Absent or unreadable values are 0,
// which callers must not take as ledger truth.
func (r reader) uint(keys ...string) uint64 {
	for _, key := range keys {
		v, present := r.fields[key]
		if !present || v == nil {
			continue
		}
		n, ok := blockchain.Uint64(v)
		if !ok {
			r.log.WithField("field", key).WithField("value", v).Warn("unreadable number, using 0")
			return 0
		}
		return n
	}
	return 0
}

func (r reader) used(key string) UsedState {
	v, present := blockchain.Truthy(r.fields[key])
	switch {
	case !present:
		return UsedUnknown
	case v:
		return UsedYes
	}
	return UsedNo
}

package blockchain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pkg = "0xdaed"

func effectsRecord(id, typeName string) Record {
	return Record{
		"owner":     map[string]interface{}{"AddressOwner": "0x1"},
		"reference": map[string]interface{}{"objectId": id, "version": "3"},
		"type":      typeName,
	}
}

func TestFindCreatedObjectMatchAnyPosition(t *testing.T) {
	records := []Record{
		effectsRecord("0xcoin", "0x2::coin::Coin<0x2::iota::IOTA>"),
		effectsRecord("0xbox", pkg+"::ticket::TicketBox"),
		effectsRecord("0xticket", pkg+"::ticket::Ticket"),
	}

	m := FindCreatedObject(records, TicketTypeSuffix)
	assert.Equal(t, Match{ID: "0xticket", Found: true}, m)

	m = FindCreatedObject(records, LotTypeSuffix)
	assert.Equal(t, Match{ID: "0xbox", Found: true}, m)
}

func TestFindCreatedObjectFirstMatchWins(t *testing.T) {
	records := []Record{
		effectsRecord("0xa", pkg+"::ticket::Ticket"),
		effectsRecord("0xb", pkg+"::ticket::Ticket"),
	}
	assert.Equal(t, "0xa", FindCreatedObject(records, TicketTypeSuffix).ID)
}

func TestFindCreatedObjectFallback(t *testing.T) {
	records := []Record{
		effectsRecord("0xfirst", pkg+"::ticket_v2::Pass"),
		effectsRecord("0xsecond", pkg+"::other::Thing"),
	}
	m := FindCreatedObject(records, TicketTypeSuffix)
	assert.Equal(t, Match{ID: "0xfirst", Found: true, Fallback: true}, m)

	assert.False(t, FindMatchedObject(records, TicketTypeSuffix).Found)
}

func TestFindCreatedObjectEmpty(t *testing.T) {
	assert.Equal(t, Match{}, FindCreatedObject(nil, TicketTypeSuffix))
	assert.Equal(t, Match{}, FindCreatedObject([]Record{}, LotTypeSuffix))
}

func TestTicketSuffixDoesNotMatchTicketBox(t *testing.T) {
	records := []Record{effectsRecord("0xbox", pkg+"::ticket::TicketBox")}
	m := FindCreatedObject(records, TicketTypeSuffix)
	assert.True(t, m.Fallback)
}

func TestTypeNamePrecedence(t *testing.T) {
	r := Record{
		"owner":     map[string]interface{}{"structType": pkg + "::ticket::Ticket", "type": "other"},
		"reference": map[string]interface{}{"object_id": "0xsnake"},
		"type":      "ignored",
	}
	assert.Equal(t, pkg+"::ticket::Ticket", TypeName(r))
	assert.Equal(t, "0xsnake", ObjectID(r))

	nested := Record{
		"reference": map[string]interface{}{
			"objectId": "0xnested",
			"owner":    map[string]interface{}{"structType": pkg + "::ticket::TicketBox"},
		},
	}
	assert.Equal(t, pkg+"::ticket::TicketBox", TypeName(nested))
	assert.Equal(t, ShapeEffectsCreated, nested.Shape())
}

func TestObjectChangeShape(t *testing.T) {
	change := Record{
		"type":       "created",
		"objectType": pkg + "::ticket::Ticket",
		"objectId":   "0xchange",
		"sender":     "0x1",
	}
	assert.Equal(t, ShapeObjectChange, change.Shape())
	assert.Equal(t, "0xchange", FindMatchedObject([]Record{change}, TicketTypeSuffix).ID)
	assert.Equal(t, ShapeUnknown, Record{"foo": 1}.Shape())
}

func TestOwnerAsString(t *testing.T) {
	r := Record{"owner": "Immutable", "reference": map[string]interface{}{"objectId": "0x9"}}
	assert.Equal(t, "", TypeName(r))
	assert.Equal(t, "0x9", ObjectID(r))
}

func TestHasTypeSuffixGenerics(t *testing.T) {
	assert.True(t, HasTypeSuffix(pkg+"::ticket::Ticket<0x2::iota::IOTA>", TicketTypeSuffix))
	assert.False(t, HasTypeSuffix(pkg+"::ticket::Ticket", ""))
}

func TestMatchedRecordWithoutIDIsSkipped(t *testing.T) {
	records := []Record{
		{"type": pkg + "::ticket::Ticket"},
		effectsRecord("0xreal", pkg+"::ticket::Ticket"),
	}
	m := FindCreatedObject(records, TicketTypeSuffix)
	require.True(t, m.Found)
	assert.Equal(t, "0xreal", m.ID)
	assert.False(t, m.Fallback)
}

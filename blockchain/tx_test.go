package blockchain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlynch25/ticketbox/txerrors"
)

const txJSON = `{
  "digest": "7Nq3y6ZC1TkyXmV5Ue9pQn8yY1bD7A4d4o3rfcmwM2Ry",
  "checkpoint": "1204",
  "timestampMs": "1700000000123",
  "effects": {
    "status": {"status": "success"},
    "created": [
      {"owner": {"AddressOwner": "0x1"}, "reference": {"objectId": "0xt1", "version": 5}}
    ]
  },
  "objectChanges": [
    {"type": "mutated", "objectType": "0x2::coin::Coin<0x2::iota::IOTA>", "objectId": "0xgas"},
    {"type": "created", "objectType": "0xdaed::ticket::Ticket", "objectId": "0xt1"}
  ]
}`

func TestParseTransactionRecord(t *testing.T) {
	tx, err := ParseTransactionRecord([]byte(txJSON))
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, tx.ExecStatus())
	ref, ok := tx.CheckpointRef()
	assert.True(t, ok)
	assert.Equal(t, "1204", ref)

	ts, ok := tx.Timestamp()
	require.True(t, ok)
	assert.Equal(t, time.UnixMilli(1700000000123).UTC(), ts)

	require.Len(t, tx.CreatedRecords(), 1)
	assert.Equal(t, "0xt1", FindMatchedObject(tx.ObjectChanges, TicketTypeSuffix).ID)
}

func TestTransactionRecordAbsentParts(t *testing.T) {
	tx, err := ParseTransactionRecord([]byte(`{"digest":"abc"}`))
	require.NoError(t, err)
	assert.Equal(t, StatusUnknown, tx.ExecStatus())
	_, ok := tx.CheckpointRef()
	assert.False(t, ok)
	_, ok = tx.Timestamp()
	assert.False(t, ok)
	assert.Nil(t, tx.CreatedRecords())

	var nilTx *TransactionRecord
	assert.Equal(t, StatusUnknown, nilTx.ExecStatus())
}

func TestParseTransactionRecordMalformed(t *testing.T) {
	_, err := ParseTransactionRecord([]byte(`[1,2`))
	require.Error(t, err)
	assert.Equal(t, txerrors.KindDecode, txerrors.KindOf(err))
}

func TestFailureStatus(t *testing.T) {
	e := &Effects{Status: &ExecutionStatus{Status: "failure", Error: "MoveAbort(1)"}}
	assert.Equal(t, StatusFailure, e.ExecStatus())
	assert.Equal(t, "MoveAbort(1)", e.AbortMessage())
	assert.Equal(t, StatusUnknown, (&Effects{Status: &ExecutionStatus{Status: "weird"}}).ExecStatus())
}

func TestObjectResponse(t *testing.T) {
	resp, err := ParseObjectResponse([]byte(`{"error":{"code":"notExists","object_id":"0x5"}}`))
	require.NoError(t, err)
	_, err = resp.Object("0x5")
	assert.True(t, txerrors.IsNotFound(err))

	resp, err = ParseObjectResponse([]byte(`{"data":{"objectId":"0x6","content":{"dataType":"moveObject","fields":{"total":"3","sold":3}}}}`))
	require.NoError(t, err)
	obj, err := resp.Object("0x6")
	require.NoError(t, err)
	assert.Equal(t, ContentMoveObject, obj.Content.Kind())
	fields, ok := obj.Content.FieldMap()
	require.True(t, ok)
	// u64 arrives either as a string or as a JSON number
	assert.Equal(t, "3", fields["total"])
	assert.Equal(t, json.Number("3"), fields["sold"])
	for _, key := range []string{"total", "sold"} {
		n, ok := Uint64(fields[key])
		require.True(t, ok, key)
		assert.Equal(t, uint64(3), n, key)
	}

	// bare object without the envelope
	resp, err = ParseObjectResponse([]byte(`{"objectId":"0x7","content":{"dataType":"package"}}`))
	require.NoError(t, err)
	obj, err = resp.Object("0x7")
	require.NoError(t, err)
	assert.Equal(t, ContentPackage, obj.Content.Kind())

	resp = &ObjectResponse{Error: &ObjectError{Code: "displayError"}}
	_, err = resp.Object("0x8")
	assert.Equal(t, txerrors.KindSubmission, txerrors.KindOf(err))
}

func TestIsDigest(t *testing.T) {
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = byte(i + 1)
	}
	digest := EncodeDigest(raw)
	assert.True(t, IsDigest(digest))
	assert.False(t, IsDigest("abc123"))
	assert.False(t, IsDigest("0OIl"))
}

func TestCallEncoding(t *testing.T) {
	call := CreateBoxCall("0xpkg", 1, 100, 10)
	assert.Equal(t, "0xpkg::ticket::create_box", call.Target)
	require.Len(t, call.Args, 3)
	assert.Equal(t, []byte{100, 0, 0, 0, 0, 0, 0, 0}, call.Args[1].Pure())

	buy := BuyTicketCall("0xpkg", "0xbox")
	assert.Equal(t, "0xpkg::ticket::buy_ticket", buy.Target)
	assert.Equal(t, Object("0xbox"), buy.Args[0])
	assert.Nil(t, buy.Args[0].Pure())
	assert.Equal(t, "object(0xbox)", buy.Args[0].String())

	use := UseTicketCall("0xpkg", "0xt")
	assert.Equal(t, "0xpkg::ticket::use_ticket", use.Target)
}

func TestCoercion(t *testing.T) {
	for _, tc := range []struct {
		in   interface{}
		want uint64
		ok   bool
	}{
		{json.Number("42"), 42, true},
		{"18446744073709551615", 18446744073709551615, true},
		{float64(7), 7, true},
		{" 9 ", 9, true},
		{"1e3", 1000, true},
		{"abc", 0, false},
		{float64(-1), 0, false},
		{float64(1.5), 0, false},
		{nil, 0, false},
		{true, 0, false},
	} {
		got, ok := Uint64(tc.in)
		assert.Equal(t, tc.want, got, "%v", tc.in)
		assert.Equal(t, tc.ok, ok, "%v", tc.in)
	}

	v, present := Truthy(nil)
	assert.False(t, v)
	assert.False(t, present)
	v, present = Truthy("false")
	assert.False(t, v)
	assert.True(t, present)
	v, _ = Truthy(json.Number("1"))
	assert.True(t, v)
	v, _ = Truthy("yes")
	assert.True(t, v)
}

package blockchain

import (
	"encoding/binary"
	"fmt"
)

// Module is the ticket contract's module name.
const Module = "ticket"

// Entry points of the ticket module.
const (
	FnCreateBox = "create_box"
	FnBuyTicket = "buy_ticket"
	FnUseTicket = "use_ticket"
)

// ArgKind tells pure and object arguments apart.
type ArgKind int

// argument kinds
const (
	ArgU64 ArgKind = iota
	ArgObject
)

// Arg is one call argument: a pure u64 or an object handle.
type Arg struct {
	Kind   ArgKind
	U64    uint64
	Object string
}

// U64 function
func U64(v uint64) Arg {
	return Arg{Kind: ArgU64, U64: v}
}

// Object function
func Object(id string) Arg {
	return Arg{Kind: ArgObject, Object: id}
}

// Pure returns the BCS bytes of a pure argument (8 bytes, little endian).
// Object arguments are passed by handle and have no pure encoding.
func (a Arg) Pure() []byte {
	if a.Kind != ArgU64 {
		return nil
	}
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, a.U64)
	return buf
}

func (a Arg) String() string {
	if a.Kind == ArgObject {
		return "object(" + a.Object + ")"
	}
	return fmt.Sprintf("u64(%d)", a.U64)
}

// Call is a single move call ready to hand to a Signer.
type Call struct {
	Target string
	Args   []Arg
}

// NewCall function
func NewCall(packageID, function string, args ...Arg) Call {
	return Call{
		Target: fmt.Sprintf("%s::%s::%s", packageID, Module, function),
		Args:   args,
	}
}

// CreateBoxCall function
func CreateBoxCall(packageID string, eventID, total, price uint64) Call {
	return NewCall(packageID, FnCreateBox, U64(eventID), U64(total), U64(price))
}

// BuyTicketCall function
func BuyTicketCall(packageID, lotID string) Call {
	return NewCall(packageID, FnBuyTicket, Object(lotID))
}

// UseTicketCall function
func UseTicketCall(packageID, ticketID string) Call {
	return NewCall(packageID, FnUseTicket, Object(ticketID))
}

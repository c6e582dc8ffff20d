// Package reservation defines the contract between the charging-session
// state machine and the account/balance ledger that decides on quota.
//
// A Client never blocks on the decision. Each accepted call ends with exactly
// one Resumer.ResumeOnReservationOutcome carrying the Ref it was issued with.
// Units granted by an outcome the Resumer refuses are not kept held.
package reservation

import (
	"context"
	"fmt"
)

type ErrorKind int

const (
	InvalidUser ErrorKind = iota + 1
	BadRoamingCountry
	NoServiceForUser
	NotEnoughBalance
	InvalidContent
	MalformedRequest
	AccountingConnectionError
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidUser:
		return "InvalidUser"
	case BadRoamingCountry:
		return "BadRoamingCountry"
	case NoServiceForUser:
		return "NoServiceForUser"
	case NotEnoughBalance:
		return "NotEnoughBalance"
	case InvalidContent:
		return "InvalidContent"
	case MalformedRequest:
		return "MalformedRequest"
	case AccountingConnectionError:
		return "AccountingConnectionError"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Ref ties an outcome to the line item it was dispatched for.
type Ref struct {
	SessionID     string
	RequestNumber uint32
	Index         int
	RatingGroup   uint32
}

func (r Ref) String() string {
	return fmt.Sprintf("%s#%d[%d]", r.SessionID, r.RequestNumber, r.Index)
}

type Outcome struct {
	Ref          Ref
	Success      bool
	GrantedUnits uint64    // only meaningful when Success
	ErrorKind    ErrorKind // only meaningful when !Success
}

func Granted(ref Ref, units uint64) Outcome {
	return Outcome{Ref: ref, Success: true, GrantedUnits: units}
}

func Denied(ref Ref, kind ErrorKind) Outcome {
	return Outcome{Ref: ref, ErrorKind: kind}
}

// Account is the diagnostic view returned by Dump.
type Account struct {
	UserID   string `json:"userId" bson:"userId"`
	Balance  uint64 `json:"balance" bson:"balance"`
	Reserved uint64 `json:"reserved" bson:"reserved"`
}

type Client interface {
	InitialRequest(ctx context.Context, ref Ref, endUserID string, requestedUnits uint64) error
	UpdateRequest(ctx context.Context, ref Ref, endUserID string, requestedUnits, usedUnits uint64) error
	TerminateRequest(ctx context.Context, ref Ref, endUserID string, requestedUnits, usedUnits uint64) error

	// Release drops every unit still held for sessionID. It is synchronous and
	// delivers no outcome.
	Release(ctx context.Context, sessionID string) error

	// Dump is for observability only; filter uses SQL LIKE syntax ("%" matches all).
	Dump(ctx context.Context, filter string) ([]Account, error)
}

type Resumer interface {
	ResumeOnReservationOutcome(sessionID string, outcome Outcome) error
}

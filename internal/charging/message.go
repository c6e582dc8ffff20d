package charging

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrMissingSubscriptionID    = errors.New("Subscription-Id missing")
	ErrUnreadableSubscriptionID = errors.New("Subscription-Id present but its data could not be read")
)

// RequestKind values match the CC-Request-Type enumeration.
type RequestKind uint32

const (
	InitialRequest     RequestKind = 1
	UpdateRequest      RequestKind = 2
	TerminationRequest RequestKind = 3
	EventRequest       RequestKind = 4
)

func (k RequestKind) String() string {
	switch k {
	case InitialRequest:
		return "INITIAL"
	case UpdateRequest:
		return "UPDATE"
	case TerminationRequest:
		return "TERMINATION"
	case EventRequest:
		return "EVENT"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint32(k))
	}
}

type SubscriptionIDType int32

const (
	EndUserE164 SubscriptionIDType = iota
	EndUserIMSI
	EndUserSIPURI
	EndUserNAI
	EndUserPrivate
)

type SubscriptionID struct {
	Type SubscriptionIDType
	Data string
}

// LineItem is one Multiple-Services-Credit-Control entry of a request.
type LineItem struct {
	RatingGroup        uint32
	ServiceIdentifiers []uint32
	RequestedUnits     uint64
	UsedUnits          []uint64
}

func (l LineItem) TotalUsedUnits() uint64 {
	var total uint64
	for _, u := range l.UsedUnits {
		total += u
	}
	return total
}

type Request struct {
	SessionID     string
	Kind          RequestKind
	RequestNumber uint32
	// only the first entry is authoritative
	SubscriptionIDs []SubscriptionID
	// nil when the AVP is absent
	ServiceContextID *string
	LineItems        []LineItem
}

func (r *Request) EndUserID() (string, error) {
	if len(r.SubscriptionIDs) == 0 {
		return "", ErrMissingSubscriptionID
	}
	if r.SubscriptionIDs[0].Data == "" {
		return "", ErrUnreadableSubscriptionID
	}
	return r.SubscriptionIDs[0].Data, nil
}

type AnswerLineItem struct {
	RatingGroup        uint32
	ServiceIdentifiers []uint32
	ResultCode         uint32
	// set only for granted items
	GrantedUnits *uint64
	ValidityTime *uint32
}

type Answer struct {
	SessionID     string
	ResultCode    uint32
	Kind          RequestKind
	RequestNumber uint32
	LineItems     []AnswerLineItem
}

package diameter

import (
	"github.com/fiorix/go-diameter/v4/diam"
	"github.com/fiorix/go-diameter/v4/diam/avp"
	"github.com/fiorix/go-diameter/v4/diam/datatype"
	"github.com/fiorix/go-diameter/v4/diam/dict"
	"github.com/pkg/errors"

	"github.com/free5gc/ocs/internal/charging"
)

const (
	CommandCodeCreditControl   = 272
	ApplicationIDCreditControl = 4
)

var (
	ErrMissingSessionID   = errors.New("Session-Id missing")
	ErrMissingRequestType = errors.New("CC-Request-Type missing")
)

// Origin identifies this node in every answer.
type Origin struct {
	Host  string
	Realm string
}

func avpString(d datatype.Type) (string, bool) {
	switch v := d.(type) {
	case datatype.UTF8String:
		return string(v), true
	case datatype.OctetString:
		return string(v), true
	case datatype.DiameterIdentity:
		return string(v), true
	default:
		return "", false
	}
}

func avpUint(d datatype.Type) (uint64, bool) {
	switch v := d.(type) {
	case datatype.Unsigned32:
		return uint64(v), true
	case datatype.Unsigned64:
		return uint64(v), true
	case datatype.Enumerated:
		return uint64(v), true
	case datatype.Integer32:
		return uint64(v), true
	case datatype.Integer64:
		return uint64(v), true
	default:
		return 0, false
	}
}

func grouped(a *diam.AVP) []*diam.AVP {
	if g, ok := a.Data.(*diam.GroupedAVP); ok {
		return g.AVP
	}
	return nil
}

// unitOctets reads CC-Total-Octets out of a *-Service-Unit group.
func unitOctets(a *diam.AVP) uint64 {
	for _, child := range grouped(a) {
		if child.Code == avp.CCTotalOctets {
			if v, ok := avpUint(child.Data); ok {
				return v
			}
		}
	}
	return 0
}

func decodeSubscriptionID(a *diam.AVP) charging.SubscriptionID {
	var id charging.SubscriptionID
	for _, child := range grouped(a) {
		switch child.Code {
		case avp.SubscriptionIDType:
			if v, ok := avpUint(child.Data); ok {
				id.Type = charging.SubscriptionIDType(v)
			}
		case avp.SubscriptionIDData:
			if v, ok := avpString(child.Data); ok {
				id.Data = v
			}
		}
	}
	return id
}

func decodeLineItem(a *diam.AVP) charging.LineItem {
	var item charging.LineItem
	for _, child := range grouped(a) {
		switch child.Code {
		case avp.RatingGroup:
			if v, ok := avpUint(child.Data); ok {
				item.RatingGroup = uint32(v)
			}
		case avp.ServiceIdentifier:
			if v, ok := avpUint(child.Data); ok {
				item.ServiceIdentifiers = append(item.ServiceIdentifiers, uint32(v))
			}
		case avp.RequestedServiceUnit:
			item.RequestedUnits = unitOctets(child)
		case avp.UsedServiceUnit:
			item.UsedUnits = append(item.UsedUnits, unitOctets(child))
		}
	}
	return item
}

// DecodeCCR reads the credit-control fields out of a CCR. Only the top-level
// AVPs are inspected, nested ones are read through their group.
func DecodeCCR(m *diam.Message) (*charging.Request, error) {
	req := &charging.Request{}
	var haveSessionID, haveRequestType bool

	for _, a := range m.AVP {
		switch a.Code {
		case avp.SessionID:
			if v, ok := avpString(a.Data); ok {
				req.SessionID = v
				haveSessionID = true
			}
		case avp.CCRequestType:
			if v, ok := avpUint(a.Data); ok {
				req.Kind = charging.RequestKind(v)
				haveRequestType = true
			}
		case avp.CCRequestNumber:
			if v, ok := avpUint(a.Data); ok {
				req.RequestNumber = uint32(v)
			}
		case avp.SubscriptionID:
			req.SubscriptionIDs = append(req.SubscriptionIDs, decodeSubscriptionID(a))
		case avp.ServiceContextID:
			if v, ok := avpString(a.Data); ok {
				req.ServiceContextID = &v
			}
		case avp.MultipleServicesCreditControl:
			req.LineItems = append(req.LineItems, decodeLineItem(a))
		}
	}

	if !haveSessionID {
		return req, ErrMissingSessionID
	}
	if !haveRequestType {
		return req, errors.Wrapf(ErrMissingRequestType, "session %s", req.SessionID)
	}
	return req, nil
}

func isProtocolError(resultCode uint32) bool {
	return resultCode >= 3000 && resultCode < 4000
}

// EncodeCCA builds the CCA answering req.
func EncodeCCA(req *diam.Message, a *charging.Answer, origin Origin) *diam.Message {
	dictionary := req.Dictionary()
	if dictionary == nil {
		dictionary = dict.Default
	}
	flags := req.Header.CommandFlags &^ diam.RequestFlag
	if isProtocolError(a.ResultCode) {
		flags |= diam.ErrorFlag
	}

	ans := diam.NewMessage(req.Header.CommandCode, flags, req.Header.ApplicationID,
		req.Header.HopByHopID, req.Header.EndToEndID, dictionary)
	if a.SessionID != "" {
		ans.NewAVP(avp.SessionID, avp.Mbit, 0, datatype.UTF8String(a.SessionID))
	}
	ans.NewAVP(avp.ResultCode, avp.Mbit, 0, datatype.Unsigned32(a.ResultCode))
	ans.NewAVP(avp.OriginHost, avp.Mbit, 0, datatype.DiameterIdentity(origin.Host))
	ans.NewAVP(avp.OriginRealm, avp.Mbit, 0, datatype.DiameterIdentity(origin.Realm))
	ans.NewAVP(avp.AuthApplicationID, avp.Mbit, 0, datatype.Unsigned32(ApplicationIDCreditControl))
	if a.Kind != 0 {
		ans.NewAVP(avp.CCRequestType, avp.Mbit, 0, datatype.Enumerated(a.Kind))
		ans.NewAVP(avp.CCRequestNumber, avp.Mbit, 0, datatype.Unsigned32(a.RequestNumber))
	}

	for _, item := range a.LineItems {
		children := []*diam.AVP{
			diam.NewAVP(avp.RatingGroup, avp.Mbit, 0, datatype.Unsigned32(item.RatingGroup)),
		}
		for _, serviceID := range item.ServiceIdentifiers {
			children = append(children,
				diam.NewAVP(avp.ServiceIdentifier, avp.Mbit, 0, datatype.Unsigned32(serviceID)))
		}
		if item.GrantedUnits != nil {
			children = append(children, diam.NewAVP(avp.GrantedServiceUnit, avp.Mbit, 0, &diam.GroupedAVP{
				AVP: []*diam.AVP{
					diam.NewAVP(avp.CCTotalOctets, avp.Mbit, 0, datatype.Unsigned64(*item.GrantedUnits)),
				},
			}))
		}
		children = append(children, diam.NewAVP(avp.ResultCode, avp.Mbit, 0, datatype.Unsigned32(item.ResultCode)))
		if item.ValidityTime != nil {
			children = append(children,
				diam.NewAVP(avp.ValidityTime, avp.Mbit, 0, datatype.Unsigned32(*item.ValidityTime)))
		}
		ans.NewAVP(avp.MultipleServicesCreditControl, avp.Mbit, 0, &diam.GroupedAVP{AVP: children})
	}
	return ans
}

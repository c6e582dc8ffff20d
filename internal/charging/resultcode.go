package charging

import "github.com/free5gc/ocs/internal/reservation"

// Diameter base (RFC 6733) and credit-control (RFC 4006) result codes.
const (
	DiameterSuccess              uint32 = 2001
	DiameterUnableToDeliver      uint32 = 3002
	DiameterEndUserServiceDenied uint32 = 4010
	DiameterCreditLimitReached   uint32 = 4012
	DiameterInvalidAVPValue      uint32 = 5004
	DiameterMissingAVP           uint32 = 5005
	DiameterUnableToComply       uint32 = 5012
	DiameterUserUnknown          uint32 = 5030
)

// ResultCodeFor maps a ledger error kind to the protocol result code.
// Unknown kinds fall back to DiameterUnableToDeliver.
func ResultCodeFor(kind reservation.ErrorKind) uint32 {
	switch kind {
	case reservation.InvalidUser:
		return DiameterUserUnknown
	case reservation.BadRoamingCountry, reservation.NoServiceForUser:
		return DiameterEndUserServiceDenied
	case reservation.NotEnoughBalance:
		return DiameterCreditLimitReached
	case reservation.InvalidContent, reservation.MalformedRequest, reservation.AccountingConnectionError:
		return DiameterUnableToDeliver
	default:
		return DiameterUnableToDeliver
	}
}

// OverallResultCode is success when every outcome succeeded, otherwise the
// code of the first failure in line-item order.
func OverallResultCode(outcomes []*reservation.Outcome) uint32 {
	for _, o := range outcomes {
		if o != nil && !o.Success {
			return ResultCodeFor(o.ErrorKind)
		}
	}
	return DiameterSuccess
}

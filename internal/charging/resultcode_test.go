package charging_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/free5gc/ocs/internal/charging"
	"github.com/free5gc/ocs/internal/reservation"
)

func TestResultCodeFor(t *testing.T) {
	testCases := []struct {
		kind reservation.ErrorKind
		code uint32
	}{
		{reservation.InvalidUser, charging.DiameterUserUnknown},
		{reservation.BadRoamingCountry, charging.DiameterEndUserServiceDenied},
		{reservation.NoServiceForUser, charging.DiameterEndUserServiceDenied},
		{reservation.NotEnoughBalance, charging.DiameterCreditLimitReached},
		{reservation.InvalidContent, charging.DiameterUnableToDeliver},
		{reservation.MalformedRequest, charging.DiameterUnableToDeliver},
		{reservation.AccountingConnectionError, charging.DiameterUnableToDeliver},
		{reservation.ErrorKind(0), charging.DiameterUnableToDeliver},
		{reservation.ErrorKind(99), charging.DiameterUnableToDeliver},
	}

	for _, tc := range testCases {
		t.Run(tc.kind.String(), func(t *testing.T) {
			require.Equal(t, tc.code, charging.ResultCodeFor(tc.kind))
		})
	}
}

func TestOverallResultCode(t *testing.T) {
	ok := reservation.Granted(reservation.Ref{Index: 0}, 10)
	noBalance := reservation.Denied(reservation.Ref{Index: 1}, reservation.NotEnoughBalance)
	unknown := reservation.Denied(reservation.Ref{Index: 2}, reservation.InvalidUser)

	require.Equal(t, charging.DiameterSuccess, charging.OverallResultCode(nil))
	require.Equal(t, charging.DiameterSuccess, charging.OverallResultCode([]*reservation.Outcome{&ok}))
	require.Equal(t, charging.DiameterCreditLimitReached,
		charging.OverallResultCode([]*reservation.Outcome{&ok, &noBalance, &unknown}))
	require.Equal(t, charging.DiameterUserUnknown,
		charging.OverallResultCode([]*reservation.Outcome{&unknown, &noBalance}))
}

package abmf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/free5gc/ocs/internal/reservation"
)

func TestLikePattern(t *testing.T) {
	testCases := []struct {
		filter string
		id     string
		match  bool
	}{
		{"%", "00101", true},
		{"%", "", true},
		{"001%", "00101", true},
		{"001%", "10101", false},
		{"0010_", "00101", true},
		{"0010_", "001011", false},
		{"user.1", "user.1", true},
		{"user.1", "userx1", false},
	}

	for _, tc := range testCases {
		t.Run(tc.filter+"/"+tc.id, func(t *testing.T) {
			ds := NewMemoryDataSource()
			require.NoError(t, ds.UpdateUser(context.Background(), tc.id, 1, 0))

			accounts, err := ds.ListUsers(context.Background(), tc.filter)
			require.NoError(t, err)
			if tc.match {
				require.Len(t, accounts, 1)
			} else {
				require.Empty(t, accounts)
			}
		})
	}
}

func TestMemoryDataSource(t *testing.T) {
	ctx := context.Background()
	ds := NewMemoryDataSource()
	require.NoError(t, ds.Init(ctx))

	_, err := ds.GetUser(ctx, "12345")
	require.ErrorIs(t, err, ErrUserNotFound)

	require.NoError(t, ds.UpdateUser(ctx, "12345", 1000, 10))
	require.NoError(t, ds.UpdateUser(ctx, "00001", 5, 0))

	account, err := ds.GetUser(ctx, "12345")
	require.NoError(t, err)
	require.Equal(t, reservation.Account{UserID: "12345", Balance: 1000, Reserved: 10}, account)

	accounts, err := ds.ListUsers(ctx, "%")
	require.NoError(t, err)
	require.Equal(t, []reservation.Account{
		{UserID: "00001", Balance: 5},
		{UserID: "12345", Balance: 1000, Reserved: 10},
	}, accounts)
}

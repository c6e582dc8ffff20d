package charging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/free5gc/ocs/internal/reservation"
)

func TestSessionStore(t *testing.T) {
	store := NewSessionStore()
	req := &Request{SessionID: "S1", Kind: InitialRequest, LineItems: []LineItem{{RatingGroup: 10}}}

	first := newChargingSession(req, "12345", nil, time.Second)
	second := newChargingSession(req, "12345", nil, time.Second)

	require.True(t, store.Add(first))
	require.False(t, store.Add(second))
	require.False(t, store.Remove(second))

	got, ok := store.Get("S1")
	require.True(t, ok)
	require.Same(t, first, got)

	require.True(t, store.Remove(first))
	require.Equal(t, 0, store.Len())
}

func TestSessionStoreSnapshotSorted(t *testing.T) {
	store := NewSessionStore()
	for _, id := range []string{"S3", "S1", "S2"} {
		req := &Request{SessionID: id, Kind: UpdateRequest, RequestNumber: 4}
		require.True(t, store.Add(newChargingSession(req, "u-"+id, nil, time.Second)))
	}

	infos := store.Snapshot()
	require.Len(t, infos, 3)
	require.Equal(t, "S1", infos[0].SessionID)
	require.Equal(t, "S2", infos[1].SessionID)
	require.Equal(t, "S3", infos[2].SessionID)
	require.Equal(t, "UPDATE", infos[0].RequestKind)
	require.Equal(t, "NEW", infos[0].State)
}

func TestSessionCollect(t *testing.T) {
	req := &Request{SessionID: "S1", RequestNumber: 1, LineItems: []LineItem{{RatingGroup: 10}, {RatingGroup: 20}}}
	s := newChargingSession(req, "12345", nil, time.Second)

	_, err := s.collect(reservation.Granted(reservation.Ref{RequestNumber: 1, Index: 0}, 1))
	require.ErrorIs(t, err, ErrStaleCallback)

	s.await()
	complete, err := s.collect(reservation.Granted(reservation.Ref{RequestNumber: 1, Index: 1}, 1))
	require.NoError(t, err)
	require.False(t, complete)

	complete, err = s.collect(reservation.Granted(reservation.Ref{RequestNumber: 1, Index: 0}, 1))
	require.NoError(t, err)
	require.True(t, complete)
	require.Equal(t, StateAnswered, s.State())
	require.False(t, s.abandon())
}

func TestSessionAbandonOnce(t *testing.T) {
	req := &Request{SessionID: "S1", LineItems: []LineItem{{RatingGroup: 10}}}
	s := newChargingSession(req, "12345", nil, time.Second)
	s.await()

	require.True(t, s.abandon())
	require.False(t, s.abandon())

	_, err := s.collect(reservation.Granted(reservation.Ref{Index: 0}, 1))
	require.ErrorIs(t, err, ErrStaleCallback)
}

func TestSessionRejectOnlyFromNew(t *testing.T) {
	req := &Request{SessionID: "S1", LineItems: []LineItem{{RatingGroup: 10}}}
	s := newChargingSession(req, "12345", nil, time.Second)

	require.True(t, s.reject())
	require.Equal(t, StateRejected, s.State())
	require.Equal(t, "REJECTED", s.State().String())
	require.False(t, s.reject())
	require.False(t, s.abandon())

	pending := newChargingSession(req, "12345", nil, time.Second)
	pending.await()
	require.False(t, pending.reject())
	require.Equal(t, StateAwaitingReservation, pending.State())
}

package diameter_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fiorix/go-diameter/v4/diam"
	"github.com/fiorix/go-diameter/v4/diam/avp"
	"github.com/fiorix/go-diameter/v4/diam/datatype"
	"github.com/fiorix/go-diameter/v4/diam/dict"
	"github.com/fiorix/go-diameter/v4/diam/sm"
	"github.com/stretchr/testify/require"

	"github.com/free5gc/ocs/internal/charging"
	"github.com/free5gc/ocs/internal/diameter"
)

type echoHandler struct {
	mu       sync.Mutex
	requests []*charging.Request
	sendErrs []error
}

func (h *echoHandler) HandleRequest(_ context.Context, req *charging.Request, ex charging.Exchange) {
	h.mu.Lock()
	h.requests = append(h.requests, req)
	h.mu.Unlock()

	err := ex.Send(charging.BuildAnswer(req, nil, charging.DiameterSuccess, 60))
	ex.End()
	late := ex.Send(charging.BuildAnswer(req, nil, charging.DiameterSuccess, 60))

	h.mu.Lock()
	h.sendErrs = append(h.sendErrs, err, late)
	h.mu.Unlock()
}

func dialServer(t *testing.T, addr string) (diam.Conn, chan *diam.Message) {
	t.Helper()

	answers := make(chan *diam.Message, 4)
	mux := sm.New(&sm.Settings{
		OriginHost:       "pcef.localdomain",
		OriginRealm:      "localdomain",
		VendorID:         0,
		ProductName:      "ocs-test",
		OriginStateID:    datatype.Unsigned32(time.Now().Unix()),
		FirmwareRevision: 1,
	})
	mux.HandleFunc("CCA", func(_ diam.Conn, m *diam.Message) { answers <- m })

	cli := &sm.Client{
		Dict:               dict.Default,
		Handler:            mux,
		MaxRetransmits:     0,
		RetransmitInterval: time.Second,
		EnableWatchdog:     false,
		WatchdogInterval:   5 * time.Second,
		AuthApplicationID: []*diam.AVP{
			diam.NewAVP(avp.AuthApplicationID, avp.Mbit, 0, datatype.Unsigned32(diameter.ApplicationIDCreditControl)),
		},
	}
	conn, err := cli.DialNetwork("tcp", addr)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn, answers
}

func resultCode(m *diam.Message) datatype.Type {
	for _, a := range m.AVP {
		if a.Code == avp.ResultCode {
			return a.Data
		}
	}
	return nil
}

func TestServerAnswersCCR(t *testing.T) {
	handler := &echoHandler{}
	srv := diameter.NewServer(diameter.Settings{
		Network:     "tcp",
		Addr:        "127.0.0.1:0",
		OriginHost:  "ocs.localdomain",
		OriginRealm: "localdomain",
		ProductName: "free5gc-ocs",
	}, handler)
	require.NoError(t, srv.Start())
	defer srv.Stop()

	conn, answers := dialServer(t, srv.Addr().String())

	ccr := diam.NewRequest(diameter.CommandCodeCreditControl, diameter.ApplicationIDCreditControl, dict.Default)
	ccr.NewAVP(avp.SessionID, avp.Mbit, 0, datatype.UTF8String("S1"))
	ccr.NewAVP(avp.OriginHost, avp.Mbit, 0, datatype.DiameterIdentity("pcef.localdomain"))
	ccr.NewAVP(avp.OriginRealm, avp.Mbit, 0, datatype.DiameterIdentity("localdomain"))
	ccr.NewAVP(avp.DestinationRealm, avp.Mbit, 0, datatype.DiameterIdentity("localdomain"))
	ccr.NewAVP(avp.AuthApplicationID, avp.Mbit, 0, datatype.Unsigned32(diameter.ApplicationIDCreditControl))
	ccr.NewAVP(avp.CCRequestType, avp.Mbit, 0, datatype.Enumerated(charging.TerminationRequest))
	ccr.NewAVP(avp.CCRequestNumber, avp.Mbit, 0, datatype.Unsigned32(2))
	_, err := ccr.WriteTo(conn)
	require.NoError(t, err)

	select {
	case cca := <-answers:
		require.Equal(t, datatype.Unsigned32(charging.DiameterSuccess), resultCode(cca))
	case <-time.After(3 * time.Second):
		t.Fatal("no CCA received")
	}

	handler.mu.Lock()
	defer handler.mu.Unlock()
	require.Len(t, handler.requests, 1)
	require.Equal(t, "S1", handler.requests[0].SessionID)
	require.Equal(t, charging.TerminationRequest, handler.requests[0].Kind)
	require.NoError(t, handler.sendErrs[0])
	require.ErrorIs(t, handler.sendErrs[1], diameter.ErrExchangeEnded)
}

func TestServerRejectsCCRWithoutRequestType(t *testing.T) {
	handler := &echoHandler{}
	srv := diameter.NewServer(diameter.Settings{
		Network:     "tcp",
		Addr:        "127.0.0.1:0",
		OriginHost:  "ocs.localdomain",
		OriginRealm: "localdomain",
	}, handler)
	require.NoError(t, srv.Start())
	defer srv.Stop()

	conn, answers := dialServer(t, srv.Addr().String())

	ccr := diam.NewRequest(diameter.CommandCodeCreditControl, diameter.ApplicationIDCreditControl, dict.Default)
	ccr.NewAVP(avp.SessionID, avp.Mbit, 0, datatype.UTF8String("S2"))
	ccr.NewAVP(avp.OriginHost, avp.Mbit, 0, datatype.DiameterIdentity("pcef.localdomain"))
	ccr.NewAVP(avp.OriginRealm, avp.Mbit, 0, datatype.DiameterIdentity("localdomain"))
	ccr.NewAVP(avp.DestinationRealm, avp.Mbit, 0, datatype.DiameterIdentity("localdomain"))
	ccr.NewAVP(avp.AuthApplicationID, avp.Mbit, 0, datatype.Unsigned32(diameter.ApplicationIDCreditControl))
	_, err := ccr.WriteTo(conn)
	require.NoError(t, err)

	select {
	case cca := <-answers:
		require.Equal(t, datatype.Unsigned32(charging.DiameterMissingAVP), resultCode(cca))
	case <-time.After(3 * time.Second):
		t.Fatal("no CCA received")
	}

	handler.mu.Lock()
	defer handler.mu.Unlock()
	require.Empty(t, handler.requests)
}

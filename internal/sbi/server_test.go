package sbi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/free5gc/ocs/internal/abmf"
	"github.com/free5gc/ocs/internal/charging"
	"github.com/free5gc/ocs/internal/reservation"
	"github.com/free5gc/ocs/pkg/factory"
)

type testOcs struct {
	cfg      *factory.Config
	ledger   *abmf.AccountBalanceManagement
	sessions []charging.SessionInfo
}

func (o *testOcs) Config() *factory.Config {
	return o.cfg
}

func (o *testOcs) Ledger() Ledger {
	return o.ledger
}

func (o *testOcs) Sessions() []charging.SessionInfo {
	return o.sessions
}

func newTestServer(t *testing.T) (*Server, *testOcs) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ledger := abmf.NewAccountBalanceManagement(abmf.NewMemoryDataSource(), nil)
	t.Cleanup(ledger.Close)
	require.NoError(t, ledger.SetBalance(context.Background(), "12345", 1000))
	require.NoError(t, ledger.SetBalance(context.Background(), "67890", 10))

	o := &testOcs{
		cfg: &factory.Config{
			Info:          &factory.Info{Version: factory.OcsExpectedConfigVersion},
			Configuration: &factory.Configuration{OcsName: "ocs"},
		},
		ledger: ledger,
		sessions: []charging.SessionInfo{{
			SessionID:   "S1",
			EndUserID:   "12345",
			RequestKind: "INITIAL",
			State:       "AWAITING_RESERVATION",
			Pending:     1,
			CreatedAt:   time.Unix(0, 0).UTC(),
			Deadline:    time.Unix(15, 0).UTC(),
		}},
	}
	s, err := NewServer(o, "")
	require.NoError(t, err)
	return s, o
}

func TestHTTPGetAccounts(t *testing.T) {
	s, _ := newTestServer(t)

	testCases := []struct {
		url   string
		users []string
	}{
		{"/ocs-oam/v1/accounts", []string{"12345", "67890"}},
		{"/ocs-oam/v1/accounts?filter=123%25", []string{"12345"}},
		{"/ocs-oam/v1/accounts?filter=999", nil},
	}

	for _, tc := range testCases {
		t.Run(tc.url, func(t *testing.T) {
			rsp := httptest.NewRecorder()
			s.router.ServeHTTP(rsp, httptest.NewRequest(http.MethodGet, tc.url, nil))
			require.Equal(t, http.StatusOK, rsp.Code)

			var accounts []reservation.Account
			require.NoError(t, json.Unmarshal(rsp.Body.Bytes(), &accounts))
			users := make([]string, 0, len(accounts))
			for _, account := range accounts {
				users = append(users, account.UserID)
			}
			if tc.users == nil {
				require.Empty(t, users)
			} else {
				require.Equal(t, tc.users, users)
			}
		})
	}
}

func TestHTTPRecharge(t *testing.T) {
	s, o := newTestServer(t)

	req := httptest.NewRequest(http.MethodPut, "/ocs-oam/v1/recharge/12345", strings.NewReader(`{"units": 250}`))
	req.Header.Set("Content-Type", "application/json")
	rsp := httptest.NewRecorder()
	s.router.ServeHTTP(rsp, req)
	require.Equal(t, http.StatusNoContent, rsp.Code)

	accounts, err := o.ledger.Dump(context.Background(), "12345")
	require.NoError(t, err)
	require.Equal(t, uint64(1250), accounts[0].Balance)
}

func TestHTTPGetSessions(t *testing.T) {
	s, _ := newTestServer(t)

	rsp := httptest.NewRecorder()
	s.router.ServeHTTP(rsp, httptest.NewRequest(http.MethodGet, "/ocs-oam/v1/sessions", nil))
	require.Equal(t, http.StatusOK, rsp.Code)

	var sessions []charging.SessionInfo
	require.NoError(t, json.Unmarshal(rsp.Body.Bytes(), &sessions))
	require.Len(t, sessions, 1)
	require.Equal(t, "S1", sessions[0].SessionID)
	require.Equal(t, "AWAITING_RESERVATION", sessions[0].State)
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rsp := httptest.NewRecorder()
	s.router.ServeHTTP(rsp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rsp.Code)
	require.Contains(t, rsp.Body.String(), "go_goroutines")
}

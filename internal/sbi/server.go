package sbi

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/free5gc/ocs/internal/charging"
	"github.com/free5gc/ocs/internal/logger"
	"github.com/free5gc/ocs/internal/recharge"
	"github.com/free5gc/ocs/internal/reservation"
	"github.com/free5gc/ocs/pkg/factory"
	"github.com/free5gc/util/httpwrapper"
	logger_util "github.com/free5gc/util/logger"
)

type Route struct {
	Method  string
	Pattern string
	APIFunc gin.HandlerFunc
}

func applyRoutes(group *gin.RouterGroup, routes []Route) {
	for _, route := range routes {
		switch route.Method {
		case "GET":
			group.GET(route.Pattern, route.APIFunc)
		case "POST":
			group.POST(route.Pattern, route.APIFunc)
		case "PUT":
			group.PUT(route.Pattern, route.APIFunc)
		case "PATCH":
			group.PATCH(route.Pattern, route.APIFunc)
		case "DELETE":
			group.DELETE(route.Pattern, route.APIFunc)
		}
	}
}

type Ledger interface {
	recharge.Recharger
	Dump(ctx context.Context, filter string) ([]reservation.Account, error)
}

type ocs interface {
	Config() *factory.Config
	Ledger() Ledger
	Sessions() []charging.SessionInfo
}

type Server struct {
	ocs

	httpServer *http.Server
	router     *gin.Engine
}

func NewServer(ocs ocs, tlsKeyLogPath string) (*Server, error) {
	s := &Server{
		ocs:    ocs,
		router: logger_util.NewGinWithLogrus(logger.GinLog),
	}

	group := s.router.Group(factory.OcsOamResUriPrefix)
	applyRoutes(group, s.getOamEndpoints())
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	bindAddr := s.Config().GetSbiBindingAddr()
	logger.SbiLog.Infof("Binding addr: [%s]", bindAddr)
	var err error
	if s.httpServer, err = httpwrapper.NewHttp2Server(bindAddr, tlsKeyLogPath, s.router); err != nil {
		logger.InitLog.Errorf("Initialize HTTP server failed: %v", err)
		return nil, err
	}
	s.httpServer.ErrorLog = log.New(logger.SbiLog.WriterLevel(logrus.ErrorLevel), "HTTP2: ", 0)

	return s, nil
}

func (s *Server) getOamEndpoints() []Route {
	return []Route{
		{
			Method:  http.MethodGet,
			Pattern: "/accounts",
			APIFunc: s.HTTPGetAccounts,
		},
		{
			Method:  http.MethodPut,
			Pattern: "/recharge/:UeId",
			APIFunc: recharge.HTTPRechargePut(s.Ledger()),
		},
		{
			Method:  http.MethodGet,
			Pattern: "/sessions",
			APIFunc: s.HTTPGetSessions,
		},
	}
}

// HTTPGetAccounts dumps the accounts matching the "filter" query, "%" when
// absent.
func (s *Server) HTTPGetAccounts(c *gin.Context) {
	filter := c.DefaultQuery("filter", "%")

	accounts, err := s.Ledger().Dump(c.Request.Context(), filter)
	if err != nil {
		logger.SbiLog.Errorf("Dump accounts [%s]: %+v", filter, err)
		c.JSON(http.StatusInternalServerError, gin.H{"cause": "SYSTEM_FAILURE", "detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, accounts)
}

func (s *Server) HTTPGetSessions(c *gin.Context) {
	c.JSON(http.StatusOK, s.Sessions())
}

func (s *Server) Run(wg *sync.WaitGroup) {
	wg.Add(1)
	go s.startServer(wg)
}

func (s *Server) Stop() {
	const defaultShutdownTimeout time.Duration = 2 * time.Second

	if s.httpServer != nil {
		logger.SbiLog.Infof("Stop SBI server (listen on %s)", s.httpServer.Addr)
		toCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(toCtx); err != nil {
			logger.SbiLog.Errorf("Could not close SBI server: %#v", err)
		}
	}
}

func (s *Server) startServer(wg *sync.WaitGroup) {
	defer func() {
		if p := recover(); p != nil {
			// Print stack for panic to log. Fatalf() will let program exit.
			logger.SbiLog.Fatalf("panic: %v\n%s", p, string(debug.Stack()))
		}
		wg.Done()
	}()

	logger.SbiLog.Infof("Start SBI server (listen on %s)", s.httpServer.Addr)

	var err error
	cfg := s.Config()
	scheme := cfg.GetSbiScheme()
	if scheme == "http" {
		err = s.httpServer.ListenAndServe()
	} else if scheme == "https" {
		err = s.httpServer.ListenAndServeTLS(
			cfg.GetCertPemPath(),
			cfg.GetCertKeyPath())
	} else {
		err = fmt.Errorf("No support this scheme[%s]", scheme)
	}

	if err != nil && err != http.ErrServerClosed {
		logger.SbiLog.Errorf("SBI server error: %v", err)
	}
	logger.SbiLog.Warnf("SBI server (listen on %s) stopped", s.httpServer.Addr)
}

// Package diameter carries the Ro credit-control exchange over
// go-diameter: it decodes CCRs, hands them to the charging core and encodes
// the answers.
package diameter

import (
	"context"
	"net"
	"runtime/debug"
	"sync"

	"github.com/fiorix/go-diameter/v4/diam"
	"github.com/fiorix/go-diameter/v4/diam/datatype"
	"github.com/fiorix/go-diameter/v4/diam/dict"
	"github.com/fiorix/go-diameter/v4/diam/sm"
	"github.com/pkg/errors"

	"github.com/free5gc/ocs/internal/charging"
	ocs_context "github.com/free5gc/ocs/internal/context"
	"github.com/free5gc/ocs/internal/logger"
)

// RequestHandler is the charging core seen from the transport.
type RequestHandler interface {
	HandleRequest(ctx context.Context, req *charging.Request, ex charging.Exchange)
}

type Settings struct {
	Network       string
	Addr          string
	OriginHost    string
	OriginRealm   string
	VendorID      uint32
	ProductName   string
	OriginStateID uint32
}

type Server struct {
	settings Settings
	origin   Origin
	handler  RequestHandler
	mux      *sm.StateMachine

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	listener net.Listener
	wg       sync.WaitGroup
}

func NewServer(settings Settings, handler RequestHandler) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		settings: settings,
		origin:   Origin{Host: settings.OriginHost, Realm: settings.OriginRealm},
		handler:  handler,
		ctx:      ctx,
		cancel:   cancel,
	}

	s.mux = sm.New(&sm.Settings{
		OriginHost:       datatype.DiameterIdentity(settings.OriginHost),
		OriginRealm:      datatype.DiameterIdentity(settings.OriginRealm),
		VendorID:         datatype.Unsigned32(settings.VendorID),
		ProductName:      datatype.UTF8String(settings.ProductName),
		OriginStateID:    datatype.Unsigned32(settings.OriginStateID),
		FirmwareRevision: 1,
	})
	s.mux.HandleFunc("CCR", s.handleCCR)
	return s
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	l, err := diam.Listen(s.settings.Network, s.settings.Addr)
	if err != nil {
		return errors.Wrapf(err, "listen %s %s", s.settings.Network, s.settings.Addr)
	}

	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()

	srv := &diam.Server{
		Network: s.settings.Network,
		Addr:    s.settings.Addr,
		Handler: s.mux,
		Dict:    dict.Default,
	}

	s.wg.Add(2)
	go s.drainErrors()
	go func() {
		defer s.wg.Done()
		logger.DiamLog.Infof("Diameter server listening on %s %s", s.settings.Network, l.Addr())
		if serveErr := srv.Serve(l); serveErr != nil && s.ctx.Err() == nil {
			logger.DiamLog.Errorf("Diameter server stopped: %+v", serveErr)
		}
	}()
	return nil
}

// Addr is the bound listener address, nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) Stop() {
	s.cancel()

	s.mu.Lock()
	if s.listener != nil {
		if err := s.listener.Close(); err != nil {
			logger.DiamLog.Warnf("Close listener: %v", err)
		}
	}
	s.mu.Unlock()

	s.wg.Wait()
	logger.DiamLog.Info("Diameter server stopped")
}

func (s *Server) drainErrors() {
	defer s.wg.Done()
	for {
		select {
		case report, ok := <-s.mux.ErrorReports():
			if !ok {
				return
			}
			logger.DiamLog.Warnf("Diameter error from %v: %v", report.Conn, report.Error)
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Server) handleCCR(c diam.Conn, m *diam.Message) {
	defer func() {
		if p := recover(); p != nil {
			logger.DiamLog.Errorf("panic: %v\n%s", p, string(debug.Stack()))
		}
	}()

	ocs_context.GetSelf().CountRequest()
	logger.DiamLog.Tracef("Received CCR from %s:\n%s", c.RemoteAddr(), m)

	ex := newExchange(c, m, s.origin)
	req, err := DecodeCCR(m)
	if err != nil {
		logger.DiamLog.Errorf("Malformed CCR from %s: %v", c.RemoteAddr(), err)
		answer := &charging.Answer{
			SessionID:     req.SessionID,
			ResultCode:    charging.DiameterMissingAVP,
			Kind:          req.Kind,
			RequestNumber: req.RequestNumber,
		}
		if sendErr := ex.Send(answer); sendErr != nil {
			logger.DiamLog.Errorf("Unable to reject CCR: %v", sendErr)
		}
		ex.End()
		return
	}

	s.handler.HandleRequest(s.ctx, req, ex)
}

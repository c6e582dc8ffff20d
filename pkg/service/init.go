package service

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/free5gc/ocs/internal/abmf"
	"github.com/free5gc/ocs/internal/cdr"
	"github.com/free5gc/ocs/internal/charging"
	ocs_context "github.com/free5gc/ocs/internal/context"
	"github.com/free5gc/ocs/internal/diameter"
	"github.com/free5gc/ocs/internal/logger"
	"github.com/free5gc/ocs/internal/metrics"
	"github.com/free5gc/ocs/internal/recharge"
	"github.com/free5gc/ocs/internal/sbi"
	"github.com/free5gc/ocs/internal/util"
	"github.com/free5gc/ocs/pkg/app"
	"github.com/free5gc/ocs/pkg/factory"
)

type OcsApp struct {
	cfg    *factory.Config
	ocsCtx *ocs_context.OCSContext
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	dataSource abmf.DataSource
	ledger     *abmf.AccountBalanceManagement
	handler    *charging.Handler
	recorder   *cdr.Recorder
	diamServer *diameter.Server
	sbiServer  *sbi.Server
	watcher    *recharge.Watcher

	terminateOnce sync.Once
}

var _ app.App = &OcsApp{}

func NewApp(ctx context.Context, cfg *factory.Config, tlsKeyLogPath string) (*OcsApp, error) {
	ocs := &OcsApp{cfg: cfg}
	ocs.SetLogEnable(cfg.GetLogEnable())
	ocs.SetLogLevel(cfg.GetLogLevel())
	ocs.SetReportCaller(cfg.GetLogReportCaller())

	ocs_context.Init()
	ocs.ocsCtx = ocs_context.GetSelf()
	util.InitOcsContext(ocs.ocsCtx, cfg)

	ocs.ctx, ocs.cancel = context.WithCancel(ctx)

	configuration := cfg.Configuration
	if mongodb := configuration.Mongodb; mongodb != nil {
		ocs.dataSource = abmf.NewMongoDataSource(mongodb.Name, mongodb.Url)
	} else {
		ocs.dataSource = abmf.NewMemoryDataSource()
	}
	ocs.ledger = abmf.NewAccountBalanceManagement(ocs.dataSource, nil)

	opts := charging.Options{
		LivenessTimeout: ocs.ocsCtx.LivenessTimeout,
		ValidityTime:    ocs.ocsCtx.ValidityTime,
		Metrics:         metrics.NewChargingMetrics(nil),
	}
	if cdrCfg := configuration.Cdr; cdrCfg != nil {
		var uploader cdr.Uploader
		if ftpCfg := cdrCfg.Ftp; ftpCfg != nil {
			uploader = cdr.NewFTPUploader(ftpCfg.Addr, ftpCfg.User, ftpCfg.Password)
		}
		recorder, err := cdr.NewRecorder(cdrCfg.Dir, uploader)
		if err != nil {
			return nil, err
		}
		ocs.recorder = recorder
		opts.Recorder = recorder
	}

	ocs.handler = charging.NewHandler(ocs.ledger, opts)
	ocs.ledger.SetResumer(ocs.handler)

	ocs.diamServer = diameter.NewServer(diameter.Settings{
		Network:       ocs.ocsCtx.DiameterNetwork,
		Addr:          ocs.ocsCtx.DiameterAddr,
		OriginHost:    ocs.ocsCtx.OriginHost,
		OriginRealm:   ocs.ocsCtx.OriginRealm,
		VendorID:      ocs.ocsCtx.VendorId,
		ProductName:   ocs.ocsCtx.ProductName,
		OriginStateID: ocs.ocsCtx.OriginStateId,
	}, ocs.handler)

	if configuration.Sbi != nil {
		sbiServer, err := sbi.NewServer(ocs, tlsKeyLogPath)
		if err != nil {
			return nil, err
		}
		ocs.sbiServer = sbiServer
	}

	if configuration.UsersFile != "" {
		ocs.watcher = recharge.NewWatcher(configuration.UsersFile, ocs.ledger)
	}

	return ocs, nil
}

func (a *OcsApp) Config() *factory.Config {
	return a.cfg
}

func (a *OcsApp) Context() *ocs_context.OCSContext {
	return a.ocsCtx
}

func (a *OcsApp) Ledger() sbi.Ledger {
	return a.ledger
}

func (a *OcsApp) Sessions() []charging.SessionInfo {
	return a.handler.Sessions()
}

func (a *OcsApp) SetLogEnable(enable bool) {
	logger.MainLog.Infof("Log enable is set to [%v]", enable)
	if enable && logger.Log.Out == os.Stderr {
		return
	} else if !enable && logger.Log.Out == io.Discard {
		return
	}

	a.cfg.SetLogEnable(enable)
	if enable {
		logger.Log.SetOutput(os.Stderr)
	} else {
		logger.Log.SetOutput(io.Discard)
	}
}

func (a *OcsApp) SetLogLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logger.MainLog.Warnf("Log level [%s] is invalid", level)
		return
	}

	logger.MainLog.Infof("Log level is set to [%s]", level)
	if lvl == logger.Log.GetLevel() {
		return
	}

	a.cfg.SetLogLevel(level)
	logger.SetLogLevel(lvl)
}

func (a *OcsApp) SetReportCaller(reportCaller bool) {
	logger.MainLog.Infof("Report Caller is set to [%v]", reportCaller)
	if reportCaller == logger.Log.ReportCaller {
		return
	}

	a.cfg.SetLogReportCaller(reportCaller)
	logger.SetReportCaller(reportCaller)
}

func (a *OcsApp) start() error {
	if err := a.dataSource.Init(a.ctx); err != nil {
		return errors.Wrap(err, "init account data source")
	}
	if err := abmf.Provision(a.ctx, a.ledger, a.cfg.Configuration.UsersFile); err != nil {
		logger.InitLog.Warnf("Provisioning: %v", err)
	}

	if err := a.diamServer.Start(); err != nil {
		return err
	}
	if a.sbiServer != nil {
		a.sbiServer.Run(&a.wg)
	}
	if a.watcher != nil {
		if err := a.watcher.Start(); err != nil {
			logger.InitLog.Warnf("Users file changes will not be applied: %v", err)
			a.watcher = nil
		}
	}
	return nil
}

// Start runs the server until the context given to NewApp is cancelled.
func (a *OcsApp) Start() {
	logger.InitLog.Infoln("Server started")
	a.ocsCtx.Dump()

	if err := a.start(); err != nil {
		logger.InitLog.Errorf("OCS start failed: %+v", err)
		a.Terminate()
		return
	}

	<-a.ctx.Done()
	a.Terminate()
}

func (a *OcsApp) Terminate() {
	a.terminateOnce.Do(func() {
		logger.InitLog.Infof("Terminating OCS...")
		a.cancel()

		a.diamServer.Stop()
		if a.watcher != nil {
			a.watcher.Stop()
		}
		if a.sbiServer != nil {
			a.sbiServer.Stop()
		}

		// in-flight decisions still reach the handler before its timers stop
		a.ledger.Close()
		a.handler.Close()
		if a.recorder != nil {
			a.recorder.Close()
		}

		a.wg.Wait()
		logger.InitLog.Infof("OCS terminated, %d requests received", a.ocsCtx.ReceivedRequests())
	})
}

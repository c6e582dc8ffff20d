package logger

import (
	"os"
	"time"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	logger_util "github.com/free5gc/util/logger"
)

var (
	Log         *logrus.Logger
	MainLog     *logrus.Entry
	InitLog     *logrus.Entry
	CfgLog      *logrus.Entry
	CtxLog      *logrus.Entry
	UtilLog     *logrus.Entry
	ChargingLog *logrus.Entry
	DiamLog     *logrus.Entry
	AbmfLog     *logrus.Entry
	RechargeLog *logrus.Entry
	SbiLog      *logrus.Entry
	GinLog      *logrus.Entry
	CdrLog      *logrus.Entry
	MetricsLog  *logrus.Entry
)

func init() {
	Log = logrus.New()
	Log.SetReportCaller(false)

	Log.Formatter = &formatter.Formatter{
		TimestampFormat: time.RFC3339,
		TrimMessages:    true,
		NoFieldsSpace:   true,
		HideKeys:        true,
		FieldsOrder:     []string{"component", "category"},
	}

	MainLog = Log.WithFields(logrus.Fields{"component": "OCS", "category": "Main"})
	InitLog = Log.WithFields(logrus.Fields{"component": "OCS", "category": "Init"})
	CfgLog = Log.WithFields(logrus.Fields{"component": "OCS", "category": "CFG"})
	CtxLog = Log.WithFields(logrus.Fields{"component": "OCS", "category": "Context"})
	UtilLog = Log.WithFields(logrus.Fields{"component": "OCS", "category": "Util"})
	ChargingLog = Log.WithFields(logrus.Fields{"component": "OCS", "category": "Charging"})
	DiamLog = Log.WithFields(logrus.Fields{"component": "OCS", "category": "Diameter"})
	AbmfLog = Log.WithFields(logrus.Fields{"component": "OCS", "category": "ABMF"})
	RechargeLog = Log.WithFields(logrus.Fields{"component": "OCS", "category": "Recharge"})
	SbiLog = Log.WithFields(logrus.Fields{"component": "OCS", "category": "SBI"})
	GinLog = Log.WithFields(logrus.Fields{"component": "OCS", "category": "GIN"})
	CdrLog = Log.WithFields(logrus.Fields{"component": "OCS", "category": "CDR"})
	MetricsLog = Log.WithFields(logrus.Fields{"component": "OCS", "category": "Metrics"})
}

func LogFileHook(logPath string) error {
	if logPath == "" {
		return nil
	}
	hook, err := logger_util.NewFileHook(logPath, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0o666)
	if err != nil {
		return errors.Wrapf(err, "open log file %s", logPath)
	}
	Log.Hooks.Add(hook)
	return nil
}

func SetLogLevel(level logrus.Level) {
	Log.SetLevel(level)
}

func SetReportCaller(enable bool) {
	Log.SetReportCaller(enable)
}

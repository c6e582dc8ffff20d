package main

import (
	"context"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/free5gc/ocs/internal/logger"
	"github.com/free5gc/ocs/pkg/factory"
	"github.com/free5gc/ocs/pkg/service"
)

var OCS *service.OcsApp

func main() {
	defer func() {
		if p := recover(); p != nil {
			// Print stack for panic to log. Fatalf() will let program exit.
			logger.MainLog.Fatalf("panic: %v\n%s", p, string(debug.Stack()))
		}
	}()

	app := cli.NewApp()
	app.Name = "ocs"
	app.Usage = "Diameter Ro online charging server"
	app.Action = action
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "Load configuration from `FILE`",
		},
		cli.StringSliceFlag{
			Name:  "log, l",
			Usage: "Output NF log to `FILE`",
		},
		cli.StringFlag{
			Name:  "loglevel",
			Usage: "Override the configured log level",
		},
		cli.StringFlag{
			Name:  "tlskeylog",
			Usage: "Write TLS session keys of the admin server to `FILE`",
		},
	}
	if err := app.Run(os.Args); err != nil {
		logger.MainLog.Errorf("OCS Run error: %v\n", err)
	}
}

func action(cliCtx *cli.Context) error {
	for _, path := range cliCtx.StringSlice("log") {
		if err := logger.LogFileHook(path); err != nil {
			return err
		}
	}

	logger.MainLog.Infoln("OCS starting")

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh  // Wait for interrupt signal to gracefully shutdown
		cancel() // Notify each goroutine and wait them stopped
	}()

	cfg, err := factory.ReadConfig(cliCtx.String("config"))
	if err != nil {
		sigCh <- nil
		return errors.Wrap(err, "read config")
	}
	factory.OcsConfig = cfg

	ocs, err := service.NewApp(ctx, cfg, cliCtx.String("tlskeylog"))
	if err != nil {
		sigCh <- nil
		return errors.Wrap(err, "new OCS")
	}
	OCS = ocs

	if level := cliCtx.String("loglevel"); level != "" {
		ocs.SetLogLevel(level)
	}

	ocs.Start()
	return nil
}

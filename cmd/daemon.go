package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	ccommon "github.com/vigild/vigil/cmd/common"
	"github.com/vigild/vigil/common"
	"github.com/vigild/vigil/internal/api"
	"github.com/vigild/vigil/internal/builder"
	"github.com/vigild/vigil/internal/notify"
	"github.com/vigild/vigil/internal/scheduler"
	"github.com/vigild/vigil/internal/server"
	"github.com/vigild/vigil/internal/watcher"
	"github.com/vigild/vigil/pkg/logger"
)

var daemonFlags = []cli.Flag{
	cli.StringFlag{
		Name:   "rpc-addr",
		Usage:  "listen address of the JSON-RPC HTTP bridge (empty disables it)",
		EnvVar: common.RPCAddrEnv,
	},
	cli.StringFlag{
		Name:  "shell",
		Usage: "shell used to interpret build script commands",
	},
}

func daemon(ctx *cli.Context) error {
	l := logger.NewStandardLogger(log.New(os.Stderr, "vigild ", log.LstdFlags))
	defer l.Close()

	sched := scheduler.New(l)
	runner := builder.NewRunner(ctx.String("shell"), l)

	monitor, err := watcher.NewMonitor(l)
	if err != nil {
		ccommon.PrintRuntimeErr(ctx, "daemon", "new_monitor", err)
		return nil
	}

	var notifier notify.Notifier
	notifier, err = notify.NewDesktopNotifier(l)
	if err != nil {
		l.Warning("Desktop notifications unavailable: %v", err)
		notifier = notify.NewLogNotifier(l)
	}

	a := api.NewApi(l, sched, runner, monitor, notifier)

	serv := server.NewServer(l, common.DefaultPort)
	a.RegisterHandlers(serv)
	a.OnShutdown(func() { _ = serv.Shutdown() })

	if addr := ctx.String("rpc-addr"); addr != "" {
		rpc := server.NewRPCServer(a, l)
		a.OnShutdown(rpc.Stop)
		go func() {
			if err := rpc.Start(addr); err != nil {
				l.Error("JSON-RPC bridge: %v", err)
			}
		}()
	}

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		s := <-sig
		l.Info("Received %s, shutting down", s)
		if err := a.StopDaemon(); err != nil {
			l.Error("Shutdown: %v", err)
		}
		cancel()
	}()

	err = serv.Start(runCtx)
	if err != nil {
		ccommon.PrintRuntimeErr(ctx, "daemon", "server_start", err)
	}
	// Start has drained in-flight calls by now; StopDaemon blocks until
	// teardown (monitor, scheduler, notifier) has fully completed, no
	// matter which path initiated it.
	_ = a.StopDaemon()
	return nil
}

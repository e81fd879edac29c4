// Command vigild runs the build daemon without the CLI wrapper. It is
// the headless entry point used by service managers.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/vigild/vigil/common"
	"github.com/vigild/vigil/internal/api"
	"github.com/vigild/vigil/internal/builder"
	"github.com/vigild/vigil/internal/notify"
	"github.com/vigild/vigil/internal/scheduler"
	"github.com/vigild/vigil/internal/server"
	"github.com/vigild/vigil/internal/watcher"
	"github.com/vigild/vigil/pkg/logger"
)

func main() {
	l := logger.NewStandardLogger(log.New(os.Stderr, "vigild ", log.LstdFlags))
	defer l.Close()

	monitor, err := watcher.NewMonitor(l)
	if err != nil {
		fmt.Println("vigild:", err.Error())
		os.Exit(1)
	}

	var notifier notify.Notifier
	notifier, err = notify.NewDesktopNotifier(l)
	if err != nil {
		l.Warning("Desktop notifications unavailable: %v", err)
		notifier = notify.NewLogNotifier(l)
	}

	sched := scheduler.New(l)
	runner := builder.NewRunner("", l)
	a := api.NewApi(l, sched, runner, monitor, notifier)

	serv := server.NewServer(l, common.DefaultPort)
	a.RegisterHandlers(serv)
	a.OnShutdown(func() { _ = serv.Shutdown() })

	if addr := os.Getenv(common.RPCAddrEnv); addr != "" {
		rpc := server.NewRPCServer(a, l)
		a.OnShutdown(rpc.Stop)
		go func() {
			if err := rpc.Start(addr); err != nil {
				l.Error("JSON-RPC bridge: %v", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
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

	if err = serv.Start(ctx); err != nil {
		fmt.Println("vigild:", err.Error())
		os.Exit(1)
	}
	// Start has drained in-flight calls by now; StopDaemon blocks until
	// teardown (monitor, scheduler, notifier) has fully completed, no
	// matter which path initiated it.
	_ = a.StopDaemon()
}

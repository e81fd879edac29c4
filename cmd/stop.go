package cmd

import (
	"fmt"

	"github.com/urfave/cli"

	ccommon "github.com/vigild/vigil/cmd/common"
	"github.com/vigild/vigil/pkg/vigilcli"
)

func stop(ctx *cli.Context) error {
	client, err := vigilcli.NewClient()
	if err != nil {
		fmt.Println("vigil: daemon is not running")
		return nil
	}
	defer client.Close()

	stopped, err := client.StopDaemon()
	if err != nil {
		ccommon.PrintRuntimeErr(ctx, "stop", "stop_daemon", err)
		return nil
	}
	if stopped {
		fmt.Println("Daemon stopped")
	}
	return nil
}

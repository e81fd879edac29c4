package cmd

import (
	"fmt"

	"github.com/urfave/cli"

	ccommon "github.com/vigild/vigil/cmd/common"
	"github.com/vigild/vigil/pkg/vigilcli"
)

func ping(ctx *cli.Context) error {
	client, err := vigilcli.NewClient()
	if err != nil {
		fmt.Println("vigil: daemon is not running")
		return nil
	}
	defer client.Close()

	msg, err := client.Hello()
	if err != nil {
		ccommon.PrintRuntimeErr(ctx, "ping", "hello", err)
		return nil
	}
	fmt.Printf("Hello %s\n", msg)
	return nil
}

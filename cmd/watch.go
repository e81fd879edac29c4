package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/urfave/cli"

	ccommon "github.com/vigild/vigil/cmd/common"
	"github.com/vigild/vigil/internal/project"
	"github.com/vigild/vigil/pkg/vigilcli"
)

func watch(ctx *cli.Context) error {
	start := ctx.Args().First()
	if start == "" {
		var err error
		start, err = os.Getwd()
		if err != nil {
			ccommon.PrintRuntimeErr(ctx, "watch", "getwd", err)
			return nil
		}
	}

	fs := afero.NewOsFs()
	root, err := project.FindRoot(fs, start, nil)
	if err != nil {
		ccommon.PrintRuntimeErr(ctx, "watch", "find_root", err)
		return nil
	}
	cfg, err := project.LoadConfig(fs, root)
	if err != nil {
		ccommon.PrintRuntimeErr(ctx, "watch", "load_config", err)
		return nil
	}

	if err = vigilcli.EnsureDaemon(); err != nil {
		ccommon.PrintRuntimeErr(ctx, "watch", "ensure_daemon", err)
		return nil
	}
	client, err := vigilcli.NewClient()
	if err != nil {
		ccommon.PrintRuntimeErr(ctx, "watch", "new_client", err)
		return nil
	}
	defer client.Close()

	res, err := client.AddProject(root, cfg)
	if err != nil {
		ccommon.PrintRuntimeErr(ctx, "watch", "add_project", err)
		return nil
	}
	fmt.Printf("Watching %s (%s)\n", res.Name, root)
	return nil
}

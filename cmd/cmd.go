// Package cmd wires the vigil command-line interface.
package cmd

import (
	"fmt"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/urfave/cli"

	"github.com/vigild/vigil/cmd/common"
)

type BuildArgs struct {
	Version   string
	BuildType string
	Date      string
	Commit    string
}

func Execute(args []string, bArgs BuildArgs) error {
	// optional .env with VIGIL_* overrides; absence is fine
	_ = godotenv.Load()

	app := cli.App{
		Name:                  "vigil",
		HelpName:              "vigil",
		Usage:                 "A debounced build daemon for your projects.",
		Version:               fmt.Sprintf("%s-%s", bArgs.Version, bArgs.BuildType),
		UsageText:             "vigil <command> [arguments...]",
		Description:           DESCRIPTION,
		CustomAppHelpTemplate: HELP_TEMPL,
		OnUsageError:          common.UsageErrorCallback,
		Commands: []cli.Command{
			{
				Name:               "daemon",
				Usage:              "run the build daemon in the foreground",
				Action:             daemon,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        DaemonDescription,
				Flags:              daemonFlags,
			},
			{
				Name:               "watch",
				Aliases:            []string{"w"},
				Usage:              "register a project with the daemon",
				Action:             watch,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        WatchDescription,
			},
			{
				Name:               "ping",
				Usage:              "check whether the daemon is running",
				Action:             ping,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        PingDescription,
			},
			{
				Name:               "stop",
				Usage:              "stop the running daemon",
				Action:             stop,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        StopDescription,
			},
			{
				Name:    "help",
				Aliases: []string{"h"},
				Usage:   "prints the help message",
				Action:  common.Help,
			},
			{
				Name:               "version",
				Aliases:            []string{"v"},
				Usage:              "prints installed version of vigil",
				UsageText:          " ",
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             common.GetVersion,
			},
		},
		Action:      watch,
		HideHelp:    true,
		HideVersion: true,
	}
	common.VersionCmdStr = fmt.Sprintf("%s %s (%s_%s)\nBuild: %s=%s\n",
		app.Name,
		app.Version,
		runtime.GOOS,
		runtime.GOARCH,
		bArgs.Date, bArgs.Commit,
	)
	return app.Run(args)
}

package cmd

const DESCRIPTION = `
Vigil watches your project directories and rebuilds them the moment
you stop typing. A single background daemon debounces filesystem
events per project, runs the project's build script, and raises a
desktop notification when a build fails or recovers.
`

const (
	WatchDescription = `The watch command registers the current project with the
daemon (starting the daemon first if none is running) and
triggers an immediate build. The project root is found by
walking up from the given directory, and its build script
is read from the .vigil.yaml file at the root.

Example:
        vigil watch
					OR
        vigil watch ~/src/myproject

`
	DaemonDescription = `The daemon command runs the build daemon in the foreground.
It listens on a unix socket (with a loopback TCP fallback)
and optionally exposes a JSON-RPC 2.0 bridge over HTTP.

Example:
        vigil daemon

`
	PingDescription = `The ping command probes the daemon and prints its greeting.

Example:
        vigil ping

`
	StopDescription = `The stop command asks the daemon to shut down gracefully.
In-flight builds run to completion; pending debounce timers
are dropped.

Example:
        vigil stop

`
)

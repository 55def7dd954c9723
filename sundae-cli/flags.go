package sundaecli

import (
	"strings"

	"github.com/urfave/cli/v2"
)

var CommonOpts struct {
	Console bool
	Debug   bool
	Dry     bool
	Env     string
	Port    int
}

var ConsoleFlag = cli.BoolFlag{
	Name:        "console",
	Usage:       "whether to run in console mode or lambda mode",
	Value:       false,
	EnvVars:     []string{"CONSOLE"},
	Destination: &CommonOpts.Console,
}
var DebugFlag = cli.BoolFlag{
	Name:        "debug",
	Usage:       "enable debug logging",
	Value:       false,
	EnvVars:     []string{"DEBUG"},
	Destination: &CommonOpts.Debug,
}
var DryFlag = cli.BoolFlag{
	Name:        "dry",
	Usage:       "log frames instead of pushing them to connections",
	Value:       false,
	EnvVars:     []string{"DRY"},
	Destination: &CommonOpts.Dry,
}
var EnvFlag = cli.StringFlag{
	Name:        "env",
	Usage:       "environment",
	Value:       "local",
	EnvVars:     []string{"ENV"},
	Destination: &CommonOpts.Env,
}
var PortFlag = func(p int) *cli.IntFlag {
	return &cli.IntFlag{
		Name:        "port",
		Usage:       "Port to listen to, if running locally",
		Value:       p,
		EnvVars:     []string{"PORT"},
		Destination: &CommonOpts.Port,
	}
}

var CommonFlags = []cli.Flag{
	&ConsoleFlag,
	&DebugFlag,
	&DryFlag,
	&EnvFlag,
}

// EnvVar derives the environment variable name for a flag, e.g. table-name -> TABLE_NAME.
func EnvVar(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

func StringFlag(name, usage string, destination *string, value ...string) *cli.StringFlag {
	var v string
	if len(value) > 0 {
		v = value[0]
	}
	return &cli.StringFlag{
		Name:        name,
		Usage:       usage,
		Value:       v,
		EnvVars:     []string{EnvVar(name)},
		Destination: destination,
	}
}

func BoolFlag(name, usage string, destination *bool) *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        name,
		Usage:       usage,
		EnvVars:     []string{EnvVar(name)},
		Destination: destination,
	}
}

func IntFlag(name, usage string, destination *int, value int) *cli.IntFlag {
	return &cli.IntFlag{
		Name:        name,
		Usage:       usage,
		Value:       value,
		EnvVars:     []string{EnvVar(name)},
		Destination: destination,
	}
}

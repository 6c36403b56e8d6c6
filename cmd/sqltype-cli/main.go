package main

import (
	"github.com/alecthomas/kong"
)

const appName = "sqltype-cli"

type globalOptions struct {
	ConfigFile      string `type:"path" short:"c" help:"Path to the sqltype config file"`
	ConfigExpandEnv bool   `help:"Expand environment variable references in the config file"`
	LogLevel        string `help:"Overrides log_level of the config file (debug, info, warn, error)"`
	LogFormat       string `help:"Overrides log_format of the config file (logfmt, json)"`
}

var cli struct {
	globalOptions

	Check     checkCmd     `cmd:"" help:"Type check YAML query documents"`
	Functions functionsCmd `cmd:"" help:"List the function catalog"`
	Types     typesCmd     `cmd:"" help:"Parse and normalize type expressions"`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name(appName),
		kong.Description("Static type inference for PartiQL style queries"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run(&cli.globalOptions)
	ctx.FatalIfErrorf(err)
}

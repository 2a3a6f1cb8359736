package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/alecthomas/kong"

	"github.com/khmm12/ping-sweep/internal/common/cidr"
	"github.com/khmm12/ping-sweep/internal/common/logging"
	"github.com/khmm12/ping-sweep/internal/usecase"
)

const (
	exitOK           = 0
	exitFailure      = 1
	exitInvalidInput = 2
)

type CLI struct {
	Config    kong.ConfigFlag `name:"config" help:"Load flag defaults from a JSON file."`
	LogLevel  string          `name:"log.level" env:"LOG_LEVEL" default:"info" help:"Log level (debug, info, warn, error)"`
	LogFormat string          `name:"log.format" env:"LOG_FORMAT" default:"json" enum:"json,text" help:"Log format (json, text)"`

	Sweep Sweep `cmd:"" default:"withargs" help:"Probe every host of a prefix once and print the report (default)."`
	Serve Serve `cmd:"" help:"Sweep a prefix periodically and expose the results over HTTP."`
}

func main() {
	var cli CLI

	parser, err := kong.New(&cli,
		kong.Name("ping-sweep"),
		kong.Description("Discover live hosts in an IPv4 prefix."),
		kong.UsageOnError(),
		flagVars(),
		kong.Configuration(kong.JSON, "/etc/ping-sweep/config.json", "~/.config/ping-sweep/config.json"),
	)
	if err != nil {
		panic(err)
	}

	kctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		parser.Errorf("%s", err)
		os.Exit(exitInvalidInput)
	}

	err = kctx.Run(&cli)
	os.Exit(exitCode(err))
}

func flagVars() kong.Vars {
	return kong.Vars{
		"default_max_hosts": strconv.Itoa(usecase.DefaultMaxHosts),
		"hard_max_hosts":    strconv.Itoa(usecase.HardMaxHosts),
	}
}

func exitCode(err error) int {
	var prefixErr *cidr.InvalidPrefixError

	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &prefixErr), errors.Is(err, usecase.ErrPrefixTooLarge):
		return exitInvalidInput
	default:
		return exitFailure
	}
}

// logger writes to stderr, stdout is reserved for the report.
func (c *CLI) logger() (*slog.Logger, error) {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse to log level: %w", err)
	}

	return logging.New(os.Stderr, level, c.LogFormat), nil
}

func (c *CLI) Validate() error {
	if !isLogLevel(c.LogLevel) {
		return fmt.Errorf("--log.level: must be one of debug, info, warn, error")
	}

	return nil
}

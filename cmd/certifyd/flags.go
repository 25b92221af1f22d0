package main

import (
	flag "github.com/spf13/pflag"
)

// cliFlags holds command-line options for the daemon.
type cliFlags struct {
	config  string
	addr    string
	verbose bool
	version bool
}

// parseFlags parses os.Args-style arguments into cliFlags.
func parseFlags(args []string) (*cliFlags, error) {
	fs := flag.NewFlagSet("certifyd", flag.ContinueOnError)

	f := &cliFlags{}
	fs.StringVarP(&f.config, "config", "c", "", "path to YAML config file")
	fs.StringVar(&f.addr, "addr", "", "listen address override (host:port)")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "enable debug logging")
	fs.BoolVar(&f.version, "version", false, "print version and exit")

	if err := fs.Parse(args[1:]); err != nil {
		return nil, err
	}
	return f, nil
}

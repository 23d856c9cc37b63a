package main

import (
	"flag"
	"fmt"
	"os"

	uhppoted "github.com/uhppoted/uhppoted-lib/command"

	"github.com/sitesync/sites-sync/commands"
	"github.com/sitesync/sites-sync/logging"
)

var cli = []uhppoted.Command{
	&commands.VersionCmd,
	&commands.SyncCmd,
	&commands.GetCmd,
	&commands.CompareCmd,
	&commands.ServeCmd,
}

var options = commands.Options{
	Debug: false,
	Env:   "",
}

var help = uhppoted.NewHelp(commands.APP, cli, nil)

func main() {
	flag.BoolVar(&options.Debug, "debug", options.Debug, "Enable debugging information")
	flag.StringVar(&options.Env, "env", options.Env, "Environment file to load (defaults to ./.env)")
	flag.Parse()

	cmd, err := uhppoted.Parse(cli, nil, help)
	if err != nil {
		fmt.Printf("\nError parsing command line: %v\n\n", err)
		os.Exit(1)
	}

	if cmd == nil {
		help.Execute()
		os.Exit(1)
	}

	if err = cmd.Execute(&options); err != nil {
		logging.Errorf(commands.APP, "%v", err)
		logging.Sync()
		os.Exit(1)
	}

	logging.Sync()
}

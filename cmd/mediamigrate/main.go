package main

import (
	"fmt"
	"os"
)

var cliVersion = "dev"

var commands = map[string]func([]string) error{
	"scan":         runScan,
	"check":        runCheck,
	"migrate":      runMigrate,
	"write-config": runWriteConfig,
}

func usage() {
	fmt.Fprintf(os.Stderr, `mediamigrate - Kodi library to MySQL/MariaDB migration (version %s)

Usage:
  mediamigrate <command> [options]

Commands:
  scan          Sweep the local network for MySQL/MariaDB servers
  check         Judge a server's library databases against a Kodi version
  migrate       Copy the local library databases onto a server
  write-config  Write the advancedsettings.xml pointing Kodi at a server

Run 'mediamigrate <command> -h' for command-specific help.
`, cliVersion)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	if cmd == "-h" || cmd == "--help" || cmd == "help" {
		usage()
		os.Exit(0)
	}
	if cmd == "-v" || cmd == "--version" || cmd == "version" {
		fmt.Println(cliVersion)
		os.Exit(0)
	}

	fn, ok := commands[cmd]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}

	if err := fn(os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// Command breakdown computes per-feature totals and exact-sum percentages.
//
// Usage:
//
//	breakdown run    [-config file] [-input table.csv] [-csv out.csv] [-sqlite out.db]
//	breakdown serve  [-config file] [-addr :8080]
//	breakdown submit [-config file] [-input table.csv]
//
// run computes in-process, serve exposes the HTTP API, and submit executes
// the breakdown workflow on a Temporal cluster.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "run":
		err = runCmd(ctx, args)
	case "serve":
		err = serveCmd(ctx, args)
	case "submit":
		err = submitCmd(ctx, args)
	case "-h", "-help", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: breakdown <run|serve|submit> [flags]")
}

// commonFlags are shared by every subcommand.
type commonFlags struct {
	config    string
	input     string
	hasHeader bool
	scale     int64
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.config, "config", "", "Path to a JSON configuration file")
	fs.StringVar(&c.input, "input", "", "Path to the input table (CSV)")
	fs.BoolVar(&c.hasHeader, "header", false, "Input table starts with a header line")
	fs.Int64Var(&c.scale, "scale", 0, "Rounding scale (default from configuration)")
}

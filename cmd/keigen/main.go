// Package main provides the keigen CLI.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/born-ml/keigen/matrix"
)

const version = "v0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "version":
		printVersion(os.Stdout)
	case "demo":
		if err := demoCommand(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("keigen - matrices backed by external engines")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version                      Show version and host features")
	fmt.Println("  demo [-engine cpu|wasm] [-v] Run the sample computation")
}

func demoCommand(args []string) error {
	fs := flag.NewFlagSet("demo", flag.ContinueOnError)
	var (
		engineName = fs.String("engine", "cpu", "Engine to run on (cpu or wasm)")
		verbose    = fs.Bool("v", false, "Log engine activity")
		plain      = fs.Bool("plain", false, "Disable styled output")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()
		matrix.SetLogger(logger)
	}

	r := newRenderer(os.Stdout, !*plain && isTerminal(os.Stdout))
	return runDemo(*engineName, r)
}

// Package cli implements the aocd command-line entry points.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

const dotEnvPath = ".env"

func Run(args []string) int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	loadServerEnvFromDotEnv(dotEnvPath)

	if len(args) == 0 {
		return runServe(ctx, nil)
	}

	switch args[0] {
	case "serve", "server":
		return runServe(ctx, args[1:])
	case "solve":
		return runSolve(ctx, args[1:])
	case "warm":
		return runWarm(ctx, args[1:])
	case "session":
		return runSession(ctx, args[1:])
	case "solvers":
		return runSolvers()
	case "version", "-v", "--version":
		printVersion()
		return 0
	case "-h", "--help", "help":
		printUsage()
		return 0
	default:
		if len(args[0]) > 0 && args[0][0] == '-' {
			return runServe(ctx, args)
		}
		fmt.Fprintln(os.Stderr, "unknown command:", args[0])
		printUsage()
		return 2
	}
}

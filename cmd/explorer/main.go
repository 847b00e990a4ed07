package main

import (
	"errors"
	"os"

	"github.com/jrsteele09/world-explorer/client/api"
)

// Exit codes for CLI commands.
const (
	ExitCodeSuccess      = 0
	ExitCodeError        = 1
	ExitCodeAuthRequired = 2
)

var errNotLoggedIn = errors.New("not logged in, run: explorer login")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(exitCode(err))
	}
	os.Exit(ExitCodeSuccess)
}

func exitCode(err error) int {
	if errors.Is(err, errNotLoggedIn) || api.IsUnauthorized(err) {
		return ExitCodeAuthRequired
	}
	return ExitCodeError
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/doeshing/voicectl/internal/infrastructure/cli"
	"github.com/doeshing/voicectl/internal/infrastructure/cli/commands"
	"github.com/doeshing/voicectl/internal/infrastructure/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}

	ctx := context.Background()
	root, cleanup, err := cli.NewRootCmd(ctx, cli.Options{Verbose: isVerbose()})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	defer cleanup()

	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, commands.ErrCommandFailed) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		return 1
	}
	return 0
}

func isVerbose() bool {
	v := os.Getenv("VOICECTL_DEBUG")
	return v == "1" || strings.EqualFold(v, "true")
}

package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/doeshing/voicectl/internal/app"
	"github.com/doeshing/voicectl/internal/infrastructure/cli/commands"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose    bool
	ConfigPath string
}

// NewRootCmd wires the cobra root command. The returned cleanup releases
// the history store and must run after the command finishes.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, func(), error) {
	container, err := app.BuildContainer(ctx, app.Options{
		ConfigPath: opts.ConfigPath,
		Verbose:    opts.Verbose,
	})
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := container.Close(context.WithoutCancel(ctx)); err != nil {
			container.Logger.Warn("closing history store failed", map[string]interface{}{"error": err.Error()})
		}
	}

	runCmd := commands.NewRunCommand(container)

	root := &cobra.Command{
		Use:   "voicectl [command text]",
		Short: "voicectl - voice and text command execution service",
		Long:  "voicectl maps natural-language commands onto host actions and keeps a command history.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			runCmd.SetContext(cmd.Context())
			return runCmd.RunE(runCmd, args)
		},
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		commands.NewServeCommand(container),
		runCmd,
		commands.NewInfoCommand(container),
		commands.NewHistoryCommand(container),
		commands.NewConfigCommand(container),
		commands.NewDoctorCommand(container),
		commands.NewVersionCommand(),
	)
	return root, cleanup, nil
}

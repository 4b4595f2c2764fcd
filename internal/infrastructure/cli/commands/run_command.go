package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/voicectl/internal/app"
	"github.com/doeshing/voicectl/internal/domain"
)

// ErrCommandFailed marks a processed command whose outcome was an error.
var ErrCommandFailed = errors.New("command failed")

// NewRunCommand creates the run command
func NewRunCommand(container *app.Container) *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "run <text...>",
		Short: "Process one command locally and record it in history",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container.Start(cmd.Context())

			host, _ := os.Hostname()
			rec, err := container.Commands.Execute(cmd.Context(), domain.ExecuteRequest{
				Text:          strings.Join(args, " "),
				Source:        domain.Source(source),
				ClientContext: "voicectl-cli/" + host,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), rec.Response)
			if rec.Status == domain.StatusError {
				return ErrCommandFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", string(domain.SourceText), "Command source (voice|text)")
	return cmd
}

// NewInfoCommand creates the info command
func NewInfoCommand(container *app.Container) *cobra.Command {
	kinds := make([]string, 0, len(domain.InfoIntents))
	for _, intent := range domain.InfoIntents {
		kinds = append(kinds, strings.TrimSuffix(string(intent), "-info"))
	}

	return &cobra.Command{
		Use:       "info <" + strings.Join(kinds, "|") + ">",
		Short:     "Query host information without recording history",
		Args:      cobra.ExactArgs(1),
		ValidArgs: kinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			intent := domain.Intent(strings.ToLower(args[0]) + "-info")
			if !intent.IsInfo() {
				return fmt.Errorf("unknown info kind %q, want one of %s", args[0], strings.Join(kinds, ", "))
			}
			info, err := container.Processor.Info(cmd.Context(), intent)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), info)
			return nil
		},
	}
}

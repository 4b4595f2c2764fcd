package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/voicectl/internal/app"
	configapp "github.com/doeshing/voicectl/internal/application/config"
	configinfra "github.com/doeshing/voicectl/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with all subcommands
func NewConfigCommand(container *app.Container) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect voicectl configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfiguration(cmd.Context(), cmd.OutOrStdout(), container)
		},
	}

	configCmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the effective configuration (file plus environment overrides)",
			RunE: func(cmd *cobra.Command, args []string) error {
				return showConfiguration(cmd.Context(), cmd.OutOrStdout(), container)
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the configuration file path",
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprintln(cmd.OutOrStdout(), container.ConfigLoader.Path())
				return nil
			},
		},
		&cobra.Command{
			Use:   "validate",
			Short: "Validate configuration file",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := container.ConfigProvider.Load(cmd.Context())
				if err != nil {
					return fmt.Errorf("configuration validation failed: %w", err)
				}
				if err := configapp.Validate(cfg); err != nil {
					return fmt.Errorf("configuration validation failed: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), MsgConfigurationValid)
				return nil
			},
		},
		&cobra.Command{
			Use:   "diff",
			Short: "Show diff versus default configuration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return showConfigurationDiff(cmd.Context(), cmd.OutOrStdout(), container)
			},
		},
	)

	return configCmd
}

// showConfiguration displays the full configuration in YAML format
func showConfiguration(ctx context.Context, out io.Writer, container *app.Container) error {
	cfg, err := container.ConfigProvider.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}

	fmt.Fprint(out, string(data))
	return nil
}

// showConfigurationDiff shows the difference between current and default configuration
func showConfigurationDiff(ctx context.Context, out io.Writer, container *app.Container) error {
	currentConfig, err := container.ConfigProvider.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load current configuration: %w", err)
	}

	diff := cmp.Diff(configinfra.Default(), currentConfig)
	if diff == "" {
		fmt.Fprintln(out, MsgNoDifferencesFromDefault)
		return nil
	}

	fmt.Fprintln(out, diff)
	return nil
}

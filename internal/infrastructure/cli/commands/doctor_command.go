package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/voicectl/internal/app"
	"github.com/doeshing/voicectl/internal/domain"
)

// NewDoctorCommand creates the doctor command
func NewDoctorCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose config, storage, platform programs and guardrail",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctorDiagnostics(cmd, cmd.OutOrStdout(), container)
		},
	}
}

// runDoctorDiagnostics runs environment diagnostics
func runDoctorDiagnostics(cmd *cobra.Command, out io.Writer, container *app.Container) error {
	if container.DoctorService == nil {
		return errors.New(ErrDoctorServiceUnavailable)
	}

	report, err := container.DoctorService.Run(cmd.Context())

	// Display report even if there were errors
	displayDoctorReport(out, report)

	if err != nil {
		return fmt.Errorf("diagnostics completed with errors: %w", err)
	}
	if report.Failed() {
		return errors.New("one or more checks failed")
	}
	return nil
}

// displayDoctorReport prints one line per check followed by a tally.
func displayDoctorReport(out io.Writer, report domain.HealthReport) {
	tally := map[domain.HealthStatus]int{}
	for _, check := range report.Checks {
		tally[check.Status]++
		fmt.Fprintf(out, "[%s] %s - %s\n",
			strings.ToUpper(string(check.Status)),
			check.Name,
			check.Details)
	}
	fmt.Fprintf(out, "\n%d ok, %d warnings, %d errors\n",
		tally[domain.HealthOK], tally[domain.HealthWarn], tally[domain.HealthError])
}

package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/aura-go/internal/application/doctor"
	"github.com/doeshing/aura-go/internal/domain"
	"github.com/doeshing/aura-go/internal/infrastructure/cli/helpers"
)

// NewDoctorCommand creates the doctor command
func NewDoctorCommand(env *helpers.Env) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose environment setup",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctorDiagnostics(cmd, cmd.OutOrStdout(), env)
		},
	}
}

// runDoctorDiagnostics runs environment diagnostics. When the container
// cannot be built only the config checks run.
func runDoctorDiagnostics(cmd *cobra.Command, out io.Writer, env *helpers.Env) error {
	ctx := cmd.Context()

	service := &doctor.Service{ConfigProvider: env.Loader()}
	container, buildErr := env.Container(ctx)
	if buildErr == nil {
		service = container.DoctorService
	}

	report, err := service.Run(ctx)

	// Display report even if there were errors
	displayDoctorReport(out, report)

	if err != nil {
		return fmt.Errorf("diagnostics completed with errors: %w", err)
	}
	if buildErr != nil {
		return buildErr
	}
	if !report.Healthy() {
		return fmt.Errorf("diagnostics found problems")
	}
	return nil
}

// displayDoctorReport displays the health check report
func displayDoctorReport(out io.Writer, report domain.HealthReport) {
	for _, check := range report.Checks {
		fmt.Fprintf(out, "[%s] %s - %s\n",
			strings.ToUpper(string(check.Status)),
			check.Name,
			check.Details)
	}
}

package cmd

import (
	"github.com/communityhub/importer/internal/evalcmd"
	"github.com/spf13/cobra"
)

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Column detection evaluation tools",
		Long: `Evaluation tools for measuring how well the alias table maps real header
rows onto contact fields.

Supports scoring labeled datasets, inspecting individual cases, and
generating reports from saved runs.`,
	}

	cmd.AddCommand(evalcmd.NewRunCmd())
	cmd.AddCommand(evalcmd.NewReportCmd())
	cmd.AddCommand(evalcmd.NewInspectCmd())

	return cmd
}

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/photonhq/photon/internal/dataset"
	"github.com/photonhq/photon/internal/presentation"
	"github.com/photonhq/photon/internal/render"
	"github.com/photonhq/photon/internal/workflow"
)

var (
	genURL      string
	genFormat   string
	genVariable string
	genTitle    string
	genOut      string
	genRun      bool
	genJSON     bool
)

// errWorkflowFailed marks a generate or run that reached the error phase.
// The details have already been printed.
var errWorkflowFailed = errors.New("workflow failed")

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate an analysis notebook for a dataset",
	Long: `Generate an analysis notebook for a dataset and save it as .ipynb.

With --run the notebook's code is executed remotely afterwards; stdout,
stderr and the exit code are printed and any figures are saved next to the
notebook.

Examples:
  photon generate --url https://example.org/temps.csv --variable anomaly
  photon generate -u https://example.org/ice.nc -f netcdf -v extent --run
  photon generate -u https://example.org/temps.csv -v anomaly --title "Warming trend" -o notebooks --json`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&genURL, "url", "u", "", "dataset URL (required)")
	generateCmd.Flags().StringVarP(&genFormat, "format", "f", string(dataset.FormatCSV), "dataset format: csv, netcdf, hdf5 or json")
	generateCmd.Flags().StringVarP(&genVariable, "variable", "v", "", "variable of interest (required)")
	generateCmd.Flags().StringVarP(&genTitle, "title", "t", "", "notebook title")
	generateCmd.Flags().StringVarP(&genOut, "out", "o", "", "output directory (default from config)")
	generateCmd.Flags().BoolVar(&genRun, "run", false, "execute the notebook after generating it")
	generateCmd.Flags().BoolVar(&genJSON, "json", false, "print the outcome as JSON")
	_ = generateCmd.MarkFlagRequired("url")
	_ = generateCmd.MarkFlagRequired("variable")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	format, err := dataset.ParseFormat(genFormat)
	if err != nil {
		return err
	}
	ref := dataset.Reference{URL: genURL, Format: format, Variable: genVariable, Title: genTitle}

	outDir := genOut
	if outDir == "" {
		outDir = cfg.Workflow.ExportDir
	}

	cleanup, err := initLogging("photon-generate")
	if err != nil {
		return err
	}
	defer cleanup()

	be, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = be.Close() }()

	machine := workflow.New(be.gateway,
		workflow.WithExecutionTimeout(cfg.Workflow.ExecutionTimeoutSeconds),
		workflow.WithDefaultTitle(cfg.Workflow.DefaultTitle),
		workflow.WithTracer(be.provider.Tracer()),
	)

	st, err := machine.Submit(cmd.Context(), ref)
	if err != nil {
		return err
	}

	var exportPath string
	if st.HasArtifact() {
		exp, err := machine.Export()
		if err != nil {
			return err
		}
		if exportPath, err = exp.WriteTo(outDir); err != nil {
			return err
		}
	}

	if genRun && st.Phase == workflow.PhaseGenerated {
		if st, err = machine.Run(cmd.Context()); err != nil {
			return err
		}
	}

	view := render.Project(st)
	var imagePaths []string
	if len(view.Images) > 0 {
		if imagePaths, err = render.SaveImages(outDir, view.Images); err != nil {
			return err
		}
	}

	formatter := presentation.NewFormatter(cmd.OutOrStdout())
	dto := presentation.FromView(view, exportPath, imagePaths)
	if genJSON {
		err = formatter.JSON(dto)
	} else {
		err = formatter.WorkflowSummary(dto)
	}
	if err != nil {
		return err
	}

	if st.Phase == workflow.PhaseError {
		return errWorkflowFailed
	}
	if st.Result != nil && st.Result.Failed() {
		return fmt.Errorf("program exited with code %d", st.Result.ExitCode)
	}
	return nil
}

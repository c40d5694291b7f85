package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/photonhq/photon/internal/notebook"
	"github.com/photonhq/photon/internal/presentation"
	"github.com/photonhq/photon/internal/render"
	"github.com/photonhq/photon/internal/workflow"
)

var (
	runOut  string
	runJSON bool
)

var runCmd = &cobra.Command{
	Use:   "run <notebook.ipynb>",
	Short: "Execute a saved notebook remotely",
	Long: `Execute the code cells of a saved notebook on the remote execution service.

Markdown cells are never sent. Figures are saved to --out (default: the
notebook's directory).

Examples:
  photon run workflow.ipynb
  photon run notebooks/rain.ipynb --json | jq .execution.exit_code`,
	Args: cobra.ExactArgs(1),
	RunE: runNotebook,
}

func init() {
	runCmd.Flags().StringVarP(&runOut, "out", "o", "", "directory for figures")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print the outcome as JSON")
	rootCmd.AddCommand(runCmd)
}

func runNotebook(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading notebook: %w", err)
	}
	art, err := notebook.Parse(string(data))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	source := notebook.ExtractExecutableSource(art)
	if source == "" {
		return fmt.Errorf("%s has no code cells", path)
	}

	outDir := runOut
	if outDir == "" {
		outDir = filepath.Dir(path)
	}

	cleanup, err := initLogging("photon-run")
	if err != nil {
		return err
	}
	defer cleanup()

	be, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = be.Close() }()

	res, err := be.gateway.ExecuteCode(cmd.Context(), source, cfg.Workflow.ExecutionTimeoutSeconds)
	if err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}

	st := workflow.State{
		Phase:    workflow.PhaseExecuted,
		Artifact: art,
		Result:   &res,
		Warning:  workflow.ExecutionWarning(res),
	}
	view := render.Project(st)
	var imagePaths []string
	if len(view.Images) > 0 {
		if imagePaths, err = render.SaveImages(outDir, view.Images); err != nil {
			return err
		}
	}

	dto := presentation.FromView(view, "", imagePaths)
	dto.Title = filepath.Base(path)
	formatter := presentation.NewFormatter(cmd.OutOrStdout())
	if runJSON {
		err = formatter.JSON(dto)
	} else {
		err = formatter.WorkflowSummary(dto)
	}
	if err != nil {
		return err
	}
	if res.Failed() {
		return fmt.Errorf("program exited with code %d", res.ExitCode)
	}
	return nil
}

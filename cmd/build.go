package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ChainSafe/go-nasm/builder"
	"github.com/ChainSafe/go-nasm/manifest"
	"github.com/ChainSafe/go-nasm/renderer"
	"github.com/urfave/cli/v2"
)

var (
	JobsFlag = &cli.IntFlag{
		Name:        "jobs",
		Aliases:     []string{"j"},
		Usage:       "number of assembler processes to run at once",
		EnvVars:     []string{"NASM_GO_JOBS"},
		Required:    false,
		DefaultText: "number of CPUs",
	}
	KeepGoingFlag = &cli.BoolFlag{
		Name:     "keep-going",
		Aliases:  []string{"k"},
		Usage:    "keep assembling the remaining files after a failure",
		Required: false,
		Value:    false,
	}
	ReportFormatFlag = &cli.StringFlag{
		Name:     "report-format",
		Usage:    "format of the report. Options: json, text",
		Required: false,
		Value:    "text",
	}
	ReportOutputPathFlag = &cli.PathFlag{
		Name:     "report-output-path",
		Usage:    "output file path for report. Default: stdout",
		Required: false,
	}
)

func CreateBuildCommand(action cli.ActionFunc) *cli.Command {
	return &cli.Command{
		Name:        "build",
		Usage:       "Assembles every job of a build manifest",
		ArgsUsage:   "<manifest.yaml|manifest.json>",
		Description: "Assembles every job of a build manifest concurrently and reports the outcome of each job",
		Action:      action,
		Flags: []cli.Flag{
			AssemblerFlag,
			JobsFlag,
			KeepGoingFlag,
			ReportFormatFlag,
			ReportOutputPathFlag,
		},
	}
}

var BuildCommand = CreateBuildCommand(BuildManifest)

func BuildManifest(ctx *cli.Context) error {
	path := ctx.Args().First()
	if path == "" {
		return errors.New("missing manifest file")
	}

	// fail on a bad report format before anything is assembled
	rendererInstance, err := renderer.NewRenderer(ctx.String(ReportFormatFlag.Name))
	if err != nil {
		return err
	}

	m, err := manifest.LoadManifest(path)
	if err != nil {
		return fmt.Errorf("error loading manifest: %w", err)
	}
	if assembler := ctx.Path(AssemblerFlag.Name); assembler != "" {
		// relative paths given on the command line are relative to the working directory
		if strings.ContainsRune(assembler, filepath.Separator) {
			if assembler, err = filepath.Abs(assembler); err != nil {
				return fmt.Errorf("unable to determine absolute path: %w", err)
			}
		}
		m.Assembler = assembler
	}
	reqs, err := m.Requests()
	if err != nil {
		return fmt.Errorf("invalid manifest: %w", err)
	}

	results, buildErr := builder.Run(ctx.Context, reqs, builder.Options{
		Jobs:      ctx.Int(JobsFlag.Name),
		KeepGoing: ctx.Bool(KeepGoingFlag.Name),
	})

	if err := writeReport(ctx, rendererInstance, results, ctx.Path(ReportOutputPathFlag.Name)); err != nil {
		return fmt.Errorf("unable to write report: %w", err)
	}
	if buildErr != nil {
		return cli.Exit(buildErr.Error(), 1)
	}
	return nil
}

// writeReport outputs the results with the given renderer.
func writeReport(ctx *cli.Context, r renderer.Renderer, results []*builder.Result, outputPath string) error {
	if outputPath == "" {
		return r.Render(results, ctx.App.Writer)
	}

	absPath, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("unable to determine absolute path: %w", err)
	}
	output, err := os.OpenFile(absPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to open output file: %w", err)
	}
	defer func() {
		_ = output.Close()
	}()
	return r.Render(results, output)
}

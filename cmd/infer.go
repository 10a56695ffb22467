package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/nullpx/pypm/internal/config"
	"github.com/nullpx/pypm/internal/domain"
	"github.com/nullpx/pypm/internal/install"
	"github.com/nullpx/pypm/internal/logging"
	"github.com/nullpx/pypm/internal/manifest"
	"github.com/nullpx/pypm/internal/progress"
	"github.com/nullpx/pypm/pkg/pypm"
)

var (
	inferConfigPath string
	inferIndexURL   string
	inferOffline    bool
	inferJSON       bool
	inferQuiet      bool
	inferWrite      bool
	inferInstall    bool
	inferDryRun     bool
	inferParseJobs  int
	inferLookupJobs int
)

var inferCmd = &cobra.Command{
	Use:   "infer <directory>",
	Short: "Scan, parse, and resolve a project's third-party dependencies",
	Long: `Infer runs the complete pipeline: it walks the project for Python
source files, classifies every import each file contains, and resolves
the runtime ones to PyPI distribution names. By default it only
reports what it found; pass --write to merge the results into the
project's manifest, or --install to hand the resolved list to pip.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runInfer,
}

func init() {
	inferCmd.Flags().StringVar(&inferConfigPath, "config", "", "path to a .pypmrc.yml file (default: auto-detect in <directory>)")
	inferCmd.Flags().StringVar(&inferIndexURL, "index-url", "", "override the PyPI-compatible JSON index base URL")
	inferCmd.Flags().BoolVar(&inferOffline, "offline", false, "skip network lookups; only locally-known modules resolve")
	inferCmd.Flags().BoolVar(&inferJSON, "json", false, "emit machine-readable JSON instead of a text summary")
	inferCmd.Flags().BoolVarP(&inferQuiet, "quiet", "q", false, "suppress progress output")
	inferCmd.Flags().BoolVar(&inferWrite, "write", false, "merge resolved dependencies into the project manifest")
	inferCmd.Flags().BoolVar(&inferInstall, "install", false, "install resolved dependencies with pip after inferring them")
	inferCmd.Flags().BoolVar(&inferDryRun, "dry-run", false, "with --install, print the pip command instead of running it")
	inferCmd.Flags().IntVar(&inferParseJobs, "parse-workers", 0, "parse worker pool size (default: min(NumCPU,32))")
	inferCmd.Flags().IntVar(&inferLookupJobs, "lookup-workers", 0, "index lookup worker pool size (default: 64)")
	rootCmd.AddCommand(inferCmd)
}

func runInfer(cmd *cobra.Command, args []string) error {
	dir, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("cannot resolve path: %w", err)
	}

	opts := domain.Options{
		Verbose:       verbose,
		Offline:       inferOffline,
		IndexBaseURL:  inferIndexURL,
		ParseWorkers:  inferParseJobs,
		LookupWorkers: inferLookupJobs,
	}
	projectCfg, err := config.Load(dir, inferConfigPath)
	if err != nil {
		return err
	}
	projectCfg.ApplyToOptions(&opts)

	result, err := runInferPipeline(cmd, dir, opts)
	if err != nil {
		return &domain.ExitError{Code: 1, Message: fmt.Sprintf("infer %s: %s", dir, err)}
	}

	for _, w := range result.Warnings {
		logging.L().Warn("%s", w.String())
	}

	if inferJSON {
		if err := printInferJSON(cmd, result); err != nil {
			return err
		}
	} else {
		printInferSummary(cmd, result)
	}

	if inferWrite {
		if err := writeManifest(dir, result); err != nil {
			return &domain.ExitError{Code: 1, Message: err.Error()}
		}
	}

	if inferInstall {
		installer := &install.Installer{}
		if err := installer.Install(cmd.Context(), result.Dependencies, inferDryRun); err != nil {
			return &domain.ExitError{Code: 1, Message: fmt.Sprintf("install: %s", err)}
		}
	}

	return nil
}

// runInferPipeline drives scan, parse, and resolve individually rather
// than through pypm.Infer, so each stage can report progress: an
// indeterminate spinner for the scan and resolve stages (their
// worklist size is not known, or not worth a bar, up front) and a
// bounded progress bar for the parse stage, where the file count is
// known before the first worker starts.
func runInferPipeline(cmd *cobra.Command, dir string, opts domain.Options) (pypm.InferResult, error) {
	pcfg := progress.NewConfig(inferQuiet, inferJSON, noColor)
	spin := progress.NewSpinner(os.Stderr)
	timings := make(map[string]time.Duration)
	var warnings []domain.Warning

	if pcfg.Enabled {
		spin.Start("scanning for Python files...")
	}
	start := time.Now()
	paths, err := pypm.Scan(cmd.Context(), dir, opts)
	timings["scan"] = time.Since(start)
	spin.Stop("")
	if err != nil {
		return pypm.InferResult{}, err
	}

	bar := progress.NewBar(pcfg, int64(len(paths)), "parsing")
	opts.OnFileParsed = func() {
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	start = time.Now()
	parseResults, parseWarnings := pypm.ParseMany(cmd.Context(), paths, opts)
	timings["parse"] = time.Since(start)
	if bar != nil {
		_ = bar.Finish()
	}
	warnings = append(warnings, parseWarnings...)

	seen := make(map[string]bool)
	var candidates []domain.ModuleName
	for _, r := range parseResults {
		for _, m := range r.Candidates() {
			top := m.TopLevel()
			if top == "" || seen[top] {
				continue
			}
			seen[top] = true
			candidates = append(candidates, m)
		}
	}

	if pcfg.Enabled {
		spin.Start("resolving dependencies...")
	}
	start = time.Now()
	resolveResult, err := pypm.Resolve(cmd.Context(), candidates, dir, opts)
	timings["resolve"] = time.Since(start)
	spin.Stop("")
	if err != nil {
		return pypm.InferResult{}, fmt.Errorf("resolve: %w", err)
	}
	warnings = append(warnings, resolveResult.Warnings...)

	return pypm.InferResult{
		Dependencies: resolveResult.Resolved,
		Unresolved:   resolveResult.Unresolved,
		Warnings:     warnings,
		Timings:      timings,
	}, nil
}

func printInferSummary(cmd *cobra.Command, result pypm.InferResult) {
	out := cmd.OutOrStdout()
	if len(result.Dependencies) == 0 {
		fmt.Fprintln(out, "no third-party dependencies found")
	}
	for _, d := range result.Dependencies {
		fmt.Fprintln(out, d.String())
	}
	if len(result.Unresolved) > 0 {
		logging.L().Warn("%d module(s) could not be resolved to a distribution:", len(result.Unresolved))
		for _, m := range result.Unresolved {
			fmt.Fprintf(cmd.ErrOrStderr(), "  %s %s\n", logging.DimText("-"), m)
		}
	}
}

type inferJSONReport struct {
	Dependencies []string `json:"dependencies"`
	Unresolved   []string `json:"unresolved"`
	Warnings     []string `json:"warnings"`
}

func printInferJSON(cmd *cobra.Command, result pypm.InferResult) error {
	report := inferJSONReport{}
	for _, d := range result.Dependencies {
		report.Dependencies = append(report.Dependencies, d.String())
	}
	for _, m := range result.Unresolved {
		report.Unresolved = append(report.Unresolved, string(m))
	}
	for _, w := range result.Warnings {
		report.Warnings = append(report.Warnings, w.String())
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func writeManifest(dir string, result pypm.InferResult) error {
	path := manifest.Detect(dir)
	m, err := manifest.Load(path)
	if err != nil {
		return fmt.Errorf("load manifest: %w", err)
	}
	merged := manifest.Merge(m, result.Dependencies)
	if err := manifest.Write(merged); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	logging.L().Success("wrote %d dependencies to %s", len(merged.Dependencies), path)
	return nil
}

package cmd

import (
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/spf13/cobra"

	"github.com/posixfs/fs-contract-tests/config"
	"github.com/posixfs/fs-contract-tests/framework"
	"github.com/posixfs/fs-contract-tests/fstests"
	"github.com/posixfs/fs-contract-tests/loggers/cli"
)

var (
	configurationFile string
	listFeatures      bool
	exact             bool
	verbose           bool
	basePath          string
)

var root = &cobra.Command{
	Use:   "fs-contract-tests [TEST_PATTERNS...]",
	Short: "Conformance tests for POSIX filesystem semantics",
	Long: "Runs filesystem-semantics checks against the filesystem containing the\n" +
		"target path and reports which POSIX behaviors hold. Positional arguments\n" +
		"select tests by substring match against their names.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	root.Flags().StringVarP(&configurationFile, "configuration-file", "c", "", "path of the configuration file")
	root.Flags().BoolVarP(&listFeatures, "list-features", "l", false, "list opt-in features and exit")
	root.Flags().BoolVarP(&exact, "exact", "e", false, "match test names exactly instead of by substring")
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	root.Flags().StringVarP(&basePath, "path", "p", "", "path under which the test contexts are created (default: working directory)")
}

// exitCode is set by run: 0 when every executed instance passed or was
// skipped, 1 when any failed.
var exitCode int

// Execute runs the root command. The process exits 0 when every executed
// instance passed or was skipped, 1 when any failed, and 2 when the run
// itself could not proceed.
func Execute() {
	log.SetHandler(cli.Default)
	if err := root.Execute(); err != nil {
		log.WithError(err).Error("run aborted")
		os.Exit(2)
	}
	os.Exit(exitCode)
}

func run(_ *cobra.Command, patterns []string) error {
	if listFeatures {
		for _, f := range config.KnownFeatures {
			fmt.Printf("%s: %s\n", f.Name, f.Doc)
		}
		return nil
	}
	if verbose {
		log.SetLevel(log.DebugLevel)
	}

	cfg := config.Default()
	if configurationFile != "" {
		loaded, err := config.Load(configurationFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	path := basePath
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		path = wd
	}

	registry, err := fstests.NewRegistry()
	if err != nil {
		return err
	}

	runRoot, err := os.MkdirTemp(path, "fscontract")
	if err != nil {
		return err
	}
	defer func() {
		if err := os.RemoveAll(runRoot); err != nil {
			log.WithField("path", runRoot).WithError(err).Warn("failed to remove run directory")
		}
	}()

	filter := framework.NameFilter{Patterns: patterns, Exact: exact}
	if filter.IsDefined() {
		fmt.Printf("Running tests matching %s\n\n", filter)
	}

	runner := &framework.Runner{
		Registry: registry,
		Config:   cfg,
		Filter:   filter,
		Logger:   &framework.ConsoleTestLogger{Verbose: verbose, Docs: fstests.Docs()},
		BaseDir:  runRoot,
	}
	results, err := runner.Run()
	framework.PrintResults(results)
	if err != nil {
		if framework.IsFatal(err) {
			log.WithError(err).Error("process state could not be restored, remaining tests were not run")
		}
		return err
	}
	if !results.OK() {
		exitCode = 1
	}
	return nil
}

// Command quickstart creates a new Go API project from the bundled API server.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"go-quickstart/internal/scaffold"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type options struct {
	module      string
	templateDir string
	dryRun      bool
	verbose     bool
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "quickstart [target-dir]",
		Short: "Create a Go API project from the quickstart server",
		Long: `quickstart writes the starter files and the complete API server
(users, OAuth, S3 files, maps, delivery tracking) into target-dir, the current
directory when omitted. Imports are rewritten to the new module path. With
--template-dir only that directory is copied: files ending in .tmpl are
rendered with the module and project name, and dot_ prefixes become dotfiles.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "."
			if len(args) == 1 {
				target = args[0]
			}
			return run(cmd, target, opts)
		},
	}

	cmd.Flags().StringVar(&opts.module, "module", "", "Go module path (default: target directory name)")
	cmd.Flags().StringVar(&opts.templateDir, "template-dir", "", "read the template from this directory instead of the bundled one")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "list the files that would be written")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log every file")
	return cmd
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.DisableStacktrace = true
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

func run(cmd *cobra.Command, target string, opts options) error {
	logger, err := newLogger(opts.verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	abs, err := filepath.Abs(target)
	if err != nil {
		return err
	}
	project := filepath.Base(abs)
	module := opts.module
	if module == "" {
		module = project
	}

	copyOpts := scaffold.Options{
		Data:    scaffold.Data{ModuleName: module, ProjectName: project},
		DryRun:  opts.dryRun,
		Verbose: opts.verbose,
		Log:     logger,
	}
	var files []scaffold.File
	if opts.templateDir != "" {
		info, statErr := os.Stat(opts.templateDir)
		if statErr != nil {
			return fmt.Errorf("template dir: %w", statErr)
		}
		if !info.IsDir() {
			return fmt.Errorf("template dir %s is not a directory", opts.templateDir)
		}
		files, err = scaffold.Copy(os.DirFS(opts.templateDir), abs, copyOpts)
	} else {
		files, err = scaffold.CopyProject(abs, copyOpts)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.dryRun {
		fmt.Fprintf(out, "Would create %d files in %s:\n", len(files), abs)
		for _, f := range files {
			rel, _ := filepath.Rel(abs, f.Target)
			fmt.Fprintf(out, "   %s\n", filepath.ToSlash(rel))
		}
		return nil
	}

	fmt.Fprintln(out, "✅ Quickstart Go project created!")
	fmt.Fprintln(out, "👉 Next steps:")
	if target != "." {
		fmt.Fprintf(out, "   cd %s\n", target)
	}
	fmt.Fprintln(out, "   go mod tidy")
	fmt.Fprintln(out, "   go run ./cmd/api")
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// Package cli builds the image-tools command line: one command per
// registered action plus the pipeline command.
//
// Every command follows the same three stages: resolve the input image,
// run the action (or the pipeline), and serialize the result.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ironsheep/image-tools/internal/action"
	"github.com/ironsheep/image-tools/internal/action/builtin"
	"github.com/ironsheep/image-tools/internal/config"
	"github.com/ironsheep/image-tools/internal/imaging"
	"github.com/ironsheep/image-tools/internal/logging"
	"github.com/ironsheep/image-tools/internal/output"
	"github.com/ironsheep/image-tools/internal/pipeline"
)

// Exit codes.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitParameter = 2
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string
	BuildTime string
	GitCommit string
}

// App is one command-line invocation.
type App struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	build    BuildInfo
	registry *action.Registry
	source   *imaging.Source
	executor *pipeline.Executor
	viper    *viper.Viper
	cfg      *config.Config

	cfgFile string

	// args is the raw command line, kept for option pairing.
	args []string
}

// New returns an app wired to the process's standard streams with every
// built-in action registered.
func New(build BuildInfo) (*App, error) {
	src := imaging.NewSource()
	reg, err := builtin.NewRegistry(src)
	if err != nil {
		return nil, err
	}
	return &App{
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		build:    build,
		registry: reg,
		source:   src,
		executor: pipeline.NewExecutor(reg),
		viper:    config.New(),
	}, nil
}

// Registry returns the action registry.
func (a *App) Registry() *action.Registry {
	return a.registry
}

// Run executes the command line args (without the program name) and returns
// the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	a.args = args
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetIn(a.Stdin)
	root.SetOut(a.Stdout)
	root.SetErr(a.Stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}

	fmt.Fprintf(a.Stderr, "Error: %s\n", err)
	if action.IsParameterError(err) {
		return ExitParameter
	}
	return ExitFailure
}

func (a *App) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "image-tools",
		Short: "Image processing actions that can be chained into a pipeline",
		Long: `image-tools applies image processing actions to an image.

Every action reads IMAGE from a local path, a file://, http:// or https://
URI, or as a line of Base64 from standard input when IMAGE is omitted or "-".
Images are written to the --output file, converting the container format to
match its extension, or as Base64 to standard output. Other results are
written as JSON.

Actions can be chained with the pipeline command.`,
		Version:           a.build.Version,
		SilenceErrors:     true,
		SilenceUsage:      true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		Args:              cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return action.Errorf("Unknown action %q. Run 'image-tools --help' for the list of actions.", args[0])
			}
			return cmd.Help()
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("image-tools %s\n  Build time: %s\n  Git commit: %s\n",
		a.build.Version, a.build.BuildTime, a.build.GitCommit))
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &action.ParameterError{Msg: err.Error(), Err: err}
	})

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./.image-tools.yaml or $HOME/.image-tools.yaml)")
	root.PersistentFlags().String("log-level", "", "log level (trace, debug, info, warn, error)")

	root.AddCommand(a.pipelineCommand())
	for _, act := range a.registry.Actions() {
		root.AddCommand(a.actionCommand(act))
	}
	return root
}

// setup loads the configuration and initializes logging and the image source.
func (a *App) setup(cmd *cobra.Command) error {
	if err := config.BindFlags(a.viper, cmd.Root().PersistentFlags()); err != nil {
		return err
	}
	cfg, err := config.Load(a.viper, a.cfgFile)
	if err != nil {
		return err
	}
	if err := logging.Init(cfg.LogLevel, a.Stderr); err != nil {
		return errors.Wrap(err, "invalid log level")
	}
	cfg.Configure(a.source)
	a.cfg = cfg

	logging.Debug("Configuration loaded", "file", cfg.File, "log_level", cfg.LogLevel,
		"concurrency", cfg.Concurrency)
	return nil
}

// serialize writes res to the --output file or to standard output.
func (a *App) serialize(res action.Result, input *imaging.Handle, path, format string) error {
	s := &output.Serializer{JPEGQuality: a.cfg.JPEGQuality}
	return s.Write(res, input, output.Target{Path: path, Format: format, Stdout: a.Stdout})
}

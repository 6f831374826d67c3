package cli

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mackim-3768/Aegis-AI-DAS/internal/config"
)

// RootOptions holds global flags for all commands, plus the configuration
// and logger built from them before any subcommand runs.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	Config config.Config
	Logger *zap.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the aegis CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{Config: config.Default(), Logger: zap.NewNop()}

	cmd := &cobra.Command{
		Use:   "aegis",
		Short: "Aegis - driver assistance decision core",
		Long: `Aegis is a simulated driver-assistance decision core.

Sensor readings ("context" tools) are edited by hand or through scenario
presets. A fixed rule engine turns them into a severity, a summary and a
set of actuator commands ("action" tools), which are merged into state.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}

			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load config", err)
			}
			opts.Config = cfg
			opts.Logger = newLogger(cfg.Log, opts.Verbose, cmd.ErrOrStderr())
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = opts.Logger.Sync()
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (debug logging)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default $"+config.EnvConfig+")")

	cmd.AddCommand(NewToolsCommand(opts))
	cmd.AddCommand(NewScenariosCommand(opts))
	cmd.AddCommand(NewRulesCommand(opts))
	cmd.AddCommand(NewInferCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// newLogger builds the process logger. json selects the production encoder
// and console the development one; verbose forces debug level.
func newLogger(cfg config.LogConfig, verbose bool, w io.Writer) *zap.Logger {
	level := zap.NewAtomicLevelAt(cfg.ZapLevel())
	if verbose {
		level.SetLevel(zapcore.DebugLevel)
	}

	var encoder zapcore.Encoder
	if cfg.Format == "json" {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}
	return zap.New(zapcore.NewCore(encoder, zapcore.AddSync(w), level))
}

// formatter returns an OutputFormatter over the command's stdout.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: o.Format, Writer: cmd.OutOrStdout()}
}

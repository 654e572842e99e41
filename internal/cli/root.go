package cli

import (
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/chainq/internal/structure"
)

// RootOptions holds global flags for all commands.
// After config loading they hold the merged configuration.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string
	Names      string // "sequential" | "uuid"
	Strict     bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the chainq CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "chainq",
		Short: "chainq - query chains to query models",
		Long: `Parse operator chains over named sources into structured query models.

Queries are declared in CUE as a source plus a list of operators with lambda
bodies. chainq resolves every lambda parameter to the clause that produces
its value and renders the result as from/where/orderby/select clauses.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := LoadConfig(opts.ConfigFile, cmd.Root().PersistentFlags())
			if err != nil {
				return NewExitError(ExitCommandError, err.Error())
			}
			opts.apply(cfg)

			if cfg.File != "" {
				opts.Logger(cmd.ErrOrStderr()).Debug("using config file", "path", cfg.File)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default: ./"+DefaultConfigFile+")")
	cmd.PersistentFlags().StringVar(&opts.Names, "names", NamesSequential, "generated identifier names (sequential|uuid)")
	cmd.PersistentFlags().BoolVar(&opts.Strict, "strict", false, "treat model validation warnings as errors")

	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return ValidFormats, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("names", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return ValidNames, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	cmd.AddCommand(NewParseCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

func (o *RootOptions) apply(cfg *Config) {
	o.Format = cfg.Format
	o.Verbose = cfg.Verbose
	o.Names = cfg.Names
	o.Strict = cfg.Strict
}

// Logger returns a text logger on w: debug level when verbose, warnings
// only otherwise.
func (o *RootOptions) Logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NameGenerator returns the configured generator for made-up identifiers.
func (o *RootOptions) NameGenerator() structure.NameGenerator {
	if o.Names == NamesUUID {
		return structure.UUIDNameGenerator{}
	}
	return &structure.SequentialNameGenerator{}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

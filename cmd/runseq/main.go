// Command runseq replays scripts against run-compressed sequences.
//
// Usage:
//
//	runseq replay script.yaml [--indent] [--verbose]
package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/geofduf/runseq/internal/script"
)

var (
	logger  *zap.Logger
	verbose bool
	indent  bool
)

var rootCmd = &cobra.Command{
	Use:           "runseq",
	Short:         "Run-compressed sequence toolkit",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var replayCmd = &cobra.Command{
	Use:   "replay <script>",
	Short: "Execute a script and print the results of its queries",
	Long: `Loads a YAML script describing initial sequences, statements and queries,
executes the statements against a store and prints the query results as JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	replayCmd.Flags().BoolVar(&indent, "indent", false, "indent JSON output")
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	s, err := script.Load(args[0])
	if err != nil {
		return err
	}
	logger.Debug("script loaded",
		zap.String("path", args[0]),
		zap.String("element", s.Element),
		zap.Int("sequences", len(s.Sequences)),
		zap.Int("statements", len(s.Statements)),
		zap.Int("queries", len(s.Queries)))

	results, err := script.Run(s, logger)
	if err != nil {
		return err
	}

	var out []byte
	if indent {
		out, err = json.MarshalIndent(results, "", "  ")
	} else {
		out, err = json.Marshal(results)
	}
	if err != nil {
		return errors.Wrap(err, "failed to encode results")
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

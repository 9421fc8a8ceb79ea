package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/andrei91ro/lulu-c/internal/config"
	"github.com/andrei91ro/lulu-c/internal/generate"
	"github.com/andrei91ro/lulu-c/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Generation flags shared by generate, inspect and watch
	robotCount   int
	minID        int
	outputPrefix string
	policyPath   string

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "lulu-c",
	Short: "Generate Lulu runtime C structures from P colony models",
	Long: `lulu-c turns a P colony (or one colony of a swarm) into a statically
initialized C structure for the Lulu runtime, which runs without dynamic
allocation on small robots such as Kilobots.

Two units are written: <prefix>.h declares object and agent identifiers,
feature macros and the lifecycle entry points; <prefix>.c defines the colony.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		opts := cfg.Logging.Options()
		if verbose {
			opts.Level = "debug"
		}
		if err := logging.Init(opts); err != nil {
			return err
		}
		logger = logging.Logger()
		logging.Get(logging.CategoryBoot).Debugf("configuration loaded from %q", configPath)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "lulu.yaml", "Configuration file (missing file means defaults)")

	for _, cmd := range []*cobra.Command{generateCmd, inspectCmd, watchCmd} {
		cmd.Flags().IntVarP(&robotCount, "robots", "n", 0, "Number of robots in the swarm (default from config)")
		cmd.Flags().StringVar(&policyPath, "policy", "", "Mangle feature policy replacing the built-in one")
	}
	configInitCmd.Flags().IntVarP(&robotCount, "robots", "n", 0, "Number of robots to store")
	for _, cmd := range []*cobra.Command{generateCmd, watchCmd, configInitCmd} {
		cmd.Flags().IntVar(&minID, "min-id", 0, "Smallest robot identity of the swarm (default from config)")
	}
	configInitCmd.Flags().BoolVarP(&forceConfig, "force", "f", false, "Overwrite an existing configuration file")
	for _, cmd := range []*cobra.Command{generateCmd, watchCmd} {
		cmd.Flags().StringVarP(&outputPrefix, "out", "o", "", "Output path without extension (default from config)")
	}
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 0, "Quiet period before regenerating (default 300ms)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(watchCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

// resolveParams merges configuration, flags and positional arguments. Flags
// win over the configuration only when given explicitly.
func resolveParams(cmd *cobra.Command, args []string) generate.Params {
	p := generate.ParamsFromConfig(cfg)
	p.ModelPath = args[0]
	if len(args) > 1 {
		p.ColonyName = args[1]
	}
	flags := cmd.Flags()
	if flags.Changed("robots") {
		p.RobotCount = robotCount
	}
	if flags.Changed("min-id") {
		p.MinID = minID
	}
	if flags.Changed("out") {
		p.OutputPrefix = outputPrefix
	}
	if flags.Changed("policy") {
		p.PolicyPath = policyPath
	}
	return p
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/andrei91ro/lulu-c/internal/config"
)

var forceConfig bool

// configCmd groups configuration file commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the lulu-c configuration file",
}

// configInitCmd writes a configuration file with the defaults
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the default settings",
	Long: `Writes the file named by --config with every setting at its default.
robot_count 0 and min_id -1 mean unset: generate then requires --robots and
--min-id unless they are filled in here or given through LULU_ROBOT_COUNT and
LULU_MIN_ID.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if !forceConfig {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	out := config.DefaultConfig()
	flags := cmd.Flags()
	if flags.Changed("robots") {
		out.Generator.RobotCount = robotCount
	}
	if flags.Changed("min-id") {
		out.Generator.MinID = minID
	}
	if err := out.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := out.Save(configPath); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s wrote %s\n", successStyle.Render("✓"), configPath)
	return nil
}

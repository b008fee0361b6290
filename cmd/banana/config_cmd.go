package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/banana-cli/internal/config"
	"github.com/jonathan/banana-cli/internal/observability"
)

var configCommand = &cobra.Command{
	Use:     "config",
	Aliases: []string{"c"},
	Short:   "Show and change configuration",
	Args:    cobra.NoArgs,
	RunE:    runConfigShowCmd,
}

var configShowCommand = &cobra.Command{
	Use:   "show",
	Short: "Print every setting (secrets masked)",
	Args:  cobra.NoArgs,
	RunE:  runConfigShowCmd,
}

var configGetCommand = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGetCmd,
}

var configSetCommand = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting and save it",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSetCmd,
}

var configPathCommand = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE:  runConfigPathCmd,
}

var configResetCommand = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigResetCmd,
}

var (
	configFormat string
	configForce  bool
)

func init() {
	for _, c := range []*cobra.Command{configCommand, configShowCommand} {
		c.Flags().StringVarP(&configFormat, "format", "f", "text", "Output format: text, json")
	}
	configResetCommand.Flags().BoolVarP(&configForce, "force", "f", false, "Confirm overwriting the config file")

	configCommand.AddCommand(configShowCommand, configGetCommand, configSetCommand, configPathCommand, configResetCommand)
	rootCmd.AddCommand(configCommand)
}

func runConfigShowCmd(cmd *cobra.Command, _ []string) error {
	format, err := observability.ParseFormat(configFormat)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return observability.NewPrinter(cmd.OutOrStdout(), format).PrintConfig(cfg)
}

func runConfigGetCmd(cmd *cobra.Command, args []string) error {
	key, err := config.ParseKey(args[0])
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), cfg.Get(key))
	return nil
}

func runConfigSetCmd(cmd *cobra.Command, args []string) error {
	key, err := config.ParseKey(args[0])
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Set(key, args[1]); err != nil {
		return err
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, cfg.Get(key))
	return nil
}

func runConfigPathCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), cfg.Path())
	return nil
}

func runConfigResetCmd(cmd *cobra.Command, _ []string) error {
	if !configForce {
		observability.PrintWarning(cmd.ErrOrStderr(), "This will reset all configuration to defaults. Use --force to confirm.")
		return nil
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Reset()
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Configuration reset (%s)\n", cfg.Path())
	return nil
}

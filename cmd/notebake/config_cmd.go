package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/agusx1211/notebake/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change notebake configuration",
}

var configSetOutputCmd = &cobra.Command{
	Use:   "set-output MODE",
	Short: "Set the default output mode (print, copy, or ssh-copy) in ~/" + config.FileName,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.HomePath()
		if err != nil {
			return err
		}
		if err := config.WriteOutput(path, args[0]); err != nil {
			return err
		}
		mode, _ := config.NormalizeOutput(args[0])
		fmt.Fprintf(cmd.OutOrStdout(), "Default output set to %s in %s\n", mode, path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the configuration a bake in --vault would use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, newLogger(verbose, cmd.ErrOrStderr()))
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(struct {
			Settings any      `yaml:"settings"`
			Output   string   `yaml:"output,omitempty"`
			Include  []string `yaml:"include,omitempty"`
			Exclude  []string `yaml:"exclude,omitempty"`
			Files    []string `yaml:"files"`
		}{
			Settings: cfg.Settings,
			Output:   cfg.Output,
			Include:  cfg.Include,
			Exclude:  cfg.Exclude,
			Files:    config.Paths(vaultDir),
		})
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	configCmd.AddCommand(configSetOutputCmd, configShowCmd)
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/scribe/internal/cli"
	"github.com/jackzampolin/scribe/internal/config"
	"github.com/jackzampolin/scribe/internal/home"
)

var (
	configForce  bool
	configGlobal bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage scribe configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default config file",
	Long: `Write a commented default configuration to the given path
(default: ./config.yaml, or ~/.scribe/config.yaml with --global).
Refuses to overwrite an existing file unless --force is set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "config.yaml"
		switch {
		case len(args) == 1:
			path = args[0]
		case configGlobal:
			dir, err := home.New("")
			if err != nil {
				return err
			}
			if err := dir.EnsureExists(); err != nil {
				return err
			}
			path = dir.ConfigPath()
		}

		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		return cli.Output(mgr.Get())
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing config file")
	configInitCmd.Flags().BoolVar(&configGlobal, "global", false, "write to ~/.scribe/config.yaml")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

package cmd

import (
	"fmt"

	"github.com/markvz/proefgesprek/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		fmt.Printf("Config file: %s", path)
		if !config.Exists() {
			fmt.Print(" (not found, using defaults)")
		}
		fmt.Println()
		fmt.Printf("Provider:    %s\n", cfg.Provider)
		fmt.Printf("Listen:      %s\n", cfg.Listen)
		fmt.Printf("Server URL:  %s\n", cfg.ServerURL)
		fmt.Printf("Models:      pro=%s smart=%s internet=%s\n",
			cfg.Gemini.Models["pro"], cfg.Gemini.Models["smart"], cfg.Gemini.Models["internet"])
		if cfg.Gemini.APIKey == "" && cfg.OpenAI.APIKey == "" {
			fmt.Println("Warning:     no API key configured (set GEMINI_API_KEY)")
		}
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if config.Exists() {
			path, _ := config.GetConfigPath()
			return fmt.Errorf("config already exists at %s", path)
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := config.Save(cfg); err != nil {
			return err
		}
		path, _ := config.GetConfigPath()
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

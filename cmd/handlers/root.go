/*
Copyright © 2025 Your Name

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package handlers

import (
	"fmt"
	"os"

	"insightcast/internal/config"
	"insightcast/internal/logger"

	"github.com/spf13/cobra"
)

var cfgFile string

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "insightcast",
		Short: "Insightcast finds related passages, insights and podcast scripts across your documents.",
		Long: `Insightcast retrieves passages related to a text selection from an indexed
document library, asks Gemini for contradictions, enhancements and connections,
and writes persona-styled two-speaker podcast scripts that can be rendered to audio.

Run 'insightcast serve' for the HTTP API used by the reader frontend, or use
the retrieve, insights and podcast commands directly from the terminal.`,
		SilenceUsage: true,
	}

	// Initialize configuration
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.insightcast.yaml)")

	// Add subcommands
	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewRetrieveCmd())
	rootCmd.AddCommand(NewInsightsCmd())
	rootCmd.AddCommand(NewPodcastCmd())
	rootCmd.AddCommand(NewIndexCmd())
	rootCmd.AddCommand(NewDeleteCmd())
	rootCmd.AddCommand(NewMigrateCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if cfg.App.ConfigFile != "" {
		logger.Debug("Using config file", "path", cfg.App.ConfigFile)
	}
}

// Package commands provides the CLI commands for gemchat.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/diogo/gemchat/internal/config"
	"github.com/diogo/gemchat/internal/tui"
)

var (
	modelFlag string

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "gemchat",
	Short: "Terminal chat for Google Gemini",
	Long: `gemchat is a terminal chat client for Google Gemini. It talks to the
Gemini web API using cookie-based authentication and streams replies
into an interactive conversation view.

Credentials are resolved from the ` + config.EnvPSID + ` environment variable,
the cookies file under ~/.gemchat, or an installed browser, in that order.

Examples:
  gemchat                               Start the chat
  gemchat -m gemini-3.0-pro             Chat with a specific model
  gemchat import-cookies ~/cookies.json
  gemchat models                        List available models`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("gemchat %s (built %s)\n", Version, BuildTime)
			return nil
		}
		return runChat()
	},
}

// Execute runs the root command
func Execute() {
	setupLogging()

	if err := rootCmd.Execute(); err != nil {
		tui.PrintError(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "Model to use (e.g., gemini-2.5-flash)")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	rootCmd.AddCommand(importCookiesCmd)
	rootCmd.AddCommand(modelsCmd)
}

// getModel returns the model name to use (from flag or config)
func getModel() string {
	if modelFlag != "" {
		return modelFlag
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return config.DefaultConfig().DefaultModel
	}
	return cfg.DefaultModel
}

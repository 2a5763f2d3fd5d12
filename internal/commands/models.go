package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/gemchat/internal/config"
	"github.com/diogo/gemchat/internal/models"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List available models",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runModels()
	},
}

func runModels() error {
	cfg, _ := config.LoadConfig()

	for _, model := range models.AllModels() {
		marker := "  "
		if model.Name == cfg.DefaultModel {
			marker = "* "
		}
		fmt.Printf("%s%s\n", marker, model.Name)
	}
	fmt.Println("\n* default (change with the default_model setting in ~/.gemchat/config.json)")
	return nil
}

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/feasnet/infra/logger"
	"github.com/kilianp07/feasnet/infra/sqlite"
)

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List available scenarios",
	RunE:  listScenarios,
}

func init() {
	rootCmd.AddCommand(scenariosCmd)
}

func listScenarios(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.New("scenarios").Errorf("store close: %v", cerr)
		}
	}()
	infos, err := store.Scenarios(context.Background())
	if err != nil {
		return err
	}
	for _, info := range infos {
		fmt.Printf("%d: %s with %d rotations.\n", info.ID, info.Name, info.RotationCount)
	}
	return nil
}

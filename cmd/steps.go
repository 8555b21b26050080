package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/feasnet/core/steplog"
	"github.com/kilianp07/feasnet/infra/logger"
)

var (
	stepsTrialID      string
	stepsFeasibleOnly bool
	stepsSince        time.Duration
)

var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "List persisted search steps",
	RunE:  listSteps,
}

func init() {
	stepsCmd.Flags().StringVar(&stepsTrialID, "trial", "", "only show steps of this trial id")
	stepsCmd.Flags().BoolVar(&stepsFeasibleOnly, "feasible-only", false, "only show steps that reached feasibility")
	stepsCmd.Flags().DurationVar(&stepsSince, "since", 0, "only show steps newer than this age, e.g. 24h")
	rootCmd.AddCommand(stepsCmd)
}

func listSteps(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := cfg.Logging.OpenStore()
	if err != nil {
		return fmt.Errorf("open step log: %w", err)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.New("steps").Errorf("step log close: %v", cerr)
		}
	}()

	q := steplog.Query{TrialID: stepsTrialID, FeasibleOnly: stepsFeasibleOnly}
	if stepsSince > 0 {
		q.Start = time.Now().Add(-stepsSince)
	}
	records, err := store.Query(context.Background(), q)
	if err != nil {
		return err
	}
	for _, r := range records {
		fmt.Printf("%s trial %s generation %d step %d: %d electrified, %d split, %d rotations below zero\n",
			r.Timestamp.Format(time.RFC3339), r.TrialID, r.Generation, r.Step,
			r.ElectrifiedStationCount, r.SplitRotationCount, r.RotationsBelowZero)
	}
	return nil
}

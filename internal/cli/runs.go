package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs",
		Long:  "Lists runs recorded by the json, sqlite or postgres sink; --run prints one run's snapshots.",
		Run:   runRuns,
	}
	cmd.Flags().String("run", "", "Print the snapshots of this run")

	RootCmd.AddCommand(cmd)
}

func runRuns(cmd *cobra.Command, args []string) {
	runID, _ := cmd.Flags().GetString("run")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if runID != "" {
		snaps, err := s.Snapshots(cmd.Context(), runID)
		if err != nil {
			exitErr("snapshots", err)
		}
		if formatFlag == "json" {
			b, _ := json.MarshalIndent(snaps, "", "  ")
			fmt.Println(string(b))
			return
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TICK\tDIRT\tDIRT%\tBATTERY\tLIVE\tCHARGING\tCLEANED")
		for _, snap := range snaps {
			fmt.Fprintf(w, "%d\t%d\t%.1f\t%.1f\t%d\t%d\t%d\n", snap.Tick, snap.DirtRemaining,
				snap.DirtRemainingPct, snap.AvgBattery, snap.Live, snap.Charging, snap.Cleaned)
		}
		w.Flush()
		return
	}

	reps, err := s.Runs(cmd.Context())
	if err != nil {
		exitErr("runs", err)
	}
	if formatFlag == "json" {
		b, _ := json.MarshalIndent(reps, "", "  ")
		fmt.Println(string(b))
		return
	}
	if len(reps) == 0 {
		fmt.Println("No runs recorded.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSTARTED\tOUTCOME\tTICKS\tSEED\tDIRT LEFT\tDEATHS")
	for _, rep := range reps {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n", rep.RunID, rep.StartedAt.Format("2006-01-02 15:04:05"),
			rep.Outcome, rep.Ticks, rep.Seed, rep.Final.DirtRemaining, rep.Deaths)
	}
	w.Flush()
}

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/borkshop/roomba/internal/perf"
	"github.com/borkshop/roomba/internal/sim"
	"github.com/borkshop/roomba/internal/stats"
)

func init() {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation headless and print its report",
		Run:   runRun,
	}
	addScenarioFlags(cmd)
	cmd.Flags().String("profile", "", "Write CPU and runtime profiles of the run into this directory")

	RootCmd.AddCommand(cmd)
}

func runRun(cmd *cobra.Command, args []string) {
	sc, err := loadScenario(cmd)
	if err != nil {
		exitErr("scenario", err)
	}
	maxTicks, _ := cmd.Flags().GetUint64("max-ticks")
	log := newLogger()

	sink, err := openSink()
	if err != nil {
		exitErr("open sink", err)
	}
	defer sink.Close()

	var p perf.Perf
	s, err := sim.New(sc, sim.WithLogger(log), sim.WithSink(sink), sim.WithPerf(&p))
	if err != nil {
		exitErr("build simulation", err)
	}
	if dir, _ := cmd.Flags().GetString("profile"); dir != "" {
		if err := p.Profile(dir); err != nil {
			exitErr("profile", err)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep, err := s.Run(ctx, maxTicks)
	if err != nil {
		log.Warn("run finished with sink errors", "err", err)
	}
	if err := p.Close(); err != nil {
		log.Warn("profile", "err", err)
	}
	printReport(rep)
}

func printReport(rep stats.Report) {
	if formatFlag == "json" {
		b, _ := json.MarshalIndent(rep, "", "  ")
		fmt.Println(string(b))
		return
	}
	fmt.Printf("run %s: %s after %d ticks (seed %d)\n", rep.RunID, rep.Outcome, rep.Ticks, rep.Seed)
	fmt.Printf("  dirt remaining %d (%.1f%%), cleaned %d\n",
		rep.Final.DirtRemaining, rep.Final.DirtRemainingPct, rep.Final.Cleaned)
	fmt.Printf("  live %d, charging %d, deaths %d, average battery %.1f\n",
		rep.Final.Live, rep.Final.Charging, rep.Deaths, rep.Final.AvgBattery)
}

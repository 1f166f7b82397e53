package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell"
	"github.com/spf13/cobra"

	"github.com/borkshop/roomba/internal/perf"
	"github.com/borkshop/roomba/internal/sim"
	"github.com/borkshop/roomba/internal/view"
)

func init() {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Animate a simulation in the terminal",
		Long:  "Animates a simulation in the terminal. Space pauses, '.' steps while paused, q quits.",
		Run:   runWatch,
	}
	addScenarioFlags(cmd)
	cmd.Flags().Duration("delay", 200*time.Millisecond, "Time between ticks")

	RootCmd.AddCommand(cmd)
}

func runWatch(cmd *cobra.Command, args []string) {
	sc, err := loadScenario(cmd)
	if err != nil {
		exitErr("scenario", err)
	}
	maxTicks, _ := cmd.Flags().GetUint64("max-ticks")
	delay, _ := cmd.Flags().GetDuration("delay")

	sink, err := openSink()
	if err != nil {
		exitErr("open sink", err)
	}
	defer sink.Close()

	var logs view.Logs
	logs.Init(200)
	// the terminal belongs to the viewer; agent events go to its log pane
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	var p perf.Perf
	s, err := sim.New(sc, sim.WithLogger(quiet), sim.WithSink(sink), sim.WithEvents(logs.Event), sim.WithPerf(&p))
	if err != nil {
		exitErr("build simulation", err)
	}
	logs.Log("run %s, seed %d", s.RunID(), sc.Seed)

	scr, err := tcell.NewScreen()
	if err != nil {
		exitErr("open terminal", err)
	}
	if err := scr.Init(); err != nil {
		exitErr("open terminal", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	werr := view.Watch(ctx, scr, s, &logs, delay, maxTicks)
	scr.Fini()
	if werr != nil && werr != context.Canceled {
		exitErr("watch", werr)
	}

	// quitting mid-run stops it; a run at its tick limit is exhausted
	runCtx := ctx
	if s.Outcome() == sim.Running && (maxTicks == 0 || uint64(s.Now()) < maxTicks) {
		runCtx = cancelled(ctx)
	}
	rep, err := s.Run(runCtx, maxTicks)
	if err != nil {
		newLogger().Warn("run finished with sink errors", "err", err)
	}
	printReport(rep)
}

// cancelled returns a context that is already done.
func cancelled(parent context.Context) context.Context {
	ctx, cancel := context.WithCancel(parent)
	cancel()
	return ctx
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/borkshop/roomba/internal/sim"
	"github.com/borkshop/roomba/internal/stats"
	"github.com/borkshop/roomba/internal/stream"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a simulation and stream it to websocket watchers",
		Long: "Runs a simulation paced by --delay and streams every snapshot, agent event and " +
			"the final report to watchers connected at /ws. Serving continues after the run " +
			"ends until interrupted.",
		Run: runServe,
	}
	addScenarioFlags(cmd)
	cmd.Flags().Duration("delay", 500*time.Millisecond, "Time between ticks")
	cmd.Flags().String("addr", "", "Listen address (default: $ROOMBA_ADDR or :8080)")

	RootCmd.AddCommand(cmd)
}

func getAddr(cmd *cobra.Command) string {
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		return addr
	}
	if env := os.Getenv("ROOMBA_ADDR"); env != "" {
		return env
	}
	return ":8080"
}

func runServe(cmd *cobra.Command, args []string) {
	sc, err := loadScenario(cmd)
	if err != nil {
		exitErr("scenario", err)
	}
	maxTicks, _ := cmd.Flags().GetUint64("max-ticks")
	delay, _ := cmd.Flags().GetDuration("delay")
	log := newLogger()

	store, err := openSink()
	if err != nil {
		exitErr("open sink", err)
	}
	hub := stream.NewHub(log)
	sink := stats.Multi(hub, store)

	s, err := sim.New(sc,
		sim.WithLogger(log),
		sim.WithSink(sink),
		sim.WithEvents(hub.Event),
		sim.WithDelay(delay))
	if err != nil {
		sink.Close()
		exitErr("build simulation", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	srv := &http.Server{Addr: getAddr(cmd), Handler: mux}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = serve(ctx, log, srv, s, maxTicks)
	if cerr := sink.Close(); cerr != nil {
		log.Warn("close sink", "err", cerr)
	}
	if err != nil {
		exitErr("serve", err)
	}
}

// serve runs s while srv serves watchers, then keeps serving until ctx is
// done. A listen failure stops the run and is returned.
func serve(ctx context.Context, log *slog.Logger, srv *http.Server, s *sim.Simulation, maxTicks uint64) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	go func() {
		log.Info("serving", "addr", srv.Addr, "run", s.RunID())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cancel(fmt.Errorf("listen: %w", err))
		}
	}()

	rep, err := s.Run(ctx, maxTicks)
	if err != nil {
		log.Warn("run finished with sink errors", "err", err)
	}
	printReport(rep)

	<-ctx.Done()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown", "err", err)
	}
	if err := context.Cause(ctx); !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

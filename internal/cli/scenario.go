package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/borkshop/roomba/internal/sim"
)

// addScenarioFlags registers the flags describing the world to simulate.
func addScenarioFlags(cmd *cobra.Command) {
	def := sim.DefaultScenario()
	cmd.Flags().String("scenario", "", "JSON scenario file; flags given explicitly override it")
	cmd.Flags().Int("width", def.Width, "Grid width")
	cmd.Flags().Int("height", def.Height, "Grid height")
	cmd.Flags().Bool("torus", def.Torus, "Wrap the grid edges")
	cmd.Flags().IntP("agents", "a", def.Agents, "Number of cleaning agents")
	cmd.Flags().Int("dirt", def.Dirt, "Number of dirty cells")
	cmd.Flags().Int("obstacles", def.Obstacles, "Number of obstacles")
	cmd.Flags().Int("low-battery", def.LowBattery, "Battery level below which agents head for a station")
	cmd.Flags().Int("charge-rate", def.ChargeRate, "Battery gained per tick on a station")
	cmd.Flags().Int64P("seed", "s", def.Seed, "Random seed for placement and turn order")
	cmd.Flags().String("stations", string(def.Stations), "Station layout: per-agent or corner")
	cmd.Flags().Int("memory-cap", def.MemoryCap, "Visited cells each agent remembers (0: all)")
	cmd.Flags().Uint64("max-ticks", 10000, "Stop after this many ticks (0: no limit)")
}

// loadScenario builds the scenario from defaults, the --scenario file, then
// explicitly set flags, in that order.
func loadScenario(cmd *cobra.Command) (sim.Scenario, error) {
	sc := sim.DefaultScenario()
	if path, _ := cmd.Flags().GetString("scenario"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return sc, fmt.Errorf("read scenario: %w", err)
		}
		if err := json.Unmarshal(b, &sc); err != nil {
			return sc, fmt.Errorf("parse scenario %s: %w", path, err)
		}
	}

	flags := cmd.Flags()
	for name, dst := range map[string]*int{
		"width":       &sc.Width,
		"height":      &sc.Height,
		"agents":      &sc.Agents,
		"dirt":        &sc.Dirt,
		"obstacles":   &sc.Obstacles,
		"low-battery": &sc.LowBattery,
		"charge-rate": &sc.ChargeRate,
		"memory-cap":  &sc.MemoryCap,
	} {
		if flags.Changed(name) {
			*dst, _ = flags.GetInt(name)
		}
	}
	if flags.Changed("torus") {
		sc.Torus, _ = flags.GetBool("torus")
	}
	if flags.Changed("seed") {
		sc.Seed, _ = flags.GetInt64("seed")
	}
	if flags.Changed("stations") {
		layout, _ := flags.GetString("stations")
		sc.Stations = sim.Layout(layout)
	}
	return sc, sc.Validate()
}

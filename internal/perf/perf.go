// Package perf times simulation ticks, and can CPU-profile them.
package perf

import (
	"fmt"
	"os"
	"path"
	"runtime"
	"runtime/pprof"
	"syscall"
	"time"

	"github.com/borkshop/roomba/internal/ecs"
)

const (
	numSamples = 64
)

// Perf is an ecs.Proc that times the Proc it wraps.
type Perf struct {
	ecs.Proc

	outputBase string
	profiling  bool
	err        error
	cpuProfF   *os.File
	profDebug  int

	round int
	i     int
	n     int
	time  [numSamples]struct{ start, end time.Time }
}

// Init wraps proc.
func (perf *Perf) Init(proc ecs.Proc) {
	perf.Proc = proc
	perf.profDebug = 1
}

// Process times a round of the wrapped Proc.
func (perf *Perf) Process() {
	perf.round++
	perf.time[perf.i].start = time.Now()
	perf.Proc.Process()
	perf.time[perf.i].end = time.Now()
	perf.i = (perf.i + 1) % numSamples
	if perf.n < numSamples {
		perf.n++
	}
}

// Rounds returns how many rounds have been timed.
func (perf *Perf) Rounds() int { return perf.round }

// Last returns the duration of the latest round.
func (perf *Perf) Last() time.Duration {
	if perf.n == 0 {
		return 0
	}
	i := perf.i - 1
	if i < 0 {
		i += numSamples
	}
	return perf.time[i].end.Sub(perf.time[i].start)
}

// Mean returns the mean duration of the sampled recent rounds.
func (perf *Perf) Mean() time.Duration {
	if perf.n == 0 {
		return 0
	}
	var sum time.Duration
	for i := 0; i < perf.n; i++ {
		sum += perf.time[i].end.Sub(perf.time[i].start)
	}
	return sum / time.Duration(perf.n)
}

// Summary formats round timing and heap usage for a status line.
func (perf *Perf) Summary() string {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	status := "○"
	if perf.err != nil {
		status = "■"
	} else if perf.profiling {
		status = "◉"
	}
	return fmt.Sprintf("%s Δt=%v mean=%v heap=%v/%v", status,
		perf.Last().Round(time.Microsecond), perf.Mean().Round(time.Microsecond),
		siBytes(ms.HeapAlloc), ms.HeapObjects)
}

// Profile starts CPU profiling into dir; the other runtime profiles are
// written there on Close.
func (perf *Perf) Profile(dir string) error {
	perf.outputBase = dir
	if err := perf.startProfiling(); err != nil {
		perf.err = err
		return err
	}
	return nil
}

// Close stops profiling, returning any error.
func (perf *Perf) Close() error {
	if !perf.profiling {
		return perf.err
	}
	if perr := perf.takeProfile(); perf.err == nil {
		perf.err = perr
	}
	if serr := perf.stopProfiling(); perf.err == nil {
		perf.err = serr
	}
	return perf.err
}

// Err returns any profiling error encountered.
func (perf *Perf) Err() error { return perf.err }

func (perf *Perf) startProfiling() error {
	if perf.profiling {
		return nil
	}
	f, err := perf.createOutput("cpu")
	if err != nil {
		return err
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		return err
	}
	perf.cpuProfF = f
	perf.profiling = true
	return nil
}

func (perf *Perf) stopProfiling() (err error) {
	if perf.cpuProfF != nil {
		pprof.StopCPUProfile()
		err = perf.cpuProfF.Close()
		perf.cpuProfF = nil
		if err != nil {
			err = fmt.Errorf("failed to close \"cpu\" output file: %w", err)
		}
	}
	perf.profiling = false
	return err
}

func (perf *Perf) takeProfile() error {
	for _, prof := range pprof.Profiles() {
		f, err := perf.createOutput(prof.Name())
		if err != nil {
			return err
		}
		err = prof.WriteTo(f, perf.profDebug)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (perf *Perf) createOutput(name string) (*os.File, error) {
	pth := path.Join(perf.outputBase, name)
	f, err := createMkdirAll(pth)
	if err != nil {
		err = fmt.Errorf("failed to create %q output file: %w", name, err)
	}
	return f, err
}

func createMkdirAll(name string) (*os.File, error) {
	f, err := os.Create(name)
	if pe, ok := err.(*os.PathError); ok && pe.Err == syscall.ENOENT {
		err = os.MkdirAll(path.Dir(name), 0777)
		if err == nil {
			return os.Create(name)
		}
	}
	return f, err
}

func siBytes(n uint64) string {
	if n < 1024 {
		return fmt.Sprintf("%vB", n)
	}
	if n < 1024*1024 {
		return fmt.Sprintf("%.1fKiB", float64(n)/1024.0)
	}
	if n < 1024*1024*1024 {
		return fmt.Sprintf("%.1fMiB", float64(n)/(1024.0*1024.0))
	}
	return fmt.Sprintf("%.1fGiB", float64(n)/(1024.0*1024.0*1024.0))
}

package ecs

// Proc is a piece of domain logic run once per simulation round.
type Proc interface {
	Process()
}

// System is an ordered set of Proc-s; it is itself a Proc, processing each
// of its Procs in order.
type System struct {
	Procs []Proc
}

// AddProc adds processor(s) to the system.
func (sys *System) AddProc(procs ...Proc) {
	sys.Procs = append(sys.Procs, procs...)
}

// AddProcFunc adds processing function(s) to the system.
func (sys *System) AddProcFunc(fns ...func()) {
	procs := make([]Proc, len(fns))
	for i := range fns {
		procs[i] = ProcFunc(fns[i])
	}
	sys.Procs = append(sys.Procs, procs...)
}

// Process calls each Proc.
func (sys *System) Process() {
	for i := range sys.Procs {
		sys.Procs[i].Process()
	}
}

// ProcFunc is a convenience for implementing Proc around an arbitrary void
// function.
type ProcFunc func()

// Process calls the wrapped function.
func (f ProcFunc) Process() { f() }

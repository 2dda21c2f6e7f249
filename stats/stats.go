package stats

import "github.com/securycore/snowdrift/probe"

// Counters is one scope's pass/fail tallies: host reachability checks
// and individual path tests.
type Counters struct {
	HostPass int
	HostFail int
	PathPass int
	PathFail int
}

// Aggregator accumulates per-file and run-wide counters. Not safe for
// concurrent use; the run is sequential and the driver owns it.
type Aggregator struct {
	File Counters
	Run  Counters
}

func New() *Aggregator {
	return &Aggregator{}
}

// StartFile zeroes the per-file scope. The cumulative scope is never
// reset within a run.
func (a *Aggregator) StartFile() {
	a.File = Counters{}
}

func (a *Aggregator) RecordHostCheck(reachable bool) {
	if reachable {
		a.File.HostPass++
		a.Run.HostPass++
	} else {
		a.File.HostFail++
		a.Run.HostFail++
	}
}

// RecordPathResult counts a classification against both scopes. Only
// the Ok family passes; everything else, ssh-unreachable included,
// counts as a path failure.
func (a *Aggregator) RecordPathResult(class probe.Classification) {
	if class.Success() {
		a.File.PathPass++
		a.Run.PathPass++
	} else {
		a.File.PathFail++
		a.Run.PathFail++
	}
}

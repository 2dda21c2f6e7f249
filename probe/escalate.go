package probe

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/securycore/snowdrift/remote"
	"github.com/securycore/snowdrift/rules"
)

const defaultEscalateTimeout = 45 * time.Second

// Flags toggles the traceroute escalations.
type Flags struct {
	Traceroute         bool
	TracerouteForce    bool
	TCPTraceroute      bool
	TCPTracerouteForce bool
}

// Escalator runs best-effort traceroutes from the source host after a
// failing or forced classification. Remote output streams through
// unmodified; every failure here is swallowed and nothing reaches the
// statistics.
type Escalator struct {
	Runner            remote.Runner
	Timeout           time.Duration
	Out               io.Writer
	TraceroutePath    string
	TCPTraceroutePath string
}

func NewEscalator(runner remote.Runner) *Escalator {
	return &Escalator{
		Runner:            runner,
		Timeout:           defaultEscalateTimeout,
		Out:               os.Stdout,
		TraceroutePath:    "traceroute",
		TCPTraceroutePath: "tcptraceroute",
	}
}

// escalatable reports whether a non-forced escalation applies to class.
func escalatable(class Classification) bool {
	return class.Kind == KindTimeout || class.Kind == KindDNSFailTimeout
}

// MaybeEscalate runs the escalations the flags and classification call
// for. The TCP-aware traceroute targets the path's destination port and
// therefore only applies to TCP paths.
func (e *Escalator) MaybeEscalate(ctx context.Context, path rules.Path, class Classification, flags Flags) {
	if flags.TracerouteForce || (flags.Traceroute && escalatable(class)) {
		e.run(ctx, path.Source, fmt.Sprintf("%s -q 1 -w 2 %s", e.TraceroutePath, path.Dest))
	}
	if path.Type != rules.ProbeTCP {
		return
	}
	if flags.TCPTracerouteForce || (flags.TCPTraceroute && escalatable(class)) {
		e.run(ctx, path.Source, fmt.Sprintf("%s %s %d", e.TCPTraceroutePath, path.Dest, path.Port))
	}
}

func (e *Escalator) run(ctx context.Context, host, command string) {
	cctx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	res, err := e.Runner.Run(cctx, host, command)
	if res.Output != "" {
		fmt.Fprint(e.Out, res.Output)
		if !strings.HasSuffix(res.Output, "\n") {
			fmt.Fprintln(e.Out)
		}
	}
	if err != nil {
		fmt.Fprintf(e.Out, "(traceroute from %s failed: %v)\n", host, err)
	}
}

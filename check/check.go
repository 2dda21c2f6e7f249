package check

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/securycore/snowdrift/printer"
	"github.com/securycore/snowdrift/probe"
	"github.com/securycore/snowdrift/remote"
	"github.com/securycore/snowdrift/rules"
	"github.com/securycore/snowdrift/stats"
)

// Config is the immutable description of one batch run.
type Config struct {
	Files  []string
	Filter string
	Flags  probe.Flags
}

// Session owns all run-scoped state. The reachability cache and the
// counters live here and nowhere else; a new run means a new Session.
type Session struct {
	Cfg       Config
	Cache     *remote.Cache
	Prober    *probe.Prober
	Escalator *probe.Escalator
	Stats     *stats.Aggregator
}

func NewSession(cfg Config, runner remote.Runner) *Session {
	agg := stats.New()
	cache := remote.NewCache(runner)
	cache.OnFirstCheck = func(_ string, reachable bool) {
		agg.RecordHostCheck(reachable)
	}
	return &Session{
		Cfg:       cfg,
		Cache:     cache,
		Prober:    probe.NewProber(runner, cache),
		Escalator: probe.NewEscalator(runner),
		Stats:     agg,
	}
}

// Run processes every rules file in order and prints the cumulative
// summary. A rules file that cannot be opened is the only fatal error;
// it is detected before any probing starts. Everything else folds into
// classifications and counters.
func (s *Session) Run(ctx context.Context) error {
	for _, name := range s.Cfg.Files {
		f, err := os.Open(name)
		if err != nil {
			return fmt.Errorf("rules file: %w", err)
		}
		f.Close()
	}

	for _, name := range s.Cfg.Files {
		s.runFile(ctx, name)
	}

	printer.RunSummary(s.Stats.Run)
	return nil
}

func (s *Session) runFile(ctx context.Context, name string) {
	f, err := os.Open(name)
	if err != nil {
		// Pre-checked above; a file vanishing mid-run degrades to a
		// skipped file rather than aborting finished work.
		printer.Skipf("%s: %v", name, err)
		return
	}
	defer f.Close()

	s.Stats.StartFile()
	printer.FileBanner(name)

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		s.runLine(ctx, scanner.Text(), name, lineNo)
	}
	if err := scanner.Err(); err != nil {
		printer.Skipf("%s: read error: %v", name, err)
	}

	printer.FileSummary(name, s.Stats.File)
}

// lineOutcome is the explicit skip-or-expand decision for one line. No
// control-flow short-circuits: the caller inspects it.
type lineOutcome struct {
	Skipped bool
	Reason  string // empty for blank/comment/filtered lines
	Paths   []rules.Path
}

// expandLine parses one line and expands its ranges.
func (s *Session) expandLine(line string) lineOutcome {
	rule, err := rules.ParseLine(line, s.Cfg.Filter)
	if err != nil {
		if errors.Is(err, rules.ErrSkip) {
			return lineOutcome{Skipped: true}
		}
		return lineOutcome{Skipped: true, Reason: err.Error()}
	}

	paths, err := rules.Paths(rule)
	if err != nil {
		return lineOutcome{Skipped: true, Reason: err.Error()}
	}
	return lineOutcome{Paths: paths}
}

func (s *Session) runLine(ctx context.Context, line, file string, lineNo int) {
	outcome := s.expandLine(line)
	if outcome.Skipped {
		if outcome.Reason != "" {
			printer.Skipf("%s:%d: %s", file, lineNo, outcome.Reason)
		}
		return
	}

	// Strictly sequential: probe, record, report, escalate, next path.
	for _, p := range outcome.Paths {
		res := s.Prober.Probe(ctx, p)
		s.Stats.RecordPathResult(res.Class)
		printer.PrintPathLine(res)
		s.Escalator.MaybeEscalate(ctx, p, res.Class, s.Cfg.Flags)
	}
}

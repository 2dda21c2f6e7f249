package probe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/securycore/snowdrift/remote"
	"github.com/securycore/snowdrift/rules"
)

const (
	defaultProbeTimeout = 5 * time.Second
	defaultDNSRecord    = "example.com"
)

// Result ties a path to its classified probe outcome.
type Result struct {
	Path     rules.Path
	Class    Classification
	Output   string
	ExitCode int
}

// Prober builds and runs the remote diagnostic command for one expanded
// path. All commands execute on the path's source host through Runner.
type Prober struct {
	Runner        remote.Runner
	Cache         *remote.Cache
	Timeout       time.Duration // tool-level timeout passed to nc/dig
	DefaultRecord string        // DNS record name when the rule names none
	NcPath        string
	DigPath       string
}

func NewProber(runner remote.Runner, cache *remote.Cache) *Prober {
	return &Prober{
		Runner:        runner,
		Cache:         cache,
		Timeout:       defaultProbeTimeout,
		DefaultRecord: defaultDNSRecord,
		NcPath:        "nc",
		DigPath:       "dig",
	}
}

// Probe evaluates one path. The source host's cached reachability gates
// everything: an unreachable source short-circuits to SshUnreachable
// without issuing any remote command. A source that passed its
// handshake but fails at the transport level for this execution
// degrades to Unknown; nothing is retried.
func (p *Prober) Probe(ctx context.Context, path rules.Path) Result {
	if !p.Cache.Check(ctx, path.Source) {
		return Result{Path: path, Class: Classification{Kind: KindSSHUnreachable}, ExitCode: -1}
	}

	res, err := p.Runner.Run(ctx, path.Source, p.command(path))
	if err != nil {
		detail := strings.TrimSpace(res.Output)
		if detail == "" {
			detail = err.Error()
		}
		return Result{
			Path:     path,
			Class:    Classification{Kind: KindUnknown, Detail: detail},
			Output:   res.Output,
			ExitCode: res.ExitCode,
		}
	}

	out := Result{Path: path, Output: res.Output, ExitCode: res.ExitCode}
	if path.Type == rules.ProbeDNS {
		out.Class = classifyDNS(res.Output, res.ExitCode)
	} else {
		out.Class = classifyTCP(res.Output)
	}
	return out
}

func (p *Prober) command(path rules.Path) string {
	secs := int(p.Timeout / time.Second)
	if secs <= 0 {
		secs = int(defaultProbeTimeout / time.Second)
	}

	if path.Type == rules.ProbeDNS {
		record := path.Extra
		if record == "" {
			record = p.DefaultRecord
		}
		if path.Dest != "" {
			return fmt.Sprintf("%s +short +time=%d +tries=1 @%s %s", p.DigPath, secs, path.Dest, record)
		}
		return fmt.Sprintf("%s +short +time=%d +tries=1 %s", p.DigPath, secs, record)
	}

	// 2>&1 because nc reports verdicts on stderr on several platforms.
	return fmt.Sprintf("%s -vz -w %d %s %d 2>&1", p.NcPath, secs, path.Dest, path.Port)
}

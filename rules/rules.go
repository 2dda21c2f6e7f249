package rules

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ProbeType selects the remote diagnostic a rule requests.
type ProbeType int

const (
	ProbeTCP ProbeType = iota
	ProbeDNS
)

func (t ProbeType) String() string {
	if t == ProbeDNS {
		return "dns"
	}
	return "tcp"
}

// Rule is one parsed rules-file line:
//
//	[tag/]source:dest:port[:extra]          TCP connect probe
//	[tag/]source:[dnsServer]:dns[:record]   DNS lookup probe
type Rule struct {
	Tag    string
	Source string
	Dest   string
	Type   ProbeType
	Port   int    // TCP rules only
	Extra  string // DNS record name, free-form otherwise
	Raw    string
}

// Path is one concrete source→destination probe after range expansion.
type Path struct {
	Tag    string
	Source string
	Dest   string
	Type   ProbeType
	Port   int
	Extra  string
}

// ErrSkip marks lines that carry no rule: blank, comment, or filtered out.
var ErrSkip = errors.New("line skipped")

// SyntaxError reports a malformed rule line. Skippable, never fatal.
type SyntaxError struct {
	Line   string
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("bad rule %q: %s", e.Line, e.Reason)
}

// ParseLine turns one rules-file line into a Rule. Blank lines, comment
// lines and lines missing a non-empty filter substring return ErrSkip.
// The filter is matched against the raw line, before any field
// splitting. The tag is whatever precedes the first "/" in the source
// field and is split off before anything looks at ranges.
func ParseLine(line, filter string) (*Rule, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return nil, ErrSkip
	}
	if filter != "" && !strings.Contains(line, filter) {
		return nil, ErrSkip
	}

	fields := strings.SplitN(trimmed, ":", 4)
	if len(fields) < 3 {
		return nil, &SyntaxError{Line: trimmed, Reason: "want source:dest:port"}
	}

	r := &Rule{Source: fields[0], Dest: fields[1], Raw: trimmed}
	if tag, src, found := strings.Cut(r.Source, "/"); found {
		r.Tag = tag
		r.Source = src
	}
	if r.Source == "" {
		return nil, &SyntaxError{Line: trimmed, Reason: "empty source host"}
	}
	if len(fields) == 4 {
		r.Extra = fields[3]
	}

	port := fields[2]
	if port == "dns" {
		r.Type = ProbeDNS
		return r, nil
	}
	n, err := strconv.Atoi(port)
	if err != nil || n <= 0 {
		return nil, &SyntaxError{Line: trimmed,
			Reason: fmt.Sprintf("port %q is neither a TCP port nor \"dns\"", port)}
	}
	r.Type = ProbeTCP
	r.Port = n
	return r, nil
}

// Paths expands a rule into its concrete probe paths. When both sides
// look range-like only the source side is expanded; the destination is
// then taken literally. A rule with no range yields exactly one path.
func Paths(r *Rule) ([]Path, error) {
	base := Path{
		Tag:    r.Tag,
		Source: r.Source,
		Dest:   r.Dest,
		Type:   r.Type,
		Port:   r.Port,
		Extra:  r.Extra,
	}

	switch {
	case IsRange(r.Source):
		hosts, err := Expand(r.Source)
		if err != nil {
			return nil, err
		}
		paths := make([]Path, 0, len(hosts))
		for _, h := range hosts {
			p := base
			p.Source = h
			paths = append(paths, p)
		}
		return paths, nil
	case IsRange(r.Dest):
		hosts, err := Expand(r.Dest)
		if err != nil {
			return nil, err
		}
		paths := make([]Path, 0, len(hosts))
		for _, h := range hosts {
			p := base
			p.Dest = h
			paths = append(paths, p)
		}
		return paths, nil
	default:
		return []Path{base}, nil
	}
}

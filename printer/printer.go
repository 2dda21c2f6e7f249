package printer

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/securycore/snowdrift/config"
	"github.com/securycore/snowdrift/probe"
	"github.com/securycore/snowdrift/rules"
)

var version = config.Version

func Version() {
	fmt.Fprintf(color.Output, "%s %s\n",
		color.New(color.FgWhite, color.Bold).Sprintf("%s", "snowdrift"),
		color.New(color.FgHiBlack, color.Bold).Sprintf("%s", version),
	)
}

// PathLine renders the one-line verdict for a probed path:
// "tag source -> dest:port: classification".
func PathLine(res probe.Result) string {
	p := res.Path

	target := p.Dest
	if p.Type == rules.ProbeDNS {
		if target == "" {
			target = "system-resolver"
		}
		target += ":dns"
	} else {
		target = fmt.Sprintf("%s:%d", target, p.Port)
	}

	head := fmt.Sprintf("%s -> %s", p.Source, target)
	if p.Tag != "" {
		head = p.Tag + " " + head
	}
	return fmt.Sprintf("%s: %s", head, res.Class)
}

func PrintPathLine(res probe.Result) {
	fmt.Fprintf(color.Output, "%s\n", classColor(res.Class).Sprint(PathLine(res)))
}

// Skipf reports a skippable-rule diagnostic without touching the stats.
func Skipf(format string, a ...any) {
	fmt.Fprintf(color.Output, "%s %s\n",
		color.New(color.FgYellow, color.Bold).Sprint("skip:"),
		fmt.Sprintf(format, a...),
	)
}

func FileBanner(name string) {
	fmt.Fprintf(color.Output, "%s\n",
		color.New(color.FgYellow, color.Bold).Sprintf("=== %s ===", name))
}

func classColor(class probe.Classification) *color.Color {
	switch class.Kind {
	case probe.KindOk, probe.KindDNSOk:
		return color.New(color.FgGreen)
	case probe.KindOkRefused:
		return color.New(color.FgCyan)
	case probe.KindUnknown:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

package probe

import "strings"

// digTimeoutExit is dig's conventional exit status when no server
// answered within the time limit.
const digTimeoutExit = 9

// Kind enumerates the closed set of probe verdicts.
type Kind int

const (
	KindOk Kind = iota
	KindOkRefused
	KindTimeout
	KindUnknown
	KindSSHUnreachable
	KindDNSOk
	KindDNSFailTimeout
	KindDNSFailUnknown
)

// Classification is the categorized outcome of one probe.
type Classification struct {
	Kind   Kind
	Detail string // response text for the Ok family, raw output for Unknown
}

// Success reports whether the classification belongs to the passing
// family. Refused passes: the destination host answered, the port is
// just closed.
func (c Classification) Success() bool {
	switch c.Kind {
	case KindOk, KindOkRefused, KindDNSOk:
		return true
	}
	return false
}

func (c Classification) String() string {
	switch c.Kind {
	case KindOk:
		if c.Detail != "" {
			return "OK (" + c.Detail + ")"
		}
		return "OK"
	case KindOkRefused:
		return "OK (connection refused, host up)"
	case KindTimeout:
		return "FAIL (timed out)"
	case KindSSHUnreachable:
		return "FAIL (source unreachable over ssh)"
	case KindDNSOk:
		if c.Detail != "" {
			return "OK (" + c.Detail + ")"
		}
		return "OK (empty response)"
	case KindDNSFailTimeout:
		return "FAIL (dns timeout)"
	case KindDNSFailUnknown:
		return "FAIL (dns error)"
	default:
		if c.Detail != "" {
			return "UNKNOWN (" + c.Detail + ")"
		}
		return "UNKNOWN"
	}
}

// classifyTCP maps nc output onto the verdict set. Matching is ordered:
// success markers beat refusal, refusal beats timeout. Both traditional
// netcat ("succeeded!") and ncat ("Connected to ...") mark success.
func classifyTCP(output string) Classification {
	switch {
	case strings.Contains(output, "succeeded"), strings.Contains(output, "Connected"):
		return Classification{Kind: KindOk}
	case strings.Contains(output, "refused"):
		return Classification{Kind: KindOkRefused}
	case strings.Contains(output, "timed out"):
		return Classification{Kind: KindTimeout}
	default:
		return Classification{Kind: KindUnknown, Detail: strings.TrimSpace(output)}
	}
}

func classifyDNS(output string, exitCode int) Classification {
	switch exitCode {
	case 0:
		return Classification{Kind: KindDNSOk, Detail: strings.TrimSpace(output)}
	case digTimeoutExit:
		return Classification{Kind: KindDNSFailTimeout}
	default:
		return Classification{Kind: KindDNSFailUnknown}
	}
}

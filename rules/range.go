package rules

import (
	"fmt"
	"regexp"
	"strconv"
)

// rangePattern matches prefix[start-end]suffix. The bounds are captured
// loosely and validated in Expand so that host[a-b] surfaces as a range
// error instead of silently passing for a literal hostname.
var rangePattern = regexp.MustCompile(`^(.*)\[([^\]-]*)-([^\]]*)\](.*)$`)

// RangeError reports a malformed bracketed range. Skippable, never fatal.
type RangeError struct {
	Spec   string
	Reason string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("bad range %q: %s", e.Spec, e.Reason)
}

// IsRange reports whether spec embeds a bracketed start-end range.
func IsRange(spec string) bool {
	return rangePattern.MatchString(spec)
}

// Expand produces the hostnames named by a range spec, in ascending
// order. Indices are zero-padded to the width of the wider bound
// literal, so web[01-03] keeps its leading zeros while web[8-10] does
// not gain any.
func Expand(spec string) ([]string, error) {
	m := rangePattern.FindStringSubmatch(spec)
	if m == nil {
		return nil, &RangeError{Spec: spec, Reason: "no start-end range found"}
	}
	prefix, startLit, endLit, suffix := m[1], m[2], m[3], m[4]

	start, err := strconv.Atoi(startLit)
	if err != nil {
		return nil, &RangeError{Spec: spec, Reason: fmt.Sprintf("start %q is not numeric", startLit)}
	}
	end, err := strconv.Atoi(endLit)
	if err != nil {
		return nil, &RangeError{Spec: spec, Reason: fmt.Sprintf("end %q is not numeric", endLit)}
	}
	if start > end {
		return nil, &RangeError{Spec: spec, Reason: fmt.Sprintf("start %d > end %d", start, end)}
	}

	width := len(startLit)
	if len(endLit) > width {
		width = len(endLit)
	}

	hosts := make([]string, 0, end-start+1)
	for i := start; i <= end; i++ {
		hosts = append(hosts, fmt.Sprintf("%s%0*d%s", prefix, width, i, suffix))
	}
	return hosts, nil
}

package check

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/securycore/snowdrift/probe"
	"github.com/securycore/snowdrift/remote"
	"github.com/securycore/snowdrift/stats"
)

// fleetRunner scripts a small fleet: unreachable hosts fail every
// execution at the transport level, everything else answers per reply.
type fleetRunner struct {
	mu       sync.Mutex
	commands []string
	down     map[string]bool
	reply    func(host, command string) (remote.Result, error)
}

func newFleetRunner(reply func(host, command string) (remote.Result, error), down ...string) *fleetRunner {
	r := &fleetRunner{down: make(map[string]bool), reply: reply}
	for _, h := range down {
		r.down[h] = true
	}
	return r
}

func (r *fleetRunner) Run(_ context.Context, host, command string) (remote.Result, error) {
	r.mu.Lock()
	r.commands = append(r.commands, host+": "+command)
	r.mu.Unlock()

	if r.down[host] {
		return remote.Result{ExitCode: -1}, errors.New("dial tcp: no route to host")
	}
	if command == "hostname" {
		return remote.Result{Output: host + "\n"}, nil
	}
	if r.reply != nil {
		return r.reply(host, command)
	}
	return remote.Result{Output: "succeeded!\n"}, nil
}

func (r *fleetRunner) probeCommands() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, c := range r.commands {
		if !strings.HasSuffix(c, ": hostname") {
			out = append(out, c)
		}
	}
	return out
}

func writeRules(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func TestRunSingleRulePass(t *testing.T) {
	runner := newFleetRunner(func(_, _ string) (remote.Result, error) {
		return remote.Result{Output: "Connection succeeded!\n"}, nil
	})
	file := writeRules(t, "web1:db1:3306")

	sess := NewSession(Config{Files: []string{file}}, runner)
	require.NoError(t, sess.Run(context.Background()))

	assert.Equal(t, 1, sess.Stats.Run.PathPass)
	assert.Equal(t, 0, sess.Stats.Run.PathFail)
	assert.Equal(t, 1, sess.Stats.Run.HostPass)
	assert.Equal(t, 0, sess.Stats.Run.HostFail)
}

func TestRunUnreachableSourceSkipsProbe(t *testing.T) {
	runner := newFleetRunner(nil, "web1")
	file := writeRules(t, "web1:db1:3306")

	sess := NewSession(Config{Files: []string{file}}, runner)
	require.NoError(t, sess.Run(context.Background()))

	assert.Empty(t, runner.probeCommands(), "no TCP probe against a dead source")
	assert.Equal(t, 1, sess.Stats.Run.HostFail)
	assert.Equal(t, 0, sess.Stats.Run.PathPass)
	assert.Equal(t, 1, sess.Stats.Run.PathFail)
}

func TestRunHostCheckedOncePerRun(t *testing.T) {
	runner := newFleetRunner(nil)
	file := writeRules(t,
		"web1:db1:3306",
		"web1:db2:3306",
		"web1:cache1:6379",
	)

	sess := NewSession(Config{Files: []string{file}}, runner)
	require.NoError(t, sess.Run(context.Background()))

	handshakes := 0
	for _, c := range runner.commands {
		if strings.HasSuffix(c, ": hostname") {
			handshakes++
		}
	}
	assert.Equal(t, 1, handshakes)
	assert.Equal(t, 1, sess.Stats.Run.HostPass)
	assert.Equal(t, 3, sess.Stats.Run.PathPass)
}

func TestRunRangeExpansion(t *testing.T) {
	runner := newFleetRunner(nil)
	file := writeRules(t, "prod/web[01-03]:db1:3306")

	sess := NewSession(Config{Files: []string{file}}, runner)
	require.NoError(t, sess.Run(context.Background()))

	cmds := runner.probeCommands()
	require.Len(t, cmds, 3)
	assert.True(t, strings.HasPrefix(cmds[0], "web01: "))
	assert.True(t, strings.HasPrefix(cmds[1], "web02: "))
	assert.True(t, strings.HasPrefix(cmds[2], "web03: "))
	assert.Equal(t, 3, sess.Stats.Run.HostPass)
}

func TestRunFilter(t *testing.T) {
	runner := newFleetRunner(nil)
	file := writeRules(t,
		"web1:db1:3306",
		"web2:app1:8080",
		"web3:db2:3306",
		"web4:cache1:6379",
		"web5:app2:8080",
	)

	sess := NewSession(Config{Files: []string{file}, Filter: "db"}, runner)
	require.NoError(t, sess.Run(context.Background()))

	assert.Len(t, runner.probeCommands(), 2, "exactly the two db lines probe")
	assert.Equal(t, 2, sess.Stats.Run.PathPass+sess.Stats.Run.PathFail)
}

func TestRunMalformedLinesAreSkippedNotFatal(t *testing.T) {
	runner := newFleetRunner(nil)
	file := writeRules(t,
		"# header comment",
		"",
		"web1:db1:not-a-port",
		"web[9-1]:db1:3306",
		"web1:db1:3306",
	)

	sess := NewSession(Config{Files: []string{file}}, runner)
	require.NoError(t, sess.Run(context.Background()))

	assert.Len(t, runner.probeCommands(), 1)
	assert.Equal(t, 1, sess.Stats.Run.PathPass)
	assert.Equal(t, 0, sess.Stats.Run.PathFail)
}

func TestRunMissingFileIsFatal(t *testing.T) {
	runner := newFleetRunner(nil)
	sess := NewSession(Config{Files: []string{"/nonexistent/rules.txt"}}, runner)

	err := sess.Run(context.Background())
	require.Error(t, err)
	assert.Empty(t, runner.commands, "nothing runs when a rules file is missing")
}

func TestRunPerFileAndCumulativeScopes(t *testing.T) {
	runner := newFleetRunner(func(host, _ string) (remote.Result, error) {
		if host == "web2" {
			return remote.Result{Output: "nc: connect timed out\n", ExitCode: 1}, nil
		}
		return remote.Result{Output: "succeeded!\n"}, nil
	})
	fileA := writeRules(t, "web1:db1:3306")
	fileB := writeRules(t, "web2:db1:3306")

	sess := NewSession(Config{Files: []string{fileA, fileB}}, runner)
	require.NoError(t, sess.Run(context.Background()))

	// File scope holds only the last file; the run scope holds both.
	assert.Equal(t, stats.Counters{HostPass: 1, PathFail: 1}, sess.Stats.File)
	assert.Equal(t, stats.Counters{HostPass: 2, PathPass: 1, PathFail: 1}, sess.Stats.Run)
}

func TestRunIdempotentAgainstSameMock(t *testing.T) {
	script := func(host, _ string) (remote.Result, error) {
		if host == "web2" {
			return remote.Result{Output: "nc: connect timed out\n", ExitCode: 1}, nil
		}
		return remote.Result{Output: "succeeded!\n"}, nil
	}
	file := writeRules(t,
		"web1:db[1-2]:3306",
		"web2:db1:3306",
		"web3:ns1:dns:a.example.org",
	)

	run := func() stats.Counters {
		runner := newFleetRunner(func(host, command string) (remote.Result, error) {
			if strings.HasPrefix(command, "dig") {
				return remote.Result{Output: "10.0.0.5\n"}, nil
			}
			return script(host, command)
		}, "web3")
		sess := NewSession(Config{Files: []string{file}}, runner)
		require.NoError(t, sess.Run(context.Background()))
		return sess.Stats.Run
	}

	first := run()
	second := run()
	assert.Equal(t, first, second, "same rules, same mock, same counters")
	assert.Equal(t, stats.Counters{HostPass: 2, HostFail: 1, PathPass: 2, PathFail: 2}, first)
}

func TestRunEscalationGatedByFlags(t *testing.T) {
	runner := newFleetRunner(func(_, command string) (remote.Result, error) {
		if strings.HasPrefix(command, "traceroute") {
			return remote.Result{Output: "1 gw (10.0.0.1) 0.4 ms\n"}, nil
		}
		return remote.Result{Output: "nc: connect timed out\n", ExitCode: 1}, nil
	})
	file := writeRules(t, "web1:db1:3306")

	sess := NewSession(Config{
		Files: []string{file},
		Flags: probe.Flags{Traceroute: true},
	}, runner)
	require.NoError(t, sess.Run(context.Background()))

	var traced bool
	for _, c := range runner.probeCommands() {
		if strings.Contains(c, "traceroute") {
			traced = true
		}
	}
	assert.True(t, traced, "timeout plus --traceroute must escalate")
}

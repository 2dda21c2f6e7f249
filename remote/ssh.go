package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

const (
	defaultSSHPort        = 22
	defaultConnectTimeout = 5 * time.Second
)

// SSHRunner runs commands over SSH with a fixed connect timeout. Host
// keys are not verified: the tool probes fleets where keys churn and a
// mismatch would otherwise abort the whole run.
type SSHRunner struct {
	User           string
	Port           int
	KeyFile        string
	ConnectTimeout time.Duration
}

func NewSSHRunner(user string, port int, keyFile string, connectTimeout time.Duration) *SSHRunner {
	if port <= 0 {
		port = defaultSSHPort
	}
	if connectTimeout <= 0 {
		connectTimeout = defaultConnectTimeout
	}
	return &SSHRunner{
		User:           user,
		Port:           port,
		KeyFile:        keyFile,
		ConnectTimeout: connectTimeout,
	}
}

func (r *SSHRunner) Run(ctx context.Context, host, command string) (Result, error) {
	cfg := &ssh.ClientConfig{
		User:            r.User,
		Auth:            r.authMethods(),
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         r.ConnectTimeout,
	}

	addr := net.JoinHostPort(host, strconv.Itoa(r.Port))
	client, err := ssh.Dial("tcp", addr, cfg)
	if err != nil {
		return Result{ExitCode: -1}, fmt.Errorf("dial %s: %w", addr, err)
	}
	defer client.Close()

	sess, err := client.NewSession()
	if err != nil {
		return Result{ExitCode: -1}, fmt.Errorf("session on %s: %w", addr, err)
	}
	defer sess.Close()

	type completion struct {
		out []byte
		err error
	}
	done := make(chan completion, 1)
	go func() {
		out, err := sess.CombinedOutput(command)
		done <- completion{out, err}
	}()

	select {
	case <-ctx.Done():
		_ = sess.Close()
		return Result{ExitCode: -1}, fmt.Errorf("run on %s: %w", addr, ctx.Err())
	case c := <-done:
		res := Result{Output: string(c.out)}
		if c.err == nil {
			return res, nil
		}
		var exitErr *ssh.ExitError
		if errors.As(c.err, &exitErr) {
			// Command ran and failed; not a transport error.
			res.ExitCode = exitErr.ExitStatus()
			return res, nil
		}
		res.ExitCode = -1
		return res, fmt.Errorf("run on %s: %w", addr, c.err)
	}
}

// authMethods prefers an explicit key file and falls back to a running
// ssh-agent when SSH_AUTH_SOCK is set.
func (r *SSHRunner) authMethods() []ssh.AuthMethod {
	var methods []ssh.AuthMethod
	if r.KeyFile != "" {
		if pem, err := os.ReadFile(r.KeyFile); err == nil {
			if signer, err := ssh.ParsePrivateKey(pem); err == nil {
				methods = append(methods, ssh.PublicKeys(signer))
			}
		}
	}
	if sock := os.Getenv("SSH_AUTH_SOCK"); sock != "" {
		if conn, err := net.Dial("unix", sock); err == nil {
			methods = append(methods, ssh.PublicKeysCallback(agent.NewClient(conn).Signers))
		}
	}
	return methods
}

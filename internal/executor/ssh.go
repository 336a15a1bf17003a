package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/IT21259166/anbd-core/internal/config"
	"github.com/IT21259166/anbd-core/pkg/logger"
)

const defaultTimeout = 10 * time.Second

// SSHExecutor runs commands over SSH using key-based authentication. Each Run
// opens its own connection; probe and remediation volume is low enough that
// connection pooling is not worth the state.
type SSHExecutor struct {
	user    string
	signer  ssh.Signer
	port    int
	timeout time.Duration
	logger  logger.Logger

	// dial is swapped in tests.
	dial func(network, addr string, cfg *ssh.ClientConfig) (*ssh.Client, error)
}

// NewSSH builds an executor from config. The private key is read eagerly so a
// bad key path fails at startup, not on the first anomaly.
func NewSSH(cfg config.ExecutorConfig, log logger.Logger) (*SSHExecutor, error) {
	key, err := os.ReadFile(cfg.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("read ssh key: %w", err)
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("parse ssh key: %w", err)
	}

	timeout := defaultTimeout
	if cfg.TimeoutMs > 0 {
		timeout = time.Duration(cfg.TimeoutMs) * time.Millisecond
	}
	port := cfg.Port
	if port == 0 {
		port = 22
	}

	return &SSHExecutor{
		user:    cfg.User,
		signer:  signer,
		port:    port,
		timeout: timeout,
		logger:  log,
		dial:    ssh.Dial,
	}, nil
}

// Run executes one command on host and returns its combined output. The
// command is bounded by the executor timeout and by ctx, whichever ends
// first.
func (e *SSHExecutor) Run(ctx context.Context, host, command string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()

	clientCfg := &ssh.ClientConfig{
		User:            e.user,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(e.signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         e.timeout,
	}

	addr := net.JoinHostPort(host, strconv.Itoa(e.port))
	client, err := e.dial("tcp", addr, clientCfg)
	if err != nil {
		return Result{Duration: time.Since(start)}, fmt.Errorf("ssh dial %s: %w", addr, err)
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return Result{Duration: time.Since(start)}, fmt.Errorf("ssh session %s: %w", addr, err)
	}
	defer session.Close()

	var out bytes.Buffer
	session.Stdout = &out
	session.Stderr = &out

	done := make(chan error, 1)
	go func() { done <- session.Run(command) }()

	select {
	case <-ctx.Done():
		session.Close()
		return Result{Output: out.String(), Duration: time.Since(start)},
			fmt.Errorf("command on %s: %w", host, ctx.Err())
	case err = <-done:
	}

	res := Result{Output: out.String(), Duration: time.Since(start)}
	if err != nil {
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitStatus()
			return res, fmt.Errorf("command on %s exited %d", host, res.ExitCode)
		}
		return res, fmt.Errorf("command on %s: %w", host, err)
	}

	e.logger.Debug("remote command completed", "host", host, "duration_ms", res.Duration.Milliseconds())
	return res, nil
}

package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/terabiome/kubeboot/internal/api"
)

// SSH executes commands on a remote host via SSH.
// It maintains a persistent connection that can be reused across
// multiple Execute calls and shared with the SFTP transfer.
type SSH struct {
	client *ssh.Client
	host   string
	logger *slog.Logger
}

// SSHConfig contains SSH connection parameters.
type SSHConfig struct {
	Host    string
	Port    int
	User    string
	KeyPath string

	// Timeout bounds the TCP connect and SSH handshake. Zero means no
	// bound; callers should set one so an unreachable node cannot block
	// a provisioning run indefinitely.
	Timeout time.Duration

	HostKey HostKeyPolicy
}

// NewSSH creates a new SSH executor with an established connection.
// Dial and authentication failures are reported as api.ErrConnectFailed;
// a rejected host identity as api.ErrUntrustedHost.
func NewSSH(config SSHConfig, logger *slog.Logger) (*SSH, error) {
	log := logger.With(slog.String("executor", "ssh"), slog.String("host", config.Host))

	client, err := createSSHClient(config, log)
	if err != nil {
		return nil, err
	}

	return &SSH{
		client: client,
		host:   config.Host,
		logger: log,
	}, nil
}

// Close closes the SSH connection.
func (e *SSH) Close() error {
	if e.client != nil {
		e.logger.Debug("closing SSH connection")
		return e.client.Close()
	}
	return nil
}

func (e *SSH) Name() string {
	return fmt.Sprintf("ssh-%s", e.host)
}

func (e *SSH) Execute(
	ctx context.Context,
	stdout, stderr io.Writer,
	command string, args ...string,
) (int, error) {
	cmdStr := buildCommandString(command, args)
	e.logger.Debug("executing command via SSH", slog.String("cmd", cmdStr))

	session, err := e.client.NewSession()
	if err != nil {
		return -1, fmt.Errorf("failed to create SSH session: %w", err)
	}
	defer session.Close()

	session.Stdout = stdout
	session.Stderr = stderr

	// Run in a goroutine so a cancelled context can tear the session
	// down instead of blocking on remote I/O.
	done := make(chan error, 1)
	go func() {
		done <- session.Run(cmdStr)
	}()

	select {
	case <-ctx.Done():
		session.Close()
		<-done
		return -1, fmt.Errorf("command aborted: %w", ctx.Err())
	case err = <-done:
	}

	if err != nil {
		if exitErr, ok := err.(*ssh.ExitError); ok {
			exitCode := exitErr.ExitStatus()
			e.logger.Warn("SSH command failed",
				slog.String("cmd", cmdStr),
				slog.Int("exit_code", exitCode),
			)
			return exitCode, fmt.Errorf("command exited with code %d: %w", exitCode, err)
		}

		e.logger.Error("SSH command execution error",
			slog.String("cmd", cmdStr),
			slog.String("error", err.Error()),
		)
		return -1, fmt.Errorf("command execution failed: %w", err)
	}

	e.logger.Debug("SSH command succeeded", slog.String("cmd", cmdStr))
	return 0, nil
}

// createSSHClient establishes an SSH connection from the given config.
func createSSHClient(config SSHConfig, logger *slog.Logger) (*ssh.Client, error) {
	port := config.Port
	if port == 0 {
		port = 22
	}

	keyPath, err := expandHome(config.KeyPath)
	if err != nil {
		return nil, err
	}

	keyBytes, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read SSH key %s: %v", api.ErrConnectFailed, keyPath, err)
	}

	signer, err := ssh.ParsePrivateKey(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse SSH key: %v", api.ErrConnectFailed, err)
	}

	hostKeyCallback, err := NewHostKeyCallback(config.HostKey)
	if err != nil {
		return nil, err
	}

	sshConfig := &ssh.ClientConfig{
		User: config.User,
		Auth: []ssh.AuthMethod{
			ssh.PublicKeys(signer),
		},
		HostKeyCallback: hostKeyCallback,
		Timeout:         config.Timeout,
	}

	addr := fmt.Sprintf("%s:%d", config.Host, port)
	logger.Debug("establishing SSH connection", slog.String("addr", addr))

	client, err := ssh.Dial("tcp", addr, sshConfig)
	if err != nil {
		if errors.Is(err, api.ErrUntrustedHost) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: failed to connect to %s: %v", api.ErrConnectFailed, addr, err)
	}

	logger.Debug("SSH connection established", slog.String("addr", addr))
	return client, nil
}

package join

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/terabiome/kubeboot/internal/api"
	"github.com/terabiome/kubeboot/internal/config"
	"github.com/terabiome/kubeboot/pkg/executor"
)

// Params names the inputs of one join-command request.
type Params struct {
	Host    string
	KeyPath string
}

// remoteSession is the slice of the SSH executor the provider needs.
type remoteSession interface {
	executor.Executor
	Close() error
}

type dialFunc func(cfg executor.SSHConfig, logger *slog.Logger) (remoteSession, error)

// Provider mints a one-time worker join command on a control-plane node
// by running the cluster's token-issuing command over SSH.
type Provider struct {
	cfg    *config.Config
	logger *slog.Logger
	tracer trace.Tracer
	dial   dialFunc
}

func NewProvider(cfg *config.Config, logger *slog.Logger) *Provider {
	return &Provider{
		cfg:    cfg,
		logger: logger.With(slog.String("service", "join-command")),
		tracer: otel.Tracer("kubeboot/join"),
		dial: func(sshCfg executor.SSHConfig, log *slog.Logger) (remoteSession, error) {
			return executor.NewSSH(sshCfg, log)
		},
	}
}

// Provide runs the token-issuing command on params.Host and returns the
// join command verbatim, trimmed of trailing line breaks. The string is
// opaque: it is never re-parsed, whatever shell metacharacters it
// carries. Each call mints a new token on the control-plane node.
func (p *Provider) Provide(ctx context.Context, params Params) (command string, err error) {
	ctx, span := p.tracer.Start(ctx, "join.Provide")
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	if params.Host == "" {
		return "", fmt.Errorf("%w: host must not be empty", api.ErrInvalidRequest)
	}
	if params.KeyPath == "" {
		return "", fmt.Errorf("%w: key must not be empty", api.ErrInvalidRequest)
	}

	p.logger.Info("requesting join command", slog.String("host", params.Host))

	session, err := p.dial(executor.SSHConfig{
		Host:    params.Host,
		Port:    p.cfg.SSHPort,
		User:    p.cfg.SSHUser,
		KeyPath: params.KeyPath,
		Timeout: p.cfg.ConnectTimeout,
		HostKey: executor.HostKeyPolicy{
			Policy:         p.cfg.HostKeyPolicy,
			KnownHostsPath: p.cfg.KnownHostsPath,
		},
	}, p.logger)
	if err != nil {
		return "", err
	}
	defer session.Close()

	result, err := executor.RunAndCapture(ctx, session, p.cfg.JoinCommand)
	if err != nil || result.ExitCode != 0 {
		return "", fmt.Errorf("%w: %s exited with code %d: %s",
			api.ErrCommandFailed, p.cfg.JoinCommand, result.ExitCode, strings.TrimSpace(result.Stderr))
	}

	command = strings.TrimRight(result.Stdout, "\r\n")
	if command == "" {
		return "", fmt.Errorf("%w: %s produced no output", api.ErrCommandFailed, p.cfg.JoinCommand)
	}

	p.logger.Info("join command minted", slog.String("host", params.Host))
	return command, nil
}

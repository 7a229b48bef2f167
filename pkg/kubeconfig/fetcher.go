package kubeconfig

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"

	"github.com/terabiome/kubeboot/internal/api"
	"github.com/terabiome/kubeboot/internal/config"
	"github.com/terabiome/kubeboot/pkg/executor"
)

// Params names the inputs of one fetch.
type Params struct {
	Workspace      string
	PublicAddress  string
	PrivateAddress string
	KeyPath        string
}

// transferSession is the slice of the SSH executor the fetcher needs.
type transferSession interface {
	Download(ctx context.Context, remotePath, localPath string) error
	Close() error
}

type dialFunc func(cfg executor.SSHConfig, logger *slog.Logger) (transferSession, error)

// Fetcher downloads the admin credential from a control-plane node,
// rewrites its embedded endpoint from the node's private address to its
// public one, and persists it as <workspace>.conf.
type Fetcher struct {
	cfg    *config.Config
	logger *slog.Logger
	tracer trace.Tracer
	dial   dialFunc
}

func NewFetcher(cfg *config.Config, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		cfg:    cfg,
		logger: logger.With(slog.String("service", "kubeconfig-fetch")),
		tracer: otel.Tracer("kubeboot/kubeconfig"),
		dial: func(sshCfg executor.SSHConfig, log *slog.Logger) (transferSession, error) {
			return executor.NewSSH(sshCfg, log)
		},
	}
}

// Fetch runs one credential fetch. Idempotent: re-running with the same
// params deterministically overwrites <workspace>.conf. Concurrent
// fetches are safe as long as workspaces are distinct.
func (f *Fetcher) Fetch(ctx context.Context, params Params) (err error) {
	ctx, span := f.tracer.Start(ctx, "kubeconfig.Fetch")
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	if err := validateParams(params); err != nil {
		return err
	}

	f.logger.Info("fetching admin credential",
		slog.String("workspace", params.Workspace),
		slog.String("public_address", params.PublicAddress),
	)

	session, err := f.dial(executor.SSHConfig{
		Host:    params.PublicAddress,
		Port:    f.cfg.SSHPort,
		User:    f.cfg.SSHUser,
		KeyPath: params.KeyPath,
		Timeout: f.cfg.ConnectTimeout,
		HostKey: executor.HostKeyPolicy{
			Policy:         f.cfg.HostKeyPolicy,
			KnownHostsPath: f.cfg.KnownHostsPath,
		},
	}, f.logger)
	if err != nil {
		return err
	}
	defer session.Close()

	// The raw download goes to a uuid-named scratch file so concurrent
	// fetches never collide, and is removed on every path so no
	// unrewritten credential persists on disk.
	rawPath := filepath.Join(f.cfg.OutputDir, fmt.Sprintf(".kubeboot-raw-%s", uuid.NewString()))
	defer os.Remove(rawPath)

	if err := session.Download(ctx, f.cfg.AdminConfPath, rawPath); err != nil {
		return err
	}

	raw, err := os.ReadFile(rawPath)
	if err != nil {
		return fmt.Errorf("%w: failed to read downloaded credential: %v", api.ErrTransferFailed, err)
	}

	rewritten, count := RewriteEndpoint(string(raw), params.PrivateAddress, params.PublicAddress)
	if count == 0 {
		// Not an error: some configurations reference the endpoint
		// elsewhere, or the rewrite is a no-op. It can also mean the
		// wrong private address was supplied, so make it visible.
		f.logger.Warn("private address not found in credential, content written unchanged",
			slog.String("private_address", params.PrivateAddress),
		)
	} else {
		f.logger.Debug("rewrote endpoint occurrences", slog.Int("count", count))
	}

	var doc map[string]any
	if err := yaml.Unmarshal([]byte(rewritten), &doc); err != nil {
		f.logger.Warn("rewritten credential is not valid YAML",
			slog.String("error", err.Error()),
		)
	}

	destPath := filepath.Join(f.cfg.OutputDir, params.Workspace+".conf")
	if err := writeAtomic(destPath, []byte(rewritten), 0600); err != nil {
		return err
	}

	f.logger.Info("admin credential written", slog.String("path", destPath))
	return nil
}

func validateParams(params Params) error {
	if err := validateWorkspace(params.Workspace); err != nil {
		return err
	}
	if params.PublicAddress == "" {
		return fmt.Errorf("%w: public address must not be empty", api.ErrInvalidRequest)
	}
	if params.PrivateAddress == "" {
		return fmt.Errorf("%w: private address must not be empty", api.ErrInvalidRequest)
	}
	if params.KeyPath == "" {
		return fmt.Errorf("%w: key path must not be empty", api.ErrInvalidRequest)
	}
	return nil
}

// validateWorkspace rejects identifiers that cannot serve as a filename
// component for <workspace>.conf.
func validateWorkspace(workspace string) error {
	if workspace == "" {
		return fmt.Errorf("%w: workspace must not be empty", api.ErrInvalidRequest)
	}
	if workspace == "." || workspace == ".." {
		return fmt.Errorf("%w: workspace must not be a relative path element", api.ErrInvalidRequest)
	}
	if strings.ContainsAny(workspace, `/\`) {
		return fmt.Errorf("%w: workspace must not contain path separators: %s", api.ErrInvalidRequest, workspace)
	}
	return nil
}

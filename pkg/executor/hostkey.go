package executor

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/terabiome/kubeboot/internal/api"
	"github.com/terabiome/kubeboot/internal/config"
)

// HostKeyPolicy selects how a remote node's identity is checked before
// any credential or token crosses the connection.
type HostKeyPolicy struct {
	// Policy is config.HostKeyPolicyKnownHosts or
	// config.HostKeyPolicyInsecure.
	Policy string

	// KnownHostsPath is the known_hosts file consulted under the
	// known-hosts policy.
	KnownHostsPath string
}

// NewHostKeyCallback builds the ssh.HostKeyCallback for the policy.
// Under the known-hosts policy, an unknown or mismatched host key is
// reported as api.ErrUntrustedHost.
func NewHostKeyCallback(policy HostKeyPolicy) (ssh.HostKeyCallback, error) {
	switch policy.Policy {
	case config.HostKeyPolicyInsecure:
		return ssh.InsecureIgnoreHostKey(), nil

	case config.HostKeyPolicyKnownHosts, "":
		path, err := expandHome(policy.KnownHostsPath)
		if err != nil {
			return nil, err
		}
		verify, err := knownhosts.New(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load known hosts file %s: %w", path, err)
		}
		return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
			if err := verify(hostname, remote, key); err != nil {
				return fmt.Errorf("%w: %s: %v", api.ErrUntrustedHost, hostname, err)
			}
			return nil
		}, nil

	default:
		return nil, fmt.Errorf("unknown host key policy: %s", policy.Policy)
	}
}

// expandHome resolves a leading ~/ against the user's home directory.
func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}

package executor

import (
	"crypto/ed25519"
	"crypto/rand"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/terabiome/kubeboot/internal/api"
	"github.com/terabiome/kubeboot/internal/config"
)

func generateHostKey(t *testing.T) ssh.PublicKey {
	t.Helper()

	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	sshPub, err := ssh.NewPublicKey(pub)
	require.NoError(t, err)
	return sshPub
}

func writeKnownHosts(t *testing.T, addr string, key ssh.PublicKey) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "known_hosts")
	line := knownhosts.Line([]string{addr}, key) + "\n"
	require.NoError(t, os.WriteFile(path, []byte(line), 0600))
	return path
}

func TestNewHostKeyCallback_InsecureAcceptsAnyKey(t *testing.T) {
	callback, err := NewHostKeyCallback(HostKeyPolicy{Policy: config.HostKeyPolicyInsecure})
	require.NoError(t, err)

	addr := &net.TCPAddr{IP: net.ParseIP("10.0.0.5"), Port: 22}
	assert.NoError(t, callback("10.0.0.5:22", addr, generateHostKey(t)))
}

func TestNewHostKeyCallback_KnownHostAccepted(t *testing.T) {
	key := generateHostKey(t)
	path := writeKnownHosts(t, "10.0.0.5:22", key)

	callback, err := NewHostKeyCallback(HostKeyPolicy{
		Policy:         config.HostKeyPolicyKnownHosts,
		KnownHostsPath: path,
	})
	require.NoError(t, err)

	addr := &net.TCPAddr{IP: net.ParseIP("10.0.0.5"), Port: 22}
	assert.NoError(t, callback("10.0.0.5:22", addr, key))
}

func TestNewHostKeyCallback_MismatchedKeyIsUntrusted(t *testing.T) {
	path := writeKnownHosts(t, "10.0.0.5:22", generateHostKey(t))

	callback, err := NewHostKeyCallback(HostKeyPolicy{
		Policy:         config.HostKeyPolicyKnownHosts,
		KnownHostsPath: path,
	})
	require.NoError(t, err)

	addr := &net.TCPAddr{IP: net.ParseIP("10.0.0.5"), Port: 22}
	err = callback("10.0.0.5:22", addr, generateHostKey(t))
	assert.ErrorIs(t, err, api.ErrUntrustedHost)
}

func TestNewHostKeyCallback_UnknownHostIsUntrusted(t *testing.T) {
	path := writeKnownHosts(t, "10.0.0.5:22", generateHostKey(t))

	callback, err := NewHostKeyCallback(HostKeyPolicy{
		Policy:         config.HostKeyPolicyKnownHosts,
		KnownHostsPath: path,
	})
	require.NoError(t, err)

	addr := &net.TCPAddr{IP: net.ParseIP("198.51.100.9"), Port: 22}
	err = callback("198.51.100.9:22", addr, generateHostKey(t))
	assert.ErrorIs(t, err, api.ErrUntrustedHost)
}

func TestNewHostKeyCallback_UnknownPolicy(t *testing.T) {
	_, err := NewHostKeyCallback(HostKeyPolicy{Policy: "trust-everyone"})
	assert.Error(t, err)
}

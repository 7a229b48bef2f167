package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.False(t, cfg.TelemetryEnabled)
	assert.Equal(t, "root", cfg.SSHUser)
	assert.Equal(t, 22, cfg.SSHPort)
	assert.Equal(t, 30*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, 120*time.Second, cfg.OperationTimeout)
	assert.Equal(t, HostKeyPolicyKnownHosts, cfg.HostKeyPolicy)
	assert.Equal(t, "~/.ssh/known_hosts", cfg.KnownHostsPath)
	assert.Equal(t, "/etc/kubernetes/admin.conf", cfg.AdminConfPath)
	assert.Equal(t, "kubeadm token create --print-join-command", cfg.JoinCommand)
	assert.Equal(t, ".", cfg.OutputDir)
}

func TestLoad_EnvOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("KUBEBOOT_SSH_USER", "ubuntu")
	t.Setenv("KUBEBOOT_HOST_KEY_POLICY", "insecure")
	t.Setenv("KUBEBOOT_CONNECT_TIMEOUT_SECONDS", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "ubuntu", cfg.SSHUser)
	assert.Equal(t, HostKeyPolicyInsecure, cfg.HostKeyPolicy)
	assert.Equal(t, 5*time.Second, cfg.ConnectTimeout)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad log level", "KUBEBOOT_LOG_LEVEL", "verbose"},
		{"bad log format", "KUBEBOOT_LOG_FORMAT", "xml"},
		{"bad host key policy", "KUBEBOOT_HOST_KEY_POLICY", "trust-everyone"},
		{"bad ssh port", "KUBEBOOT_SSH_PORT", "70000"},
		{"zero connect timeout", "KUBEBOOT_CONNECT_TIMEOUT_SECONDS", "0"},
		{"zero operation timeout", "KUBEBOOT_OPERATION_TIMEOUT_SECONDS", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			t.Cleanup(viper.Reset)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestValidate_EmptyWellKnownPaths(t *testing.T) {
	cfg := &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		SSHPort:          22,
		ConnectTimeout:   time.Second,
		OperationTimeout: time.Second,
		HostKeyPolicy:    HostKeyPolicyKnownHosts,
		JoinCommand:      "kubeadm token create --print-join-command",
	}
	assert.Error(t, cfg.Validate(), "empty admin conf path must be rejected")

	cfg.AdminConfPath = "/etc/kubernetes/admin.conf"
	cfg.JoinCommand = ""
	assert.Error(t, cfg.Validate(), "empty join command must be rejected")
}

package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Host-key policies for remote sessions.
const (
	HostKeyPolicyKnownHosts = "known-hosts"
	HostKeyPolicyInsecure   = "insecure"
)

type Config struct {
	LogLevel         string
	LogFormat        string
	TelemetryEnabled bool

	SSHUser        string
	SSHPort        int
	ConnectTimeout time.Duration

	// OperationTimeout bounds an entire fetch or join-command run so an
	// unresponsive node cannot block a provisioning pipeline forever.
	OperationTimeout time.Duration

	// HostKeyPolicy controls remote host-identity verification.
	// "known-hosts" verifies against KnownHostsPath; "insecure" trusts
	// any responder at the given address.
	HostKeyPolicy  string
	KnownHostsPath string

	// AdminConfPath is the well-known location of the cluster admin
	// credential on a control-plane node. JoinCommand is the cluster's
	// token-issuing invocation. Both are owned by the cluster runtime.
	AdminConfPath string
	JoinCommand   string

	// OutputDir is where fetched credentials are written.
	OutputDir string
}

func Load() (*Config, error) {
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "text")
	viper.SetDefault("telemetry_enabled", false)
	viper.SetDefault("ssh_user", "root")
	viper.SetDefault("ssh_port", 22)
	viper.SetDefault("connect_timeout_seconds", 30)
	viper.SetDefault("operation_timeout_seconds", 120)
	viper.SetDefault("host_key_policy", HostKeyPolicyKnownHosts)
	viper.SetDefault("known_hosts_path", "~/.ssh/known_hosts")
	viper.SetDefault("admin_conf_path", "/etc/kubernetes/admin.conf")
	viper.SetDefault("join_command", "kubeadm token create --print-join-command")
	viper.SetDefault("output_dir", ".")

	viper.SetEnvPrefix("kubeboot")
	viper.AutomaticEnv()

	cfg := &Config{
		LogLevel:         viper.GetString("log_level"),
		LogFormat:        viper.GetString("log_format"),
		TelemetryEnabled: viper.GetBool("telemetry_enabled"),
		SSHUser:          viper.GetString("ssh_user"),
		SSHPort:          viper.GetInt("ssh_port"),
		ConnectTimeout:   time.Duration(viper.GetInt("connect_timeout_seconds")) * time.Second,
		OperationTimeout: time.Duration(viper.GetInt("operation_timeout_seconds")) * time.Second,
		HostKeyPolicy:    viper.GetString("host_key_policy"),
		KnownHostsPath:   viper.GetString("known_hosts_path"),
		AdminConfPath:    viper.GetString("admin_conf_path"),
		JoinCommand:      viper.GetString("join_command"),
		OutputDir:        viper.GetString("output_dir"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", c.LogLevel)
	}

	validLogFormats := map[string]bool{"text": true, "json": true}
	if !validLogFormats[c.LogFormat] {
		return fmt.Errorf("invalid log format: %s (valid: text, json)", c.LogFormat)
	}

	if c.SSHPort <= 0 || c.SSHPort > 65535 {
		return fmt.Errorf("invalid ssh port: %d", c.SSHPort)
	}

	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("invalid connect timeout: %s", c.ConnectTimeout)
	}

	if c.OperationTimeout <= 0 {
		return fmt.Errorf("invalid operation timeout: %s", c.OperationTimeout)
	}

	switch c.HostKeyPolicy {
	case HostKeyPolicyKnownHosts, HostKeyPolicyInsecure:
	default:
		return fmt.Errorf("invalid host key policy: %s (valid: %s, %s)",
			c.HostKeyPolicy, HostKeyPolicyKnownHosts, HostKeyPolicyInsecure)
	}

	if c.AdminConfPath == "" {
		return fmt.Errorf("admin conf path must not be empty")
	}

	if c.JoinCommand == "" {
		return fmt.Errorf("join command must not be empty")
	}

	return nil
}

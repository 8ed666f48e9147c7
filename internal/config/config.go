/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

/*
Package config provides configuration management for FlyChat.

CONFIGURATION SOURCES (in order of precedence):
===============================================
1. Command-line flags (highest priority)
2. Environment variables (FLYCHAT_* prefix)
3. Configuration file (JSON format)
4. Default values (lowest priority)

CONFIGURATION CATEGORIES:
=========================
- Server: server_name, bind_addr, advertise_addr
- GRPC: grpc.bind_addr, grpc.advertise_addr
- Balance: balance.addr (registry server endpoint)
- Backends: redis.*, mysql.*
- Resources: resources.bind_addr, resources.data_dir, resources.workers
- Features: archive (Kafka), ws gateway, discovery
- Observability: metrics
- Logging: log_level, log_json

EXAMPLE CONFIGURATION FILE:

	{
	  "server_name": "chat-a",
	  "bind_addr": ":8090",
	  "grpc": { "bind_addr": ":8091" },
	  "balance": { "addr": "127.0.0.1:9000" },
	  "redis": { "addr": "127.0.0.1:6379" }
	}

ENVIRONMENT VARIABLES:
======================
All settings can be configured via environment variables with FLYCHAT_ prefix.
Example: FLYCHAT_BIND_ADDR=":8090" FLYCHAT_LOG_LEVEL="debug"
*/
package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
)

// Environment variable names
const (
	EnvServerName    = "FLYCHAT_SERVER_NAME"
	EnvBindAddr      = "FLYCHAT_BIND_ADDR"
	EnvAdvertiseAddr = "FLYCHAT_ADVERTISE_ADDR"
	EnvLogLevel      = "FLYCHAT_LOG_LEVEL"
	EnvLogJSON       = "FLYCHAT_LOG_JSON"

	// gRPC configuration
	EnvGRPCBindAddr      = "FLYCHAT_GRPC_BIND_ADDR"
	EnvGRPCAdvertiseAddr = "FLYCHAT_GRPC_ADVERTISE_ADDR"

	// Balance server configuration
	EnvBalanceAddr = "FLYCHAT_BALANCE_ADDR"

	// Redis configuration
	EnvRedisAddr     = "FLYCHAT_REDIS_ADDR"
	EnvRedisPassword = "FLYCHAT_REDIS_PASSWORD"
	EnvRedisDB       = "FLYCHAT_REDIS_DB"

	// MySQL configuration
	EnvMySQLDSN = "FLYCHAT_MYSQL_DSN"

	// Resources server configuration
	EnvResourcesBindAddr = "FLYCHAT_RESOURCES_BIND_ADDR"
	EnvResourcesDataDir  = "FLYCHAT_RESOURCES_DATA_DIR"
	EnvResourcesWorkers  = "FLYCHAT_RESOURCES_WORKERS"

	// Archive (Kafka) configuration
	EnvArchiveEnabled = "FLYCHAT_ARCHIVE_ENABLED"
	EnvArchiveBrokers = "FLYCHAT_ARCHIVE_BROKERS"
	EnvArchiveTopic   = "FLYCHAT_ARCHIVE_TOPIC"

	// WebSocket gateway configuration
	EnvWSEnabled  = "FLYCHAT_WS_ENABLED"
	EnvWSBindAddr = "FLYCHAT_WS_BIND_ADDR"

	// Observability configuration
	EnvMetricsEnabled = "FLYCHAT_METRICS_ENABLED"
	EnvMetricsAddr    = "FLYCHAT_METRICS_ADDR"

	// Authentication configuration
	EnvAuthJWTSecret = "FLYCHAT_AUTH_JWT_SECRET"
	EnvAuthTokenTTL  = "FLYCHAT_AUTH_TOKEN_TTL"

	// Service discovery configuration
	EnvDiscoveryEnabled   = "FLYCHAT_DISCOVERY_ENABLED"
	EnvDiscoveryClusterID = "FLYCHAT_DISCOVERY_CLUSTER_ID"

	// Session tuning
	EnvSessionIdleTimeout = "FLYCHAT_SESSION_IDLE_TIMEOUT"
)

// Default paths
var DefaultConfigPaths = []string{
	"/etc/flychat/flychat.conf",
	"$HOME/.config/flychat/flychat.conf",
	"./flychat.conf",
}

// GRPCConfig holds the server-to-server gRPC endpoint configuration.
type GRPCConfig struct {
	BindAddr      string `toml:"bind_addr" json:"bind_addr"`           // Address to listen for peer RPCs
	AdvertiseAddr string `toml:"advertise_addr" json:"advertise_addr"` // Advertised address (auto-detected if empty)
}

// BalanceConfig holds the balance/registry server endpoint.
type BalanceConfig struct {
	Addr string `toml:"addr" json:"addr"` // host:port of the balance server gRPC endpoint
}

// RedisConfig holds the presence store backend configuration.
type RedisConfig struct {
	Addr     string `toml:"addr" json:"addr"`
	Password string `toml:"-" json:"-"` // Set via FLYCHAT_REDIS_PASSWORD only (never stored in config files)
	DB       int    `toml:"db" json:"db"`
}

// MySQLConfig holds the relational store configuration.
type MySQLConfig struct {
	DSN          string `toml:"dsn" json:"dsn"` // go-sql-driver DSN, e.g. user:pass@tcp(127.0.0.1:3306)/flychat?parseTime=true
	MaxOpenConns int    `toml:"max_open_conns" json:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns" json:"max_idle_conns"`
}

// ResourcesConfig holds the file-transfer server configuration.
type ResourcesConfig struct {
	BindAddr string `toml:"bind_addr" json:"bind_addr"` // Address to listen for upload connections
	DataDir  string `toml:"data_dir" json:"data_dir"`   // Directory for received files and the resume ledger
	Workers  int    `toml:"workers" json:"workers"`     // Number of sharded upload workers
}

// ArchiveConfig holds message archiving configuration.
type ArchiveConfig struct {
	Enabled bool     `toml:"enabled" json:"enabled"` // Enable Kafka message archiving
	Brokers []string `toml:"brokers" json:"brokers"` // Kafka broker addresses
	Topic   string   `toml:"topic" json:"topic"`     // Archive topic
}

// WSConfig holds the WebSocket gateway configuration.
type WSConfig struct {
	Enabled  bool   `toml:"enabled" json:"enabled"`     // Enable the WebSocket client gateway
	BindAddr string `toml:"bind_addr" json:"bind_addr"` // Gateway HTTP server address
}

// MetricsConfig holds Prometheus metrics configuration.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled" json:"enabled"` // Enable Prometheus metrics
	Addr    string `toml:"addr" json:"addr"`       // Metrics HTTP server address
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	JWTSecret   string `toml:"-" json:"-"`                           // Set via FLYCHAT_AUTH_JWT_SECRET only (never stored in config files)
	TokenTTLSec int64  `toml:"token_ttl_sec" json:"token_ttl_sec"`   // Issued token lifetime in seconds
	AllowPwd    bool   `toml:"allow_password" json:"allow_password"` // Accept password login in addition to tokens
}

// DiscoveryConfig holds configuration for mDNS service discovery.
type DiscoveryConfig struct {
	Enabled   bool   `toml:"enabled" json:"enabled"`       // Enable mDNS service advertisement
	ClusterID string `toml:"cluster_id" json:"cluster_id"` // Cluster identifier for discovery filtering
}

// SessionConfig holds per-connection session tuning.
type SessionConfig struct {
	IdleTimeoutSec    int64 `toml:"idle_timeout_sec" json:"idle_timeout_sec"`       // Seconds without traffic before a session is dropped
	HeartbeatGraceSec int64 `toml:"heartbeat_grace_sec" json:"heartbeat_grace_sec"` // Extra grace applied on top of the client heartbeat period
}

// Config holds the configuration for a FlyChat process.
type Config struct {
	// Server identity and client-facing listener
	ServerName    string `toml:"server_name" json:"server_name"` // Unique chatting-server name
	BindAddr      string `toml:"bind_addr" json:"bind_addr"`     // Address to listen for client TCP connections
	AdvertiseAddr string `toml:"advertise_addr" json:"advertise_addr"`

	// Logging
	LogLevel string `toml:"log_level" json:"log_level"`
	LogJSON  bool   `toml:"log_json" json:"log_json"`

	// Server-to-server RPC
	GRPC GRPCConfig `toml:"grpc" json:"grpc"`

	// Balance/registry server
	Balance BalanceConfig `toml:"balance" json:"balance"`

	// Backends
	Redis RedisConfig `toml:"redis" json:"redis"`
	MySQL MySQLConfig `toml:"mysql" json:"mysql"`

	// File transfer
	Resources ResourcesConfig `toml:"resources" json:"resources"`

	// Message archiving
	Archive ArchiveConfig `toml:"archive" json:"archive"`

	// WebSocket gateway
	WS WSConfig `toml:"ws" json:"ws"`

	// Observability
	Metrics MetricsConfig `toml:"metrics" json:"metrics"`

	// Authentication
	Auth AuthConfig `toml:"auth" json:"auth"`

	// Service discovery
	Discovery DiscoveryConfig `toml:"discovery" json:"discovery"`

	// Session tuning
	Session SessionConfig `toml:"session" json:"session"`

	// Metadata
	ConfigFile string `toml:"-" json:"-"`
}

// DefaultConfig returns defaults.
func DefaultConfig() *Config {
	hostname, _ := os.Hostname()
	return &Config{
		ServerName: hostname,
		BindAddr:   ":8090",
		LogLevel:   "info",
		LogJSON:    true, // JSON by default for production/parsing
		GRPC: GRPCConfig{
			BindAddr: ":8091",
		},
		Balance: BalanceConfig{
			Addr: "127.0.0.1:9000",
		},
		Redis: RedisConfig{
			Addr: "127.0.0.1:6379",
			DB:   0,
		},
		MySQL: MySQLConfig{
			MaxOpenConns: 32,
			MaxIdleConns: 8,
		},
		Resources: ResourcesConfig{
			BindAddr: ":8092",
			DataDir:  defaultDataDir(),
			Workers:  defaultWorkers(),
		},
		Archive: ArchiveConfig{
			Enabled: false,
			Topic:   "flychat.messages",
		},
		WS: WSConfig{
			Enabled:  false,
			BindAddr: ":8093",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9094",
		},
		Auth: AuthConfig{
			TokenTTLSec: 7 * 24 * 3600,
			AllowPwd:    true,
		},
		Discovery: DiscoveryConfig{
			Enabled:   false,
			ClusterID: "",
		},
		Session: SessionConfig{
			IdleTimeoutSec:    90,
			HeartbeatGraceSec: 30,
		},
	}
}

// defaultWorkers returns the upload worker count scaled with the CPU count.
func defaultWorkers() int {
	n := runtime.NumCPU()
	if n < 4 {
		return 4
	}
	if n > 16 {
		return 16
	}
	return n
}

// defaultDataDir returns the default directory for received files.
func defaultDataDir() string {
	if os.Getuid() == 0 {
		return "/var/lib/flychat"
	}
	if home := os.Getenv("HOME"); home != "" {
		return home + "/.local/share/flychat"
	}
	return "./data"
}

// Manager handles configuration loading.
type Manager struct {
	config *Config
	mu     sync.RWMutex
}

var globalManager = &Manager{
	config: DefaultConfig(),
}

// Global returns the global manager.
func Global() *Manager {
	return globalManager
}

// Get returns a copy of current config.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg := *m.config
	return &cfg
}

// Set updates the config.
func (m *Manager) Set(cfg *Config) {
	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()
}

// LoadFromFile loads configuration from a JSON file.
func (m *Manager) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return err
	}

	cfg.ConfigFile = path
	m.Set(cfg)
	return nil
}

// LoadFromEnv loads configuration from environment variables.
func (m *Manager) LoadFromEnv() {
	cfg := m.Get()

	if v := os.Getenv(EnvServerName); v != "" {
		cfg.ServerName = v
	}
	if v := os.Getenv(EnvBindAddr); v != "" {
		cfg.BindAddr = v
	}
	if v := os.Getenv(EnvAdvertiseAddr); v != "" {
		cfg.AdvertiseAddr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvLogJSON); v != "" {
		cfg.LogJSON = isTrue(v)
	}

	// gRPC environment variables
	if v := os.Getenv(EnvGRPCBindAddr); v != "" {
		cfg.GRPC.BindAddr = v
	}
	if v := os.Getenv(EnvGRPCAdvertiseAddr); v != "" {
		cfg.GRPC.AdvertiseAddr = v
	}

	// Balance environment variables
	if v := os.Getenv(EnvBalanceAddr); v != "" {
		cfg.Balance.Addr = v
	}

	// Redis environment variables
	if v := os.Getenv(EnvRedisAddr); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv(EnvRedisPassword); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv(EnvRedisDB); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = i
		}
	}

	// MySQL environment variables
	if v := os.Getenv(EnvMySQLDSN); v != "" {
		cfg.MySQL.DSN = v
	}

	// Resources environment variables
	if v := os.Getenv(EnvResourcesBindAddr); v != "" {
		cfg.Resources.BindAddr = v
	}
	if v := os.Getenv(EnvResourcesDataDir); v != "" {
		cfg.Resources.DataDir = v
	}
	if v := os.Getenv(EnvResourcesWorkers); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Resources.Workers = i
		}
	}

	// Archive environment variables
	if v := os.Getenv(EnvArchiveEnabled); v != "" {
		cfg.Archive.Enabled = isTrue(v)
	}
	if v := os.Getenv(EnvArchiveBrokers); v != "" {
		cfg.Archive.Brokers = cfg.Archive.Brokers[:0]
		for _, p := range strings.Split(v, ",") {
			if strings.TrimSpace(p) != "" {
				cfg.Archive.Brokers = append(cfg.Archive.Brokers, strings.TrimSpace(p))
			}
		}
	}
	if v := os.Getenv(EnvArchiveTopic); v != "" {
		cfg.Archive.Topic = v
	}

	// WebSocket gateway environment variables
	if v := os.Getenv(EnvWSEnabled); v != "" {
		cfg.WS.Enabled = isTrue(v)
	}
	if v := os.Getenv(EnvWSBindAddr); v != "" {
		cfg.WS.BindAddr = v
	}

	// Observability environment variables
	if v := os.Getenv(EnvMetricsEnabled); v != "" {
		cfg.Metrics.Enabled = isTrue(v)
	}
	if v := os.Getenv(EnvMetricsAddr); v != "" {
		cfg.Metrics.Addr = v
	}

	// Authentication environment variables
	if v := os.Getenv(EnvAuthJWTSecret); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv(EnvAuthTokenTTL); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Auth.TokenTTLSec = i
		}
	}

	// Discovery environment variables
	if v := os.Getenv(EnvDiscoveryEnabled); v != "" {
		cfg.Discovery.Enabled = isTrue(v)
	}
	if v := os.Getenv(EnvDiscoveryClusterID); v != "" {
		cfg.Discovery.ClusterID = v
	}

	// Session environment variables
	if v := os.Getenv(EnvSessionIdleTimeout); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Session.IdleTimeoutSec = i
		}
	}

	m.Set(cfg)
}

func isTrue(v string) bool {
	return strings.ToLower(v) == "true" || v == "1"
}

// Finalize performs final configuration adjustments after loading.
// This should be called after loading config from file and environment.
func (c *Config) Finalize() {
	if c.Resources.Workers <= 0 {
		c.Resources.Workers = defaultWorkers()
	}
	if c.Session.IdleTimeoutSec <= 0 {
		c.Session.IdleTimeoutSec = 90
	}
	if c.MySQL.MaxIdleConns > c.MySQL.MaxOpenConns {
		c.MySQL.MaxIdleConns = c.MySQL.MaxOpenConns
	}
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.ServerName == "" {
		return fmt.Errorf("server_name is required")
	}
	if c.BindAddr == "" {
		return fmt.Errorf("bind_addr is required")
	}
	if c.GRPC.BindAddr == "" {
		return fmt.Errorf("grpc.bind_addr is required")
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required")
	}

	// Tokens cannot be verified without a secret, and passwords alone
	// cannot resume a session after reconnect.
	if c.Auth.JWTSecret == "" && !c.Auth.AllowPwd {
		return fmt.Errorf("FLYCHAT_AUTH_JWT_SECRET environment variable is required when password login is disabled.\n" +
			"  Set it with: export FLYCHAT_AUTH_JWT_SECRET=<secret>\n" +
			"  Generate a secret with: openssl rand -hex 32")
	}
	if c.Auth.TokenTTLSec <= 0 {
		return fmt.Errorf("auth.token_ttl_sec must be positive")
	}

	if c.Archive.Enabled {
		if len(c.Archive.Brokers) == 0 {
			return fmt.Errorf("archive.brokers is required when archiving is enabled")
		}
		if c.Archive.Topic == "" {
			return fmt.Errorf("archive.topic is required when archiving is enabled")
		}
	}

	if c.WS.Enabled && c.WS.BindAddr == "" {
		return fmt.Errorf("ws.bind_addr is required when the WebSocket gateway is enabled")
	}

	if c.Resources.Workers < 0 {
		return fmt.Errorf("resources.workers must be non-negative")
	}

	return nil
}

// GetAdvertiseAddr returns the advertise address for client connections.
// If not explicitly set, it returns the bind address.
// If bind address is 0.0.0.0 or ::, it attempts to detect the local IP.
func (c *Config) GetAdvertiseAddr() string {
	if c.AdvertiseAddr != "" {
		return c.AdvertiseAddr
	}
	return resolveAdvertiseAddr(c.BindAddr)
}

// GetGRPCAdvertiseAddr returns the advertise address for peer RPC
// connections, falling back to the gRPC bind address.
func (c *Config) GetGRPCAdvertiseAddr() string {
	if c.GRPC.AdvertiseAddr != "" {
		return c.GRPC.AdvertiseAddr
	}
	return resolveAdvertiseAddr(c.GRPC.BindAddr)
}

// resolveAdvertiseAddr resolves an address to an advertisable address.
// If the address binds to all interfaces (0.0.0.0 or ::), it attempts to
// detect the local IP address.
func resolveAdvertiseAddr(addr string) string {
	host, port, err := splitHostPort(addr)
	if err != nil {
		return addr
	}

	// If binding to all interfaces, try to detect local IP
	if host == "" || host == "0.0.0.0" || host == "::" {
		if localIP := detectLocalIP(); localIP != "" {
			return localIP + ":" + port
		}
	}

	return addr
}

// splitHostPort splits an address into host and port.
// Handles addresses like ":8090", "0.0.0.0:8090", "[::]:8090"
func splitHostPort(addr string) (host, port string, err error) {
	// Handle IPv6 addresses
	if strings.HasPrefix(addr, "[") {
		end := strings.Index(addr, "]")
		if end == -1 {
			return "", "", fmt.Errorf("invalid address: %s", addr)
		}
		host = addr[1:end]
		if len(addr) > end+1 && addr[end+1] == ':' {
			port = addr[end+2:]
		}
		return host, port, nil
	}

	// Handle IPv4 addresses and simple port-only addresses
	lastColon := strings.LastIndex(addr, ":")
	if lastColon == -1 {
		return addr, "", nil
	}
	if lastColon == 0 {
		return "", addr[1:], nil
	}
	return addr[:lastColon], addr[lastColon+1:], nil
}

// detectLocalIP attempts to detect the local IP address.
// It prefers non-loopback IPv4 addresses.
func detectLocalIP() string {
	// Determines the outbound route without sending any packets
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err == nil {
		defer conn.Close()
		if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok {
			return addr.IP.String()
		}
	}

	// Fallback: iterate through interfaces
	interfaces, err := net.Interfaces()
	if err != nil {
		return ""
	}

	for _, iface := range interfaces {
		if iface.Flags&net.FlagLoopback != 0 || iface.Flags&net.FlagUp == 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}

			if ip != nil && ip.To4() != nil && !ip.IsLoopback() {
				return ip.String()
			}
		}
	}

	return ""
}

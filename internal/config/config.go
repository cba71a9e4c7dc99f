package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/depscan-io/depscan/internal/secrets"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Analyzer  AnalyzerConfig
	Registry  RegistryConfig
	Reports   ReportsConfig
	Jobs      JobsConfig
	Auth      AuthConfig
	Storage   StorageConfig
	Warehouse WarehouseConfig
	Secrets   SecretsConfig
	Logging   LoggingConfig
	Server    ServerConfig
	CORS      CORSConfig
	Security  SecurityConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
}

// DatabaseConfig selects and configures the scan result store.
// Driver "sqlite" stores results in a local file; "postgres" is used for
// shared deployments and is the only driver cmd/migrate supports.
type DatabaseConfig struct {
	Driver          string
	Path            string // sqlite file path
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
}

// AnalyzerConfig controls repository cloning and scan concurrency
type AnalyzerConfig struct {
	// MaxConcurrentRepos bounds how many repositories are analyzed in parallel
	MaxConcurrentRepos int
	// WorkDir is the clone scratch directory; empty means a fresh temp dir per run
	WorkDir string
	// KeepWorkDir skips scratch directory cleanup after a run
	KeepWorkDir bool
	// CloneTimeout bounds a single shallow clone (seconds)
	CloneTimeout int
	// GitToken authenticates clones of private repositories (from secrets)
	GitToken string
	// ReposFile is the repository list consumed by the one-shot CLI
	ReposFile string
	// MappingFile is the manual license mapping CSV consumed by the CLI
	MappingFile string
}

// RegistryConfig controls package registry lookups
type RegistryConfig struct {
	// MaxConcurrentCalls bounds in-flight registry requests across all repositories
	MaxConcurrentCalls int
	// RequestTimeout is the per-request timeout (seconds)
	RequestTimeout int
	// RequestDelayMs is a polite delay before each registry request
	RequestDelayMs int
	// Per-ecosystem lookup caps; dependencies beyond the cap stay unresolved
	PythonCap     int
	JavaScriptCap int
	JavaCap       int
	DotNetCap     int
}

// ReportsConfig controls report rendering
type ReportsConfig struct {
	// OutputDir is where the CLI writes report files
	OutputDir string
	// InfraPreamblePath points at a licensing preamble included in the
	// infrastructure report, when present
	InfraPreamblePath string
}

// JobsConfig controls the background rescan job
type JobsConfig struct {
	RescanEnabled bool
	RescanCron    string
	RescanTimeout int // seconds
	// StartupScan re-scans repositories whose last scan is stale at boot
	StartupScan bool
	StaleMaxAge int // seconds
}

// AuthConfig holds API authentication settings
type AuthConfig struct {
	// JWTSecret signs and validates HMAC bearer tokens
	JWTSecret string
	// APIKey grants system-level access via the x-api-key header
	APIKey string
}

type StorageConfig struct {
	Mode                  string
	LocalBasePath         string
	CloudConnectionString string
	CloudContainer        string
}

// WarehouseConfig holds the optional MS SQL Server export target.
// The export is write-only and scans succeed without it.
type WarehouseConfig struct {
	Enabled         bool
	URL             string
	User            string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	QueryTimeout    int
}

type SecretsConfig struct {
	// Source determines where secrets are loaded from: "environment", "vault", or "auto"
	Source       string
	KeyVaultName string
	CacheEnabled bool
	CacheTTL     int // seconds
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int
	EnableSwagger  bool
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// SecurityConfig holds security header configuration
type SecurityConfig struct {
	EnableHSTS            bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	HSTSPreload           bool
	ContentSecurityPolicy string
	FrameOptions          string
	ContentTypeNosniff    bool
	XSSProtection         string
	ReferrerPolicy        string
	PermissionsPolicy     string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	WhitelistIPs      []string
	WhitelistPaths    []string
}

// ConnectionString builds the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// CloneTimeoutDuration returns the clone timeout as duration
func (a *AnalyzerConfig) CloneTimeoutDuration() time.Duration {
	return time.Duration(a.CloneTimeout) * time.Second
}

// RequestTimeoutDuration returns the registry request timeout as duration
func (r *RegistryConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(r.RequestTimeout) * time.Second
}

// RequestDelay returns the polite per-request delay as duration
func (r *RegistryConfig) RequestDelay() time.Duration {
	return time.Duration(r.RequestDelayMs) * time.Millisecond
}

// Cap returns the lookup cap for an ecosystem name
func (r *RegistryConfig) Cap(ecosystem string) int {
	switch ecosystem {
	case "python":
		return r.PythonCap
	case "javascript":
		return r.JavaScriptCap
	case "java":
		return r.JavaCap
	case "dotnet":
		return r.DotNetCap
	default:
		return 25
	}
}

// RescanTimeoutDuration returns the rescan job timeout as duration
func (j *JobsConfig) RescanTimeoutDuration() time.Duration {
	return time.Duration(j.RescanTimeout) * time.Second
}

// StaleMaxAgeDuration returns the startup-scan staleness threshold as duration
func (j *JobsConfig) StaleMaxAgeDuration() time.Duration {
	return time.Duration(j.StaleMaxAge) * time.Second
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// QueryTimeoutDuration returns the warehouse query timeout as duration
func (w *WarehouseConfig) QueryTimeoutDuration() time.Duration {
	return time.Duration(w.QueryTimeout) * time.Second
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (w *WarehouseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(w.ConnMaxLifetime) * time.Second
}

// Load loads configuration from file and environment variables
// This is a basic load that doesn't fetch secrets from vault
// Use LoadWithSecrets for full secret resolution
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Load auth secrets from environment if not in config
	if cfg.Auth.APIKey == "" {
		cfg.Auth.APIKey = v.GetString("ADMIN_API_KEY")
	}
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = v.GetString("JWT_SECRET")
	}
	if cfg.Analyzer.GitToken == "" {
		cfg.Analyzer.GitToken = v.GetString("GIT_TOKEN")
	}

	// Load Azure Key Vault name from environment if not in config
	if cfg.Secrets.KeyVaultName == "" {
		cfg.Secrets.KeyVaultName = v.GetString("AZURE_KEY_VAULT_NAME")
	}

	// Check for WAREHOUSE_ENABLED env var override
	if v.GetBool("WAREHOUSE_ENABLED") {
		cfg.Warehouse.Enabled = true
	}

	// NOTE: Warehouse credentials are ONLY loaded from Azure Key Vault.
	// See LoadWithSecrets() for credential loading.

	return &cfg, nil
}

// LoadWithSecrets loads configuration and resolves secrets from the configured source.
// In development (or when secrets.source = "environment"), secrets come from env vars.
// In staging/production (or when secrets.source = "vault"), secrets come from Azure Key Vault.
//
// Key Vault is used when BOTH conditions are met:
// 1. USE_AZURE_KEY_VAULT environment variable is set to "true"
// 2. Environment is "staging" or "production"
//
// EXCEPTION: Warehouse credentials are always loaded from Key Vault when
// WAREHOUSE_ENABLED=true and AZURE_KEY_VAULT_NAME is configured.
func LoadWithSecrets(ctx context.Context, logger *zap.Logger) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	useKeyVault := strings.ToLower(os.Getenv("USE_AZURE_KEY_VAULT")) == "true"
	isValidEnv := cfg.App.Environment == "staging" || cfg.App.Environment == "production"

	if cfg.Warehouse.Enabled && cfg.Secrets.KeyVaultName != "" {
		if err := loadWarehouseSecrets(ctx, cfg, logger); err != nil {
			logger.Warn("Failed to load warehouse secrets from Key Vault",
				zap.Error(err),
				zap.String("environment", cfg.App.Environment),
			)
			// Don't fail startup - the warehouse export is optional
		}
	}

	if !useKeyVault {
		logger.Info("USE_AZURE_KEY_VAULT not enabled, using environment variables for main secrets",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if !isValidEnv {
		logger.Warn("USE_AZURE_KEY_VAULT is enabled but environment is not staging or production, using environment variables for main secrets",
			zap.String("environment", cfg.App.Environment),
			zap.Bool("use_key_vault", useKeyVault),
		)
		return cfg, nil
	}

	if cfg.Secrets.KeyVaultName == "" {
		return nil, fmt.Errorf("AZURE_KEY_VAULT_NAME is required when USE_AZURE_KEY_VAULT=true")
	}

	logger.Info("Azure Key Vault enabled for secrets",
		zap.String("environment", cfg.App.Environment),
		zap.String("key_vault_name", cfg.Secrets.KeyVaultName),
	)

	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.SourceVault,
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets provider (USE_AZURE_KEY_VAULT=true requires valid vault): %w", err)
	}

	logger.Info("Loading secrets from Azure Key Vault")

	// Database secrets; database name stays environment-specific
	if host, err := provider.GetSecretOrEnv(ctx, "POSTGRES-MAIN-HOST", "DATABASE_HOST"); err == nil && host != "" {
		cfg.Database.Host = host
	}
	if defaultDB := os.Getenv("DEFAULT_DATABASE"); defaultDB != "" {
		cfg.Database.Name = defaultDB
	}
	if user, err := provider.GetSecretOrEnv(ctx, "POSTGRES-MAIN-USER", "DATABASE_USER"); err == nil && user != "" {
		cfg.Database.User = user
	}
	if password, err := provider.GetSecretOrEnv(ctx, "POSTGRES-MAIN-PASSWORD", "DATABASE_PASSWORD"); err == nil && password != "" {
		cfg.Database.Password = password
	}
	if sslMode := os.Getenv("DATABASE_SSLMODE"); sslMode != "" {
		cfg.Database.SSLMode = sslMode
	}

	// Auth secrets
	if apiKey, err := provider.GetSecretOrEnv(ctx, "admin-api-key", "ADMIN_API_KEY"); err == nil && apiKey != "" {
		cfg.Auth.APIKey = apiKey
	}
	if jwtSecret, err := provider.GetSecretOrEnv(ctx, "jwt-secret", "JWT_SECRET"); err == nil && jwtSecret != "" {
		cfg.Auth.JWTSecret = jwtSecret
	}

	// Git token for private repository clones
	if token, err := provider.GetSecretOrEnv(ctx, "git-token", "GIT_TOKEN"); err == nil && token != "" {
		cfg.Analyzer.GitToken = token
	}

	// Storage connection string (for report archiving)
	if connStr, err := provider.GetSecretOrEnv(ctx, "storage-connection-string", "STORAGE_CLOUDCONNECTIONSTRING"); err == nil && connStr != "" {
		cfg.Storage.CloudConnectionString = connStr
	}

	logger.Info("Secrets loaded from vault successfully")
	return cfg, nil
}

// loadWarehouseSecrets loads warehouse credentials from Azure Key Vault.
// Warehouse credentials only come from Key Vault, never from environment variables.
func loadWarehouseSecrets(ctx context.Context, cfg *Config, logger *zap.Logger) error {
	logger.Info("Loading warehouse secrets from Key Vault",
		zap.String("key_vault_name", cfg.Secrets.KeyVaultName),
		zap.String("environment", cfg.App.Environment),
	)

	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.SourceVault,
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize vault client for warehouse: %w", err)
	}

	url, err := provider.GetSecret(ctx, "WAREHOUSE-URL")
	if err != nil {
		return fmt.Errorf("failed to get WAREHOUSE-URL from Key Vault: %w", err)
	}
	cfg.Warehouse.URL = url

	user, err := provider.GetSecret(ctx, "WAREHOUSE-USERNAME")
	if err != nil {
		return fmt.Errorf("failed to get WAREHOUSE-USERNAME from Key Vault: %w", err)
	}
	cfg.Warehouse.User = user

	password, err := provider.GetSecret(ctx, "WAREHOUSE-PASSWORD")
	if err != nil {
		return fmt.Errorf("failed to get WAREHOUSE-PASSWORD from Key Vault: %w", err)
	}
	cfg.Warehouse.Password = password

	logger.Info("Warehouse credentials loaded from Key Vault successfully")
	return nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "depscan")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)

	// Database defaults
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "depscan.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "depscan")
	v.SetDefault("database.user", "depscan_user")
	v.SetDefault("database.password", "depscan_password")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", 300)

	// Analyzer defaults match the limits the tool has always shipped with
	v.SetDefault("analyzer.maxConcurrentRepos", 5)
	v.SetDefault("analyzer.workDir", "")
	v.SetDefault("analyzer.keepWorkDir", false)
	v.SetDefault("analyzer.cloneTimeout", 300)
	v.SetDefault("analyzer.reposFile", "repos.txt")
	v.SetDefault("analyzer.mappingFile", "dependency_mapping.csv")

	// Registry defaults
	v.SetDefault("registry.maxConcurrentCalls", 10)
	v.SetDefault("registry.requestTimeout", 15)
	v.SetDefault("registry.requestDelayMs", 100)
	v.SetDefault("registry.pythonCap", 25)
	v.SetDefault("registry.javaScriptCap", 50)
	v.SetDefault("registry.javaCap", 25)
	v.SetDefault("registry.dotNetCap", 25)

	// Report defaults
	v.SetDefault("reports.outputDir", ".")
	v.SetDefault("reports.infraPreamblePath", "azure.md")

	// Jobs defaults
	v.SetDefault("jobs.rescanEnabled", false)
	v.SetDefault("jobs.rescanCron", "0 0 3 * * *")
	v.SetDefault("jobs.rescanTimeout", 3600)
	v.SetDefault("jobs.startupScan", false)
	v.SetDefault("jobs.staleMaxAge", 86400)

	// Secrets defaults
	v.SetDefault("secrets.source", "auto")
	v.SetDefault("secrets.cacheEnabled", true)
	v.SetDefault("secrets.cacheTTL", 300)

	// Storage defaults
	v.SetDefault("storage.mode", "local")
	v.SetDefault("storage.localBasePath", "./storage")

	// Warehouse defaults (MS SQL Server - optional, write-only export)
	v.SetDefault("warehouse.enabled", false)
	v.SetDefault("warehouse.maxOpenConns", 5)
	v.SetDefault("warehouse.maxIdleConns", 1)
	v.SetDefault("warehouse.connMaxLifetime", 300)
	v.SetDefault("warehouse.queryTimeout", 30)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// Server defaults
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 60)
	v.SetDefault("server.requestTimeout", 60)
	v.SetDefault("server.enableSwagger", true)

	// CORS defaults - restrictive by default
	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"})
	v.SetDefault("cors.exposedHeaders", []string{"Location", "X-Request-ID", "Content-Disposition"})
	v.SetDefault("cors.allowCredentials", true)
	v.SetDefault("cors.maxAge", 300)

	// Security header defaults - secure by default
	v.SetDefault("security.enableHSTS", false)
	v.SetDefault("security.hstsMaxAge", 31536000)
	v.SetDefault("security.hstsIncludeSubdomains", true)
	v.SetDefault("security.hstsPreload", false)
	v.SetDefault("security.contentSecurityPolicy", "default-src 'self'")
	v.SetDefault("security.frameOptions", "DENY")
	v.SetDefault("security.contentTypeNosniff", true)
	v.SetDefault("security.xssProtection", "1; mode=block")
	v.SetDefault("security.referrerPolicy", "strict-origin-when-cross-origin")
	v.SetDefault("security.permissionsPolicy", "geolocation=(), microphone=(), camera=()")

	// Rate limiting defaults
	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 120)
	v.SetDefault("rateLimit.whitelistIPs", []string{"127.0.0.1", "::1"})
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health", "/health/db", "/health/ready"})
}

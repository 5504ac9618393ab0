package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Store driver names.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreGSheets  = "gsheets"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Store     StoreConfig
	Database  DatabaseConfig
	GSheets   GSheetsConfig
	SMTP      SMTPConfig
	Workflow  WorkflowConfig
	Approval  ApprovalConfig
	Scheduler SchedulerConfig
	Redis     RedisConfig
	Roster    RosterConfig
	CORS      CORSConfig
	Log       LogConfig
}

// StoreConfig selects the tabular store driver.
type StoreConfig struct {
	Driver string
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

// GSheetsConfig points the gsheets driver at a spreadsheet.
type GSheetsConfig struct {
	SpreadsheetID   string
	CredentialsFile string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// WorkflowConfig carries the approval-workflow settings the original system
// kept in spreadsheet cells. Loaded once and injected; no ambient lookups.
type WorkflowConfig struct {
	DebugMode       bool
	ManagerEmail    string
	HREmail         string
	AutomationEmail string
	CompanyName     string
	ManagerName     string
	HRName          string
	CCHR            bool
	SendTimeout     time.Duration
}

// EmailEnabled reports whether outbound mail is allowed. Debug mode inverts it.
func (w WorkflowConfig) EmailEnabled() bool {
	return !w.DebugMode
}

// ApprovalConfig governs the signed approval deep-link.
type ApprovalConfig struct {
	BaseURL    string
	LinkSecret string
	LinkTTL    time.Duration
}

// SchedulerConfig toggles the periodic digest and confirmation jobs.
type SchedulerConfig struct {
	Enabled              bool
	PendingDigestEvery   time.Duration
	ConfirmationRunEvery time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RosterConfig tunes the optional employee-roster cache.
type RosterConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Store = StoreConfig{Driver: strings.ToLower(v.GetString("STORE_DRIVER"))}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.GSheets = GSheetsConfig{
		SpreadsheetID:   v.GetString("GSHEETS_SPREADSHEET_ID"),
		CredentialsFile: v.GetString("GSHEETS_CREDENTIALS_FILE"),
	}

	cfg.SMTP = SMTPConfig{
		Host:     v.GetString("SMTP_HOST"),
		Port:     v.GetInt("SMTP_PORT"),
		Username: v.GetString("SMTP_USERNAME"),
		Password: v.GetString("SMTP_PASSWORD"),
		From:     v.GetString("SMTP_FROM"),
	}

	cfg.Workflow = WorkflowConfig{
		DebugMode:       v.GetBool("DEBUG_MODE"),
		ManagerEmail:    v.GetString("MANAGER_EMAIL"),
		HREmail:         v.GetString("HR_EMAIL"),
		AutomationEmail: v.GetString("AUTOMATION_EMAIL"),
		CompanyName:     v.GetString("COMPANY_NAME"),
		ManagerName:     v.GetString("MANAGER_NAME"),
		HRName:          v.GetString("HR_NAME"),
		CCHR:            v.GetBool("CC_HR"),
		SendTimeout:     parseDuration(v.GetString("EMAIL_SEND_TIMEOUT"), 30*time.Second),
	}

	cfg.Approval = ApprovalConfig{
		BaseURL:    strings.TrimRight(v.GetString("APPROVAL_BASE_URL"), "/"),
		LinkSecret: v.GetString("APPROVAL_LINK_SECRET"),
		LinkTTL:    parseDuration(v.GetString("APPROVAL_LINK_TTL"), 7*24*time.Hour),
	}

	cfg.Scheduler = SchedulerConfig{
		Enabled:              v.GetBool("ENABLE_SCHEDULER"),
		PendingDigestEvery:   parseDuration(v.GetString("PENDING_DIGEST_INTERVAL"), 24*time.Hour),
		ConfirmationRunEvery: parseDuration(v.GetString("CONFIRMATION_INTERVAL"), 24*time.Hour),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Roster = RosterConfig{
		CacheEnabled: v.GetBool("ENABLE_ROSTER_CACHE"),
		CacheTTL:     parseDuration(v.GetString("ROSTER_CACHE_TTL"), 5*time.Minute),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "")

	v.SetDefault("STORE_DRIVER", StoreMemory)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "visit_log")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("GSHEETS_SPREADSHEET_ID", "")
	v.SetDefault("GSHEETS_CREDENTIALS_FILE", "")

	v.SetDefault("SMTP_HOST", "localhost")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM", "noreply@example.com")

	v.SetDefault("DEBUG_MODE", true)
	v.SetDefault("MANAGER_EMAIL", "")
	v.SetDefault("HR_EMAIL", "")
	v.SetDefault("AUTOMATION_EMAIL", "")
	v.SetDefault("COMPANY_NAME", "Company")
	v.SetDefault("MANAGER_NAME", "Manager")
	v.SetDefault("HR_NAME", "HR")
	v.SetDefault("CC_HR", false)
	v.SetDefault("EMAIL_SEND_TIMEOUT", "30s")

	v.SetDefault("APPROVAL_BASE_URL", "http://localhost:8080")
	v.SetDefault("APPROVAL_LINK_SECRET", "dev_approval_secret")
	v.SetDefault("APPROVAL_LINK_TTL", "168h")

	v.SetDefault("ENABLE_SCHEDULER", false)
	v.SetDefault("PENDING_DIGEST_INTERVAL", "24h")
	v.SetDefault("CONFIRMATION_INTERVAL", "24h")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("ENABLE_ROSTER_CACHE", false)
	v.SetDefault("ROSTER_CACHE_TTL", "5m")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

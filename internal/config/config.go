package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	AuthStrategyBody   = "body"
	AuthStrategyHeader = "header"
	AuthStrategyCookie = "cookie"

	HasherPlaintext = "plaintext"
	HasherBcrypt    = "bcrypt"
)

// Config holds runtime configuration loaded from environment variables and
// an optional .env file.
type Config struct {
	Port   int    `mapstructure:"PORT"`
	AppEnv string `mapstructure:"APP_ENV"`

	DBHost       string `mapstructure:"DB_HOST"`
	DBPort       string `mapstructure:"DB_PORT"`
	DBUser       string `mapstructure:"DB_USER"`
	DBPassword   string `mapstructure:"DB_PASSWORD"`
	DBName       string `mapstructure:"DB_NAME"`
	DBSSLMode    string `mapstructure:"DB_SSLMODE"`
	DBMaxRetries int    `mapstructure:"DB_MAX_RETRIES"`

	// Kosong = redis dimatikan (idempotency & cache options tidak aktif)
	RedisAddr string `mapstructure:"REDIS_ADDR"`

	KafkaBroker  string `mapstructure:"KAFKA_BROKER"`
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`

	AuthStrategy   string `mapstructure:"AUTH_STRATEGY"`
	AuthHeader     string `mapstructure:"AUTH_HEADER"`
	SessionCookie  string `mapstructure:"SESSION_COOKIE"`
	PasswordHasher string `mapstructure:"PASSWORD_HASHER"`

	AllowSelfRegistration bool `mapstructure:"ALLOW_SELF_REGISTRATION"`
	AllowSelfAttendance   bool `mapstructure:"ALLOW_SELF_ATTENDANCE"`
	AllowLeaveStatus      bool `mapstructure:"ALLOW_LEAVE_STATUS"`

	DefaultMonthlySalary float64 `mapstructure:"DEFAULT_MONTHLY_SALARY"`
	Timezone             string  `mapstructure:"TIMEZONE"`
	CompanyName          string  `mapstructure:"COMPANY_NAME"`
	PayslipArchiveDir    string  `mapstructure:"PAYSLIP_ARCHIVE_DIR"`

	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	SeedAdminIdentifier string `mapstructure:"SEED_ADMIN_IDENTIFIER"`
	SeedAdminPassword   string `mapstructure:"SEED_ADMIN_PASSWORD"`
}

// Load reads configuration from the environment (and optional .env file).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	setDefaults(v)

	// .env opsional untuk development lokal
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", 8080)
	v.SetDefault("APP_ENV", "development")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "payroll")
	v.SetDefault("DB_PASSWORD", "payroll")
	v.SetDefault("DB_NAME", "payroll")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_RETRIES", 5)

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("KAFKA_BROKER", "")
	v.SetDefault("KAFKA_GROUP_ID", "go-payroll-payslip")

	v.SetDefault("AUTH_STRATEGY", AuthStrategyCookie)
	v.SetDefault("AUTH_HEADER", "X-User-Email")
	v.SetDefault("SESSION_COOKIE", "payroll_session")
	v.SetDefault("PASSWORD_HASHER", HasherPlaintext)

	v.SetDefault("ALLOW_SELF_REGISTRATION", false)
	v.SetDefault("ALLOW_SELF_ATTENDANCE", false)
	v.SetDefault("ALLOW_LEAVE_STATUS", true)

	v.SetDefault("DEFAULT_MONTHLY_SALARY", 30000)
	v.SetDefault("TIMEZONE", "Local")
	v.SetDefault("COMPANY_NAME", "Salary Slip")
	v.SetDefault("PAYSLIP_ARCHIVE_DIR", "/tmp/go-payroll/payslips")

	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	v.SetDefault("SEED_ADMIN_IDENTIFIER", "admin")
	v.SetDefault("SEED_ADMIN_PASSWORD", "admin123")
}

func (c *Config) Validate() error {
	switch c.AuthStrategy {
	case AuthStrategyBody, AuthStrategyHeader, AuthStrategyCookie:
	default:
		return fmt.Errorf("config: unknown AUTH_STRATEGY %q", c.AuthStrategy)
	}

	switch c.PasswordHasher {
	case HasherPlaintext, HasherBcrypt:
	default:
		return fmt.Errorf("config: unknown PASSWORD_HASHER %q", c.PasswordHasher)
	}

	if c.DefaultMonthlySalary <= 0 {
		return fmt.Errorf("config: DEFAULT_MONTHLY_SALARY must be positive")
	}

	if _, err := c.Location(); err != nil {
		return fmt.Errorf("config: invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Location resolves TIMEZONE. Month boundaries and attendance days are
// computed in this location.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}

func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

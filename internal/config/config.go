package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App             App             `mapstructure:",squash"`
	Server          Server          `mapstructure:",squash"`
	Database        Database        `mapstructure:",squash"`
	Auth            Auth            `mapstructure:",squash"`
	Redis           Redis           `mapstructure:",squash"`
	Forecast        Forecast        `mapstructure:",squash"`
	Report          Report          `mapstructure:",squash"`
	ForecastRetrain ForecastRetrain `mapstructure:",squash"`
	Client          Client          `mapstructure:",squash"`
	SecretKey       string          `mapstructure:"secret_key"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Server struct {
	Host           string   `mapstructure:"host"`
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
	SSLMode  string `mapstructure:"database_sslmode"`
}

type Auth struct {
	TokenTTL time.Duration `mapstructure:"auth_token_ttl"`
}

// Redis backs the token blacklist. An empty Addr selects the in-memory store.
type Redis struct {
	Addr     string `mapstructure:"redis_addr"`
	Password string `mapstructure:"redis_password"`
	DB       int    `mapstructure:"redis_db"`
}

type Forecast struct {
	URL     string        `mapstructure:"forecast_url"`
	Timeout time.Duration `mapstructure:"forecast_timeout"`
}

type Report struct {
	PeriodValue   int           `mapstructure:"report_period_value"`
	PeriodUnit    string        `mapstructure:"report_period_unit"`
	UserGroupKey  string        `mapstructure:"report_user_group_key"`
	ViewMaxIdle   time.Duration `mapstructure:"report_view_max_idle"`
	ViewSweepCron string        `mapstructure:"report_view_sweep_cron"`
}

type ForecastRetrain struct {
	CronSchedule string `mapstructure:"forecast_retrain_cron"`
	LookbackDays int    `mapstructure:"forecast_retrain_lookback_days"`
	Enabled      bool   `mapstructure:"forecast_retrain_enabled"`
}

// Client holds the settings used by command line tools that talk to a running API.
type Client struct {
	BaseURL  string `mapstructure:"api_base_url"`
	Email    string `mapstructure:"api_email"`
	Password string `mapstructure:"api_password"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/sales")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")
	viper.SetDefault("DATABASE_SSLMODE", "disable")

	viper.SetDefault("SECRET_KEY", "your_secret_key")
	viper.SetDefault("AUTH_TOKEN_TTL", "24h")

	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)

	viper.SetDefault("FORECAST_URL", "http://localhost:5000")
	viper.SetDefault("FORECAST_TIMEOUT", "0s")

	viper.SetDefault("REPORT_PERIOD_VALUE", 7)
	viper.SetDefault("REPORT_PERIOD_UNIT", "days")
	viper.SetDefault("REPORT_USER_GROUP_KEY", "id")
	viper.SetDefault("REPORT_VIEW_MAX_IDLE", "30m")
	viper.SetDefault("REPORT_VIEW_SWEEP_CRON", "*/10 * * * *") // every 10 minutes

	viper.SetDefault("FORECAST_RETRAIN_CRON", "0 2 * * *") // every day at 2am
	viper.SetDefault("FORECAST_RETRAIN_LOOKBACK_DAYS", 365)
	viper.SetDefault("FORECAST_RETRAIN_ENABLED", false)

	viper.SetDefault("API_BASE_URL", "http://localhost:8000")
	viper.SetDefault("API_EMAIL", "")
	viper.SetDefault("API_PASSWORD", "")

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Debug("config: using environment loaded by godotenv (viper could not read .env): ", err)
	} else {
		logrus.Info("config: .env read by viper")
	}

	err := viper.Unmarshal(config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s?sslmode=%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
		config.Database.SSLMode,
	)

	return config, nil
}

func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("config: could not resolve working directory: ", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		if err := godotenv.Load(location); err == nil {
			logrus.Info("config: .env loaded from ", location)
			return
		}
	}

	logrus.Debug("config: no .env file found, relying on process environment")
}

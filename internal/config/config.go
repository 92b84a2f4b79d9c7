package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/JunMin765677/wallet-server/internal/log"
)

// CIConfigPath variable contain the CI configuration path
const CIConfigPath = "/home/runner/work/wallet-server/wallet-server/"

// Cache providers
const (
	CacheProviderRedis  = "redis"  // CacheProviderRedis - redis cache provider
	CacheProviderValKey = "valkey" // CacheProviderValKey - valkey cache provider
	CacheProviderNone   = "none"   // CacheProviderNone - in memory cache provider
)

// Configuration holds the project configuration
type Configuration struct {
	ServerUrl  string
	ServerPort int
	Database   Database `mapstructure:"Database"`
	Cache      Cache    `mapstructure:"Cache"`
	Log        Log      `mapstructure:"Log"`
	Wallet     Wallet   `mapstructure:"Wallet"`
	Verifier   Verifier `mapstructure:"Verifier"`
	Windows    Windows  `mapstructure:"Windows"`
}

// Database has the database configuration
// URL: The database connection string
type Database struct {
	URL string `mapstructure:"Url" tip:"The Datasource name locator"`
}

// Cache configurations
type Cache struct {
	RedisUrl string `mapstructure:"RedisUrl" tip:"The redis url to use as a cache"`
	Provider string `mapstructure:"Provider" tip:"Cache provider: redis, valkey or none"`
}

// Wallet holds the wallet sandbox connection properties. The sandbox issues
// claim QR codes, serves claimed credentials and revokes issued credentials.
type Wallet struct {
	URL              string        `mapstructure:"Url" tip:"Wallet sandbox base URL"`
	AuthHeaderName   string        `mapstructure:"AuthHeaderName" tip:"Header used to authenticate against the sandbox"`
	AuthToken        string        `mapstructure:"AuthToken" tip:"Token sent in the auth header"`
	AuthScheme       string        `mapstructure:"AuthScheme" tip:"Optional scheme prefix for the auth token (e.g. Bearer)"`
	PendingErrorCode string        `mapstructure:"PendingErrorCode" tip:"Error code the sandbox returns while a credential is unclaimed"`
	Timeout          time.Duration `mapstructure:"Timeout" tip:"Per request timeout"`
}

// Verifier holds the verifier sandbox connection properties.
type Verifier struct {
	URL              string        `mapstructure:"Url" tip:"Verifier sandbox base URL"`
	AuthHeaderName   string        `mapstructure:"AuthHeaderName" tip:"Header used to authenticate against the sandbox"`
	AuthToken        string        `mapstructure:"AuthToken" tip:"Token sent in the auth header"`
	AuthScheme       string        `mapstructure:"AuthScheme" tip:"Optional scheme prefix for the auth token (e.g. Bearer)"`
	RequestRef       string        `mapstructure:"RequestRef" tip:"Fixed request template reference sent on QR creation"`
	PendingErrorCode string        `mapstructure:"PendingErrorCode" tip:"Error code embedded in the 400 the sandbox returns while a result is pending"`
	Timeout          time.Duration `mapstructure:"Timeout" tip:"Per request timeout"`
}

// Windows holds the claim/verification window durations.
type Windows struct {
	IssuanceClaim      time.Duration `mapstructure:"IssuanceClaim" tip:"How long an issued QR can be claimed"`
	Verification       time.Duration `mapstructure:"Verification" tip:"How long a single verification attempt stays open"`
	BatchSession       time.Duration `mapstructure:"BatchSession" tip:"How long a batch verification session stays open"`
	SessionTokenExpiry time.Duration `mapstructure:"SessionTokenExpiry" tip:"TTL of acting person session tokens"`
}

// Log holds runtime configurations
//
// Level: The minimum log level to show on logs. Values can be
//
//	 -4: Debug
//		0: Info
//		4: Warning
//		8: Error
//	 The default log level is debug
//
// Mode: Log mode is the format of the log. It can be text or json
// 1: JSON
// 2: Text
// The default log formal is JSON
type Log struct {
	Level int `mapstructure:"Level" tip:"Minimum level to log: (-4:Debug, 0:Info, 4:Warning, 8:Error)"`
	Mode  int `mapstructure:"Mode" tip:"Log format (1: JSON, 2:Structured text)"`
}

// Sanitize perform some basic checks and sanitizations in the configuration.
// Returns true if config is acceptable, error otherwise.
func (c *Configuration) Sanitize() error {
	sUrl, err := c.validateServerUrl()
	if err != nil {
		return fmt.Errorf("serverUrl is not a valid URL <%s>: %w", c.ServerUrl, err)
	}
	c.ServerUrl = sUrl

	if c.Wallet.URL == "" {
		return fmt.Errorf("a wallet sandbox URL must be provided")
	}
	if c.Verifier.URL == "" {
		return fmt.Errorf("a verifier sandbox URL must be provided")
	}
	c.Wallet.URL = strings.TrimRight(c.Wallet.URL, "/")
	c.Verifier.URL = strings.TrimRight(c.Verifier.URL, "/")

	return nil
}

func (c *Configuration) validateServerUrl() (string, error) {
	sUrl, err := url.ParseRequestURI(c.ServerUrl)
	if err != nil {
		return c.ServerUrl, err
	}
	if sUrl.Scheme == "" {
		return c.ServerUrl, fmt.Errorf("server URL must be an absolute URL")
	}
	sUrl.RawQuery = ""
	return strings.Trim(strings.Trim(sUrl.String(), "/"), "?"), nil
}

// Load loads the configuration from a file
func Load(fileName string) (*Configuration, error) {
	bindEnv()
	pathFlag := viper.GetString("config")
	if _, err := os.Stat(pathFlag); err == nil {
		ext := filepath.Ext(pathFlag)
		if len(ext) > 1 {
			ext = ext[1:]
		}
		name := strings.Split(filepath.Base(pathFlag), ".")[0]
		viper.AddConfigPath(".")
		viper.SetConfigName(name)
		viper.SetConfigType(ext)
	} else {
		// Read default config file.
		viper.AddConfigPath(getWorkingDirectory())
		viper.AddConfigPath(CIConfigPath)
		viper.SetConfigType("toml")
		if fileName == "" {
			viper.SetConfigName("config")
		} else {
			viper.SetConfigName(fileName)
		}
	}
	config := &Configuration{
		Database: Database{},
		Log: Log{
			Level: log.LevelDebug,
			Mode:  log.OutputText,
		},
		Wallet: Wallet{
			AuthHeaderName:   "Access-Token",
			PendingErrorCode: "CREDENTIAL_NOT_CLAIMED",
			Timeout:          10 * time.Second,
		},
		Verifier: Verifier{
			AuthHeaderName:   "Access-Token",
			PendingErrorCode: "VERIFY_RESULT_NOT_READY",
			Timeout:          10 * time.Second,
		},
		Windows: Windows{
			IssuanceClaim:      10 * time.Minute,
			Verification:       5 * time.Minute,
			BatchSession:       3 * time.Hour,
			SessionTokenExpiry: 24 * time.Hour,
		},
	}
	ctx := context.Background()
	if err := viper.ReadInConfig(); err != nil {
		log.Error(ctx, "error loading config file...", "err", err)
	}

	if err := viper.Unmarshal(config); err != nil {
		log.Error(ctx, "error unmarshalling config file", "err", err)
	}
	checkEnvVars(ctx, config)
	return config, nil
}

func bindEnv() {
	viper.SetEnvPrefix("BROKER")
	_ = viper.BindEnv("ServerUrl", "BROKER_SERVER_URL")
	_ = viper.BindEnv("ServerPort", "BROKER_SERVER_PORT")

	_ = viper.BindEnv("Database.URL", "BROKER_DATABASE_URL")

	_ = viper.BindEnv("Log.Level", "BROKER_LOG_LEVEL")
	_ = viper.BindEnv("Log.Mode", "BROKER_LOG_MODE")

	_ = viper.BindEnv("Cache.RedisUrl", "BROKER_REDIS_URL")
	_ = viper.BindEnv("Cache.Provider", "BROKER_CACHE_PROVIDER")

	_ = viper.BindEnv("Wallet.URL", "BROKER_WALLET_URL")
	_ = viper.BindEnv("Wallet.AuthHeaderName", "BROKER_WALLET_AUTH_HEADER_NAME")
	_ = viper.BindEnv("Wallet.AuthToken", "BROKER_WALLET_AUTH_TOKEN")
	_ = viper.BindEnv("Wallet.AuthScheme", "BROKER_WALLET_AUTH_SCHEME")
	_ = viper.BindEnv("Wallet.PendingErrorCode", "BROKER_WALLET_PENDING_ERROR_CODE")
	_ = viper.BindEnv("Wallet.Timeout", "BROKER_WALLET_TIMEOUT")

	_ = viper.BindEnv("Verifier.URL", "BROKER_VERIFIER_URL")
	_ = viper.BindEnv("Verifier.AuthHeaderName", "BROKER_VERIFIER_AUTH_HEADER_NAME")
	_ = viper.BindEnv("Verifier.AuthToken", "BROKER_VERIFIER_AUTH_TOKEN")
	_ = viper.BindEnv("Verifier.AuthScheme", "BROKER_VERIFIER_AUTH_SCHEME")
	_ = viper.BindEnv("Verifier.RequestRef", "BROKER_VERIFIER_REQUEST_REF")
	_ = viper.BindEnv("Verifier.PendingErrorCode", "BROKER_VERIFIER_PENDING_ERROR_CODE")
	_ = viper.BindEnv("Verifier.Timeout", "BROKER_VERIFIER_TIMEOUT")

	_ = viper.BindEnv("Windows.IssuanceClaim", "BROKER_ISSUANCE_CLAIM_WINDOW")
	_ = viper.BindEnv("Windows.Verification", "BROKER_VERIFICATION_WINDOW")
	_ = viper.BindEnv("Windows.BatchSession", "BROKER_BATCH_SESSION_WINDOW")
	_ = viper.BindEnv("Windows.SessionTokenExpiry", "BROKER_SESSION_TOKEN_EXPIRY")

	viper.AutomaticEnv()
}

func checkEnvVars(ctx context.Context, cfg *Configuration) {
	if cfg.ServerUrl == "" {
		log.Info(ctx, "BROKER_SERVER_URL value is missing")
	}

	if cfg.ServerPort == 0 {
		log.Info(ctx, "BROKER_SERVER_PORT value is missing")
	}

	if cfg.Database.URL == "" {
		log.Info(ctx, "BROKER_DATABASE_URL value is missing")
	}

	if cfg.Cache.RedisUrl == "" {
		log.Info(ctx, "BROKER_REDIS_URL value is missing")
	}

	if cfg.Wallet.URL == "" {
		log.Info(ctx, "BROKER_WALLET_URL value is missing")
	}

	if cfg.Wallet.AuthToken == "" {
		log.Info(ctx, "BROKER_WALLET_AUTH_TOKEN value is missing")
	}

	if cfg.Verifier.URL == "" {
		log.Info(ctx, "BROKER_VERIFIER_URL value is missing")
	}

	if cfg.Verifier.AuthToken == "" {
		log.Info(ctx, "BROKER_VERIFIER_AUTH_TOKEN value is missing")
	}

	if cfg.Verifier.RequestRef == "" {
		log.Info(ctx, "BROKER_VERIFIER_REQUEST_REF value is missing")
	}
}

func getWorkingDirectory() string {
	_, b, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(b), "../..") + "/"
}

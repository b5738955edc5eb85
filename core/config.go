package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Address                   string
		DebugHost                 string
		Host                      string
		PublicBaseURL             string // used to build public storage URLs
		CORSAllowedOrigins        []string
		RateLimit                 float64 // requests per second per IP; 0 disables
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		DisableReqLogs            bool
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          int
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
		InMemory      bool // no Postgres; rows live in process memory
	}

	RedisConfig struct {
		Address  string
		Password string
		DB       int
	}

	StorageConfig struct {
		Driver          string // memory | oss
		Endpoint        string
		AccessKeyID     string
		AccessKeySecret string
		DefaultBucket   string
		MaxUploadSize   int64
	}

	OAuthConfig struct {
		GoogleClientID        string
		MicrosoftClientID     string
		MicrosoftClientSecret string
		MicrosoftTenant       string
		MicrosoftRedirectURL  string
	}

	PaymentConfig struct {
		MidtransServerKey  string
		MidtransProduction bool
	}

	Config struct {
		AppName                   string
		Env                       string
		Build                     string
		Debug                     bool
		TestMode                  bool
		SecretKey                 string
		FrontendBaseURL           string
		PasswordResetTimeoutDelta time.Duration
		RollbarToken              string
		SendgridApiKey            string
		LogFile                   string

		Server   ServerConfig
		Database DatabaseConfig
		Redis    RedisConfig
		Storage  StorageConfig
		OAuth    OAuthConfig
		Payment  PaymentConfig

		defaultFromEmail string
	}
)

func (c *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(c.defaultFromEmail)
	if err != nil {
		return mail.Address{Name: c.AppName, Address: c.defaultFromEmail}
	}
	if addr.Name == "" {
		addr.Name = c.AppName
	}
	return *addr
}

func (d DatabaseConfig) Address() string {
	return net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)

	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "VidyaSphere")
	v.SetDefault("build", "develop")
	v.SetDefault("secretKey", "i1k#z9u&pv!r6a2@0w(y-e3t)hq7$c^m5o%n4s+d8f*bj=gl")
	v.SetDefault("frontendBaseURL", "http://localhost:5173")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("logFile", "")

	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.publicBaseURL", "http://localhost:8000")
	v.SetDefault("server.corsAllowedOrigins", []string{"*"})
	v.SetDefault("server.rateLimit", 20.0)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 30*24*time.Hour)
	v.SetDefault("server.disableReqLogs", false)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "vidyasphere")
	v.SetDefault("database.user", "vidyasphere")
	v.SetDefault("database.password", "vidyasphere")
	v.SetDefault("database.adminUser", "")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("database.inMemory", false)

	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.accessKeyID", "")
	v.SetDefault("storage.accessKeySecret", "")
	v.SetDefault("storage.defaultBucket", "notes")
	v.SetDefault("storage.maxUploadSize", int64(20<<20))

	v.SetDefault("oauth.googleClientID", "")
	v.SetDefault("oauth.microsoftClientID", "")
	v.SetDefault("oauth.microsoftClientSecret", "")
	v.SetDefault("oauth.microsoftTenant", "common")
	v.SetDefault("oauth.microsoftRedirectURL", "http://localhost:8000/v1/auth/oauth/microsoft/callback")

	v.SetDefault("payment.midtransServerKey", "")
	v.SetDefault("payment.midtransProduction", false)
}

// NewConfig reads the configuration for the environment named by $ENV.
// Values come from defaults, then config/.env.<env> (if present), then the environment.
// Environment keys are prefixed by the env name, e.g. DEV_DATABASE_HOST.
func NewConfig() *Config {
	v := viper.New()
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		AppName:                   v.GetString("appName"),
		Env:                       env,
		Build:                     v.GetString("build"),
		Debug:                     v.GetBool("debug"),
		TestMode:                  v.GetBool("testMode"),
		SecretKey:                 v.GetString("secretKey"),
		FrontendBaseURL:           strings.TrimRight(v.GetString("frontendBaseURL"), "/"),
		PasswordResetTimeoutDelta: v.GetDuration("passwordResetTimeoutDelta"),
		RollbarToken:              v.GetString("rollbarToken"),
		SendgridApiKey:            v.GetString("sendgridApiKey"),
		LogFile:                   v.GetString("logFile"),
		defaultFromEmail:          v.GetString("defaultFromEmail"),
		Server: ServerConfig{
			Address:                   v.GetString("server.address"),
			DebugHost:                 v.GetString("server.debugHost"),
			Host:                      v.GetString("server.host"),
			PublicBaseURL:             strings.TrimRight(v.GetString("server.publicBaseURL"), "/"),
			CORSAllowedOrigins:        v.GetStringSlice("server.corsAllowedOrigins"),
			RateLimit:                 v.GetFloat64("server.rateLimit"),
			ShutdownTimeout:           v.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("server.jwtRefreshExpirationDelta"),
			DisableReqLogs:            v.GetBool("server.disableReqLogs"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetInt("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
			InMemory:      v.GetBool("database.inMemory"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Storage: StorageConfig{
			Driver:          strings.ToLower(v.GetString("storage.driver")),
			Endpoint:        v.GetString("storage.endpoint"),
			AccessKeyID:     v.GetString("storage.accessKeyID"),
			AccessKeySecret: v.GetString("storage.accessKeySecret"),
			DefaultBucket:   v.GetString("storage.defaultBucket"),
			MaxUploadSize:   v.GetInt64("storage.maxUploadSize"),
		},
		OAuth: OAuthConfig{
			GoogleClientID:        v.GetString("oauth.googleClientID"),
			MicrosoftClientID:     v.GetString("oauth.microsoftClientID"),
			MicrosoftClientSecret: v.GetString("oauth.microsoftClientSecret"),
			MicrosoftTenant:       v.GetString("oauth.microsoftTenant"),
			MicrosoftRedirectURL:  v.GetString("oauth.microsoftRedirectURL"),
		},
		Payment: PaymentConfig{
			MidtransServerKey:  v.GetString("payment.midtransServerKey"),
			MidtransProduction: v.GetBool("payment.midtransProduction"),
		},
	}
	return conf
}

// NewTestConfig returns the configuration used by tests: debug off, TEST env, in-memory storage.
func NewTestConfig() *Config {
	v := viper.New()
	setDefaults(v)
	return &Config{
		AppName:                   v.GetString("appName"),
		Env:                       "TEST",
		Build:                     "test",
		TestMode:                  true,
		SecretKey:                 "secret",
		FrontendBaseURL:           "http://localhost:5173",
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		defaultFromEmail:          "noreply@localhost",
		Server: ServerConfig{
			PublicBaseURL:             "http://localhost:8000",
			CORSAllowedOrigins:        []string{"*"},
			ShutdownTimeout:           time.Second,
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
			DisableReqLogs:            true,
		},
		Database: DatabaseConfig{InMemory: true},
		Storage: StorageConfig{
			Driver:        "memory",
			DefaultBucket: "notes",
			MaxUploadSize: 1 << 20,
		},
	}
}

package config

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
)

// APIConfig locates the scheduling backend and carries its credentials.
// A token is required unless Anonymous is set explicitly.
type APIConfig struct {
	BaseURL   string
	Token     string
	Anonymous bool
	Timeout   time.Duration
}

type Config struct {
	API            APIConfig
	Port           string
	RedisAddress   string
	RedisPassword  string
	SnapshotTTL    time.Duration
	FallbackMode   string
	JWTPublicKey   *rsa.PublicKey
	AllowedOrigins []string
	DatabaseURL    string
	ConfirmKeyword string
}

// Load reads the dashboard service configuration from the environment,
// preloading a .env file when one exists.
func Load() *Config {
	loadDotEnv()
	cfg, err := loadConfig(os.Getenv)
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	return cfg
}

// CLIConfig is what schedctl needs: the backend and the delete keyword.
type CLIConfig struct {
	API            APIConfig
	ConfirmKeyword string
}

func LoadCLIConfig() (*CLIConfig, error) {
	loadDotEnv()
	api, err := loadAPIConfig(os.Getenv)
	if err != nil {
		return nil, err
	}
	return &CLIConfig{API: api, ConfirmKeyword: os.Getenv("CONFIRM_KEYWORD")}, nil
}

func loadDotEnv() {
	path := os.Getenv("DOTENV_PATH")
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err == nil {
		if err := godotenv.Load(path); err != nil {
			log.Fatalf("config.godotenv(%s): %v", path, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", path, err)
	}
}

func loadAPIConfig(getenv func(string) string) (APIConfig, error) {
	api := APIConfig{
		BaseURL: getenv("API_BASE_URL"),
		Token:   strings.TrimSpace(getenv("API_TOKEN")),
		Timeout: 15 * time.Second,
	}
	if api.BaseURL == "" {
		return api, errors.New("API_BASE_URL environment variable is required")
	}
	if v := getenv("API_ANONYMOUS"); v != "" {
		anon, err := strconv.ParseBool(v)
		if err != nil {
			return api, fmt.Errorf("API_ANONYMOUS: %w", err)
		}
		api.Anonymous = anon
	}
	if api.Token == "" && !api.Anonymous {
		return api, errors.New("API_TOKEN environment variable is required (set API_ANONYMOUS=true to call the backend without one)")
	}
	if v := getenv("API_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return api, fmt.Errorf("API_TIMEOUT: %w", err)
		}
		api.Timeout = d
	}
	return api, nil
}

func loadConfig(getenv func(string) string) (*Config, error) {
	api, err := loadAPIConfig(getenv)
	if err != nil {
		return nil, err
	}

	port := getenv("PORT")
	if port == "" {
		port = "8080"
	}

	ttl := 10 * time.Minute
	if v := getenv("SNAPSHOT_TTL"); v != "" {
		if ttl, err = time.ParseDuration(v); err != nil {
			return nil, fmt.Errorf("SNAPSHOT_TTL: %w", err)
		}
	}

	fallback := strings.ToLower(getenv("FALLBACK_MODE"))
	switch fallback {
	case "":
		fallback = "none"
	case "none", "snapshot":
	default:
		return nil, fmt.Errorf("FALLBACK_MODE must be none or snapshot, got %q", fallback)
	}

	redisAddr := getenv("REDIS_ADDRESS")
	if fallback == "snapshot" && redisAddr == "" {
		return nil, errors.New("FALLBACK_MODE=snapshot requires REDIS_ADDRESS")
	}

	publicKeyPath := getenv("PUBLIC_KEY_PATH")
	if publicKeyPath == "" {
		publicKeyPath = "/etc/certs/public.pem"
	}
	publicKey, err := loadPublicKey(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("load public key: %w", err)
	}

	origins := []string{"*"}
	if v := getenv("ALLOWED_ORIGINS"); v != "" {
		origins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	return &Config{
		API:            api,
		Port:           port,
		RedisAddress:   redisAddr,
		RedisPassword:  getenv("REDIS_PASSWORD"),
		SnapshotTTL:    ttl,
		FallbackMode:   fallback,
		JWTPublicKey:   publicKey,
		AllowedOrigins: origins,
		DatabaseURL:    getenv("DB_CONNECTION_STRING"),
		ConfirmKeyword: getenv("CONFIRM_KEYWORD"),
	}, nil
}

func loadPublicKey(path string) (*rsa.PublicKey, error) {
	keyData, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(keyData)
	if err != nil {
		return nil, err
	}
	return publicKey, nil
}

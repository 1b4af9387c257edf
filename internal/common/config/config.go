package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/avlasov/userhub/internal/common/constants"
)

var (
	ErrMissingRequiredEnv = errors.New("missing required environment variable")
	ErrOpaqueIDSaltTooShort = fmt.Errorf(
		"OPAQUE_ID_SALT must be at least %d bytes", constants.OpaqueIDSaltMinLength,
	)
)

type OpaqueIDConfig struct {
	Salt      string
	MinLength int
	Alphabet  string
}

type Config struct {
	HTTPPort       string
	DatabaseURL    string
	OpaqueID       OpaqueIDConfig
	RequestTimeout time.Duration
	LogDir         string
	LogLevel       string
}

func Load() (Config, error) {
	databaseURL, err := mustEnv("DATABASE_URL")
	if err != nil {
		return Config{}, err
	}

	salt, err := mustEnv("OPAQUE_ID_SALT")
	if err != nil {
		return Config{}, err
	}

	if len(salt) < constants.OpaqueIDSaltMinLength {
		return Config{}, ErrOpaqueIDSaltTooShort
	}

	return Config{
		HTTPPort:    getEnv("HTTP_PORT", constants.DefaultHTTPPort),
		DatabaseURL: databaseURL,
		OpaqueID: OpaqueIDConfig{
			Salt:      salt,
			MinLength: getIntEnv("OPAQUE_ID_MIN_LENGTH", constants.DefaultOpaqueIDMinLen),
			Alphabet:  getEnv("OPAQUE_ID_ALPHABET", constants.DefaultOpaqueIDAlphabet),
		},
		RequestTimeout: getDurationEnv("REQUEST_TIMEOUT", constants.DefaultRequestTimeout),
		LogDir:         os.Getenv("LOG_DIR"),
		LogLevel:       os.Getenv("LOG_LEVEL"),
	}, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func mustEnv(key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingRequiredEnv, key)
	}
	return v, nil
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getIntEnv(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

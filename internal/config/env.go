package config

import (
	"os"
	"strconv"
	"sync"
)

// envCache stores previously fetched non-empty environment variable
// values so repeat lookups avoid the relatively expensive syscall
// interaction.
var envCache sync.Map // map[string]string

func getEnv(key string) (string, bool) {
	if v, ok := envCache.Load(key); ok {
		return v.(string), true
	}
	if v := os.Getenv(key); v != "" {
		envCache.Store(key, v)
		return v, true
	}
	return "", false
}

// EnvOrDefault returns the value of the environment variable identified by
// key or the provided fallback if the variable is unset or empty.
func EnvOrDefault(key, fallback string) string {
	if v, ok := getEnv(key); ok {
		return v
	}
	return fallback
}

// EnvOrDefaultInt returns the integer value of the environment variable
// identified by key or the provided fallback if unset, empty, or
// unparseable.
func EnvOrDefaultInt(key string, fallback int) int {
	if v, ok := getEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// EnvOrDefaultUint64 returns the uint64 value of the environment variable
// identified by key or the provided fallback if unset, empty, or
// unparseable.
func EnvOrDefaultUint64(key string, fallback uint64) uint64 {
	if v, ok := getEnv(key); ok {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

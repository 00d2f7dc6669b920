package env

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

var (
	ErrNotFound         = errors.New("environment variable with key not found")
	ErrConversionFailed = errors.New("failed to convert environment variable with key to value")
)

func errNotFound(key string) error {
	return fmt.Errorf("key: %s: %w", key, ErrNotFound)
}

func errConversionFailed(key string, typeName string, err error) error {
	return fmt.Errorf("key: %s type: %s: %w: %v", key, typeName, ErrConversionFailed, err)
}

func MustGetString(key string) string {
	if val, found := os.LookupEnv(key); found {
		return val
	}

	panic(errNotFound(key))
}

func MustGetInt(key string) int {
	val, err := GetInt(key)
	if err != nil {
		panic(err)
	}

	return val
}

func MustGetURL(key string) *url.URL {
	val, found := os.LookupEnv(key)
	if !found {
		panic(errNotFound(key))
	}

	u, err := url.Parse(val)
	if err != nil {
		panic(errConversionFailed(key, "url.URL", err))
	}

	return u
}

func GetString(key string) (string, error) {
	if val, found := os.LookupEnv(key); found {
		return val, nil
	}

	return "", errNotFound(key)
}

func GetStringOrDefault(key string, defaultVal string) string {
	if val, found := os.LookupEnv(key); found && val != "" {
		return val
	}

	return defaultVal
}

func GetInt(key string) (int, error) {
	return parse(key, "int", strconv.Atoi)
}

func GetIntOrDefault(key string, defaultVal int) (int, error) {
	return parseOrDefault(key, defaultVal, GetInt)
}

func GetFloat(key string) (float64, error) {
	return parse(key, "float64", func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

func GetFloatOrDefault(key string, defaultVal float64) (float64, error) {
	return parseOrDefault(key, defaultVal, GetFloat)
}

func GetBool(key string) (bool, error) {
	return parse(key, "bool", strconv.ParseBool)
}

func GetBoolOrDefault(key string, defaultVal bool) (bool, error) {
	return parseOrDefault(key, defaultVal, GetBool)
}

func GetDuration(key string) (time.Duration, error) {
	return parse(key, "time.Duration", time.ParseDuration)
}

func GetDurationOrDefault(key string, defaultVal time.Duration) (time.Duration, error) {
	return parseOrDefault(key, defaultVal, GetDuration)
}

func parse[T any](key string, typeName string, conv func(string) (T, error)) (T, error) {
	var zero T

	raw, found := os.LookupEnv(key)
	if !found {
		return zero, errNotFound(key)
	}

	val, err := conv(raw)
	if err != nil {
		return zero, errConversionFailed(key, typeName, err)
	}

	return val, nil
}

// parseOrDefault falls back to defaultVal for unset or empty variables only;
// a present but malformed value is still an error.
func parseOrDefault[T any](key string, defaultVal T, get func(string) (T, error)) (T, error) {
	if raw, found := os.LookupEnv(key); !found || raw == "" {
		return defaultVal, nil
	}

	return get(key)
}

// config/overlay.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LoadDotenv loads the given .env files into the process environment.
// Missing files are skipped; variables already set win.
func LoadDotenv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// OverlayEnv applies PORTAL_* variables on top of cfg.
func OverlayEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	var errs []string
	num := func(key string, dst *int) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %q is not a number", key, v))
			return
		}
		*dst = n
	}
	flag := func(key string, dst *bool) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %q is not a boolean", key, v))
			return
		}
		*dst = b
	}

	num("PORTAL_PORT", &cfg.App.Port)
	str("PORTAL_DATA_DIR", &cfg.App.DataDir)
	str("PORTAL_PUBLIC_URL", &cfg.App.PublicURL)
	str("PORTAL_ENV", &cfg.App.Env)
	str("PORTAL_API_BASE_URL", &cfg.API.BaseURL)
	num("PORTAL_API_TIMEOUT_SECONDS", &cfg.API.TimeoutSeconds)
	flag("PORTAL_SESSION_SECURE", &cfg.Session.Secure)
	str("PORTAL_CACHE_BACKEND", &cfg.Cache.Backend)
	str("PORTAL_REDIS_ADDR", &cfg.Cache.RedisAddr)
	num("PORTAL_REDIS_DB", &cfg.Cache.RedisDB)
	str("PORTAL_REPORT_FONT_REGULAR", &cfg.Report.FontRegular)
	str("PORTAL_REPORT_FONT_BOLD", &cfg.Report.FontBold)

	if len(errs) > 0 {
		return errors.New("env overlay: " + strings.Join(errs, "; "))
	}
	return nil
}

// Resolve reads the file at path, applies PORTAL_* variables from lookup and
// returns the normalized result. Hard problems fail the load; warnings are
// returned for the caller to log.
func Resolve(path string, lookup func(string) (string, bool)) (Config, []string, error) {
	cfg, err := Load(path)
	if err != nil {
		return Config{}, nil, err
	}
	if err := OverlayEnv(&cfg, lookup); err != nil {
		return Config{}, nil, err
	}
	out, vr := NormalizeAndValidate(cfg)
	if err := vr.Err(); err != nil {
		return Config{}, vr.Warnings, err
	}
	return out, vr.Warnings, nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// Err folds the hard problems into one error, nil when there are none.
func (v Validation) Err() error {
	if v.OK() {
		return nil
	}
	return errors.New("config validation failed:\n- " + strings.Join(v.Errors, "\n- "))
}

// NormalizeAndValidate returns a normalized copy of cfg and the problems found in it.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	out.API.BaseURL = strings.TrimRight(strings.TrimSpace(out.API.BaseURL), "/")
	out.App.PublicURL = strings.TrimRight(strings.TrimSpace(out.App.PublicURL), "/")
	out.App.Env = strings.ToLower(strings.TrimSpace(out.App.Env))
	out.Cache.Backend = strings.ToLower(strings.TrimSpace(out.Cache.Backend))
	out.Session.CookieName = strings.TrimSpace(out.Session.CookieName)
	out.Report.FontRegular = strings.TrimSpace(out.Report.FontRegular)
	out.Report.FontBold = strings.TrimSpace(out.Report.FontBold)

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}
	if strings.TrimSpace(out.App.DataDir) == "" {
		res.addErr("app.data_dir is required")
	}
	switch out.App.Env {
	case "development", "production", "test":
	default:
		res.addErr("app.env must be development, production or test")
	}
	if out.App.PublicURL != "" {
		if err := validBaseURL(out.App.PublicURL); err != nil {
			res.addErr("app.public_url is invalid: %v", err)
		}
	}

	if out.API.BaseURL == "" {
		res.addErr("api.base_url is required")
	} else if err := validBaseURL(out.API.BaseURL); err != nil {
		res.addErr("api.base_url is invalid: %v", err)
	}
	if out.API.TimeoutSeconds <= 0 {
		res.addErr("api.timeout_seconds must be > 0")
	} else if out.API.TimeoutSeconds > 60 {
		res.addWarn("api.timeout_seconds is high (%d); pages will hang that long when the API is down.", out.API.TimeoutSeconds)
	}
	if out.API.RequestsPerSecond <= 0 {
		res.addErr("api.requests_per_second must be > 0")
	}
	if out.API.Burst <= 0 {
		res.addErr("api.burst must be > 0")
	}

	if out.Session.CookieName == "" {
		res.addErr("session.cookie_name is required")
	}
	if out.Session.TTLMinutes <= 0 {
		res.addErr("session.ttl_minutes must be > 0")
	}
	if out.Production() && !strings.HasPrefix(out.App.PublicURL, "https://") {
		res.addWarn("app.public_url is not https in production; browsers will drop the Secure session cookie.")
	}

	if out.Pagination.PageSize <= 0 {
		res.addErr("pagination.page_size must be > 0")
	}
	if out.Pagination.MaxPageSize < out.Pagination.PageSize {
		res.addErr("pagination.max_page_size must be >= pagination.page_size")
	}

	switch out.Cache.Backend {
	case "sqlite":
	case "redis":
		if strings.TrimSpace(out.Cache.RedisAddr) == "" {
			res.addErr("cache.redis_addr is required when cache.backend=redis")
		}
	default:
		res.addErr("cache.backend must be sqlite or redis")
	}
	if out.Cache.TTLSeconds <= 0 {
		res.addErr("cache.ttl_seconds must be > 0")
	} else if out.Cache.TTLSeconds < 30 {
		res.addWarn("cache.ttl_seconds is very low (%d); dropdowns will hit the API on most pages.", out.Cache.TTLSeconds)
	}

	if out.Login.AttemptsPerMinute <= 0 || out.Login.Burst <= 0 {
		res.addErr("login.attempts_per_minute and login.burst must be > 0")
	}
	if out.Scheduler.SessionCleanupMinutes <= 0 {
		res.addErr("scheduler.session_cleanup_minutes must be > 0")
	}
	if out.Scheduler.LookupWarmMinutes <= 0 {
		res.addErr("scheduler.lookup_warm_minutes must be > 0")
	}

	if out.Report.FontBold != "" && out.Report.FontRegular == "" {
		res.addErr("report.font_bold needs report.font_regular")
	}
	for _, f := range []struct{ key, path string }{
		{"report.font_regular", out.Report.FontRegular},
		{"report.font_bold", out.Report.FontBold},
	} {
		if f.path == "" {
			continue
		}
		if _, err := os.Stat(f.path); err != nil {
			res.addErr("%s: %v", f.key, err)
		}
	}

	return out, res
}

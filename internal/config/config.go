// internal/config/config.go
package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Port      int    `yaml:"port" json:"port"`
		DataDir   string `yaml:"data_dir" json:"dataDir"`
		PublicURL string `yaml:"public_url" json:"publicUrl"`
		Env       string `yaml:"env" json:"env"`
	} `yaml:"app" json:"app"`

	API struct {
		BaseURL           string  `yaml:"base_url" json:"baseUrl"`
		TimeoutSeconds    int     `yaml:"timeout_seconds" json:"timeoutSeconds"`
		RequestsPerSecond float64 `yaml:"requests_per_second" json:"requestsPerSecond"`
		Burst             int     `yaml:"burst" json:"burst"`
	} `yaml:"api" json:"api"`

	Session struct {
		CookieName string `yaml:"cookie_name" json:"cookieName"`
		TTLMinutes int    `yaml:"ttl_minutes" json:"ttlMinutes"`
		Secure     bool   `yaml:"secure" json:"secure"`
	} `yaml:"session" json:"session"`

	Pagination struct {
		PageSize    int `yaml:"page_size" json:"pageSize"`
		MaxPageSize int `yaml:"max_page_size" json:"maxPageSize"`
	} `yaml:"pagination" json:"pagination"`

	Cache struct {
		Backend    string `yaml:"backend" json:"backend"` // sqlite | redis
		TTLSeconds int    `yaml:"ttl_seconds" json:"ttlSeconds"`
		RedisAddr  string `yaml:"redis_addr" json:"redisAddr"`
		RedisDB    int    `yaml:"redis_db" json:"redisDb"`
	} `yaml:"cache" json:"cache"`

	Login struct {
		AttemptsPerMinute float64 `yaml:"attempts_per_minute" json:"attemptsPerMinute"`
		Burst             int     `yaml:"burst" json:"burst"`
	} `yaml:"login" json:"login"`

	Scheduler struct {
		SessionCleanupMinutes int `yaml:"session_cleanup_minutes" json:"sessionCleanupMinutes"`
		LookupWarmMinutes     int `yaml:"lookup_warm_minutes" json:"lookupWarmMinutes"`
	} `yaml:"scheduler" json:"scheduler"`

	// Report fonts replace the embedded DejaVu faces; empty keeps them.
	Report struct {
		FontRegular string `yaml:"font_regular" json:"fontRegular"`
		FontBold    string `yaml:"font_bold" json:"fontBold"`
	} `yaml:"report" json:"report"`
}

// Defaults is the baseline every loaded file is applied on top of.
func Defaults() Config {
	var c Config
	c.App.Port = 8080
	c.App.DataDir = "."
	c.App.Env = "development"
	c.API.TimeoutSeconds = 15
	c.API.RequestsPerSecond = 20
	c.API.Burst = 40
	c.Session.CookieName = "portal_session"
	c.Session.TTLMinutes = 120
	c.Pagination.PageSize = 10
	c.Pagination.MaxPageSize = 100
	c.Cache.Backend = "sqlite"
	c.Cache.TTLSeconds = 600
	c.Login.AttemptsPerMinute = 5
	c.Login.Burst = 5
	c.Scheduler.SessionCleanupMinutes = 15
	c.Scheduler.LookupWarmMinutes = 10
	return c
}

func Load(path string) (Config, error) {
	cfg := Defaults()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

func (c Config) APITimeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLMinutes) * time.Minute
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

func (c Config) Production() bool { return c.App.Env == "production" }

// SecureCookies is forced on in production whatever session.secure says.
func (c Config) SecureCookies() bool { return c.Session.Secure || c.Production() }

// DataPath places a runtime file (database, lock, tokens) under app.data_dir.
func (c Config) DataPath(name string) string { return filepath.Join(c.App.DataDir, name) }

// AbsoluteURL prefixes path with app.public_url; without one it returns path unchanged.
func (c Config) AbsoluteURL(path string) string {
	if c.App.PublicURL == "" {
		return path
	}
	return c.App.PublicURL + path
}

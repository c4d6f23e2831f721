package web

import (
	"database/sql"
	"sync/atomic"
	"time"

	"jobportal/internal/apiclient"
	"jobportal/internal/config"
	"jobportal/internal/events"
	"jobportal/internal/lookup"
)

type Deps struct {
	DB *sql.DB

	API    *apiclient.Client
	Lookup *lookup.Service
	Hub    *events.Hub

	// CfgVal stores config.Config and is swapped on reload.
	CfgVal *atomic.Value

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	LoginLimiter *IPLimiter

	// OpsToken guards /internal endpoints together with the loopback check.
	OpsToken string

	// Now is overridable in tests.
	Now func() time.Time
}

func (d Deps) cfg() config.Config {
	return d.CfgVal.Load().(config.Config)
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

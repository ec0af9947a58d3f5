package health

import (
	"fmt"
	"net/http"
	"time"

	"github.com/aaravmahajanofficial/marketplace-catalog/internal/config"
	"github.com/aaravmahajanofficial/marketplace-catalog/internal/utils/response"
	"github.com/hellofresh/health-go/v5"
	"github.com/hellofresh/health-go/v5/checks/postgres"
	healthRedis "github.com/hellofresh/health-go/v5/checks/redis"
)

const (
	componentName    = "marketplace-catalog"
	componentVersion = "1.0.0"

	databaseCheck = "database"
	cacheCheck    = "cache"

	CacheStatusDisabled = "DISABLED"
	CacheStatusUp       = "UP"
	CacheStatusDown     = "DOWN"
)

// Report is the /health/full body: the health-go check result plus the cache
// status, which never makes the service unavailable on its own.
type Report struct {
	health.Check
	Cache string `json:"cache"`
}

func component() health.Option {
	return health.WithComponent(health.Component{
		Name:    componentName,
		Version: componentVersion,
	})
}

// NewLivenessHandler reports that the process is up without touching any
// dependency.
func NewLivenessHandler() (http.Handler, error) {

	h, err := health.New(component())
	if err != nil {
		return nil, fmt.Errorf("failed to create health instance: %w", err)
	}

	return h.Handler(), nil
}

// NewFullHandler checks the database and, when the catalog cache is backed by
// redis, the cache server.
func NewFullHandler(cfg *config.Config) (http.Handler, error) {

	checks := []health.Config{
		{
			Name:      databaseCheck,
			Timeout:   3 * time.Second,
			SkipOnErr: false,
			Check: postgres.New(postgres.Config{
				DSN: cfg.Database.GetDSN(),
			}),
		},
	}

	if cfg.Cache.Enabled && cfg.Cache.Backend == config.CacheBackendRedis {
		checks = append(checks, health.Config{
			Name:      cacheCheck,
			Timeout:   2 * time.Second,
			SkipOnErr: true,
			Check: healthRedis.New(healthRedis.Config{
				DSN: cfg.RedisConnect.GetDSN(),
			}),
		})
	}

	h, err := health.New(component(), health.WithSystemInfo(), health.WithChecks(checks...))
	if err != nil {
		return nil, fmt.Errorf("failed to create health instance: %w", err)
	}

	return fullHandler(h, cfg.Cache), nil
}

func fullHandler(h *health.Health, cacheCfg config.CacheConfig) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		check := h.Measure(r.Context())

		report := Report{Check: check, Cache: cacheStatus(check, cacheCfg)}

		status := http.StatusOK
		if check.Status == health.StatusUnavailable {
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Cache-Control", "no-store")
		_ = response.WriteJson(w, status, report)
	})
}

func cacheStatus(check health.Check, cacheCfg config.CacheConfig) string {
	if !cacheCfg.Enabled {
		return CacheStatusDisabled
	}

	if _, failed := check.Failures[cacheCheck]; failed {
		return CacheStatusDown
	}

	return CacheStatusUp
}

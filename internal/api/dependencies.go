package api

import (
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"tourwise/backoffice/internal/common"
	"tourwise/backoffice/internal/db"
	"tourwise/backoffice/internal/db/repositories"
	"tourwise/backoffice/internal/logging"
	"tourwise/backoffice/internal/metrics"
	"tourwise/backoffice/internal/providers"
	"tourwise/backoffice/internal/services"
)

type Repositories struct {
	Operators   *repositories.OperatorRepo
	Tours       *repositories.TourRepo
	Departures  *repositories.DepartureRepo
	SyncHistory *repositories.SyncHistoryRepo
}

type Services struct {
	Cache        common.CacheInterface
	Lock         common.DistributedLock
	Catalog      providers.CatalogClient
	Geocoder     providers.GeocodingResolver
	Upserter     *services.TourUpserter
	Orchestrator *services.SyncOrchestrator
	MediaImport  *services.MediaImportService
}

type Dependencies struct {
	Repo     *Repositories
	Services *Services
	Redis    *redis.Client
}

func InitDependencies(metricsReg *metrics.MetricsRegistry) (*Dependencies, error) {

	repos := &Repositories{
		Operators:   repositories.NewOperatorRepo(db.PgDB),
		Tours:       repositories.NewTourRepo(db.PgDB),
		Departures:  repositories.NewDepartureRepo(db.PgDB),
		SyncHistory: repositories.NewSyncHistoryRepo(db.PgDB),
	}

	redisClient := common.NewRedisClient()

	// Geocode results are shared across replicas when Redis is reachable,
	// otherwise each instance keeps its own in-process cache.
	var cacheSvc common.CacheInterface
	if redisCache, err := common.NewRedisCacheService(redisClient); err == nil {
		cacheSvc = redisCache
		logging.Info("Using Redis cache for geocode results")
	} else {
		cacheSvc = common.NewCacheService(3600, 600)
		logging.Warn("Redis unavailable, using in-memory cache", "error", err.Error())
	}

	var lock common.DistributedLock
	if os.Getenv("SYNC_LOCK_BACKEND") == "advisory" {
		lock = common.NewAdvisoryLock(db.DB)
		logging.Info("Using Postgres advisory lock for sync runs")
	} else {
		lock = common.NewRedisLock(redisClient, time.Hour)
		logging.Info("Using Redis lock for sync runs")
	}

	catalogClient := providers.NewHTTPCatalogClient()
	geocoder := providers.NewHTTPGeocodingResolver(cacheSvc, metricsReg)

	mediaBaseURL := os.Getenv("MEDIA_CDN_BASE_URL")
	if mediaBaseURL == "" {
		mediaBaseURL = "https://cdn.tourwise.example"
	}

	upserter := services.NewTourUpserter(repos.Tours, repos.Departures, catalogClient, geocoder, mediaBaseURL)
	worker := services.NewBrandSyncWorker(
		catalogClient,
		repos.Operators,
		repos.Tours,
		repos.Departures,
		repos.SyncHistory,
		upserter,
		metricsReg,
	)
	orchestrator := services.NewSyncOrchestrator(worker, lock, metricsReg)
	mediaImport := services.NewMediaImportService(repos.Tours, metricsReg)

	svcs := &Services{
		Cache:        cacheSvc,
		Lock:         lock,
		Catalog:      catalogClient,
		Geocoder:     geocoder,
		Upserter:     upserter,
		Orchestrator: orchestrator,
		MediaImport:  mediaImport,
	}

	return &Dependencies{
		Repo:     repos,
		Services: svcs,
		Redis:    redisClient,
	}, nil
}

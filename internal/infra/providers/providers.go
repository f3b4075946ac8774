package providers

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/totegamma/solr-feeder/client"
	"github.com/totegamma/solr-feeder/internal/config"
	"github.com/totegamma/solr-feeder/internal/infra/database"
	"github.com/totegamma/solr-feeder/internal/infra/gateway"
	"github.com/totegamma/solr-feeder/internal/infra/repository"
	"github.com/totegamma/solr-feeder/internal/service"
	"github.com/totegamma/solr-feeder/internal/usecase"
)

// NewDatabase opens a Postgres connection using the configured DSN.
func NewDatabase(conf config.Server) (*gorm.DB, error) {
	return database.NewPostgres(conf.PostgresDsn)
}

// NewRedis returns nil when no redis address is configured.
func NewRedis(conf config.Server) *redis.Client {
	return database.NewRedis(conf.RedisAddr, conf.RedisPassword, conf.RedisDB)
}

// NewClient constructs the HTTP client used to talk to Solr.
func NewClient(conf config.Solr) *client.Client {
	return client.New(conf.URL, client.Options{
		Timeout: conf.Timeout,
		Commit:  conf.Commit,
	})
}

// NewSolrGateway constructs the gateway backed by the HTTP client.
func NewSolrGateway(cl *client.Client) *gateway.SolrGateway {
	return gateway.NewSolrGateway(cl)
}

// NewSignalService returns nil without a redis client.
func NewSignalService(rdb *redis.Client, conf config.Sync) *service.SignalService {
	if rdb == nil {
		return nil
	}
	return service.NewSignalService(rdb, conf.EventChannel)
}

// NewKeyLock picks memcached when configured and process memory otherwise.
// It returns nil when key exclusion is off.
func NewKeyLock(conf config.Config) service.KeyLock {
	if !conf.Sync.ExclusiveKeys {
		return nil
	}
	if mc := database.NewMemcached(conf.Server.MemcachedAddr); mc != nil {
		return service.NewMemcacheKeyLock(mc, conf.Sync.LockTTL)
	}
	return service.NewLocalKeyLock(conf.Sync.LockTTL)
}

// NewNamesUsecase wires the sync orchestration.
func NewNamesUsecase(db *gorm.DB, gw *gateway.SolrGateway, signal *service.SignalService, conf config.Solr) *usecase.NamesUsecase {
	var publisher usecase.SyncPublisher
	if signal != nil {
		publisher = signal
	}
	return usecase.NewNamesUsecase(
		repository.NewNameRequestRepository(db),
		gw,
		publisher,
		usecase.Cores{Names: conf.NamesCore, Conflicts: conf.ConflictsCore},
	)
}

package svc

import (
	"log"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx driver
	gocache "github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
	"github.com/zeromicro/go-zero/core/syncx"

	cachekeys "psyai-api/internal/cache"
	"psyai-api/internal/config"
	"psyai-api/internal/persistence/checkpoint"
	"psyai-api/internal/session"
	classifierpkg "psyai-api/pkg/classifier"
	"psyai-api/pkg/decision"
	extractorpkg "psyai-api/pkg/extractor"
	"psyai-api/pkg/journal"
	llmpkg "psyai-api/pkg/llm"
)

type ServiceContext struct {
	Config config.Config

	LLMConfig  *llmpkg.Config
	LLMClient  llmpkg.LLMClient
	Classifier classifierpkg.Classifier
	Extractor  *extractorpkg.Extractor

	Store    decision.Store
	Workflow *decision.Workflow
	Sessions *session.Registry
	Journal  *journal.Writer

	DBConn sqlx.SqlConn
	Cache  gocache.Cache
	TTL    cachekeys.TTLSet
}

func NewServiceContext(c config.Config) *ServiceContext {
	svc := &ServiceContext{
		Config:   c,
		Sessions: session.NewRegistry(c.Session.RecentLimit),
		Journal:  journal.NewWriter(c.JournalDir),
		TTL:      cachekeys.NewTTLSet(c.TTL),
	}

	// LLM client is optional: without it the workflow still runs and records
	// the no-model sentinel at the review gate.
	if c.LLM.Value != nil {
		llmCfg := c.LLM.Value.Clone()
		client, err := llmpkg.NewClient(llmCfg)
		if err != nil {
			log.Fatalf("failed to init llm client: %v", err)
		}
		svc.LLMConfig = llmCfg
		svc.LLMClient = client
	}

	if svc.LLMClient != nil {
		clsCfg := c.Classifier.Value
		if clsCfg == nil {
			clsCfg = &classifierpkg.Config{MaxCompletionTokens: 512}
		}
		cls, err := classifierpkg.NewZeroShot(clsCfg, svc.LLMClient)
		if err != nil {
			log.Fatalf("failed to init classifier: %v", err)
		}
		svc.Classifier = cls

		exCfg := c.Extractor.Value
		if exCfg == nil {
			exCfg = &extractorpkg.Config{MaxCompletionTokens: 1024}
		}
		ex, err := extractorpkg.New(exCfg, svc.LLMClient)
		if err != nil {
			log.Fatalf("failed to init extractor: %v", err)
		}
		svc.Extractor = ex
	}

	// Durable checkpoints require Postgres; without a DSN the review gate
	// falls back to the in-process store.
	if c.Postgres.DSN != "" {
		conn := sqlx.NewSqlConn("pgx", c.Postgres.DSN)
		svc.DBConn = conn

		if c.Redis.Host != "" {
			conf := gocache.CacheConf{{RedisConf: c.Redis, Weight: 100}}
			svc.Cache = gocache.New(conf, syncx.NewSingleFlight(), gocache.NewStat(cachekeys.Namespace), sqlx.ErrNotFound)
		}

		store, err := checkpoint.NewService(conn, svc.Cache, svc.TTL)
		if err != nil {
			log.Fatalf("failed to init checkpoint store: %v", err)
		}
		svc.Store = store
	} else {
		svc.Store = decision.NewMemoryStore()
	}

	wf, err := decision.NewWorkflow(svc.Classifier, svc.Store)
	if err != nil {
		log.Fatalf("failed to init decision workflow: %v", err)
	}
	svc.Workflow = wf

	return svc
}

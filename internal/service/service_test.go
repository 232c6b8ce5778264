package service

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"profilehub/internal/domain"
	"profilehub/internal/repo"
)

// setupDB 每个测试独立的内存库；单连接让并发事务在 sqlite 上串行化
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&domain.Account{},
		&domain.Handle{},
		&domain.Draft{},
		&domain.Snapshot{},
		&domain.SearchEntry{},
	))
	return db
}

type testEnv struct {
	db       *gorm.DB
	engine   *SnapshotEngine
	profiles *ProfileService
	search   *SearchService
	life     *Lifecycle
	entries  domain.SearchRepository
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupDB(t)
	log := zap.NewNop()

	drafts := repo.NewDraftRepo(db)
	handles := repo.NewHandleRepo(db)
	snaps := repo.NewSnapshotRepo(db)
	entries := repo.NewSearchRepo(db)

	engine := NewSnapshotEngine(snaps, entries, nil, log)
	return &testEnv{
		db:       db,
		engine:   engine,
		profiles: NewProfileService(drafts, handles, engine),
		search:   NewSearchService(entries),
		life:     NewLifecycle(db, engine, entries, handles, nil, log),
		entries:  entries,
	}
}

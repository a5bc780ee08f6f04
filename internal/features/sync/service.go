package sync

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go-bizops/internal/common/apperr"
	"go-bizops/internal/config"
	"go-bizops/internal/features/record"
	"go-bizops/internal/features/schema"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// SyncService mirrors module records into a Postgres reporting database so
// analysts can query them with plain SQL. Each module lands in its own
// reporting_<module> table as (id, data jsonb, synced_at). Incremental runs
// only push rows touched since the last successful sync.
type SyncService interface {
	RunSync(ctx context.Context, module string) (*SyncLog, error)
	RunAll(ctx context.Context) error
	ListLogs(ctx context.Context, module string, limit int64) ([]SyncLog, error)
}

type SyncServiceImpl struct {
	LogRepo    SyncLogRepository
	RecordRepo record.RecordRepository
	Registry   *schema.Registry
	Config     *config.Config
	Log        *zap.Logger
}

func NewSyncService(logRepo SyncLogRepository, recordRepo record.RecordRepository, registry *schema.Registry, cfg *config.Config, log *zap.Logger) SyncService {
	return &SyncServiceImpl{
		LogRepo:    logRepo,
		RecordRepo: recordRepo,
		Registry:   registry,
		Config:     cfg,
		Log:        log,
	}
}

func (s *SyncServiceImpl) ListLogs(ctx context.Context, module string, limit int64) ([]SyncLog, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.LogRepo.List(ctx, module, limit)
}

func (s *SyncServiceImpl) RunAll(ctx context.Context) error {
	for _, mod := range s.Registry.Modules() {
		if _, err := s.RunSync(ctx, mod.Name); err != nil {
			s.Log.Error("sync failed",
				zap.String("module", mod.Name), zap.Error(err))
		}
	}
	return nil
}

func (s *SyncServiceImpl) RunSync(ctx context.Context, module string) (*SyncLog, error) {
	if _, ok := s.Registry.Module(module); !ok {
		return nil, apperr.Validation("unknown module %q", module)
	}
	if s.Config.ReportingDSN == "" {
		return nil, apperr.Validation("reporting database is not configured")
	}

	log := &SyncLog{
		Module:    module,
		StartTime: time.Now(),
		Status:    "in_progress",
	}
	_ = s.LogRepo.Create(ctx, log)

	processed, err := s.mirrorModule(ctx, module)

	log.EndTime = time.Now()
	log.ProcessedCount = processed
	if err != nil {
		log.Status = "failed"
		log.Error = err.Error()
	} else {
		log.Status = "success"
	}
	_ = s.LogRepo.Update(ctx, log)

	if err != nil {
		return log, err
	}
	s.Log.Info("sync finished",
		zap.String("module", module), zap.Int("processed", processed))
	return log, nil
}

func (s *SyncServiceImpl) mirrorModule(ctx context.Context, module string) (int, error) {
	db, err := sql.Open("postgres", s.Config.ReportingDSN)
	if err != nil {
		return 0, fmt.Errorf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return 0, fmt.Errorf("failed to ping postgres: %v", err)
	}

	tableName := "reporting_" + module
	createStmt := fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (id text PRIMARY KEY, data jsonb NOT NULL, synced_at timestamptz NOT NULL)`,
		tableName,
	)
	if _, err := db.ExecContext(ctx, createStmt); err != nil {
		return 0, fmt.Errorf("failed to create reporting table: %v", err)
	}

	filter := map[string]any{}
	if last, err := s.LogRepo.LastSuccess(ctx, module); err == nil && last != nil {
		filter["updated_at"] = map[string]any{"$gt": last.StartTime}
	}

	upsertStmt := fmt.Sprintf(
		`INSERT INTO %s (id, data, synced_at) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, synced_at = EXCLUDED.synced_at`,
		tableName,
	)

	total := 0
	page := int64(1)
	limit := int64(1000)

	for {
		offset := (page - 1) * limit
		records, err := s.RecordRepo.List(ctx, module, filter, limit, offset, "updated_at", 1)
		if err != nil {
			return total, fmt.Errorf("failed to fetch records for %s on page %d: %v", module, page, err)
		}
		if len(records) == 0 {
			break
		}

		now := time.Now()
		for _, rec := range records {
			id, _ := rec["id"].(string)
			if id == "" {
				continue
			}

			data, err := json.Marshal(rec)
			if err != nil {
				continue
			}

			if _, err := db.ExecContext(ctx, upsertStmt, id, data, now); err != nil {
				return total, fmt.Errorf("failed to upsert record %s: %v", id, err)
			}
			total++
		}

		if len(records) < int(limit) {
			break
		}
		page++
	}

	return total, nil
}

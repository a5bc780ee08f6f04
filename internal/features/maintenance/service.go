package maintenance

import (
	"context"
	"time"

	"go-bizops/internal/features/bulk_operation"
	"go-bizops/internal/features/notification"
	"go-bizops/internal/features/sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	bulkOperationRetention = 30 * 24 * time.Hour
	notificationRetention  = 90 * 24 * time.Hour
)

// Scheduler runs the recurring housekeeping jobs: pruning finished bulk
// operations and old notifications, and the nightly reporting mirror.
type Scheduler struct {
	cron      *cron.Cron
	bulkRepo  bulk_operation.BulkOperationRepository
	notifRepo notification.NotificationRepository
	syncSvc   sync.SyncService
	log       *zap.Logger
}

func NewScheduler(
	bulkRepo bulk_operation.BulkOperationRepository,
	notifRepo notification.NotificationRepository,
	syncSvc sync.SyncService,
	log *zap.Logger,
) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		bulkRepo:  bulkRepo,
		notifRepo: notifRepo,
		syncSvc:   syncSvc,
		log:       log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 3 * * *", s.prune); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 2 * * *", s.mirror); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("maintenance scheduler started")
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("maintenance scheduler stopped")
}

func (s *Scheduler) prune() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	ops, err := s.bulkRepo.DeleteFinishedBefore(ctx, time.Now().Add(-bulkOperationRetention))
	if err != nil {
		s.log.Error("failed to prune bulk operations", zap.Error(err))
	}

	notifs, err := s.notifRepo.DeleteCreatedBefore(ctx, time.Now().Add(-notificationRetention))
	if err != nil {
		s.log.Error("failed to prune notifications", zap.Error(err))
	}

	s.log.Info("maintenance prune finished",
		zap.Int64("bulk_operations", ops),
		zap.Int64("notifications", notifs))
}

func (s *Scheduler) mirror() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	if err := s.syncSvc.RunAll(ctx); err != nil {
		s.log.Error("nightly mirror failed", zap.Error(err))
	}
}

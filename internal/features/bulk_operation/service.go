package bulk_operation

import (
	"context"
	"fmt"
	"time"

	"go-bizops/internal/common/apperr"
	"go-bizops/internal/features/record"
	"go-bizops/internal/features/schema"

	"go.uber.org/zap"
)

// Notifier receives fire-and-forget outcome events; presentation is not this
// package's concern.
type Notifier interface {
	Success(ctx context.Context, userID, title, message string)
	Error(ctx context.Context, userID, title, message string)
}

type BulkOperationService interface {
	BulkUpdate(ctx context.Context, module string, ids []string, fields map[string]any, userID string) (*BulkReport, error)
	BulkDelete(ctx context.Context, module string, ids []string, userID string) (*BulkReport, error)
	BulkArchive(ctx context.Context, module string, ids []string, userID string) (*BulkReport, error)
	BulkAssign(ctx context.Context, module string, ids []string, field string, value any, userID string) (*BulkReport, error)
	Export(ctx context.Context, module string, ids []string, format string) ([]byte, string, error)
	GetOperation(ctx context.Context, id string) (*BulkOperation, error)
	GetUserOperations(ctx context.Context, userID string) ([]BulkOperation, error)
}

type BulkOperationServiceImpl struct {
	BulkRepo BulkOperationRepository
	Records  record.RecordRepository
	Registry *schema.Registry
	Notifier Notifier
	Log      *zap.Logger
}

func NewBulkOperationService(
	bulkRepo BulkOperationRepository,
	records record.RecordRepository,
	registry *schema.Registry,
	notifier Notifier,
	log *zap.Logger,
) BulkOperationService {
	return &BulkOperationServiceImpl{
		BulkRepo: bulkRepo,
		Records:  records,
		Registry: registry,
		Notifier: notifier,
		Log:      log,
	}
}

func (s *BulkOperationServiceImpl) GetOperation(ctx context.Context, id string) (*BulkOperation, error) {
	return s.BulkRepo.Get(ctx, id)
}

func (s *BulkOperationServiceImpl) GetUserOperations(ctx context.Context, userID string) ([]BulkOperation, error) {
	return s.BulkRepo.FindByUser(ctx, userID, 50)
}

func (s *BulkOperationServiceImpl) BulkUpdate(ctx context.Context, module string, ids []string, fields map[string]any, userID string) (*BulkReport, error) {
	if len(fields) == 0 {
		return nil, apperr.Validation("bulk update requires at least one field")
	}
	if err := s.validateFields(module, fields); err != nil {
		return nil, err
	}
	return s.run(ctx, BulkTypeUpdate, module, ids, fields, userID, func(ctx context.Context, id string) error {
		return s.Records.Update(ctx, module, id, fields)
	})
}

func (s *BulkOperationServiceImpl) BulkDelete(ctx context.Context, module string, ids []string, userID string) (*BulkReport, error) {
	// Confirmation is the caller's job; once invoked the delete is
	// unconditional.
	return s.run(ctx, BulkTypeDelete, module, ids, nil, userID, func(ctx context.Context, id string) error {
		return s.Records.Delete(ctx, module, id)
	})
}

func (s *BulkOperationServiceImpl) BulkArchive(ctx context.Context, module string, ids []string, userID string) (*BulkReport, error) {
	fields := map[string]any{"status": "archived"}
	if err := s.validateFields(module, fields); err != nil {
		return nil, err
	}
	return s.run(ctx, BulkTypeArchive, module, ids, fields, userID, func(ctx context.Context, id string) error {
		return s.Records.Update(ctx, module, id, fields)
	})
}

func (s *BulkOperationServiceImpl) BulkAssign(ctx context.Context, module string, ids []string, field string, value any, userID string) (*BulkReport, error) {
	fields := map[string]any{field: value, "updated_at": time.Now()}
	if err := s.validateFields(module, map[string]any{field: value}); err != nil {
		return nil, err
	}
	return s.run(ctx, BulkTypeAssign, module, ids, fields, userID, func(ctx context.Context, id string) error {
		return s.Records.Update(ctx, module, id, fields)
	})
}

// run drives one batch: every id attempted independently, failures collected,
// no short-circuit and no rollback. The operation record fails outright only
// when the batch cannot start.
func (s *BulkOperationServiceImpl) run(ctx context.Context, opType BulkOperationType, module string, ids []string, payload map[string]any, userID string, apply func(ctx context.Context, id string) error) (*BulkReport, error) {
	if userID == "" {
		return nil, apperr.Authorization("user required for bulk operations")
	}
	if _, ok := s.Registry.Module(module); !ok {
		return nil, apperr.Validation("unknown module %q", module)
	}
	if len(ids) == 0 {
		return nil, apperr.Validation("no record ids given")
	}

	op := &BulkOperation{
		Type:      opType,
		Module:    module,
		RecordIDs: ids,
		Payload:   payload,
		Status:    BulkStatusPending,
		CreatedBy: userID,
	}
	if err := s.BulkRepo.Create(ctx, op); err != nil {
		return nil, err
	}

	op.Status = BulkStatusRunning
	if err := s.BulkRepo.Update(ctx, op); err != nil {
		s.Log.Warn("failed to mark bulk operation running",
			zap.String("module", module), zap.Error(err))
	}

	report := &BulkReport{}
	for i, id := range ids {
		if err := apply(ctx, id); err != nil {
			report.Failed++
			report.Errors = append(report.Errors, BulkError{RecordID: id, Error: err.Error()})
		} else {
			report.Success++
		}

		op.Progress = (i + 1) * 100 / len(ids)
		op.Errors = report.Errors
		if (i+1)%10 == 0 {
			if err := s.BulkRepo.Update(ctx, op); err != nil {
				s.Log.Warn("failed to persist bulk operation progress",
					zap.String("module", module), zap.Int("progress", op.Progress),
					zap.Error(err))
			}
		}
	}

	// Partial failures still complete the batch
	op.Status = BulkStatusCompleted
	op.Progress = 100
	op.Errors = report.Errors
	now := time.Now()
	op.CompletedAt = &now
	if err := s.BulkRepo.Update(ctx, op); err != nil {
		s.Log.Warn("failed to persist bulk operation outcome",
			zap.String("module", module), zap.Error(err))
	}

	s.notify(ctx, userID, opType, module, report)
	s.Log.Info("bulk operation finished",
		zap.String("module", module),
		zap.String("type", string(opType)),
		zap.String("user_id", userID),
		zap.Int("success", report.Success),
		zap.Int("failed", report.Failed))

	return report, nil
}

func (s *BulkOperationServiceImpl) notify(ctx context.Context, userID string, opType BulkOperationType, module string, report *BulkReport) {
	if s.Notifier == nil {
		return
	}
	title := fmt.Sprintf("Bulk %s on %s", opType, module)
	if report.Failed > 0 {
		s.Notifier.Error(ctx, userID, title,
			fmt.Sprintf("%d succeeded, %d failed", report.Success, report.Failed))
		return
	}
	s.Notifier.Success(ctx, userID, title,
		fmt.Sprintf("Successfully processed %d record(s)", report.Success))
}

func (s *BulkOperationServiceImpl) validateFields(module string, fields map[string]any) error {
	mod, ok := s.Registry.Module(module)
	if !ok {
		return apperr.Validation("unknown module %q", module)
	}
	for name := range fields {
		if name == "updated_at" {
			continue
		}
		if _, ok := mod.Field(name); !ok {
			return apperr.Validation("unknown field %q in module %q", name, module)
		}
	}
	return nil
}

package submissions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"garmenthr/internal/domain/audit"
)

const (
	AuditEntity = "task_submission"
	AuditCreate = "task_submission.create"

	DefaultTxTimeout = 15 * time.Second
)

// MetricsSink receives committed submission totals.
type MetricsSink interface {
	SubmissionRecorded(total decimal.Decimal)
}

type Service struct {
	store     StoreAPI
	audit     audit.Recorder
	metrics   MetricsSink
	txTimeout time.Duration
	now       func() time.Time
}

func NewService(store StoreAPI, recorder audit.Recorder, sink MetricsSink, txTimeout time.Duration) *Service {
	if txTimeout <= 0 {
		txTimeout = DefaultTxTimeout
	}
	return &Service{store: store, audit: recorder, metrics: sink, txTimeout: txTimeout, now: time.Now}
}

// Submit records one submission: it resolves every referenced task type up
// front, snapshots prices into the lines and writes everything in a single
// bounded transaction.
func (s *Service) Submit(ctx context.Context, actorID string, req Request) (Submission, error) {
	req = normalize(req)
	if req.EmployeeID == "" {
		return Submission{}, ErrEmployeeNotFound
	}
	if len(req.Tasks) == 0 {
		return Submission{}, ErrNoTasks
	}

	exists, err := s.store.EmployeeExists(ctx, req.EmployeeID)
	if err != nil {
		return Submission{}, fmt.Errorf("check employee: %w", err)
	}
	if !exists {
		return Submission{}, ErrEmployeeNotFound
	}

	prices, err := s.store.TaskTypePrices(ctx, TaskTypeIDs(req.Tasks))
	if err != nil {
		return Submission{}, fmt.Errorf("load task types: %w", err)
	}
	plan, err := BuildPlan(req.Tasks, prices)
	if err != nil {
		return Submission{}, err
	}

	sub, err := s.store.Create(ctx, req, plan, s.now(), s.txTimeout)
	if err != nil {
		return Submission{}, fmt.Errorf("persist submission: %w", err)
	}

	if s.metrics != nil {
		s.metrics.SubmissionRecorded(sub.TotalAmount)
	}
	audit.Safe(ctx, s.audit, actorID, AuditCreate, AuditEntity, sub.ID, nil, map[string]any{
		"employeeId":  sub.EmployeeID,
		"totalAmount": sub.TotalAmount,
		"lines":       len(plan.Lines),
	})
	log.Ctx(ctx).Info().
		Str("submissionId", sub.ID).
		Str("employeeId", sub.EmployeeID).
		Int("lines", len(plan.Lines)).
		Str("total", sub.TotalAmount.StringFixed(2)).
		Msg("task submission recorded")
	return sub, nil
}

func normalize(req Request) Request {
	req.EmployeeID = strings.ToLower(strings.TrimSpace(req.EmployeeID))
	entries := make([]Entry, len(req.Tasks))
	for i, entry := range req.Tasks {
		entry.TaskTypeID = strings.ToLower(strings.TrimSpace(entry.TaskTypeID))
		entries[i] = entry
	}
	req.Tasks = entries
	return req
}

func (s *Service) Get(ctx context.Context, id string) (Submission, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Submission, int, error) {
	return s.store.List(ctx, filter)
}

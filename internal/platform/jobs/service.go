package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const (
	JobPayrollGenerate = "payroll_generate"

	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

type Run struct {
	ID          string          `json:"id"`
	JobType     string          `json:"jobType"`
	ActorUserID string          `json:"actorUserId"`
	Status      string          `json:"status"`
	Details     json.RawMessage `json:"details,omitempty"`
	StartedAt   time.Time       `json:"startedAt"`
	FinishedAt  *time.Time      `json:"finishedAt,omitempty"`
}

// Runner records operator-triggered runs in job_runs.
type Runner interface {
	RunNow(ctx context.Context, jobType, actorID string, run func(context.Context) (any, error)) (any, error)
}

type Service struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

// RunNow executes run synchronously. Bookkeeping failures are logged and never
// change the result of run.
func (s *Service) RunNow(ctx context.Context, jobType, actorID string, run func(context.Context) (any, error)) (any, error) {
	runID := ""
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, actor_user_id, status)
    VALUES ($1, NULLIF($2,'')::uuid, $3)
    RETURNING id
  `, jobType, actorID, StatusRunning).Scan(&runID); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("jobType", jobType).Msg("job run insert failed")
	}

	details, err := run(ctx)
	status := StatusSucceeded
	if err != nil {
		status = StatusFailed
		details = map[string]string{"error": err.Error()}
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		log.Ctx(ctx).Warn().Err(marshalErr).Str("jobType", jobType).Msg("job details marshal failed")
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(context.WithoutCancel(ctx), `
      UPDATE job_runs
      SET status = $1, details_json = $2, finished_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			log.Ctx(ctx).Warn().Err(updErr).Str("jobType", jobType).Msg("job run update failed")
		}
	}
	if err != nil {
		return nil, err
	}
	return details, nil
}

func (s *Service) Recent(ctx context.Context, jobType string, limit int) ([]Run, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, job_type, COALESCE(actor_user_id::text, ''), status, details_json, started_at, finished_at
    FROM job_runs
    WHERE job_type = $1
    ORDER BY started_at DESC
    LIMIT $2
  `, jobType, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.JobType, &run.ActorUserID, &run.Status, &run.Details, &run.StartedAt, &run.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// Inline runs jobs without bookkeeping, for the CLI and tests.
type Inline struct{}

func (Inline) RunNow(ctx context.Context, _, _ string, run func(context.Context) (any, error)) (any, error) {
	return run(ctx)
}

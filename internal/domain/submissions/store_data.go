package submissions

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"garmenthr/internal/domain/tasks"
	"garmenthr/internal/platform/db"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{DB: pool}
}

func (s *Store) EmployeeExists(ctx context.Context, employeeID string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, `SELECT COUNT(1) FROM employees WHERE id::text = $1`, employeeID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// TaskTypePrices loads every referenced task type price in one query.
func (s *Store) TaskTypePrices(ctx context.Context, ids []string) (map[string]decimal.Decimal, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id::text, price
    FROM task_types
    WHERE id::text = ANY($1)
  `, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]decimal.Decimal, len(ids))
	for rows.Next() {
		var id string
		var price decimal.Decimal
		if err := rows.Scan(&id, &price); err != nil {
			return nil, err
		}
		out[id] = price
	}
	return out, rows.Err()
}

func (s *Store) Create(ctx context.Context, req Request, plan Plan, now time.Time, timeout time.Duration) (Submission, error) {
	var out Submission
	err := db.WithTx(ctx, s.DB, timeout, func(ctx context.Context, tx pgx.Tx) error {
		var id string
		if err := tx.QueryRow(ctx, `
    INSERT INTO task_submissions (employee_id, total_amount, submission_date, notes)
    VALUES ($1,$2,$3,$4)
    RETURNING id
  `, req.EmployeeID, plan.Total, now, req.Notes).Scan(&id); err != nil {
			return fmt.Errorf("insert submission: %w", err)
		}

		if len(plan.Lines) > 0 {
			batch := &pgx.Batch{}
			for _, line := range plan.Lines {
				batch.Queue(`
    INSERT INTO completed_tasks (submission_id, employee_id, task_type_id, quantity, price_at_time, total_amount, completed_date, notes)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
  `, id, req.EmployeeID, line.TaskTypeID, line.Quantity, line.PriceAtTime, line.TotalAmount, now, line.Notes)
			}
			results := tx.SendBatch(ctx, batch)
			for range plan.Lines {
				if _, err := results.Exec(); err != nil {
					_ = results.Close()
					return fmt.Errorf("insert completed task: %w", err)
				}
			}
			if err := results.Close(); err != nil {
				return fmt.Errorf("insert completed tasks: %w", err)
			}
		}

		var err error
		out, err = getSubmission(ctx, tx, id)
		return err
	})
	if err != nil {
		return Submission{}, err
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, id string) (Submission, error) {
	return getSubmission(ctx, s.DB, id)
}

func getSubmission(ctx context.Context, q db.Querier, id string) (Submission, error) {
	var sub Submission
	emp := tasks.EmployeeRef{}
	err := q.QueryRow(ctx, `
    SELECT s.id, s.employee_id, s.total_amount, s.submission_date, s.notes, s.created_at, s.updated_at,
           e.first_name, e.last_name, e.employee_type
    FROM task_submissions s
    JOIN employees e ON e.id = s.employee_id
    WHERE s.id::text = $1
  `, id).Scan(&sub.ID, &sub.EmployeeID, &sub.TotalAmount, &sub.SubmissionDate, &sub.Notes, &sub.CreatedAt, &sub.UpdatedAt,
		&emp.FirstName, &emp.LastName, &emp.EmployeeType)
	if errors.Is(err, pgx.ErrNoRows) {
		return Submission{}, ErrSubmissionNotFound
	}
	if err != nil {
		return Submission{}, err
	}
	emp.ID = sub.EmployeeID
	sub.Employee = &emp

	rows, err := q.Query(ctx, `
    SELECT ct.id, ct.submission_id, ct.employee_id, ct.task_type_id, ct.quantity, ct.price_at_time, ct.total_amount,
           ct.completed_date, ct.notes, ct.created_at,
           tt.name, tt.price
    FROM completed_tasks ct
    JOIN task_types tt ON tt.id = ct.task_type_id
    WHERE ct.submission_id = $1
    ORDER BY ct.created_at, ct.id
  `, sub.ID)
	if err != nil {
		return Submission{}, err
	}
	defer rows.Close()

	sub.Tasks = []tasks.CompletedTask{}
	for rows.Next() {
		var ct tasks.CompletedTask
		tt := tasks.TaskTypeRef{}
		if err := rows.Scan(&ct.ID, &ct.SubmissionID, &ct.EmployeeID, &ct.TaskTypeID, &ct.Quantity, &ct.PriceAtTime,
			&ct.TotalAmount, &ct.CompletedDate, &ct.Notes, &ct.CreatedAt, &tt.Name, &tt.Price); err != nil {
			return Submission{}, err
		}
		tt.ID = ct.TaskTypeID
		ct.TaskType = &tt
		sub.Tasks = append(sub.Tasks, ct)
	}
	return sub, rows.Err()
}

func (s *Store) List(ctx context.Context, filter ListFilter) ([]Submission, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	if name := strings.TrimSpace(filter.EmployeeName); name != "" {
		args = append(args, "%"+name+"%")
		n := strconv.Itoa(len(args))
		where += " AND (e.first_name ILIKE $" + n + " OR e.last_name ILIKE $" + n + ")"
	}
	if !filter.From.IsZero() && !filter.To.IsZero() {
		args = append(args, filter.From, filter.To)
		where += " AND s.submission_date BETWEEN $" + strconv.Itoa(len(args)-1) + " AND $" + strconv.Itoa(len(args))
	}

	const from = `
    FROM task_submissions s
    JOIN employees e ON e.id = s.employee_id`

	var total int
	if err := s.DB.QueryRow(ctx, `SELECT COUNT(1)`+from+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
    SELECT s.id, s.employee_id, s.total_amount, s.submission_date, s.notes, s.created_at, s.updated_at,
           e.first_name, e.last_name, e.employee_type` + from + where +
		" ORDER BY s.submission_date DESC LIMIT $" + strconv.Itoa(len(args)+1) + " OFFSET $" + strconv.Itoa(len(args)+2)
	rows, err := s.DB.Query(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []Submission{}
	for rows.Next() {
		var sub Submission
		emp := tasks.EmployeeRef{}
		if err := rows.Scan(&sub.ID, &sub.EmployeeID, &sub.TotalAmount, &sub.SubmissionDate, &sub.Notes, &sub.CreatedAt,
			&sub.UpdatedAt, &emp.FirstName, &emp.LastName, &emp.EmployeeType); err != nil {
			return nil, 0, err
		}
		emp.ID = sub.EmployeeID
		sub.Employee = &emp
		out = append(out, sub)
	}
	return out, total, rows.Err()
}

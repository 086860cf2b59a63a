package tasks

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"garmenthr/internal/platform/db"
)

const nameConstraint = "task_types_name_key"

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{DB: pool}
}

const typeColumns = `id, name, description, price, status, created_at, updated_at`

func scanType(row pgx.Row) (TaskType, error) {
	var t TaskType
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Price, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return TaskType{}, ErrTaskTypeNotFound
	}
	return t, err
}

func (s *Store) CreateType(ctx context.Context, in NewTaskType) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO task_types (name, description, price, status)
    VALUES ($1,$2,$3,$4)
    RETURNING id
  `, in.Name, in.Description, in.Price, in.Status).Scan(&id)
	if db.IsUniqueViolation(err, nameConstraint) {
		return "", ErrDuplicateTaskTypeName
	}
	return id, err
}

// EnsureType inserts the task type unless one with the same name exists.
func (s *Store) EnsureType(ctx context.Context, in NewTaskType) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    INSERT INTO task_types (name, description, price, status)
    VALUES ($1,$2,$3,$4)
    ON CONFLICT (name) DO NOTHING
  `, in.Name, in.Description, in.Price, in.Status)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) GetType(ctx context.Context, id string) (TaskType, error) {
	return scanType(s.DB.QueryRow(ctx, `SELECT `+typeColumns+` FROM task_types WHERE id::text = $1`, id))
}

func (s *Store) ListTypes(ctx context.Context, status string) ([]TaskType, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+typeColumns+`
    FROM task_types
    WHERE ($1 = '' OR status = $1)
    ORDER BY created_at DESC
  `, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []TaskType{}
	for rows.Next() {
		t, err := scanType(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) UpdateType(ctx context.Context, id string, upd TaskTypeUpdate, changedBy string) (*PriceChange, error) {
	var change *PriceChange
	err := db.WithTx(ctx, s.DB, 0, func(ctx context.Context, tx pgx.Tx) error {
		var current decimal.Decimal
		err := tx.QueryRow(ctx, `SELECT price FROM task_types WHERE id::text = $1 FOR UPDATE`, id).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTaskTypeNotFound
		}
		if err != nil {
			return err
		}
		if pc, ok := DetectPriceChange(current, upd.Price); ok {
			change = &pc
		}

		if change != nil {
			if _, err := tx.Exec(ctx, `
    INSERT INTO task_price_history (task_type_id, old_price, new_price, changed_by)
    VALUES ($1,$2,$3,NULLIF($4,'')::uuid)
  `, id, change.OldPrice, change.NewPrice, changedBy); err != nil {
				return err
			}
		}

		var sets []string
		var args []any
		add := func(column string, value any) {
			args = append(args, value)
			sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
		}
		if upd.Name != nil {
			add("name", *upd.Name)
		}
		if upd.Description != nil {
			add("description", *upd.Description)
		}
		if upd.Price != nil {
			add("price", *upd.Price)
		}
		if upd.Status != nil {
			add("status", *upd.Status)
		}
		args = append(args, id)
		tag, err := tx.Exec(ctx, `UPDATE task_types SET `+strings.Join(append(sets, "updated_at = now()"), ", ")+
			` WHERE id::text = $`+strconv.Itoa(len(args)), args...)
		if db.IsUniqueViolation(err, nameConstraint) {
			return ErrDuplicateTaskTypeName
		}
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrTaskTypeNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return change, nil
}

func (s *Store) DeleteType(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM task_types WHERE id::text = $1`, id)
	if db.IsForeignKeyViolation(err) {
		return ErrTaskTypeInUse
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskTypeNotFound
	}
	return nil
}

func (s *Store) NameTaken(ctx context.Context, name, excludeID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM task_types
    WHERE name = $1 AND ($2 = '' OR id::text <> $2)
  `, name, excludeID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) PriceHistory(ctx context.Context, taskTypeID string, limit, offset int) ([]TaskPriceHistory, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, task_type_id, old_price, new_price, changed_by::text, created_at
    FROM task_price_history
    WHERE task_type_id::text = $1
    ORDER BY created_at DESC
    LIMIT $2 OFFSET $3
  `, taskTypeID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []TaskPriceHistory{}
	for rows.Next() {
		var h TaskPriceHistory
		if err := rows.Scan(&h.ID, &h.TaskTypeID, &h.OldPrice, &h.NewPrice, &h.ChangedBy, &h.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *Store) ListCompleted(ctx context.Context, filter CompletedFilter) ([]CompletedTask, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		where += " AND ct.employee_id::text = $" + strconv.Itoa(len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		where += " AND ct.completed_date >= $" + strconv.Itoa(len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		where += " AND ct.completed_date < $" + strconv.Itoa(len(args))
	}

	var total int
	if err := s.DB.QueryRow(ctx, `SELECT COUNT(1) FROM completed_tasks ct`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
    SELECT ct.id, ct.submission_id, ct.employee_id, ct.task_type_id, ct.quantity, ct.price_at_time, ct.total_amount,
           ct.completed_date, ct.notes, ct.created_at,
           e.first_name, e.last_name, e.employee_type,
           tt.name, tt.price
    FROM completed_tasks ct
    JOIN employees e ON e.id = ct.employee_id
    JOIN task_types tt ON tt.id = ct.task_type_id` + where +
		" ORDER BY ct.completed_date DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += " LIMIT $" + strconv.Itoa(len(args)-1) + " OFFSET $" + strconv.Itoa(len(args))
	}
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []CompletedTask{}
	for rows.Next() {
		var ct CompletedTask
		emp := EmployeeRef{}
		tt := TaskTypeRef{}
		if err := rows.Scan(&ct.ID, &ct.SubmissionID, &ct.EmployeeID, &ct.TaskTypeID, &ct.Quantity, &ct.PriceAtTime,
			&ct.TotalAmount, &ct.CompletedDate, &ct.Notes, &ct.CreatedAt,
			&emp.FirstName, &emp.LastName, &emp.EmployeeType, &tt.Name, &tt.Price); err != nil {
			return nil, 0, err
		}
		emp.ID = ct.EmployeeID
		tt.ID = ct.TaskTypeID
		ct.Employee = &emp
		ct.TaskType = &tt
		out = append(out, ct)
	}
	return out, total, rows.Err()
}

// CountCompleted counts completed tasks in [from, to); zero bounds are open.
func (s *Store) CountCompleted(ctx context.Context, from, to time.Time) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM completed_tasks
    WHERE ($1::timestamptz IS NULL OR completed_date >= $1)
      AND ($2::timestamptz IS NULL OR completed_date < $2)
  `, nullTime(from), nullTime(to)).Scan(&count)
	return count, err
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

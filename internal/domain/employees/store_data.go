package employees

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"garmenthr/internal/platform/db"
)

const nicConstraint = "employees_nic_number_key"

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{DB: pool}
}

const employeeColumns = `id, first_name, last_name, email, phone, address, nic_number, gender, age, employee_type, status, created_at, updated_at`

const salaryColumns = `id, employee_id, basic_salary, allowance, epf_percentage, etf_percentage, effective_from, effective_to, is_active, created_at`

func scanEmployee(row pgx.Row) (Employee, error) {
	var emp Employee
	err := row.Scan(&emp.ID, &emp.FirstName, &emp.LastName, &emp.Email, &emp.Phone, &emp.Address, &emp.NICNumber,
		&emp.Gender, &emp.Age, &emp.EmployeeType, &emp.Status, &emp.CreatedAt, &emp.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrEmployeeNotFound
	}
	return emp, err
}

func scanSalary(row pgx.Row) (SalaryConfig, error) {
	var cfg SalaryConfig
	err := row.Scan(&cfg.ID, &cfg.EmployeeID, &cfg.BasicSalary, &cfg.Allowance, &cfg.EPFPercentage, &cfg.ETFPercentage,
		&cfg.EffectiveFrom, &cfg.EffectiveTo, &cfg.IsActive, &cfg.CreatedAt)
	return cfg, err
}

func (s *Store) Create(ctx context.Context, emp NewEmployee, now time.Time) (string, error) {
	var id string
	err := db.WithTx(ctx, s.DB, 0, func(ctx context.Context, tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
    INSERT INTO employees (first_name, last_name, email, phone, address, nic_number, gender, age, employee_type, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    RETURNING id
  `, emp.FirstName, emp.LastName, emp.Email, emp.Phone, emp.Address, emp.NICNumber, emp.Gender, emp.Age,
			emp.EmployeeType, emp.Status).Scan(&id)
		if db.IsUniqueViolation(err, nicConstraint) {
			return ErrDuplicateNIC
		}
		if err != nil {
			return err
		}
		if emp.Permanent == nil || emp.EmployeeType != TypePermanent {
			return nil
		}
		return insertSalaryConfig(ctx, tx, NewSalaryConfig(id, *emp.Permanent, now))
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func insertSalaryConfig(ctx context.Context, q db.Querier, cfg SalaryConfig) error {
	_, err := q.Exec(ctx, `
    INSERT INTO salary_configs (employee_id, basic_salary, allowance, epf_percentage, etf_percentage, effective_from, is_active)
    VALUES ($1,$2,$3,$4,$5,$6,true)
  `, cfg.EmployeeID, cfg.BasicSalary, cfg.Allowance, cfg.EPFPercentage, cfg.ETFPercentage, cfg.EffectiveFrom)
	return err
}

func (s *Store) Get(ctx context.Context, id string) (Employee, error) {
	emp, err := scanEmployee(s.DB.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id::text = $1`, id))
	if err != nil {
		return Employee{}, err
	}
	emp.SalaryConfigs, err = s.SalaryHistory(ctx, emp.ID)
	if err != nil {
		return Employee{}, err
	}
	return emp, nil
}

func (s *Store) List(ctx context.Context, filter ListFilter) ([]Employee, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	if filter.EmployeeType != "" {
		args = append(args, filter.EmployeeType)
		where += " AND employee_type = $" + strconv.Itoa(len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += " AND status = $" + strconv.Itoa(len(args))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		n := strconv.Itoa(len(args))
		where += " AND (first_name ILIKE $" + n + " OR last_name ILIKE $" + n + " OR nic_number ILIKE $" + n + " OR phone ILIKE $" + n + ")"
	}

	var total int
	if err := s.DB.QueryRow(ctx, `SELECT COUNT(1) FROM employees`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + employeeColumns + ` FROM employees` + where +
		" ORDER BY created_at DESC LIMIT $" + strconv.Itoa(len(args)+1) + " OFFSET $" + strconv.Itoa(len(args)+2)
	rows, err := s.DB.Query(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Employee
	ids := []string{}
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, err
		}
		emp.SalaryConfigs = []SalaryConfig{}
		out = append(out, emp)
		ids = append(ids, emp.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(ids) == 0 {
		return out, total, nil
	}

	active, err := s.activeConfigs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range out {
		if cfg, ok := active[out[i].ID]; ok {
			out[i].SalaryConfigs = []SalaryConfig{cfg}
		}
	}
	return out, total, nil
}

func (s *Store) activeConfigs(ctx context.Context, employeeIDs []string) (map[string]SalaryConfig, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+salaryColumns+`
    FROM salary_configs
    WHERE employee_id::text = ANY($1) AND is_active
  `, employeeIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]SalaryConfig, len(employeeIDs))
	for rows.Next() {
		cfg, err := scanSalary(rows)
		if err != nil {
			return nil, err
		}
		out[cfg.EmployeeID] = cfg
	}
	return out, rows.Err()
}

func (s *Store) Update(ctx context.Context, id string, upd EmployeeUpdate, now time.Time) error {
	return db.WithTx(ctx, s.DB, 0, func(ctx context.Context, tx pgx.Tx) error {
		sets, args := updateAssignments(upd)
		args = append(args, id)
		query := `UPDATE employees SET ` + strings.Join(append(sets, "updated_at = now()"), ", ") +
			` WHERE id::text = $` + strconv.Itoa(len(args))
		tag, err := tx.Exec(ctx, query, args...)
		if db.IsUniqueViolation(err, nicConstraint) {
			return ErrDuplicateNIC
		}
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrEmployeeNotFound
		}
		if upd.Permanent == nil {
			return nil
		}
		return supersedeSalary(ctx, tx, id, *upd.Permanent, now)
	})
}

func updateAssignments(upd EmployeeUpdate) ([]string, []any) {
	var sets []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}
	if upd.FirstName != nil {
		add("first_name", *upd.FirstName)
	}
	if upd.LastName != nil {
		add("last_name", *upd.LastName)
	}
	if upd.Email != nil {
		add("email", nullIfEmpty(*upd.Email))
	}
	if upd.Phone != nil {
		add("phone", *upd.Phone)
	}
	if upd.Address != nil {
		add("address", nullIfEmpty(*upd.Address))
	}
	if upd.NICNumber != nil {
		add("nic_number", *upd.NICNumber)
	}
	if upd.Gender != nil {
		add("gender", *upd.Gender)
	}
	if upd.Age != nil {
		add("age", *upd.Age)
	}
	if upd.EmployeeType != nil {
		add("employee_type", *upd.EmployeeType)
	}
	if upd.Status != nil {
		add("status", *upd.Status)
	}
	return sets, args
}

// nullIfEmpty clears optional text columns.
func nullIfEmpty(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

// supersedeSalary closes the active config and inserts the replacement with the same timestamp.
func supersedeSalary(ctx context.Context, tx pgx.Tx, employeeID string, input SalaryInput, now time.Time) error {
	if _, err := tx.Exec(ctx, `
    UPDATE salary_configs
    SET is_active = false, effective_to = $2
    WHERE employee_id::text = $1 AND is_active
  `, employeeID, now); err != nil {
		return err
	}
	return insertSalaryConfig(ctx, tx, NewSalaryConfig(employeeID, input, now))
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM employees WHERE id::text = $1`, id)
	if db.IsForeignKeyViolation(err) {
		return ErrEmployeeInUse
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

func (s *Store) NICTaken(ctx context.Context, nic, excludeID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM employees
    WHERE nic_number = $1 AND ($2 = '' OR id::text <> $2)
  `, nic, excludeID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) SalaryHistory(ctx context.Context, employeeID string) ([]SalaryConfig, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+salaryColumns+`
    FROM salary_configs
    WHERE employee_id::text = $1
    ORDER BY effective_from DESC, created_at DESC
  `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []SalaryConfig{}
	for rows.Next() {
		cfg, err := scanSalary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cfg)
	}
	return out, rows.Err()
}

func (s *Store) ActiveSalaryConfig(ctx context.Context, employeeID string) (SalaryConfig, error) {
	cfg, err := scanSalary(s.DB.QueryRow(ctx, `
    SELECT `+salaryColumns+`
    FROM salary_configs
    WHERE employee_id::text = $1 AND is_active
    ORDER BY effective_from DESC
    LIMIT 1
  `, employeeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return SalaryConfig{}, ErrSalaryConfigNotFound
	}
	return cfg, err
}

func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1),
           COUNT(1) FILTER (WHERE employee_type = 'PERMANENT'),
           COUNT(1) FILTER (WHERE employee_type = 'TEMPORARY'),
           COUNT(1) FILTER (WHERE status = 'ACTIVE'),
           COUNT(1) FILTER (WHERE status = 'INACTIVE')
    FROM employees
  `).Scan(&st.Total, &st.ByType.Permanent, &st.ByType.Temporary, &st.ByStatus.Active, &st.ByStatus.Inactive)
	return st, err
}

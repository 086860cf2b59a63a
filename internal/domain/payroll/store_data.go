package payroll

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"garmenthr/internal/platform/db"
)

const periodConstraint = "payrolls_employee_period_key"

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{DB: pool}
}

const payrollColumns = `p.id, p.employee_id, p.month, p.year, p.employee_type, p.basic_salary, p.allowance, p.epf_deduction,
           p.etf_contribution, p.total_task_amount, p.net_salary, p.status, p.generated_by::text, p.generated_at, p.updated_at,
           e.first_name, e.last_name, e.nic_number, e.employee_type, e.email`

func scanPayroll(row pgx.Row) (Payroll, error) {
	var p Payroll
	emp := EmployeeRef{}
	var basic, allowance, epf, etf, taskTotal decimal.NullDecimal
	err := row.Scan(&p.ID, &p.EmployeeID, &p.Month, &p.Year, &p.EmployeeType, &basic, &allowance, &epf, &etf, &taskTotal,
		&p.NetSalary, &p.Status, &p.GeneratedBy, &p.GeneratedAt, &p.UpdatedAt,
		&emp.FirstName, &emp.LastName, &emp.NICNumber, &emp.EmployeeType, &emp.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return Payroll{}, ErrPayrollNotFound
	}
	if err != nil {
		return Payroll{}, err
	}
	p.BasicSalary = nullable(basic)
	p.Allowance = nullable(allowance)
	p.EPFDeduction = nullable(epf)
	p.ETFContribution = nullable(etf)
	p.TotalTaskAmount = nullable(taskTotal)
	emp.ID = p.EmployeeID
	p.Employee = &emp
	return p, nil
}

func nullable(v decimal.NullDecimal) *decimal.Decimal {
	if !v.Valid {
		return nil
	}
	out := v.Decimal
	return &out
}

func (s *Store) ActiveEmployees(ctx context.Context) ([]Candidate, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT e.id, e.first_name, e.last_name, e.employee_type,
           sc.basic_salary, sc.allowance, sc.epf_percentage, sc.etf_percentage
    FROM employees e
    LEFT JOIN LATERAL (
      SELECT basic_salary, allowance, epf_percentage, etf_percentage
      FROM salary_configs
      WHERE employee_id = e.id AND is_active
      ORDER BY effective_from DESC
      LIMIT 1
    ) sc ON true
    WHERE e.status = 'ACTIVE'
    ORDER BY e.created_at
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Candidate
	for rows.Next() {
		var c Candidate
		var basic, allowance, epf, etf decimal.NullDecimal
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.EmployeeType, &basic, &allowance, &epf, &etf); err != nil {
			return nil, err
		}
		if basic.Valid {
			c.Salary = &SalaryTerms{
				BasicSalary:   basic.Decimal,
				Allowance:     allowance.Decimal,
				EPFPercentage: epf.Decimal,
				ETFPercentage: etf.Decimal,
			}
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// TaskTotal sums completed task amounts in [from, to).
func (s *Store) TaskTotal(ctx context.Context, employeeID string, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(SUM(total_amount), 0)
    FROM completed_tasks
    WHERE employee_id = $1 AND completed_date >= $2 AND completed_date < $3
  `, employeeID, from, to).Scan(&total)
	return total, err
}

func (s *Store) Insert(ctx context.Context, p Payroll) (Payroll, bool, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO payrolls (employee_id, month, year, employee_type, basic_salary, allowance, epf_deduction, etf_contribution,
                          total_task_amount, net_salary, status, generated_by)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
    ON CONFLICT (employee_id, month, year) DO NOTHING
    RETURNING id
  `, p.EmployeeID, p.Month, p.Year, p.EmployeeType, p.BasicSalary, p.Allowance, p.EPFDeduction, p.ETFContribution,
		p.TotalTaskAmount, p.NetSalary, p.Status, p.GeneratedBy).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) || db.IsUniqueViolation(err, periodConstraint) {
		return Payroll{}, false, nil
	}
	if err != nil {
		return Payroll{}, false, err
	}
	created, err := s.Get(ctx, id)
	if err != nil {
		return Payroll{}, false, err
	}
	return created, true, nil
}

func (s *Store) Get(ctx context.Context, id string) (Payroll, error) {
	return scanPayroll(s.DB.QueryRow(ctx, `
    SELECT `+payrollColumns+`
    FROM payrolls p
    JOIN employees e ON e.id = p.employee_id
    WHERE p.id::text = $1
  `, id))
}

func (s *Store) List(ctx context.Context, filter ListFilter) ([]Payroll, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	if filter.Month > 0 {
		args = append(args, filter.Month)
		where += " AND p.month = $" + strconv.Itoa(len(args))
	}
	if filter.Year > 0 {
		args = append(args, filter.Year)
		where += " AND p.year = $" + strconv.Itoa(len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += " AND p.status = $" + strconv.Itoa(len(args))
	}
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		where += " AND p.employee_id::text = $" + strconv.Itoa(len(args))
	}

	const from = `
    FROM payrolls p
    JOIN employees e ON e.id = p.employee_id`

	var total int
	if err := s.DB.QueryRow(ctx, `SELECT COUNT(1)`+from+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + payrollColumns + from + where + " ORDER BY p.year DESC, p.month DESC, e.first_name, e.last_name"
	if filter.Limit > 0 {
		query += " LIMIT $" + strconv.Itoa(len(args)+1) + " OFFSET $" + strconv.Itoa(len(args)+2)
		args = append(args, filter.Limit, filter.Offset)
	}
	out, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Store) ListByEmployee(ctx context.Context, employeeID string) ([]Payroll, error) {
	return s.query(ctx, `
    SELECT `+payrollColumns+`
    FROM payrolls p
    JOIN employees e ON e.id = p.employee_id
    WHERE p.employee_id::text = $1
    ORDER BY p.year DESC, p.month DESC
  `, employeeID)
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]Payroll, error) {
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Payroll{}
	for rows.Next() {
		p, err := scanPayroll(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdateStatus moves the row only if it is still in from, so concurrent
// transitions cannot skip a step.
func (s *Store) UpdateStatus(ctx context.Context, id, from, to string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE payrolls
    SET status = $3, updated_at = now()
    WHERE id::text = $1 AND status = $2
  `, id, from, to)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidStatusTransition
	}
	return nil
}

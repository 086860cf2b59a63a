package payroll

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"garmenthr/internal/domain/audit"
	"garmenthr/internal/platform/jobs"
)

// MetricsSink receives per-employee generation outcomes.
type MetricsSink interface {
	PayrollGenerated(employeeType string)
	PayrollSkipped(reason string)
}

type Service struct {
	store      StoreAPI
	jobs       jobs.Runner
	audit      audit.Recorder
	metrics    MetricsSink
	loc        *time.Location
	payslipDir string
}

func NewService(store StoreAPI, runner jobs.Runner, recorder audit.Recorder, sink MetricsSink, loc *time.Location, payslipDir string) *Service {
	if runner == nil {
		runner = jobs.Inline{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		store:      store,
		jobs:       runner,
		audit:      recorder,
		metrics:    sink,
		loc:        loc,
		payslipDir: payslipDir,
	}
}

type runDetails struct {
	Month     int `json:"month"`
	Year      int `json:"year"`
	Generated int `json:"generated"`
	Skipped   int `json:"skipped"`
}

// Generate creates PENDING payroll rows for every active employee that does
// not have one for the period yet.
func (s *Service) Generate(ctx context.Context, actorID string, month, year int) (GenerateResult, error) {
	if err := ValidatePeriod(month, year); err != nil {
		return GenerateResult{}, err
	}

	var created []Payroll
	_, err := s.jobs.RunNow(ctx, jobs.JobPayrollGenerate, actorID, func(ctx context.Context) (any, error) {
		var skipped int
		var err error
		created, skipped, err = s.generate(ctx, actorID, month, year)
		if err != nil {
			return nil, err
		}
		return runDetails{Month: month, Year: year, Generated: len(created), Skipped: skipped}, nil
	})
	if err != nil {
		return GenerateResult{}, err
	}

	if len(created) > 0 {
		audit.Safe(ctx, s.audit, actorID, AuditGenerate, AuditEntity, periodKey(month, year), nil, map[string]any{
			"month": month,
			"year":  year,
			"count": len(created),
		})
	}
	return GenerateResult{
		Message:  fmt.Sprintf("Generated payroll for %d employees", len(created)),
		Count:    len(created),
		Payrolls: created,
	}, nil
}

func (s *Service) generate(ctx context.Context, actorID string, month, year int) ([]Payroll, int, error) {
	candidates, err := s.store.ActiveEmployees(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("load employees: %w", err)
	}
	from, to := MonthWindow(month, year, s.loc)

	created := []Payroll{}
	skipped := 0
	for _, c := range candidates {
		row := Payroll{
			EmployeeID:   c.ID,
			Month:        month,
			Year:         year,
			EmployeeType: c.EmployeeType,
			Status:       StatusPending,
			GeneratedBy:  actorID,
		}

		switch c.EmployeeType {
		case EmployeeTypePermanent:
			if c.Salary == nil {
				s.skip(ctx, c, SkipMissingSalaryConfig)
				skipped++
				continue
			}
			amounts := ComputePermanent(*c.Salary)
			row.BasicSalary = amounts.BasicSalary
			row.Allowance = amounts.Allowance
			row.EPFDeduction = amounts.EPFDeduction
			row.ETFContribution = amounts.ETFContribution
			row.NetSalary = amounts.NetSalary
		default:
			total, err := s.store.TaskTotal(ctx, c.ID, from, to)
			if err != nil {
				return nil, 0, fmt.Errorf("sum tasks for %s: %w", c.ID, err)
			}
			amounts := ComputeTemporary(total)
			row.TotalTaskAmount = amounts.TotalTaskAmount
			row.NetSalary = amounts.NetSalary
		}

		p, ok, err := s.store.Insert(ctx, row)
		if err != nil {
			return nil, 0, fmt.Errorf("insert payroll for %s: %w", c.ID, err)
		}
		if !ok {
			s.skip(ctx, c, SkipAlreadyGenerated)
			skipped++
			continue
		}
		if s.metrics != nil {
			s.metrics.PayrollGenerated(c.EmployeeType)
		}
		created = append(created, p)
	}

	log.Ctx(ctx).Info().
		Int("month", month).
		Int("year", year).
		Int("generated", len(created)).
		Int("skipped", skipped).
		Msg("payroll generated")
	return created, skipped, nil
}

func (s *Service) skip(ctx context.Context, c Candidate, reason string) {
	if s.metrics != nil {
		s.metrics.PayrollSkipped(reason)
	}
	log.Ctx(ctx).Debug().Str("employeeId", c.ID).Str("reason", reason).Msg("payroll skipped")
}

func periodKey(month, year int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

func (s *Service) UpdateStatus(ctx context.Context, actorID, id, status string) (Payroll, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return Payroll{}, err
	}
	if !CanTransition(current.Status, status) {
		return Payroll{}, ErrInvalidStatusTransition
	}
	if err := s.store.UpdateStatus(ctx, id, current.Status, status); err != nil {
		return Payroll{}, err
	}
	updated, err := s.store.Get(ctx, id)
	if err != nil {
		return Payroll{}, err
	}
	audit.Safe(ctx, s.audit, actorID, AuditStatusChange, AuditEntity, id,
		map[string]string{"status": current.Status}, map[string]string{"status": updated.Status})
	return updated, nil
}

func (s *Service) Get(ctx context.Context, id string) (Payroll, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Payroll, int, error) {
	filter.Status = strings.ToUpper(strings.TrimSpace(filter.Status))
	return s.store.List(ctx, filter)
}

func (s *Service) ListByEmployee(ctx context.Context, employeeID string) ([]Payroll, error) {
	return s.store.ListByEmployee(ctx, employeeID)
}

// PeriodNet returns how many rows exist for the period and their summed net salary.
func (s *Service) PeriodNet(ctx context.Context, month, year int) (int, decimal.Decimal, error) {
	rows, _, err := s.store.List(ctx, ListFilter{Month: month, Year: year})
	if err != nil {
		return 0, decimal.Zero, err
	}
	total := decimal.Zero
	for _, p := range rows {
		total = total.Add(p.NetSalary)
	}
	return len(rows), total, nil
}


package employees

import (
	"context"
	"fmt"
	"strings"
	"time"

	"garmenthr/internal/domain/audit"
)

type Service struct {
	store StoreAPI
	audit audit.Recorder
	now   func() time.Time
}

func NewService(store StoreAPI, recorder audit.Recorder) *Service {
	return &Service{store: store, audit: recorder, now: time.Now}
}

func (s *Service) Create(ctx context.Context, actorID string, emp NewEmployee) (Employee, error) {
	emp = normalizeNew(emp)
	taken, err := s.store.NICTaken(ctx, emp.NICNumber, "")
	if err != nil {
		return Employee{}, fmt.Errorf("check nic: %w", err)
	}
	if taken {
		return Employee{}, ErrDuplicateNIC
	}

	id, err := s.store.Create(ctx, emp, s.now())
	if err != nil {
		return Employee{}, err
	}
	created, err := s.store.Get(ctx, id)
	if err != nil {
		return Employee{}, err
	}
	audit.Safe(ctx, s.audit, actorID, AuditCreate, AuditEntity, id, nil, created)
	return created, nil
}

func normalizeNew(emp NewEmployee) NewEmployee {
	emp.FirstName = strings.TrimSpace(emp.FirstName)
	emp.LastName = strings.TrimSpace(emp.LastName)
	emp.NICNumber = strings.TrimSpace(emp.NICNumber)
	emp.Phone = strings.TrimSpace(emp.Phone)
	if emp.EmployeeType == "" {
		emp.EmployeeType = TypePermanent
	}
	if emp.Status == "" {
		emp.Status = StatusActive
	}
	return emp
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Employee, int, error) {
	return s.store.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id string) (Employee, error) {
	return s.store.Get(ctx, id)
}

// Update applies a partial update. A salary payload supersedes the active
// config rather than editing it.
func (s *Service) Update(ctx context.Context, actorID, id string, upd EmployeeUpdate) (Employee, error) {
	before, err := s.store.Get(ctx, id)
	if err != nil {
		return Employee{}, err
	}
	if upd.Empty() {
		return before, nil
	}
	if upd.NICNumber != nil {
		nic := strings.TrimSpace(*upd.NICNumber)
		upd.NICNumber = &nic
		if nic != before.NICNumber {
			taken, err := s.store.NICTaken(ctx, nic, before.ID)
			if err != nil {
				return Employee{}, fmt.Errorf("check nic: %w", err)
			}
			if taken {
				return Employee{}, ErrDuplicateNIC
			}
		}
	}

	if err := s.store.Update(ctx, before.ID, upd, s.now()); err != nil {
		return Employee{}, err
	}
	after, err := s.store.Get(ctx, before.ID)
	if err != nil {
		return Employee{}, err
	}
	audit.Safe(ctx, s.audit, actorID, AuditUpdate, AuditEntity, before.ID, before, after)
	if upd.Permanent != nil {
		prev, _ := before.ActiveSalaryConfig()
		next, _ := after.ActiveSalaryConfig()
		audit.Safe(ctx, s.audit, actorID, AuditSalaryChange, AuditEntity, before.ID, prev, next)
	}
	return after, nil
}

func (s *Service) Delete(ctx context.Context, actorID, id string) error {
	before, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, before.ID); err != nil {
		return err
	}
	audit.Safe(ctx, s.audit, actorID, AuditDelete, AuditEntity, before.ID, before, nil)
	return nil
}

func (s *Service) SalaryHistory(ctx context.Context, employeeID string) ([]SalaryConfig, error) {
	if _, err := s.store.Get(ctx, employeeID); err != nil {
		return nil, err
	}
	return s.store.SalaryHistory(ctx, employeeID)
}

func (s *Service) ActiveSalaryConfig(ctx context.Context, employeeID string) (SalaryConfig, error) {
	if _, err := s.store.Get(ctx, employeeID); err != nil {
		return SalaryConfig{}, err
	}
	return s.store.ActiveSalaryConfig(ctx, employeeID)
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.store.Stats(ctx)
}

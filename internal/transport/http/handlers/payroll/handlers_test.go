package payrollhandler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garmenthr/internal/domain/auth"
	"garmenthr/internal/domain/payroll"
	"garmenthr/internal/platform/jobs"
	"garmenthr/internal/transport/http/handlers/handlertest"
)

const payrollID = "2c1d4b2e-5a6f-4e3d-9c8b-7a6f5e4d3c2b"

type fakeService struct {
	generated   [][2]int
	filter      payroll.ListFilter
	statusErr   error
	generateErr error
}

func (f *fakeService) Generate(_ context.Context, _ string, month, year int) (payroll.GenerateResult, error) {
	if f.generateErr != nil {
		return payroll.GenerateResult{}, f.generateErr
	}
	f.generated = append(f.generated, [2]int{month, year})
	return payroll.GenerateResult{Message: "Generated payroll for 1 employees", Count: 1, Payrolls: []payroll.Payroll{{ID: payrollID, NetSalary: decimal.NewFromInt(56000)}}}, nil
}

func (f *fakeService) List(_ context.Context, filter payroll.ListFilter) ([]payroll.Payroll, int, error) {
	f.filter = filter
	return nil, 0, nil
}

func (f *fakeService) ListByEmployee(context.Context, string) ([]payroll.Payroll, error) {
	return nil, nil
}

func (f *fakeService) Get(_ context.Context, id string) (payroll.Payroll, error) {
	if id != payrollID {
		return payroll.Payroll{}, payroll.ErrPayrollNotFound
	}
	return payroll.Payroll{ID: id}, nil
}

func (f *fakeService) UpdateStatus(_ context.Context, _, id, status string) (payroll.Payroll, error) {
	if f.statusErr != nil {
		return payroll.Payroll{}, f.statusErr
	}
	return payroll.Payroll{ID: id, Status: status}, nil
}

func (f *fakeService) Payslip(_ context.Context, id string) ([]byte, payroll.Payroll, error) {
	p, err := f.Get(context.Background(), id)
	if err != nil {
		return nil, payroll.Payroll{}, err
	}
	p.Month, p.Year, p.EmployeeID = 3, 2025, "emp-1"
	return []byte("%PDF-1.3"), p, nil
}

func (f *fakeService) Export(context.Context, int, int) ([]byte, error) {
	return []byte("PK"), nil
}

type fakeRuns struct {
	jobType string
	limit   int
}

func (f *fakeRuns) Recent(_ context.Context, jobType string, limit int) ([]jobs.Run, error) {
	f.jobType, f.limit = jobType, limit
	return []jobs.Run{{ID: "run-1", JobType: jobType, Status: jobs.StatusSucceeded}}, nil
}

func router(svc Service) http.Handler {
	h := NewHandler(svc, auth.StaticPermissions{}, nil)
	return handlertest.Router(func(r chi.Router) { h.RegisterRoutes(r) })
}

func TestGenerate(t *testing.T) {
	svc := &fakeService{}
	rec := handlertest.Do(t, router(svc), http.MethodPost, "/payroll/generate", map[string]int{"month": 3, "year": 2025}, auth.RoleAdmin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, [][2]int{{3, 2025}}, svc.generated)

	var out struct {
		Message  string `json:"message"`
		Count    int    `json:"count"`
		Payrolls []struct {
			NetSalary string `json:"netSalary"`
		} `json:"payrolls"`
	}
	handlertest.Data(t, rec, &out)
	assert.Equal(t, 1, out.Count)
	assert.Equal(t, "56000", out.Payrolls[0].NetSalary)
}

func TestGenerateValidation(t *testing.T) {
	tests := []struct {
		name string
		body map[string]int
	}{
		{name: "month zero", body: map[string]int{"month": 0, "year": 2025}},
		{name: "month 13", body: map[string]int{"month": 13, "year": 2025}},
		{name: "year too early", body: map[string]int{"month": 1, "year": 1999}},
		{name: "year too late", body: map[string]int{"month": 1, "year": 2101}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeService{}
			rec := handlertest.Do(t, router(svc), http.MethodPost, "/payroll/generate", tc.body, auth.RoleAdmin)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "validation_error", handlertest.ErrorCode(t, rec))
			assert.Empty(t, svc.generated)
		})
	}
}

func TestGeneratePermissions(t *testing.T) {
	rec := handlertest.Do(t, router(&fakeService{}), http.MethodPost, "/payroll/generate", map[string]int{"month": 3, "year": 2025}, auth.RoleSupervisor)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = handlertest.Do(t, router(&fakeService{generateErr: errors.New("boom")}), http.MethodPost, "/payroll/generate", map[string]int{"month": 3, "year": 2025}, auth.RoleAdmin)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "payroll_generate_failed", handlertest.ErrorCode(t, rec))
}

func TestListPayroll(t *testing.T) {
	svc := &fakeService{}
	rec := handlertest.Do(t, router(svc), http.MethodGet, "/payroll?month=3&year=2025&status=pending", nil, auth.RoleSupervisor)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, svc.filter.Month)
	assert.Equal(t, 2025, svc.filter.Year)
	assert.Equal(t, payroll.StatusPending, svc.filter.Status)

	rec = handlertest.Do(t, router(svc), http.MethodGet, "/payroll?month=14", nil, auth.RoleSupervisor)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateStatus(t *testing.T) {
	rec := handlertest.Do(t, router(&fakeService{}), http.MethodPatch, "/payroll/"+payrollID+"/status", map[string]string{"status": "approved"}, auth.RoleAdmin)
	require.Equal(t, http.StatusOK, rec.Code)
	var out payroll.Payroll
	handlertest.Data(t, rec, &out)
	assert.Equal(t, payroll.StatusApproved, out.Status)

	rec = handlertest.Do(t, router(&fakeService{statusErr: payroll.ErrInvalidStatusTransition}), http.MethodPatch, "/payroll/"+payrollID+"/status", map[string]string{"status": "PENDING"}, auth.RoleAdmin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_status_transition", handlertest.ErrorCode(t, rec))

	rec = handlertest.Do(t, router(&fakeService{}), http.MethodPatch, "/payroll/"+payrollID+"/status", map[string]string{"status": "VOID"}, auth.RoleAdmin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", handlertest.ErrorCode(t, rec))
}

func TestPayslipAndExport(t *testing.T) {
	h := router(&fakeService{})

	rec := handlertest.Do(t, h, http.MethodGet, "/payroll/"+payrollID+"/payslip", nil, auth.RoleSupervisor)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "payslip-2025-03-emp-1.pdf")

	rec = handlertest.Do(t, h, http.MethodGet, "/payroll/2c1d4b2e-0000-4e3d-9c8b-7a6f5e4d3c2b/payslip", nil, auth.RoleSupervisor)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = handlertest.Do(t, h, http.MethodGet, "/payroll/export?month=3&year=2025", nil, auth.RoleAdmin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "payroll-2025-03.xlsx")

	rec = handlertest.Do(t, h, http.MethodGet, "/payroll/export?month=3", nil, auth.RoleAdmin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPayroll(t *testing.T) {
	h := router(&fakeService{})

	rec := handlertest.Do(t, h, http.MethodGet, "/payroll/"+payrollID, nil, auth.RoleAdmin)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = handlertest.Do(t, h, http.MethodGet, "/payroll/bogus", nil, auth.RoleAdmin)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = handlertest.Do(t, h, http.MethodGet, "/payroll/employee/"+payrollID, nil, auth.RoleAdmin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(handlertest.Decode(t, rec).Data))
}

func TestListRuns(t *testing.T) {
	runs := &fakeRuns{}
	h := NewHandler(&fakeService{}, auth.StaticPermissions{}, runs)
	r := handlertest.Router(func(r chi.Router) { h.RegisterRoutes(r) })

	rec := handlertest.Do(t, r, http.MethodGet, "/payroll/runs?limit=5", nil, auth.RoleAdmin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, jobs.JobPayrollGenerate, runs.jobType)
	assert.Equal(t, 5, runs.limit)

	var out []jobs.Run
	handlertest.Data(t, rec, &out)
	require.Len(t, out, 1)
	assert.Equal(t, "run-1", out[0].ID)

	rec = handlertest.Do(t, r, http.MethodGet, "/payroll/runs", nil, auth.RoleSupervisor)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

package audithandler

import (
	"context"
	"encoding/csv"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garmenthr/internal/domain/audit"
	"garmenthr/internal/domain/auth"
	"garmenthr/internal/transport/http/handlers/handlertest"
)

type fakeService struct {
	filter audit.Filter
	limit  int
	offset int
}

func (f *fakeService) List(_ context.Context, filter audit.Filter, limit, offset int) ([]audit.Event, int, error) {
	f.filter, f.limit, f.offset = filter, limit, offset
	return []audit.Event{{
		ID:         "evt-1",
		ActorID:    "user-1",
		Action:     "payroll.generate",
		EntityType: "payroll",
		EntityID:   "2025-03",
		CreatedAt:  time.Date(2025, 3, 31, 10, 0, 0, 0, time.UTC),
	}}, 7, nil
}

func router(svc Service) http.Handler {
	h := NewHandler(svc, auth.StaticPermissions{})
	return handlertest.Router(func(r chi.Router) { h.RegisterRoutes(r) })
}

func TestListEvents(t *testing.T) {
	svc := &fakeService{}
	rec := handlertest.Do(t, router(svc), http.MethodGet, "/audit/events?action=payroll.generate&limit=10&offset=20", nil, auth.RoleAdmin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "7", rec.Header().Get("X-Total-Count"))
	assert.Equal(t, audit.Filter{Action: "payroll.generate"}, svc.filter)
	assert.Equal(t, 10, svc.limit)
	assert.Equal(t, 20, svc.offset)

	var page struct {
		Items []audit.Event `json:"items"`
		Total int           `json:"total"`
	}
	handlertest.Data(t, rec, &page)
	assert.Equal(t, 7, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "evt-1", page.Items[0].ID)
}

func TestEntityHistory(t *testing.T) {
	svc := &fakeService{}
	rec := handlertest.Do(t, router(svc), http.MethodGet, "/audit/payroll/2025-03", nil, auth.RoleSuperAdmin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, audit.Filter{EntityType: "payroll", EntityID: "2025-03"}, svc.filter)
}

func TestAuditRequiresPermission(t *testing.T) {
	rec := handlertest.Do(t, router(&fakeService{}), http.MethodGet, "/audit/events", nil, auth.RoleSupervisor)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestExportEvents(t *testing.T) {
	svc := &fakeService{}
	rec := handlertest.Do(t, router(svc), http.MethodGet, "/audit/events/export?entityType=payroll", nil, auth.RoleAdmin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, 0, svc.limit)

	rows, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "id", rows[0][0])
	assert.Equal(t, []string{"evt-1", "user-1", "payroll.generate", "payroll", "2025-03", "", "", "2025-03-31T10:00:00Z"}, rows[1])
}

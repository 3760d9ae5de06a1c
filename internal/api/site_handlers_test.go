package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bokeeb.kz/site-backend/internal/core"
	"bokeeb.kz/site-backend/internal/store"
)

func newSiteTestHandler(t *testing.T) (*SiteHandler, *store.SQLiteStore) {
	dbStore, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { dbStore.Close() })
	return NewSiteHandler(core.NewSiteService(dbStore), dbStore), dbStore
}

// serveWithParam routes the request through a throwaway chi router so
// URL parameters resolve the same way they do in production.
func serveWithParam(method, pattern, path, body string, handler http.HandlerFunc) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, handler)
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCreateLeadHandler(t *testing.T) {
	h, dbStore := newSiteTestHandler(t)

	body := `{"name":"Айдар","phone":"+7 701 000 00 00","source":"catalog"}`
	req := httptest.NewRequest(http.MethodPost, "/api/leads", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.CreateLeadHandler(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	leads, err := dbStore.GetLeads("")
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "Айдар", leads[0].Name)
	assert.Equal(t, store.LeadNew, leads[0].Status)
}

func TestCreateLeadHandlerRequiresNameAndPhone(t *testing.T) {
	h, _ := newSiteTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/leads", strings.NewReader(`{"name":"  "}`))
	rec := httptest.NewRecorder()
	h.CreateLeadHandler(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHouseHandlersHideDrafts(t *testing.T) {
	h, dbStore := newSiteTestHandler(t)

	draft := sampleTestHouse("draft")
	draft.IsPublished = false
	require.NoError(t, dbStore.CreateHouse(draft))
	require.NoError(t, dbStore.CreateHouse(sampleTestHouse("visible")))

	req := httptest.NewRequest(http.MethodGet, "/api/houses", nil)
	rec := httptest.NewRecorder()
	h.ListHousesHandler(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var houses []store.House
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &houses))
	require.Len(t, houses, 1)
	assert.Equal(t, "visible", houses[0].Slug)

	rec = serveWithParam(http.MethodGet, "/api/houses/{slug}", "/api/houses/draft", "", h.GetHouseHandler)
	assert.Equal(t, http.StatusNotFound, rec.Code, "drafts are invisible to the public endpoint")

	rec = serveWithParam(http.MethodGet, "/api/houses/{slug}", "/api/houses/visible", "", h.GetHouseHandler)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminCreateHouseValidation(t *testing.T) {
	h, _ := newSiteTestHandler(t)

	body := `{"slug":"bad","name":"Дом","style":"brutalist","area":100,"price_from":1000000}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/houses", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.AdminCreateHouseHandler(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unknown style is rejected")
}

func TestAdminDuplicateSlugRejected(t *testing.T) {
	h, dbStore := newSiteTestHandler(t)
	require.NoError(t, dbStore.CreateHouse(sampleTestHouse("taken")))

	body := `{"slug":"taken","name":"Дом","style":"modern","area":100,"price_from":1000000}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/houses", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.AdminCreateHouseHandler(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminUpdateLeadStatus(t *testing.T) {
	h, dbStore := newSiteTestHandler(t)

	lead := &store.Lead{Name: "Мария", Phone: "+7 702 000 00 00"}
	require.NoError(t, dbStore.CreateLead(lead))

	rec := serveWithParam(http.MethodPatch, "/api/admin/leads/{leadID}", "/api/admin/leads/"+lead.ID,
		`{"status":"in_progress"}`, h.AdminUpdateLeadStatusHandler)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serveWithParam(http.MethodPatch, "/api/admin/leads/{leadID}", "/api/admin/leads/"+lead.ID,
		`{"status":"archived"}`, h.AdminUpdateLeadStatusHandler)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unknown status is rejected")
}

func TestAdminExportLeadsCSV(t *testing.T) {
	h, dbStore := newSiteTestHandler(t)

	source := "contact_form"
	require.NoError(t, dbStore.CreateLead(&store.Lead{Name: "Айдар", Phone: "+7 701 000 00 00", Source: &source}))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/leads/export", nil)
	rec := httptest.NewRecorder()
	h.AdminExportLeadsHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,name,phone,comment,house_id,source,status,created_at", lines[0])
	assert.Contains(t, lines[1], "Айдар")
	assert.Contains(t, lines[1], "contact_form")
	assert.Contains(t, lines[1], "new")
}

func TestSettingHandlers(t *testing.T) {
	h, _ := newSiteTestHandler(t)

	rec := serveWithParam(http.MethodPut, "/api/admin/settings/{key}", "/api/admin/settings/contacts",
		`{"value":{"phone":"+7 727 000 00 00"}}`, h.PutSettingHandler)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serveWithParam(http.MethodGet, "/api/settings/{key}", "/api/settings/contacts", "", h.GetSettingHandler)
	require.Equal(t, http.StatusOK, rec.Code)

	var setting store.Setting
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &setting))
	assert.JSONEq(t, `{"phone":"+7 727 000 00 00"}`, setting.Value)

	rec = serveWithParam(http.MethodGet, "/api/settings/{key}", "/api/settings/absent", "", h.GetSettingHandler)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func sampleTestHouse(slug string) *store.House {
	return &store.House{
		Slug:        slug,
		Name:        "Дом " + slug,
		Area:        120,
		Floors:      1,
		Style:       store.StyleModern,
		PriceFrom:   25000000,
		IsPublished: true,
	}
}

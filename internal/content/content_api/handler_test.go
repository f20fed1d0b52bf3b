package content_api

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/engdahman/conference-app/internal/content"
	contentdb "github.com/engdahman/conference-app/internal/content/db"
	"github.com/engdahman/conference-app/internal/logger"
	"github.com/engdahman/conference-app/internal/models"
)

func setupRouter(t *testing.T) *chi.Mux {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { bunDB.Close() })

	ctx := context.Background()
	for _, model := range []interface{}{
		(*models.Settings)(nil),
		(*models.Speaker)(nil),
		(*models.Sponsor)(nil),
		(*models.CommitteeMember)(nil),
		(*models.AgendaItem)(nil),
	} {
		_, err = bunDB.NewCreateTable().Model(model).IfNotExists().Exec(ctx)
		require.NoError(t, err)
	}

	svc := content.NewService(contentdb.NewStore(bunDB), nil, nil)
	h := NewHandler(svc, logger.NewLogger())

	r := chi.NewRouter()
	r.Get("/api/settings", h.HandleGetSettings)
	r.Put("/api/admin/settings", h.HandleSaveSettings)
	r.Get("/api/speakers", h.HandleListSpeakers)
	r.Post("/api/admin/speakers", h.HandleCreateSpeaker)
	r.Put("/api/admin/speakers/{id}", h.HandleUpdateSpeaker)
	r.Delete("/api/admin/speakers/{id}", h.HandleDeleteSpeaker)
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestSettingsSaveThenGet(t *testing.T) {
	r := setupRouter(t)

	rec := do(t, r, http.MethodPut, "/api/admin/settings", `{"siteName":"GopherConf","orgLogo":"uploads/logo.png"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var settings map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&settings))
	assert.Equal(t, "GopherConf", settings["siteName"])
	assert.Equal(t, "/uploads/logo.png", settings["orgLogo"])
}

func TestSpeakersEmptyListIsArray(t *testing.T) {
	r := setupRouter(t)
	rec := do(t, r, http.MethodGet, "/api/speakers", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestSpeakerLifecycle(t *testing.T) {
	r := setupRouter(t)

	rec := do(t, r, http.MethodPost, "/api/admin/speakers", `{"name":"Dr. Lina","title":"Professor"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	id := created["id"].(string)
	require.NotEmpty(t, id)

	rec = do(t, r, http.MethodPut, "/api/admin/speakers/"+id, `{"name":"Dr. Lina","talk":"Consensus"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/speakers", "")
	var speakers []map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&speakers))
	require.Len(t, speakers, 1)
	assert.Equal(t, "Consensus", speakers[0]["talk"])

	rec = do(t, r, http.MethodDelete, "/api/admin/speakers/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, r, http.MethodDelete, "/api/admin/speakers/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateSpeakerRequiresName(t *testing.T) {
	r := setupRouter(t)
	rec := do(t, r, http.MethodPost, "/api/admin/speakers", `{"title":"Professor"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

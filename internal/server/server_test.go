package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"anoa.com/wanderhub/internal/config"
	"anoa.com/wanderhub/pkg/broker"
	"anoa.com/wanderhub/pkg/database/dbtest"
	"anoa.com/wanderhub/pkg/logger"
	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	meili := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_, _ = io.WriteString(w, `{"taskUid":1,"indexUid":"places","status":"enqueued","type":"settingsUpdate","enqueuedAt":"2025-01-01T00:00:00Z"}`)
	}))
	t.Cleanup(meili.Close)

	db, _ := dbtest.New(t)

	srv, err := NewServer(Deps{
		Config: &config.Config{
			AppEnv:            "test",
			Port:              "0",
			AllowedOrigins:    []string{"http://localhost:3000"},
			JWTSecret:         "secret",
			HashIDSalt:        "salt",
			HashIDMinLength:   8,
			AdFlushSchedule:   "@every 1m",
			AdExpirySchedule:  "@daily",
			EventFeedSchedule: "0 6 * * *",
		},
		DB:        db,
		Meili:     meilisearch.New(meili.URL),
		Publisher: broker.Nop(),
		Log:       logger.Nop(),
	})
	require.NoError(t, err)
	return srv.Handler()
}

func TestServer_Routes(t *testing.T) {
	h := newTestServer(t)
	id := uuid.NewString()

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"health", http.MethodGet, "/healthz", http.StatusOK},
		{"profile needs auth", http.MethodGet, "/api/profile", http.StatusUnauthorized},
		{"admin needs auth", http.MethodGet, "/api/admin/stats", http.StatusUnauthorized},
		{"message socket needs auth", http.MethodGet, "/api/messages/" + id + "/ws", http.StatusUnauthorized},
		{"unknown like target", http.MethodGet, "/api/likes/thread/" + id, http.StatusNotFound},
		{"bad place id", http.MethodGet, "/api/places/not-a-uuid", http.StatusBadRequest},
		{"unknown ad hashid", http.MethodPost, "/api/ads/zz/click", http.StatusNotFound},
		{"no such route", http.MethodGet, "/api/threads", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softdesk-lab/softdesk/internal/util"
)

func TestMetricsExposition(t *testing.T) {
	store := newFakeStore()
	alice := store.seedUser("alice")
	project := store.seedProject(alice.ID)
	store.seedIssue(project.ID, alice.ID)
	store.seedIssue(project.ID, alice.ID)

	r := testBackend(store, util.JWTMessage{})
	req := httptest.NewRequest(http.MethodGet, "/api/metrics", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `issues_total{status="TO_DO"} 2`)
	assert.Contains(t, body, `issues_total{status="IN_PROGRESS"} 0`)
	assert.Contains(t, body, "authz_denied_total")
}

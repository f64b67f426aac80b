package healthz

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/sirupsen/logrus"

	"github.com/hiveio/hive-indexer/internal/adapter"
	"github.com/hiveio/hive-indexer/internal/cachemaint"
	"github.com/hiveio/hive-indexer/internal/projector"
	"github.com/hiveio/hive-indexer/internal/store"
	"github.com/hiveio/hive-indexer/internal/syncer"
)

func newTestSyncer(t *testing.T) *syncer.Syncer {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("new mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	mock.ExpectQuery("SELECT COALESCE\\(MAX\\(num\\), 0\\) FROM hive_blocks").
		WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).AddRow(uint32(42)))

	s := store.New(mock, nil)
	fa := adapter.NewFakeAdapter()
	fa.SetHead(50)
	return syncer.New(s, fa, &projector.Projector{}, &cachemaint.Maintainer{}, syncer.DefaultConfig(), logrus.New())
}

func TestHealthzReturnsOK(t *testing.T) {
	r := NewRouter(newTestSyncer(t))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestStatusReturnsJSON(t *testing.T) {
	r := NewRouter(newTestSyncer(t))

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected json content type, got %s", ct)
	}
}

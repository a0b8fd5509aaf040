package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palisade-db/palisade/internal/cache"
	"github.com/palisade-db/palisade/internal/container"
	"github.com/palisade-db/palisade/internal/dispatch"
	"github.com/palisade-db/palisade/internal/logging"
	"github.com/palisade-db/palisade/internal/serializer"
	"github.com/palisade-db/palisade/internal/service"
	"github.com/palisade-db/palisade/internal/storageengine/memory"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	idx := container.NewIndex(4)
	eng := memory.New()
	log := logging.NewNop()
	ser := serializer.New(0)
	t.Cleanup(ser.Stop)

	cs := service.NewContainerService(idx, ser, eng, log, 64, 10)
	require.NoError(t, cs.Reconcile(context.Background()))

	c := cache.New(4, 1<<20, 1<<16, idx)
	wd := dispatch.NewWriteDispatcher(eng, c, log, 0)
	t.Cleanup(wd.Stop)
	rd := dispatch.NewReadDispatcher(eng, c, log, 2, 0)
	t.Cleanup(rd.Stop)

	os := service.NewObjectService(idx, c, rd, wd, 64, 64, 1<<16)
	return NewHandler(cs, os)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHTTPContainerAndObjectLifecycle(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/containers", containerRequest{ObjectContainerName: "c"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/objects", objectRequest{ContainerName: "c", ObjectID: "k", ObjectData: "v"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/objects", objectRequest{ContainerName: "c", ObjectID: "k"})
	assert.Equal(t, http.StatusOK, rec.Code)
	var resp objectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "v", resp.ObjectData)
}

func TestHTTPCreateDuplicateContainerConflicts(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/containers", containerRequest{ObjectContainerName: "c"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/containers", containerRequest{ObjectContainerName: "c"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHTTPGetMissingContainerNotFound(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodGet, "/objects", objectRequest{ContainerName: "ghost", ObjectID: "k"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPingAndHealthz(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

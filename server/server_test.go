package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sketchfs/sketchfs"
	"github.com/sketchfs/sketchfs/vfs"
)

func newTestServer(t *testing.T) (*Server, *sketchfs.Session) {
	t.Helper()
	sess := sketchfs.New(nil)
	return New(sess), sess
}

func do(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestServer_FileCRUD(t *testing.T) {
	t.Parallel()

	srv, sess := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/files/src/index.ts", "export {}")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, sess.Exists("/src/index.ts"))

	rec = do(t, srv, http.MethodGet, "/files/src/index.ts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var file fileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &file))
	assert.Equal(t, "/src/index.ts", file.Path)
	assert.Equal(t, "export {}", file.Content)

	rec = do(t, srv, http.MethodPut, "/files/src/index.ts", "export const x = 1;")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodDelete, "/files/src/index.ts", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, sess.Exists("/src/index.ts"))
}

func TestServer_ErrorStatusMapping(t *testing.T) {
	t.Parallel()

	srv, sess := newTestServer(t)
	require.NoError(t, sess.CreateFile("/a.txt", "x"))
	require.NoError(t, sess.CreateDirectory("/dir"))

	tests := []struct {
		name   string
		method string
		target string
		body   string
		status int
		kind   string
	}{
		{"read missing", http.MethodGet, "/files/missing.txt", "", http.StatusNotFound, "not found"},
		{"create over existing", http.MethodPost, "/files/a.txt", "y", http.StatusConflict, "already exists"},
		{"read directory", http.MethodGet, "/files/dir", "", http.StatusConflict, "type_mismatch"},
		{"delete root", http.MethodDelete, "/files/", "", http.StatusBadRequest, "invalid operation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.status, rec.Code)

			var errBody errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errBody))
			assert.Equal(t, tt.kind, errBody.Kind)
			assert.NotEmpty(t, errBody.Error)
		})
	}
}

func TestServer_Rename(t *testing.T) {
	t.Parallel()

	srv, sess := newTestServer(t)
	require.NoError(t, sess.CreateFile("/old.txt", "content"))

	rec := do(t, srv, http.MethodPost, "/rename", `{"from":"/old.txt","to":"/new.txt"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, sess.Exists("/old.txt"))

	content, err := sess.ReadFile("/new.txt")
	require.NoError(t, err)
	assert.Equal(t, "content", content)
}

func TestServer_List(t *testing.T) {
	t.Parallel()

	srv, sess := newTestServer(t)
	require.NoError(t, sess.CreateFile("/dir/b.txt", ""))
	require.NoError(t, sess.CreateFile("/dir/a.txt", ""))

	rec := do(t, srv, http.MethodGet, "/list/dir", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var list listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, []string{"a.txt", "b.txt"}, list.Children)
}

func TestServer_Tree(t *testing.T) {
	t.Parallel()

	srv, sess := newTestServer(t)
	require.NoError(t, sess.CreateFile("/src/App.jsx", "export default null"))
	require.NoError(t, sess.CreateFile("/src/Button.jsx", "export default null"))
	require.NoError(t, sess.CreateFile("/readme.md", "# hi"))

	rec := do(t, srv, http.MethodGet, "/tree", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var root treeEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &root))
	assert.Equal(t, "/", root.Name)
	assert.Equal(t, string(vfs.KindDirectory), root.Kind)
	require.Len(t, root.Children, 2, "root should hold readme.md and src in sorted order")

	assert.Equal(t, "readme.md", root.Children[0].Name)
	assert.Equal(t, string(vfs.KindFile), root.Children[0].Kind)

	src := root.Children[1]
	assert.Equal(t, "/src", src.Path)
	assert.Equal(t, string(vfs.KindDirectory), src.Kind)
	require.Len(t, src.Children, 2)
	assert.Equal(t, "/src/App.jsx", src.Children[0].Path)
	assert.Equal(t, "/src/Button.jsx", src.Children[1].Path)
}

func TestServer_SnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	srv, sess := newTestServer(t)
	require.NoError(t, sess.SeedStarter())

	rec := do(t, srv, http.MethodGet, "/snapshot", "")
	require.Equal(t, http.StatusOK, rec.Code)
	exported := rec.Body.String()

	fresh, freshSess := newTestServer(t)
	rec = do(t, fresh, http.MethodPut, "/snapshot", exported)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, sess.Snapshot(), freshSess.Snapshot())
}

func TestServer_PutSnapshot_Invalid(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	rec := do(t, srv, http.MethodPut, "/snapshot", `{"/orphan/a.txt":{"kind":"file"}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestServer_Preview(t *testing.T) {
	t.Parallel()

	srv, sess := newTestServer(t)
	require.NoError(t, sess.SeedStarter())

	rec := do(t, srv, http.MethodGet, "/preview", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html"))
	assert.Contains(t, rec.Body.String(), "<!DOCTYPE html>")
}

func TestServer_Preview_TransformError(t *testing.T) {
	t.Parallel()

	srv, sess := newTestServer(t)
	require.NoError(t, sess.CreateFile("/App.jsx", "export default () => { return <div; }"))

	rec := do(t, srv, http.MethodGet, "/preview", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var errBody errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errBody))
	assert.Equal(t, "transform_error", errBody.Kind)
	assert.Contains(t, errBody.Error, "/App.jsx")
}

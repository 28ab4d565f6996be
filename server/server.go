// Package server exposes a Session over HTTP: the file mutation command set,
// snapshot import/export, and the assembled preview document.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	gopath "path"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sketchfs/sketchfs"
	"github.com/sketchfs/sketchfs/internal/util"
	"github.com/sketchfs/sketchfs/transform"
	"github.com/sketchfs/sketchfs/vfs"
)

// Server routes HTTP requests onto one Session. Handlers run requests
// sequentially against the session's single-writer tree; the router itself
// adds no locking, matching the session's concurrency contract.
type Server struct {
	sess   *sketchfs.Session
	router chi.Router
}

// New creates a Server over the given session.
func New(sess *sketchfs.Session) *Server {
	s := &Server{sess: sess, router: chi.NewRouter()}
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/files/*", s.handleReadFile)
	s.router.Post("/files/*", s.handleCreateFile)
	s.router.Put("/files/*", s.handleWriteFile)
	s.router.Delete("/files/*", s.handleDelete)
	s.router.Post("/dirs/*", s.handleCreateDir)
	s.router.Get("/list/*", s.handleList)
	s.router.Get("/tree", s.handleTree)
	s.router.Post("/rename", s.handleRename)
	s.router.Get("/snapshot", s.handleGetSnapshot)
	s.router.Put("/snapshot", s.handlePutSnapshot)
	s.router.Get("/preview", s.handlePreview)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe blocks serving the session at addr.
func (s *Server) ListenAndServe(addr string) error {
	logger := util.GetLogger("server")
	logger.Info().Str("addr", addr).Msg("Serving session")
	return http.ListenAndServe(addr, s)
}

// wildcardPath recovers the tree path from a chi wildcard match.
func wildcardPath(r *http.Request) string {
	return vfs.Normalize("/" + chi.URLParam(r, "*"))
}

func (s *Server) handleReadFile(w http.ResponseWriter, r *http.Request) {
	path := wildcardPath(r)
	content, err := s.sess.ReadFile(path)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fileResponse{Path: path, Content: content})
}

func (s *Server) handleCreateFile(w http.ResponseWriter, r *http.Request) {
	path := wildcardPath(r)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.sess.CreateFile(path, string(body)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, okResponse{Path: path})
}

func (s *Server) handleWriteFile(w http.ResponseWriter, r *http.Request) {
	path := wildcardPath(r)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.sess.WriteFile(path, string(body)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{Path: path})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	path := wildcardPath(r)
	if err := s.sess.DeleteNode(path); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{Path: path})
}

func (s *Server) handleCreateDir(w http.ResponseWriter, r *http.Request) {
	path := wildcardPath(r)
	if err := s.sess.CreateDirectory(path); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, okResponse{Path: path})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	path := wildcardPath(r)
	children, err := s.sess.ListDirectory(path)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Path: path, Children: children})
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	tree, err := s.treeAt("/")
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

// treeAt builds the nested listing rooted at path. Children are emitted in
// the sorted order ListDirectory yields.
func (s *Server) treeAt(p string) (treeEntry, error) {
	name := gopath.Base(p)
	if p == "/" {
		name = "/"
	}
	if !s.sess.FS().IsDir(p) {
		return treeEntry{Name: name, Path: p, Kind: string(vfs.KindFile)}, nil
	}
	entry := treeEntry{Name: name, Path: p, Kind: string(vfs.KindDirectory)}
	children, err := s.sess.ListDirectory(p)
	if err != nil {
		return treeEntry{}, err
	}
	for _, child := range children {
		sub, err := s.treeAt(vfs.Normalize(p + "/" + child))
		if err != nil {
			return treeEntry{}, err
		}
		entry.Children = append(entry.Children, sub)
	}
	return entry, nil
}

func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: "bad_request"})
		return
	}
	if err := s.sess.RenameNode(req.From, req.To); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{Path: vfs.Normalize(req.To)})
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sess.Snapshot())
}

func (s *Server) handlePutSnapshot(w http.ResponseWriter, r *http.Request) {
	var snap vfs.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: "bad_request"})
		return
	}
	if err := s.sess.LoadSnapshot(snap); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Kind: "invalid_snapshot"})
		return
	}
	writeJSON(w, http.StatusOK, okResponse{Path: "/"})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	build, err := s.sess.BuildPreview(r.URL.Query().Get("entry"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, build.Document)
}

// writeError maps the error taxonomy onto status codes and a JSON body.
func writeError(w http.ResponseWriter, err error) {
	status, kind := http.StatusInternalServerError, "internal"

	var pathErr *vfs.PathError
	var tmErr *vfs.TypeMismatchError
	var trErr *transform.Error
	var resErr *vfs.ResolutionError
	switch {
	case errors.As(err, &pathErr):
		kind = pathErr.Kind.String()
		switch pathErr.Kind {
		case vfs.KindNotFound:
			status = http.StatusNotFound
		case vfs.KindAlreadyExists:
			status = http.StatusConflict
		case vfs.KindInvalidOperation:
			status = http.StatusBadRequest
		}
	case errors.As(err, &tmErr):
		status, kind = http.StatusConflict, "type_mismatch"
	case errors.As(err, &trErr):
		status, kind = http.StatusUnprocessableEntity, "transform_error"
	case errors.As(err, &resErr):
		status, kind = http.StatusUnprocessableEntity, "resolution_error"
	}

	writeJSON(w, status, errorResponse{Error: err.Error(), Kind: kind})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

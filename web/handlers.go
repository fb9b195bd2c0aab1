package web

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/mogaika/fractal_browser/export/gltfexport"
	"github.com/mogaika/fractal_browser/export/snapshot"
	"github.com/mogaika/fractal_browser/scene"
	"github.com/mogaika/fractal_browser/utils"
	"github.com/mogaika/fractal_browser/webutils"
)

const maxSnapshotSize = 4096

func writeSceneError(w http.ResponseWriter, err error) {
	if errors.Cause(err) == scene.ErrNotFound {
		webutils.WriteErrorCode(w, http.StatusNotFound, err)
	} else {
		webutils.WriteError(w, err)
	}
}

func parseID(r *http.Request, key string) (uuid.UUID, error) {
	param := mux.Vars(r)[key]
	id, err := uuid.Parse(param)
	if err != nil {
		return uuid.Nil, errors.Wrapf(err, "%s '%s' is not an id", key, param)
	}
	return id, nil
}

func (s *Server) treeParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := parseID(r, "tree")
	if err != nil {
		webutils.WriteErrorCode(w, http.StatusBadRequest, err)
		return id, false
	}
	return id, true
}

func (s *Server) nodeParams(w http.ResponseWriter, r *http.Request) (tree, node uuid.UUID, ok bool) {
	if tree, ok = s.treeParam(w, r); !ok {
		return
	}
	node, err := parseID(r, "node")
	if err != nil {
		webutils.WriteErrorCode(w, http.StatusBadRequest, err)
		return tree, node, false
	}
	return tree, node, true
}

func (s *Server) HandlerAjaxScene(w http.ResponseWriter, r *http.Request) {
	webutils.WriteJson(w, s.Scene.Trees())
}

func (s *Server) HandlerSpawnTree(w http.ResponseWriter, r *http.Request) {
	body, err := webutils.ReadBody(r)
	if err != nil {
		webutils.WriteErrorCode(w, http.StatusBadRequest, err)
		return
	}
	cfg := s.Config
	if len(bytes.TrimSpace(body)) != 0 {
		if err := cfg.Merge(body); err != nil {
			webutils.WriteErrorCode(w, http.StatusBadRequest, err)
			return
		}
	}

	tree, err := s.Scene.Spawn(cfg)
	if err != nil {
		webutils.WriteErrorCode(w, http.StatusBadRequest, err)
		return
	}
	if s.Hub != nil {
		s.Hub.Info("Spawned tree %q, max depth %d", tree.Name, cfg.MaxDepth)
	}

	var info scene.TreeInfo
	if err := s.Scene.View(tree.ID, func(t *scene.Tree) error {
		info = t.Info()
		return nil
	}); err != nil {
		writeSceneError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	webutils.WriteJson(w, info)
}

func (s *Server) HandlerAjaxTree(w http.ResponseWriter, r *http.Request) {
	id, ok := s.treeParam(w, r)
	if !ok {
		return
	}
	if snap, err := s.Scene.Snapshot(id); err != nil {
		writeSceneError(w, err)
	} else {
		webutils.WriteJson(w, snap)
	}
}

func (s *Server) HandlerAjaxTreeStats(w http.ResponseWriter, r *http.Request) {
	id, ok := s.treeParam(w, r)
	if !ok {
		return
	}
	if st, err := s.Scene.Stats(id); err != nil {
		writeSceneError(w, err)
	} else {
		webutils.WriteJson(w, st)
	}
}

func (s *Server) HandlerAjaxNode(w http.ResponseWriter, r *http.Request) {
	tree, node, ok := s.nodeParams(w, r)
	if !ok {
		return
	}
	if info, err := s.Scene.NodeSnapshot(tree, node); err != nil {
		writeSceneError(w, err)
	} else {
		webutils.WriteJson(w, info)
	}
}

func (s *Server) HandlerActionRemoveNode(w http.ResponseWriter, r *http.Request) {
	tree, node, ok := s.nodeParams(w, r)
	if !ok {
		return
	}
	removed, err := s.Scene.Remove(tree, node)
	if err != nil {
		writeSceneError(w, err)
		return
	}
	webutils.WriteJson(w, map[string]int{"removed": removed})
}

func (s *Server) HandlerActionRemoveTree(w http.ResponseWriter, r *http.Request) {
	tree, ok := s.treeParam(w, r)
	if !ok {
		return
	}
	removed, err := s.Scene.RemoveTree(tree)
	if err != nil {
		writeSceneError(w, err)
		return
	}
	if s.Hub != nil {
		s.Hub.Info("Removed tree %v", tree)
	}
	webutils.WriteJson(w, map[string]int{"removed": removed})
}

func (s *Server) HandlerActionPause(w http.ResponseWriter, r *http.Request) {
	if s.Scheduler == nil {
		webutils.WriteErrorCode(w, http.StatusServiceUnavailable, errors.New("Scheduler is not running"))
		return
	}
	s.Scheduler.Pause()
	webutils.WriteJson(w, map[string]bool{"paused": s.Scheduler.IsPaused()})
}

func (s *Server) HandlerActionResume(w http.ResponseWriter, r *http.Request) {
	if s.Scheduler == nil {
		webutils.WriteErrorCode(w, http.StatusServiceUnavailable, errors.New("Scheduler is not running"))
		return
	}
	s.Scheduler.Resume()
	webutils.WriteJson(w, map[string]bool{"paused": s.Scheduler.IsPaused()})
}

func (s *Server) HandlerDumpNode(w http.ResponseWriter, r *http.Request) {
	tree, node, ok := s.nodeParams(w, r)
	if !ok {
		return
	}
	var dump string
	if err := s.Scene.View(tree, func(t *scene.Tree) error {
		f, err := t.Node(node)
		if err != nil {
			return err
		}
		dump = utils.SDump(t.NodeInfo(f), f)
		return nil
	}); err != nil {
		writeSceneError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	webutils.WriteResult(w, []byte(dump))
}

func (s *Server) HandlerExportGltf(w http.ResponseWriter, r *http.Request) {
	id, ok := s.treeParam(w, r)
	if !ok {
		return
	}
	doc := gltfexport.NewDocument()
	var name string
	if err := s.Scene.View(id, func(t *scene.Tree) error {
		name = t.Name
		_, err := gltfexport.ExportTree(doc, t.Name, t.Root)
		return err
	}); err != nil {
		writeSceneError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := gltfexport.ExportBinary(&buf, doc); err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteFile(w, &buf, name+".glb", "model/gltf-binary")
}

func sizeParam(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 || n > maxSnapshotSize {
		return 0, errors.Errorf("%s '%s' must be an integer in [1, %d]", key, v, maxSnapshotSize)
	}
	return n, nil
}

func (s *Server) HandlerExportPng(w http.ResponseWriter, r *http.Request) {
	id, ok := s.treeParam(w, r)
	if !ok {
		return
	}
	opt := s.Snapshot
	var err error
	if opt.Width, err = sizeParam(r, "w", opt.Width); err != nil {
		webutils.WriteErrorCode(w, http.StatusBadRequest, err)
		return
	}
	if opt.Height, err = sizeParam(r, "h", opt.Height); err != nil {
		webutils.WriteErrorCode(w, http.StatusBadRequest, err)
		return
	}

	// only projection runs under the scene lock, rasterizing does not stall Step
	var frame *snapshot.Frame
	var name string
	if err := s.Scene.View(id, func(t *scene.Tree) error {
		name = t.Name
		f, err := snapshot.Prepare(t.Root, opt)
		frame = f
		return err
	}); err != nil {
		writeSceneError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := frame.EncodePNG(&buf); err != nil {
		webutils.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", "inline; filename=\""+name+".png\"")
	webutils.WriteResult(w, buf.Bytes())
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sanonone/kektorgraph/pkg/engine"
	"github.com/sanonone/kektorgraph/pkg/graph"
)

// maxQueryBody caps the size of a posted query database.
const maxQueryBody = 64 << 20

// registerHTTPHandlers sets up the REST routes.
func (s *Server) registerHTTPHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/index", s.handleIndexStats)
	mux.HandleFunc("POST /v1/index/rebuild", s.handleIndexRebuild)
	mux.HandleFunc("POST /v1/candidates", s.handleCandidates)
	mux.HandleFunc("GET /v1/tasks/{id}", s.handleGetTask)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeHTTPResponse(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Ready:  s.index.Load() != nil,
	})
}

func (s *Server) handleIndexStats(w http.ResponseWriter, r *http.Request) {
	idx := s.index.Load()
	if idx == nil {
		s.writeHTTPError(w, http.StatusServiceUnavailable, "index not loaded")
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, idx.Stats())
}

// handleCandidates reads a graph database from the body and returns the
// candidate list of every graph in it.
func (s *Server) handleCandidates(w http.ResponseWriter, r *http.Request) {
	idx := s.index.Load()
	if idx == nil {
		s.writeHTTPError(w, http.StatusServiceUnavailable, "index not loaded")
		return
	}

	queries, err := graph.Parse(http.MaxBytesReader(w, r.Body, maxQueryBody))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writeHTTPError(w, http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		s.writeHTTPError(w, http.StatusBadRequest, err.Error())
		return
	}

	results, err := idx.Candidates(r.Context(), queries)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		s.writeHTTPError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, CandidatesResponse{Results: results})
}

// handleIndexRebuild starts an asynchronous rebuild from the configured
// database file and returns the task tracking it.
func (s *Server) handleIndexRebuild(w http.ResponseWriter, r *http.Request) {
	if s.paths.DatabasePath == "" {
		s.writeHTTPError(w, http.StatusConflict, engine.ErrNoIndexSource.Error())
		return
	}
	if !s.rebuilding.CompareAndSwap(false, true) {
		s.writeHTTPError(w, http.StatusConflict, "a rebuild is already running")
		return
	}

	task := s.taskManager.NewTask()
	go s.rebuild(task)

	s.writeHTTPResponse(w, http.StatusAccepted, RebuildResponse{TaskID: task.ID})
}

func (s *Server) rebuild(task *Task) {
	defer s.rebuilding.Store(false)

	task.SetStatus(TaskStatusRunning)
	task.SetProgress("building index from " + s.paths.DatabasePath)

	idx, err := engine.NewIndexFromFile(s.ctx, s.paths.DatabasePath, s.opts)
	if err != nil {
		slog.Error("Index rebuild failed", "task", task.ID, "error", err)
		task.SetError(err)
		return
	}

	if s.paths.DictionaryPath != "" && s.paths.MatrixPath != "" {
		task.SetProgress("saving index")
		if err := idx.Save(s.paths.DictionaryPath, s.paths.MatrixPath); err != nil {
			slog.Error("Index rebuild could not be saved", "task", task.ID, "error", err)
			task.SetError(fmt.Errorf("index built but not saved: %w", err))
			return
		}
	}

	s.index.Store(idx)
	stats := idx.Stats()
	task.SetProgress(fmt.Sprintf("%d graphs, %d features", stats.Graphs, stats.Features))
	task.SetStatus(TaskStatusCompleted)
	slog.Info("Index rebuilt", "task", task.ID, "graphs", stats.Graphs, "features", stats.Features)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, found := s.taskManager.GetTask(r.PathValue("id"))
	if !found {
		s.writeHTTPError(w, http.StatusNotFound, "task not found")
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, task.View())
}

func (s *Server) writeHTTPResponse(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeHTTPError(w http.ResponseWriter, statusCode int, message string) {
	s.writeHTTPResponse(w, statusCode, map[string]string{"error": message})
}

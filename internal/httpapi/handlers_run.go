package httpapi

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"llmsuite/internal/export"
	"llmsuite/internal/run"
	"llmsuite/pkg/types"
)

// handleRun executes the comparison loop on the handler goroutine and streams
// NDJSON progress events until the run ends. Validation failures arrive
// before the first event, so they still produce a JSON error response.
func (s Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req types.RunRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	lvl := requestLogLevel(r)
	start := time.Now()
	if lvl >= LevelInfo {
		if zlog != nil {
			z := zlog.Info().Int("models", len(req.Models)).Bool("streaming", req.Streaming)
			if rid := middleware.GetReqID(r.Context()); rid != "" {
				z = z.Str("request_id", rid)
			}
			z.Msg("run start")
		} else {
			log.Printf("run start models=%d", len(req.Models))
		}
	}

	var flush func()
	if f, ok := w.(http.Flusher); ok {
		flush = f.Flush
	}
	// Optional logging of NDJSON events
	writer := io.Writer(w)
	if lvl >= LevelDebug {
		writer = io.MultiWriter(w, &loggingLineWriter{})
	}
	enc := json.NewEncoder(writer)
	started := false
	sink := func(ev run.Event) error {
		if !started {
			w.Header().Set("Content-Type", "application/x-ndjson")
			started = true
		}
		if err := enc.Encode(ev); err != nil {
			return err
		}
		if flush != nil {
			flush()
		}
		return nil
	}

	// Join server base context with request context so shutdown cancels work too.
	joinedCtx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	err := s.Runner.Run(joinedCtx, req, sink)
	status := http.StatusOK
	if err != nil {
		// If context was canceled (client disconnect), just return.
		if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
			return
		}
		switch {
		case run.IsNoModels(err), run.IsInvalidTemperature(err):
			status = http.StatusBadRequest
		case run.IsRunInProgress(err):
			status = http.StatusConflict
			IncrementBusy("run")
		default:
			status = http.StatusInternalServerError
			if he, ok := err.(HTTPError); ok {
				status = he.StatusCode()
			}
		}
		if !started {
			writeJSONError(w, status, err.Error())
		}
	}
	if lvl >= LevelInfo {
		if zlog != nil {
			z := zlog.Info().Int("status", status).Dur("dur", time.Since(start))
			if rid := middleware.GetReqID(r.Context()); rid != "" {
				z = z.Str("request_id", rid)
			}
			z.Err(err).Msg("run end")
		} else {
			log.Printf("run end status=%d dur=%s err=%v", status, time.Since(start), err)
		}
	}
}

func (s Server) handleRunSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Runner.Snapshot())
}

func (s Server) handleCancelRun(w http.ResponseWriter, r *http.Request) {
	active := s.Runner.Cancel()
	writeJSON(w, http.StatusOK, map[string]any{"cancelled": active})
}

func (s Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req types.EvaluateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	joinedCtx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	result, err := s.Runner.Evaluate(joinedCtx, req.JudgeModel, req.EvaluationPrompt, req.Temperature)
	if err != nil {
		switch {
		case run.IsNoJudgeModel(err):
			writeJSONError(w, http.StatusBadRequest, err.Error())
		case run.IsRunInProgress(err):
			IncrementBusy("evaluate")
			writeJSONError(w, http.StatusConflict, err.Error())
		case run.IsNoResults(err):
			writeJSONError(w, http.StatusNotFound, err.Error())
		default:
			writeJSONError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func stripThinkRequested(r *http.Request) bool {
	v := r.URL.Query().Get("strip_think")
	return v == "1" || v == "true"
}

func (s Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	snap := s.Runner.Snapshot()
	if len(snap.Results) == 0 {
		writeJSONError(w, http.StatusNotFound, "no results to export")
		return
	}
	data, err := export.CSV(snap, export.Options{StripThinkBlocks: stripThinkRequested(r)})
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="model_comparison_results.csv"`)
	w.Write(data)
}

func (s Server) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.Runner.Snapshot()
	if len(snap.Results) == 0 {
		writeJSONError(w, http.StatusNotFound, "no results to export")
		return
	}
	data, err := export.JSON(snap, export.Options{StripThinkBlocks: stripThinkRequested(r)})
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="model_comparison_results.json"`)
	w.Write(data)
}

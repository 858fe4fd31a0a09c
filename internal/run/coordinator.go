// Package run implements the multi-model orchestration loop: sequential
// dispatch of one prompt to each selected model, incremental progress
// events, cooperative cancellation, and the judge-model evaluation pass.
package run

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"llmsuite/pkg/types"
)

// ErrorSentinel prefixes a recorded response that represents a failed query.
// The success/error partition of a run is computed from this prefix.
const ErrorSentinel = "Error:"

// Querier is the single-model query client contract the loop dispatches to.
type Querier interface {
	// Query issues one blocking request and returns the full response text.
	Query(ctx context.Context, model, prompt, systemPrompt string, temperature float64) (string, error)
	// QueryStream issues one incremental request; onChunk sees every fragment
	// in arrival order. An onChunk error stops consumption and yields the
	// accumulated partial text with a nil error.
	QueryStream(ctx context.Context, model, prompt, systemPrompt string, temperature float64, onChunk func(string) error) (string, error)
}

// Coordinator owns the state of the single active run. Only the dispatch
// loop writes results and the debug log; snapshot readers take the mutex.
type Coordinator struct {
	client Querier
	log    zerolog.Logger

	mu        sync.Mutex
	running   bool
	cancelRun context.CancelFunc
	req       types.RunRequest
	order     []string          // recorded responses, dispatch order
	results   map[string]string // model -> response text
	debugLog  []string
	eval      *types.EvaluationResult

	cancelled atomic.Bool
}

// NewCoordinator constructs a Coordinator over the given query client.
func NewCoordinator(client Querier, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		client: client,
		log:    log.With().Str("component", "run").Logger(),
	}
}

// begin validates the request and claims the single run slot.
func (c *Coordinator) begin(ctx context.Context, req types.RunRequest) (context.Context, error) {
	if len(req.Models) == 0 {
		return nil, ErrNoModels()
	}
	if req.Temperature < 0 || req.Temperature > 2 {
		return nil, ErrInvalidTemperature()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return nil, ErrRunInProgress()
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.running = true
	c.cancelRun = cancel
	c.req = req
	c.order = nil
	c.results = make(map[string]string, len(req.Models))
	c.debugLog = nil
	c.eval = nil
	c.cancelled.Store(false)
	return runCtx, nil
}

func (c *Coordinator) finish() {
	c.mu.Lock()
	if c.cancelRun != nil {
		c.cancelRun()
		c.cancelRun = nil
	}
	c.running = false
	c.mu.Unlock()
}

func (c *Coordinator) appendLog(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	c.mu.Lock()
	c.debugLog = append(c.debugLog, line)
	c.mu.Unlock()
	c.log.Debug().Msg(line)
}

func (c *Coordinator) record(model, text string) {
	c.mu.Lock()
	if _, dup := c.results[model]; !dup {
		c.order = append(c.order, model)
	}
	c.results[model] = text
	c.mu.Unlock()
}

func emit(sink EventSink, ev Event) error {
	if sink == nil {
		return nil
	}
	return sink(ev)
}

// Run executes the comparison loop on the calling goroutine. Configuration
// errors are returned before any dispatch; once the loop starts, per-model
// failures are recorded as sentinel responses and the loop continues.
// Cancellation ends the run normally with partial results.
func (c *Coordinator) Run(ctx context.Context, req types.RunRequest, sink EventSink) error {
	runCtx, err := c.begin(ctx, req)
	if err != nil {
		return err
	}
	defer c.finish()

	runsTotal.Inc()
	total := len(req.Models)
	start := time.Now()
	c.appendLog("Starting comparison with %d models", total)
	c.log.Info().Int("models", total).Bool("streaming", req.Streaming).Msg("run start")
	if err := emit(sink, Event{Type: EventRunStart, Total: total}); err != nil {
		c.cancelled.Store(true)
	}

	for i, model := range req.Models {
		if c.cancelled.Load() {
			c.appendLog("Inference stopped by user")
			cancellationsTotal.Inc()
			_ = emit(sink, Event{Type: EventRunCancelled, Progress: c.progressLocked()})
			break
		}
		c.appendLog("Sending request to %s...", model)
		if err := emit(sink, Event{Type: EventModelStart, Model: model, Index: i + 1, Total: total, Progress: c.progressLocked()}); err != nil {
			c.cancelled.Store(true)
		}

		text := c.dispatch(runCtx, model, req, sink, i, total)
		c.record(model, text)

		failed := strings.HasPrefix(text, ErrorSentinel)
		if failed {
			modelQueriesTotal.WithLabelValues("error").Inc()
		} else {
			modelQueriesTotal.WithLabelValues("ok").Inc()
		}
		if err := emit(sink, Event{
			Type:     EventModelDone,
			Model:    model,
			Index:    i + 1,
			Total:    total,
			Length:   len(text),
			Failed:   failed,
			Progress: c.progressLocked(),
		}); err != nil {
			c.cancelled.Store(true)
		}
	}

	snap := c.Snapshot()
	c.log.Info().
		Int("results", len(snap.Results)).
		Int("errors", snap.ErrorCount).
		Bool("cancelled", snap.CancelRequested).
		Dur("dur", time.Since(start)).
		Msg("run end")
	_ = emit(sink, Event{Type: EventRunDone, Total: total, Progress: snap.Progress})
	return nil
}

// dispatch queries one model and maps failures onto the error sentinel.
// A query cut short by cancellation keeps its partial text.
func (c *Coordinator) dispatch(ctx context.Context, model string, req types.RunRequest, sink EventSink, i, total int) string {
	if !req.Streaming {
		text, err := c.client.Query(ctx, model, req.Prompt, req.SystemPrompt, req.Temperature)
		if err != nil {
			if c.cancelled.Load() || errors.Is(err, context.Canceled) {
				c.appendLog("Request to %s cancelled", model)
				return text
			}
			c.appendLog("Exception with %s: %v", model, err)
			return fmt.Sprintf("%s Unable to query model. %v", ErrorSentinel, err)
		}
		return text
	}

	accumulated := 0
	text, err := c.client.QueryStream(ctx, model, req.Prompt, req.SystemPrompt, req.Temperature, func(frag string) error {
		if c.cancelled.Load() {
			return errors.New("cancelled")
		}
		accumulated += len(frag)
		if err := emit(sink, Event{
			Type:     EventChunk,
			Model:    model,
			Index:    i + 1,
			Total:    total,
			Text:     frag,
			Length:   accumulated,
			Progress: c.progressLocked(),
		}); err != nil {
			// sink gone means the client went away; stop consuming
			c.cancelled.Store(true)
			return err
		}
		return nil
	})
	if err != nil {
		if c.cancelled.Load() || errors.Is(err, context.Canceled) {
			c.appendLog("Stream from %s cut short by cancellation", model)
			return text
		}
		c.appendLog("Streaming exception with %s: %v", model, err)
		return fmt.Sprintf("%s Unable to stream from model. %v", ErrorSentinel, err)
	}
	return text
}

// Cancel requests cooperative cancellation of the active run. The flag is
// observed before each dispatch and at every received fragment; the run
// context is cancelled too so a blocked read unwinds. Reports whether a run
// was active.
func (c *Coordinator) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return false
	}
	c.cancelled.Store(true)
	if c.cancelRun != nil {
		c.cancelRun()
	}
	c.log.Info().Msg("cancellation requested")
	return true
}

// progressLocked returns completed/total for the current run.
func (c *Coordinator) progressLocked() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.req.Models) == 0 {
		return 0
	}
	return float64(len(c.order)) / float64(len(c.req.Models))
}

// Snapshot projects the current run state for the presentation layer.
func (c *Coordinator) Snapshot() types.RunSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := types.RunSnapshot{
		Running:         c.running,
		CancelRequested: c.cancelled.Load(),
		Prompt:          c.req.Prompt,
		SystemPrompt:    c.req.SystemPrompt,
		Temperature:     c.req.Temperature,
		Models:          append([]string(nil), c.req.Models...),
		DebugLog:        append([]string(nil), c.debugLog...),
		Evaluation:      c.eval,
	}
	for _, model := range c.order {
		text := c.results[model]
		snap.Results = append(snap.Results, types.ModelResult{Model: model, Response: text, Length: len(text)})
		if strings.HasPrefix(text, ErrorSentinel) {
			snap.ErrorCount++
		} else {
			snap.SuccessCount++
		}
	}
	if n := len(c.req.Models); n > 0 {
		snap.Progress = float64(len(c.order)) / float64(n)
	}
	return snap
}

package run

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"llmsuite/pkg/types"
)

// fakeQuerier scripts per-model responses, errors, and stream fragments.
type fakeQuerier struct {
	responses map[string]string
	errs      map[string]error
	chunks    map[string][]string
	queried   []string
}

func (f *fakeQuerier) Query(ctx context.Context, model, prompt, systemPrompt string, temperature float64) (string, error) {
	f.queried = append(f.queried, model)
	if err := f.errs[model]; err != nil {
		return "", err
	}
	return f.responses[model], nil
}

func (f *fakeQuerier) QueryStream(ctx context.Context, model, prompt, systemPrompt string, temperature float64, onChunk func(string) error) (string, error) {
	f.queried = append(f.queried, model)
	if err := f.errs[model]; err != nil {
		return "", err
	}
	var full strings.Builder
	for _, frag := range f.chunks[model] {
		if err := onChunk(frag); err != nil {
			return full.String(), nil
		}
		full.WriteString(frag)
	}
	return full.String(), nil
}

func newTestCoordinator(f *fakeQuerier) *Coordinator {
	return NewCoordinator(f, zerolog.Nop())
}

func req(models ...string) types.RunRequest {
	return types.RunRequest{Prompt: "P", Temperature: 0.7, Models: models}
}

func TestRunRecordsAllModelsInDispatchOrder(t *testing.T) {
	f := &fakeQuerier{responses: map[string]string{"b": "beta", "a": "alpha"}}
	c := newTestCoordinator(f)
	if err := c.Run(context.Background(), req("b", "a"), nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	snap := c.Snapshot()
	if len(snap.Results) != 2 || snap.Results[0].Model != "b" || snap.Results[1].Model != "a" {
		t.Fatalf("results=%+v", snap.Results)
	}
	if snap.Results[0].Response != "beta" || snap.Results[1].Response != "alpha" {
		t.Fatalf("responses=%+v", snap.Results)
	}
	if snap.Progress != 1.0 {
		t.Fatalf("progress=%v", snap.Progress)
	}
	if snap.Running {
		t.Fatalf("running after completion")
	}
}

func TestRunContinuesPastFailuresWithSentinel(t *testing.T) {
	f := &fakeQuerier{
		responses: map[string]string{"ok": "fine"},
		errs:      map[string]error{"bad": errors.New("connection refused")},
	}
	c := newTestCoordinator(f)
	if err := c.Run(context.Background(), req("bad", "ok"), nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	snap := c.Snapshot()
	if len(snap.Results) != 2 {
		t.Fatalf("results=%+v", snap.Results)
	}
	if !strings.HasPrefix(snap.Results[0].Response, ErrorSentinel) {
		t.Fatalf("expected sentinel, got %q", snap.Results[0].Response)
	}
	if snap.SuccessCount != 1 || snap.ErrorCount != 1 {
		t.Fatalf("partition=%d/%d", snap.SuccessCount, snap.ErrorCount)
	}
	if snap.SuccessCount+snap.ErrorCount != len(snap.Results) {
		t.Fatalf("partition does not cover results")
	}
}

func TestCancellationAfterFirstModelLeavesPrefix(t *testing.T) {
	f := &fakeQuerier{responses: map[string]string{"m1": "one", "m2": "two", "m3": "three"}}
	c := newTestCoordinator(f)
	sink := func(ev Event) error {
		if ev.Type == EventModelDone && ev.Index == 1 {
			if !c.Cancel() {
				t.Errorf("cancel reported no active run")
			}
		}
		return nil
	}
	if err := c.Run(context.Background(), req("m1", "m2", "m3"), sink); err != nil {
		t.Fatalf("run: %v", err)
	}
	snap := c.Snapshot()
	if len(snap.Results) != 1 || snap.Results[0].Model != "m1" {
		t.Fatalf("results=%+v", snap.Results)
	}
	if !snap.CancelRequested {
		t.Fatalf("cancel flag not recorded")
	}
	found := false
	for _, line := range snap.DebugLog {
		if strings.Contains(line, "stopped by user") {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing cancellation log entry: %v", snap.DebugLog)
	}
	if snap.Progress >= 1.0 {
		t.Fatalf("progress=%v must not reach 1.0 on a cancelled run", snap.Progress)
	}
	if len(f.queried) != 1 {
		t.Fatalf("dispatched %d models after cancel", len(f.queried))
	}
}

func TestStreamingEmitsChunksAndKeepsPartialOnMidStreamCancel(t *testing.T) {
	f := &fakeQuerier{chunks: map[string][]string{
		"m1": {"a", "b", "c"},
		"m2": {"x"},
	}}
	c := newTestCoordinator(f)
	var chunks []string
	sink := func(ev Event) error {
		if ev.Type == EventChunk {
			chunks = append(chunks, ev.Text)
			if ev.Model == "m1" && len(chunks) == 2 {
				c.Cancel()
			}
		}
		return nil
	}
	r := req("m1", "m2")
	r.Streaming = true
	if err := c.Run(context.Background(), r, sink); err != nil {
		t.Fatalf("run: %v", err)
	}
	snap := c.Snapshot()
	// m1 is cut short mid-stream but its partial text is recorded; m2 never runs.
	if len(snap.Results) != 1 || snap.Results[0].Model != "m1" {
		t.Fatalf("results=%+v", snap.Results)
	}
	if snap.Results[0].Response != "ab" {
		t.Fatalf("partial=%q", snap.Results[0].Response)
	}
	if strings.HasPrefix(snap.Results[0].Response, ErrorSentinel) {
		t.Fatalf("partial result must not be an error")
	}
}

func TestStreamingChunksArriveInOrder(t *testing.T) {
	f := &fakeQuerier{chunks: map[string][]string{"m": {"1", "2", "3"}}}
	c := newTestCoordinator(f)
	var got []string
	sink := func(ev Event) error {
		if ev.Type == EventChunk {
			got = append(got, ev.Text)
		}
		return nil
	}
	r := req("m")
	r.Streaming = true
	if err := c.Run(context.Background(), r, sink); err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.Join(got, "") != "123" {
		t.Fatalf("chunks=%v", got)
	}
	if c.Snapshot().Results[0].Response != "123" {
		t.Fatalf("final=%q", c.Snapshot().Results[0].Response)
	}
}

func TestRunRejectsEmptyModelList(t *testing.T) {
	c := newTestCoordinator(&fakeQuerier{})
	err := c.Run(context.Background(), req(), nil)
	if !IsNoModels(err) {
		t.Fatalf("err=%v", err)
	}
}

func TestRunRejectsOutOfRangeTemperature(t *testing.T) {
	c := newTestCoordinator(&fakeQuerier{})
	r := req("m")
	r.Temperature = 2.5
	if err := c.Run(context.Background(), r, nil); !IsInvalidTemperature(err) {
		t.Fatalf("err=%v", err)
	}
}

func TestRunRejectsConcurrentRun(t *testing.T) {
	f := &fakeQuerier{responses: map[string]string{"m": "x"}}
	c := newTestCoordinator(f)
	sink := func(ev Event) error {
		if ev.Type == EventModelStart {
			if err := c.Run(context.Background(), req("m"), nil); !IsRunInProgress(err) {
				t.Errorf("nested run err=%v", err)
			}
		}
		return nil
	}
	if err := c.Run(context.Background(), req("m"), sink); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestNewRunResetsStateAndCancelFlag(t *testing.T) {
	f := &fakeQuerier{responses: map[string]string{"m1": "one", "m2": "two"}}
	c := newTestCoordinator(f)
	sink := func(ev Event) error {
		if ev.Type == EventModelDone {
			c.Cancel()
		}
		return nil
	}
	if err := c.Run(context.Background(), req("m1", "m2"), sink); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !c.Snapshot().CancelRequested {
		t.Fatalf("expected cancelled first run")
	}
	// second run starts clean
	if err := c.Run(context.Background(), req("m2"), nil); err != nil {
		t.Fatalf("second run: %v", err)
	}
	snap := c.Snapshot()
	if snap.CancelRequested {
		t.Fatalf("cancel flag leaked into new run")
	}
	if len(snap.Results) != 1 || snap.Results[0].Model != "m2" {
		t.Fatalf("results=%+v", snap.Results)
	}
	if snap.Evaluation != nil {
		t.Fatalf("evaluation leaked into new run")
	}
}

func TestBlockingCancelRecordsEmptyPartial(t *testing.T) {
	// A blocking query cut off by cancellation has no partial text to keep.
	// The empty response is still recorded, without the error sentinel, the
	// same way a cut-short stream keeps whatever it accumulated.
	var c *Coordinator
	q := querierFunc(func(ctx context.Context, model, prompt, system string, temp float64) (string, error) {
		c.Cancel()
		return "", errors.New("request canceled")
	})
	c = NewCoordinator(q, zerolog.Nop())
	if err := c.Run(context.Background(), req("m1", "m2"), nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	snap := c.Snapshot()
	if len(snap.Results) != 1 || snap.Results[0].Model != "m1" {
		t.Fatalf("results=%+v", snap.Results)
	}
	if snap.Results[0].Response != "" {
		t.Fatalf("response=%q", snap.Results[0].Response)
	}
	if snap.SuccessCount != 1 || snap.ErrorCount != 0 {
		t.Fatalf("partition=%d/%d", snap.SuccessCount, snap.ErrorCount)
	}
	found := false
	for _, line := range snap.DebugLog {
		if strings.Contains(line, "cancelled") {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing cancellation log entry: %v", snap.DebugLog)
	}
}

func TestCancelWithoutActiveRun(t *testing.T) {
	c := newTestCoordinator(&fakeQuerier{})
	if c.Cancel() {
		t.Fatalf("cancel reported an active run")
	}
}

func TestEmptyPromptIsForwarded(t *testing.T) {
	var gotPrompt string
	c := NewCoordinator(querierFunc(func(ctx context.Context, model, prompt, system string, temp float64) (string, error) {
		gotPrompt = prompt
		return "ok", nil
	}), zerolog.Nop())
	r := types.RunRequest{Prompt: "", Temperature: 0.7, Models: []string{"m"}}
	if err := c.Run(context.Background(), r, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	if gotPrompt != "" {
		t.Fatalf("prompt=%q", gotPrompt)
	}
}

// querierFunc adapts a function to the blocking half of Querier.
type querierFunc func(ctx context.Context, model, prompt, system string, temp float64) (string, error)

func (f querierFunc) Query(ctx context.Context, model, prompt, system string, temp float64) (string, error) {
	return f(ctx, model, prompt, system, temp)
}

func (f querierFunc) QueryStream(ctx context.Context, model, prompt, system string, temp float64, onChunk func(string) error) (string, error) {
	return f(ctx, model, prompt, system, temp)
}

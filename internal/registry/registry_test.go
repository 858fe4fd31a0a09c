package registry

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"llmsuite/internal/ollama"
)

type fakeLister struct {
	calls  int
	models []ollama.TagModel
	err    error
}

func (f *fakeLister) List(ctx context.Context) ([]ollama.TagModel, error) {
	f.calls++
	return f.models, f.err
}

func tags(names ...string) []ollama.TagModel {
	out := make([]ollama.TagModel, 0, len(names))
	for _, n := range names {
		out = append(out, ollama.TagModel{Name: n, Details: ollama.TagModelDetails{Family: "llama", Format: "gguf"}})
	}
	return out
}

func TestModelsSortedAndVersionDefaulted(t *testing.T) {
	f := &fakeLister{models: tags("phi3:mini", "llama3", "llama3:8b")}
	r := New(f, time.Minute, zerolog.Nop())
	models, err := r.Models(context.Background())
	if err != nil {
		t.Fatalf("models: %v", err)
	}
	got := []string{}
	for _, m := range models {
		got = append(got, m.Name)
	}
	want := []string{"llama3:8b", "llama3:latest", "phi3:mini"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order=%v want %v", got, want)
		}
	}
}

func TestModelsCachedUntilInvalidate(t *testing.T) {
	f := &fakeLister{models: tags("llama3:8b")}
	r := New(f, time.Hour, zerolog.Nop())
	if _, err := r.Models(context.Background()); err != nil {
		t.Fatalf("models: %v", err)
	}
	if _, err := r.Models(context.Background()); err != nil {
		t.Fatalf("models: %v", err)
	}
	if f.calls != 1 {
		t.Fatalf("calls=%d, want cache hit", f.calls)
	}
	r.Invalidate()
	if _, err := r.Models(context.Background()); err != nil {
		t.Fatalf("models: %v", err)
	}
	if f.calls != 2 {
		t.Fatalf("calls=%d after invalidate", f.calls)
	}
}

func TestFamiliesGroupByBase(t *testing.T) {
	f := &fakeLister{models: tags("llama3:70b", "llama3:8b", "phi3:mini")}
	r := New(f, time.Minute, zerolog.Nop())
	fams, err := r.Families(context.Background())
	if err != nil {
		t.Fatalf("families: %v", err)
	}
	if len(fams) != 2 {
		t.Fatalf("families=%d", len(fams))
	}
	if fams[0].BaseName != "llama3" || len(fams[0].Models) != 2 {
		t.Fatalf("first family=%+v", fams[0])
	}
	if fams[1].BaseName != "phi3" || len(fams[1].Models) != 1 {
		t.Fatalf("second family=%+v", fams[1])
	}
}

func TestInstalledSet(t *testing.T) {
	f := &fakeLister{models: tags("llama3:8b")}
	r := New(f, time.Minute, zerolog.Nop())
	set, err := r.Installed(context.Background())
	if err != nil {
		t.Fatalf("installed: %v", err)
	}
	if !set["llama3:8b"] || set["phi3:mini"] {
		t.Fatalf("set=%v", set)
	}
}

func TestSplitName(t *testing.T) {
	if b, v := SplitName("llama3:8b"); b != "llama3" || v != "8b" {
		t.Fatalf("split=%q %q", b, v)
	}
	if b, v := SplitName("llama3"); b != "llama3" || v != "latest" {
		t.Fatalf("split=%q %q", b, v)
	}
}

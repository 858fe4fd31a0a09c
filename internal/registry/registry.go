// Package registry adapts the Ollama model listing into descriptor snapshots
// with a time-boxed cache.
package registry

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"llmsuite/internal/ollama"
	"llmsuite/pkg/types"
)

// DefaultTTL bounds how long a registry snapshot is served before refetching.
const DefaultTTL = 5 * time.Minute

// Lister is the slice of the Ollama client the registry needs.
type Lister interface {
	List(ctx context.Context) ([]ollama.TagModel, error)
}

// Registry caches model descriptors fetched from the inference server.
type Registry struct {
	client Lister
	ttl    time.Duration
	log    zerolog.Logger

	mu        sync.Mutex
	cached    []types.ModelDescriptor
	fetchedAt time.Time
}

// New constructs a Registry. ttl <= 0 selects DefaultTTL.
func New(client Lister, ttl time.Duration, log zerolog.Logger) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{
		client: client,
		ttl:    ttl,
		log:    log.With().Str("component", "registry").Logger(),
	}
}

// SplitName splits a full model name into base and version. A missing tag
// defaults the version to "latest".
func SplitName(full string) (base, version string) {
	if i := strings.Index(full, ":"); i >= 0 {
		return full[:i], full[i+1:]
	}
	return full, "latest"
}

// Models returns the installed model descriptors sorted by base name, then
// version. The result is cached until the TTL expires or Invalidate is called.
func (r *Registry) Models(ctx context.Context) ([]types.ModelDescriptor, error) {
	r.mu.Lock()
	if r.cached != nil && time.Since(r.fetchedAt) < r.ttl {
		out := append([]types.ModelDescriptor(nil), r.cached...)
		r.mu.Unlock()
		return out, nil
	}
	r.mu.Unlock()

	tags, err := r.client.List(ctx)
	if err != nil {
		return nil, err
	}
	models := make([]types.ModelDescriptor, 0, len(tags))
	for _, t := range tags {
		base, version := SplitName(t.Name)
		models = append(models, types.ModelDescriptor{
			Name:              base + ":" + version,
			BaseName:          base,
			Version:           version,
			SizeBytes:         t.Size,
			Family:            t.Details.Family,
			ParameterSize:     t.Details.ParameterSize,
			QuantizationLevel: t.Details.QuantizationLevel,
			Format:            t.Details.Format,
		})
	}
	sort.Slice(models, func(i, j int) bool {
		if models[i].BaseName != models[j].BaseName {
			return models[i].BaseName < models[j].BaseName
		}
		return models[i].Version < models[j].Version
	})

	r.mu.Lock()
	r.cached = models
	r.fetchedAt = time.Now()
	r.mu.Unlock()
	r.log.Debug().Int("count", len(models)).Msg("registry refreshed")
	return append([]types.ModelDescriptor(nil), models...), nil
}

// Families groups the installed models by base name, preserving the sorted
// descriptor order within each group.
func (r *Registry) Families(ctx context.Context) ([]types.ModelFamily, error) {
	models, err := r.Models(ctx)
	if err != nil {
		return nil, err
	}
	var fams []types.ModelFamily
	idx := map[string]int{}
	for _, m := range models {
		i, ok := idx[m.BaseName]
		if !ok {
			i = len(fams)
			idx[m.BaseName] = i
			fams = append(fams, types.ModelFamily{BaseName: m.BaseName})
		}
		fams[i].Models = append(fams[i].Models, m)
	}
	return fams, nil
}

// Installed returns the set of installed full model names.
func (r *Registry) Installed(ctx context.Context) (map[string]bool, error) {
	models, err := r.Models(ctx)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(models))
	for _, m := range models {
		set[m.Name] = true
	}
	return set, nil
}

// Invalidate drops the cached snapshot. The next read refetches.
func (r *Registry) Invalidate() {
	r.mu.Lock()
	r.cached = nil
	r.fetchedAt = time.Time{}
	r.mu.Unlock()
}

// Package modelops installs and removes models by shelling out to the
// ollama CLI. The operations are not atomic: a failure midway leaves the
// registry in whatever state the tool left it, and the raw output is
// returned for display either way.
package modelops

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultBin is the ollama binary looked up on PATH when none is configured.
const DefaultBin = "ollama"

// RunFunc executes one external command and returns its combined output.
// Swappable in tests.
type RunFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCombined(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Ops wraps pull/remove invocations of the ollama CLI.
type Ops struct {
	bin string
	run RunFunc
	log zerolog.Logger
}

// New constructs Ops for the given binary; empty selects DefaultBin.
func New(bin string, log zerolog.Logger) *Ops {
	if bin == "" {
		bin = DefaultBin
	}
	return &Ops{bin: bin, run: runCombined, log: log.With().Str("component", "modelops").Logger()}
}

// SetRunner replaces the command runner. Test seam.
func (o *Ops) SetRunner(run RunFunc) { o.run = run }

// FullName joins base name and version, defaulting the version to "latest".
func FullName(name, version string) string {
	name = strings.TrimSpace(name)
	if strings.Contains(name, ":") {
		return name
	}
	version = strings.TrimSpace(version)
	if version == "" {
		version = "latest"
	}
	return name + ":" + version
}

// Pull downloads a model. Returns the tool's raw output; err is non-nil when
// the tool exited non-zero or could not run.
func (o *Ops) Pull(ctx context.Context, name, version string) (string, error) {
	full := FullName(name, version)
	start := time.Now()
	out, err := o.run(ctx, o.bin, "pull", full)
	o.log.Info().Str("model", full).Dur("dur", time.Since(start)).Err(err).Msg("pull finished")
	return string(out), err
}

// Remove deletes an installed model. Returns the tool's raw output.
func (o *Ops) Remove(ctx context.Context, name string) (string, error) {
	full := FullName(name, "")
	out, err := o.run(ctx, o.bin, "rm", full)
	o.log.Info().Str("model", full).Err(err).Msg("remove finished")
	return string(out), err
}

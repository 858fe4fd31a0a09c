// Package profile persists named run-configuration bundles in a sectioned
// key-value file under the user's home directory. The format is kept
// compatible with configparser-style ini: one section per profile plus the
// reserved DEFAULT section holding the default profile's name.
package profile

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/ini.v1"

	"llmsuite/internal/common/fsutil"
	"llmsuite/pkg/types"
)

// DefaultPath is the profile file location when none is configured.
const DefaultPath = "~/.llmsuite_profiles.ini"

const defaultProfileKey = "default_profile"

// Store reads and writes the profile file. Reads tolerate a missing or
// malformed file by treating it as an empty profile set.
type Store struct {
	path string
	log  zerolog.Logger
}

// NewStore constructs a Store at path ('~' expanded); empty selects DefaultPath.
func NewStore(path string, log zerolog.Logger) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	expanded, err := fsutil.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	return &Store{path: expanded, log: log.With().Str("component", "profiles").Logger()}, nil
}

// Path returns the expanded on-disk location of the profile file.
func (s *Store) Path() string { return s.path }

// load never fails: absence and parse errors both yield an empty file.
func (s *Store) load() *ini.File {
	if !fsutil.PathExists(s.path) {
		return ini.Empty()
	}
	f, err := ini.Load(s.path)
	if err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("profile file unreadable, treating as empty")
		return ini.Empty()
	}
	return f
}

func (s *Store) write(f *ini.File) error {
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return fmt.Errorf("serialize profiles: %w", err)
	}
	return fsutil.WriteFileAtomic(s.path, buf.Bytes(), 0o600)
}

// List returns the stored profile names in file order.
func (s *Store) List() []string {
	f := s.load()
	var names []string
	for _, sec := range f.Sections() {
		if sec.Name() == ini.DefaultSection {
			continue
		}
		names = append(names, sec.Name())
	}
	return names
}

// Get loads one profile by name.
func (s *Store) Get(name string) (types.Profile, bool) {
	f := s.load()
	if !f.HasSection(name) || name == ini.DefaultSection {
		return types.Profile{}, false
	}
	sec := f.Section(name)
	var models []string
	for _, m := range strings.Split(sec.Key("selected_models").String(), ",") {
		if m = strings.TrimSpace(m); m != "" {
			models = append(models, m)
		}
	}
	return types.Profile{
		Name:              name,
		SelectedModels:    models,
		Streaming:         sec.Key("enable_streaming").MustBool(true),
		Temperature:       sec.Key("temperature").MustFloat64(0.7),
		SystemPrompt:      sec.Key("system_prompt").String(),
		EvaluationModel:   sec.Key("evaluation_model").String(),
		EvaluationPrompt:  sec.Key("evaluation_prompt").String(),
		RemoveThinkBlocks: sec.Key("remove_think_blocks").MustBool(false),
	}, true
}

// Save creates or overwrites a profile section.
func (s *Store) Save(p types.Profile) error {
	name := strings.TrimSpace(p.Name)
	if name == "" || name == ini.DefaultSection {
		return fmt.Errorf("invalid profile name %q", p.Name)
	}
	f := s.load()
	sec := f.Section(name)
	sec.Key("selected_models").SetValue(strings.Join(p.SelectedModels, ","))
	sec.Key("enable_streaming").SetValue(strconv.FormatBool(p.Streaming))
	sec.Key("temperature").SetValue(strconv.FormatFloat(p.Temperature, 'g', -1, 64))
	sec.Key("system_prompt").SetValue(p.SystemPrompt)
	sec.Key("evaluation_model").SetValue(p.EvaluationModel)
	sec.Key("evaluation_prompt").SetValue(p.EvaluationPrompt)
	sec.Key("remove_think_blocks").SetValue(strconv.FormatBool(p.RemoveThinkBlocks))
	return s.write(f)
}

// Delete removes a profile. Deleting the default profile clears the default.
func (s *Store) Delete(name string) error {
	f := s.load()
	if !f.HasSection(name) || name == ini.DefaultSection {
		return fmt.Errorf("profile %q not found", name)
	}
	f.DeleteSection(name)
	def := f.Section(ini.DefaultSection)
	if def.Key(defaultProfileKey).String() == name {
		def.DeleteKey(defaultProfileKey)
	}
	return s.write(f)
}

// SetDefault marks an existing profile as the one auto-loaded on startup.
func (s *Store) SetDefault(name string) error {
	f := s.load()
	if !f.HasSection(name) || name == ini.DefaultSection {
		return fmt.Errorf("profile %q not found", name)
	}
	f.Section(ini.DefaultSection).Key(defaultProfileKey).SetValue(name)
	return s.write(f)
}

// DefaultName returns the default profile's name, or "" when none is set.
func (s *Store) DefaultName() string {
	return s.load().Section(ini.DefaultSection).Key(defaultProfileKey).String()
}

// Default loads the default profile, if one is set and still exists.
func (s *Store) Default() (types.Profile, bool) {
	name := s.DefaultName()
	if name == "" {
		return types.Profile{}, false
	}
	return s.Get(name)
}

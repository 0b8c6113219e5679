package config

import (
	"context"
	"fmt"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/mkarimof/jurybox/internal/domain/model"
)

// EventProvider supplies the current event configuration. Implementations
// must read fresh on every call so edits take effect immediately; a read
// failure is fatal for the operation that needed it.
type EventProvider interface {
	Entries(ctx context.Context) ([]model.Entry, error)
	Criteria(ctx context.Context) ([]model.Criterion, error)
	JudgeCredentials(ctx context.Context) (map[string]string, error)
	AdminCredentials(ctx context.Context) (map[string]string, error)
}

// credential mirrors one username/password pair in the event file.
type credential struct {
	Username string `koanf:"username"`
	Password string `koanf:"password"`
}

// eventFile mirrors the event configuration JSON document.
type eventFile struct {
	Entries  []model.Entry     `koanf:"entries"`
	Criteria []model.Criterion `koanf:"criteria"`
	Judges   []credential      `koanf:"judges"`
	Admins   []credential      `koanf:"admins"`
}

// FileEventProvider reads the event configuration JSON from disk on every call.
type FileEventProvider struct {
	path string
}

// EventOption applies a configuration option to the FileEventProvider.
type EventOption func(*FileEventProvider)

// WithEventPath sets the event configuration file path.
func WithEventPath(path string) EventOption {
	return func(p *FileEventProvider) {
		if path != "" {
			p.path = path
		}
	}
}

// NewFileEventProvider creates a provider reading from the given path.
func NewFileEventProvider(opts ...EventOption) *FileEventProvider {
	p := &FileEventProvider{
		path: defaultEventConfigPath,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// load parses and validates the event file. Called on every read, never cached.
func (p *FileEventProvider) load(_ context.Context) (*eventFile, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(p.path), json.Parser()); err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrInvalidEventConfig, p.path, err)
	}

	var ev eventFile
	if err := k.UnmarshalWithConf("", &ev, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", ErrInvalidEventConfig, p.path, err)
	}

	if len(ev.Criteria) == 0 {
		return nil, fmt.Errorf("%w: no criteria defined", ErrInvalidEventConfig)
	}
	for _, c := range ev.Criteria {
		if c.ID == "" {
			return nil, fmt.Errorf("%w: criterion with empty id", ErrInvalidEventConfig)
		}
		if c.MaxScore <= 0 {
			return nil, fmt.Errorf("%w: criterion %q has non-positive max_score", ErrInvalidEventConfig, c.ID)
		}
	}
	for _, e := range ev.Entries {
		if e.ID == "" {
			return nil, fmt.Errorf("%w: entry with empty id", ErrInvalidEventConfig)
		}
	}

	return &ev, nil
}

// Entries returns the current competition entries.
func (p *FileEventProvider) Entries(ctx context.Context) ([]model.Entry, error) {
	ev, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	return ev.Entries, nil
}

// Criteria returns the current scoring criteria in configured order.
func (p *FileEventProvider) Criteria(ctx context.Context) ([]model.Criterion, error) {
	ev, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	return ev.Criteria, nil
}

// JudgeCredentials returns the current judge username->password mapping.
func (p *FileEventProvider) JudgeCredentials(ctx context.Context) (map[string]string, error) {
	ev, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	return credentialMap(ev.Judges), nil
}

// AdminCredentials returns the current admin username->password mapping.
func (p *FileEventProvider) AdminCredentials(ctx context.Context) (map[string]string, error) {
	ev, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	return credentialMap(ev.Admins), nil
}

func credentialMap(creds []credential) map[string]string {
	out := make(map[string]string, len(creds))
	for _, c := range creds {
		out[c.Username] = c.Password
	}
	return out
}

package io

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/slok/dothis/internal/model"
)

// DefaultSeedPath is the path of the default tasks seed on the defaults FS.
const DefaultSeedPath = "defaults.yaml"

//go:embed defaults.yaml
var defaultsFS embed.FS

// SeedYAMLRepository loads task seeds from YAML files.
type SeedYAMLRepository struct {
	fs fs.FS
}

// NewSeedYAMLRepository creates a new YAML seed repository.
func NewSeedYAMLRepository(filesystem fs.FS) *SeedYAMLRepository {
	return &SeedYAMLRepository{fs: filesystem}
}

// NewDefaultSeedRepository returns a seed repository with the sample tasks
// shipped with the application, available at DefaultSeedPath.
func NewDefaultSeedRepository() *SeedYAMLRepository {
	return NewSeedYAMLRepository(defaultsFS)
}

// GetSeed loads task seeds from a YAML file and returns validated domain models.
func (r *SeedYAMLRepository) GetSeed(ctx context.Context, path string) ([]model.TaskSeed, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	if err := seed.validate(); err != nil {
		return nil, fmt.Errorf("invalid seed: %w", err)
	}

	return seed.toModel(), nil
}

// Seed represents the YAML structure of a tasks seed file.
type Seed struct {
	Tasks []SeedTask `yaml:"tasks"`
}

// SeedTask represents the YAML structure of a single task.
type SeedTask struct {
	Text     string     `yaml:"text"`
	Type     string     `yaml:"type"`
	Cooldown string     `yaml:"cooldown"`
	Deadline *time.Time `yaml:"deadline,omitempty"`
}

func (s Seed) validate() error {
	for i, t := range s.Tasks {
		if err := t.validate(); err != nil {
			return fmt.Errorf("task %d: %w", i, err)
		}
	}
	return nil
}

func (t SeedTask) validate() error {
	if err := model.ValidateTaskText(model.NormalizeTaskText(t.Text)); err != nil {
		return err
	}
	if t.Type != "" && !model.TaskType(t.Type).Valid() {
		return fmt.Errorf("invalid type %q: %w", t.Type, model.ErrNotValid)
	}
	if t.Cooldown != "" && !model.Cooldown(t.Cooldown).Valid() {
		return fmt.Errorf("invalid cooldown %q: %w", t.Cooldown, model.ErrNotValid)
	}
	return nil
}

func (s Seed) toModel() []model.TaskSeed {
	res := make([]model.TaskSeed, 0, len(s.Tasks))
	for _, t := range s.Tasks {
		res = append(res, model.TaskSeed{
			Text:     model.NormalizeTaskText(t.Text),
			Type:     model.TaskType(t.Type),
			Cooldown: model.Cooldown(t.Cooldown),
			Deadline: t.Deadline,
		})
	}
	return res
}

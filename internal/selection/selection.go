package selection

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/slok/dothis/internal/log"
	"github.com/slok/dothis/internal/model"
)

const day = 24 * time.Hour

// Weight returns the selection weight of a task based on its deadline urgency.
func Weight(task model.Task, now time.Time) float64 {
	if task.Deadline == nil {
		return 1.0
	}

	days := float64(task.Deadline.Sub(now)) / float64(day)
	switch {
	case days < 0:
		return 20.0
	case days <= 1:
		return 10.0
	case days <= 2:
		return 6.0
	case days <= 7:
		return 3.0
	default:
		return 1.5
	}
}

// EngineConfig is the configuration for the selection engine.
type EngineConfig struct {
	// Rand is the random source, if missing a randomly seeded one is used.
	Rand   *rand.Rand
	Logger log.Logger
}

func (c *EngineConfig) defaults() error {
	if c.Rand == nil {
		c.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "selection.Engine"})

	return nil
}

// Engine selects tasks randomly weighted by deadline urgency.
type Engine struct {
	rand   *rand.Rand
	logger log.Logger
}

// NewEngine returns a new selection engine.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		rand:   cfg.Rand,
		logger: cfg.Logger,
	}, nil
}

// Select picks one of the available tasks. When there are at least two
// candidates the previous selection (by ID, can be empty) is never picked again.
func (e *Engine) Select(available []model.Task, previousID string, now time.Time) (*model.Task, error) {
	if len(available) == 0 {
		return nil, model.ErrNoTasksAvailable
	}

	candidates := available
	if len(available) >= 2 && previousID != "" {
		candidates = make([]model.Task, 0, len(available))
		for _, t := range available {
			if t.ID != previousID {
				candidates = append(candidates, t)
			}
		}
	}

	weights := make([]float64, len(candidates))
	total := 0.0
	for i, t := range candidates {
		weights[i] = Weight(t, now)
		total += weights[i]
	}

	r := e.rand.Float64() * total
	selected := 0
	for i, w := range weights {
		r -= w
		if r <= 0 {
			selected = i
			break
		}
	}

	task := candidates[selected].Clone()
	e.logger.Debugf("selected task %s from %d candidates (weight %.1f of %.1f)", task.ID, len(candidates), weights[selected], total)

	return &task, nil
}

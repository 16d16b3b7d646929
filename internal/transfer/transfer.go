package transfer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/slok/dothis/internal/legacy"
	"github.com/slok/dothis/internal/log"
	"github.com/slok/dothis/internal/model"
	storageio "github.com/slok/dothis/internal/storage/io"
)

// FormatVersion is the version of the export document.
const FormatVersion = "1.0"

// ImportedTaskText is used for imported records without a usable text.
const ImportedTaskText = "Imported task"

const exportDateLayout = "2006-01-02T15:04:05.000Z07:00"

// Mode is the way an import is applied to the current state.
type Mode string

const (
	// ModeReplace replaces tasks, trash and completed count.
	ModeReplace Mode = "replace"
	// ModeMerge adds the imported tasks that don't exist yet.
	ModeMerge Mode = "merge"
	// ModeSelective merges a subset of the imported tasks, the trash is not imported.
	ModeSelective Mode = "selective"
)

// Valid returns true if the mode is known.
func (m Mode) Valid() bool { return m == ModeReplace || m == ModeMerge || m == ModeSelective }

// Document is the export file format.
type Document struct {
	Metadata     Metadata         `json:"metadata"`
	Tasks        []storageio.Task `json:"tasks"`
	DeletedTasks []storageio.Task `json:"deletedTasks"`
	Statistics   Statistics       `json:"statistics"`
}

// Metadata describes an export.
type Metadata struct {
	ExportDate     string `json:"exportDate"`
	Version        string `json:"version"`
	TotalTasks     int    `json:"totalTasks"`
	CompletedTasks int    `json:"completedTasks"`
}

// Statistics are the exported counters.
type Statistics struct {
	CompletedTasks int                   `json:"completedTasks"`
	ActiveTask     *storageio.ActiveTask `json:"activeTask"`
}

// FileName returns the default export file name for a date.
func FileName(now time.Time) string {
	return fmt.Sprintf("dothis-tasks-%s.json", now.UTC().Format("2006-01-02"))
}

// ManagerConfig is the configuration of the import/export manager.
type ManagerConfig struct {
	// NewID returns new task IDs, UUID v4 by default.
	NewID  func() string
	Logger log.Logger
}

func (c *ManagerConfig) defaults() error {
	if c.NewID == nil {
		c.NewID = uuid.NewString
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "transfer.Manager"})

	return nil
}

// Manager exports and imports the application state.
type Manager struct {
	newID  func() string
	logger log.Logger
}

// NewManager returns a new import/export manager.
func NewManager(cfg ManagerConfig) (*Manager, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Manager{
		newID:  cfg.NewID,
		logger: cfg.Logger,
	}, nil
}

// Export writes the state as an indented JSON document.
func (m *Manager) Export(w io.Writer, state model.AppState, now time.Time) error {
	doc := Document{
		Metadata: Metadata{
			ExportDate:     now.UTC().Format(exportDateLayout),
			Version:        FormatVersion,
			TotalTasks:     len(state.Tasks),
			CompletedTasks: state.CompletedCount,
		},
		Tasks:        storageio.TasksFromModel(state.Tasks),
		DeletedTasks: storageio.TasksFromModel(state.DeletedTasks),
		Statistics: Statistics{
			CompletedTasks: state.CompletedCount,
			ActiveTask:     storageio.ActiveTaskFromModel(state.ActiveTask),
		},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("could not encode export: %w", err)
	}

	m.logger.Debugf("Exported %d tasks and %d deleted tasks", len(state.Tasks), len(state.DeletedTasks))
	return nil
}

// ImportedTask is a task decoded from an import document.
type ImportedTask struct {
	Task model.Task
	// SourceID is the ID found in the document, it can differ from the task ID
	// when the document had a legacy or invalid ID.
	SourceID string
}

// Import is a decoded import document.
type Import struct {
	Tasks        []ImportedTask
	DeletedTasks []ImportedTask
	// CompletedCount is only set when the document carries one.
	CompletedCount *int
}

// IndexOf returns the index of the imported task with the ID, or -1.
func (i Import) IndexOf(id string) int {
	for idx, t := range i.Tasks {
		if t.Task.ID == id || t.SourceID == id {
			return idx
		}
	}
	return -1
}

type rawDocument struct {
	Metadata *struct {
		CompletedTasks *int `json:"completedTasks"`
	} `json:"metadata"`
	Tasks        json.RawMessage `json:"tasks"`
	DeletedTasks json.RawMessage `json:"deletedTasks"`
	Statistics   *struct {
		CompletedTasks *int `json:"completedTasks"`
	} `json:"statistics"`
}

// Decode reads an import document leniently. Records are repaired the same
// way stored data is, IDs that are not UUIDs are replaced.
func (m *Manager) Decode(r io.Reader, now time.Time) (*Import, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("could not read import: %w", err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, fmt.Errorf("invalid import file format: %w", model.ErrNotValid)
	}

	var doc rawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid import file format: %w: %w", model.ErrNotValid, err)
	}

	imp := &Import{}
	imp.Tasks, err = m.decodeTasks(doc.Tasks, legacy.CollectionTasks, now)
	if err != nil {
		return nil, fmt.Errorf("invalid tasks: %w", err)
	}
	imp.DeletedTasks, err = m.decodeTasks(doc.DeletedTasks, legacy.CollectionDeletedTasks, now)
	if err != nil {
		return nil, fmt.Errorf("invalid deleted tasks: %w", err)
	}

	if len(imp.Tasks) == 0 && len(imp.DeletedTasks) == 0 {
		return nil, fmt.Errorf("no tasks found in import: %w", model.ErrNotValid)
	}

	switch {
	case doc.Statistics != nil && doc.Statistics.CompletedTasks != nil:
		imp.CompletedCount = doc.Statistics.CompletedTasks
	case doc.Metadata != nil && doc.Metadata.CompletedTasks != nil:
		imp.CompletedCount = doc.Metadata.CompletedTasks
	}
	if imp.CompletedCount != nil && *imp.CompletedCount < 0 {
		zero := 0
		imp.CompletedCount = &zero
	}

	return imp, nil
}

func (m *Manager) decodeTasks(raw json.RawMessage, c legacy.Collection, now time.Time) ([]ImportedTask, error) {
	res := []ImportedTask{}
	if len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return res, nil
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(raw, &raws); err != nil {
		return nil, fmt.Errorf("not a list: %w", model.ErrNotValid)
	}

	for _, r := range raws {
		r = withFallbackText(r)
		t, _, ok := legacy.DecodeTask(r, c, now)
		if !ok {
			continue
		}

		t.Text = model.NormalizeTaskText(t.Text)
		if t.Text == "" {
			t.Text = ImportedTaskText
		}

		source := t.ID
		if !legacy.IsValidUUID(t.ID) {
			t.ID = m.newID()
			if source != "" {
				m.logger.Infof("imported task %q had ID %q, using %q", t.Text, source, t.ID)
			}
		}

		res = append(res, ImportedTask{Task: t, SourceID: source})
	}

	return res, nil
}

// withFallbackText sets the imported task text on records without a usable one.
func withFallbackText(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return raw
	}

	var rec map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &rec); err != nil {
		return raw
	}

	var text string
	if err := json.Unmarshal(rec["text"], &text); err == nil && strings.TrimSpace(text) != "" {
		return raw
	}

	rec["text"], _ = json.Marshal(ImportedTaskText)
	data, err := json.Marshal(rec)
	if err != nil {
		return raw
	}
	return data
}

// Result is the outcome of an import.
type Result struct {
	Mode     Mode
	Imported int
	Skipped  int
	// Rehomed are the imported tasks that replaced an existing task with the same text.
	Rehomed int
	// DeletedImported is the number of tasks imported into the trash.
	DeletedImported int
	// ActiveCleared is set when the active task no longer exists after the import.
	ActiveCleared bool
}

// Apply applies the import to the state. Selection is only used on selective
// mode and holds indexes of the imported tasks.
func (m *Manager) Apply(state *model.AppState, imp *Import, mode Mode, selection []int) (Result, error) {
	if state == nil || imp == nil {
		return Result{}, fmt.Errorf("state and import are required: %w", model.ErrNotValid)
	}

	switch mode {
	case ModeReplace:
		return m.replace(state, imp), nil
	case ModeMerge:
		return m.merge(state, imp.Tasks, ModeMerge), nil
	case ModeSelective:
		if len(selection) == 0 {
			return Result{}, fmt.Errorf("no tasks selected: %w", model.ErrNotValid)
		}
		selected := make([]ImportedTask, 0, len(selection))
		for _, i := range selection {
			if i < 0 || i >= len(imp.Tasks) {
				return Result{}, fmt.Errorf("selected task %d out of range: %w", i, model.ErrNotValid)
			}
			selected = append(selected, imp.Tasks[i])
		}
		return m.merge(state, selected, ModeSelective), nil
	}

	return Result{}, fmt.Errorf("unknown import mode %q: %w", mode, model.ErrNotValid)
}

func (m *Manager) replace(state *model.AppState, imp *Import) Result {
	res := Result{Mode: ModeReplace}

	seen := map[string]bool{}
	texts := map[string]bool{}
	tasks := make([]model.Task, 0, len(imp.Tasks))
	for _, it := range imp.Tasks {
		t := it.Task.Clone()
		if texts[t.Text] {
			res.Skipped++
			continue
		}
		m.uniqueID(&t, seen)
		texts[t.Text] = true
		tasks = append(tasks, t)
	}

	deleted := make([]model.Task, 0, len(imp.DeletedTasks))
	for _, it := range imp.DeletedTasks {
		t := it.Task.Clone()
		m.uniqueID(&t, seen)
		deleted = append(deleted, t)
	}

	state.Tasks = tasks
	state.DeletedTasks = deleted
	if imp.CompletedCount != nil {
		state.CompletedCount = *imp.CompletedCount
	}

	if state.ActiveTask != nil && !containsID(tasks, state.ActiveTask.TaskID) {
		state.ActiveTask = nil
		res.ActiveCleared = true
	}

	res.Imported = len(tasks)
	res.DeletedImported = len(deleted)
	m.logger.Infof("Replaced all tasks with %d imported tasks", res.Imported)
	return res
}

func (m *Manager) merge(state *model.AppState, imported []ImportedTask, mode Mode) Result {
	res := Result{Mode: mode}

	byText := map[string]int{}
	ids := map[string]bool{}
	for i, t := range state.Tasks {
		byText[t.Text] = i
		ids[t.ID] = true
	}
	for _, t := range state.DeletedTasks {
		ids[t.ID] = true
	}

	activeID := ""
	if state.ActiveTask != nil {
		activeID = state.ActiveTask.TaskID
	}

	for _, it := range imported {
		t := it.Task.Clone()
		existing, dupText := byText[t.Text]
		dupID := ids[t.ID]

		switch {
		case !dupText && !dupID:
			state.Tasks = append(state.Tasks, t)
			byText[t.Text] = len(state.Tasks) - 1
			ids[t.ID] = true
			res.Imported++

		case dupText && legacy.IsNumericID(it.SourceID) && legacy.IsValidUUID(state.Tasks[existing].ID) && state.Tasks[existing].ID != activeID:
			// Legacy export of a task that exists already, keep the UUID.
			t.ID = state.Tasks[existing].ID
			m.logger.Infof("Preserving UUID %s for task %q (had numeric ID %s)", t.ID, t.Text, it.SourceID)
			state.Tasks[existing] = t
			res.Imported++
			res.Rehomed++

		default:
			res.Skipped++
		}
	}

	m.logger.Infof("Imported %d new tasks (%d duplicates skipped)", res.Imported, res.Skipped)
	return res
}

func (m *Manager) uniqueID(t *model.Task, seen map[string]bool) {
	for seen[t.ID] {
		t.ID = m.newID()
	}
	seen[t.ID] = true
}

func containsID(tasks []model.Task, id string) bool {
	for _, t := range tasks {
		if t.ID == id {
			return true
		}
	}
	return false
}

package legacy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/slok/dothis/internal/model"
	storageio "github.com/slok/dothis/internal/storage/io"
)

// Version is the current version of the stored data. Version 1 used numeric
// task IDs, version 2 uses UUIDs.
const Version = 2

const (
	CorruptedTaskText        = "Corrupted task (please edit)"
	CorruptedDeletedTaskText = "Corrupted deleted task"
	// MissingReason replaces the reason of abandoned executions stored without one.
	MissingReason = "No reason recorded"
)

// Collection is the kind of task collection being decoded.
type Collection int

const (
	CollectionTasks Collection = iota
	CollectionDeletedTasks
)

func (c Collection) corruptedText() string {
	if c == CollectionDeletedTasks {
		return CorruptedDeletedTaskText
	}
	return CorruptedTaskText
}

// Report summarizes the repairs done while decoding or migrating.
type Report struct {
	Version     int
	Repaired    int
	Dropped     int
	IDsMigrated int
}

// Changed returns true if the data was modified and must be saved back.
func (r Report) Changed() bool { return r.Repaired > 0 || r.Dropped > 0 || r.IDsMigrated > 0 }

func (r *Report) add(o Report) {
	r.Repaired += o.Repaired
	r.Dropped += o.Dropped
	r.IDsMigrated += o.IDsMigrated
}

var numericID = regexp.MustCompile(`^\d+$`)

// IsNumericID returns true for the IDs of the first data version.
func IsNumericID(id string) bool { return numericID.MatchString(id) }

// uuidV4 matches version 4 UUIDs, case insensitive.
var uuidV4 = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// IsValidUUID returns true if the ID is a version 4 UUID.
func IsValidUUID(id string) bool { return uuidV4.MatchString(id) }

// DecodeTasks decodes a JSON array of task records leniently. Records that
// are plain strings become one-off tasks, records that are not objects
// become placeholders and records with an empty text are dropped.
//
// IDs are kept as found (numbers are converted to strings), Migrate is the
// one assigning new IDs. An error is only returned if the data is not a JSON
// array.
func DecodeTasks(data []byte, c Collection, now time.Time) ([]model.Task, Report, error) {
	report := Report{Version: Version}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, report, fmt.Errorf("could not decode task list: %w", err)
	}

	tasks := make([]model.Task, 0, len(raws))
	for _, raw := range raws {
		t, r, ok := decodeTask(raw, c, now)
		report.add(r)
		if !ok {
			report.Dropped++
			continue
		}
		tasks = append(tasks, t)
	}

	return tasks, report, nil
}

// DecodeTask decodes a single task record leniently, ok is false when the
// record must be dropped.
func DecodeTask(raw json.RawMessage, c Collection, now time.Time) (t model.Task, r Report, ok bool) {
	return decodeTask(raw, c, now)
}

func decodeTask(raw json.RawMessage, c Collection, now time.Time) (model.Task, Report, bool) {
	r := Report{}
	raw = bytes.TrimSpace(raw)

	base := model.Task{
		Type:       model.TaskTypeOneOff,
		Cooldown:   model.CooldownDaily,
		Executions: []model.Execution{},
		CreatedAt:  now,
	}
	if c == CollectionDeletedTasks {
		deletedAt := now
		base.DeletedAt = &deletedAt
	}

	if len(raw) == 0 || raw[0] != '{' {
		r.Repaired++
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && !isNull(raw) {
			if s == "" {
				return model.Task{}, r, false
			}
			base.Text = s
			return base, r, true
		}
		base.Text = c.corruptedText()
		return base, r, true
	}

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		r.Repaired++
		base.Text = c.corruptedText()
		return base, r, true
	}

	t := base
	repaired := false

	t.ID = rawString(rec.ID)

	switch text, isString := stringValue(rec.Text); {
	case isString:
		t.Text = text
	case text != "":
		t.Text = text
		repaired = true
	default:
		t.Text = c.corruptedText()
		repaired = true
	}
	if t.Text == "" {
		return model.Task{}, r, false
	}
	if utf8.RuneCountInString(t.Text) > model.MaxTaskTextLength {
		t.Text = string([]rune(t.Text)[:model.MaxTaskTextLength])
		repaired = true
	}

	if tt := model.TaskType(rawString(rec.Type)); tt.Valid() {
		t.Type = tt
	} else {
		repaired = true
	}

	if cd := model.Cooldown(rawString(rec.Cooldown)); cd.Valid() {
		t.Cooldown = cd
	} else {
		repaired = true
	}

	execs, execsRepaired := decodeExecutions(rec.Executions)
	t.Executions = execs
	repaired = repaired || execsRepaired

	t.Completed = truthy(rec.Completed)

	if ms, ok := millis(rec.CreatedAt); ok {
		t.CreatedAt = storageio.MillisToTime(ms)
	} else if c == CollectionTasks {
		repaired = true
	}

	if ms, ok := millis(rec.Deadline); ok {
		d := storageio.MillisToTime(ms)
		t.Deadline = &d
	}

	if c == CollectionDeletedTasks {
		if ms, ok := millis(rec.DeletedAt); ok {
			d := storageio.MillisToTime(ms)
			t.DeletedAt = &d
		} else {
			repaired = true
		}
	}

	if repaired {
		r.Repaired++
	}
	return t, r, true
}

type record struct {
	ID         json.RawMessage `json:"id"`
	Text       json.RawMessage `json:"text"`
	Type       json.RawMessage `json:"type"`
	Cooldown   json.RawMessage `json:"cooldown"`
	Executions json.RawMessage `json:"executions"`
	Completed  json.RawMessage `json:"completed"`
	CreatedAt  json.RawMessage `json:"createdAt"`
	Deadline   json.RawMessage `json:"deadline"`
	DeletedAt  json.RawMessage `json:"deletedAt"`
}

func decodeExecutions(raw json.RawMessage) ([]model.Execution, bool) {
	execs := []model.Execution{}
	if isNull(raw) {
		return execs, true
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(raw, &raws); err != nil {
		return execs, true
	}

	repaired := false
	for _, r := range raws {
		var e storageio.Execution
		if err := json.Unmarshal(r, &e); err != nil {
			repaired = true
			continue
		}
		exec := e.ToModel()
		if exec.Abandoned && strings.TrimSpace(exec.Reason) == "" {
			exec.Reason = MissingReason
			repaired = true
		}
		if !exec.Abandoned && exec.Reason != "" {
			exec.Reason = ""
			repaired = true
		}
		execs = append(execs, exec)
	}

	return execs, repaired
}

// DecodeActiveTask decodes the active task leniently, null data returns nil.
func DecodeActiveTask(data []byte) (*model.ActiveTask, error) {
	data = bytes.TrimSpace(data)
	if isNull(data) {
		return nil, nil
	}

	var rec struct {
		Task struct {
			ID   json.RawMessage `json:"id"`
			Text json.RawMessage `json:"text"`
		} `json:"task"`
		StartTime json.RawMessage `json:"startTime"`
		Duration  json.RawMessage `json:"duration"`
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("could not decode active task: %w", err)
	}

	start, ok := millis(rec.StartTime)
	if !ok {
		return nil, fmt.Errorf("active task without start time: %w", model.ErrNotValid)
	}

	text, _ := stringValue(rec.Task.Text)
	at := &model.ActiveTask{
		TaskID:    rawString(rec.Task.ID),
		TaskText:  text,
		StartTime: storageio.MillisToTime(start),
		Duration:  model.ActiveTaskDuration,
	}
	if d, ok := millis(rec.Duration); ok && d > 0 {
		at.Duration = time.Duration(d) * time.Millisecond
	}

	return at, nil
}

// DecodeCount decodes a counter leniently, anything that is not a number is 0.
func DecodeCount(data []byte) int {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || (end == 0 && s[end] == '-')) {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || string(raw) == "null"
}

// rawString returns the string form of a JSON string or number.
func rawString(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// stringValue returns the value of a JSON string, or the string form of
// other non empty scalars.
func stringValue(raw json.RawMessage) (string, bool) {
	if isNull(raw) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	raw = bytes.TrimSpace(raw)
	switch string(raw) {
	case "false", "0", "{}", "[]":
		return "", false
	}
	if raw[0] == '{' || raw[0] == '[' {
		return "", false
	}
	return string(raw), false
}

func truthy(raw json.RawMessage) bool {
	if isNull(raw) {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	switch string(bytes.TrimSpace(raw)) {
	case "0", `""`:
		return false
	}
	return true
}

func millis(raw json.RawMessage) (int64, bool) {
	if isNull(raw) {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil || f <= 0 {
		return 0, false
	}
	return int64(f), true
}

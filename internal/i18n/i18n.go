package i18n

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/slok/dothis/internal/active"
	"github.com/slok/dothis/internal/model"
)

// Key identifies a user visible message.
type Key string

var (
	// English is the default language.
	English = language.MustParse("en-US")
	// German is the german language.
	German = language.MustParse("de-DE")

	// Supported are the supported languages, the first one is the fallback.
	Supported = []language.Tag{English, German}

	matcher = language.NewMatcher(Supported)
)

// Match returns the supported language that best matches a language name,
// it falls back to english.
func Match(lang string) language.Tag {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return English
	}

	// Environment values like "de_DE.UTF-8".
	lang, _, _ = strings.Cut(lang, ".")
	lang = strings.ReplaceAll(lang, "_", "-")

	t, err := language.Parse(lang)
	if err != nil {
		return English
	}

	_, idx, conf := matcher.Match(t)
	if conf == language.No {
		return English
	}
	return Supported[idx]
}

// Messages renders user visible messages in a language.
type Messages struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns the messages for the language that best matches lang.
func New(lang string) *Messages {
	tag := Match(lang)
	return &Messages{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(defaultCatalog)),
	}
}

// Language returns the language of the messages.
func (m *Messages) Language() language.Tag { return m.tag }

// Sprintf renders a message.
func (m *Messages) Sprintf(key Key, args ...any) string {
	return m.printer.Sprintf(string(key), args...)
}

// ProgressMessage returns the title and body of a progress notification,
// it can be used as an active.MessageFunc.
func (m *Messages) ProgressMessage(threshold active.Threshold, taskText string, hoursRemaining int) (title, body string) {
	if threshold == active.ThresholdHalf {
		return m.Sprintf(ProgressHalfTitle), m.Sprintf(ProgressHalfBody, taskText, hoursRemaining)
	}
	return m.Sprintf(ProgressThreeQuarterTitle), m.Sprintf(ProgressThreeQuarterBody, taskText, hoursRemaining)
}

// TimeAgo renders the elapsed time since t.
func (m *Messages) TimeAgo(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d >= 24*time.Hour:
		return m.Sprintf(TimeAgoDays, int(d/(24*time.Hour)))
	case d >= time.Hour:
		return m.Sprintf(TimeAgoHours, int(d/time.Hour))
	case d >= time.Minute:
		return m.Sprintf(TimeAgoMinutes, int(d/time.Minute))
	}
	return m.Sprintf(TimeAgoJustNow)
}

// Cooldown renders a cooldown policy.
func (m *Messages) Cooldown(c model.Cooldown) string {
	switch c {
	case model.CooldownNone:
		return m.Sprintf(CooldownNone)
	case model.CooldownDaily:
		return m.Sprintf(CooldownDaily)
	case model.CooldownWeekly:
		return m.Sprintf(CooldownWeekly)
	case model.CooldownMonthly:
		return m.Sprintf(CooldownMonthly)
	}
	return fmt.Sprintf("%sh", c)
}

// TaskType renders a task type.
func (m *Messages) TaskType(t model.TaskType) string {
	if t == model.TaskTypeRepeatable {
		return m.Sprintf(TaskTypeRepeatable)
	}
	return m.Sprintf(TaskTypeOneOff)
}

// Deadline renders a deadline relative to the local day of now.
func (m *Messages) Deadline(deadline, now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	deadline = deadline.In(loc)
	now = now.In(loc)

	deadlineDay := time.Date(deadline.Year(), deadline.Month(), deadline.Day(), 0, 0, 0, 0, loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	days := int(math.Round(deadlineDay.Sub(today).Hours() / 24))

	switch {
	case days < 0:
		return m.Sprintf(DeadlineOverdue, -days)
	case days == 0:
		return m.Sprintf(DeadlineToday)
	case days == 1:
		return m.Sprintf(DeadlineTomorrow)
	case days <= 7:
		return m.Sprintf(DeadlineInDays, days)
	}
	return m.Sprintf(DeadlineDue, deadline.Format(time.DateOnly))
}

// Status renders the availability of a task.
func (m *Messages) Status(s model.TaskStatus, loc *time.Location) string {
	switch s.Kind {
	case model.StatusCooldown:
		if loc == nil {
			loc = time.Local
		}
		return m.Sprintf(StatusCooldown, s.AvailableAt.In(loc).Format("2006-01-02 15:04"))
	case model.StatusCompleted:
		return m.Sprintf(StatusCompleted)
	case model.StatusActive:
		return m.Sprintf(StatusActive)
	}
	return m.Sprintf(StatusAvailable)
}

// Error renders the user visible message of a domain error, unknown errors
// are rendered as they are.
func (m *Messages) Error(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, model.ErrAlreadyExists):
		return m.Sprintf(ErrTaskExists)
	case errors.Is(err, model.ErrReasonRequired):
		return m.Sprintf(ErrPleaseEnterReason)
	case errors.Is(err, model.ErrNoTasksAvailable):
		return m.Sprintf(ErrNoTasksAvailable)
	case errors.Is(err, model.ErrNotAvailable):
		return m.Sprintf(ErrTaskNotAvailable)
	case errors.Is(err, model.ErrNotFound):
		return m.Sprintf(ErrTaskNotFound)
	case errors.Is(err, model.ErrTaskActive):
		return m.Sprintf(ErrCannotChangeActive)
	case errors.Is(err, model.ErrNoSelection):
		return m.Sprintf(ErrNoSelection)
	case errors.Is(err, model.ErrNoActiveTask):
		return m.Sprintf(ErrNoActiveTask)
	}
	return err.Error()
}

var defaultCatalog = func() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(English))
	for _, tr := range translations {
		tag := tr.tag
		for key, msg := range tr.messages {
			var err error
			switch v := msg.(type) {
			case string:
				err = b.SetString(tag, string(key), v)
			case catalog.Message:
				err = b.Set(tag, string(key), v)
			}
			if err != nil {
				panic(fmt.Sprintf("invalid message %q for %s: %s", key, tag, err))
			}
		}
	}
	return b
}()

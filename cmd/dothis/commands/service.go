package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/slok/dothis/internal/app/randomizer"
	"github.com/slok/dothis/internal/conventions"
	"github.com/slok/dothis/internal/i18n"
	"github.com/slok/dothis/internal/model"
	"github.com/slok/dothis/internal/printer"
	"github.com/slok/dothis/internal/storage"
	"github.com/slok/dothis/internal/storage/file"
	"github.com/slok/dothis/internal/storage/memory"
	"github.com/slok/dothis/internal/storage/sqlite"
)

// newRepository returns the repository of the selected storage and its closer.
func (r RootCommand) newRepository(ctx context.Context) (storage.Repository, io.Closer, error) {
	switch r.Storage {
	case conventions.StorageMemory:
		repo, err := memory.NewRepository(memory.RepositoryConfig{Logger: r.Logger})
		if err != nil {
			return nil, nil, err
		}
		return repo, nopCloser{}, nil

	case conventions.StorageFile:
		repo, err := file.NewRepository(file.RepositoryConfig{
			Dir:    conventions.JSONDataDir(r.DataDir),
			Logger: r.Logger,
		})
		if err != nil {
			return nil, nil, err
		}
		return repo, nopCloser{}, nil
	}

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: conventions.DBPath(r.DataDir),
		Logger: r.Logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return repo, repo, nil
}

// messages returns the messages of the selected language.
func (r RootCommand) messages() *i18n.Messages {
	lang := r.Lang
	if lang == "" {
		lang = os.Getenv("LANG")
	}
	return i18n.New(lang)
}

// newService returns a loaded randomizer service, the returned function
// releases the storage.
func (r RootCommand) newService(ctx context.Context, notifier randomizer.Notifier) (*randomizer.Service, func(), error) {
	repo, closer, err := r.newRepository(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("could not create repository: %w", err)
	}
	closeRepo := func() {
		if err := closer.Close(); err != nil {
			r.Logger.Warningf("could not close repository: %s", err)
		}
	}

	svc, err := randomizer.NewService(randomizer.ServiceConfig{
		Repository:  repo,
		Location:    time.Local,
		Notifier:    notifier,
		Messages:    r.messages(),
		SelectDelay: r.SelectDelay,
		Logger:      r.Logger,
	})
	if err != nil {
		closeRepo()
		return nil, nil, fmt.Errorf("could not create service: %w", err)
	}

	if err := svc.Load(ctx); err != nil {
		closeRepo()
		return nil, nil, fmt.Errorf("could not load data: %w", err)
	}

	return svc, closeRepo, nil
}

// newPrinter returns the printer of an output format.
func (r RootCommand) newPrinter(format string, svc *randomizer.Service) printer.Printer {
	if format == formatJSON {
		return printer.NewJSONPrinter(r.Stdout)
	}
	return printer.NewTablePrinter(r.Stdout, svc.Messages(), svc.Location())
}

// printMessage prints a translated message.
func (r RootCommand) printMessage(svc *randomizer.Service, key i18n.Key, args ...any) error {
	p := printer.NewTablePrinter(r.Stdout, svc.Messages(), svc.Location())
	if err := p.PrintMessage(svc.Messages().Sprintf(key, args...)); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}
	return nil
}

// userError prefixes an error with the translated message of its domain error.
func userError(svc *randomizer.Service, err error) error {
	msg := svc.Messages().Error(err)
	if msg == err.Error() {
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

var cooldownValues = []string{
	string(model.CooldownNone),
	string(model.Cooldown1h),
	string(model.Cooldown3h),
	string(model.Cooldown6h),
	string(model.Cooldown12h),
	string(model.CooldownDaily),
	string(model.CooldownWeekly),
	string(model.CooldownMonthly),
}

// parseDeadline parses a YYYY-MM-DD deadline in local time.
func parseDeadline(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := time.ParseInLocation(time.DateOnly, s, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid deadline %q, expected YYYY-MM-DD: %w", s, model.ErrNotValid)
	}
	return &d, nil
}

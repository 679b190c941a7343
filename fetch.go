package stmtfetch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/porticus-lab/go-statement-fetch/pdf"
)

// Credentials is the portal login.
type Credentials struct {
	Username string
	Password string
}

// Validate reports whether both fields are set.
func (c Credentials) Validate() error {
	if c.Username == "" || c.Password == "" {
		return ErrNoCredentials
	}
	return nil
}

// String keeps the password out of logs and error messages.
func (c Credentials) String() string {
	return c.Username + ":********"
}

// Portal is the browser-side half of a run. [*Session] is the production
// implementation.
type Portal interface {
	Login(ctx context.Context, creds Credentials) error
	OpenStatements(ctx context.Context) error
	Rows(ctx context.Context) ([]Row, error)
	Download(ctx context.Context, row Row) (*Download, error)
	Close() error
}

// Archiver receives a copy of every saved statement.
type Archiver interface {
	Archive(ctx context.Context, key string, body []byte) error
}

// Saved describes one statement written to disk.
type Saved struct {
	Statement  Statement
	Path       string
	Size       int
	PDFVersion string
}

// Report summarizes a run.
type Report struct {
	RunID     string
	StartedAt time.Time
	Window    Window
	Dir       string
	Rows      int
	Saved     []Saved
	Skipped   int     // outside the window
	Malformed int     // date text could not be parsed
	Failed    []error // selected statements that were not saved
}

// Fetcher downloads the statements of the trailing year.
type Fetcher struct {
	// Portal is owned by the Fetcher: Run closes it exactly once.
	Portal      Portal
	Credentials Credentials

	// OutputRoot defaults to [DefaultOutputRoot].
	OutputRoot string

	// Archiver is optional.
	Archiver Archiver

	// Now defaults to time.Now.
	Now func() time.Time
}

// Run logs in, reads the statement table and saves every statement whose
// period lies in the trailing year under [OutputDir].
//
// Failing to log in, reach or read the table ends the run. A statement that
// fails to download or save is recorded in the report and the remaining
// rows are still processed; Run then returns an error wrapping
// [ErrIncomplete]. The portal is closed before Run returns.
func (f *Fetcher) Run(ctx context.Context) (report *Report, err error) {
	defer func() {
		if cerr := f.Portal.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("stmtfetch: closing portal: %w", cerr))
		}
	}()

	now := time.Now()
	if f.Now != nil {
		now = f.Now()
	}
	report = &Report{
		RunID:     uuid.NewString(),
		StartedAt: now,
		Window:    TrailingYear(now),
		Dir:       OutputDir(f.OutputRoot, now),
	}
	log := zerolog.Ctx(ctx).With().Str("run_id", report.RunID).Logger()
	ctx = log.WithContext(ctx)

	log.Info().
		Time("from", report.Window.From).
		Time("to", report.Window.To).
		Str("dir", report.Dir).
		Msg("fetching statements")

	if err := f.Portal.Login(ctx, f.Credentials); err != nil {
		return report, fmt.Errorf("logging in: %w", err)
	}
	log.Info().Msg("logged in")

	if err := f.Portal.OpenStatements(ctx); err != nil {
		return report, fmt.Errorf("opening statements: %w", err)
	}
	rows, err := f.Portal.Rows(ctx)
	if err != nil {
		return report, fmt.Errorf("reading statements: %w", err)
	}
	report.Rows = len(rows)
	log.Info().Int("rows", len(rows)).Msg("statement table loaded")

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		st, err := ParseStatement(row)
		if err != nil {
			report.Malformed++
			log.Warn().Err(err).Int("row", row.Index).Msg("skipping row")
			continue
		}
		if !report.Window.Selects(st) {
			report.Skipped++
			log.Debug().Stringer("period", st).Msg("outside window")
			continue
		}
		saved, err := f.save(ctx, report.Dir, st)
		if saved.Path != "" {
			report.Saved = append(report.Saved, saved)
			log.Info().Str("path", saved.Path).Int("bytes", saved.Size).Msg("statement saved")
		}
		if err != nil {
			report.Failed = append(report.Failed, err)
			log.Error().Err(err).Stringer("period", st).Msg("statement failed")
		}
	}

	if len(report.Saved) > 0 {
		if err := WriteManifest(report); err != nil {
			report.Failed = append(report.Failed, err)
		}
	}

	log.Info().
		Int("saved", len(report.Saved)).
		Int("skipped", report.Skipped).
		Int("malformed", report.Malformed).
		Int("failed", len(report.Failed)).
		Msg("run finished")

	if len(report.Failed) > 0 {
		return report, fmt.Errorf("%w: %w", ErrIncomplete, errors.Join(report.Failed...))
	}
	return report, nil
}

// save downloads, checks and writes one statement. An archive failure is
// returned together with the saved file.
func (f *Fetcher) save(ctx context.Context, dir string, st Statement) (Saved, error) {
	dl, err := f.Portal.Download(ctx, st.Row)
	if err != nil {
		return Saved{}, fmt.Errorf("downloading %s: %w", st, err)
	}
	info, err := pdf.Check(dl.Bytes())
	if err != nil {
		return Saved{}, fmt.Errorf("checking %s: %w", st, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Saved{}, fmt.Errorf("creating %s: %w", dir, err)
	}
	dest := filepath.Join(dir, st.FileName())
	if err := dl.WriteToFile(dest, 0o644); err != nil {
		return Saved{}, fmt.Errorf("writing %s: %w", dest, err)
	}
	saved := Saved{Statement: st, Path: dest, Size: dl.Len(), PDFVersion: info.Version}
	if f.Archiver != nil {
		key := path.Join(filepath.Base(dir), st.FileName())
		if err := f.Archiver.Archive(ctx, key, dl.Bytes()); err != nil {
			return saved, fmt.Errorf("archiving %s: %w", key, err)
		}
	}
	return saved, nil
}

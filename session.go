package stmtfetch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
)

// Session drives one browser through the provider's portal.
//
// The portal opens the authenticated account in a new tab after login;
// [Session.Login] adopts that tab and every later call runs in it. A
// Session is meant to be driven by a single goroutine.
//
// Call [Session.Close] when the Session is no longer needed to release
// browser resources.
type Session struct {
	cfg           sessionConfig
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	downloadDir   string

	mu        sync.Mutex
	closed    bool
	tabCtx    context.Context
	tabCancel context.CancelFunc
}

// NewSession launches a browser with the given options.
//
// The browser is started eagerly so launch errors surface here. The caller
// must call [Session.Close] when finished.
func NewSession(opts ...Option) (*Session, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	allocOpts, err := allocatorOptions(cfg)
	if err != nil {
		return nil, err
	}

	downloadDir, err := os.MkdirTemp("", "stmtfetch-*")
	if err != nil {
		return nil, fmt.Errorf("stmtfetch: creating download dir: %w", err)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		os.RemoveAll(downloadDir)
		return nil, fmt.Errorf("stmtfetch: starting browser: %w", err)
	}

	return &Session{
		cfg:           cfg,
		allocCtx:      allocCtx,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		downloadDir:   downloadDir,
	}, nil
}

// Close releases all resources held by the Session, including the
// browser process and its download directory. Close is idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if s.tabCancel != nil {
		s.tabCancel()
	}
	s.browserCancel()
	s.allocCancel()
	if err := os.RemoveAll(s.downloadDir); err != nil {
		return fmt.Errorf("stmtfetch: removing download dir: %w", err)
	}
	return nil
}

// Login opens the login overlay on the landing page, submits creds and
// switches to the account tab the portal opens in response.
func (s *Session) Login(ctx context.Context, creds Credentials) error {
	if err := s.checkClosed(); err != nil {
		return err
	}
	if err := creds.Validate(); err != nil {
		return err
	}
	log := zerolog.Ctx(ctx)
	sel := s.cfg.selectors

	log.Debug().Str("url", s.cfg.portalURL).Msg("opening portal")
	if err := s.run(ctx, s.browserCtx,
		chromedp.Navigate(s.cfg.portalURL),
		chromedp.Click(sel.MyAccount, chromedp.BySearch),
		chromedp.WaitVisible(sel.Username, chromedp.BySearch),
		chromedp.SendKeys(sel.Username, creds.Username, chromedp.BySearch),
		chromedp.SendKeys(sel.Password, creds.Password, chromedp.BySearch),
	); err != nil {
		return fmt.Errorf("stmtfetch: filling login form: %w", err)
	}

	// The expectation must be registered before the click, or a fast
	// portal can open the tab before anyone listens.
	opener := chromedp.FromContext(s.browserCtx).Target.TargetID
	newTab := chromedp.WaitNewTarget(s.browserCtx, func(info *target.Info) bool {
		return info.Type == "page" && info.OpenerID == opener
	})

	log.Debug().Msg("submitting login")
	if err := s.run(ctx, s.browserCtx, chromedp.Click(sel.Login, chromedp.BySearch)); err != nil {
		return fmt.Errorf("stmtfetch: submitting login: %w", err)
	}

	id, err := awaitEvent(ctx, s, newTab, ErrNoNewTab)
	if err != nil {
		return err
	}

	// Attach outside the step timeout: the first Run binds the tab's
	// lifetime to the context it is given.
	tabCtx, tabCancel := chromedp.NewContext(s.browserCtx, chromedp.WithTargetID(id))
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		return fmt.Errorf("stmtfetch: attaching account tab: %w", err)
	}
	if err := s.run(ctx, tabCtx, chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		tabCancel()
		return fmt.Errorf("stmtfetch: loading account tab: %w", err)
	}

	s.mu.Lock()
	if s.tabCancel != nil {
		s.tabCancel()
	}
	s.tabCtx, s.tabCancel = tabCtx, tabCancel
	s.mu.Unlock()

	log.Debug().Str("target", string(id)).Msg("account tab ready")
	return nil
}

// OpenStatements navigates the account tab to the fully expanded
// statement table.
//
// The portal gives no readiness signal once the table is expanded, so the
// configured settle delay is waited out before the table is looked up.
func (s *Session) OpenStatements(ctx context.Context) error {
	tab, err := s.tab()
	if err != nil {
		return err
	}
	sel := s.cfg.selectors
	zerolog.Ctx(ctx).Debug().Dur("settle", s.cfg.settle).Msg("expanding statement table")
	if err := s.run(ctx, tab,
		chromedp.Click(sel.ViewStatements, chromedp.BySearch),
		chromedp.Click(sel.ViewAll, chromedp.BySearch),
		chromedp.Sleep(s.cfg.settle),
		chromedp.WaitVisible(sel.Table, chromedp.BySearch),
	); err != nil {
		return fmt.Errorf("stmtfetch: opening statements: %w", err)
	}
	return nil
}

// Rows returns the first-cell text of every body row of the statement
// table, in table order.
func (s *Session) Rows(ctx context.Context) ([]Row, error) {
	tab, err := s.tab()
	if err != nil {
		return nil, err
	}
	var texts []string
	if err := s.run(ctx, tab, chromedp.Evaluate(rowsScript(s.cfg.selectors.rows()), &texts)); err != nil {
		return nil, fmt.Errorf("stmtfetch: reading statement table: %w", err)
	}
	rows := make([]Row, len(texts))
	for i, text := range texts {
		rows[i] = Row{Index: i, Text: text}
	}
	return rows, nil
}

// Download clicks the link in the second cell of row and returns the file
// the browser downloads in response.
func (s *Session) Download(ctx context.Context, row Row) (*Download, error) {
	tab, err := s.tab()
	if err != nil {
		return nil, err
	}

	type outcome struct {
		guid string
		name string
		err  error
	}
	done := make(chan outcome, 1)

	listenCtx, stopListening := context.WithCancel(tab)
	defer stopListening()

	// Listener callbacks run sequentially, so names needs no lock.
	names := make(map[string]string)
	chromedp.ListenTarget(listenCtx, func(ev any) {
		switch ev := ev.(type) {
		case *browser.EventDownloadWillBegin:
			names[ev.GUID] = ev.SuggestedFilename
		case *browser.EventDownloadProgress:
			var o outcome
			switch ev.State {
			case browser.DownloadProgressStateCompleted:
				o = outcome{guid: ev.GUID, name: names[ev.GUID]}
			case browser.DownloadProgressStateCanceled:
				o = outcome{guid: ev.GUID, err: ErrDownloadCanceled}
			default:
				return
			}
			select {
			case done <- o:
			default:
			}
		}
	})

	if err := s.run(ctx, tab,
		browser.SetDownloadBehavior(browser.SetDownloadBehaviorBehaviorAllowAndName).
			WithDownloadPath(s.downloadDir).
			WithEventsEnabled(true),
		chromedp.Click(s.cfg.selectors.rowLink(row.Index), chromedp.BySearch),
	); err != nil {
		return nil, fmt.Errorf("stmtfetch: clicking statement link in row %d: %w", row.Index, err)
	}

	o, err := awaitEvent[outcome](ctx, s, done, ErrDownloadTimeout)
	if err == nil {
		err = o.err
	}
	if err != nil {
		return nil, fmt.Errorf("stmtfetch: row %d: %w", row.Index, err)
	}

	// With AllowAndName the browser stores the file under its GUID.
	path := filepath.Join(s.downloadDir, o.guid)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("stmtfetch: reading download: %w", err)
	}
	if err := os.Remove(path); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("path", path).Msg("leaving downloaded file behind")
	}
	return &Download{data: data, suggested: o.name}, nil
}

// run executes actions in cdpCtx, bounded by the step timeout and by ctx.
// cdpCtx must be one of the session's chromedp contexts.
func (s *Session) run(ctx, cdpCtx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if s.cfg.timeout > 0 {
		runCtx, cancel = context.WithTimeout(cdpCtx, s.cfg.timeout)
	} else {
		runCtx, cancel = context.WithCancel(cdpCtx)
	}
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}

// awaitEvent blocks until an event arrives on events, the step timeout
// fires, ctx is done or the browser goes away. A closed events channel is
// reported as timeoutErr.
func awaitEvent[T any](ctx context.Context, s *Session, events <-chan T, timeoutErr error) (T, error) {
	var zero T
	var timeout <-chan time.Time
	if s.cfg.timeout > 0 {
		t := time.NewTimer(s.cfg.timeout)
		defer t.Stop()
		timeout = t.C
	}
	select {
	case v, ok := <-events:
		if !ok {
			return zero, timeoutErr
		}
		return v, nil
	case <-timeout:
		return zero, timeoutErr
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-s.browserCtx.Done():
		return zero, fmt.Errorf("stmtfetch: browser closed: %w", context.Cause(s.browserCtx))
	}
}

func (s *Session) tab() (context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if s.tabCtx == nil {
		return nil, ErrNotLoggedIn
	}
	return s.tabCtx, nil
}

func (s *Session) checkClosed() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// rowsScript returns a script evaluating to the first-cell text of every
// row matched by rowsXPath.
func rowsScript(rowsXPath string) string {
	return fmt.Sprintf(`(() => {
	const rows = document.evaluate(%s, document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
	const texts = [];
	for (let i = 0; i < rows.snapshotLength; i++) {
		const cell = rows.snapshotItem(i).cells[0];
		texts.push(cell ? cell.innerText : "");
	}
	return texts;
})()`, strconv.Quote(rowsXPath))
}

package stmtfetch

import (
	"fmt"

	"github.com/chromedp/chromedp"
	"github.com/go-rod/rod/lib/launcher"
)

// allocatorOptions builds the Chrome command line for cfg. When no
// executable is configured and auto-download is on, an installed browser is
// preferred; otherwise a Chromium build is fetched into the rod cache
// (~/.cache/rod/browser on Unix).
func allocatorOptions(cfg sessionConfig) ([]chromedp.ExecAllocatorOption, error) {
	execPath := cfg.chromePath
	if execPath == "" && cfg.autoDownload {
		if path, found := launcher.LookPath(); found {
			execPath = path
		} else {
			path, err := launcher.NewBrowser().Get()
			if err != nil {
				return nil, fmt.Errorf("stmtfetch: downloading browser: %w", err)
			}
			execPath = path
		}
	}

	// The portal is driven headed unless asked otherwise; "new" selects
	// Chrome's full headless mode, which still fires download events.
	var headless any = false
	if cfg.headless {
		headless = "new"
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("no-first-run", true),
	)
	if execPath != "" {
		opts = append(opts, chromedp.ExecPath(execPath))
	}
	if cfg.noSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	return opts, nil
}

package stmtfetch

import "errors"

// Sentinel errors returned by the library.
var (
	// ErrClosed is returned when attempting to use a closed [Session].
	ErrClosed = errors.New("stmtfetch: session is closed")

	// ErrNoCredentials is returned when the username or password is empty.
	ErrNoCredentials = errors.New("stmtfetch: username and password are required")

	// ErrNotLoggedIn is returned by navigation and download calls made
	// before [Session.Login] has adopted the account tab.
	ErrNotLoggedIn = errors.New("stmtfetch: not logged in")

	// ErrNoNewTab is returned when the portal does not open the account
	// tab after the login form is submitted.
	ErrNoNewTab = errors.New("stmtfetch: account tab did not open")

	// ErrDownloadTimeout is returned when a clicked statement link does not
	// finish downloading within the step timeout.
	ErrDownloadTimeout = errors.New("stmtfetch: download did not complete")

	// ErrDownloadCanceled is returned when the browser reports a canceled download.
	ErrDownloadCanceled = errors.New("stmtfetch: download canceled by browser")

	// ErrDateRange is returned for statement rows whose date text is not a
	// "MM/DD/YY - MM/DD/YY" range.
	ErrDateRange = errors.New("stmtfetch: malformed statement date range")

	// ErrIncomplete is returned by [Fetcher.Run] when one or more selected
	// statements could not be saved.
	ErrIncomplete = errors.New("stmtfetch: some statements were not saved")
)

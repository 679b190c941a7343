// Package stmtfetch downloads billing statements from an energy provider's
// customer portal by driving Chrome over the DevTools Protocol.
//
// A run logs in, opens the full statement history, and saves every statement
// whose billing period lies within the twelve months before today:
//
//	s, err := stmtfetch.NewSession(stmtfetch.WithHeadless(true))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	f := &stmtfetch.Fetcher{
//	    Portal:      s, // closed by Run
//	    Credentials: stmtfetch.Credentials{Username: user, Password: pass},
//	}
//	report, err := f.Run(ctx)
//
// Files are written to "<OutputRoot>/<Y>-<M>-<D>/" (today's date, not zero
// padded) and named after the billing period:
//
//	Billing History/2025-1-1/2024-12-01_to_2024-12-31_Statement.pdf
//
// together with a manifest.yaml listing what the run saved.
//
// The pieces can also be used on their own. [ParseStatement] reads a row's
// "MM/DD/YY - MM/DD/YY" text, [TrailingYear] builds the selection window and
// [Session] exposes each portal step:
//
//	err  = s.Login(ctx, creds)
//	err  = s.OpenStatements(ctx)
//	rows, err := s.Rows(ctx)
//	dl, err := s.Download(ctx, rows[0])
//	err  = dl.WriteToFile("statement.pdf", 0o644)
//
// Selectors for a portal with a different layout are supplied with
// [WithSelectors]. Chrome or Chromium must be available in PATH, or use
// [WithAutoDownload]:
//
//	s, err := stmtfetch.NewSession(stmtfetch.WithAutoDownload())
package stmtfetch

package stmtfetch

import "fmt"

// Selectors locates the portal elements the session interacts with. Every
// selector is evaluated with DOM search, so CSS and XPath are both accepted.
type Selectors struct {
	// MyAccount opens the login overlay on the landing page.
	MyAccount string

	// Username and Password are the login text fields.
	Username string
	Password string

	// Login submits the overlay. The portal answers by opening a new tab.
	Login string

	// ViewStatements is the "View All Statements" link on the account tab.
	ViewStatements string

	// ViewAll expands the statement list to a single unpaginated table.
	// The portal renders several links of that name; the second one
	// controls the statement table.
	ViewAll string

	// Table is the statement table. It must be XPath: row links are
	// addressed relative to it.
	Table string
}

// DefaultSelectors returns the selectors matching the provider's portal.
func DefaultSelectors() Selectors {
	return Selectors{
		MyAccount:      `//button[contains(normalize-space(.), 'My Account')]`,
		Username:       `//input[@name='username' or @id='username' or @aria-label='username']`,
		Password:       `//input[@name='password' or @id='password' or @aria-label='password']`,
		Login:          `//button[normalize-space(.)='Login'] | //input[@type='submit' and @value='Login']`,
		ViewStatements: `//a[contains(normalize-space(.), 'View All Statements')]`,
		ViewAll:        `(//a[contains(normalize-space(.), 'View All')])[2]`,
		Table:          `//table[@id="row"]`,
	}
}

// resolved returns a copy with empty fields replaced by defaults.
func (s Selectors) resolved() Selectors {
	d := DefaultSelectors()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&s.MyAccount, d.MyAccount)
	fill(&s.Username, d.Username)
	fill(&s.Password, d.Password)
	fill(&s.Login, d.Login)
	fill(&s.ViewStatements, d.ViewStatements)
	fill(&s.ViewAll, d.ViewAll)
	fill(&s.Table, d.Table)
	return s
}

// rows returns the XPath of the statement table's body rows.
func (s Selectors) rows() string {
	return s.Table + "/tbody/tr"
}

// rowLink returns the XPath of the anchor in the second cell of the
// 0-indexed table body row.
func (s Selectors) rowLink(index int) string {
	return fmt.Sprintf("(%s)[%d]/td[2]//a", s.rows(), index+1)
}

package db

import (
	"context"
	"strings"

	"github.com/dtnitsch/brew-crawler/internal/common"
	"github.com/dtnitsch/brew-crawler/models"
	"github.com/dtnitsch/brew-crawler/pkg/store"
	"github.com/urfave/cli/v2"
)

// OpenStore opens the store named by --db, found on the command or any parent.
func OpenStore(c *cli.Context) (store.Store, error) {
	var addr string
	for _, ctx := range c.Lineage() {
		if ctx.IsSet("db") {
			addr = ctx.String("db")
			break
		}
	}
	if addr == "" {
		addr = c.String("db")
	}

	st, err := store.Open(c.Context, addr)
	if err != nil {
		return nil, cli.Exit("Error: failed to open page store: "+err.Error(), 2)
	}
	return st, nil
}

// PagesByStyle returns stored pages whose style contains style, ignoring case.
// An empty style returns every page. The SQLite store filters in SQL.
func PagesByStyle(ctx context.Context, st store.Store, style string) ([]*models.PageRecord, error) {
	if s, ok := st.(*store.SQLiteStore); ok {
		if style == "" {
			return s.AllPages(ctx)
		}
		return s.PagesByStyle(ctx, style)
	}

	all, err := st.RetrieveAllPages(ctx)
	if err != nil || style == "" {
		return all, err
	}
	query := strings.ToLower(style)
	var out []*models.PageRecord
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.Fields.String(models.StyleKey)), query) {
			out = append(out, p)
		}
	}
	return out, nil
}

// LookupPage finds a record by the URL as given, falling back to its canonical form.
func LookupPage(ctx context.Context, st store.Store, rawURL string) (*models.PageRecord, error) {
	rec, err := st.RetrievePage(ctx, rawURL)
	if err == nil {
		return rec, nil
	}
	canonical, cerr := common.CanonicalURL("", common.SanitizeURL(rawURL))
	if cerr != nil || canonical == rawURL {
		return nil, err
	}
	return st.RetrievePage(ctx, canonical)
}

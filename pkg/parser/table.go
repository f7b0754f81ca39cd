package parser

import (
	"github.com/PuerkitoBio/goquery"
)

// Table is an HTML table split into header titles and body cells.
type Table struct {
	Headers []string
	Rows    [][]*Node
}

// ExtractTable reads the first table at or below n. Headers come from thead th cells,
// falling back to the first row. Returns nil when n holds no table content.
func ExtractTable(n *Node) *Table {
	if n == nil {
		return nil
	}
	s := n.sel
	if goquery.NodeName(s) != "table" {
		s = s.Find("table").First()
		if s.Length() == 0 {
			return nil
		}
	}

	var headers []string
	s.Find("thead tr th").Each(func(i int, th *goquery.Selection) {
		headers = append(headers, normalizeText(th.Text()))
	})

	// Fallback: first row
	bodyRows := s.Find("tbody tr")
	if len(headers) == 0 {
		first := s.Find("tr").First()
		first.Find("th,td").Each(func(i int, cell *goquery.Selection) {
			headers = append(headers, normalizeText(cell.Text()))
		})
		bodyRows = bodyRows.NotNodes(first.Nodes...)
	}

	var rows [][]*Node
	bodyRows.Each(func(i int, tr *goquery.Selection) {
		var row []*Node
		tr.Find("td").Each(func(j int, td *goquery.Selection) {
			row = append(row, &Node{sel: td})
		})
		if len(row) > 0 {
			rows = append(rows, row)
		}
	})

	if len(headers) == 0 && len(rows) == 0 {
		return nil
	}

	return &Table{
		Headers: headers,
		Rows:    rows,
	}
}

// Records zips each body row with the header titles. Columns without a title are skipped.
// cellText chooses how a cell is read; nil means Node.Text.
func (t *Table) Records(cellText func(*Node) string) []any {
	if cellText == nil {
		cellText = (*Node).Text
	}

	records := make([]any, 0, len(t.Rows))
	for _, row := range t.Rows {
		record := make(map[string]any, len(t.Headers))
		for i, cell := range row {
			if i >= len(t.Headers) || t.Headers[i] == "" {
				continue
			}
			record[t.Headers[i]] = cellText(cell)
		}
		if len(record) > 0 {
			records = append(records, record)
		}
	}
	return records
}

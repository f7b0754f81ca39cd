package aggregator

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/dtnitsch/brew-crawler/models"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by the recipe command.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Render writes v in the given format. Tables are only defined for
// *models.AverageRecipe and []models.StyleCount.
func Render(w io.Writer, format string, v any) error {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return enc.Close()
	case FormatTable, "":
		switch t := v.(type) {
		case *models.AverageRecipe:
			WriteReport(w, t)
		case []models.StyleCount:
			WriteStyles(w, t)
		default:
			return fmt.Errorf("no table layout for %T", v)
		}
		return nil
	}
	return fmt.Errorf("unknown format %q", format)
}

// WriteReport prints the rankings and the synthesized recipe.
func WriteReport(w io.Writer, r *models.AverageRecipe) {
	style := r.Style
	if style == "" {
		style = "all styles"
	}
	fmt.Fprintf(w, "Style: %s (%d recipes, scaled to %s gal)\n\n", style, r.RecipeCount, formatAmount(r.DesiredYield))

	writeRanking(w, "Grains", r.Grains, true)
	writeRanking(w, "Hops", r.Hops, false)
	writeRanking(w, "Yeasts", r.Yeasts, false)

	t := newTable(w)
	t.SetTitle("Average Recipe")
	t.AppendHeader(table.Row{"Ingredient", "Amount"})
	for _, g := range r.Recipe.Grains {
		t.AppendRow(table.Row{g.Name, amountCell(g)})
	}
	if len(r.Recipe.Grains) > 0 && len(r.Recipe.Hops) > 0 {
		t.AppendSeparator()
	}
	for _, h := range r.Recipe.Hops {
		t.AppendRow(table.Row{h.Name, ""})
	}
	if r.Recipe.Yeast != "" {
		t.AppendSeparator()
		t.AppendRow(table.Row{r.Recipe.Yeast, ""})
	}
	t.Render()

	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "WARNING: %s\n", warning)
	}
}

// WriteStyles prints the list-styles ranking.
func WriteStyles(w io.Writer, styles []models.StyleCount) {
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Style", "Recipes"})
	for i, s := range styles {
		t.AppendRow(table.Row{i + 1, s.Style, s.Count})
	}
	t.Render()
}

func writeRanking(w io.Writer, title string, items []models.RankedIngredient, withAmount bool) {
	t := newTable(w)
	t.SetTitle(title)
	header := table.Row{"#", "Name", "Count"}
	if withAmount {
		header = append(header, "Avg Amount")
	}
	t.AppendHeader(header)
	for i, item := range items {
		row := table.Row{i + 1, item.Name, item.Count}
		if withAmount {
			row = append(row, amountCell(item))
		}
		t.AppendRow(row)
	}
	t.Render()
	fmt.Fprintln(w)
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

func amountCell(item models.RankedIngredient) string {
	if item.Unit == "" {
		return ""
	}
	return formatAmount(item.AverageAmount) + " " + item.Unit
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

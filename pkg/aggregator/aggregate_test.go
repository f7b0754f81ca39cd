package aggregator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/dtnitsch/brew-crawler/models"
	"github.com/dtnitsch/brew-crawler/pkg/normalizer"
	"github.com/google/go-cmp/cmp"
)

type fakePages struct {
	pages []*models.PageRecord
	err   error
}

func (f *fakePages) RetrieveAllPages(context.Context) ([]*models.PageRecord, error) {
	return f.pages, f.err
}

func grain(name, amount string) map[string]any {
	return map[string]any{models.FermentableKey: name, models.AmountKey: amount}
}

func hop(name, amount, boil string) map[string]any {
	return map[string]any{models.VarietyKey: name, models.AmountKey: amount, models.TimeKey: boil}
}

func recipe(url, style, yield string, grains, hops []any, yeasts ...any) *models.PageRecord {
	return &models.PageRecord{
		URL: url,
		Fields: models.Fields{
			models.StyleKey:  style,
			models.YieldKey:  yield,
			models.GrainsKey: grains,
			models.HopsKey:   hops,
			models.YeastsKey: yeasts,
		},
	}
}

func testPages() *fakePages {
	return &fakePages{pages: []*models.PageRecord{
		recipe("https://example.com/1", "American IPA", "5 gal",
			[]any{grain("Pale 2-Row", "10 lb"), grain("Crystal 40L", "1 lb"), grain("Maris Otter", "2 lb"), grain("Gypsum", "1 tsp")},
			[]any{hop("Cascade", "1 oz", "60 min"), hop("Centennial", "1 oz", "15 min"), hop("Citra", "1 oz", "0 min")},
			"Safale US-05"),
		recipe("https://example.com/2", "Session IPA", "2.5 gal",
			[]any{grain("Pale 2-Row", "5 lb"), grain("Munich Malt", "1 lb")},
			[]any{hop("Cascade", "0.5 oz", "60 min"), hop("Citra", "0.5 oz", "5 min")},
			"Safale US-05"),
		recipe("https://example.com/3", "Dry Stout", "5 gal",
			[]any{grain("Roasted Barley", "1 lb")},
			[]any{hop("East Kent Goldings", "1 oz", "60 min")},
			"Wyeast 1084"),
		{URL: "https://example.com/search", Fields: models.Fields{}},
	}}
}

func newTestAggregator(t *testing.T, pages PageSource) *Aggregator {
	t.Helper()
	norm, err := normalizer.New(nil, nil)
	if err != nil {
		t.Fatalf("normalizer.New() failed: %v", err)
	}
	return New(pages, norm, nil)
}

func TestGenerateAverageRecipe(t *testing.T) {
	a := newTestAggregator(t, testPages())

	got, err := a.GenerateAverageRecipe(context.Background(), "ipa", 5)
	if err != nil {
		t.Fatalf("GenerateAverageRecipe() failed: %v", err)
	}

	if got.RecipeCount != 2 {
		t.Errorf("RecipeCount = %d, want 2", got.RecipeCount)
	}

	wantGrains := []models.RankedIngredient{
		{Name: "Pale 2-Row", Count: 2, AverageAmount: 10, Unit: "lbs"},
		{Name: "Crystal 40L", Count: 1, AverageAmount: 1, Unit: "lbs"},
		{Name: "Maris Otter", Count: 1, AverageAmount: 2, Unit: "lbs"},
		{Name: "Munich", Count: 1, AverageAmount: 2, Unit: "lbs"},
	}
	if diff := cmp.Diff(wantGrains, got.Grains); diff != "" {
		t.Errorf("Grains mismatch (-want +got):\n%s", diff)
	}

	var hopNames []string
	for _, h := range got.Recipe.Hops {
		hopNames = append(hopNames, h.Name)
	}
	if diff := cmp.Diff([]string{"Cascade", "Citra", "Centennial"}, hopNames); diff != "" {
		t.Errorf("Recipe.Hops mismatch (-want +got):\n%s", diff)
	}
	if got.Recipe.Yeast != "Safale US-05" {
		t.Errorf("Recipe.Yeast = %q, want %q", got.Recipe.Yeast, "Safale US-05")
	}
	if len(got.Recipe.Grains) != 4 {
		t.Errorf("len(Recipe.Grains) = %d, want 4", len(got.Recipe.Grains))
	}
	if !got.Sufficient {
		t.Errorf("Sufficient = false, warnings = %v", got.Warnings)
	}
}

func TestGenerateAverageRecipe_Top(t *testing.T) {
	a := newTestAggregator(t, testPages()).WithTop(2, 1)

	got, err := a.GenerateAverageRecipe(context.Background(), "IPA", 5)
	if err != nil {
		t.Fatalf("GenerateAverageRecipe() failed: %v", err)
	}
	if len(got.Recipe.Grains) != 2 || len(got.Recipe.Hops) != 1 {
		t.Errorf("recipe has %d grains and %d hops, want 2 and 1", len(got.Recipe.Grains), len(got.Recipe.Hops))
	}
}

func TestGenerateAverageRecipe_Insufficient(t *testing.T) {
	pages := &fakePages{pages: []*models.PageRecord{
		recipe("https://example.com/1", "Pilsner", "5 gal",
			[]any{grain("Pilsner Malt", "9 lb"), grain("Munich Malt", "1 lb")},
			[]any{hop("Saaz", "2 oz", "60 min"), hop("Hallertau", "1 oz", "15 min"), hop("Tettnang", "1 oz", "5 min")},
			"Wyeast 2124"),
	}}
	a := newTestAggregator(t, pages)

	got, err := a.GenerateAverageRecipe(context.Background(), "pilsner", 5)
	if err != nil {
		t.Fatalf("GenerateAverageRecipe() failed: %v", err)
	}
	if got.Sufficient {
		t.Error("Sufficient = true with 2 distinct grains, want false")
	}
	if len(got.Grains) != 2 {
		t.Errorf("len(Grains) = %d, want the partial ranking of 2", len(got.Grains))
	}
	if len(got.Warnings) != 1 || !strings.Contains(got.Warnings[0], "2 distinct grains") {
		t.Errorf("Warnings = %v, want one grain warning", got.Warnings)
	}

	var buf bytes.Buffer
	WriteReport(&buf, got)
	for _, want := range []string{"Pilsner", "Munich", "WARNING: insufficient data"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("report missing %q:\n%s", want, buf.String())
		}
	}
}

func TestGenerateAverageRecipe_AllStyles(t *testing.T) {
	a := newTestAggregator(t, testPages())

	got, err := a.GenerateAverageRecipe(context.Background(), "", 5)
	if err != nil {
		t.Fatalf("GenerateAverageRecipe() failed: %v", err)
	}
	if got.RecipeCount != 3 {
		t.Errorf("RecipeCount = %d, want 3", got.RecipeCount)
	}
	if got.Recipe.Yeast != "Safale US-05" {
		t.Errorf("Recipe.Yeast = %q, want %q", got.Recipe.Yeast, "Safale US-05")
	}

	var buf bytes.Buffer
	WriteReport(&buf, got)
	if !strings.Contains(buf.String(), "Style: all styles (3 recipes") {
		t.Errorf("report missing all-styles header:\n%s", buf.String())
	}
}

func TestGenerateAverageRecipe_NoMatch(t *testing.T) {
	a := newTestAggregator(t, testPages())

	got, err := a.GenerateAverageRecipe(context.Background(), "lager", 5)
	if err != nil {
		t.Fatalf("GenerateAverageRecipe() failed: %v", err)
	}
	if got.RecipeCount != 0 || got.Sufficient {
		t.Errorf("RecipeCount = %d, Sufficient = %v, want 0 and false", got.RecipeCount, got.Sufficient)
	}
}

func TestGenerateAverageRecipe_StoreError(t *testing.T) {
	a := newTestAggregator(t, &fakePages{err: errors.New("connection refused")})

	if _, err := a.GenerateAverageRecipe(context.Background(), "ipa", 5); err == nil {
		t.Error("GenerateAverageRecipe() returned nil error")
	}
	if _, err := a.ListStyles(context.Background()); err == nil {
		t.Error("ListStyles() returned nil error")
	}
}

func TestScaleFactor(t *testing.T) {
	tests := []struct {
		declared string
		desired  float64
		want     float64
	}{
		{"5 gal", 5, 1},
		{"2.5 gallons", 5, 2},
		{"10 gal", 5, 0.5},
		{"", 5, 1},
		{"about five", 5, 1},
		{"10 lb", 5, 1},
		{"5 gal", 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.declared, func(t *testing.T) {
			if got := scaleFactor(tt.declared, tt.desired); got != tt.want {
				t.Errorf("scaleFactor(%q, %v) = %v, want %v", tt.declared, tt.desired, got, tt.want)
			}
		})
	}
}

func TestListStyles(t *testing.T) {
	pages := testPages()
	pages.pages = append(pages.pages, recipe("https://example.com/4", "Dry Stout", "5 gal", nil, nil))
	a := newTestAggregator(t, pages)

	got, err := a.ListStyles(context.Background())
	if err != nil {
		t.Fatalf("ListStyles() failed: %v", err)
	}
	want := []models.StyleCount{
		{Style: "Dry Stout", Count: 2},
		{Style: "American IPA", Count: 1},
		{Style: "Session IPA", Count: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ListStyles() mismatch (-want +got):\n%s", diff)
	}
}

func TestRender(t *testing.T) {
	a := newTestAggregator(t, testPages())
	r, err := a.GenerateAverageRecipe(context.Background(), "ipa", 5)
	if err != nil {
		t.Fatalf("GenerateAverageRecipe() failed: %v", err)
	}

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Render(&buf, FormatJSON, r); err != nil {
			t.Fatalf("Render() failed: %v", err)
		}
		var decoded models.AverageRecipe
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not JSON: %v", err)
		}
		if decoded.Recipe.Yeast != "Safale US-05" {
			t.Errorf("recipe.yeast = %q, want %q", decoded.Recipe.Yeast, "Safale US-05")
		}
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Render(&buf, FormatYAML, r); err != nil {
			t.Fatalf("Render() failed: %v", err)
		}
		if !strings.Contains(buf.String(), "style: ipa") {
			t.Errorf("YAML missing style:\n%s", buf.String())
		}
	})

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Render(&buf, FormatTable, r); err != nil {
			t.Fatalf("Render() failed: %v", err)
		}
		for _, want := range []string{"Average Recipe", "Pale 2-Row", "10.00 lbs", "Safale US-05"} {
			if !strings.Contains(buf.String(), want) {
				t.Errorf("table missing %q", want)
			}
		}
		if strings.Contains(buf.String(), "WARNING") {
			t.Error("sufficient report contains a warning")
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if err := Render(&bytes.Buffer{}, "xml", r); err == nil {
			t.Error("Render(xml) returned nil error")
		}
		if err := Render(&bytes.Buffer{}, FormatTable, 42); err == nil {
			t.Error("Render(table, int) returned nil error")
		}
	})
}

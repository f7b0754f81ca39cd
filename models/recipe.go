package models

// IngredientKind separates fermentables from hops after normalization.
type IngredientKind string

const (
	KindGrain IngredientKind = "grain"
	KindHop   IngredientKind = "hop"
)

// Ingredient is a normalized grain or hop entry.
type Ingredient struct {
	Kind     IngredientKind `json:"kind" yaml:"kind"`
	Name     string         `json:"name" yaml:"name"`
	Amount   string         `json:"amount,omitempty" yaml:"amount,omitempty"`
	Quantity float64        `json:"quantity,omitempty" yaml:"quantity,omitempty"`
	Unit     string         `json:"unit,omitempty" yaml:"unit,omitempty"`
	BoilTime string         `json:"boil_time,omitempty" yaml:"boil_time,omitempty"`
}

// RankedIngredient is one row of a frequency ranking.
type RankedIngredient struct {
	Name          string  `json:"name" yaml:"name"`
	Count         int     `json:"count" yaml:"count"`
	AverageAmount float64 `json:"average_amount,omitempty" yaml:"average_amount,omitempty"`
	Unit          string  `json:"unit,omitempty" yaml:"unit,omitempty"`
}

// SynthesizedRecipe is the "average" recipe built from the top ranked entries.
type SynthesizedRecipe struct {
	Grains []RankedIngredient `json:"grains" yaml:"grains"`
	Hops   []RankedIngredient `json:"hops" yaml:"hops"`
	Yeast  string             `json:"yeast,omitempty" yaml:"yeast,omitempty"`
}

// AverageRecipe is the result of aggregating every stored recipe of a style.
type AverageRecipe struct {
	Style        string             `json:"style" yaml:"style"`
	DesiredYield float64            `json:"desired_yield_gal" yaml:"desired_yield_gal"`
	RecipeCount  int                `json:"recipe_count" yaml:"recipe_count"`
	Grains       []RankedIngredient `json:"grains" yaml:"grains"`
	Hops         []RankedIngredient `json:"hops" yaml:"hops"`
	Yeasts       []RankedIngredient `json:"yeasts" yaml:"yeasts"`
	Recipe       SynthesizedRecipe  `json:"recipe" yaml:"recipe"`
	Sufficient   bool               `json:"sufficient" yaml:"sufficient"`
	Warnings     []string           `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// StyleCount is one row of the list-styles output.
type StyleCount struct {
	Style string `json:"style" yaml:"style"`
	Count int    `json:"count" yaml:"count"`
}

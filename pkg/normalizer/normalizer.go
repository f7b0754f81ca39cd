// Package normalizer turns scraped ingredient entries, either table rows or
// free-text lines, into canonical named amounts.
package normalizer

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
	"github.com/dtnitsch/brew-crawler/models"
)

const (
	fuzzyMinLength = 6
	fuzzyThreshold = 0.94
)

var (
	grainNameKeys = []string{models.FermentableKey, "Name", "Grain", "Ingredient"}
	hopNameKeys   = []string{models.VarietyKey, "Name", "Hop"}
	yeastNameKeys = []string{"Name", "Yeast", "Strain"}
)

// Normalizer applies the exclusion list, hop detection and grain aliases.
type Normalizer struct {
	logger       *slog.Logger
	exclusions   []string
	hopVarieties map[string]bool
	fuzzyHops    []string
	aliases      []aliasRule
}

// New builds a Normalizer from the defaults extended by cfg, which may be nil.
func New(cfg *models.VocabularyConfig, logger *slog.Logger) (*Normalizer, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg == nil {
		cfg = &models.VocabularyConfig{}
	}

	n := &Normalizer{
		logger:       logger,
		hopVarieties: make(map[string]bool),
	}

	for _, e := range append(append([]string{}, DefaultExclusions...), cfg.Exclusions...) {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			n.exclusions = append(n.exclusions, e)
		}
	}

	for _, h := range append(append([]string{}, DefaultHopVarieties...), cfg.HopVarieties...) {
		h = lettersOnly(h)
		if h == "" || n.hopVarieties[h] {
			continue
		}
		n.hopVarieties[h] = true
		if len(h) >= fuzzyMinLength {
			n.fuzzyHops = append(n.fuzzyHops, h)
		}
	}

	custom, err := compileAliases(cfg.GrainAliases)
	if err != nil {
		return nil, err
	}
	n.aliases = append(custom, defaultRules...)

	return n, nil
}

// IsJunk reports whether text names a non-ingredient addition.
func (n *Normalizer) IsJunk(text string) bool {
	lower := strings.ToLower(text)
	for _, e := range n.exclusions {
		if strings.Contains(lower, e) {
			return true
		}
	}
	return false
}

// GrainName canonicalizes a fermentable name with the configured aliases.
func (n *Normalizer) GrainName(name string) string {
	return grainName(name, n.aliases)
}

// IsHopVariety reports whether a single token names a known hop.
func (n *Normalizer) IsHopVariety(token string) bool {
	word := lettersOnly(token)
	if word == "" {
		return false
	}
	if n.hopVarieties[word] {
		return true
	}
	if len(word) < fuzzyMinLength {
		return false
	}
	for _, h := range n.fuzzyHops {
		if matchr.JaroWinkler(word, h, false) >= fuzzyThreshold {
			return true
		}
	}
	return false
}

// NormalizeIngredients normalizes a recipe's grain and hop lists. Grain entries
// that mention a hop variety are moved to the hop list. Unusable entries are dropped.
func (n *Normalizer) NormalizeIngredients(grains, hops []any, scale float64) ([]models.Ingredient, []models.Ingredient) {
	var outGrains, outHops []models.Ingredient

	for _, elem := range grains {
		ing, ok := n.normalize(elem, models.KindGrain, scale)
		if !ok {
			continue
		}
		if ing.Kind == models.KindHop {
			outHops = append(outHops, ing)
		} else {
			outGrains = append(outGrains, ing)
		}
	}
	for _, elem := range hops {
		if ing, ok := n.normalize(elem, models.KindHop, scale); ok {
			outHops = append(outHops, ing)
		}
	}

	return outGrains, outHops
}

// NormalizeYeasts returns the cleaned yeast names of a recipe.
func (n *Normalizer) NormalizeYeasts(yeasts []any) []string {
	var out []string
	for _, elem := range yeasts {
		var name string
		switch v := elem.(type) {
		case string:
			name = v
		default:
			m := asMap(elem)
			if m == nil {
				continue
			}
			if name = lookup(m, yeastNameKeys); name == "" {
				name = joinValues(m)
			}
		}

		name = NormalizeYeastName(name)
		if len(name) <= 1 || n.IsJunk(name) {
			continue
		}
		out = append(out, name)
	}
	return out
}

func (n *Normalizer) normalize(elem any, kind models.IngredientKind, scale float64) (models.Ingredient, bool) {
	if text, ok := elem.(string); ok {
		return n.normalizeText(text, kind, scale)
	}
	if m := asMap(elem); m != nil {
		return n.normalizeRecord(m, kind, scale)
	}
	n.logger.Debug("dropping unsupported ingredient entry", "type", fmt.Sprintf("%T", elem))
	return models.Ingredient{}, false
}

// normalizeRecord handles table rows such as {"Fermentable": "Pale 2-Row", "Amount": "8 lb"}.
func (n *Normalizer) normalizeRecord(m map[string]string, kind models.IngredientKind, scale float64) (models.Ingredient, bool) {
	keys := grainNameKeys
	if kind == models.KindHop {
		keys = hopNameKeys
	}
	name := lookup(m, keys)
	amount := lookup(m, []string{models.AmountKey})
	if name == "" || amount == "" {
		n.logger.Debug("dropping incomplete ingredient record", "record", m)
		return models.Ingredient{}, false
	}
	if n.IsJunk(name) {
		return models.Ingredient{}, false
	}

	name = stripAmountPrefix(name, amount)

	q, err := ParseAmount(amount, scale)
	if err != nil {
		n.logger.Debug("dropping ingredient with malformed amount", "name", name, "error", err)
		return models.Ingredient{}, false
	}

	ing := models.Ingredient{Kind: kind, Amount: q.String(), Quantity: q.Value, Unit: q.Unit}
	if kind == models.KindHop {
		ing.Name = normalizeHopName(name)
		ing.BoilTime = lookup(m, []string{models.TimeKey})
	} else {
		ing.Name = n.GrainName(name)
	}
	if len(ing.Name) <= 1 {
		return models.Ingredient{}, false
	}
	return ing, true
}

// normalizeText handles free-text lines such as "0.5 oz Cascade hops, 60 min".
func (n *Normalizer) normalizeText(text string, kind models.IngredientKind, scale float64) (models.Ingredient, bool) {
	if n.IsJunk(text) {
		return models.Ingredient{}, false
	}

	var tokens []string
	for _, tok := range strings.Fields(text) {
		if tok != "-" {
			tokens = append(tokens, tok)
		}
	}
	if len(tokens) < 2 {
		return models.Ingredient{}, false
	}

	amount, rest := tokens[0], tokens[1:]
	if isUnit(rest[0]) {
		amount += " " + rest[0]
		rest = rest[1:]
	}
	if len(rest) < 1 {
		return models.Ingredient{}, false
	}

	isHop := kind == models.KindHop
	var nameTokens, boilTokens []string
	inBoil, inComment := false, false
	for _, tok := range rest {
		if !isHop && n.IsHopVariety(tok) {
			isHop = true
		}

		if strings.HasPrefix(tok, "(") || strings.HasPrefix(tok, "[") {
			inComment = true
		}
		if inComment {
			if isHop && !inBoil {
				boilTokens = append(boilTokens, tok)
			}
			continue
		}

		if isHop {
			lower := strings.ToLower(tok)
			switch {
			case inBoil:
				boilTokens = append(boilTokens, tok)
				continue
			case lower == "at" || lower == "@":
				inBoil = true
				continue
			case strings.Contains(lower, "boil") || isNumeral(tok):
				inBoil = true
				boilTokens = append(boilTokens, tok)
				continue
			case strings.HasSuffix(tok, ","):
				nameTokens = append(nameTokens, strings.TrimSuffix(tok, ","))
				inBoil = true
				continue
			}
		}
		nameTokens = append(nameTokens, tok)
	}

	q, err := ParseAmount(amount, scale)
	if err != nil {
		n.logger.Debug("dropping ingredient with malformed amount", "text", text, "error", err)
		return models.Ingredient{}, false
	}

	ing := models.Ingredient{Amount: q.String(), Quantity: q.Value, Unit: q.Unit}
	name := strings.Trim(strings.Join(nameTokens, " "), " ,;:")
	if isHop {
		ing.Kind = models.KindHop
		ing.Name = normalizeHopName(name)
		ing.BoilTime = strings.Trim(strings.Join(boilTokens, " "), " ()[],")
	} else {
		ing.Kind = models.KindGrain
		ing.Name = n.GrainName(name)
	}
	if len(ing.Name) <= 1 {
		return models.Ingredient{}, false
	}
	return ing, true
}

// stripAmountPrefix removes an amount repeated at the start of a name
// ("8 lb Pale 2-Row" with amount "8 lb").
func stripAmountPrefix(name, amount string) string {
	name = strings.TrimSpace(name)
	amount = strings.TrimSpace(amount)
	if len(name) > len(amount) && strings.EqualFold(name[:len(amount)], amount) {
		return strings.TrimSpace(name[len(amount):])
	}

	tokens := strings.Fields(name)
	if len(tokens) > 2 && isNumeral(tokens[0]) && isUnit(tokens[1]) {
		return strings.Join(tokens[2:], " ")
	}
	return name
}

func asMap(elem any) map[string]string {
	switch v := elem.(type) {
	case map[string]string:
		return v
	case map[string]any:
		m := make(map[string]string, len(v))
		for k, val := range v {
			if s, ok := val.(string); ok {
				m[k] = s
			} else if val != nil {
				m[k] = fmt.Sprint(val)
			}
		}
		return m
	case models.Fields:
		return asMap(map[string]any(v))
	}
	return nil
}

// lookup returns the first non-empty value among keys, matching keys case-insensitively.
func lookup(m map[string]string, keys []string) string {
	for _, want := range keys {
		for k, v := range m {
			if strings.EqualFold(k, want) {
				if v = strings.TrimSpace(v); v != "" {
					return v
				}
			}
		}
	}
	return ""
}

func joinValues(m map[string]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if v := strings.TrimSpace(m[k]); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

func lettersOnly(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

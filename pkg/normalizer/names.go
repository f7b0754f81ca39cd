package normalizer

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dtnitsch/brew-crawler/models"
)

var (
	maltWord      = regexp.MustCompile(`(?i)\bmalts?\b`)
	hopNoiseWords = map[string]bool{"hop": true, "hops": true, "pellet": true, "pellets": true, "leaf": true, "whole": true}
	defaultRules  = mustCompileAliases(DefaultGrainAliases)
)

type aliasRule struct {
	re          *regexp.Regexp
	replacement string
}

func compileAliases(rules []models.AliasRule) ([]aliasRule, error) {
	compiled := make([]aliasRule, 0, len(rules))
	for _, r := range rules {
		re, err := regexp.Compile("(?i)" + r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid grain alias %q: %w", r.Pattern, err)
		}
		compiled = append(compiled, aliasRule{re: re, replacement: r.Replacement})
	}
	return compiled, nil
}

func mustCompileAliases(rules []models.AliasRule) []aliasRule {
	compiled, err := compileAliases(rules)
	if err != nil {
		panic(err)
	}
	return compiled
}

// NormalizeGrainName canonicalizes a fermentable name with the built-in aliases:
// "Caramel/Crystal 40L" -> "Crystal 40L", "American 2-row Malt" -> "Pale 2-Row".
func NormalizeGrainName(name string) string {
	return grainName(name, defaultRules)
}

func grainName(name string, rules []aliasRule) string {
	for _, r := range rules {
		name = r.re.ReplaceAllString(name, r.replacement)
	}
	name = maltWord.ReplaceAllString(name, " ")

	name = capitalizeTokens(strings.Fields(name))
	if strings.EqualFold(name, "Pale") {
		return "Pale 2-Row"
	}
	return name
}

// normalizeHopName drops packaging words ("hops", "pellets") and capitalizes the rest.
func normalizeHopName(name string) string {
	var kept []string
	for _, tok := range strings.Fields(name) {
		if hopNoiseWords[strings.ToLower(strings.Trim(tok, ".,;:"))] {
			continue
		}
		kept = append(kept, tok)
	}
	return capitalizeTokens(kept)
}

// NormalizeYeastName trims and collapses whitespace.
func NormalizeYeastName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

func capitalizeTokens(tokens []string) string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.Trim(tok, ",;:")
		if tok == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(tok)
		out = append(out, string(unicode.ToUpper(r))+tok[size:])
	}
	return strings.Join(out, " ")
}

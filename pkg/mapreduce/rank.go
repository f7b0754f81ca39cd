package mapreduce

import (
	"fmt"
	"sort"
)

// RankedItem is a name with its occurrence count.
type RankedItem struct {
	Name  string
	Count int
}

func (r RankedItem) String() string {
	return fmt.Sprintf("%s:%d", r.Name, r.Count)
}

// Rank orders counts by count (descending), ties broken by name.
// n <= 0 returns every item.
func Rank(counts map[string]int, n int) []RankedItem {
	ss := make([]RankedItem, 0, len(counts))
	for k, v := range counts {
		ss = append(ss, RankedItem{Name: k, Count: v})
	}

	sort.Slice(ss, func(i, j int) bool {
		if ss[i].Count != ss[j].Count {
			return ss[i].Count > ss[j].Count
		}
		return ss[i].Name < ss[j].Name
	})

	if n > 0 && len(ss) > n {
		ss = ss[:n]
	}
	return ss
}

// Top returns the names of the n most frequent items.
func Top(counts map[string]int, n int) []string {
	ranked := Rank(counts, n)
	names := make([]string, len(ranked))
	for i, r := range ranked {
		names[i] = r.Name
	}
	return names
}

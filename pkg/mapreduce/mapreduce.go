package mapreduce

// Map counts the occurrences of each name in a single recipe.
func Map(names []string) map[string]int {
	counts := make(map[string]int, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		counts[name]++
	}
	return counts
}

// Reduce aggregates a slice of count maps into a single map.
func Reduce(intermediate []map[string]int) map[string]int {
	finalResults := make(map[string]int)

	for _, counts := range intermediate {
		for name, count := range counts {
			finalResults[name] += count
		}
	}

	return finalResults
}

package meal

// longestRun returns the length of the longest stretch of true values
func longestRun(flags []bool) int {
	best, current := 0, 0
	for _, inDiet := range flags {
		if !inDiet {
			current = 0
			continue
		}
		current++
		if current > best {
			best = current
		}
	}
	return best
}

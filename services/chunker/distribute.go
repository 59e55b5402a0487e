package chunker

// Distribute spreads total questions over k chunks. Every chunk gets
// total/k and the first total%k chunks one more, so with k > total the
// trailing chunks get zero and are skipped by the generator.
func Distribute(total, k int) []int {
	if k <= 0 {
		return nil
	}
	quotas := make([]int, k)
	if total <= 0 {
		return quotas
	}
	q, r := total/k, total%k
	for i := range quotas {
		quotas[i] = q
		if i < r {
			quotas[i]++
		}
	}
	return quotas
}

// OptimalQuestionCount picks a question budget from document length when
// the caller did not request a count
func OptimalQuestionCount(words int) int {
	switch {
	case words < 100:
		return 2
	case words < 500:
		return 5
	case words < 1000:
		return 8
	case words < 2000:
		return 12
	default:
		return 15
	}
}

package engine

// Partition splits n samples into at most k balanced windows.
//
// Every window gets n/k samples and the first n%k windows get one more.
// Windows that would be empty are dropped, so the result has min(n, k)
// entries, sums to n, and is non-increasing. It returns nil unless n >= 1
// and k >= 1.
func Partition(n, k int) []int {
	if n < 1 || k < 1 {
		return nil
	}
	base := n / k
	rem := n % k

	out := make([]int, 0, min(n, k))
	for i := 0; i < k; i++ {
		size := base
		if i < rem {
			size++
		}
		if size == 0 {
			// Sizes are non-increasing; everything after is empty too.
			break
		}
		out = append(out, size)
	}
	return out
}

// PlanWindows returns the partition plan for a parallel run.
//
// A positive window is the desired per-window size and takes precedence over
// jobs: the budget is cut into ceil(samples/window) balanced windows. With
// window == 0 the budget is cut into jobs windows.
func PlanWindows(samples, jobs, window int) ([]int, error) {
	if samples < 1 {
		return nil, invalidPlanf("samples must be >= 1 (got %d)", samples)
	}
	if window < 0 {
		return nil, invalidPlanf("window must be >= 0 (got %d)", window)
	}

	var k int
	if window > 0 {
		k = max(1, (samples+window-1)/window)
	} else {
		if jobs < 1 {
			return nil, invalidPlanf("jobs must be >= 1 (got %d)", jobs)
		}
		k = jobs
	}
	return Partition(samples, k), nil
}

package piece

// ReductionMask returns a keep-mask that collapses consecutive repeated
// elements: when element i+1 repeats element i, the later one is dropped and
// the survivor is expected to absorb its extent via a merge. Repetition is
// always checked against the original neighbors, so a run of repeats all
// collapses onto its first element and applying the mask twice is a no-op.
func ReductionMask(length int, isRepeated func(prev, next int) bool) []bool {
	mask := make([]bool, length)
	for i := range mask {
		mask[i] = true
	}
	for prev := 0; prev+1 < length; prev++ {
		if isRepeated(prev, prev+1) {
			mask[prev+1] = false
		}
	}
	return mask
}

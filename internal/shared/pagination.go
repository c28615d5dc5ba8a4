package shared

// ClampLimit bounds a caller-supplied page size. Zero or negative values
// take the default; values above max are capped.
func ClampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

// ClampOffset bounds a caller-supplied offset to be non-negative.
func ClampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

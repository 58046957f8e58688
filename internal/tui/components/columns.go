package components

// ColumnSpec sizes one column for CalculateColumnWidths.
type ColumnSpec struct {
	// MinWidth is the narrowest the column is drawn.
	MinWidth int
	// Weight is the proportional share of spare width.
	Weight float64
	// Fixed is a fixed width and overrides Weight when > 0.
	Fixed int
	// Priority sets drop order when space runs out; lower drops first.
	Priority int
}

// CalculateColumnWidths distributes availableWidth among columns. Hidden
// columns get width 0. separator is the width of each column gap.
func CalculateColumnWidths(specs []ColumnSpec, availableWidth, separator int) []int {
	widths := make([]int, len(specs))
	visible := make([]bool, len(specs))
	for i := range specs {
		visible[i] = true
	}

	need := func() (fixed int, weight float64, count int) {
		for i, s := range specs {
			if !visible[i] {
				continue
			}
			count++
			if s.Fixed > 0 {
				fixed += s.Fixed
			} else {
				fixed += s.MinWidth
				weight += s.Weight
			}
		}
		if count > 1 {
			fixed += (count - 1) * separator
		}
		return fixed, weight, count
	}

	// -2 for row padding
	fixed, weight, count := need()
	for availableWidth-2-fixed < 0 && count > 1 {
		drop := -1
		for i, s := range specs {
			if visible[i] && (drop < 0 || s.Priority < specs[drop].Priority) {
				drop = i
			}
		}
		visible[drop] = false
		fixed, weight, count = need()
	}

	spare := availableWidth - 2 - fixed
	if spare < 0 {
		spare = 0
	}
	for i, s := range specs {
		switch {
		case !visible[i]:
			widths[i] = 0
		case s.Fixed > 0:
			widths[i] = s.Fixed
		case weight > 0:
			widths[i] = s.MinWidth + int(float64(spare)*s.Weight/weight)
		default:
			widths[i] = s.MinWidth
		}
	}
	return widths
}

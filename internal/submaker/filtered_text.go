package submaker

// FilteredText maps a text to a filtered projection of itself containing
// only characters from a retain set, in original relative order. Lookups go
// in both directions so a position found in the filtered text can be traced
// back to the original, punctuation and spacing included.
//
// Indices are rune indices, not byte offsets.
type FilteredText struct {
	original []rune
	filtered []rune

	// filteredToOriginal is total and dense over the filtered text;
	// originalToFiltered is partial, -1 marks a filtered-out rune.
	filteredToOriginal []int
	originalToFiltered []int
}

// NewFilteredText wraps text; no mapping exists until FilterText runs.
func NewFilteredText(text string) *FilteredText {
	return &FilteredText{original: []rune(text)}
}

// FilterText builds the filtered projection and both index maps, keeping
// only runes present in retain. Calling it again replaces prior state.
func (f *FilteredText) FilterText(retain map[rune]struct{}) {
	f.filtered = f.filtered[:0]
	f.filteredToOriginal = f.filteredToOriginal[:0]
	f.originalToFiltered = make([]int, len(f.original))
	for i, r := range f.original {
		if _, ok := retain[r]; !ok {
			f.originalToFiltered[i] = -1
			continue
		}
		f.filtered = append(f.filtered, r)
		f.filteredToOriginal = append(f.filteredToOriginal, i)
		f.originalToFiltered[i] = len(f.filtered) - 1
	}
}

// Filtered returns the filtered projection.
func (f *FilteredText) Filtered() []rune {
	return f.filtered
}

// OriginalIndex returns the original-text index for a filtered-text index,
// or def when no mapping exists.
func (f *FilteredText) OriginalIndex(filteredIndex, def int) int {
	if filteredIndex < 0 || filteredIndex >= len(f.filteredToOriginal) {
		return def
	}
	return f.filteredToOriginal[filteredIndex]
}

// FilteredIndex returns the filtered-text index for an original-text index,
// or def when the rune at that index was filtered out or the index is out
// of range.
func (f *FilteredText) FilteredIndex(originalIndex, def int) int {
	if originalIndex < 0 || originalIndex >= len(f.originalToFiltered) {
		return def
	}
	if fi := f.originalToFiltered[originalIndex]; fi >= 0 {
		return fi
	}
	return def
}

package models

// FilterAll disables a selector in DocumentFilter.
const FilterAll = "all"

// DocumentFilter holds the dashboard list selectors. Risk is one of all,
// high, medium, low; Status is all or a DocumentStatus.
type DocumentFilter struct {
	Search   string
	Risk     string
	Status   string
	Page     int
	PageSize int
}

// Unfiltered reports whether the filter keeps every document.
func (f DocumentFilter) Unfiltered() bool {
	return f.Search == "" && (f.Risk == "" || f.Risk == FilterAll) && (f.Status == "" || f.Status == FilterAll)
}

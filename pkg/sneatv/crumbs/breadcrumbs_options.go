package crumbs

func WithSeparator(separator string) func(bc *Breadcrumbs) {
	return func(bc *Breadcrumbs) {
		bc.separator = separator
	}
}

// WithMaxItemWidth shortens titles wider than width cells with an ellipsis.
// Zero keeps titles whole.
func WithMaxItemWidth(width int) func(bc *Breadcrumbs) {
	return func(bc *Breadcrumbs) {
		bc.maxItemWidth = max(width, 0)
	}
}

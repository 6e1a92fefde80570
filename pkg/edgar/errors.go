package edgar

import "fmt"

// NotFoundError reports that no company in the catalog matched the
// identifier, neither by exact ticker nor by title substring. It is
// surfaced to the caller verbatim and never retried.
type NotFoundError struct {
	Identifier string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no company found matching %q", e.Identifier)
}

// IndexUnavailableError reports a quarterly master index that could not be
// fetched or parsed. The date-range locator logs it and skips the quarter;
// it never aborts the other quarters.
type IndexUnavailableError struct {
	Year    int
	Quarter int
	Err     error
}

func (e *IndexUnavailableError) Error() string {
	return fmt.Sprintf("quarterly index %d QTR%d unavailable: %v", e.Year, e.Quarter, e.Err)
}

func (e *IndexUnavailableError) Unwrap() error { return e.Err }

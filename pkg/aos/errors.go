package aos

import (
	"errors"
	"fmt"

	"scrollreveal/pkg/html"
)

// ErrAnchorNotFound is matched by every AnchorError.
var ErrAnchorNotFound = errors.New("aos: anchor not found")

// AnchorError reports an element whose data-aos-anchor selector resolved to
// nothing. The element is not registered.
type AnchorError struct {
	Node     *html.Node
	Selector string
	Err      error // selector parse failure, if any
}

func (e *AnchorError) Error() string {
	tag := "<nil>"
	if e.Node != nil {
		tag = "<" + e.Node.TagName + ">"
	}
	if e.Err != nil {
		return fmt.Sprintf("aos: anchor %q for %s: %v", e.Selector, tag, e.Err)
	}
	return fmt.Sprintf("aos: anchor %q for %s: no matching element", e.Selector, tag)
}

func (e *AnchorError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrAnchorNotFound, e.Err}
	}
	return []error{ErrAnchorNotFound}
}

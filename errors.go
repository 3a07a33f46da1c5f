package modelcache

import "fmt"

// DuplicateNameError reports a registration whose accessor name already
// resolves on the owner, directly or through an ancestor.
type DuplicateNameError struct {
	Owner string
	Name  string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("modelcache: accessor %q already resolves on %q", e.Name, e.Owner)
}

// MissingComputeError reports a lazy or column registration made without a
// callback.
type MissingComputeError struct {
	Owner string
	Name  string
}

func (e *MissingComputeError) Error() string {
	return fmt.Sprintf("modelcache: registration of %q on %q requires a callback", e.Name, e.Owner)
}

package conflict

import (
	"errors"
	"fmt"
)

// ErrConflict matches every *Error returned by Decide.
var ErrConflict = errors.New("local file already exists")

// Decision is the outcome of checking a local path before a download.
type Decision int

const (
	Proceed Decision = iota
	Skip
	Fail
)

func (d Decision) String() string {
	switch d {
	case Proceed:
		return "proceed"
	case Skip:
		return "skip"
	case Fail:
		return "fail"
	}
	return fmt.Sprintf("Decision(%d)", int(d))
}

// Error reports an existing local file with no skip or overwrite directive.
type Error struct {
	Path string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s already exists (use --skip-existing or --force-overwrite)", e.Path)
}

func (e *Error) Is(target error) bool {
	return target == ErrConflict
}

// Policy holds the operator's directives for existing local files.
// At most one of the two fields is expected to be set.
type Policy struct {
	SkipExisting   bool
	ForceOverwrite bool
}

// Decide returns Proceed when localPath does not exist. Otherwise skip wins over
// force, and with neither set the result is Fail together with an *Error naming localPath.
// On Proceed with exists true the caller must replace the existing file.
func (p Policy) Decide(localPath string, exists bool) (Decision, error) {
	switch {
	case !exists:
		return Proceed, nil
	case p.SkipExisting:
		return Skip, nil
	case p.ForceOverwrite:
		return Proceed, nil
	default:
		return Fail, &Error{Path: localPath}
	}
}

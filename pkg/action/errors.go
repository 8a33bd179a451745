package action

import (
	"fmt"

	"github.com/pkg/errors"
)

// CommandError is returned when a sandboxed command exits non-zero.
// Header is the short summary shown to users, Output the captured terminal output.
type CommandError struct {
	Header string
	Output string
}

func NewCommandError(header, output string) *CommandError {
	if output == "" {
		output = "No Output Available"
	}
	return &CommandError{Header: header, Output: output}
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("Failed To Execute Shell Command: %s\n\nOutput:\n%s", e.Header, e.Output)
}

func AsCommandError(err error) (*CommandError, bool) {
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

package command

import "fmt"

type CommandError struct {
	Code    string
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ErrCommandInFlight is returned when a command for the same booking has not
// finished yet; callers serialize, the executor does not coalesce.
var ErrCommandInFlight = &CommandError{
	Code:    "commandInFlight",
	Message: "another command for this booking is still in flight",
}

func NewNotExecutableError(msg string) error {
	return &CommandError{
		Code:    "notExecutable",
		Message: msg,
	}
}

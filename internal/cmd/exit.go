package cmd

import "fmt"

// ExitError asks main to exit with Code without printing anything further.
// Commands return it after they have already reported the outcome.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

package main

const (
	// exitCodeSuccess indicates no errors or failures had occurred.
	exitCodeSuccess = 0

	// exitCodeGeneralError indicates some type of general error occurred.
	exitCodeGeneralError = 1

	// exitCodeFailuresFound indicates that the analysis found inputs on which the target fails.
	exitCodeFailuresFound = 7
)

// errorWithExitCode wraps an error with the exit code the process should end with
// if it is bubbled up to main.
type errorWithExitCode struct {
	err      error
	exitCode int
}

func newErrorWithExitCode(err error, exitCode int) *errorWithExitCode {
	return &errorWithExitCode{err: err, exitCode: exitCode}
}

func (e *errorWithExitCode) Error() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}

// innerErrorAndExitCode returns the error to report and the exit code for err:
// 0 for a nil error, 1 for a generic error.
func innerErrorAndExitCode(err error) (error, int) {
	if err == nil {
		return nil, exitCodeSuccess
	}
	if e, ok := err.(*errorWithExitCode); ok {
		return e.err, e.exitCode
	}
	return err, exitCodeGeneralError
}

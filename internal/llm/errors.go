package llm

import "fmt"

// ServiceError indicates the model endpoint failed, timed out or returned nothing.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("LLM %s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// MalformedOutputError indicates the model text could not be turned into a
// question set.
type MalformedOutputError struct {
	Text string
	Err  error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("malformed model output: %v", e.Err)
}

func (e *MalformedOutputError) Unwrap() error { return e.Err }

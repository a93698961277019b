package llm

import "fmt"

// ServiceError is the failure type for every call into the text-generation
// capability: quota exhaustion, network failures, and unusable responses all
// surface as a ServiceError. Callers decide whether to fall back or abort.
type ServiceError struct {
	Op      string
	Message string
	Cause   error
}

func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("llm %s: %s: %v", e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("llm %s: %s", e.Op, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Cause
}

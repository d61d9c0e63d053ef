package waitlist

import "fmt"

// PersistenceError means the slot rejected a write, or could not be read ahead
// of one. Create and Update return it.
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("waitlist: %s: persist slot %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// DecodeError means the slot holds something that is not a record list. The
// store logs it and carries on with an empty collection.
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("waitlist: decode slot %q: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

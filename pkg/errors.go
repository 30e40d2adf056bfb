package display

import "fmt"

// ErrOpenFile represents an error when opening a file.
type ErrOpenFile struct {
	Filename string
	Err      error
}

func (e *ErrOpenFile) Error() string {
	return fmt.Sprintf("error opening file %q: %v", e.Filename, e.Err)
}

func (e *ErrOpenFile) Unwrap() error { return e.Err }

// ErrCreateTable represents an error when creating a table.
type ErrCreateTable struct {
	TableName string
	Err       error
}

func (e *ErrCreateTable) Error() string {
	return fmt.Sprintf("error creating table %q: %v", e.TableName, e.Err)
}

func (e *ErrCreateTable) Unwrap() error { return e.Err }

// ConfigurationError reports an unusable geometry or configuration value.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Field, e.Reason)
}

// DataAccessError reports a missing or malformed table or field in the event store.
type DataAccessError struct {
	Table string
	Field string
	Err   error
}

func (e *DataAccessError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("error reading %s.%s: %v", e.Table, e.Field, e.Err)
	}
	return fmt.Sprintf("error reading table %q: %v", e.Table, e.Err)
}

func (e *DataAccessError) Unwrap() error { return e.Err }

// InvalidInputError reports a navigation token that is neither empty, a quit
// token nor an integer.
type InvalidInputError struct {
	Input string
	Err   error
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input %q: expected enter, q or an event position", e.Input)
}

func (e *InvalidInputError) Unwrap() error { return e.Err }

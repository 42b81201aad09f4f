package storage

import (
	"errors"
	"fmt"
)

// TxErrorKind distinguishes where a transactional unit of work failed.
type TxErrorKind int

const (
	// TxBegin means the transaction could not be started.
	TxBegin TxErrorKind = iota + 1

	// TxCommit means the caller's statements succeeded but the commit failed;
	// the transaction was rolled back.
	TxCommit

	// TxExec means one of the caller's statements failed; the transaction was
	// rolled back and the statement error is wrapped.
	TxExec
)

// String returns the kind name for logs.
func (k TxErrorKind) String() string {
	switch k {
	case TxBegin:
		return "begin"
	case TxCommit:
		return "commit"
	case TxExec:
		return "exec"
	default:
		return "unknown"
	}
}

// TxError tags a transaction failure with the phase it occurred in.
// Callers convert it into their own error type with errors.As so propagation
// through the call stack stays uniform.
type TxError struct {
	Kind TxErrorKind
	Err  error
}

// Error implements the error interface.
func (e *TxError) Error() string {
	return fmt.Sprintf("transaction %s failed: %v", e.Kind, e.Err)
}

// Unwrap exposes the underlying error for errors.Is/As matching.
func (e *TxError) Unwrap() error {
	return e.Err
}

// TxKind returns the transaction failure kind of err, or zero if err is not a
// TxError.
func TxKind(err error) TxErrorKind {
	var txErr *TxError
	if errors.As(err, &txErr) {
		return txErr.Kind
	}
	return 0
}

// Package errors defines the compiler's error types: a coded, wrapped
// CompileError mirroring the IR-level error taxonomy (structural, type,
// precondition, invariant), plus helpers to fold many independent
// failures into one reportable error and to tag a CompileError with the
// canonical gRPC status code an eventual RPC front-end would use.
package errors

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Error codes for the compiler.
const (
	CodeUnknown      = "UNKNOWN_ERROR"
	CodeStructural   = "STRUCTURAL_ERROR"
	CodeType         = "TYPE_ERROR"
	CodePrecondition = "PRECONDITION_ERROR"
	CodeInvariant    = "INVARIANT_ERROR"
	CodeStorageError = "STORAGE_ERROR"
	CodeLedgerError  = "LEDGER_ERROR"
	CodeConfigError  = "CONFIG_ERROR"
	CodeTimeout      = "TIMEOUT_ERROR"
	CodeNotFound     = "NOT_FOUND"
)

// CompileError is a coded, optionally-wrapped compiler error. NodeID is
// 0 when the error is not attributable to a single node (e.g. a config
// or storage failure).
type CompileError struct {
	Code    string
	Message string
	NodeID  int
	Err     error
}

func (e *CompileError) Error() string {
	prefix := fmt.Sprintf("[%s]", e.Code)
	if e.NodeID != 0 {
		prefix = fmt.Sprintf("[%s node#%d]", e.Code, e.NodeID)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s %s", prefix, e.Message)
}

func (e *CompileError) Unwrap() error { return e.Err }

func (e *CompileError) Is(target error) bool {
	t, ok := target.(*CompileError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new CompileError not attached to any node.
func New(code, message string) *CompileError {
	return &CompileError{Code: code, Message: message}
}

// NewForNode creates a new CompileError attributed to a node id.
func NewForNode(code string, nodeID int, message string) *CompileError {
	return &CompileError{Code: code, Message: message, NodeID: nodeID}
}

// Wrap wraps an existing error with a CompileError.
func Wrap(code, message string, err error) *CompileError {
	return &CompileError{Code: code, Message: message, Err: err}
}

// Common error instances, matched with errors.Is.
var (
	ErrStorageError = New(CodeStorageError, "artifact storage error")
	ErrLedgerError  = New(CodeLedgerError, "pass ledger error")
	ErrConfigError  = New(CodeConfigError, "configuration error")
	ErrTimeout      = New(CodeTimeout, "operation timeout")
	ErrNotFound     = New(CodeNotFound, "resource not found")
)

// GetErrorCode extracts the error code from an error, or CodeUnknown.
func GetErrorCode(err error) string {
	var ce *CompileError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return CodeUnknown
}

// GetErrorMessage extracts the message from an error.
func GetErrorMessage(err error) string {
	var ce *CompileError
	if errors.As(err, &ce) {
		return ce.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// GRPCStatusCode maps a CompileError's taxonomy code onto the canonical
// gRPC status code an eventual RPC front-end would surface, without the
// compiler itself depending on a running gRPC service (SPEC_FULL.md §3).
func GRPCStatusCode(err error) codes.Code {
	switch GetErrorCode(err) {
	case CodeStructural, CodeType:
		return codes.InvalidArgument
	case CodePrecondition:
		return codes.FailedPrecondition
	case CodeInvariant:
		return codes.Internal
	case CodeNotFound:
		return codes.NotFound
	case CodeTimeout:
		return codes.DeadlineExceeded
	default:
		return codes.Unknown
	}
}

// ToGRPCStatus converts err into a *status.Status carrying its mapped
// code and message, ready for a future RPC front-end to return directly.
func ToGRPCStatus(err error) *status.Status {
	return status.New(GRPCStatusCode(err), GetErrorMessage(err))
}

// Aggregate folds a slice of independent errors (e.g. per-node
// validation failures, or per-partition-pair merge failures) into a
// single error via multierr, dropping nil entries. Returns nil if every
// entry was nil.
func Aggregate(errs ...error) error {
	var agg error
	for _, e := range errs {
		agg = multierr.Append(agg, e)
	}
	return agg
}

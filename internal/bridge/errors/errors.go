// Package errors defines the discriminated error taxonomy the bridge core
// returns to its callers, in place of ad-hoc wrapped errors.
package errors

import "fmt"

// Code identifies the category of a BridgeError.
type Code string

const (
	// CodeFileNotFound means the requested path does not exist or is unreadable.
	CodeFileNotFound Code = "file_not_found"
	// CodeInvalidPath means the requested path is not a regular file.
	CodeInvalidPath Code = "invalid_path"
	// CodePositionOutOfBounds means the line/character falls outside the document.
	CodePositionOutOfBounds Code = "position_out_of_bounds"
	// CodeWorkspaceLoadInProgress means the workspace loader has not reached Ready.
	CodeWorkspaceLoadInProgress Code = "workspace_load_in_progress"
	// CodeServerUnavailable means the language-server subprocess or transport is gone.
	CodeServerUnavailable Code = "server_unavailable"
	// CodeLSPError means the language server returned a JSON-RPC error.
	CodeLSPError Code = "lsp_error"
	// CodeCancelled means the operation's cancel token fired before completion.
	CodeCancelled Code = "cancelled"
	// CodeInternal means an invariant was violated; should never surface in normal operation.
	CodeInternal Code = "internal"
)

// BridgeError is the single error shape returned across the core's public API.
type BridgeError struct {
	Code          Code
	Message       string
	OriginalError error
}

func (e *BridgeError) Error() string {
	if e.OriginalError != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.OriginalError)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap allows errors.Is/errors.As against the wrapped cause.
func (e *BridgeError) Unwrap() error {
	return e.OriginalError
}

// New builds a BridgeError with no wrapped cause.
func New(code Code, message string) *BridgeError {
	return &BridgeError{Code: code, Message: message}
}

// Wrap builds a BridgeError around an existing error.
func Wrap(code Code, message string, cause error) *BridgeError {
	return &BridgeError{Code: code, Message: message, OriginalError: cause}
}

// FileNotFound builds a CodeFileNotFound error.
func FileNotFound(path string, cause error) *BridgeError {
	return Wrap(CodeFileNotFound, fmt.Sprintf("file not found: %s", path), cause)
}

// InvalidPath builds a CodeInvalidPath error.
func InvalidPath(path, reason string) *BridgeError {
	return New(CodeInvalidPath, fmt.Sprintf("invalid path %s: %s", path, reason))
}

// PositionOutOfBounds builds a CodePositionOutOfBounds error.
func PositionOutOfBounds(line, character int) *BridgeError {
	return New(CodePositionOutOfBounds, fmt.Sprintf("position %d:%d is out of bounds", line, character))
}

// WorkspaceLoadInProgress builds a CodeWorkspaceLoadInProgress error.
func WorkspaceLoadInProgress() *BridgeError {
	return New(CodeWorkspaceLoadInProgress, "workspace is still loading")
}

// ServerUnavailable builds a CodeServerUnavailable error.
func ServerUnavailable(cause error) *BridgeError {
	return Wrap(CodeServerUnavailable, "language server is unavailable", cause)
}

// LSP builds a CodeLSPError error from a server-originated JSON-RPC failure.
func LSP(message string, cause error) *BridgeError {
	return Wrap(CodeLSPError, message, cause)
}

// Cancelled builds a CodeCancelled error.
func Cancelled() *BridgeError {
	return New(CodeCancelled, "operation was cancelled")
}

// Internal builds a CodeInternal error.
func Internal(message string, cause error) *BridgeError {
	return Wrap(CodeInternal, message, cause)
}

// Is reports whether err is a BridgeError carrying the given code.
func Is(err error, code Code) bool {
	be, ok := err.(*BridgeError)
	return ok && be.Code == code
}

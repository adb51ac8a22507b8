package api

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/admon/ledger-mirror/fault"
)

// JSON-RPC error codes of failure kinds.
const (
	CodeUnknown             = -32000
	CodeValidation          = -32602
	CodeReferential         = -32001
	CodeConflict            = -32002
	CodeNotFound            = -32003
	CodeStorage             = -32004
	CodeSubmission          = -32010
	CodeConfirmationTimeout = -32011
	CodeExecutionReverted   = -32012
)

var codes = map[fault.Kind]int{
	fault.Unknown:             CodeUnknown,
	fault.Validation:          CodeValidation,
	fault.Referential:         CodeReferential,
	fault.Conflict:            CodeConflict,
	fault.NotFound:            CodeNotFound,
	fault.Storage:             CodeStorage,
	fault.Submission:          CodeSubmission,
	fault.ConfirmationTimeout: CodeConfirmationTimeout,
	fault.ExecutionReverted:   CodeExecutionReverted,
}

// ErrorData is a structured failure returned to clients.
type ErrorData struct {
	Kind      string `json:"kind"`
	Detail    string `json:"detail"`
	Retryable bool   `json:"retryable"`
	// Set when the failure concerns a submitted transaction.
	Hash string `json:"hash,omitempty"`
}

// Error is a JSON-RPC error carrying a failure kind.
type Error struct {
	code int
	data ErrorData
}

func newError(err error, hash *common.Hash) *Error {
	kind := fault.KindOf(err)

	result := &Error{
		code: codes[kind],
		data: ErrorData{
			Kind:      kind.String(),
			Detail:    err.Error(),
			Retryable: kind.Retryable(),
		},
	}

	var e *fault.Error
	if errors.As(err, &e) {
		result.data.Detail = e.Detail
	}

	if hash != nil {
		result.data.Hash = hash.Hex()
	}

	return result
}

func (e *Error) Error() string {
	return e.data.Kind + ": " + e.data.Detail
}

// ErrorCode returns the JSON-RPC error code.
func (e *Error) ErrorCode() int {
	return e.code
}

// ErrorData returns the structured failure.
func (e *Error) ErrorData() interface{} {
	return e.data
}

package chain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
)

// Kind classifies why a chain interaction failed.
type Kind int

const (
	// KindConfig means a key, address, URL or artifact was missing or
	// malformed. Raised before any transaction is sent.
	KindConfig Kind = iota + 1
	// KindSubmission covers RPC failures while sending a transaction or
	// waiting for its receipt.
	KindSubmission
	// KindReverted means the contract rejected the call, either while
	// estimating gas or in a mined receipt with failed status.
	KindReverted
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindSubmission:
		return "submission"
	case KindReverted:
		return "reverted"
	default:
		return "unknown"
	}
}

// Sentinels matching every Error of the corresponding kind via errors.Is.
var (
	ErrConfig     = errors.New("chain: configuration error")
	ErrSubmission = errors.New("chain: transaction submission failed")
	ErrReverted   = errors.New("chain: transaction reverted")
)

// Error is the tagged error returned by chain operations.
type Error struct {
	Kind   Kind
	Op     string
	TxHash common.Hash
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s: %s", e.Op, e.Kind)

	if e.TxHash != (common.Hash{}) {
		fmt.Fprintf(&b, " (tx %s)", e.TxHash.Hex())
	}

	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}

	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrConfig:
		return e.Kind == KindConfig
	case ErrSubmission:
		return e.Kind == KindSubmission
	case ErrReverted:
		return e.Kind == KindReverted
	}

	return false
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return 0
}

func configError(op string, err error) error {
	return &Error{Kind: KindConfig, Op: op, Err: err}
}

// submitError classifies an error returned while sending a transaction.
// Nodes report estimate-gas reverts as JSON-RPC errors carrying revert data.
func submitError(op string, err error) error {
	kind := KindSubmission

	// Every JSON-RPC error response is an rpc.DataError; only revert data
	// marks a revert.
	var dataErr rpc.DataError
	if (errors.As(err, &dataErr) && dataErr.ErrorData() != nil) ||
		strings.Contains(err.Error(), "execution reverted") {
		kind = KindReverted
	}

	return &Error{Kind: kind, Op: op, Err: err}
}

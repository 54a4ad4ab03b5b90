package service

import (
	"errors"

	"github.com/hepuentes/creditappweb/internal/repository"
)

// ErrorKind classifies failures so the transport layer can pick a status code
// and decide whether the message is safe to show.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindNotFound
	KindForbidden
	KindInsufficientStock
	KindInsufficientTillBalance
	KindInvalidPaymentAmount
	KindIrreversibleTransfer
	KindNoValidHolder
	KindPersistence
	// KindNonCriticalSideEffect marks failures of work that never aborts the
	// operation that triggered it, such as commissions and receipts.
	KindNonCriticalSideEffect
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindInsufficientStock:
		return "insufficient_stock"
	case KindInsufficientTillBalance:
		return "insufficient_till_balance"
	case KindInvalidPaymentAmount:
		return "invalid_payment_amount"
	case KindIrreversibleTransfer:
		return "irreversible_transfer"
	case KindNoValidHolder:
		return "no_valid_holder"
	case KindPersistence:
		return "persistence"
	case KindNonCriticalSideEffect:
		return "non_critical_side_effect"
	default:
		return "unknown"
	}
}

// Error is the error type returned by every service operation.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind when the target carries no message,
// so errors.Is(err, ErrInsufficientStock) works for every stock failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrValidation              = &Error{Kind: KindValidation}
	ErrNotFound                = &Error{Kind: KindNotFound}
	ErrForbidden               = &Error{Kind: KindForbidden}
	ErrInsufficientStock       = &Error{Kind: KindInsufficientStock}
	ErrInsufficientTillBalance = &Error{Kind: KindInsufficientTillBalance}
	ErrInvalidPaymentAmount    = &Error{Kind: KindInvalidPaymentAmount}
	ErrIrreversibleTransfer    = &Error{Kind: KindIrreversibleTransfer}
	ErrNoValidHolder           = &Error{Kind: KindNoValidHolder}
	ErrPersistence             = &Error{Kind: KindPersistence}
)

func newError(kind ErrorKind, msg string) *Error { return &Error{Kind: kind, Msg: msg} }

func errValidation(msg string) *Error { return newError(KindValidation, msg) }
func errNotFound(msg string) *Error   { return newError(KindNotFound, msg) }
func errForbidden(msg string) *Error  { return newError(KindForbidden, msg) }

// KindOf returns the kind of err, KindPersistence for anything unclassified.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindPersistence
}

// asError wraps unclassified errors as persistence failures. A missing row is
// reported as notFound.
func asError(err error, notFound string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if errors.Is(err, repository.ErrNotFound) && notFound != "" {
		return &Error{Kind: KindNotFound, Msg: notFound, Err: err}
	}
	return &Error{Kind: KindPersistence, Msg: "error de persistencia", Err: err}
}

package rpc

import (
	goerrors "github.com/goliatone/go-errors"

	"github.com/vennlabs/custodiad/internal/core/result"
)

// resultError wraps an engine result into a structured error envelope.
// The text code is the result's own name so callers can switch on it
// without parsing messages.
func resultError(res result.Result) *goerrors.Error {
	var category goerrors.Category
	switch res.Category() {
	case result.CategoryAuthorization:
		category = goerrors.CategoryAuthz
	case result.CategoryNotFound:
		category = goerrors.CategoryNotFound
	case result.CategoryValidation:
		category = goerrors.CategoryValidation
	case result.CategoryCapacity, result.CategoryArithmetic:
		category = goerrors.CategoryOperation
	case result.CategoryState:
		category = goerrors.CategoryConflict
	default:
		category = goerrors.CategoryInternal
	}
	return goerrors.New("operation rejected: "+res.String(), category).
		WithCode(int(res)).
		WithTextCode(res.String())
}

// badRequest reports malformed parameters.
func badRequest(msg string, err error) *goerrors.Error {
	e := goerrors.New(msg, goerrors.CategoryBadInput).WithTextCode("BadRequest")
	if err != nil {
		e = goerrors.Wrap(err, goerrors.CategoryBadInput, msg).WithTextCode("BadRequest")
	}
	return e
}

// notFound reports a missing object on a read path.
func notFound(msg string) *goerrors.Error {
	return goerrors.New(msg, goerrors.CategoryNotFound).WithTextCode("NotFound")
}

// internal reports an infrastructure failure.
func internal(msg string, err error) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, msg).WithTextCode("Internal")
}

package entity

import "github.com/shandysiswandi/gofactor/internal/pkg/goerror"

const (
	KindInvalidSignature  = "InvalidSignature"
	KindInvalidAddress    = "InvalidAddress"
	KindInvalidCode       = "InvalidCode"
	KindIllegalTransition = "IllegalTransition"
	KindTooManyRequests   = "TooManyRequests"
	KindStorageFailure    = "StorageFailure"
)

var (
	ErrInvalidSignature  = goerror.NewKind(KindInvalidSignature, "Signature does not match the public key", goerror.CodeInvalidFormat)
	ErrInvalidAddress    = goerror.NewKind(KindInvalidAddress, "Address has no registered binding", goerror.CodeInvalidFormat)
	ErrInvalidCode       = goerror.NewKind(KindInvalidCode, "Invalid code", goerror.CodeForbidden)
	ErrIllegalTransition = goerror.NewKind(KindIllegalTransition, "Operation is not allowed in the current state", goerror.CodeConflict)
	ErrTooManyRequests   = goerror.NewKind(KindTooManyRequests, "A code was requested recently, try again later", goerror.CodeTooManyRequest)
)

// NewStorageFailure wraps a registry or code store error.
func NewStorageFailure(err error) error {
	return goerror.NewServerKind(KindStorageFailure, err)
}

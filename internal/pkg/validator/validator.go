package validator

// Validator validates a struct and returns V10ValidationError on rule failures.
type Validator interface {
	Validate(data any) error
}

// Package validator validates request structs.
//
// Usecases depend on the Validator interface; V10Validator implements it with
// go-playground/validator and reports failures keyed by the JSON path of the
// offending field (for example "pubKey.x").
package validator

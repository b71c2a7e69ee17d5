// Package errors provides the classified error type used across annodoc.
//
// A ClassifiedError carries a category (what kind of failure), a severity and
// structured context. The CLI adapter maps categories to process exit codes.
//
//	err := errors.AnnotationError("missing method identifier").
//		WithContext("file", path).
//		WithCause(annotation.ErrMissingMethodIdentifier).
//		Build()
package errors

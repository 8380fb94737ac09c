// Package domain defines domain-level errors for the blog feature.
package domain

import "errors"

var (
	// ErrPostNotFound indicates that no post has the requested id.
	ErrPostNotFound = errors.New("blog not found")

	// ErrCommentNotFound indicates that the post has no comment with the requested id.
	ErrCommentNotFound = errors.New("comment not found")

	// ErrForbidden is returned when the caller may not read or change the resource.
	ErrForbidden = errors.New("access denied")

	// ErrInvalidInput wraps field-level validation failures.
	ErrInvalidInput = errors.New("invalid input")
)

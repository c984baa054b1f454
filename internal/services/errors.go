// Package services defines the business logic for render submissions.
// This file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import "errors"

// Submission-related errors.
var (
	// ErrEmptyDescription is returned when a submission carries no prompt
	// text after trimming.
	ErrEmptyDescription = errors.New("description is empty")

	// ErrNoImageSelected is returned when a submission names neither a
	// source image URL nor an uploaded file.
	ErrNoImageSelected = errors.New("no image selected")

	// ErrMultipleImageSources is returned when a submission names more than
	// one image source; the caller must resolve the selection first.
	ErrMultipleImageSources = errors.New("multiple image sources selected")

	// ErrUnsupportedAction is returned for actions that are selectable but
	// have no generation backend yet (currently 360-view).
	ErrUnsupportedAction = errors.New("action not supported yet")

	// ErrUnknownAction is returned when the action is not a recognized kind.
	ErrUnknownAction = errors.New("unknown action")

	// ErrEphemeralImageRef is returned when the image reference points at
	// client-local storage (blob: or data: scheme) that the backend cannot
	// fetch.
	ErrEphemeralImageRef = errors.New("image reference is not a durable URL")
)

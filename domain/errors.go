package domain

import "errors"

var (
	// ErrUnauthorized indicates missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNoSession indicates the operation needs a logged-in account.
	ErrNoSession = errors.New("no active session")

	// ErrStatusTooLong indicates the post exceeds the instance character limit.
	ErrStatusTooLong = errors.New("status exceeds character limit")

	// ErrEmptyStatus indicates the user submitted a blank post.
	ErrEmptyStatus = errors.New("status cannot be empty")

	// ErrTooManyAttachments indicates the draft already holds the maximum media count.
	ErrTooManyAttachments = errors.New("too many attachments")

	// ErrPollWithMedia indicates a poll and media were combined in one draft.
	ErrPollWithMedia = errors.New("polls cannot be combined with media")

	// ErrNotFound indicates the requested item is not in the current view.
	ErrNotFound = errors.New("not found")
)

package kindred

import "errors"

var (
	// ErrNoSubject is returned when no subject name can be found in an
	// obituary's headline or opening paragraph.
	ErrNoSubject = errors.New("kindred: no subject name found in obituary")

	// ErrPersonNotFound is returned when a person id does not exist.
	ErrPersonNotFound = errors.New("kindred: person not found")

	// ErrInvalidConfig is returned for invalid configuration values.
	ErrInvalidConfig = errors.New("kindred: invalid configuration")

	// ErrStoreClosed is returned when operating on a closed store.
	ErrStoreClosed = errors.New("kindred: store is closed")

	// ErrSessionFinalized is returned when obituaries are added to a session
	// whose global resolution pass has already run.
	ErrSessionFinalized = errors.New("kindred: session already finalized")

	// ErrEmptyBatch is returned when a batch input contains no obituaries.
	ErrEmptyBatch = errors.New("kindred: batch contains no obituaries")
)

package domain

import "errors"

var (
	// ErrInvalidRequest is returned when the query is empty or malformed
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrDatasetEmpty is returned when no catalog is loaded
	ErrDatasetEmpty = errors.New("dataset is empty")

	// ErrDatasetInvalid is returned when a dataset cannot be turned into a catalog
	ErrDatasetInvalid = errors.New("dataset is invalid")

	// ErrNoMatch is returned when the query does not resolve to any catalog name
	ErrNoMatch = errors.New("no similar medicine found")

	// ErrCatalogInconsistent is returned when a resolved name is missing from the catalog.
	// This indicates a programming error, never a user error.
	ErrCatalogInconsistent = errors.New("resolved name missing from catalog")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrRemoteFetchFailure is returned when a remote dataset cannot be downloaded
	ErrRemoteFetchFailure = errors.New("remote dataset fetch failed")

	// ErrUnsupportedFormat is returned for dataset sources with an unknown extension
	ErrUnsupportedFormat = errors.New("unsupported dataset format")

	// ErrFileTypeNotAllowed is returned when an upload has a disallowed extension
	ErrFileTypeNotAllowed = errors.New("file type not allowed")

	// ErrFileTooLarge is returned when an upload exceeds the configured size limit
	ErrFileTooLarge = errors.New("file too large")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")
)

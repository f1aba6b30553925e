package domain

import "errors"

var (
	// ErrUpstreamFetch is returned when the upstream page cannot be fetched:
	// network failure or a non-2xx status.
	ErrUpstreamFetch = errors.New("upstream fetch failed")

	// ErrUpstreamShape is returned when the embedded data marker is missing
	// or its payload is not valid JSON.
	ErrUpstreamShape = errors.New("embedded data not found")

	// ErrNoProductsFound is returned when no product array is found, or the
	// one found yields no usable records.
	ErrNoProductsFound = errors.New("no products found")

	// ErrRunNotFound is returned when the run log has no record for a source.
	ErrRunNotFound = errors.New("run not found")

	// ErrRunLogDisabled is returned by status queries when no run store is configured.
	ErrRunLogDisabled = errors.New("run log not configured")
)

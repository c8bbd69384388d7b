package domain

import "errors"

var (
	// ErrConfiguration signals an unusable generation setup (no API key and
	// mock mode off). It is raised before any network or filesystem work.
	ErrConfiguration = errors.New("generation is not configured")

	// ErrGeneration wraps any failure while producing or downloading an
	// image from the remote provider. Compositions do not retry it.
	ErrGeneration = errors.New("image generation failed")

	// ErrEncoding wraps codec or container failures while writing the final
	// video.
	ErrEncoding = errors.New("video encoding failed")

	ErrJobNotFound = errors.New("job not found")
)

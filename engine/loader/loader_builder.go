package loader

import "log"

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithDecoder is an option builder that registers a Decoder for the given extensions.
//
// Parameters:
//   - d: the decoder
//   - exts: extensions without the leading dot, matched case-sensitively
//
// Returns:
//   - LoaderBuilderOption: a function that applies the decoder option to a loader
func WithDecoder(d Decoder, exts ...string) LoaderBuilderOption {
	return func(l *loader) {
		if d == nil {
			return
		}
		for _, ext := range exts {
			l.decoders[ext] = d
		}
	}
}

// WithFallback sets the decoder used for unknown or missing extensions.
func WithFallback(d Decoder) LoaderBuilderOption {
	return func(l *loader) {
		if d != nil {
			l.fallback = d
		}
	}
}

// WithWorkers is an option builder that sets the maximum worker count used by DecodeAll.
//
// Parameters:
//   - n: the maximum number of concurrent decodes; values below 1 are raised to 1
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker option to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		l.workers = n
	}
}

// WithLogger redirects loader warnings.
func WithLogger(logger *log.Logger) LoaderBuilderOption {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

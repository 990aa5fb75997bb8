package config

import "errors"

// Errors returned while loading configuration.
var (
	// ErrParse indicates a file that could not be decoded.
	ErrParse = errors.New("cannot parse config file")

	// ErrUnsupportedFormat indicates a file extension with no decoder.
	ErrUnsupportedFormat = errors.New("unsupported config format")

	// ErrWatcherClosed indicates use of a watcher after Close.
	ErrWatcherClosed = errors.New("config watcher is closed")
)

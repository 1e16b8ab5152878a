package port

import "errors"

// Sentinel errors used across ports.
var (
	ErrSummarization   = errors.New("summarization failed")
	ErrModelNotFound   = errors.New("model not available")
	ErrScanNotFound    = errors.New("scan not found")
	ErrUnsupportedForm = errors.New("unsupported export format")
)

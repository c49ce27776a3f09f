package models

import "errors"

// ErrTransientProcessing marks a recoverable processing failure that should
// travel through the retry topic rather than fail the stream
var ErrTransientProcessing = errors.New("transient processing failure")

package maskedit

import "errors"

// Sentinel errors. Callers test with errors.Is; returned errors usually wrap
// one of these with context.
var (
	ErrLayerOutOfRange     = errors.New("maskedit: layer index out of range")
	ErrMaskMissing         = errors.New("maskedit: mask data missing")
	ErrMaskMalformed       = errors.New("maskedit: mask data malformed")
	ErrMaskSize            = errors.New("maskedit: mask size does not match layer")
	ErrSessionClosed       = errors.New("maskedit: session closed")
	ErrMissingWidget       = errors.New("maskedit: widget not found")
	ErrNoImage             = errors.New("maskedit: no image selected")
	ErrRegistrationTimeout = errors.New("maskedit: node registration timed out")
	ErrUpload              = errors.New("maskedit: upload failed")
	ErrNotFound            = errors.New("maskedit: file not found")
)

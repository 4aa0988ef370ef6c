package apperr

import "errors"

var (
	// ErrNotFound means no page exists for a request: no site map match, no
	// content file, or an unsafe url.
	ErrNotFound = errors.New("not found")
	// ErrRenderFailed means the markdown engine failed on an existing page.
	ErrRenderFailed = errors.New("render failed")
)

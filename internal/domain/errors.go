package domain

import "errors"

var (
	ErrProjectNotFound   = errors.New("project not found")
	ErrReportNotFound    = errors.New("report not found")
	ErrShareTokenMissing = errors.New("report has no share token, regenerate the report to create a share link")
	ErrConflict          = errors.New("report could not be stored, conflicting write")
	ErrInvalidRequest    = errors.New("invalid request")
)

package domain

import "errors"

var (
	ErrCorruptFile          = errors.New("history file is not valid JSON")
	ErrEmptyHistory         = errors.New("history is empty")
	ErrIndexOutOfRange      = errors.New("history index out of range")
	ErrUnknownRetentionUnit = errors.New("retention unit not understood")
	ErrNoRecallBuffer       = errors.New("no recall buffer attached to this session")
)

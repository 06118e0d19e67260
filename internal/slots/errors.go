package slots

import "errors"

var (
	// ErrInvalidDuration некорректная длительность слота
	ErrInvalidDuration = errors.New("slots: invalid slot duration")
)

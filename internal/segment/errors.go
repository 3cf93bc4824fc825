package segment

import (
	"errors"
	"fmt"
)

// ErrNoCandidates is returned when the shape grid is empty.
var ErrNoCandidates = errors.New("no candidate rectangles")

// InvalidImageError rejects an input before any work is done.
type InvalidImageError struct {
	Height   int
	Width    int
	Channels int
	Reason   string
}

func (e *InvalidImageError) Error() string {
	return fmt.Sprintf("invalid image %dx%d with %d channels: %s",
		e.Width, e.Height, e.Channels, e.Reason)
}

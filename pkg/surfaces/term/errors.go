package term

import "errors"

// ErrAborted is returned when the user interrupts an interactive session.
var ErrAborted = errors.New("term: session aborted")

package rt

import (
	"github.com/joeycumines/logiface"
	stumpy "github.com/joeycumines/stumpy"
)

// Logger is the structured logger type threaded through rt and modest.
// It is a thin alias over logiface's generic Logger, parameterised on
// stumpy's zero-allocation JSON event, the same pairing the teacher's
// own packages use.
type Logger = logiface.Logger[*stumpy.Event]

// NewLogger builds a Logger writing newline-delimited JSON via stumpy.
// level filters out builder calls below it before any field is touched,
// so a disabled Debug() call costs a single branch.
func NewLogger(level logiface.Level, options ...stumpy.Option) *Logger {
	return logiface.New[*stumpy.Event](
		stumpy.WithStumpy(options...),
		logiface.WithLevel[*stumpy.Event](level),
	)
}

// discard is the zero-cost logger used when a caller does not supply one;
// logiface.WithLevel with LevelDisabled causes every Build call to
// short-circuit before touching the event.
var discard = logiface.New[*stumpy.Event](logiface.WithLevel[*stumpy.Event](logiface.LevelDisabled))

// DiscardLogger returns a Logger that drops everything, for use as a
// functional-option default.
func DiscardLogger() *Logger { return discard }

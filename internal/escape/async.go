package escape

import (
	"errors"
	"fmt"

	"github.com/maax3v3/escapetime/internal/plane"
)

// ErrRenderPanic reports a render that panicked on its goroutine.
var ErrRenderPanic = errors.New("render panicked")

// Result is the outcome of a render started with Async.
type Result struct {
	Kind   Kind
	Params Params
	Buffer *plane.Buffer
	Err    error
}

// render is swapped in tests.
var render = Render

// Async renders on a new goroutine and delivers the single result on the
// returned channel. The render itself is not interruptible; callers that
// lose interest simply stop reading. A panic during the render is delivered
// as ErrRenderPanic instead of crashing the process.
func Async(kind Kind, p Params) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		res := Result{Kind: kind, Params: p}
		defer func() {
			if r := recover(); r != nil {
				res.Buffer = nil
				res.Err = fmt.Errorf("%w: %v", ErrRenderPanic, r)
			}
			ch <- res
		}()
		res.Buffer, res.Err = render(kind, p)
	}()
	return ch
}

// Package explorer is an interactive terminal viewer. Each character cell
// shows two vertically stacked pixels using the upper half block, so the
// canvas is as wide as the terminal and twice as tall as the rows above the
// status line.
package explorer

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/maax3v3/escapetime/internal/color"
	"github.com/maax3v3/escapetime/internal/escape"
	"github.com/maax3v3/escapetime/internal/imaging"
	"github.com/maax3v3/escapetime/internal/plane"
	"github.com/maax3v3/escapetime/internal/viewport"
)

const (
	halfBlock = '▀'
	panStep   = 0.1
	zoomStep  = 2.0
	wheelStep = 1.25
)

// Explorer renders frames on a tcell screen and reacts to keys and mouse.
type Explorer struct {
	screen  tcell.Screen
	log     *slog.Logger
	saveDir string
	now     func() time.Time

	view View

	gen   int
	busy  bool
	frame *plane.Buffer

	pointer    image.Point
	hasPointer bool
	dragging   bool
	dragFrom   image.Point
	message    string
}

// Option configures an Explorer.
type Option func(*Explorer)

// WithView sets the first view shown.
func WithView(v View) Option {
	return func(e *Explorer) { e.view = v }
}

// WithSaveDir sets the directory frames are saved to.
func WithSaveDir(dir string) Option {
	return func(e *Explorer) { e.saveDir = dir }
}

// WithLogger sets the logger. The default discards everything, since the
// terminal belongs to the viewer.
func WithLogger(l *slog.Logger) Option {
	return func(e *Explorer) { e.log = l }
}

// New creates an Explorer drawing on screen. The caller initializes and
// finalizes the screen.
func New(screen tcell.Screen, opts ...Option) *Explorer {
	e := &Explorer{
		screen:  screen,
		log:     slog.New(slog.DiscardHandler),
		saveDir: ".",
		now:     time.Now,
		view:    DefaultView(escape.KindMandelbrot),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// View returns the current view.
func (e *Explorer) View() View { return e.view }

type frameEvent struct {
	gen     int
	started time.Time
	res     escape.Result
}

type quitEvent struct{}

// Run processes events until the user quits, which returns nil, or ctx is
// cancelled, which returns ctx.Err().
func (e *Explorer) Run(ctx context.Context) error {
	e.screen.EnableMouse()
	defer e.screen.DisableMouse()

	stop := context.AfterFunc(ctx, func() {
		_ = e.screen.PostEvent(tcell.NewEventInterrupt(quitEvent{}))
	})
	defer stop()

	e.fit()
	e.render()
	e.draw()
	for {
		switch ev := e.screen.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventInterrupt:
			switch data := ev.Data().(type) {
			case quitEvent:
				return ctx.Err()
			case frameEvent:
				e.receive(data)
			}
		case *tcell.EventResize:
			e.screen.Sync()
			e.fit()
			e.render()
		case *tcell.EventKey:
			if e.handleKey(ev) {
				return nil
			}
		case *tcell.EventMouse:
			e.handleMouse(ev)
		}
		e.draw()
	}
}

// canvas returns the pixel size of the drawing area.
func (e *Explorer) canvas() (width, height int) {
	cols, rows := e.screen.Size()
	if rows < 2 {
		return cols, 0
	}
	return cols, 2 * (rows - 1)
}

func (e *Explorer) mapper() (plane.Mapper, error) {
	w, h := e.canvas()
	return plane.NewMapper(w, h, e.view.Start, e.view.End)
}

// fit widens the view to the aspect ratio of the canvas.
func (e *Explorer) fit() {
	w, h := e.canvas()
	s, end, err := viewport.Normalize(e.view.Start, e.view.End, w, h)
	if err != nil {
		return
	}
	e.view.Start, e.view.End = s, end
}

// render starts a frame for the current view. A frame that arrives after a
// newer render was started is dropped.
func (e *Explorer) render() {
	w, h := e.canvas()
	if w <= 0 || h <= 0 {
		return
	}
	p, err := e.view.Params(w, h)
	if err != nil {
		e.message = err.Error()
		return
	}
	e.gen++
	e.busy = true
	ev := frameEvent{gen: e.gen, started: e.now()}
	results := escape.Async(e.view.Kind, p)
	go func() {
		ev.res = <-results
		if err := e.screen.PostEvent(tcell.NewEventInterrupt(ev)); err != nil {
			e.log.Warn("dropping frame", slog.Int("gen", ev.gen), slog.Any("err", err))
		}
	}()
}

func (e *Explorer) receive(ev frameEvent) {
	if ev.gen != e.gen {
		e.log.Debug("stale frame", slog.Int("gen", ev.gen), slog.Int("current", e.gen))
		return
	}
	e.busy = false
	if ev.res.Err != nil {
		e.message = ev.res.Err.Error()
		e.log.Error("render failed", slog.Any("err", ev.res.Err))
		return
	}
	e.frame = ev.res.Buffer
	e.log.Info("rendered",
		slog.String("kind", ev.res.Kind.String()),
		slog.Int("width", ev.res.Params.Width),
		slog.Int("height", ev.res.Params.Height),
		slog.Duration("elapsed", e.now().Sub(ev.started)),
	)
}

// setView switches to v and starts rendering it.
func (e *Explorer) setView(v View) {
	e.view = v
	e.message = ""
	e.render()
}

// pointerValue returns the plane value under the pointer.
func (e *Explorer) pointerValue() (complex128, bool) {
	if !e.hasPointer {
		return 0, false
	}
	m, err := e.mapper()
	if err != nil {
		return 0, false
	}
	return m.PixelToComplex(e.pointer.X, e.pointer.Y), true
}

func (e *Explorer) handleKey(ev *tcell.EventKey) (quit bool) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyLeft:
		e.setView(e.view.Panned(-panStep, 0))
	case tcell.KeyRight:
		e.setView(e.view.Panned(panStep, 0))
	case tcell.KeyUp:
		e.setView(e.view.Panned(0, -panStep))
	case tcell.KeyDown:
		e.setView(e.view.Panned(0, panStep))
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case '+', '=':
			e.zoom(viewport.Center(e.view.Start, e.view.End), zoomStep)
		case '-':
			e.zoom(viewport.Center(e.view.Start, e.view.End), 1/zoomStep)
		case 'j':
			e.switchKind(escape.KindJulia)
		case 'm':
			e.switchKind(escape.KindMandelbrot)
		case 'c':
			e.setView(e.view.NextColoring())
		case 'i':
			v := e.view
			v.MaxIter *= 2
			e.setView(v)
		case 'I':
			v := e.view
			v.MaxIter = max(1, v.MaxIter/2)
			e.setView(v)
		case 'r':
			e.view = e.view.Home()
			e.fit()
			e.setView(e.view)
		case 's':
			e.save()
		}
	}
	return false
}

func (e *Explorer) zoom(center complex128, factor float64) {
	v, err := e.view.Zoomed(center, factor)
	if err != nil {
		e.message = err.Error()
		return
	}
	e.setView(v)
}

// switchKind changes the fractal family. Entering Julia mode takes the
// parameter from the point under the pointer.
func (e *Explorer) switchKind(kind escape.Kind) {
	v := e.view
	if kind == escape.KindJulia && v.Kind == escape.KindMandelbrot {
		if z, ok := e.pointerValue(); ok {
			v.C = z
		}
	}
	if kind == v.Kind && kind == escape.KindMandelbrot {
		return
	}
	v.Kind = kind
	e.view = v.Home()
	e.fit()
	e.setView(e.view)
}

func (e *Explorer) handleMouse(ev *tcell.EventMouse) {
	w, h := e.canvas()
	if w <= 0 || h <= 0 {
		return
	}
	x, y := ev.Position()
	p := image.Pt(min(max(x, 0), w-1), min(max(2*y, 0), h-1))

	btn := ev.Buttons()
	switch {
	case btn&tcell.WheelUp != 0:
		e.pointer, e.hasPointer = p, true
		if z, ok := e.pointerValue(); ok {
			e.zoom(z, wheelStep)
		}
	case btn&tcell.WheelDown != 0:
		e.pointer, e.hasPointer = p, true
		if z, ok := e.pointerValue(); ok {
			e.zoom(z, 1/wheelStep)
		}
	case btn&tcell.Button1 != 0:
		if !e.dragging {
			e.dragging = true
			e.dragFrom = p
		}
		e.pointer, e.hasPointer = p, true
	default:
		e.pointer, e.hasPointer = p, true
		if !e.dragging {
			return
		}
		e.dragging = false
		if p == e.dragFrom {
			return
		}
		e.selectRect(e.dragFrom, p)
	}
}

func (e *Explorer) selectRect(from, to image.Point) {
	m, err := e.mapper()
	if err != nil {
		e.message = err.Error()
		return
	}
	s, end, err := viewport.Select(m, from, to)
	if err != nil {
		e.message = err.Error()
		return
	}
	v := e.view
	v.Start, v.End = s, end
	e.setView(v)
}

func (e *Explorer) save() {
	if e.frame == nil {
		e.message = "nothing to save yet"
		return
	}
	name := fmt.Sprintf("%s-%s.png", e.view.Kind, e.now().Format("20060102-150405"))
	path := filepath.Join(imaging.ExpandPath(e.saveDir), name)
	if err := imaging.Save(path, e.frame.Image()); err != nil {
		e.message = err.Error()
		e.log.Error("saving frame", slog.String("path", path), slog.Any("err", err))
		return
	}
	e.message = "saved " + path
	e.log.Info("saved frame", slog.String("path", path))
}

// inSelection reports whether the cell is inside the rectangle being dragged.
func (e *Explorer) inSelection(cx, cy int) bool {
	if !e.dragging {
		return false
	}
	r := image.Rectangle{Min: e.dragFrom, Max: e.pointer}.Canon()
	return cx >= r.Min.X && cx <= r.Max.X && 2*cy+1 >= r.Min.Y && 2*cy <= r.Max.Y
}

func (e *Explorer) draw() {
	e.screen.Clear()
	cols, rows := e.screen.Size()

	if e.frame != nil {
		for cy := 0; cy < rows-1; cy++ {
			for cx := 0; cx < cols; cx++ {
				top, err := e.frame.At(cx, 2*cy)
				if err != nil {
					continue
				}
				bottom, err := e.frame.At(cx, 2*cy+1)
				if err != nil {
					bottom = top
				}
				style := tcell.StyleDefault.Foreground(tcellColor(top)).Background(tcellColor(bottom))
				if e.inSelection(cx, cy) {
					style = style.Reverse(true)
				}
				e.screen.SetContent(cx, cy, halfBlock, nil, style)
			}
		}
	}

	if rows > 0 {
		drawText(e.screen, 0, rows-1, cols, e.statusLine(), tcell.StyleDefault.Reverse(true))
	}
	e.screen.Show()
}

func (e *Explorer) statusLine() string {
	s := fmt.Sprintf(" %s  iter %d  %s", e.view.Kind, e.view.MaxIter, e.view.Coloring)
	if e.view.Kind == escape.KindJulia {
		s += "  c=" + formatComplex(e.view.C)
	}
	if z, ok := e.pointerValue(); ok {
		s += "  @ " + formatComplex(z)
	}
	if e.busy {
		s += "  rendering..."
	}
	if e.message != "" {
		s += "  | " + e.message
	}
	return s
}

func formatComplex(z complex128) string {
	return fmt.Sprintf("%.6g%+.6gi", real(z), imag(z))
}

// drawText writes s at (x, y), clipped and padded to width cells.
func drawText(s tcell.Screen, x, y, width int, text string, style tcell.Style) {
	col := x
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if col+w > x+width {
			break
		}
		s.SetContent(col, y, r, nil, style)
		col += max(w, 1)
	}
	for ; col < x+width; col++ {
		s.SetContent(col, y, ' ', nil, style)
	}
}

func tcellColor(c color.RGB) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

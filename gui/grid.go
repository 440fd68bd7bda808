//go:build gui

package gui

import (
	"fmt"
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

const (
	gridWidth   = 480
	gridHeight  = 320
	cellGap     = 6
	captionSize = 14
)

// GridWidget previews a rows x cols window layout.
type GridWidget struct {
	widget.BaseWidget
	mu      sync.Mutex
	rows    int
	cols    int
	pinned  bool
	caption string
}

func NewGridWidget() *GridWidget {
	g := &GridWidget{rows: 2, cols: 2}
	g.ExtendBaseWidget(g)
	return g
}

func (g *GridWidget) SetShape(rows, cols int, pinned bool) {
	g.mu.Lock()
	g.rows, g.cols, g.pinned = rows, cols, pinned
	g.mu.Unlock()
	fyne.Do(g.Refresh)
}

func (g *GridWidget) SetCaption(text string) {
	g.mu.Lock()
	g.caption = text
	g.mu.Unlock()
	fyne.Do(g.Refresh)
}

func (g *GridWidget) snapshot() (rows, cols int, pinned bool, caption string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rows, g.cols, g.pinned, g.caption
}

func (g *GridWidget) MinSize() fyne.Size {
	return fyne.NewSize(gridWidth, gridHeight)
}

func (g *GridWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &gridRenderer{grid: g, caption: canvas.NewText("", colorBorder)}
	r.caption.TextSize = captionSize
	r.rebuild()
	return r
}

type gridRenderer struct {
	grid    *GridWidget
	rows    int
	cols    int
	cells   []*canvas.Rectangle
	caption *canvas.Text
	size    fyne.Size
}

func (r *gridRenderer) rebuild() {
	rows, cols, pinned, caption := r.grid.snapshot()
	if rows != r.rows || cols != r.cols {
		r.rows, r.cols = rows, cols
		r.cells = make([]*canvas.Rectangle, rows*cols)
		for i := range r.cells {
			rect := canvas.NewRectangle(color.Transparent)
			rect.StrokeColor = colorBorder
			rect.StrokeWidth = 2
			rect.CornerRadius = 6
			r.cells[i] = rect
		}
	}

	fill := colorHold
	if pinned {
		fill = colorPinned
	}
	for _, c := range r.cells {
		c.FillColor = fill
		c.Refresh()
	}

	label := fmt.Sprintf("%d×%d", rows, cols)
	if pinned {
		label += "  pinned"
	}
	if caption != "" {
		label += "  ·  " + caption
	}
	r.caption.Text = label
	r.caption.Refresh()
}

func (r *gridRenderer) Layout(size fyne.Size) {
	r.size = size
	area := fyne.NewSize(size.Width, size.Height-captionSize-cellGap*2)
	cellW := (area.Width - cellGap*float32(r.cols+1)) / float32(r.cols)
	cellH := (area.Height - cellGap*float32(r.rows+1)) / float32(r.rows)
	for y := 0; y < r.rows; y++ {
		for x := 0; x < r.cols; x++ {
			c := r.cells[y*r.cols+x]
			c.Move(fyne.NewPos(cellGap+float32(x)*(cellW+cellGap), cellGap+float32(y)*(cellH+cellGap)))
			c.Resize(fyne.NewSize(cellW, cellH))
		}
	}
	r.caption.Move(fyne.NewPos(cellGap, area.Height+cellGap/2))
}

func (r *gridRenderer) MinSize() fyne.Size {
	return r.grid.MinSize()
}

func (r *gridRenderer) Refresh() {
	r.rebuild()
	if r.size.Width > 0 {
		r.Layout(r.size)
	}
}

func (r *gridRenderer) Objects() []fyne.CanvasObject {
	objs := make([]fyne.CanvasObject, 0, len(r.cells)+1)
	for _, c := range r.cells {
		objs = append(objs, c)
	}
	return append(objs, r.caption)
}

func (r *gridRenderer) Destroy() {}

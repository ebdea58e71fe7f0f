package display

import (
	"errors"
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

var errQuit = errors.New("quit")

// EbitenDisplay renders the latest capture using Ebitengine.
type EbitenDisplay struct {
	title   string
	actions Actions

	mu          sync.Mutex
	frame       *image.RGBA
	dirty       bool
	ebitenImage *ebiten.Image
}

// NewEbitenDisplay creates a display window titled title.
func NewEbitenDisplay(title string, actions Actions) *EbitenDisplay {
	return &EbitenDisplay{title: title, actions: actions}
}

// SetFrame replaces the displayed capture. Safe to call from any goroutine.
func (d *EbitenDisplay) SetFrame(img *image.RGBA) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frame = img
	d.dirty = true
}

// Run starts the Ebitengine game loop. Must be called from the main goroutine.
func (d *EbitenDisplay) Run() error {
	ebiten.SetWindowSize(1280, 720)
	ebiten.SetWindowTitle(d.title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(d); err != nil && !errors.Is(err, errQuit) {
		return err
	}
	return nil
}

// --- ebiten.Game interface ---

func (d *EbitenDisplay) Update() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape), inpututil.IsKeyJustPressed(ebiten.KeyQ):
		return errQuit
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		if d.actions.Refresh != nil {
			go d.actions.Refresh()
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		if d.actions.Save != nil {
			go d.actions.Save()
		}
	}
	return nil
}

func (d *EbitenDisplay) Draw(screen *ebiten.Image) {
	d.mu.Lock()
	frame, dirty := d.frame, d.dirty
	d.dirty = false
	d.mu.Unlock()

	if frame == nil {
		return
	}

	fw, fh := frame.Bounds().Dx(), frame.Bounds().Dy()
	if fw == 0 || fh == 0 {
		return
	}
	if d.ebitenImage == nil || d.ebitenImage.Bounds().Dx() != fw || d.ebitenImage.Bounds().Dy() != fh {
		d.ebitenImage = ebiten.NewImage(fw, fh)
		dirty = true
	}
	if dirty {
		d.ebitenImage.WritePixels(frame.Pix)
		ebiten.SetWindowTitle(fmt.Sprintf("%s - %dx%d", d.title, fw, fh))
	}

	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	scale, offsetX, offsetY := aspectFitTransform(float64(sw), float64(sh), float64(fw), float64(fh))

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(offsetX, offsetY)
	screen.DrawImage(d.ebitenImage, op)
}

func (d *EbitenDisplay) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// aspectFitTransform returns scale and offsets to fit frame into view with letterboxing.
func aspectFitTransform(viewW, viewH, frameW, frameH float64) (scale, offsetX, offsetY float64) {
	scale = math.Min(viewW/frameW, viewH/frameH)
	offsetX = (viewW - frameW*scale) / 2
	offsetY = (viewH - frameH*scale) / 2
	return
}

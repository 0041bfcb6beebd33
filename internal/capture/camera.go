// Package capture reads the webcam with OpenCV, runs the local Haar face
// pre-check and draws the preview window.
package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"strconv"
	"sync"

	"gocv.io/x/gocv"

	"github.com/saturnino-fabrica-de-software/portaria/internal/poller"
)

const windowTitle = "Office Entry/Exit System"

// Haar cascade parameters for the face pre-check.
const (
	scaleFactor  = 1.3
	minNeighbors = 5
)

type Config struct {
	// Device is a numeric camera id or a video file / stream URL.
	Device      string
	CascadePath string
	Width       int
	Height      int
	// Mirror flips the frame horizontally before anything else.
	Mirror  bool
	Preview bool
}

// Camera implements poller.Source and, when Preview is set, poller.Display.
type Camera struct {
	cfg        Config
	logger     *slog.Logger
	webcam     *gocv.VideoCapture
	classifier gocv.CascadeClassifier
	window     *gocv.Window

	mu    sync.Mutex
	raw   gocv.Mat
	frame gocv.Mat
	gray  gocv.Mat
	face  image.Rectangle
	found bool
}

var (
	_ poller.Source  = (*Camera)(nil)
	_ poller.Display = (*Camera)(nil)
)

// Open starts the capture device and loads the cascade.
func Open(cfg Config, logger *slog.Logger) (*Camera, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 640, 480
	}

	var device interface{} = cfg.Device
	if id, err := strconv.Atoi(cfg.Device); err == nil {
		device = id
	}

	webcam, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("open camera %s: %w", cfg.Device, err)
	}
	webcam.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	webcam.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))

	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(cfg.CascadePath) {
		_ = classifier.Close()
		_ = webcam.Close()
		return nil, fmt.Errorf("load cascade %s", cfg.CascadePath)
	}

	c := &Camera{
		cfg:        cfg,
		logger:     logger.With("component", "capture"),
		webcam:     webcam,
		classifier: classifier,
		raw:        gocv.NewMat(),
		frame:      gocv.NewMat(),
		gray:       gocv.NewMat(),
	}
	if cfg.Preview {
		c.window = gocv.NewWindow(windowTitle)
	}

	c.logger.Info("camera opened",
		"device", cfg.Device,
		"width", int(webcam.Get(gocv.VideoCaptureFrameWidth)),
		"height", int(webcam.Get(gocv.VideoCaptureFrameHeight)),
		"preview", cfg.Preview,
	)
	return c, nil
}

// Next reads, mirrors and resizes a frame, runs the face pre-check and
// encodes the frame as JPEG.
func (c *Camera) Next(ctx context.Context) (poller.Frame, error) {
	if err := ctx.Err(); err != nil {
		return poller.Frame{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if ok := c.webcam.Read(&c.raw); !ok {
		return poller.Frame{}, errors.New("device closed")
	}
	if c.raw.Empty() {
		return poller.Frame{}, errors.New("empty frame")
	}

	if c.cfg.Mirror {
		gocv.Flip(c.raw, &c.raw, 1)
	}
	gocv.Resize(c.raw, &c.frame, image.Pt(c.cfg.Width, c.cfg.Height), 0, 0, gocv.InterpolationLinear)

	gocv.CvtColor(c.frame, &c.gray, gocv.ColorBGRToGray)
	faces := c.classifier.DetectMultiScaleWithParams(c.gray, scaleFactor, minNeighbors, 0, image.Point{}, image.Point{})

	c.found = len(faces) > 0
	frame := poller.Frame{HasFace: c.found}
	if c.found {
		c.face = faces[0]
		frame.CentreY = c.face.Min.Y + c.face.Dy()/2
	}

	// no face means no upload, so skip the encode
	if !c.found {
		return frame, nil
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, c.frame)
	if err != nil {
		return poller.Frame{}, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	frame.Image = append([]byte(nil), buf.GetBytes()...)
	return frame, nil
}

var (
	colorRed    = color.RGBA{R: 255, A: 255}
	colorWhite  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	colorGreen  = color.RGBA{G: 255, A: 255}
	colorOrange = color.RGBA{R: 255, G: 200, A: 255}
	colorYellow = color.RGBA{R: 255, G: 255, A: 255}
)

// Show draws the overlay on the last frame and polls the keyboard.
func (c *Camera) Show(o poller.Overlay) bool {
	if c.window == nil {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.frame.Empty() {
		return c.window.WaitKey(1) == 'q'
	}

	if o.Mode == "zone" {
		gocv.Line(&c.frame, image.Pt(0, o.LineY), image.Pt(c.frame.Cols(), o.LineY), colorRed, 2)
	}
	if c.found {
		gocv.Rectangle(&c.frame, c.face, colorGreen, 2)
	}

	for i, line := range o.Lines() {
		gocv.PutText(&c.frame, line.Text, image.Pt(10, lineY(i)), gocv.FontHersheySimplex, 0.6, lineColor(line.Kind), 2)
	}

	c.window.IMShow(c.frame)
	return c.window.WaitKey(1)&0xFF == 'q'
}

func (c *Camera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.window != nil {
		_ = c.window.Close()
	}
	_ = c.classifier.Close()
	_ = c.raw.Close()
	_ = c.frame.Close()
	_ = c.gray.Close()
	return c.webcam.Close()
}

// lineY places the clock and totals at the top and person labels below
// with a gap.
func lineY(i int) int {
	switch i {
	case 0:
		return 20
	case 1:
		return 50
	case 2:
		return 75
	}
	return 110 + (i-3)*25
}

func lineColor(kind poller.LineKind) color.RGBA {
	switch kind {
	case poller.LineClock:
		return colorWhite
	case poller.LineOutside:
		return colorOrange
	case poller.LineStatus:
		return colorYellow
	}
	return colorGreen
}

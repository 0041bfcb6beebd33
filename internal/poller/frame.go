package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/saturnino-fabrica-de-software/portaria/internal/domain"
)

// Frame is one preprocessed camera image plus the local face pre-check.
type Frame struct {
	// JPEG encoded, ready for upload.
	Image []byte
	// HasFace is the local detector's verdict; no face means no remote call.
	HasFace bool
	// CentreY is the vertical centre of the first detected face in pixels.
	CentreY int
}

// Source yields frames. An error is treated as a dead camera.
type Source interface {
	Next(ctx context.Context) (Frame, error)
}

// Overlay is everything the preview window draws over the last frame.
type Overlay struct {
	Now     time.Time
	Mode    string
	LineY   int
	Inside  int
	Outside int
	People  []domain.PersonState
	Status  string
}

// Display renders the overlay and reports whether the operator asked to quit.
type Display interface {
	Show(o Overlay) (quit bool)
}

// OverlayLine is one row of preview text.
type OverlayLine struct {
	Text string
	Kind LineKind
}

type LineKind int

const (
	LineClock LineKind = iota
	LineInside
	LineOutside
	LinePerson
	LineStatus
)

// Lines lays out the overlay text top to bottom: clock, totals, one label
// per person and the last status line.
func (o Overlay) Lines() []OverlayLine {
	lines := []OverlayLine{
		{Text: o.Now.Format("02 Jan 2006 | 15:04:05"), Kind: LineClock},
		{Text: fmt.Sprintf("Inside: %d", o.Inside), Kind: LineInside},
		{Text: fmt.Sprintf("Outside: %d", o.Outside), Kind: LineOutside},
	}

	for _, st := range o.People {
		name := st.Name
		if name == "" {
			name = st.PersonID
		}
		var label string
		if o.Mode == "zone" {
			label = fmt.Sprintf("%s | IN: %d OUT: %d", name, st.EntryCount, st.ExitCount)
		} else {
			label = fmt.Sprintf("%s | %s", name, st.Phase())
		}
		lines = append(lines, OverlayLine{Text: label, Kind: LinePerson})
	}

	if o.Status != "" {
		lines = append(lines, OverlayLine{Text: o.Status, Kind: LineStatus})
	}
	return lines
}

package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/saturnino-fabrica-de-software/portaria/internal/poller"
)

func TestLineY(t *testing.T) {
	assert.Equal(t, []int{20, 50, 75, 110, 135, 160}, []int{lineY(0), lineY(1), lineY(2), lineY(3), lineY(4), lineY(5)})
}

func TestLineColor(t *testing.T) {
	assert.Equal(t, colorWhite, lineColor(poller.LineClock))
	assert.Equal(t, colorGreen, lineColor(poller.LineInside))
	assert.Equal(t, colorOrange, lineColor(poller.LineOutside))
	assert.Equal(t, colorGreen, lineColor(poller.LinePerson))
	assert.Equal(t, colorYellow, lineColor(poller.LineStatus))
}

package poller

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/saturnino-fabrica-de-software/portaria/internal/domain"
)

func TestOverlay_Lines(t *testing.T) {
	entry := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 2, 9, 30, 15, 0, time.UTC)

	tests := []struct {
		name    string
		overlay Overlay
		want    []string
	}{
		{
			name: "zone shows counters",
			overlay: Overlay{
				Now: now, Mode: "zone", Inside: 1, Outside: 0,
				People: []domain.PersonState{{PersonID: "emp-1", Name: "Aman", EntryCount: 2, ExitCount: 1}},
				Status: "ENTRY → Aman",
			},
			want: []string{"02 Mar 2026 | 09:30:15", "Inside: 1", "Outside: 0", "Aman | IN: 2 OUT: 1", "ENTRY → Aman"},
		},
		{
			name: "attendance shows phase and falls back to id",
			overlay: Overlay{
				Now: now, Mode: "attendance", Inside: 1,
				People: []domain.PersonState{{PersonID: "emp-2", LastEntryTime: &entry}},
			},
			want: []string{"02 Mar 2026 | 09:30:15", "Inside: 1", "Outside: 0", "emp-2 | inside"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := tt.overlay.Lines()
			got := make([]string, len(lines))
			for i, l := range lines {
				got[i] = l.Text
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

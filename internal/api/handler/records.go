package handler

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/portaria/internal/domain"
	"github.com/saturnino-fabrica-de-software/portaria/internal/logstore"
)

// RecordLister reads the attendance log.
type RecordLister interface {
	Records(ctx context.Context) ([]logstore.Record, error)
}

type RecordsHandler struct {
	store RecordLister
}

func NewRecordsHandler(store RecordLister) *RecordsHandler {
	return &RecordsHandler{store: store}
}

// RecordResponse mirrors one row of the log file.
type RecordResponse struct {
	Date      string `json:"date"`
	EntryTime string `json:"entry_time"`
	ExitTime  string `json:"exit_time"`
	PersonID  string `json:"person_id"`
	Name      string `json:"name"`
	Duration  string `json:"duration"`
}

type RecordsResponse struct {
	Records []RecordResponse `json:"records"`
	Count   int              `json:"count"`
}

// List returns the log rows, optionally only those of ?date=DD-MM-YYYY.
func (h *RecordsHandler) List(c *fiber.Ctx) error {
	date := c.Query("date")
	if date != "" {
		if _, err := time.Parse(logstore.DateLayout, date); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date must be DD-MM-YYYY")
		}
	}

	records, err := h.store.Records(c.UserContext())
	if err != nil {
		var appErr *domain.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return domain.ErrStoreUnavailable.WithError(err)
	}

	records = logstore.OnDate(records, date)
	out := make([]RecordResponse, 0, len(records))
	for _, r := range records {
		row := logstore.Row(r)
		out = append(out, RecordResponse{
			Date:      row[0],
			EntryTime: row[1],
			ExitTime:  row[2],
			PersonID:  row[3],
			Name:      row[4],
			Duration:  row[5],
		})
	}

	return c.JSON(RecordsResponse{Records: out, Count: len(out)})
}

package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/portaria/internal/domain"
)

// PresenceReader is the read side of the identity memory.
type PresenceReader interface {
	Get(personID string) (domain.PersonState, bool)
	Snapshot() []domain.PersonState
	Counts() (inside, outside int)
}

type PresenceHandler struct {
	reader PresenceReader
	mode   string
}

func NewPresenceHandler(reader PresenceReader, mode string) *PresenceHandler {
	return &PresenceHandler{reader: reader, mode: mode}
}

// PersonResponse is a PersonState plus the derived attendance phase.
type PersonResponse struct {
	domain.PersonState
	Phase domain.Phase `json:"phase"`
}

type PresenceResponse struct {
	Mode    string           `json:"mode"`
	Inside  int              `json:"inside"`
	Outside int              `json:"outside"`
	People  []PersonResponse `json:"people"`
}

func toPersonResponse(st domain.PersonState) PersonResponse {
	return PersonResponse{PersonState: st, Phase: st.Phase()}
}

// List returns every known person ordered by first sighting.
func (h *PresenceHandler) List(c *fiber.Ctx) error {
	snapshot := h.reader.Snapshot()
	inside, outside := h.reader.Counts()

	people := make([]PersonResponse, 0, len(snapshot))
	for _, st := range snapshot {
		people = append(people, toPersonResponse(st))
	}

	return c.JSON(PresenceResponse{
		Mode:    h.mode,
		Inside:  inside,
		Outside: outside,
		People:  people,
	})
}

func (h *PresenceHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")
	st, ok := h.reader.Get(id)
	if !ok {
		return domain.ErrUnknownPerson
	}
	return c.JSON(toPersonResponse(st))
}

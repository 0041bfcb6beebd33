package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// HealthResponse is returned by the liveness and readiness probes
type HealthResponse struct {
	Status  string `json:"status" example:"ok"`
	Version string `json:"version,omitempty" example:"0.1.0"`
}

// PersonResponse is the presence state of one recognised person
type PersonResponse struct {
	PersonID      string `json:"person_id" example:"emp-7"`
	Name          string `json:"name" example:"Aman"`
	Side          string `json:"side" example:"inside"`
	Phase         string `json:"phase" example:"inside"`
	LastEntryTime string `json:"last_entry_time,omitempty" example:"2024-03-04T09:00:00Z"`
	LastExitTime  string `json:"last_exit_time,omitempty" example:"2024-03-04T17:30:00Z"`
	LastEventTime string `json:"last_event_time" example:"2024-03-04T09:00:00Z"`
	EntryCount    int    `json:"entry_count" example:"2"`
	ExitCount     int    `json:"exit_count" example:"1"`
	FirstSeen     string `json:"first_seen" example:"2024-03-04T09:00:00Z"`
}

// PresenceResponse summarises who is in the office
type PresenceResponse struct {
	Mode    string           `json:"mode" example:"attendance"`
	Inside  int              `json:"inside" example:"12"`
	Outside int              `json:"outside" example:"3"`
	People  []PersonResponse `json:"people"`
}

// RecordResponse is one row of the attendance log
type RecordResponse struct {
	Date      string `json:"date" example:"04-03-2024"`
	EntryTime string `json:"entry_time" example:"09:00:00"`
	ExitTime  string `json:"exit_time" example:"17:30:00"`
	PersonID  string `json:"person_id" example:"emp-7"`
	Name      string `json:"name" example:"Aman"`
	Duration  string `json:"duration" example:"08:30:00"`
}

type RecordsResponse struct {
	Records []RecordResponse `json:"records"`
	Count   int              `json:"count" example:"1"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"UNKNOWN_PERSON"`
	Message string `json:"message" example:"Person has never been seen"`
}

func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Portaria Status API",
		Version:     "v1.0.0",
		Description: "Read-only view of office presence and the attendance log",
		Host:        "localhost:3000",
		Path:        "/",
	})

	endpoints := []*endpoint.EndPoint{
		endpoint.New(
			endpoint.GET,
			"/health",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Liveness probe"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthResponse{}, "200", "Process is running"),
			}),
		),

		endpoint.New(
			endpoint.GET,
			"/ready",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Readiness probe"),
			endpoint.WithDescription("Checks that the attendance log backend can be reached"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthResponse{Status: "ready"}, "200", "Ready"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "STORE_UNAVAILABLE", Message: "Attendance log unavailable"}, "503", "Service Unavailable"),
			}),
		),

		// GET /v1/presence
		endpoint.New(
			endpoint.GET,
			"/v1/presence",
			endpoint.WithTags("Presence"),
			endpoint.WithSummary("List everyone seen since start"),
			endpoint.WithDescription("Returns inside/outside totals and the state of every recognised person, ordered by first sighting"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(PresenceResponse{}, "200", "Presence snapshot"),
			}),
		),

		// GET /v1/presence/:id
		endpoint.New(
			endpoint.GET,
			"/v1/presence/{id}",
			endpoint.WithTags("Presence"),
			endpoint.WithSummary("Get one person's presence"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Person id as returned by the recognizer")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(PersonResponse{}, "200", "Presence state"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "UNKNOWN_PERSON", Message: "Person has never been seen"}, "404", "Not Found"),
			}),
		),

		// GET /v1/records
		endpoint.New(
			endpoint.GET,
			"/v1/records",
			endpoint.WithTags("Attendance"),
			endpoint.WithSummary("List attendance log rows"),
			endpoint.WithDescription("Only available in attendance mode"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("date", parameter.Query, parameter.WithDescription("Only rows of this day (DD-MM-YYYY)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(RecordsResponse{}, "200", "Log rows in insertion order"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "HTTP_ERROR", Message: "date must be DD-MM-YYYY"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "STORE_BUSY", Message: "Attendance log is locked by another process"}, "503", "Service Unavailable"),
				response.New(ErrorResponse{Code: "STORE_UNAVAILABLE", Message: "Attendance log unavailable"}, "503", "Service Unavailable"),
			}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}

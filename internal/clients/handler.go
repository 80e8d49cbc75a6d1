package clients

import (
	"strings"
	"time"

	"buffet-backend/internal/httpx"
	"buffet-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type ClientRequest struct {
	Name    string  `json:"name" validate:"required,max=150"`
	Email   *string `json:"email" validate:"omitempty,email,max=150"`
	Phone   *string `json:"phone" validate:"omitempty,max=40"`
	Address *string `json:"address" validate:"omitempty,max=255"`
}

func (r *ClientRequest) input() ClientInput {
	return ClientInput{
		Name:    strings.TrimSpace(r.Name),
		Email:   httpx.OptionalString(r.Email),
		Phone:   httpx.OptionalString(r.Phone),
		Address: httpx.OptionalString(r.Address),
	}
}

type EventRequest struct {
	ChildName  string          `json:"childName" validate:"required,max=150"`
	Age        int             `json:"age" validate:"gte=0,lte=120"`
	ClientID   string          `json:"clientId" validate:"required"`
	EventDate  string          `json:"eventDate" validate:"required"`
	StartTime  string          `json:"startTime" validate:"required,datetime=15:04"`
	EndTime    string          `json:"endTime" validate:"required,datetime=15:04"`
	GuestCount int             `json:"guestCount" validate:"gte=0"`
	TotalValue decimal.Decimal `json:"totalValue" validate:"gte=0"`
	Status     string          `json:"status" validate:"omitempty,oneof=pending confirmed completed cancelled"`
	Notes      *string         `json:"notes"`
}

func (r *EventRequest) input(loc *time.Location) (EventInput, error) {
	date, err := httpx.ParseDate(r.EventDate, loc)
	if err != nil {
		return EventInput{}, err
	}
	return EventInput{
		ChildName:  strings.TrimSpace(r.ChildName),
		Age:        r.Age,
		ClientID:   strings.TrimSpace(r.ClientID),
		EventDate:  date,
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		GuestCount: r.GuestCount,
		TotalValue: r.TotalValue,
		Status:     models.EventStatus(r.Status),
		Notes:      httpx.OptionalString(r.Notes),
	}, nil
}

// -------------------------
// Clients
// -------------------------

// POST /api/clients
func CreateClientHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ClientRequest
		if err := httpx.BindAndValidate(c, &body); err != nil {
			return err
		}
		client, err := s.CreateClient(c.UserContext(), body.input())
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(client)
	}
}

// GET /api/clients
func ListClientsHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		clients, err := s.ListClients(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(clients)
	}
}

// GET /api/clients/:id
func GetClientHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		client, err := s.GetClient(c.UserContext(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(client)
	}
}

// PUT /api/clients/:id
func UpdateClientHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ClientRequest
		if err := httpx.BindAndValidate(c, &body); err != nil {
			return err
		}
		client, err := s.UpdateClient(c.UserContext(), c.Params("id"), body.input())
		if err != nil {
			return err
		}
		return c.JSON(client)
	}
}

// DELETE /api/clients/:id
func DeleteClientHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := s.DeleteClient(c.UserContext(), c.Params("id")); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// -------------------------
// Events
// -------------------------

// POST /api/events
func CreateEventHandler(s *Service, loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body EventRequest
		if err := httpx.BindAndValidate(c, &body); err != nil {
			return err
		}
		in, err := body.input(loc)
		if err != nil {
			return err
		}
		ev, err := s.CreateEvent(c.UserContext(), in)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(ev)
	}
}

// GET /api/events?from=2024-01-01&to=2024-01-31&clientId=...&status=confirmed
func ListEventsHandler(s *Service, loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, err := httpx.QueryDate(c, "from", loc)
		if err != nil {
			return err
		}
		to, err := httpx.QueryDate(c, "to", loc)
		if err != nil {
			return err
		}
		if to != nil {
			next := to.AddDate(0, 0, 1)
			to = &next
		}

		events, err := s.ListEvents(c.UserContext(), EventFilter{
			From:     from,
			To:       to,
			ClientID: strings.TrimSpace(c.Query("clientId")),
			Status:   models.EventStatus(c.Query("status")),
		})
		if err != nil {
			return err
		}
		return c.JSON(events)
	}
}

// GET /api/events/upcoming?limit=10
func UpcomingEventsHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := httpx.QueryLimit(c)
		if err != nil {
			return err
		}
		events, err := s.UpcomingEvents(c.UserContext(), limit)
		if err != nil {
			return err
		}
		return c.JSON(events)
	}
}

// GET /api/events/:id
func GetEventHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ev, err := s.GetEvent(c.UserContext(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(ev)
	}
}

// PUT /api/events/:id
func UpdateEventHandler(s *Service, loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body EventRequest
		if err := httpx.BindAndValidate(c, &body); err != nil {
			return err
		}
		in, err := body.input(loc)
		if err != nil {
			return err
		}
		ev, err := s.UpdateEvent(c.UserContext(), c.Params("id"), in)
		if err != nil {
			return err
		}
		return c.JSON(ev)
	}
}

// DELETE /api/events/:id
func DeleteEventHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := s.DeleteEvent(c.UserContext(), c.Params("id")); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

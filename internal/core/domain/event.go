package domain

type EventType string

const (
	EventAcademic EventType = "academic"
	EventSports   EventType = "sports"
	EventCultural EventType = "cultural"
	EventHoliday  EventType = "holiday"
	EventOther    EventType = "other"
)

type EventStatus string

const (
	EventUpcoming  EventStatus = "upcoming"
	EventOngoing   EventStatus = "ongoing"
	EventCompleted EventStatus = "completed"
	EventCancelled EventStatus = "cancelled"
)

// Event is a calendar entry shown on the events page.
type Event struct {
	ID          ID          `json:"id,omitzero"`
	Title       string      `json:"title" validate:"notblank"`
	Description string      `json:"description,omitempty"`
	Type        EventType   `json:"type" validate:"notblank,oneof=academic sports cultural holiday other"`
	Status      EventStatus `json:"status,omitempty" validate:"omitempty,oneof=upcoming ongoing completed cancelled"`
	StartDate   string      `json:"startDate" validate:"notblank,isodate"`
	EndDate     string      `json:"endDate" validate:"notblank,isodate"`
	Location    string      `json:"location" validate:"notblank"`
	Organizer   string      `json:"organizer" validate:"notblank"`
	Capacity    int         `json:"capacity,omitempty" validate:"gte=0"`
	Registered  int         `json:"registered,omitempty" validate:"gte=0"`
}

func (e Event) RecordID() ID { return e.ID }

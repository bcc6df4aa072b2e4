package domain

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

type RoomBooking struct {
	ID        ID            `json:"id,omitzero"`
	Room      string        `json:"room" validate:"notblank"`
	Title     string        `json:"title" validate:"notblank"`
	BookedBy  string        `json:"bookedBy" validate:"notblank"`
	Purpose   string        `json:"purpose,omitempty"`
	Date      string        `json:"date" validate:"notblank,isodate"`
	StartTime string        `json:"startTime" validate:"notblank"`
	EndTime   string        `json:"endTime" validate:"notblank"`
	Attendees int           `json:"attendees,omitempty" validate:"gte=0"`
	Status    BookingStatus `json:"status,omitempty" validate:"omitempty,oneof=pending confirmed cancelled"`
}

func (b RoomBooking) RecordID() ID { return b.ID }

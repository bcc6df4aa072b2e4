package mocks

import "github.com/unischedule/dashboard/internal/core/domain"

// AcademicEvents is a small events collection: three academic, two not.
// Two of the academic entries are upcoming.
func AcademicEvents() []domain.Event {
	return []domain.Event{
		NewTestEvent("1", "Opening Ceremony", domain.EventAcademic, domain.EventUpcoming),
		NewTestEvent("2", "Football Final", domain.EventSports, domain.EventUpcoming),
		NewTestEvent("3", "Thesis Defense Week", domain.EventAcademic, domain.EventCompleted),
		NewTestEvent("4", "Faculty Meeting", domain.EventAcademic, domain.EventUpcoming),
		NewTestEvent("5", "Spring Concert", domain.EventCultural, domain.EventCancelled),
	}
}

// NewTestEvent returns a valid event.
func NewTestEvent(id, title string, typ domain.EventType, status domain.EventStatus) domain.Event {
	return domain.Event{
		ID:        domain.NewID(id),
		Title:     title,
		Type:      typ,
		Status:    status,
		StartDate: "2024-03-20",
		EndDate:   "2024-03-20",
		Location:  "Main Hall",
		Organizer: "Student Office",
	}
}

package services

import (
	"strconv"

	"github.com/unischedule/dashboard/internal/core/domain"
)

func itoa(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

var EventSchema = Schema[domain.Event]{
	Resource: "events",
	Search: []func(domain.Event) string{
		func(e domain.Event) string { return e.Title },
		func(e domain.Event) string { return e.Description },
		func(e domain.Event) string { return e.Location },
		func(e domain.Event) string { return e.Organizer },
	},
	Fields: map[string]func(domain.Event) string{
		"type":   func(e domain.Event) string { return string(e.Type) },
		"status": func(e domain.Event) string { return string(e.Status) },
	},
}

var GroupSchema = Schema[domain.Group]{
	Resource: "groups",
	Search: []func(domain.Group) string{
		func(g domain.Group) string { return g.Name },
		func(g domain.Group) string { return g.Code },
		func(g domain.Group) string { return g.Coordinator },
	},
	Fields: map[string]func(domain.Group) string{
		"degree": func(g domain.Group) string { return g.Degree },
		"status": func(g domain.Group) string { return string(g.Status) },
		"year":   func(g domain.Group) string { return itoa(g.Year) },
	},
}

var LessonSchema = Schema[domain.Lesson]{
	Resource: "lessons",
	Search: []func(domain.Lesson) string{
		func(l domain.Lesson) string { return l.Title },
		func(l domain.Lesson) string { return l.Module },
		func(l domain.Lesson) string { return l.Teacher },
		func(l domain.Lesson) string { return l.Room },
	},
	Fields: map[string]func(domain.Lesson) string{
		"type":   func(l domain.Lesson) string { return string(l.Type) },
		"status": func(l domain.Lesson) string { return string(l.Status) },
		"module": func(l domain.Lesson) string { return l.Module },
		"group":  func(l domain.Lesson) string { return l.Group },
		"date":   func(l domain.Lesson) string { return l.Date },
	},
}

var LectureSchema = Schema[domain.Lecture]{
	Resource: "lectures",
	Search: []func(domain.Lecture) string{
		func(l domain.Lecture) string { return l.Title },
		func(l domain.Lecture) string { return l.Module },
		func(l domain.Lecture) string { return l.Lecturer },
		func(l domain.Lecture) string { return l.Room },
	},
	Fields: map[string]func(domain.Lecture) string{
		"status": func(l domain.Lecture) string { return string(l.Status) },
		"module": func(l domain.Lecture) string { return l.Module },
		"date":   func(l domain.Lecture) string { return l.Date },
	},
}

var ModuleSchema = Schema[domain.Module]{
	Resource: "modules",
	Search: []func(domain.Module) string{
		func(m domain.Module) string { return m.Code },
		func(m domain.Module) string { return m.Name },
		func(m domain.Module) string { return m.Teacher },
		func(m domain.Module) string { return m.Description },
	},
	Fields: map[string]func(domain.Module) string{
		"status":   func(m domain.Module) string { return string(m.Status) },
		"semester": func(m domain.Module) string { return itoa(m.Semester) },
	},
}

var RoomBookingSchema = Schema[domain.RoomBooking]{
	Resource: "room-bookings",
	Search: []func(domain.RoomBooking) string{
		func(b domain.RoomBooking) string { return b.Room },
		func(b domain.RoomBooking) string { return b.Title },
		func(b domain.RoomBooking) string { return b.BookedBy },
		func(b domain.RoomBooking) string { return b.Purpose },
	},
	Fields: map[string]func(domain.RoomBooking) string{
		"room":   func(b domain.RoomBooking) string { return b.Room },
		"status": func(b domain.RoomBooking) string { return string(b.Status) },
		"date":   func(b domain.RoomBooking) string { return b.Date },
	},
}

var DegreeSchema = Schema[domain.Degree]{
	Resource: "degrees",
	Search: []func(domain.Degree) string{
		func(d domain.Degree) string { return d.Name },
		func(d domain.Degree) string { return d.Code },
	},
	Fields: map[string]func(domain.Degree) string{
		"level": func(d domain.Degree) string { return string(d.Level) },
	},
	ReadOnly: true,
}

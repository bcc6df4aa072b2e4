package domain

type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

type LessonType string

const (
	LessonLecture  LessonType = "lecture"
	LessonLab      LessonType = "lab"
	LessonTutorial LessonType = "tutorial"
	LessonSeminar  LessonType = "seminar"
)

type Lesson struct {
	ID        ID            `json:"id,omitzero"`
	Title     string        `json:"title" validate:"notblank"`
	Module    string        `json:"module" validate:"notblank"`
	Teacher   string        `json:"teacher" validate:"notblank"`
	Room      string        `json:"room" validate:"notblank"`
	Group     string        `json:"group,omitempty"`
	Type      LessonType    `json:"type,omitempty" validate:"omitempty,oneof=lecture lab tutorial seminar"`
	Status    SessionStatus `json:"status,omitempty" validate:"omitempty,oneof=scheduled completed cancelled"`
	Date      string        `json:"date" validate:"notblank,isodate"`
	StartTime string        `json:"startTime" validate:"notblank"`
	EndTime   string        `json:"endTime" validate:"notblank"`
}

func (l Lesson) RecordID() ID { return l.ID }

type Lecture struct {
	ID        ID            `json:"id,omitzero"`
	Title     string        `json:"title" validate:"notblank"`
	Module    string        `json:"module" validate:"notblank"`
	Lecturer  string        `json:"lecturer" validate:"notblank"`
	Room      string        `json:"room" validate:"notblank"`
	Date      string        `json:"date" validate:"notblank,isodate"`
	StartTime string        `json:"startTime,omitempty"`
	EndTime   string        `json:"endTime,omitempty"`
	Status    SessionStatus `json:"status,omitempty" validate:"omitempty,oneof=scheduled completed cancelled"`
	Capacity  int           `json:"capacity,omitempty" validate:"gte=0"`
	Enrolled  int           `json:"enrolled,omitempty" validate:"gte=0"`
}

func (l Lecture) RecordID() ID { return l.ID }

type ModuleStatus string

const (
	ModuleActive   ModuleStatus = "active"
	ModuleInactive ModuleStatus = "inactive"
	ModuleArchived ModuleStatus = "archived"
)

// Module is a course unit; lessons and lectures reference it by code.
type Module struct {
	ID          ID           `json:"id,omitzero"`
	Code        string       `json:"code" validate:"notblank"`
	Name        string       `json:"name" validate:"notblank"`
	Description string       `json:"description,omitempty"`
	Teacher     string       `json:"teacher" validate:"notblank"`
	Credits     int          `json:"credits,omitempty" validate:"gte=0"`
	Semester    int          `json:"semester,omitempty" validate:"gte=0"`
	Status      ModuleStatus `json:"status,omitempty" validate:"omitempty,oneof=active inactive archived"`
}

func (m Module) RecordID() ID { return m.ID }

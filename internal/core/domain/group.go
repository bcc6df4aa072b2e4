package domain

type GroupStatus string

const (
	GroupActive   GroupStatus = "active"
	GroupInactive GroupStatus = "inactive"
	GroupArchived GroupStatus = "archived"
)

// Group is a cohort of students following one degree.
type Group struct {
	ID          ID          `json:"id,omitzero"`
	Name        string      `json:"name" validate:"notblank"`
	Code        string      `json:"code" validate:"notblank"`
	Degree      string      `json:"degree" validate:"notblank"`
	Year        int         `json:"year,omitempty" validate:"gte=0"`
	Coordinator string      `json:"coordinator,omitempty"`
	Status      GroupStatus `json:"status,omitempty" validate:"omitempty,oneof=active inactive archived"`
	Capacity    int         `json:"capacity,omitempty" validate:"gte=0"`
	Enrolled    int         `json:"enrolled,omitempty" validate:"gte=0"`
}

func (g Group) RecordID() ID { return g.ID }

type DegreeLevel string

const (
	DegreeBachelor  DegreeLevel = "bachelor"
	DegreeMaster    DegreeLevel = "master"
	DegreeDoctorate DegreeLevel = "doctorate"
)

// Degree is read-only reference data used to label groups.
type Degree struct {
	ID    ID          `json:"id,omitzero"`
	Name  string      `json:"name"`
	Code  string      `json:"code"`
	Level DegreeLevel `json:"level,omitempty"`
}

func (d Degree) RecordID() ID { return d.ID }

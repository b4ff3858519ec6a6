package model

import "strings"

// ClassroomType enumerates the kinds of rooms that can be booked.
type ClassroomType string

const (
	ClassroomAula        ClassroomType = "AULA"
	ClassroomLaboratorio ClassroomType = "LABORATORIO"
	ClassroomAuditorio   ClassroomType = "AUDITORIO"
)

// ParseClassroomType normalises s and reports whether it names a known type.
func ParseClassroomType(s string) (ClassroomType, bool) {
	t := ClassroomType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case ClassroomAula, ClassroomLaboratorio, ClassroomAuditorio:
		return t, true
	}
	return "", false
}

// Classroom is a bookable room inside exactly one building.  The ID is a
// caller-chosen code such as "C101" rather than a generated value.
// BuildingID is a plain reference; the building is loaded explicitly
// when needed.
//
// Fields:
//  ID         – classrooms.id (room code).
//  Name       – human readable name.
//  Capacity   – number of people the room holds, always > 0.
//  Type       – AULA, LABORATORIO or AUDITORIO.
//  Resources  – comma separated resource tags (projector, pcs, ...).
//  BuildingID – owning building.
type Classroom struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Capacity   int           `json:"capacity"`
	Type       ClassroomType `json:"type"`
	Resources  string        `json:"resources,omitempty"`
	BuildingID string        `json:"buildingId"`
}

// ResourceTags splits Resources into trimmed, non-empty tags.
func (c Classroom) ResourceTags() []string {
	var out []string
	for _, p := range strings.Split(c.Resources, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// AvailabilitySummary counts classrooms by whether a confirmed reservation
// is in progress right now.
type AvailabilitySummary struct {
	Total       int `json:"total"`
	Available   int `json:"available"`
	Unavailable int `json:"unavailable"`
}

// ClassroomQuery narrows a classroom listing.  Zero values mean "no
// constraint"; MinCapacity keeps rooms with Capacity >= MinCapacity.
type ClassroomQuery struct {
	BuildingID  string
	Type        ClassroomType
	MinCapacity int
}

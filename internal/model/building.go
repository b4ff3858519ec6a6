package model

// Building is a physical site that owns zero or more classrooms.  This
// struct corresponds to a row in the `buildings` table.
//
// Fields:
//  ID       – uuid primary key.
//  Name     – display name of the building.
//  Location – free-text address or campus location.
type Building struct {
	ID       string `json:"id"`       // buildings.id
	Name     string `json:"name"`     // buildings.name
	Location string `json:"location"` // buildings.location
}

package model

import (
	"elc/shared/model"

	"github.com/lib/pq"
)

const (
	TableName  = "rooms"
	EntityName = "room"

	FieldID        = "id"
	FieldName      = "name"
	FieldBuilding  = "building"
	FieldFloor     = "floor"
	FieldCapacity  = "capacity"
	FieldEquipment = "equipment"
	FieldImage     = "image"
	FieldActive    = "active"
)

type Room struct {
	ID        string         `db:"id"`
	Name      string         `db:"name"`
	Building  string         `db:"building"`
	Floor     string         `db:"floor"`
	Capacity  int            `db:"capacity"`
	Equipment pq.StringArray `db:"equipment"`
	Image     string         `db:"image"`
	Active    bool           `db:"active"`
	model.Metadata
}

// Bookable reports whether new bookings may be placed on the room.
func (r Room) Bookable() bool {
	return r.ID != "" && r.Active
}

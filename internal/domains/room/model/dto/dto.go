package dto

import (
	"mime/multipart"

	"elc/internal/domains/room/model"
	"elc/shared"
	gDto "elc/shared/dto"
	gModel "elc/shared/model"
	"elc/shared/timezone"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type CreateRoomRequest struct {
	Name      string                `json:"name"      validate:"required,max=100"`
	Building  string                `json:"building"  validate:"omitempty,max=100"`
	Floor     string                `json:"floor"     validate:"omitempty,max=20"`
	Capacity  int                   `json:"capacity"  validate:"omitempty,min=0"`
	Equipment []string              `json:"equipment" validate:"omitempty,dive,max=50"`
	Image     *multipart.FileHeader `json:"image"     validate:"omitempty,mimetypes=image/png image/jpg image/jpeg,maxfilesize=1"`
	ImageFile multipart.File        `json:"-"`
	Active    *bool                 `json:"active"    validate:"omitempty"`
}

func (c *CreateRoomRequest) ToModel(user string, imageURL string) model.Room {
	active := true
	if c.Active != nil {
		active = *c.Active
	}

	now := timezone.Now()

	return model.Room{
		ID:        uuid.NewString(),
		Name:      c.Name,
		Building:  c.Building,
		Floor:     c.Floor,
		Capacity:  c.Capacity,
		Equipment: pq.StringArray(nonNil(c.Equipment)),
		Image:     imageURL,
		Active:    active,
		Metadata: gModel.NewMetadata(user, now),
	}
}

type UpdateRoomRequest struct {
	Name      string                `db:"name"     json:"name"      validate:"omitempty,max=100"`
	Building  string                `db:"building" json:"building"  validate:"omitempty,max=100"`
	Floor     string                `db:"floor"    json:"floor"     validate:"omitempty,max=20"`
	Capacity  *int                  `db:"capacity" json:"capacity"  validate:"omitempty,min=0"`
	Equipment []string              `json:"equipment" validate:"omitempty,dive,max=50"`
	Image     *multipart.FileHeader `json:"image"     validate:"omitempty,mimetypes=image/png image/jpg image/jpeg,maxfilesize=1"`
	ImageFile multipart.File        `json:"-"`
	Active    *bool                 `db:"active"   json:"active"    validate:"omitempty"`
}

// IsEmpty reports whether the request carries no change at all.
func (u *UpdateRoomRequest) IsEmpty() bool {
	return u.Name == "" && u.Building == "" && u.Floor == "" && u.Capacity == nil &&
		u.Equipment == nil && u.Image == nil && u.Active == nil
}

type RoomResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Building  string   `json:"building"`
	Floor     string   `json:"floor"`
	Capacity  int      `json:"capacity"`
	Equipment []string `json:"equipment"`
	Image     string   `json:"image"`
	Active    bool     `json:"active"`
	gDto.Metadata
}

func (r *RoomResponse) FromModel(model model.Room) {
	r.ID = model.ID
	r.Name = model.Name
	r.Building = model.Building
	r.Floor = model.Floor
	r.Capacity = model.Capacity
	r.Equipment = nonNil(model.Equipment)
	r.Image = model.Image
	r.Active = model.Active
	r.Metadata.FromModel(model.Metadata)
}

type GetRoomsResponse struct {
	Rooms     []RoomResponse `json:"rooms"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetRoomsResponse) FromModels(models []model.Room, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Rooms = make([]RoomResponse, len(models))
	for i, mod := range models {
		r.Rooms[i].FromModel(mod)
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}

	return values
}

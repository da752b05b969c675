package hostels

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/staymate-io/staymate-backend/pkg/db/models"
	"github.com/staymate-io/staymate-backend/pkg/enums"
)

// RoomDTO exposes room state in API responses.
type RoomDTO struct {
	ID              uuid.UUID       `json:"id"`
	HostelID        uuid.UUID       `json:"hostel_id"`
	RoomType        enums.RoomType  `json:"room_type"`
	PricePerMonth   decimal.Decimal `json:"price_per_month"`
	TotalBeds       int             `json:"total_beds"`
	AvailableBeds   int             `json:"available_beds"`
	HasAttachedBath bool            `json:"has_attached_bath"`
	CreatedAt       time.Time       `json:"created_at"`
}

// HostelDTO exposes hostel state, optionally with its rooms.
type HostelDTO struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	Description *string   `json:"description,omitempty"`
	Amenities   []string  `json:"amenities"`
	Images      []string  `json:"images"`
	Rooms       []RoomDTO `json:"rooms,omitempty"`
	AvgRating   *float64  `json:"avg_rating,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// HostelList wraps the paginated city listing plus the next cursor.
type HostelList struct {
	Hostels    []HostelDTO `json:"hostels"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

// RoomToDTO maps the persistence model onto the public shape.
func RoomToDTO(room *models.Room) RoomDTO {
	return RoomDTO{
		ID:              room.ID,
		HostelID:        room.HostelID,
		RoomType:        room.RoomType,
		PricePerMonth:   room.PricePerMonth,
		TotalBeds:       room.TotalBeds,
		AvailableBeds:   room.AvailableBeds,
		HasAttachedBath: room.HasAttachedBath,
		CreatedAt:       room.CreatedAt,
	}
}

// FromModel maps the hostel model, including preloaded rooms when present.
func FromModel(hostel *models.Hostel) *HostelDTO {
	if hostel == nil {
		return nil
	}
	dto := &HostelDTO{
		ID:          hostel.ID,
		OwnerID:     hostel.OwnerID,
		Name:        hostel.Name,
		Address:     hostel.Address,
		City:        hostel.City,
		Description: hostel.Description,
		Amenities:   hostel.Amenities,
		Images:      hostel.Images,
		CreatedAt:   hostel.CreatedAt,
	}
	for i := range hostel.Rooms {
		dto.Rooms = append(dto.Rooms, RoomToDTO(&hostel.Rooms[i]))
	}
	return dto
}

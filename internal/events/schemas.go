package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/rise-and-shine/tabletop/pg"
)

// RefID is an id given as a filter. It is matched by equality.
type RefID string

type GameSystemCreate struct {
	Name        string `json:"name"         validate:"required,max=255"`
	Version     string `json:"version"      validate:"required,max=64"`
	ReleaseYear int    `json:"release_year" validate:"gte=1970"`
	Description string `json:"description"  validate:"required"`
	pg.AuditStamp
}

func (c *GameSystemCreate) NewEntity() *GameSystem {
	return &GameSystem{
		ID:               uuid.New(),
		Name:             c.Name,
		Version:          c.Version,
		ReleaseYear:      c.ReleaseYear,
		Description:      c.Description,
		BookkeepingModel: c.Bookkeeping(),
	}
}

func (c *GameSystemCreate) NaturalKey() string { return c.Name }

type GameSystemFilters struct {
	Name        string `query:"name"`
	Version     string `query:"version"`
	ReleaseYear *int   `query:"release_year"`
}

// GameSessionCreate is the payload of a new game session. Without an explicit
// game master the creator runs the session.
type GameSessionCreate struct {
	GameSystemID        uuid.UUID `json:"game_system_id"        validate:"required"`
	GameMasterID        string    `json:"game_master_id"`
	Title               string    `json:"title"                 validate:"required,max=255"`
	Description         string    `json:"description"`
	StartDate           time.Time `json:"start_date"            validate:"required"`
	EndDate             time.Time `json:"end_date"              validate:"required,gtfield=StartDate"`
	MaxPlayers          *int      `json:"max_players"           validate:"omitempty,gte=1"`
	ImageURL            *string   `json:"image_url"             validate:"omitempty,url"`
	ImageURLDescription *string   `json:"image_url_description"`
	IsPublic            bool      `json:"is_public"`
	pg.AuditStamp
}

// Stamp records the audit columns and defaults the game master to actor.
func (c *GameSessionCreate) Stamp(actor string, at time.Time) {
	c.AuditStamp.Stamp(actor, at)
	if c.GameMasterID == "" {
		c.GameMasterID = actor
	}
}

func (c *GameSessionCreate) NewEntity() *GameSession {
	return &GameSession{
		ID:                  uuid.New(),
		GameSystemID:        c.GameSystemID,
		GameMasterID:        c.GameMasterID,
		Title:               c.Title,
		Description:         c.Description,
		StartDate:           c.StartDate.UTC(),
		EndDate:             c.EndDate.UTC(),
		MaxPlayers:          c.MaxPlayers,
		ImageURL:            c.ImageURL,
		ImageURLDescription: c.ImageURLDescription,
		IsPublic:            c.IsPublic,
		BookkeepingModel:    c.Bookkeeping(),
	}
}

func (c *GameSessionCreate) NaturalKey() string { return c.Title }

type GameSessionFilters struct {
	Title        string `query:"title"`
	GameSystemID RefID  `query:"game_system_id"`
	GameMasterID RefID  `query:"game_master_id"`
	IsPublic     *bool  `query:"is_public"`
}

type userCreate struct {
	ID       string
	Username string
	pg.AuditStamp
}

func (c *userCreate) NewEntity() *User {
	return &User{ID: c.ID, Username: c.Username, BookkeepingModel: c.Bookkeeping()}
}

type membershipCreate struct {
	UserID        string
	GameSessionID uuid.UUID
	pg.AuditStamp
}

func (c *membershipCreate) NewEntity() *Membership {
	return &Membership{
		ID:               uuid.New(),
		UserID:           c.UserID,
		GameSessionID:    c.GameSessionID,
		BookkeepingModel: c.Bookkeeping(),
	}
}

package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/rise-and-shine/tabletop/pg"
)

// GameSystem is a rule set sessions are played with, e.g. D&D 5e.
type GameSystem struct {
	bun.BaseModel `bun:"table:game_systems,alias:game_system"`

	ID          uuid.UUID `bun:"id,pk,type:uuid"                            json:"id"`
	Name        string    `bun:"name,notnull,unique:ux_game_system"         json:"name"`
	Version     string    `bun:"version,notnull,unique:ux_game_system"      json:"version"`
	ReleaseYear int       `bun:"release_year,notnull,unique:ux_game_system" json:"release_year"`
	Description string    `bun:"description,notnull"                        json:"description"`
	pg.BookkeepingModel
}

// GameSession is a planned game run by a game master.
type GameSession struct {
	bun.BaseModel `bun:"table:game_sessions,alias:game_session"`

	ID                  uuid.UUID `bun:"id,pk,type:uuid"                  json:"id"`
	GameSystemID        uuid.UUID `bun:"game_system_id,notnull,type:uuid" json:"game_system_id"`
	GameMasterID        string    `bun:"game_master_id,notnull"           json:"game_master_id"`
	Title               string    `bun:"title,notnull"                    json:"title"`
	Description         string    `bun:"description,notnull"              json:"description"`
	StartDate           time.Time `bun:"start_date,notnull"               json:"start_date"`
	EndDate             time.Time `bun:"end_date,notnull"                 json:"end_date"`
	MaxPlayers          *int      `bun:"max_players"                      json:"max_players"`
	ImageURL            *string   `bun:"image_url"                        json:"image_url"`
	ImageURLDescription *string   `bun:"image_url_description"            json:"image_url_description"`
	IsPublic            bool      `bun:"is_public,notnull"                json:"is_public"`
	pg.BookkeepingModel
}

// User is a player known by the subject of their token.
type User struct {
	bun.BaseModel `bun:"table:users,alias:app_user"`

	ID                string  `bun:"id,pk"                 json:"id"`
	Username          string  `bun:"username,notnull"      json:"username"`
	ProfilePictureURL *string `bun:"profile_picture_url"   json:"profile_picture_url"`
	pg.BookkeepingModel
}

// Membership records that a user joined a game session.
type Membership struct {
	bun.BaseModel `bun:"table:users_game_sessions,alias:membership"`

	ID            uuid.UUID `bun:"id,pk,type:uuid"                                        json:"id"`
	UserID        string    `bun:"user_id,notnull,unique:ux_membership"                   json:"user_id"`
	GameSessionID uuid.UUID `bun:"game_session_id,notnull,type:uuid,unique:ux_membership" json:"game_session_id"`
	pg.BookkeepingModel
}

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/code19m/errx"
	"github.com/google/uuid"

	"github.com/rise-and-shine/tabletop/internal/crud"
	"github.com/rise-and-shine/tabletop/meta"
	"github.com/rise-and-shine/tabletop/repogen"
	"github.com/rise-and-shine/tabletop/ucdef"
	"github.com/rise-and-shine/tabletop/uow"
)

const (
	CodeGameSessionFull    = "GAME_SESSION_FULL"
	CodeMembershipNotFound = "MEMBERSHIP_NOT_FOUND"
)

// MeRequest has no fields: the caller is taken from the token.
type MeRequest struct{}

// SessionRequest addresses a game session by its :id route param.
type SessionRequest struct {
	ID string `params:"id" json:"id" validate:"required"`
}

// Players handles the user record of callers and their session memberships.
type Players struct {
	write *uow.Factory[Unit]
	now   func() time.Time
}

// NewPlayers creates Players writing through write.
func NewPlayers(write *uow.Factory[Unit]) *Players {
	return &Players{write: write, now: time.Now}
}

// SetClock replaces the clock audit timestamps are taken from.
func (p *Players) SetClock(now func() time.Time) {
	p.now = now
}

// Me returns the caller's user record, creating it on first sight.
func (p *Players) Me() ucdef.UserAction[*MeRequest, *User] {
	return ucdef.NewUserAction("users.me", func(ctx context.Context, _ *MeRequest) (*User, error) {
		id, username, err := callerOf(ctx)
		if err != nil {
			return nil, err
		}

		var user *User
		err = p.write.Do(ctx, func(ctx context.Context, u Unit) error {
			var err error
			user, err = p.ensureUser(ctx, u, id, username)
			return err
		})
		if err != nil {
			return nil, errx.Wrap(err)
		}
		return user, nil
	})
}

// Join makes the caller a player of the game session unless it is full.
// Joining a session twice returns the existing membership.
func (p *Players) Join() ucdef.UserAction[*SessionRequest, *Membership] {
	return ucdef.NewUserAction("game_sessions.join", func(ctx context.Context, in *SessionRequest) (*Membership, error) {
		id, username, err := callerOf(ctx)
		if err != nil {
			return nil, err
		}
		sessionID, err := parseSessionID(in.ID)
		if err != nil {
			return nil, err
		}

		var membership *Membership
		err = p.write.Do(ctx, func(ctx context.Context, u Unit) error {
			session, err := u.GameSessions.ReadByID(ctx, sessionID)
			if err != nil {
				return err
			}
			_, err = p.ensureUser(ctx, u, id, username)
			if err != nil {
				return err
			}

			membership, err = findMembership(ctx, u, id, sessionID)
			if err != nil || membership != nil {
				return err
			}

			_, players, err := u.Memberships.Query(ctx, repogen.FilterMap{
				"game_session_id": repogen.Scalar(sessionID),
			}, repogen.QueryOpts{})
			if err != nil {
				return err
			}
			if session.MaxPlayers != nil && players >= *session.MaxPlayers {
				return errx.New(
					fmt.Sprintf("Game Session '%s' is already at capacity! (max %d players)", session.Title, *session.MaxPlayers),
					errx.WithCode(CodeGameSessionFull),
					errx.WithType(errx.T_Validation),
					errx.WithDetails(errx.D{"game_session_id": session.ID.String(), "max_players": *session.MaxPlayers}),
				)
			}

			create := &membershipCreate{UserID: id, GameSessionID: sessionID}
			create.Stamp(id, p.now().UTC())
			membership, err = u.Memberships.Create(ctx, create, true)
			return err
		})
		if err != nil {
			return nil, errx.Wrap(err)
		}
		return membership, nil
	})
}

// Leave removes the caller from the game session and returns the id of the
// removed membership.
func (p *Players) Leave() ucdef.UserAction[*SessionRequest, *crud.DeleteResponse[uuid.UUID]] {
	return ucdef.NewUserAction("game_sessions.leave", func(ctx context.Context, in *SessionRequest) (*crud.DeleteResponse[uuid.UUID], error) {
		id, _, err := callerOf(ctx)
		if err != nil {
			return nil, err
		}
		sessionID, err := parseSessionID(in.ID)
		if err != nil {
			return nil, err
		}

		var removed *uuid.UUID
		err = p.write.Do(ctx, func(ctx context.Context, u Unit) error {
			membership, err := findMembership(ctx, u, id, sessionID)
			if err != nil {
				return err
			}
			if membership == nil {
				return errx.New(
					"Could not find game session to leave",
					errx.WithCode(CodeMembershipNotFound),
					errx.WithType(errx.T_NotFound),
					errx.WithDetails(errx.D{"game_session_id": in.ID}),
				)
			}

			removed, err = u.Memberships.Delete(ctx, membership.ID)
			return err
		})
		if err != nil {
			return nil, errx.Wrap(err)
		}
		return &crud.DeleteResponse[uuid.UUID]{ID: *removed}, nil
	})
}

func (p *Players) ensureUser(ctx context.Context, u Unit, id, username string) (*User, error) {
	users, _, err := u.Users.Query(ctx, repogen.FilterMap{"id": repogen.Scalar(id)}, repogen.QueryOpts{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(users) > 0 {
		return &users[0], nil
	}

	in := &userCreate{ID: id, Username: username}
	in.Stamp(id, p.now().UTC())
	return u.Users.Create(ctx, in, true)
}

func findMembership(ctx context.Context, u Unit, userID string, sessionID uuid.UUID) (*Membership, error) {
	items, _, err := u.Memberships.Query(ctx, repogen.FilterMap{
		"user_id":         repogen.Scalar(userID),
		"game_session_id": repogen.Scalar(sessionID),
	}, repogen.QueryOpts{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil //nolint:nilnil // not a member
	}
	return &items[0], nil
}

func callerOf(ctx context.Context) (string, string, error) {
	id, username, ok := meta.Actor(ctx)
	if !ok {
		return "", "", errx.New(
			"operation requires an authenticated caller",
			errx.WithCode(crud.CodeMissingActor),
			errx.WithType(errx.T_Authentication),
		)
	}
	if username == "" {
		username = id
	}
	return id, username, nil
}

func parseSessionID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return id, errx.New(
			fmt.Sprintf("invalid game session id %q", raw),
			errx.WithCode(crud.CodeInvalidID),
			errx.WithType(errx.T_Validation),
		)
	}
	return id, nil
}

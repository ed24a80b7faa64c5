// AngelaMos | 2026
// service.go

package usage

import (
	"context"
	"fmt"

	"github.com/carterperez-dev/templates/control-panel/internal/access"
	"github.com/carterperez-dev/templates/control-panel/internal/core"
)

const Unlimited int64 = -1

// UserRecorder persists a signed-in user's running total.
type UserRecorder interface {
	RecordUsage(ctx context.Context, userID string, tokens int64) (int64, error)
}

type Status struct {
	Guest       bool  `json:"guest"`
	TokensUsed  int64 `json:"tokens_used"`
	Limit       int64 `json:"limit"`
	Remaining   int64 `json:"remaining"`
	CanContinue bool  `json:"can_continue"`
}

type Service struct {
	guests     GuestCounter
	users      UserRecorder
	guestLimit int64
}

func NewService(guests GuestCounter, users UserRecorder, guestLimit int64) *Service {
	return &Service{
		guests:     guests,
		users:      users,
		guestLimit: guestLimit,
	}
}

// Record adds tokens to the caller's total. A nil caller is a guest
// identified by clientID.
func (s *Service) Record(
	ctx context.Context,
	caller *access.User,
	clientID string,
	tokens int64,
) (*Status, error) {
	if tokens < 0 {
		return nil, fmt.Errorf("record usage: negative amount: %w", core.ErrInvalidInput)
	}

	if caller == nil {
		used, err := s.guests.Add(ctx, clientID, tokens)
		if err != nil {
			return nil, err
		}
		return s.guestStatus(used), nil
	}

	if caller.Suspended {
		return nil, fmt.Errorf("record usage: %w", core.ErrSuspended)
	}

	used, err := s.users.RecordUsage(ctx, caller.ID, tokens)
	if err != nil {
		return nil, err
	}
	return userStatus(caller, used), nil
}

// Current reports the caller's standing without recording anything.
func (s *Service) Current(
	ctx context.Context,
	caller *access.User,
	clientID string,
) (*Status, error) {
	if caller == nil {
		used, err := s.guests.Get(ctx, clientID)
		if err != nil {
			return nil, err
		}
		return s.guestStatus(used), nil
	}
	return userStatus(caller, caller.TokensUsed), nil
}

func (s *Service) guestStatus(used int64) *Status {
	return &Status{
		Guest:       true,
		TokensUsed:  used,
		Limit:       s.guestLimit,
		Remaining:   max(s.guestLimit-used, 0),
		CanContinue: used < s.guestLimit,
	}
}

func userStatus(u *access.User, used int64) *Status {
	limit := access.TokenQuota(u)
	if limit == Unlimited {
		return &Status{
			TokensUsed:  used,
			Limit:       Unlimited,
			Remaining:   Unlimited,
			CanContinue: !u.Suspended,
		}
	}

	return &Status{
		TokensUsed:  used,
		Limit:       limit,
		Remaining:   max(limit-used, 0),
		CanContinue: !u.Suspended && used < limit,
	}
}

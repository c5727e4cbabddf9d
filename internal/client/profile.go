package client

import (
	"context"
	"fmt"
	"math"
	"time"
)

type Badge struct {
	Label string
	Color string
}

// Completion is the share of the six profile fields that are filled, in percent.
func Completion(u *User) int {
	if u == nil {
		return 0
	}
	filled := 0
	for _, ok := range []bool{
		u.FirstName != "",
		u.LastName != "",
		u.Email != "",
		u.Bio != "",
		u.Interests != "",
		u.CreatedAt != nil,
	} {
		if ok {
			filled++
		}
	}
	return int(math.Round(float64(filled) / 6 * 100))
}

// accountDays is the account age in whole days, rounded up; ok is false
// when the creation time is unknown.
func accountDays(u *User, now time.Time) (days int, ok bool) {
	if u == nil || u.CreatedAt == nil {
		return 0, false
	}
	diff := now.Sub(*u.CreatedAt)
	if diff < 0 {
		diff = -diff
	}
	return int(math.Ceil(diff.Hours() / 24)), true
}

func AccountAge(u *User, now time.Time) string {
	days, ok := accountDays(u, now)
	switch {
	case !ok:
		return "Unknown"
	case days < 30:
		return fmt.Sprintf("%d days", days)
	case days < 365:
		return fmt.Sprintf("%d months", days/30)
	default:
		return fmt.Sprintf("%d years", days/365)
	}
}

func AccountStatus(u *User, now time.Time) Badge {
	days, ok := accountDays(u, now)
	switch {
	case ok && days < 7:
		return Badge{Label: "New", Color: "bg-blue-500"}
	case ok && days < 30:
		return Badge{Label: "Active", Color: "bg-green-500"}
	case ok && days < 365:
		return Badge{Label: "Established", Color: "bg-purple-500"}
	default:
		return Badge{Label: "Veteran", Color: "bg-amber-500"}
	}
}

var roles = map[string]Badge{
	"admin":   {Label: "Admin", Color: "bg-red-500"},
	"member":  {Label: "Member", Color: "bg-blue-500"},
	"premium": {Label: "Premium", Color: "bg-purple-500"},
}

func RoleDisplay(u *User) Badge {
	if u != nil {
		if b, ok := roles[u.Role]; ok {
			return b
		}
	}
	return roles["member"]
}

// Profile runs the account screen's server actions on top of an Auth session.
type Profile struct {
	api    ProfileAPI
	auth   *Auth
	notify Notifier
}

func NewProfile(api ProfileAPI, auth *Auth, notify Notifier) *Profile {
	return &Profile{api: api, auth: auth, notify: notify}
}

func (p *Profile) UpdateProfile(ctx context.Context, in ProfileInput) error {
	if err := p.api.UpdateProfile(ctx, in); err != nil {
		p.notify.Error(errorMessage(err, "Failed to update profile"))
		return err
	}
	_, _ = p.auth.FetchUser(ctx)
	p.notify.Success("Profile updated successfully!")
	return nil
}

func (p *Profile) ChangePassword(ctx context.Context, current, next string) error {
	if err := p.api.ChangePassword(ctx, current, next); err != nil {
		p.notify.Error(errorMessage(err, "Failed to change password"))
		return err
	}
	p.notify.Success("Password changed successfully!")
	return nil
}

// DeleteAccount removes the account and then signs out.
func (p *Profile) DeleteAccount(ctx context.Context) error {
	if err := p.api.DeleteProfile(ctx); err != nil {
		p.notify.Error(errorMessage(err, "Failed to delete account"))
		return err
	}
	p.notify.Success("Account deleted successfully")
	_ = p.auth.Logout(ctx)
	return nil
}

// Package identity resolves the user the provisioning run acts on behalf of.
package identity

import (
	"os/user"
	"strconv"

	"github.com/pkg/errors"
)

var ErrSuperuser = errors.New("this program must not run as root, run it as the kiosk user")

type Identity struct {
	UID   int
	User  string
	Group string
	Home  string
}

// RequireUnprivileged returns ErrSuperuser for uid 0.
// Privileged steps escalate with sudo on their own.
func (i Identity) RequireUnprivileged() error {
	return RequireUnprivilegedUID(i.UID)
}

func RequireUnprivilegedUID(uid int) error {
	if uid == 0 {
		return ErrSuperuser
	}

	return nil
}

func Current() (Identity, error) {
	u, err := user.Current()
	if err != nil {
		return Identity{}, errors.WithMessage(err, "failed to lookup current user")
	}

	return FromUser(u, user.LookupGroupId)
}

func FromUser(u *user.User, lookupGroup func(gid string) (*user.Group, error)) (Identity, error) {
	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return Identity{}, errors.WithMessagef(err, "invalid uid %q", u.Uid)
	}

	g, err := lookupGroup(u.Gid)
	if err != nil {
		return Identity{}, errors.WithMessagef(err, "failed to lookup group %s", u.Gid)
	}

	if u.HomeDir == "" {
		return Identity{}, errors.Errorf("user %s has no home directory", u.Username)
	}

	return Identity{
		UID:   uid,
		User:  u.Username,
		Group: g.Name,
		Home:  u.HomeDir,
	}, nil
}

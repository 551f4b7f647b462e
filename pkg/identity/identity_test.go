package identity_test

import (
	"errors"
	"os/user"
	"testing"

	"github.com/humansforhousing/kioskctl/pkg/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireUnprivilegedUID(t *testing.T) {
	tests := []struct {
		name    string
		uid     int
		wantErr error
	}{
		{
			name:    "root",
			uid:     0,
			wantErr: identity.ErrSuperuser,
		},
		{
			name: "pi",
			uid:  1000,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := identity.RequireUnprivilegedUID(test.uid)

			assert.ErrorIs(t, err, test.wantErr)
		})
	}
}

func TestFromUser(t *testing.T) {
	u := &user.User{Uid: "1001", Gid: "1001", Username: "alice", HomeDir: "/home/alice"}

	id, err := identity.FromUser(u, func(gid string) (*user.Group, error) {
		assert.Equal(t, "1001", gid)

		return &user.Group{Gid: gid, Name: "alice"}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, identity.Identity{UID: 1001, User: "alice", Group: "alice", Home: "/home/alice"}, id)
	assert.NoError(t, id.RequireUnprivileged())
}

func TestFromUser_Root(t *testing.T) {
	u := &user.User{Uid: "0", Gid: "0", Username: "root", HomeDir: "/root"}

	id, err := identity.FromUser(u, func(gid string) (*user.Group, error) {
		return &user.Group{Gid: gid, Name: "root"}, nil
	})

	require.NoError(t, err)
	assert.ErrorIs(t, id.RequireUnprivileged(), identity.ErrSuperuser)
}

func TestFromUser_GroupLookupFailed(t *testing.T) {
	u := &user.User{Uid: "1001", Gid: "1001", Username: "alice", HomeDir: "/home/alice"}

	_, err := identity.FromUser(u, func(_ string) (*user.Group, error) {
		return nil, errors.New("no such group")
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to lookup group 1001")
}

func TestFromUser_EmptyHome(t *testing.T) {
	u := &user.User{Uid: "1001", Gid: "1001", Username: "alice"}

	_, err := identity.FromUser(u, func(gid string) (*user.Group, error) {
		return &user.Group{Gid: gid, Name: "alice"}, nil
	})

	assert.EqualError(t, err, "user alice has no home directory")
}

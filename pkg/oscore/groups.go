package oscore

import (
	"context"
	"os/user"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

type GroupManager struct {
	runner   Runner
	isMember func(userName, groupName string) (bool, error)
}

// NewGroupManager expects a privileged runner, usermod needs root.
func NewGroupManager(runner Runner) *GroupManager {
	return &GroupManager{
		runner:   runner,
		isMember: IsUserInGroup,
	}
}

// AddUserToGroup adds the user to a supplementary group. Membership is never
// removed. Returns false when the user is already a member.
func (m *GroupManager) AddUserToGroup(ctx context.Context, userName, groupName string) (bool, error) {
	member, err := m.isMember(userName, groupName)
	if err != nil {
		return false, err
	}

	if member {
		return false, nil
	}

	err = m.runner.Run(ctx, Command{Name: "usermod", Args: []string{"-aG", groupName, userName}})
	if err != nil {
		return false, errors.WithMessagef(err, "failed to add %s to group %s", userName, groupName)
	}

	return true, nil
}

func IsUserInGroup(userName, groupName string) (bool, error) {
	u, err := user.Lookup(userName)
	if err != nil {
		return false, errors.WithMessage(err, "failed to lookup user")
	}

	g, err := user.LookupGroup(groupName)
	if err != nil {
		var unknown user.UnknownGroupError
		if errors.As(err, &unknown) {
			return false, NewGroupNotFoundError(groupName)
		}

		return false, errors.WithMessage(err, "failed to lookup group")
	}

	ids, err := u.GroupIds()
	if err != nil {
		return false, errors.WithMessage(err, "failed to list user groups")
	}

	return lo.Contains(ids, g.Gid), nil
}

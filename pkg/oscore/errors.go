package oscore

import "strings"

const (
	defaultGrowSize = 64
)

type GroupNotFoundError struct {
	name string
}

func NewGroupNotFoundError(groupName string) *GroupNotFoundError {
	return &GroupNotFoundError{name: groupName}
}

func (e *GroupNotFoundError) Error() string {
	sb := strings.Builder{}
	sb.Grow(defaultGrowSize)

	sb.WriteString("group ")
	sb.WriteString(e.name)
	sb.WriteString(" not found")

	return sb.String()
}

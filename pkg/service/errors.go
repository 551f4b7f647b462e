package service

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrInactiveService = errors.New("service is inactive")
	ErrUnsupportedInit = errors.New("unsupported init system, systemd is required")
)

type NotFoundError struct {
	ServiceName string
}

func NewNotFoundError(serviceName string) *NotFoundError {
	return &NotFoundError{
		ServiceName: serviceName,
	}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("service %s not found", e.ServiceName)
}

package context

import (
	"context"

	osinfo "github.com/humansforhousing/kioskctl/pkg/os_info"
)

type contextKey int

const (
	osInfoKey contextKey = iota
)

func OSInfoFromContext(ctx context.Context) osinfo.Info {
	info, _ := ctx.Value(osInfoKey).(osinfo.Info)

	return info
}

func ContextWithOSInfo(ctx context.Context, info osinfo.Info) context.Context {
	return context.WithValue(ctx, osInfoKey, info)
}

// SetOSContext detects the operating system once and stores it in the context.
func SetOSContext(ctx context.Context) (context.Context, error) {
	info, err := osinfo.GetOSInfo(ctx)
	if err != nil {
		return ctx, err
	}

	return ContextWithOSInfo(ctx, info), nil
}

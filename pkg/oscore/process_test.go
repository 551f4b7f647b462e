package oscore_test

import (
	"context"
	"os"
	"testing"

	"github.com/humansforhousing/kioskctl/pkg/oscore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindProcessByCmdline(t *testing.T) {
	p, err := oscore.FindProcessByCmdline(context.Background(), os.Args[0])

	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Positive(t, p.Pid)
}

func TestFindProcessByCmdline_NotFound(t *testing.T) {
	p, err := oscore.FindProcessByCmdline(context.Background(), "humans_for_housing_video_player.main-not-running")

	require.NoError(t, err)
	assert.Nil(t, p)
}

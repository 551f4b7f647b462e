package shellquote_test

import (
	"testing"

	"github.com/humansforhousing/kioskctl/pkg/shellquote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoin(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "plain",
			args: []string{"/home/alice/.local/bin/uv", "run", "python"},
			want: "/home/alice/.local/bin/uv run python",
		},
		{
			name: "space in path",
			args: []string{"/home/alice/my kiosk/uv", "run"},
			want: `"/home/alice/my kiosk/uv" run`,
		},
		{
			name: "quote and dollar",
			args: []string{`say "$HOME"`},
			want: `"say \"$$HOME\""`,
		},
		{
			name: "dollar without quoting",
			args: []string{"/opt/$kiosk/uv"},
			want: "/opt/$$kiosk/uv",
		},
		{
			name: "unit specifier",
			args: []string{"/opt/100%n/uv", "--label=%i"},
			want: "/opt/100%%n/uv --label=%%i",
		},
		{
			name: "backslash",
			args: []string{`C:\kiosk`},
			want: `"C:\\kiosk"`,
		},
		{
			name: "empty argument",
			args: []string{"echo", ""},
			want: `echo ""`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, shellquote.Join(test.args...))
		})
	}
}

func TestJoin_SplitRoundTrip(t *testing.T) {
	args := []string{"/opt/my kiosk/uv", "run", "python", "-m", "humans_for_housing_video_player.main"}

	words, err := shellquote.Split(shellquote.Join(args...))

	require.NoError(t, err)
	assert.Equal(t, args, words)
}

package utils_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/humansforhousing/kioskctl/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompter_AskWithDefault(t *testing.T) {
	tests := []struct {
		name  string
		input string
		def   string
		want  string
	}{
		{
			name:  "empty answer takes default",
			input: "\n",
			def:   "/home/alice/app",
			want:  "/home/alice/app",
		},
		{
			name:  "override",
			input: "  /srv/kiosk  \n",
			def:   "/home/alice/app",
			want:  "/srv/kiosk",
		},
		{
			name:  "end of input takes default",
			input: "",
			def:   "/home/alice/app",
			want:  "/home/alice/app",
		},
		{
			name:  "answer without newline",
			input: "/srv/kiosk",
			def:   "/home/alice/app",
			want:  "/srv/kiosk",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			p := utils.NewPrompter(strings.NewReader(test.input), out)

			answer, err := p.AskWithDefault(context.Background(), "Install path", test.def, nil)

			require.NoError(t, err)
			assert.Equal(t, test.want, answer)
			assert.Contains(t, out.String(), "Install path ["+test.def+"]: ")
		})
	}
}

func TestPrompter_AskWithDefault_Validation(t *testing.T) {
	out := &bytes.Buffer{}
	p := utils.NewPrompter(strings.NewReader("relative/path\n/srv/kiosk\n"), out)

	answer, err := p.AskWithDefault(
		context.Background(),
		"Install path",
		"/home/alice/app",
		func(s string) (bool, string, error) {
			if !strings.HasPrefix(s, "/") {
				return false, "Please enter an absolute path.", nil
			}

			return true, "", nil
		},
	)

	require.NoError(t, err)
	assert.Equal(t, "/srv/kiosk", answer)
	assert.Equal(t, 2, strings.Count(out.String(), "Install path [/home/alice/app]: "))
	assert.Contains(t, out.String(), "Please enter an absolute path.")
}

func TestPrompter_Ask_SequentialAnswers(t *testing.T) {
	p := utils.NewPrompter(strings.NewReader("first\n\nthird\n"), &bytes.Buffer{})
	ctx := context.Background()

	first, err := p.Ask(ctx, "1: ", true, nil)
	require.NoError(t, err)
	second, err := p.Ask(ctx, "2: ", true, nil)
	require.NoError(t, err)
	third, err := p.Ask(ctx, "3: ", true, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "", "third"}, []string{first, second, third})
}

func TestPrompter_Ask_RequiredAnswer(t *testing.T) {
	p := utils.NewPrompter(strings.NewReader("\n\nvalue\n"), &bytes.Buffer{})

	answer, err := p.Ask(context.Background(), "Value: ", false, nil)

	require.NoError(t, err)
	assert.Equal(t, "value", answer)
}

func TestPrompter_Ask_RequiredAnswerEOF(t *testing.T) {
	p := utils.NewPrompter(strings.NewReader(""), &bytes.Buffer{})

	_, err := p.Ask(context.Background(), "Value: ", false, nil)

	assert.ErrorIs(t, err, utils.ErrNoInput)
}

func TestPrompter_Ask_ValidationError(t *testing.T) {
	p := utils.NewPrompter(strings.NewReader("n\n"), &bytes.Buffer{})
	abort := errors.New("installation aborted by user")

	_, err := p.Ask(context.Background(), "Continue? ", false, func(_ string) (bool, string, error) {
		return true, "", abort
	})

	assert.ErrorIs(t, err, abort)
}

func TestPrompter_Ask_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := utils.NewPrompter(strings.NewReader("x\n"), &bytes.Buffer{}).Ask(ctx, "Value: ", true, nil)

	assert.ErrorIs(t, err, context.Canceled)
}

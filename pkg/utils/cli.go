package utils

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"golang.org/x/term"
)

var ErrNoInput = errors.New("input closed before an answer was given")

type Prompter struct {
	reader *bufio.Reader
	out    io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		reader: bufio.NewReader(in),
		out:    out,
	}
}

func NewStdPrompter() *Prompter {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		log.Println("stdin is not a terminal, answers are read from input")
	}

	return NewPrompter(os.Stdin, os.Stdout)
}

// Ask prints the question until the answer passes validation. An empty
// answer is returned as is when allowEmpty is set. End of input counts as
// an empty answer.
func (p *Prompter) Ask(
	ctx context.Context,
	question string,
	allowEmpty bool,
	validate func(string) (bool, string, error),
) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		_, _ = fmt.Fprint(p.out, question)

		result, err := p.reader.ReadString('\n')
		eof := errors.Is(err, io.EOF)
		if err != nil && !eof {
			return result, errors.WithMessage(err, "failed to read string")
		}
		if eof {
			_, _ = fmt.Fprintln(p.out)
		}
		result = strings.TrimSpace(result)

		if allowEmpty && result == "" {
			return result, nil
		}

		if validate != nil && result != "" {
			ok, message, err := validate(result)
			if err != nil {
				return result, err
			}
			if !ok {
				_, _ = fmt.Fprintln(p.out, message)
				if eof {
					return "", ErrNoInput
				}

				continue
			}
		}

		if result != "" {
			return result, nil
		}

		if eof {
			return "", ErrNoInput
		}
	}
}

// AskWithDefault shows the default in brackets and returns it for an empty answer.
func (p *Prompter) AskWithDefault(
	ctx context.Context,
	label string,
	defaultValue string,
	validate func(string) (bool, string, error),
) (string, error) {
	question := fmt.Sprintf("%s [%s]: ", label, defaultValue)
	if defaultValue == "" {
		question = label + ": "
	}

	answer, err := p.Ask(ctx, question, defaultValue != "", validate)
	if err != nil {
		return "", err
	}

	return lo.CoalesceOrEmpty(answer, defaultValue), nil
}

package oscore

import (
	"context"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

type Command struct {
	Name string
	Args []string
	Dir  string
	Env  []string
}

func (c Command) String() string {
	b := strings.Builder{}
	b.Grow(defaultGrowSize)

	for _, env := range c.Env {
		b.WriteString(env)
		b.WriteByte(' ')
	}

	b.WriteString(c.Name)

	for _, arg := range c.Args {
		b.WriteByte(' ')
		b.WriteString(arg)
	}

	return b.String()
}

type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// ExecRunner runs commands as the current user. Output goes to the log
// unless Stdout/Stderr are set.
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// NewInteractiveRunner attaches the command to the terminal of the current process.
func NewInteractiveRunner() *ExecRunner {
	return &ExecRunner{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

func (r *ExecRunner) Run(ctx context.Context, c Command) error {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = log.Writer()
	}
	cmd.Stderr = r.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = log.Writer()
	}

	log.Println(cmd.String())

	if err := cmd.Run(); err != nil {
		return errors.WithMessagef(err, "command '%s' failed", c.String())
	}

	return nil
}

// SudoRunner runs every command through sudo. Environment variables are
// passed with env(1) because sudo resets the environment.
type SudoRunner struct {
	runner Runner
}

func Privileged(runner Runner) *SudoRunner {
	return &SudoRunner{runner: runner}
}

func (s *SudoRunner) Run(ctx context.Context, c Command) error {
	args := make([]string, 0, len(c.Env)+len(c.Args)+2) //nolint:mnd

	if len(c.Env) > 0 {
		args = append(args, "env")
		args = append(args, c.Env...)
	}

	args = append(args, c.Name)
	args = append(args, c.Args...)

	return s.runner.Run(ctx, Command{Name: "sudo", Args: args, Dir: c.Dir})
}

// ValidateSudo asks for the sudo password once, before the first privileged step.
func ValidateSudo(ctx context.Context) error {
	err := NewInteractiveRunner().Run(ctx, Command{Name: "sudo", Args: []string{"-v"}})
	if err != nil {
		return errors.WithMessage(err, "failed to obtain sudo privileges")
	}

	return nil
}

package oscore

import (
	"context"
	"sync"
)

// RecordingRunner records commands instead of running them.
type RecordingRunner struct {
	mu       sync.Mutex
	commands []Command

	// Errors maps a command name to the error returned for it.
	Errors map[string]error
}

func NewRecordingRunner() *RecordingRunner {
	return &RecordingRunner{}
}

func (r *RecordingRunner) Run(_ context.Context, c Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.commands = append(r.commands, c)

	return r.Errors[c.Name]
}

func (r *RecordingRunner) Commands() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]Command, len(r.commands))
	copy(result, r.commands)

	return result
}

// Lines returns recorded commands in their string form.
func (r *RecordingRunner) Lines() []string {
	commands := r.Commands()
	result := make([]string, 0, len(commands))

	for _, c := range commands {
		result = append(result, c.String())
	}

	return result
}

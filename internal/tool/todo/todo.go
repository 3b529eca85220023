// Package todo implements read_todos and write_todos, a task list the model keeps for itself.
package todo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Cyclone1070/terminus/internal/tool"
)

var (
	ErrInvalidStatus    = errors.New("invalid status")
	ErrEmptyDescription = errors.New("description cannot be empty")
)

// Status is the state of a todo item.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Todo is a single task item.
type Todo struct {
	Description string `json:"description"`
	Status      Status `json:"status"`
}

// Store holds the todo list in memory for the life of the process.
type Store struct {
	mu    sync.RWMutex
	todos []Todo
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{}
}

// Read returns a copy of the current list.
func (s *Store) Read() []Todo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Todo(nil), s.todos...)
}

// Write replaces the list.
func (s *Store) Write(todos []Todo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.todos = append([]Todo(nil), todos...)
}

// Tools builds the todo tools over a shared Store.
type Tools struct {
	store *Store
}

// New creates the todo tool set.
func New(store *Store) *Tools {
	return &Tools{store: store}
}

// All returns every todo tool.
func (t *Tools) All() []tool.Tool {
	return []tool.Tool{t.ReadTodos(), t.WriteTodos()}
}

type ReadTodosRequest struct{}

// ReadTodos returns the read_todos tool.
func (t *Tools) ReadTodos() tool.Tool {
	return tool.New(tool.Descriptor{
		Name:        "read_todos",
		Description: "Show the current task list.",
		Safety:      tool.SafetySafe,
	}, func(ctx context.Context, tc tool.Context, req *ReadTodosRequest) (string, error) {
		return format(t.store.Read()), nil
	})
}

type WriteTodosRequest struct {
	Todos []Todo `json:"todos"`
}

func (r *WriteTodosRequest) Validate() error {
	for i, todo := range r.Todos {
		switch todo.Status {
		case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		default:
			return fmt.Errorf("%w at index %d: %q", ErrInvalidStatus, i, todo.Status)
		}
		if strings.TrimSpace(todo.Description) == "" {
			return fmt.Errorf("%w at index %d", ErrEmptyDescription, i)
		}
	}
	return nil
}

// WriteTodos returns the write_todos tool. It replaces the whole list.
func (t *Tools) WriteTodos() tool.Tool {
	return tool.New(tool.Descriptor{
		Name:        "write_todos",
		Description: "Replace the task list. Use it to plan multi-step work and mark progress. An empty list clears it.",
		Safety:      tool.SafetySafe,
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"todos": {
					Type:        tool.TypeArray,
					Description: "The complete task list",
					Items: &tool.Schema{
						Type: tool.TypeObject,
						Properties: map[string]*tool.Schema{
							"description": {Type: tool.TypeString},
							"status": {
								Type: tool.TypeString,
								Enum: []string{string(StatusPending), string(StatusInProgress), string(StatusCompleted), string(StatusCancelled)},
							},
						},
						Required: []string{"description", "status"},
					},
				},
			},
			Required: []string{"todos"},
		},
	}, func(ctx context.Context, tc tool.Context, req *WriteTodosRequest) (string, error) {
		t.store.Write(req.Todos)
		return format(req.Todos), nil
	})
}

var marks = map[Status]string{
	StatusPending:    "[ ]",
	StatusInProgress: "[~]",
	StatusCompleted:  "[x]",
	StatusCancelled:  "[-]",
}

func format(todos []Todo) string {
	if len(todos) == 0 {
		return "No todos"
	}
	lines := make([]string, len(todos))
	for i, todo := range todos {
		lines[i] = fmt.Sprintf("%s %s", marks[todo.Status], todo.Description)
	}
	return strings.Join(lines, "\n")
}

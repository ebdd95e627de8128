// Package commands is the table of user actions shared by the interactive
// menu, the call history and the MCP server. Each command issues exactly one
// API request.
package commands

import (
	"context"
	"fmt"
	"sort"

	"github.com/hyperengineering/moltbook"
)

// RunFunc performs a command with parsed arguments.
type RunFunc func(ctx context.Context, c *moltbook.Client, a Args) (*moltbook.Result, error)

// Command is one menu entry.
type Command struct {
	// ID is the menu number. 0 is reserved for exit.
	ID int
	// Name is a stable snake_case identifier.
	Name   string
	Group  string
	Title  string
	Params []Param
	// Public commands run without an API key.
	Public bool
	Run    RunFunc
}

// Label is the menu text, for example "Agent: me".
func (c Command) Label() string {
	return c.Group + ": " + c.Title
}

// Resolve turns raw input into Args: blanks take defaults, values are parsed
// by kind, and required parameters must be present. Parameters whose When
// returns false are skipped.
func (c Command) Resolve(raw map[string]any) (Args, error) {
	args := Args{}
	for _, p := range c.Params {
		if p.When != nil && !p.When(args) {
			continue
		}
		v := raw[p.Name]
		if isBlank(v) {
			if p.Default != "" {
				v = p.Default
			} else if p.Optional {
				continue
			} else {
				return nil, &ArgError{Param: p.Name, Message: "is required"}
			}
		}
		parsed, err := p.Parse(v)
		if err != nil {
			return nil, err
		}
		args[p.Name] = parsed
	}
	return args, nil
}

// Execute resolves raw input and runs the command.
func (c Command) Execute(ctx context.Context, client *moltbook.Client, raw map[string]any) (*moltbook.Result, error) {
	args, err := c.Resolve(raw)
	if err != nil {
		return nil, err
	}
	return c.Run(ctx, client, args)
}

// Registry indexes commands by menu number and by name.
type Registry struct {
	byID   map[int]Command
	byName map[string]Command
	order  []int
}

// NewRegistry builds a registry. It panics on a duplicate ID or name, or on
// a command without Run.
func NewRegistry(cmds []Command) *Registry {
	r := &Registry{
		byID:   make(map[int]Command, len(cmds)),
		byName: make(map[string]Command, len(cmds)),
	}
	for _, c := range cmds {
		if c.ID <= 0 || c.Run == nil {
			panic(fmt.Sprintf("commands: invalid command %d %q", c.ID, c.Name))
		}
		if _, dup := r.byID[c.ID]; dup {
			panic(fmt.Sprintf("commands: duplicate id %d", c.ID))
		}
		if _, dup := r.byName[c.Name]; dup {
			panic(fmt.Sprintf("commands: duplicate name %q", c.Name))
		}
		r.byID[c.ID] = c
		r.byName[c.Name] = c
		r.order = append(r.order, c.ID)
	}
	sort.Ints(r.order)
	return r
}

// Lookup returns the command with menu number id.
func (r *Registry) Lookup(id int) (Command, bool) {
	c, ok := r.byID[id]
	return c, ok
}

// ByName returns the command with the given name.
func (r *Registry) ByName(name string) (Command, bool) {
	c, ok := r.byName[name]
	return c, ok
}

// All returns the commands in menu order.
func (r *Registry) All() []Command {
	out := make([]Command, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// MaxID is the highest menu number.
func (r *Registry) MaxID() int {
	if len(r.order) == 0 {
		return 0
	}
	return r.order[len(r.order)-1]
}

// Default returns the registry of every Moltbook command.
func Default() *Registry {
	return NewRegistry(builtin())
}

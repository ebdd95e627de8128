package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the type of a command parameter.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "integer"
	case KindBool:
		return "boolean"
	default:
		return "string"
	}
}

// ErrInvalidArg is wrapped by every argument error.
var ErrInvalidArg = errors.New("invalid argument")

// ArgError reports a bad or missing argument.
// Extractable via errors.As(). Supports errors.Is(err, ErrInvalidArg).
type ArgError struct {
	Param   string
	Message string
}

func (e *ArgError) Error() string {
	return fmt.Sprintf("%s: %s", e.Param, e.Message)
}

func (e *ArgError) Is(target error) bool { return target == ErrInvalidArg }

// Param describes one input a command collects.
type Param struct {
	// Name is the machine name used for tool arguments and --arg flags.
	Name string
	// Prompt is shown in the interactive menu.
	Prompt string
	// Help describes the parameter for tool schemas.
	Help string
	Kind Kind
	// Default is used when the value is blank, in the same text form a user would type.
	Default string
	// Optional parameters may be left empty without a default.
	Optional bool
	// Min and Max bound integer values when Max > 0.
	Min, Max int
	// When, if set, decides from earlier arguments whether this one is asked.
	When func(Args) bool
}

// Required reports whether a value must be supplied.
func (p Param) Required() bool {
	return !p.Optional && p.Default == ""
}

// Parse converts a raw value into the parameter's type and checks its bounds.
// Strings are accepted for every kind so typed input and tool input share
// one path.
func (p Param) Parse(v any) (any, error) {
	switch p.Kind {
	case KindInt:
		n, err := toInt(v)
		if err != nil {
			return nil, &ArgError{Param: p.Name, Message: err.Error()}
		}
		if p.Max > 0 && (n < p.Min || n > p.Max) {
			return nil, &ArgError{Param: p.Name, Message: fmt.Sprintf("must be between %d and %d", p.Min, p.Max)}
		}
		return n, nil
	case KindBool:
		b, err := toBool(v)
		if err != nil {
			return nil, &ArgError{Param: p.Name, Message: err.Error()}
		}
		return b, nil
	default:
		switch t := v.(type) {
		case string:
			return strings.TrimSpace(t), nil
		case json.Number:
			return t.String(), nil
		case float64, int, int64, bool:
			return fmt.Sprint(t), nil
		}
		return nil, &ArgError{Param: p.Name, Message: fmt.Sprintf("expected a string, got %T", v)}
	}
}

func toInt(v any) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case float64:
		if t != math.Trunc(t) {
			return 0, fmt.Errorf("%v is not a whole number", t)
		}
		return int(t), nil
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0, fmt.Errorf("%q is not a whole number", t.String())
		}
		return int(n), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, fmt.Errorf("%q is not a whole number", t)
		}
		return n, nil
	}
	return 0, fmt.Errorf("expected an integer, got %T", v)
}

func toBool(v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "y", "yes", "true", "1", "on":
			return true, nil
		case "n", "no", "false", "0", "off":
			return false, nil
		}
		return false, fmt.Errorf("%q is not yes or no", t)
	}
	return false, fmt.Errorf("expected a boolean, got %T", v)
}

// Args holds parsed argument values keyed by parameter name.
type Args map[string]any

// String returns a string argument, or "".
func (a Args) String(name string) string {
	s, _ := a[name].(string)
	return s
}

// Int returns an integer argument, or 0.
func (a Args) Int(name string) int {
	n, _ := a[name].(int)
	return n
}

// Bool returns a boolean argument, or false.
func (a Args) Bool(name string) bool {
	b, _ := a[name].(bool)
	return b
}

// isBlank reports values that mean "use the default".
func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	}
	return false
}

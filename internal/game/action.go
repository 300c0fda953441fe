package game

import (
	"fmt"
	"strings"
)

// Action is one ledger entry as the engine sees it. The ledger stores the
// String() form and never looks inside.
type Action interface {
	String() string
	isAction()
}

// Move pushes a piece from an edge dot into the adjacent interior point.
type Move struct {
	From          Coord
	To            Coord
	Reinforcement bool
}

// Select picks the pending run containing At.
type Select struct {
	At Coord
}

// Toggle flips keep/remove for the reinforcement piece at At.
type Toggle struct {
	At Coord
}

// Remove takes exactly the listed points off the board.
type Remove struct {
	At []Coord
}

func (Move) isAction()   {}
func (Select) isAction() {}
func (Toggle) isAction() {}
func (Remove) isAction() {}

const (
	reinforcementPrefix = "G"
	selectPrefix        = "s:"
	togglePrefix        = "t:"
	removePrefix        = "x:"
)

func (m Move) String() string {
	s := m.From.String() + "-" + m.To.String()
	if m.Reinforcement {
		return reinforcementPrefix + s
	}
	return s
}

func (s Select) String() string { return selectPrefix + s.At.String() }
func (t Toggle) String() string { return togglePrefix + t.At.String() }

func (r Remove) String() string {
	parts := make([]string, 0, len(r.At))
	for _, c := range r.At {
		parts = append(parts, c.String())
	}
	return removePrefix + strings.Join(parts, ",")
}

// ParseAction decodes a ledger payload.
func ParseAction(payload string) (Action, error) {
	payload = strings.TrimSpace(payload)
	switch {
	case strings.HasPrefix(payload, selectPrefix):
		c, err := ParseCoord(payload[len(selectPrefix):])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
		}
		return Select{At: c}, nil
	case strings.HasPrefix(payload, togglePrefix):
		c, err := ParseCoord(payload[len(togglePrefix):])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
		}
		return Toggle{At: c}, nil
	case strings.HasPrefix(payload, removePrefix):
		body := payload[len(removePrefix):]
		if body == "" {
			return nil, fmt.Errorf("%w: empty removal", ErrBadPayload)
		}
		var out Remove
		for _, part := range strings.Split(body, ",") {
			c, err := ParseCoord(strings.TrimSpace(part))
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
			}
			out.At = append(out.At, c)
		}
		return out, nil
	}

	var m Move
	if strings.HasPrefix(payload, reinforcementPrefix) {
		m.Reinforcement = true
		payload = payload[len(reinforcementPrefix):]
	}
	from, to, ok := strings.Cut(payload, "-")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBadPayload, payload)
	}
	var err error
	if m.From, err = ParseCoord(from); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if m.To, err = ParseCoord(to); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return m, nil
}

// Package lifecycle provides the state machines behind approval requests,
// inventory transfers and sales. Machines are built once per entity load
// from its persisted status; services fire triggers to validate and compute
// transitions before anything is written back.
package lifecycle

import (
	"errors"
	"fmt"
)

// State is a persisted lifecycle status.
type State string

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// Trigger is an event that can cause a state transition.
type Trigger string

// String returns the string representation of the trigger.
func (t Trigger) String() string {
	return string(t)
}

var (
	// ErrInvalidTransition is returned when a trigger is not permitted in
	// the current state.
	ErrInvalidTransition = errors.New("invalid state transition")
)

// Machine tracks a current state and validates transitions against a fixed
// transition table.
type Machine interface {
	// State returns the current state.
	State() State

	// CanFire reports whether the trigger is permitted in the current state.
	CanFire(trigger Trigger) bool

	// Fire executes the trigger, moving to the target state if permitted.
	Fire(trigger Trigger) error

	// PermittedTriggers returns the triggers that can fire from the
	// current state.
	PermittedTriggers() []Trigger
}

// Builder assembles a transition table and produces Machine instances.
type Builder struct {
	transitions map[State]map[Trigger]State
	terminal    map[State]bool
}

// NewBuilder creates an empty transition table.
func NewBuilder() *Builder {
	return &Builder{
		transitions: make(map[State]map[Trigger]State),
		terminal:    make(map[State]bool),
	}
}

// Permit allows trigger to move fromState to toState.
func (b *Builder) Permit(fromState State, trigger Trigger, toState State) *Builder {
	if b.terminal[fromState] {
		panic(fmt.Sprintf("state %s is terminal, cannot permit transitions from it", fromState))
	}
	row, ok := b.transitions[fromState]
	if !ok {
		row = make(map[Trigger]State)
		b.transitions[fromState] = row
	}
	row[trigger] = toState
	return b
}

// Terminal marks states that permit no outgoing transitions.
func (b *Builder) Terminal(states ...State) *Builder {
	for _, s := range states {
		if len(b.transitions[s]) > 0 {
			panic(fmt.Sprintf("state %s has outgoing transitions, cannot be terminal", s))
		}
		b.terminal[s] = true
	}
	return b
}

// Build creates a machine positioned at the given initial state.
func (b *Builder) Build(initial State) Machine {
	if _, known := b.transitions[initial]; !known && !b.terminal[initial] {
		panic(fmt.Sprintf("unknown initial state: %s", initial))
	}

	// Copy the table so machines stay immutable after Build.
	table := make(map[State]map[Trigger]State, len(b.transitions))
	for from, row := range b.transitions {
		rowCopy := make(map[Trigger]State, len(row))
		for trig, to := range row {
			rowCopy[trig] = to
		}
		table[from] = rowCopy
	}

	return &machine{currentState: initial, transitions: table}
}

type machine struct {
	currentState State
	transitions  map[State]map[Trigger]State
}

func (m *machine) State() State {
	return m.currentState
}

func (m *machine) CanFire(trigger Trigger) bool {
	row, ok := m.transitions[m.currentState]
	if !ok {
		return false
	}
	_, ok = row[trigger]
	return ok
}

func (m *machine) Fire(trigger Trigger) error {
	row, ok := m.transitions[m.currentState]
	if !ok {
		return fmt.Errorf("%w: trigger %s from terminal state %s", ErrInvalidTransition, trigger, m.currentState)
	}
	to, ok := row[trigger]
	if !ok {
		return fmt.Errorf("%w: trigger %s from state %s", ErrInvalidTransition, trigger, m.currentState)
	}
	m.currentState = to
	return nil
}

func (m *machine) PermittedTriggers() []Trigger {
	row := m.transitions[m.currentState]
	triggers := make([]Trigger, 0, len(row))
	for trig := range row {
		triggers = append(triggers, trig)
	}
	return triggers
}

// Package state tracks the active state of independent regions and runs
// entry/exit actions on transitions.
//
// Addressing is flat: a state is identified by a (Region, ID) pair and
// there is no nesting.
package state

import (
	"fmt"

	"github.com/robotalks/microctl/pkg/event"
)

// Region identifies an orthogonal region.
type Region int

// ID identifies a state within a region.
type ID int

// None is reported by Current for a region that was never activated.
const None ID = -1

// Action is an entry or exit action.
type Action func()

type actions struct {
	entry Action
	exit  Action
}

// Machine is the per-region state table.
// It is not safe for concurrent use.
type Machine struct {
	events  event.Drainer
	table   [][]actions
	current []ID
}

// New creates a Machine. events is drained by Start.
func New(events event.Drainer) *Machine {
	return &Machine{events: events}
}

func (m *Machine) actions(region Region, id ID) *actions {
	if region < 0 || id < 0 {
		panic(fmt.Sprintf("state: invalid state (%d, %d)", region, id))
	}
	for int(region) >= len(m.table) {
		m.table = append(m.table, nil)
	}
	row := m.table[region]
	for int(id) >= len(row) {
		row = append(row, actions{})
	}
	m.table[region] = row
	return &row[id]
}

// OnEntry sets the entry action of a state.
func (m *Machine) OnEntry(region Region, id ID, fn Action) {
	m.actions(region, id).entry = fn
}

// OnExit sets the exit action of a state.
func (m *Machine) OnExit(region Region, id ID, fn Action) {
	m.actions(region, id).exit = fn
}

// Current returns the active state of region, or None.
func (m *Machine) Current(region Region) ID {
	if region < 0 || int(region) >= len(m.current) {
		return None
	}
	return m.current[region]
}

// IsIn reports whether id is the active state of region.
func (m *Machine) IsIn(region Region, id ID) bool {
	return m.Current(region) == id
}

// Initial activates id in region and runs its entry action, without
// exiting any previous state.
func (m *Machine) Initial(region Region, id ID) {
	acts := m.actions(region, id)
	for int(region) >= len(m.current) {
		m.current = append(m.current, None)
	}
	m.current[region] = id
	if acts.entry != nil {
		acts.entry()
	}
}

// Transit runs the exit action of the active state of region, if any,
// then activates id as Initial does.
func (m *Machine) Transit(region Region, id ID) {
	if cur := m.Current(region); cur != None {
		if exit := m.actions(region, cur).exit; exit != nil {
			exit()
		}
	}
	m.Initial(region, id)
}

// Start activates id as Initial does, then drains the event kernel so
// events raised by the entry action are processed before returning.
func (m *Machine) Start(region Region, id ID) {
	m.Initial(region, id)
	m.events.Drain()
}

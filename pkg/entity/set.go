package entity

import (
	"time"

	"gitlab.com/adam.stanek/huckleberry/pkg/action"
	"gitlab.com/adam.stanek/huckleberry/pkg/child"
)

// Opts - options for building entities
type Opts struct {
	// Location - time zone used for displayed timestamps, defaults to local
	Location *time.Location
	// Buttons - expose device actions as buttons
	Buttons bool
}

// NewSet - builds all entities for the children
func NewSet(children []child.Child, caller Caller, opts Opts) []Entity {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	entities := []Entity{NewChildrenSensor(children)}

	for _, c := range children {
		entities = append(entities,
			NewProfileSensor(c),
			NewGrowthSensor(c, loc),
			NewDiaperSensor(c, loc),
			NewSleepSensor(c),
			NewFeedingSensor(c),
			NewSleepSwitch(c, caller),
			NewFeedingSwitch(c, child.SideLeft, caller),
			NewFeedingSwitch(c, child.SideRight, caller),
		)

		if opts.Buttons {
			for _, t := range action.Types {
				if t.RequiresMeasurement() {
					continue
				}
				entities = append(entities, NewActionButton(c, t, caller))
			}
		}
	}

	return entities
}

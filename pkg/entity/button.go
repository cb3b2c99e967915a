package entity

import (
	"context"
	"fmt"
	"strings"

	"gitlab.com/adam.stanek/huckleberry/pkg/action"
	"gitlab.com/adam.stanek/huckleberry/pkg/child"
)

var actionIcons = map[string]string{
	"sleep":   "mdi:sleep",
	"feeding": "mdi:baby-bottle",
	"diaper":  "mdi:baby",
	"growth":  "mdi:human-male-height",
}

// ActionButton - exposes a device action as a button
type ActionButton struct {
	base
	actionType action.Type
	caller     Caller
}

// NewActionButton - constructor
func NewActionButton(c child.Child, actionType action.Type, caller Caller) *ActionButton {
	words := strings.Split(string(actionType), "_")

	icon := ""
	for _, word := range words {
		if i, ok := actionIcons[word]; ok {
			icon = i
			break
		}
	}

	name := strings.Join(words, " ")
	name = strings.ToUpper(name[:1]) + name[1:]

	return &ActionButton{
		base: base{
			child:    c,
			platform: PlatformButton,
			objectID: fmt.Sprintf("action_%v", actionType),
			name:     name,
			icon:     icon,
		},
		actionType: actionType,
		caller:     caller,
	}
}

// ActionType - device action triggered by the button
func (b *ActionButton) ActionType() action.Type { return b.actionType }

// State - buttons have no state
func (b *ActionButton) State(src Source) string { return "" }

// Attributes - none
func (b *ActionButton) Attributes(src Source) map[string]interface{} {
	return map[string]interface{}{}
}

// Available - last refresh succeeded
func (b *ActionButton) Available(src Source) bool { return src.LastUpdateSuccess() }

// Press - executes the device action
func (b *ActionButton) Press(ctx context.Context) error {
	return b.caller.CallAction(ctx, action.DeviceID(b.child.UID), b.actionType)
}

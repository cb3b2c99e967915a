package entity

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"gitlab.com/adam.stanek/huckleberry/pkg/child"
)

// ChildrenSensor - number of children on the account
type ChildrenSensor struct {
	base
	children []child.Child
}

// NewChildrenSensor - constructor
func NewChildrenSensor(children []child.Child) *ChildrenSensor {
	return &ChildrenSensor{
		base: base{
			platform: PlatformSensor,
			objectID: "children",
			name:     "Huckleberry Children",
			icon:     "mdi:account-child",
			unit:     "children",
		},
		children: children,
	}
}

// UniqueID - the sensor is not bound to any child
func (s *ChildrenSensor) UniqueID() string { return "huckleberry_children" }

// Device - the sensor is not bound to any child
func (s *ChildrenSensor) Device() *Device { return nil }

// Value - count of children
func (s *ChildrenSensor) Value() int {
	return len(s.children)
}

// State - count of children
func (s *ChildrenSensor) State(src Source) string {
	return fmt.Sprint(s.Value())
}

// Attributes - profiles, ids and names of the children
func (s *ChildrenSensor) Attributes(src Source) map[string]interface{} {
	profiles := make([]map[string]interface{}, 0, len(s.children))
	ids := make([]string, 0, len(s.children))
	names := make([]string, 0, len(s.children))

	for _, c := range s.children {
		profiles = append(profiles, c.Summary())
		ids = append(ids, c.UID)
		names = append(names, c.Name)
	}

	return map[string]interface{}{
		"children":    profiles,
		"child_ids":   ids,
		"child_names": names,
	}
}

// Available - last refresh succeeded
func (s *ChildrenSensor) Available(src Source) bool {
	return src.LastUpdateSuccess()
}

// ProfileSensor - child profile, named after the child's device
type ProfileSensor struct {
	base
}

// NewProfileSensor - constructor
func NewProfileSensor(c child.Child) *ProfileSensor {
	return &ProfileSensor{base{
		child:    c,
		platform: PlatformSensor,
		objectID: "profile",
		icon:     "mdi:account",
	}}
}

// Device - links the profile picture as the configuration url
func (s *ProfileSensor) Device() *Device {
	device := s.base.Device()
	device.ConfigurationURL = s.child.Picture
	return device
}

// State - the child's name
func (s *ProfileSensor) State(src Source) string {
	return s.child.Name
}

// Attributes - all known profile fields
func (s *ProfileSensor) Attributes(src Source) map[string]interface{} {
	return s.child.Profile()
}

// Available - last refresh succeeded
func (s *ProfileSensor) Available(src Source) bool {
	return src.LastUpdateSuccess()
}

// GrowthSensor - latest growth measurement
type GrowthSensor struct {
	base
	location *time.Location
}

// NewGrowthSensor - constructor
func NewGrowthSensor(c child.Child, loc *time.Location) *GrowthSensor {
	return &GrowthSensor{
		base: base{
			child:    c,
			platform: PlatformSensor,
			objectID: "growth",
			name:     "Growth",
			icon:     "mdi:human-male-height",
		},
		location: loc,
	}
}

func (s *GrowthSensor) growth(src Source) *child.GrowthMeasurement {
	data, _ := src.ChildData(s.child.UID)
	if data.GrowthData.IsEmpty() {
		return nil
	}

	return data.GrowthData
}

// State - time of the most recent measurement
func (s *GrowthSensor) State(src Source) string {
	growth := s.growth(src)
	if growth == nil {
		return "No data"
	}

	if growth.Timestamp != nil && *growth.Timestamp != 0 {
		return unixTime(*growth.Timestamp, s.location).Format(displayLayout)
	}

	return "Unknown"
}

// Attributes - measured values with their units
func (s *GrowthSensor) Attributes(src Source) map[string]interface{} {
	attrs := map[string]interface{}{}

	growth := s.growth(src)
	if growth == nil {
		return attrs
	}

	measurement := func(key, unitKey string, value *float64, unit, defaultUnit string) {
		if value == nil {
			return
		}
		if unit == "" {
			unit = defaultUnit
		}
		attrs[key] = *value
		attrs[unitKey] = unit
		attrs[strings.TrimSuffix(unitKey, "_unit")+"_display"] = fmt.Sprintf("%v %v", formatNumber(*value), unit)
	}

	measurement("weight", "weight_unit", growth.Weight, growth.WeightUnits, "kg")
	measurement("height", "height_unit", growth.Height, growth.HeightUnits, "cm")
	measurement("head_circumference", "head_unit", growth.Head, growth.HeadUnits, "hcm")

	if growth.Timestamp != nil && *growth.Timestamp != 0 {
		attrs["last_measured"] = isoFormat(unixTime(*growth.Timestamp, s.location))
	}

	return attrs
}

// Available - last refresh succeeded
func (s *GrowthSensor) Available(src Source) bool {
	return src.LastUpdateSuccess()
}

// DiaperSensor - last diaper change
type DiaperSensor struct {
	base
	location *time.Location
}

// NewDiaperSensor - constructor
func NewDiaperSensor(c child.Child, loc *time.Location) *DiaperSensor {
	return &DiaperSensor{
		base: base{
			child:    c,
			platform: PlatformSensor,
			objectID: "last_diaper",
			name:     "Last Diaper",
			icon:     "mdi:baby",
		},
		location: loc,
	}
}

func (s *DiaperSensor) lastDiaper(src Source) *child.LastDiaper {
	data, _ := src.ChildData(s.child.UID)
	if data.DiaperData == nil || data.DiaperData.Prefs == nil {
		return nil
	}

	last := data.DiaperData.Prefs.LastDiaper
	if last == nil || *last == (child.LastDiaper{}) {
		return nil
	}

	return last
}

// State - time of the last diaper change
func (s *DiaperSensor) State(src Source) string {
	last := s.lastDiaper(src)
	if last == nil {
		return "No changes logged"
	}

	if last.Start != nil && *last.Start != 0 {
		return unixTime(*last.Start, s.location).Format(displayLayout)
	}

	return "Unknown"
}

// Attributes - time, mode and timezone of the last change
func (s *DiaperSensor) Attributes(src Source) map[string]interface{} {
	attrs := map[string]interface{}{}

	last := s.lastDiaper(src)
	if last == nil {
		return attrs
	}

	if last.Start != nil && *last.Start != 0 {
		attrs["timestamp"] = *last.Start
		attrs["time"] = isoFormat(unixTime(*last.Start, s.location))
	}

	if last.Mode != "" {
		mode := string(last.Mode)
		attrs["mode"] = mode
		first, size := utf8.DecodeRuneInString(mode)
		attrs["type"] = string(unicode.ToUpper(first)) + strings.ToLower(mode[size:])
	}

	if last.Offset != nil {
		attrs["timezone_offset_minutes"] = *last.Offset
	}

	return attrs
}

// Available - last refresh succeeded
func (s *DiaperSensor) Available(src Source) bool {
	return src.LastUpdateSuccess()
}

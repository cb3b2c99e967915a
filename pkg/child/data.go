package child

import (
	reflect "reflect"
)

// Data - snapshot of all tracked records of a single child
// Sections are replaced wholesale on update, never merged field by field.
type Data struct {
	SleepStatus *SleepStatus       `json:"sleep_status,omitempty"`
	FeedStatus  *FeedStatus        `json:"feed_status,omitempty"`
	DiaperData  *DiaperStatus      `json:"diaper_data,omitempty"`
	GrowthData  *GrowthMeasurement `json:"growth_data,omitempty"`
}

// Snapshot - data of all children keyed by child uid
type Snapshot map[string]Data

// Merge - Merges non-nil sections of an argument to the data.
// Returns ptr to new data if changes
// Returns ptr to old data if not changed
func (data *Data) Merge(update *Data) *Data {
	newData := &Data{}
	changed := false

	currReflect := reflect.ValueOf(data).Elem()
	newReflect := reflect.ValueOf(newData).Elem()
	patchReflect := reflect.ValueOf(update).Elem()

	for i := 0; i < currReflect.NumField(); i++ {
		currField := currReflect.Field(i)
		newField := newReflect.Field(i)
		patchField := patchReflect.Field(i)

		if patchField.IsNil() {
			newField.Set(currField)
		} else {
			if !reflect.DeepEqual(currField.Interface(), patchField.Interface()) {
				changed = true
			}
			newField.Set(patchField)
		}
	}

	if changed {
		return newData
	}

	return data
}

// Clone - returns a shallow copy of the snapshot
// Sections are shared, they are never mutated once stored.
func (s Snapshot) Clone() Snapshot {
	c := make(Snapshot, len(s))
	for uid, data := range s {
		c[uid] = data
	}

	return c
}

package child

// Child - child profile (matching the Huckleberry API)
type Child struct {
	UID           string                 `json:"uid" yaml:"uid"`
	Name          string                 `json:"name" yaml:"name"`
	Birthday      string                 `json:"birthday,omitempty" yaml:"birthday,omitempty"`
	Picture       string                 `json:"picture,omitempty" yaml:"picture,omitempty"`
	Gender        string                 `json:"gender,omitempty" yaml:"gender,omitempty"`
	Color         string                 `json:"color,omitempty" yaml:"color,omitempty"`
	CreatedAt     *float64               `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	NightStart    string                 `json:"night_start,omitempty" yaml:"night_start,omitempty"`
	MorningCutoff string                 `json:"morning_cutoff,omitempty" yaml:"morning_cutoff,omitempty"`
	ExpectedNaps  *int                   `json:"expected_naps,omitempty" yaml:"expected_naps,omitempty"`
	Categories    map[string]interface{} `json:"categories,omitempty" yaml:"categories,omitempty"`
}

// Profile - returns the profile fields as a flat map, leaving out the empty ones
func (c Child) Profile() map[string]interface{} {
	m := map[string]interface{}{
		"uid":  c.UID,
		"name": c.Name,
	}

	for key, value := range map[string]string{
		"birthday":       c.Birthday,
		"picture":        c.Picture,
		"gender":         c.Gender,
		"color":          c.Color,
		"night_start":    c.NightStart,
		"morning_cutoff": c.MorningCutoff,
	} {
		if value != "" {
			m[key] = value
		}
	}

	if c.CreatedAt != nil {
		m["created_at"] = *c.CreatedAt
	}

	if c.ExpectedNaps != nil {
		m["expected_naps"] = *c.ExpectedNaps
	}

	if c.Categories != nil {
		m["categories"] = c.Categories
	}

	return m
}

// Summary - returns all profile fields including the empty ones (null when unset)
func (c Child) Summary() map[string]interface{} {
	m := map[string]interface{}{
		"uid":            c.UID,
		"name":           c.Name,
		"birthday":       nilIfEmpty(c.Birthday),
		"picture":        nilIfEmpty(c.Picture),
		"gender":         nilIfEmpty(c.Gender),
		"color":          nilIfEmpty(c.Color),
		"created_at":     nil,
		"night_start":    nilIfEmpty(c.NightStart),
		"morning_cutoff": nilIfEmpty(c.MorningCutoff),
		"expected_naps":  nil,
		"categories":     nil,
	}

	if c.CreatedAt != nil {
		m["created_at"] = *c.CreatedAt
	}

	if c.ExpectedNaps != nil {
		m["expected_naps"] = *c.ExpectedNaps
	}

	if c.Categories != nil {
		m["categories"] = c.Categories
	}

	return m
}

func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}

	return s
}

package models

// Menu categories used by the built-in catalog. Loaded catalogs may add more.
const (
	CategoryWarmup   = "warmup"
	CategoryFielding = "fielding"
	CategoryBatting  = "batting"
	CategoryPitching = "pitching"
)

// Condition holds the participant thresholds a menu requires. A nil field
// places no constraint.
type Condition struct {
	MinP      *int `json:"minP,omitempty"`
	MinIF     *int `json:"minIF,omitempty"`
	MinOF     *int `json:"minOF,omitempty"`
	MinTotal  *int `json:"minTotal,omitempty"`
	MinPlusIF *int `json:"minPlusIF,omitempty"`
}

// Menu is a reusable activity template.
type Menu struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	CategoryShort      string    `json:"categoryShort"`
	Category           string    `json:"category"`
	DurationDefaultMin int       `json:"durationDefaultMin"`
	Condition          Condition `json:"conditions"`
}

// Threshold returns a pointer to n, for building conditions inline.
func Threshold(n int) *int {
	return &n
}

// Clone returns a copy of c that shares no thresholds with it.
func (c Condition) Clone() Condition {
	dup := func(p *int) *int {
		if p == nil {
			return nil
		}
		return Threshold(*p)
	}
	return Condition{
		MinP:      dup(c.MinP),
		MinIF:     dup(c.MinIF),
		MinOF:     dup(c.MinOF),
		MinTotal:  dup(c.MinTotal),
		MinPlusIF: dup(c.MinPlusIF),
	}
}

// Clone returns a deep copy of m.
func (m Menu) Clone() Menu {
	m.Condition = m.Condition.Clone()
	return m
}

package models

// Counts is a snapshot of how many participants can play each role.
// Total is optional; when nil it is P+IF+OF. In roster mode Total is the
// number of selected members and may exceed the per-role sum.
type Counts struct {
	P        int            `json:"P"`
	IF       int            `json:"IF"`
	OF       int            `json:"OF"`
	Total    *int           `json:"total,omitempty"`
	Skills   map[string]int `json:"skills,omitempty"`
	CanCatch int            `json:"canCatch,omitempty"`
}

// RoleSum returns P+IF+OF.
func (c Counts) RoleSum() int {
	return c.P + c.IF + c.OF
}

// PlusIF returns P+IF, the pool available for infield drills.
func (c Counts) PlusIF() int {
	return c.P + c.IF
}

// Headcount returns Total when set, otherwise RoleSum.
func (c Counts) Headcount() int {
	if c.Total != nil {
		return *c.Total
	}
	return c.RoleSum()
}

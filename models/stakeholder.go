package models

// Stakeholder is an internal party entitled to a share of every
// transaction's net proceeds. Ratios across all stakeholders should sum
// to 1.0; violations are warned about, not rejected.
type Stakeholder struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Ratio float64 `json:"ratio"`
}

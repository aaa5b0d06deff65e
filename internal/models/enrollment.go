package models

type Enrollment struct {
	ID         string `db:"id" json:"id"`
	ProcessID  string `db:"process_id" json:"process_id"`
	ResidentID string `db:"resident_id" json:"resident_id"`
	Active     bool   `db:"active" json:"active"`
	CreatedAt  int64  `db:"created_at" json:"created_at"`
}

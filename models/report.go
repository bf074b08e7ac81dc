package models

// MonthlyHours is one (user, month, year) bucket of approved hours.
type MonthlyHours struct {
	UserID     uint    `json:"user_id"`
	UserName   string  `json:"user_name"`
	Month      int     `json:"month"`
	Year       int     `json:"year"`
	TotalHours float64 `json:"total_hours"`
}

// RangeHours is a user's approved hours inside a date range.
type RangeHours struct {
	UserID     uint    `json:"user_id"`
	UserName   string  `json:"user_name"`
	TotalHours float64 `json:"total_hours"`
}

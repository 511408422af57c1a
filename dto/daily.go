package dto

type DayQuery struct {
	Date string `form:"date" binding:"omitempty,date"`
}

type RangeQuery struct {
	From string `form:"from" binding:"required,date"`
	To   string `form:"to" binding:"required,date"`
}

type ReviewQuery struct {
	Topic      string `form:"topic"`
	Difficulty string `form:"difficulty" binding:"difficulty"`
}

type HealthResponse struct {
	Status   string            `json:"status"`
	Checks   map[string]string `json:"checks"`
	System   any               `json:"system,omitempty"`
	Uptime   string            `json:"uptime"`
	Timezone string            `json:"timezone"`
}

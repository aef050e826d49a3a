package dto

// JobPayload is the full body for creating or replacing a job posting.
type JobPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

package domain

// Task is exclusively owned by one account; when the owner goes, the task goes.
type Task struct {
	ID      string `json:"id"`
	OwnerID string `json:"ownerID"`
	Type    string `json:"type"`
	Text    string `json:"text"`
}

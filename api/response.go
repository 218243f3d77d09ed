package api

import "time"

// Response is the common envelope every endpoint returns, success or
// failure. Error carries the failure taxonomy name and is empty on success.
type Response struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	ElapsedMs int64     `json:"elapsedMs"`
	Error     string    `json:"error"`
	Data      any       `json:"data"`
}

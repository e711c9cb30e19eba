package dto

import "time"

// JoinQueueRequest is the request to enter the waiting line for a concert
type JoinQueueRequest struct {
	ConcertID string `json:"concert_id" binding:"required"`
}

// JoinQueueResponse is the result of a queue registration attempt
type JoinQueueResponse struct {
	ConcertID           string `json:"concert_id"`
	Position            int64  `json:"position"`
	TotalQueue          int64  `json:"total_queue"`
	AdmittedImmediately bool   `json:"admitted_immediately"`
	Message             string `json:"message"`
}

// QueueStatusEvent is one tick of the queue status stream
type QueueStatusEvent struct {
	Position             int64     `json:"position"`
	TotalQueue           int64     `json:"total_queue"`
	EstimatedWaitSeconds int64     `json:"estimated_wait_seconds"`
	CanEnter             bool      `json:"can_enter"`
	Timestamp            time.Time `json:"timestamp"`
}

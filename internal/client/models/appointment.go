package models

import "time"

type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
)

// Appointment mirrors the server's appointment resource. Date and Time keep
// the server's string representation (YYYY-MM-DD and HH:MM), Duration is in
// minutes.
type Appointment struct {
	ID            int64             `json:"id"`
	Title         string            `json:"title"`
	Description   string            `json:"description,omitempty"`
	Date          string            `json:"date"`
	Time          string            `json:"time"`
	Duration      int               `json:"duration"`
	CustomerName  string            `json:"customerName"`
	CustomerEmail string            `json:"customerEmail"`
	Status        AppointmentStatus `json:"status"`
	CreatedAt     time.Time         `json:"createdAt"`
}

// AppointmentStats is the aggregate returned by the stats endpoint.
type AppointmentStats struct {
	Total     int `json:"total"`
	Scheduled int `json:"scheduled"`
	Cancelled int `json:"cancelled"`
	Completed int `json:"completed"`
	Today     int `json:"today"`
}

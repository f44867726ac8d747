package models

import "time"

// Enrollment captures one student's registration in one course for the
// period that was current when it was created. Status is free text; the
// registry stores it but never interprets it.
type Enrollment struct {
	CourseName     string    `json:"course_name"`
	CourseCode     string    `json:"course_code"`
	InstructorName string    `json:"instructor_name"`
	Status         string    `json:"status"`
	EnrolledAt     time.Time `json:"enrolled_at"`
}

// RegistryInfo is the public read of registry ownership and the period
// mutations currently target.
type RegistryInfo struct {
	Administrator string `json:"administrator"`
	CurrentPeriod string `json:"current_period"`
}

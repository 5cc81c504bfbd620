package types

import "time"

// SubmissionRecord is one participant registration. The id is the sole key;
// File names the artifact in the upload directory and stays valid until the
// record is deleted. The admin and public listings expose the identical
// field set.
type SubmissionRecord struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	SchoolOrigin        string `json:"schoolOrigin"`
	CompetitionCategory string `json:"competitionCategory"`
	Level               string `json:"level"`
	File                string `json:"file"`
	UploadedAt          string `json:"uploadedAt"`
}

// Timestamp format for SubmissionRecord.UploadedAt.
const UploadedAtFormat = time.RFC3339

type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type UploadResponse struct {
	Success bool              `json:"success"`
	Item    *SubmissionRecord `json:"item,omitempty"`
}

type CheckAuthResponse struct {
	Authenticated bool      `json:"authenticated"`
	User          *AuthUser `json:"user,omitempty"`
}

type AuthUser struct {
	Username string `json:"username"`
}

// LevelCount is one bar of the admin dashboard chart.
type LevelCount struct {
	Level string `json:"level"`
	Count int    `json:"count"`
}

type StatsResponse struct {
	Levels     []LevelCount `json:"levels"`
	Categories []string     `json:"categories"`
}

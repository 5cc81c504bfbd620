package audit

var schemaVersion = "1.0.0"
var logContext = "audit"

type Disposition string

const (
	DispositionNeutral Disposition = "neutral"
	DispositionGood    Disposition = "good"
	DispositionBad     Disposition = "bad"
)

type EventType string

const (
	EvtLoginSucceeded    EventType = "login_succeeded"
	EvtLoginFailed       EventType = "login_failed"
	EvtSubmissionCreated EventType = "submission_created"
	EvtSubmissionDeleted EventType = "submission_deleted"
	EvtArchiveExported   EventType = "archive_exported"
	EvtCSVExported       EventType = "csv_exported"
)

type UnixMilli int64

type Message struct {
	// Actor is the admin username behind the event, absent for the
	// anonymous public surface.
	Actor         *string     `json:"actor"`
	LogContext    string      `json:"log_context" validate:"required"`
	SchemaVersion string      `json:"version"     validate:"required"`
	Disposition   Disposition `json:"disposition" validate:"required"`
	Type          EventType   `json:"event_type"  validate:"required"`

	Timestamp UnixMilli `json:"timestamp" validate:"required"`
}

type LoginEvent struct {
	Username string `json:"username" validate:"required"`
}

type Login struct {
	Event LoginEvent `json:"event" validate:"required"`
	Message
}

type SubmissionCreatedEvent struct {
	SubmissionID        string `json:"submission_id"        validate:"required"`
	Name                string `json:"name"                 validate:"required"`
	SchoolOrigin        string `json:"school_origin"`
	CompetitionCategory string `json:"competition_category"`
	Level               string `json:"level"`
	File                string `json:"file"                 validate:"required"`
}

type SubmissionCreated struct {
	Event SubmissionCreatedEvent `json:"event" validate:"required"`
	Message
}

type SubmissionDeletedEvent struct {
	SubmissionID string `json:"submission_id" validate:"required"`
	File         string `json:"file"          validate:"required"`
}

type SubmissionDeleted struct {
	Event SubmissionDeletedEvent `json:"event" validate:"required"`
	Message
}

type ExportEvent struct {
	Format  string `json:"format" validate:"required"`
	Records int    `json:"records"`
}

type Export struct {
	Event ExportEvent `json:"event" validate:"required"`
	Message
}

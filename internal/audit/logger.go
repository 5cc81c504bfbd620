// Package audit emits the portal's audit trail as one JSON object per line:
// logins, submissions appearing and disappearing, and bulk exports. The
// stream is separate from the diagnostic slog output so it can be shipped
// and retained on its own schedule.
package audit

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/indokarya/registration-portal/internal/logger"
	"github.com/indokarya/registration-portal/internal/types"
)

var (
	mu  sync.Mutex
	out io.Writer = os.Stdout
)

// SetOutput redirects the audit stream. Tests use this to capture events.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	out = w
}

func message(t EventType, disp Disposition, actor *string) Message {
	return Message{
		Actor:         actor,
		LogContext:    logContext,
		SchemaVersion: schemaVersion,
		Disposition:   disp,
		Type:          t,
		Timestamp:     UnixMilli(time.Now().UTC().UnixMilli()),
	}
}

func emit(t EventType, event any) {
	evtStr, err := json.Marshal(event)
	if err != nil {
		logger.Logger.Error("could not serialize audit event", "event_type", t)
		return
	}

	mu.Lock()
	defer mu.Unlock()

	fmt.Fprintln(out, string(evtStr))
}

func LogLoginSucceeded(username string) {
	event := Login{}
	event.Message = message(EvtLoginSucceeded, DispositionGood, &username)
	event.Event.Username = username

	emit(EvtLoginSucceeded, event)
}

func LogLoginFailed(username string) {
	event := Login{}
	event.Message = message(EvtLoginFailed, DispositionBad, nil)
	event.Event.Username = username

	emit(EvtLoginFailed, event)
}

func LogSubmissionCreated(record types.SubmissionRecord) {
	event := SubmissionCreated{}
	event.Message = message(EvtSubmissionCreated, DispositionNeutral, nil)

	event.Event.SubmissionID = record.ID
	event.Event.Name = record.Name
	event.Event.SchoolOrigin = record.SchoolOrigin
	event.Event.CompetitionCategory = record.CompetitionCategory
	event.Event.Level = record.Level
	event.Event.File = record.File

	emit(EvtSubmissionCreated, event)
}

func LogSubmissionDeleted(actor, submissionID, file string) {
	event := SubmissionDeleted{}
	event.Message = message(EvtSubmissionDeleted, DispositionNeutral, &actor)

	event.Event.SubmissionID = submissionID
	event.Event.File = file

	emit(EvtSubmissionDeleted, event)
}

func LogArchiveExported(actor string, records int) {
	event := Export{}
	event.Message = message(EvtArchiveExported, DispositionNeutral, &actor)

	event.Event.Format = "zip"
	event.Event.Records = records

	emit(EvtArchiveExported, event)
}

func LogCSVExported(actor string, records int) {
	event := Export{}
	event.Message = message(EvtCSVExported, DispositionNeutral, &actor)

	event.Event.Format = "csv"
	event.Event.Records = records

	emit(EvtCSVExported, event)
}

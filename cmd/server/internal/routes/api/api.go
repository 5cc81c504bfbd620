// Package api implements the portal's HTTP handlers: the public upload and
// listing surface and the session-gated admin operations.
package api

import (
	"go.opentelemetry.io/otel"

	"github.com/indokarya/registration-portal/internal/config"
	"github.com/indokarya/registration-portal/internal/session"
	"github.com/indokarya/registration-portal/internal/store"
)

const name = "github.com/indokarya/registration-portal/server/routes/api"

var tracer = otel.Tracer(name)

type Handler struct {
	Records  *store.RecordStore
	Files    *store.ArtifactStore
	Creds    *store.CredentialStore
	Sessions *session.Manager
	Config   *config.Config
}

func NewHandler(
	records *store.RecordStore,
	files *store.ArtifactStore,
	creds *store.CredentialStore,
	sessions *session.Manager,
	cfg *config.Config,
) *Handler {
	return &Handler{
		Records:  records,
		Files:    files,
		Creds:    creds,
		Sessions: sessions,
		Config:   cfg,
	}
}

package main

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	servermiddleware "github.com/indokarya/registration-portal/cmd/server/internal/middleware"
	"github.com/indokarya/registration-portal/cmd/server/internal/routes"
	"github.com/indokarya/registration-portal/cmd/server/internal/routes/api"
	"github.com/indokarya/registration-portal/internal/config"
	"github.com/indokarya/registration-portal/internal/logger"
	"github.com/indokarya/registration-portal/internal/session"
	"github.com/indokarya/registration-portal/internal/store"
	"github.com/indokarya/registration-portal/internal/types"
)

const (
	adminUser     = "panitia"
	adminPassword = "very-secret-password"
)

type testServer struct {
	e        *echo.Echo
	records  *store.RecordStore
	files    *store.ArtifactStore
	creds    *store.CredentialStore
	sessions *session.Manager
	cfg      *config.Config
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{
		Port:                 3000,
		DataDir:              dir,
		UploadDir:            filepath.Join(dir, "uploads"),
		SessionTTL:           time.Hour,
		PublicListLimit:      50,
		GracefulShutdownSecs: 5,
	}

	records := store.NewRecordStore(cfg.RecordsPath())
	files := store.NewArtifactStore(cfg.UploadDir)
	creds := store.NewCredentialStore(cfg.CredentialsPath())
	sessions := session.NewManager(cfg.SessionTTL)

	require.NoError(t, creds.Add(context.TODO(), adminUser, adminPassword))

	e, err := routes.BuildEcho(logger.Logger)
	require.NoError(t, err)
	routes.Register(e, api.NewHandler(records, files, creds, sessions, cfg), sessions, cfg)

	return &testServer{
		e:        e,
		records:  records,
		files:    files,
		creds:    creds,
		sessions: sessions,
		cfg:      cfg,
	}
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) login(t *testing.T) *http.Cookie {
	t.Helper()

	body, err := json.Marshal(map[string]string{
		"username": adminUser,
		"password": adminPassword,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := ts.do(req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp types.StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == servermiddleware.SessionCookie {
			return cookie
		}
	}

	t.Fatal("login response did not set a session cookie")
	return nil
}

func multipartBody(t *testing.T, fields map[string]string, fileName, fileContent string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := w.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = io.WriteString(fw, fileContent)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	return &buf, w.FormDataContentType()
}

func (ts *testServer) upload(t *testing.T, name string) types.SubmissionRecord {
	t.Helper()

	body, contentType := multipartBody(t, map[string]string{
		"name":                name,
		"schoolOrigin":        "SMA 1",
		"competitionCategory": "Sains",
		"level":               "SMA",
	}, "karya.pdf", "x")

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := ts.do(req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp types.UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.NotNil(t, resp.Item)

	return *resp.Item
}

func (ts *testServer) list(t *testing.T, cookie *http.Cookie) []types.SubmissionRecord {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/api/list", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := ts.do(req)

	require.Equal(t, http.StatusOK, rec.Code)

	var records []types.SubmissionRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	return records
}

func TestUploadScenario(t *testing.T) {
	ts := newTestServer(t)

	body, contentType := multipartBody(t, map[string]string{
		"name":                "Ani",
		"schoolOrigin":        "SMA 1",
		"competitionCategory": "Sains",
		"level":               "SMA",
	}, "karya.pdf", "x")

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := ts.do(req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp types.UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.NotNil(t, resp.Item)

	item := *resp.Item
	assert.NotEmpty(t, item.ID)
	_, err := uuid.Parse(item.ID)
	assert.NoError(t, err)
	assert.Equal(t, item.ID+".pdf", item.File)
	assert.NotEmpty(t, item.UploadedAt)

	// the artifact exists on disk under the stored name
	path, err := ts.files.Path(item.File)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))

	// and the public listing carries the record with all fields intact
	records := ts.list(t, nil)
	require.Len(t, records, 1)
	assert.Equal(t, "Ani", records[0].Name)
	assert.Equal(t, "SMA 1", records[0].SchoolOrigin)
	assert.Equal(t, "Sains", records[0].CompetitionCategory)
	assert.Equal(t, "SMA", records[0].Level)
	assert.Equal(t, item.ID, records[0].ID)
}

func TestUploadRequiresFile(t *testing.T) {
	ts := newTestServer(t)

	body, contentType := multipartBody(t, map[string]string{"name": "Ani"}, "", "")

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := ts.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)

	records, err := ts.records.List(context.TODO())
	require.NoError(t, err)
	assert.Empty(t, records, "a rejected upload persists nothing")
}

func TestUploadSizeCap(t *testing.T) {
	ts := newTestServer(t)

	countArtifacts := func(t *testing.T) int {
		t.Helper()
		entries, err := os.ReadDir(ts.cfg.UploadDir)
		if os.IsNotExist(err) {
			return 0
		}
		require.NoError(t, err)
		return len(entries)
	}

	assertNothingPersisted := func(t *testing.T) {
		t.Helper()
		records, err := ts.records.List(context.TODO())
		require.NoError(t, err)
		assert.Empty(t, records)
		assert.Zero(t, countArtifacts(t))
	}

	post := func(t *testing.T, size int) *httptest.ResponseRecorder {
		t.Helper()
		body, contentType := multipartBody(t, map[string]string{
			"name": "Ani",
		}, "karya.pdf", strings.Repeat("x", size))
		req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
		req.Header.Set(echo.HeaderContentType, contentType)
		return ts.do(req)
	}

	t.Run("JustOverCapRejected", func(t *testing.T) {
		rec := post(t, 10<<20+1)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Contains(t, rec.Body.String(), `"success":false`)
		assertNothingPersisted(t)
	})

	t.Run("BodyOverLimitRejected", func(t *testing.T) {
		rec := post(t, 12<<20)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Contains(t, rec.Body.String(), `"success":false`)
		assertNothingPersisted(t)
	})

	t.Run("ExactlyAtCapAccepted", func(t *testing.T) {
		rec := post(t, 10<<20)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"success":true`)
		assert.Equal(t, 1, countArtifacts(t))
	})
}

func TestListProjection(t *testing.T) {
	ts := newTestServer(t)

	// over the public cap on purpose
	for i := range 55 {
		require.NoError(t, ts.records.Append(context.TODO(), types.SubmissionRecord{
			ID:   fmt.Sprintf("id-%02d", i),
			Name: fmt.Sprintf("peserta %02d", i),
			File: fmt.Sprintf("f-%02d.pdf", i),
		}))
	}

	t.Run("PublicCappedNewestFirst", func(t *testing.T) {
		records := ts.list(t, nil)
		require.Len(t, records, 50)
		assert.Equal(t, "id-54", records[0].ID)
		assert.Equal(t, "id-05", records[49].ID)
		for _, r := range records {
			assert.NotContains(t, []string{"id-00", "id-01", "id-02", "id-03", "id-04"}, r.ID,
				"nothing older than the 50th-from-last leaks publicly")
		}
	})

	t.Run("AdminSeesEverything", func(t *testing.T) {
		records := ts.list(t, ts.login(t))
		require.Len(t, records, 55)
		assert.Equal(t, "id-54", records[0].ID)
		assert.Equal(t, "id-00", records[54].ID)
	})

	t.Run("QueryFilter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/list?q=peserta+07", nil)
		rec := ts.do(req)
		require.Equal(t, http.StatusOK, rec.Code)

		var records []types.SubmissionRecord
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
		require.Len(t, records, 1)
		assert.Equal(t, "id-07", records[0].ID)
	})
}

func TestDeleteIdempotent(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.login(t)

	item := ts.upload(t, "Ani")
	path, err := ts.files.Path(item.File)
	require.NoError(t, err)

	doDelete := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodDelete, "/api/delete/"+item.ID, nil)
		req.AddCookie(cookie)
		return ts.do(req)
	}

	rec := doDelete()
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "the artifact follows its record")

	assert.Empty(t, ts.list(t, cookie))

	// deleting the same id again still reports success and changes nothing
	rec = doDelete()
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
	assert.Empty(t, ts.list(t, cookie))
}

func TestAdminGateRejectsWithoutSession(t *testing.T) {
	ts := newTestServer(t)

	item := ts.upload(t, "Ani")
	path, err := ts.files.Path(item.File)
	require.NoError(t, err)

	gated := []struct {
		method string
		target string
	}{
		{http.MethodDelete, "/api/delete/" + item.ID},
		{http.MethodGet, "/api/download-zip"},
		{http.MethodGet, "/api/export-csv"},
		{http.MethodGet, "/api/stats"},
	}

	for _, tc := range gated {
		t.Run(tc.method+" "+tc.target, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.target, nil)
			rec := ts.do(req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), `"success":false`)
		})
	}

	t.Run("BogusTokenRejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/delete/"+item.ID, nil)
		req.AddCookie(&http.Cookie{Name: servermiddleware.SessionCookie, Value: uuid.NewString()})
		rec := ts.do(req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	// no side effect happened on any of the rejected calls
	records, err := ts.records.List(context.TODO())
	require.NoError(t, err)
	assert.Len(t, records, 1)
	_, err = os.Stat(path)
	assert.NoError(t, err, "the artifact is untouched")
}

func TestLoginLogout(t *testing.T) {
	ts := newTestServer(t)

	postLogin := func(username, password string) *httptest.ResponseRecorder {
		body, err := json.Marshal(map[string]string{"username": username, "password": password})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		return ts.do(req)
	}

	t.Run("SameMessageForUnknownUserAndWrongPassword", func(t *testing.T) {
		recUnknown := postLogin("nobody", adminPassword)
		recWrong := postLogin(adminUser, "wrong")

		require.Equal(t, http.StatusOK, recUnknown.Code)
		require.Equal(t, http.StatusOK, recWrong.Code)

		var a, b types.StatusResponse
		require.NoError(t, json.Unmarshal(recUnknown.Body.Bytes(), &a))
		require.NoError(t, json.Unmarshal(recWrong.Body.Bytes(), &b))

		assert.False(t, a.Success)
		assert.False(t, b.Success)
		assert.Equal(t, a.Message, b.Message, "the response must not enumerate usernames")
	})

	t.Run("MissingFieldsRejected", func(t *testing.T) {
		rec := postLogin(adminUser, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("CheckAuthFollowsSession", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/check-auth", nil)
		rec := ts.do(req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"authenticated":false`)

		cookie := ts.login(t)

		req = httptest.NewRequest(http.MethodGet, "/api/check-auth", nil)
		req.AddCookie(cookie)
		rec = ts.do(req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"authenticated":true`)
		assert.Contains(t, rec.Body.String(), adminUser)

		// logout invalidates the session server side
		req = httptest.NewRequest(http.MethodPost, "/api/logout", nil)
		req.AddCookie(cookie)
		rec = ts.do(req)
		require.Equal(t, http.StatusOK, rec.Code)

		req = httptest.NewRequest(http.MethodGet, "/api/check-auth", nil)
		req.AddCookie(cookie)
		rec = ts.do(req)
		assert.Contains(t, rec.Body.String(), `"authenticated":false`)
	})
}

func TestDownloadZip(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.login(t)

	first := ts.upload(t, "Ani")
	second := ts.upload(t, "Budi")

	// one referenced artifact vanishes from disk; the export must skip it
	path, err := ts.files.Path(second.File)
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	req := httptest.NewRequest(http.MethodGet, "/api/download-zip", nil)
	req.AddCookie(cookie)
	rec := ts.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/zip", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "attachment; filename=uploads.zip", rec.Header().Get(echo.HeaderContentDisposition))

	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, first.File, zr.File[0].Name)
}

func TestExportCSV(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.login(t)

	require.NoError(t, ts.records.Append(context.TODO(), types.SubmissionRecord{
		ID: "1", Name: `Ani "si juara"`, CompetitionCategory: "Sains", Level: "SMA",
	}))
	require.NoError(t, ts.records.Append(context.TODO(), types.SubmissionRecord{
		ID: "2", Name: "Budi", CompetitionCategory: "Robotik", Level: "SMP",
	}))

	t.Run("FullExport", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/export-csv", nil)
		req.AddCookie(cookie)
		rec := ts.do(req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/csv")
		assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "peserta_export.csv")

		body := rec.Body.String()
		assert.True(t, strings.HasPrefix(body, "name,schoolOrigin,competitionCategory,level,file,uploadedAt\n"))
		assert.Contains(t, body, `"Ani ""si juara"""`)
		assert.Contains(t, body, `"Budi"`)
	})

	t.Run("CategoryFiltered", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/export-csv?category=Robotik", nil)
		req.AddCookie(cookie)
		rec := ts.do(req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Budi")
		assert.NotContains(t, rec.Body.String(), "Ani")
	})
}

func TestStats(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.login(t)

	for _, r := range []types.SubmissionRecord{
		{ID: "1", CompetitionCategory: "Sains", Level: "SMA"},
		{ID: "2", CompetitionCategory: "Sains", Level: "SMA"},
		{ID: "3", CompetitionCategory: "Robotik", Level: "SMP"},
	} {
		require.NoError(t, ts.records.Append(context.TODO(), r))
	}

	req := httptest.NewRequest(http.MethodGet, "/api/stats?category=Sains", nil)
	req.AddCookie(cookie)
	rec := ts.do(req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp types.StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Sains", "Robotik"}, resp.Categories,
		"the dropdown always lists every category")
	assert.Equal(t, []types.LevelCount{{Level: "SMA", Count: 2}}, resp.Levels,
		"the chart reflects the filtered set")
}

func TestItemDetail(t *testing.T) {
	ts := newTestServer(t)

	item := ts.upload(t, "Ani")

	t.Run("Found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/item/"+item.ID, nil)
		rec := ts.do(req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"name":"Ani"`)
	})

	t.Run("UnknownID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/item/"+uuid.NewString(), nil)
		rec := ts.do(req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "not found")
	})

	t.Run("PublicCapAppliesToDetail", func(t *testing.T) {
		for i := range ts.cfg.PublicListLimit {
			require.NoError(t, ts.records.Append(context.TODO(), types.SubmissionRecord{
				ID: fmt.Sprintf("fill-%02d", i),
			}))
		}

		// the first upload now sits past the public window
		req := httptest.NewRequest(http.MethodGet, "/api/item/"+item.ID, nil)
		rec := ts.do(req)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		req = httptest.NewRequest(http.MethodGet, "/api/item/"+item.ID, nil)
		req.AddCookie(ts.login(t))
		rec = ts.do(req)
		assert.Equal(t, http.StatusOK, rec.Code, "admins still reach records past the cap")
	})
}

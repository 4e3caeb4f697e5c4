package service

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/policy-digest-api/internal/dto"
	appErrors "github.com/noah-isme/policy-digest-api/pkg/errors"
	"github.com/noah-isme/policy-digest-api/pkg/storage"
)

func newExportServiceForTest(t *testing.T, ttl time.Duration) (*ExportService, *storage.LocalStorage, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", ttl)
	source := &documentSourceStub{docs: derivedSeedDocuments(t)}
	svc := NewExportService(source, store, signer, NewMetricsService(), zap.NewNop(), ExportConfig{APIPrefix: "/api/v1", ResultTTL: time.Hour})
	svc.now = func() time.Time { return time.Date(2024, time.February, 1, 9, 30, 0, 0, time.UTC) }
	return svc, store, dir
}

func tokenFromURL(t *testing.T, url string) string {
	t.Helper()
	require.True(t, strings.HasPrefix(url, "/api/v1/export/"))
	return strings.TrimPrefix(url, "/api/v1/export/")
}

func TestExportServiceCSV(t *testing.T) {
	svc, _, _ := newExportServiceForTest(t, time.Hour)

	resp, err := svc.Export(context.Background(), "user-demo", dto.ExportDocumentsRequest{Format: ExportCSV, Risk: "high"})
	require.NoError(t, err)
	assert.Equal(t, ExportCSV, resp.Format)
	assert.Equal(t, 3, resp.RowCount)
	assert.Equal(t, "policy-documents_user-demo_20240201_093000.csv", resp.Filename)
	assert.NotEmpty(t, resp.ID)

	download, err := svc.Open(tokenFromURL(t, resp.DownloadURL))
	require.NoError(t, err)
	defer download.File.Close()
	assert.Equal(t, "text/csv", download.ContentType)
	assert.Equal(t, resp.Filename, download.Filename)

	records, err := csv.NewReader(download.File).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"Title", "URL", "Risk Score", "Risk Bracket", "Status", "Version", "Clauses", "Scan Date"}, records[0])
	assert.Equal(t, "Facebook Terms of Service", records[1][0])
	assert.Equal(t, "78", records[1][2])
	assert.Equal(t, BracketHigh, records[1][3])
}

func TestExportServicePDF(t *testing.T) {
	svc, _, _ := newExportServiceForTest(t, time.Hour)

	resp, err := svc.Export(context.Background(), "user-demo", dto.ExportDocumentsRequest{Format: ExportPDF})
	require.NoError(t, err)
	assert.Equal(t, 4, resp.RowCount)

	download, err := svc.Open(tokenFromURL(t, resp.DownloadURL))
	require.NoError(t, err)
	defer download.File.Close()
	assert.Equal(t, "application/pdf", download.ContentType)

	head := make([]byte, 4)
	_, err = io.ReadFull(download.File, head)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(head))
}

func TestExportServiceValidation(t *testing.T) {
	svc, _, _ := newExportServiceForTest(t, time.Hour)

	for _, req := range []dto.ExportDocumentsRequest{
		{Format: "xlsx"},
		{},
		{Format: ExportCSV, Risk: "extreme"},
		{Format: ExportCSV, Status: "archived"},
	} {
		_, err := svc.Export(context.Background(), "user-demo", req)
		var appErr *appErrors.Error
		require.True(t, errors.As(err, &appErr), "request %+v", req)
		assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	}
}

func TestExportServiceSourceError(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	source := &documentSourceStub{err: errors.New("boom")}
	svc := NewExportService(source, store, storage.NewSignedURLSigner("secret", time.Hour), nil, nil, ExportConfig{})

	_, err = svc.Export(context.Background(), "user-demo", dto.ExportDocumentsRequest{Format: ExportCSV})
	require.Error(t, err)
}

func TestExportServiceOpenRejectsBadTokens(t *testing.T) {
	svc, _, _ := newExportServiceForTest(t, time.Hour)

	_, err := svc.Open("not-a-token")
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)

	resp, err := svc.Export(context.Background(), "user-demo", dto.ExportDocumentsRequest{Format: ExportCSV})
	require.NoError(t, err)
	token := tokenFromURL(t, resp.DownloadURL)
	_, err = svc.Open(token[:len(token)-2] + "xx")
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestExportServiceOpenExpired(t *testing.T) {
	svc, _, _ := newExportServiceForTest(t, time.Millisecond)

	resp, err := svc.Export(context.Background(), "user-demo", dto.ExportDocumentsRequest{Format: ExportCSV})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	_, err = svc.Open(tokenFromURL(t, resp.DownloadURL))
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "download link expired", appErr.Message)
}

func TestExportServiceOpenRemovedFile(t *testing.T) {
	svc, store, _ := newExportServiceForTest(t, time.Hour)

	resp, err := svc.Export(context.Background(), "user-demo", dto.ExportDocumentsRequest{Format: ExportCSV})
	require.NoError(t, err)
	require.NoError(t, store.Delete(resp.Filename))

	_, err = svc.Open(tokenFromURL(t, resp.DownloadURL))
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestExportServiceCleanup(t *testing.T) {
	svc, _, dir := newExportServiceForTest(t, time.Hour)

	resp, err := svc.Export(context.Background(), "user-demo", dto.ExportDocumentsRequest{Format: ExportCSV})
	require.NoError(t, err)
	path := filepath.Join(dir, resp.Filename)
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))

	removed, err := svc.Cleanup(0)
	require.NoError(t, err)
	assert.Len(t, removed, 1)
	_, err = os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "anonymous", sanitizeFilename(""))
	assert.Equal(t, "a-b_c", sanitizeFilename("a/b c"))
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/policy-digest-api/internal/models"
)

var (
	documentCols = []string{"id", "title", "url", "content", "risk_score", "version", "scan_date", "status"}
	clauseCols   = []string{"document_id", "id", "ordinal", "text", "risk_level", "category", "description", "position_start", "position_end"}
)

func TestDocumentListAttachesClauses(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	scanned := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, url, content, risk_score, version, scan_date, status FROM policy_documents ORDER BY sort_order, id")).
		WillReturnRows(sqlmock.NewRows(documentCols).
			AddRow("doc-1", "Facebook Terms of Service", "https://facebook.com/terms", "...", 78, 3, scanned, "processed").
			AddRow("doc-4", "Spotify Terms and Conditions", "https://spotify.com/terms", "Processing...", 0, 1, scanned, "processing"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM policy_clauses WHERE document_id = ANY($1) ORDER BY document_id, ordinal")).
		WillReturnRows(sqlmock.NewRows(clauseCols).
			AddRow("doc-1", "clause-1", 0, "arbitration", "high", "Dispute Resolution", "desc", 156, 256).
			AddRow("doc-1", "clause-2", 1, "data", "caution", "Data Collection", "desc", 280, 410))

	docs, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.Len(t, docs[0].Clauses, 2)
	assert.Equal(t, models.ClausePosition{Start: 156, End: 256}, docs[0].Clauses[0].Position)
	assert.Equal(t, models.RiskCaution, docs[0].Clauses[1].RiskLevel)
	assert.NotNil(t, docs[1].Clauses)
	assert.Empty(t, docs[1].Clauses)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentListEmptySkipsClauseQuery(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	mock.ExpectQuery("FROM policy_documents").WillReturnRows(sqlmock.NewRows(documentCols))

	docs, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	mock.ExpectQuery("FROM policy_documents WHERE id = \\$1").WithArgs("doc-9").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "doc-9")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentSaveReplacesClauses(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	doc := models.PolicyDocument{
		ID: "doc-3", Title: "Microsoft Service Agreement", URL: "https://microsoft.com/servicesagreement",
		RiskScore: 42, Version: 1, ScanDate: time.Now(), Status: models.StatusProcessed,
		Clauses: []models.PolicyClause{
			{ID: "clause-1", RiskLevel: models.RiskHigh, Position: models.ClausePosition{Start: 1, End: 2}},
			{ID: "clause-2", RiskLevel: models.RiskCaution, Position: models.ClausePosition{Start: 3, End: 4}},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO policy_documents").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM policy_clauses").WithArgs("doc-3").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO policy_clauses").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO policy_clauses").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Save(context.Background(), 2, doc))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentSaveRollsBackOnClauseFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	doc := models.PolicyDocument{ID: "doc-1", Version: 1, Status: models.StatusProcessed,
		Clauses: []models.PolicyClause{{ID: "clause-1", RiskLevel: models.RiskHigh}}}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO policy_documents").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM policy_clauses").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO policy_clauses").WillReturnError(errors.New("check constraint"))
	mock.ExpectRollback()

	err := repo.Save(context.Background(), 0, doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clause-1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

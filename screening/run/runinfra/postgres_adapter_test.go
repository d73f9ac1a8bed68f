package runinfra

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/Abraxas-365/cvscreen/pkg/kernel"
	"github.com/Abraxas-365/cvscreen/screening/run"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func TestRankResumesBaseQuery(t *testing.T) {
	db, mock := newMockDB(t)
	ranker := NewPostgresRanker(db)

	rows := sqlmock.NewRows([]string{"id", "filename", "similarity", "batch_id"}).
		AddRow("r1", "alice.pdf", 0.91, "b1").
		AddRow("r2", "bob.docx", 0.85, "b1")

	mock.ExpectQuery(`SELECT r\.id, r\.filename`).
		WithArgs(sqlmock.AnyArg(), 50).
		WillReturnRows(rows)

	ranked, err := ranker.RankResumes(context.Background(), run.RankQuery{
		Embedding: make(kernel.Embedding, 3),
		Limit:     50,
	})
	if err != nil {
		t.Fatalf("RankResumes: %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("ranked = %d, want 2", len(ranked))
	}
	if ranked[0].Filename != "alice.pdf" || ranked[0].Similarity != 0.91 {
		t.Errorf("unexpected first row: %+v", ranked[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestRankResumesAppliesFilters(t *testing.T) {
	db, mock := newMockDB(t)
	ranker := NewPostgresRanker(db)

	batchID := kernel.NewBatchID("b1")
	minScore := 0.7

	mock.ExpectQuery(`SELECT r\.id, r\.filename`).
		WithArgs(sqlmock.AnyArg(), batchID, minScore, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "filename", "similarity", "batch_id"}))

	_, err := ranker.RankResumes(context.Background(), run.RankQuery{
		Embedding: make(kernel.Embedding, 3),
		BatchID:   &batchID,
		MinScore:  &minScore,
		Limit:     10,
	})
	if err != nil {
		t.Fatalf("RankResumes: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestRankResumesEmptyVectorSkipsQuery(t *testing.T) {
	db, mock := newMockDB(t)
	ranker := NewPostgresRanker(db)

	ranked, err := ranker.RankResumes(context.Background(), run.RankQuery{
		Embedding: nil,
		Limit:     50,
	})
	if err != nil {
		t.Fatalf("RankResumes: %v", err)
	}
	if len(ranked) != 0 {
		t.Fatalf("ranked = %d, want 0", len(ranked))
	}
	// No expectations were set; any query issued would fail this.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestCreateRunInsertsHeader(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRunRepository(db)

	minScore := 0.5
	batchID := kernel.NewBatchID("b1")
	sr := &run.ScreeningRun{
		ID:               kernel.NewRunID("run1"),
		JobDescriptionID: kernel.NewJobDescriptionID("jd1"),
		BatchID:          &batchID,
		MinScore:         &minScore,
		ResultLimit:      50,
		CreatedAt:        time.Now(),
	}

	mock.ExpectExec("INSERT INTO screening_runs").
		WithArgs(sr.ID, sr.JobDescriptionID, &batchID, &minScore, 50, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.CreateRun(context.Background(), sr); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestGetRunOwnerNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRunRepository(db)

	mock.ExpectQuery("SELECT jd.user_id").
		WithArgs(kernel.NewRunID("missing")).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	_, err := repo.GetRunOwner(context.Background(), kernel.NewRunID("missing"))
	if err == nil {
		t.Fatal("expected not found error")
	}
}

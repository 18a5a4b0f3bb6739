package pgstore

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/vocabulary"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/postgres"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(postgres.NewFromDB(db)), mock
}

func TestLoadOrdersByPosition(t *testing.T) {
	s, mock := newMock(t)
	rows := sqlmock.NewRows([]string{"tag", "category", "subcategory", "translation"}).
		AddRow("long_hair", "Hair", "Style", "长发").
		AddRow("solo", "", "", "")
	mock.ExpectQuery(`SELECT tag, category, subcategory, translation FROM tag_records ORDER BY position`).
		WillReturnRows(rows)

	records, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []vocabulary.Record{
		{Tag: "long_hair", Category: "Hair", Subcategory: "Style", Translation: "长发"},
		{Tag: "solo"},
	}, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveReplacesInTransaction(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM tag_records`).WillReturnResult(sqlmock.NewResult(0, 3))
	prep := mock.ExpectPrepare(`COPY`)
	prep.ExpectExec().WithArgs(int64(0), "a", "C", "S", "甲").WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WithArgs(int64(1), "b", "", "", "").WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := s.Save(context.Background(), []vocabulary.Record{
		{Tag: "a", Category: "C", Subcategory: "S", Translation: "甲"},
		{Tag: "b"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRollsBackOnFailure(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM tag_records`).WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := s.Save(context.Background(), []vocabulary.Record{{Tag: "a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS tag_records`).WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, s.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

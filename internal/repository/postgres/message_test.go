package postgres

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damkaswim/storefront/internal/domain"
	"github.com/damkaswim/storefront/internal/repository"
	"github.com/damkaswim/storefront/pkg/database"
	apperrors "github.com/damkaswim/storefront/pkg/errors"
)

func setupMessageRepo(t *testing.T) (*MessageRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewMessageRepository(mock)
	return repo, mock
}

func sampleMessage() *domain.ContactMessage {
	now := time.Date(2025, 5, 20, 15, 0, 0, 0, time.UTC)
	return &domain.ContactMessage{
		ID:         "msg-001",
		Name:       "Noa Cohen",
		Email:      "noa@example.com",
		Phone:      "+972521234567",
		Subject:    "sizing",
		Body:       "Does the bikini top run small?",
		Newsletter: true,
		Status:     domain.MessageStatusNew,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func messageColumnNames() []string {
	return []string{
		"id", "name", "email", "phone", "subject", "body", "newsletter",
		"status", "reply_subject", "reply_body", "replied_at",
		"created_at", "updated_at",
	}
}

func messageRow(m *domain.ContactMessage) *pgxmock.Rows {
	var replySubject, replyBody *string
	if m.ReplySubject != "" {
		replySubject = &m.ReplySubject
	}
	if m.ReplyBody != "" {
		replyBody = &m.ReplyBody
	}
	return pgxmock.NewRows(messageColumnNames()).
		AddRow(
			m.ID, m.Name, m.Email, m.Phone, m.Subject, m.Body, m.Newsletter,
			m.Status, replySubject, replyBody, m.RepliedAt,
			m.CreatedAt, m.UpdatedAt,
		)
}

func TestMessageRepository_Create_Success(t *testing.T) {
	repo, mock := setupMessageRepo(t)
	defer mock.Close()

	m := sampleMessage()

	mock.ExpectExec("INSERT INTO contact_messages").
		WithArgs(
			m.ID, m.Name, m.Email, m.Phone, m.Subject, m.Body, m.Newsletter,
			m.Status, m.ReplySubject, m.ReplyBody, m.RepliedAt,
			m.CreatedAt, m.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), m)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageRepository_GetByID_WithReply(t *testing.T) {
	repo, mock := setupMessageRepo(t)
	defer mock.Close()

	m := sampleMessage()
	repliedAt := m.CreatedAt.Add(2 * time.Hour)
	m.Status = domain.MessageStatusReplied
	m.ReplySubject = "Re: sizing"
	m.ReplyBody = "It runs true to size."
	m.RepliedAt = &repliedAt

	mock.ExpectQuery("SELECT (.+) FROM contact_messages WHERE id").
		WithArgs(m.ID).
		WillReturnRows(messageRow(m))

	got, err := repo.GetByID(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MessageStatusReplied, got.Status)
	assert.Equal(t, "Re: sizing", got.ReplySubject)
	assert.Equal(t, "It runs true to size.", got.ReplyBody)
	require.NotNil(t, got.RepliedAt)
	assert.Equal(t, repliedAt, *got.RepliedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := setupMessageRepo(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM contact_messages WHERE id").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(messageColumnNames()))

	got, err := repo.GetByID(context.Background(), "missing")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageRepository_List_ByStatus(t *testing.T) {
	repo, mock := setupMessageRepo(t)
	defer mock.Close()

	m := sampleMessage()

	rows := pgxmock.NewRows(append(messageColumnNames(), "total_count")).
		AddRow(
			m.ID, m.Name, m.Email, m.Phone, m.Subject, m.Body, m.Newsletter,
			m.Status, nil, nil, m.RepliedAt, m.CreatedAt, m.UpdatedAt, 5,
		)

	mock.ExpectQuery("SELECT (.+) FROM contact_messages").
		WithArgs(domain.MessageStatusNew, 20, 0).
		WillReturnRows(rows)

	got, total, err := repo.List(context.Background(), repository.MessageFilter{
		Status: domain.MessageStatusNew,
		Limit:  20,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 5, total)
	assert.Empty(t, got[0].ReplySubject)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageRepository_SaveReply_Success(t *testing.T) {
	repo, mock := setupMessageRepo(t)
	defer mock.Close()

	repliedAt := time.Date(2025, 5, 21, 10, 0, 0, 0, time.UTC)

	mock.ExpectExec("UPDATE contact_messages").
		WithArgs("Re: sizing", "It runs true to size.", repliedAt, domain.MessageStatusReplied, "msg-001").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.SaveReply(context.Background(), "msg-001", "Re: sizing", "It runs true to size.", repliedAt)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageRepository_UpdateStatus_NotFound(t *testing.T) {
	repo, mock := setupMessageRepo(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE contact_messages SET status").
		WithArgs(domain.MessageStatusArchived, pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdateStatus(context.Background(), "missing", domain.MessageStatusArchived)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageRepository_Delete_Success(t *testing.T) {
	repo, mock := setupMessageRepo(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM contact_messages").
		WithArgs("msg-001").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := repo.Delete(context.Background(), "msg-001")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

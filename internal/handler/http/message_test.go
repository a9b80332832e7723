package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/damkaswim/storefront/internal/domain"
	"github.com/damkaswim/storefront/internal/mailer"
	"github.com/damkaswim/storefront/internal/repository"
	"github.com/damkaswim/storefront/internal/service"
	apperrors "github.com/damkaswim/storefront/pkg/errors"
)

// ============================================================================
// Mocks
// ============================================================================

type mockMessageRepository struct {
	mock.Mock
}

func (m *mockMessageRepository) Create(ctx context.Context, message *domain.ContactMessage) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *mockMessageRepository) GetByID(ctx context.Context, id string) (*domain.ContactMessage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ContactMessage), args.Error(1)
}

func (m *mockMessageRepository) List(ctx context.Context, filter repository.MessageFilter) ([]domain.ContactMessage, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.ContactMessage), args.Int(1), args.Error(2)
}

func (m *mockMessageRepository) UpdateStatus(ctx context.Context, id, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockMessageRepository) SaveReply(ctx context.Context, id, subject, body string, repliedAt time.Time) error {
	args := m.Called(ctx, id, subject, body, repliedAt)
	return args.Error(0)
}

func (m *mockMessageRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockSubscriberRepository struct {
	mock.Mock
}

func (m *mockSubscriberRepository) Subscribe(ctx context.Context, subscriber *domain.Subscriber) error {
	args := m.Called(ctx, subscriber)
	return args.Error(0)
}

func (m *mockSubscriberRepository) List(ctx context.Context, limit, offset int) ([]domain.Subscriber, int, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Subscriber), args.Int(1), args.Error(2)
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, email mailer.Email) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

// ============================================================================
// Test helpers
// ============================================================================

func testMessageHandler(messages *mockMessageRepository, subscribers *mockSubscriberRepository, sender *mockSender) *MessageHandler {
	logger := testLogger()
	svc := service.NewMessageService(messages, subscribers, sender, testEventProducer(), logger)
	return NewMessageHandler(svc, logger)
}

func setupMessageRouter(handler *MessageHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/contact", handler.SubmitContact)
		r.Post("/newsletter", handler.Subscribe)

		r.Get("/admin/messages", handler.ListMessages)
		r.Get("/admin/messages/{id}", handler.GetMessage)
		r.Patch("/admin/messages/{id}/status", handler.UpdateMessageStatus)
		r.Post("/admin/messages/{id}/reply", handler.Reply)
		r.Delete("/admin/messages/{id}", handler.DeleteMessage)
		r.Get("/admin/subscribers", handler.ListSubscribers)
	})
	return r
}

func validContactJSON(newsletter bool) []byte {
	b, _ := json.Marshal(ContactRequest{
		Name:       "Noa Cohen",
		Email:      "noa@example.com",
		Subject:    "sizing",
		Body:       "Does the Coral Reef run small?",
		Newsletter: newsletter,
	})
	return b
}

func sampleContactMessage() *domain.ContactMessage {
	now := time.Now().UTC()
	return &domain.ContactMessage{
		ID:        "msg-001",
		Name:      "Noa Cohen",
		Email:     "noa@example.com",
		Subject:   "sizing",
		Body:      "Does the Coral Reef run small?",
		Status:    domain.MessageStatusNew,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ============================================================================
// Public: contact and newsletter
// ============================================================================

func TestSubmitContact_Success(t *testing.T) {
	messages := new(mockMessageRepository)
	subscribers := new(mockSubscriberRepository)
	router := setupMessageRouter(testMessageHandler(messages, subscribers, new(mockSender)))

	messages.On("Create", mock.Anything, mock.AnythingOfType("*domain.ContactMessage")).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/contact", bytes.NewReader(validContactJSON(false)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	messages.AssertExpectations(t)
	subscribers.AssertNotCalled(t, "Subscribe", mock.Anything, mock.Anything)
}

func TestSubmitContact_NewsletterOptIn(t *testing.T) {
	messages := new(mockMessageRepository)
	subscribers := new(mockSubscriberRepository)
	router := setupMessageRouter(testMessageHandler(messages, subscribers, new(mockSender)))

	messages.On("Create", mock.Anything, mock.AnythingOfType("*domain.ContactMessage")).Return(nil)
	subscribers.On("Subscribe", mock.Anything, mock.MatchedBy(func(s *domain.Subscriber) bool {
		return s.Email == "noa@example.com"
	})).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/contact", bytes.NewReader(validContactJSON(true)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	subscribers.AssertExpectations(t)
}

func TestSubmitContact_MissingBody_ValidationError(t *testing.T) {
	messages := new(mockMessageRepository)
	router := setupMessageRouter(testMessageHandler(messages, new(mockSubscriberRepository), new(mockSender)))

	b, _ := json.Marshal(ContactRequest{Name: "Noa Cohen", Email: "noa@example.com"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contact", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubscribe_Success(t *testing.T) {
	subscribers := new(mockSubscriberRepository)
	router := setupMessageRouter(testMessageHandler(new(mockMessageRepository), subscribers, new(mockSender)))

	subscribers.On("Subscribe", mock.Anything, mock.AnythingOfType("*domain.Subscriber")).Return(nil)

	b, _ := json.Marshal(SubscribeRequest{Email: "noa@example.com"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/newsletter", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	subscribers.AssertExpectations(t)
}

func TestSubscribe_BadEmail_ValidationError(t *testing.T) {
	router := setupMessageRouter(testMessageHandler(new(mockMessageRepository), new(mockSubscriberRepository), new(mockSender)))

	b, _ := json.Marshal(SubscribeRequest{Email: "not-an-email"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/newsletter", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ============================================================================
// Admin inbox
// ============================================================================

func TestListMessages_FilteredByStatus(t *testing.T) {
	messages := new(mockMessageRepository)
	router := setupMessageRouter(testMessageHandler(messages, new(mockSubscriberRepository), new(mockSender)))

	expected := repository.MessageFilter{Status: domain.MessageStatusNew, Limit: 20, Offset: 0}
	messages.On("List", mock.Anything, expected).
		Return([]domain.ContactMessage{*sampleContactMessage()}, 1, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/messages?status=new", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	messages.AssertExpectations(t)
}

func TestUpdateMessageStatus_Returns204(t *testing.T) {
	messages := new(mockMessageRepository)
	router := setupMessageRouter(testMessageHandler(messages, new(mockSubscriberRepository), new(mockSender)))

	messages.On("UpdateStatus", mock.Anything, "msg-001", domain.MessageStatusRead).Return(nil)

	b, _ := json.Marshal(UpdateMessageStatusRequest{Status: domain.MessageStatusRead})
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/admin/messages/msg-001/status", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	messages.AssertExpectations(t)
}

func TestReply_SendsMailThenRecords(t *testing.T) {
	messages := new(mockMessageRepository)
	sender := new(mockSender)
	router := setupMessageRouter(testMessageHandler(messages, new(mockSubscriberRepository), sender))

	messages.On("GetByID", mock.Anything, "msg-001").Return(sampleContactMessage(), nil)
	sender.On("Send", mock.Anything, mailer.Email{
		To:      "noa@example.com",
		Subject: "Re: sizing",
		Body:    "It runs true to size.",
	}).Return(nil)
	messages.On("SaveReply", mock.Anything, "msg-001", "Re: sizing", "It runs true to size.",
		mock.AnythingOfType("time.Time")).Return(nil)

	b, _ := json.Marshal(ReplyRequest{Subject: "Re: sizing", Body: "It runs true to size."})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/messages/msg-001/reply", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var message domain.ContactMessage
	raw, _ := json.Marshal(decodeResponse(t, rec).Data)
	require.NoError(t, json.Unmarshal(raw, &message))
	assert.Equal(t, domain.MessageStatusReplied, message.Status)
	messages.AssertExpectations(t)
	sender.AssertExpectations(t)
}

func TestReply_MailFails_NothingRecorded(t *testing.T) {
	messages := new(mockMessageRepository)
	sender := new(mockSender)
	router := setupMessageRouter(testMessageHandler(messages, new(mockSubscriberRepository), sender))

	messages.On("GetByID", mock.Anything, "msg-001").Return(sampleContactMessage(), nil)
	sender.On("Send", mock.Anything, mock.AnythingOfType("mailer.Email")).
		Return(fmt.Errorf("mail gateway unavailable"))

	b, _ := json.Marshal(ReplyRequest{Subject: "Re: sizing", Body: "It runs true to size."})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/messages/msg-001/reply", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	messages.AssertNotCalled(t, "SaveReply", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteMessage_Returns204(t *testing.T) {
	messages := new(mockMessageRepository)
	router := setupMessageRouter(testMessageHandler(messages, new(mockSubscriberRepository), new(mockSender)))

	messages.On("Delete", mock.Anything, "msg-001").Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/messages/msg-001", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	messages.AssertExpectations(t)
}

func TestGetMessage_NotFound(t *testing.T) {
	messages := new(mockMessageRepository)
	router := setupMessageRouter(testMessageHandler(messages, new(mockSubscriberRepository), new(mockSender)))

	messages.On("GetByID", mock.Anything, "ghost").Return(nil, apperrors.NotFound("contact message", "ghost"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/messages/ghost", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListSubscribers_Paginated(t *testing.T) {
	subscribers := new(mockSubscriberRepository)
	router := setupMessageRouter(testMessageHandler(new(mockMessageRepository), subscribers, new(mockSender)))

	subscribers.On("List", mock.Anything, 20, 0).
		Return([]domain.Subscriber{{ID: "sub-001", Email: "noa@example.com"}}, 1, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/subscribers", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	subscribers.AssertExpectations(t)
}

// internal/services/chat_service_test.go
package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/lavshop/storefront-backend/internal/apperrors"
	"github.com/lavshop/storefront-backend/internal/models"
	"github.com/lavshop/storefront-backend/internal/realtime"
)

type recordedPublish struct {
	Channel string
	Payload interface{}
}

// fakePublisher captures publishes so tests can assert delivery without a
// running broker.
type fakePublisher struct {
	mu        sync.Mutex
	published []recordedPublish
	notify    chan recordedPublish
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{notify: make(chan recordedPublish, 8)}
}

func (f *fakePublisher) Publish(_ context.Context, channel string, payload interface{}) error {
	f.mu.Lock()
	record := recordedPublish{Channel: channel, Payload: payload}
	f.published = append(f.published, record)
	f.mu.Unlock()
	f.notify <- record
	return nil
}

func (f *fakePublisher) wait(t *testing.T, n int) []recordedPublish {
	t.Helper()
	records := make([]recordedPublish, 0, n)
	timeout := time.After(2 * time.Second)
	for len(records) < n {
		select {
		case record := <-f.notify:
			records = append(records, record)
		case <-timeout:
			t.Fatalf("expected %d publishes, got %d", n, len(records))
		}
	}
	return records
}

type ChatServiceTestSuite struct {
	suite.Suite
	db        *gorm.DB
	publisher *fakePublisher
	svc       *ChatService
	buyer     models.User
	seller    models.User
	product   models.Product
}

func (suite *ChatServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.publisher = newFakePublisher()
	suite.svc = NewChatService(suite.db, suite.publisher)
	suite.buyer = seedUser(suite.T(), suite.db, "buyer", "buyer@example.com")
	suite.seller = seedUser(suite.T(), suite.db, "seller", "seller@example.com")
	suite.product = seedProduct(suite.T(), suite.db, "Mug", 10)
}

func (suite *ChatServiceTestSuite) startSession() *models.ChatSession {
	session, err := suite.svc.StartSession(&StartSessionRequest{
		SenderID:    suite.buyer.ID.String(),
		RecipientID: suite.seller.ID.String(),
		ProductID:   suite.product.ID.String(),
	})
	suite.Require().NoError(err)
	return session
}

func (suite *ChatServiceTestSuite) TestStartSessionRequiresAllIDs() {
	_, err := suite.svc.StartSession(&StartSessionRequest{
		SenderID: suite.buyer.ID.String(),
	})
	suite.Error(err)
	suite.True(apperrors.IsKind(err, apperrors.KindValidation))
}

func (suite *ChatServiceTestSuite) TestStartSessionAllowsDuplicates() {
	first := suite.startSession()
	second := suite.startSession()
	suite.NotEqual(first.ID, second.ID)
}

func (suite *ChatServiceTestSuite) TestSendMessageRejectsBlankContent() {
	session := suite.startSession()

	_, err := suite.svc.SendMessage(session.ID, suite.buyer.ID, "   ")
	suite.Error(err)
	suite.True(apperrors.IsKind(err, apperrors.KindValidation))
}

func (suite *ChatServiceTestSuite) TestSendMessageUnknownSession() {
	_, err := suite.svc.SendMessage(uuid.New(), suite.buyer.ID, "hello")
	suite.Error(err)
	suite.True(apperrors.IsKind(err, apperrors.KindNotFound))
}

func (suite *ChatServiceTestSuite) TestSendMessageRejectsOutsiders() {
	session := suite.startSession()

	_, err := suite.svc.SendMessage(session.ID, uuid.New(), "let me in")
	suite.Error(err)
	suite.True(apperrors.IsKind(err, apperrors.KindForbidden))
}

func (suite *ChatServiceTestSuite) TestSendMessagePersistsAndTouchesSession() {
	session := suite.startSession()

	updated, err := suite.svc.SendMessage(session.ID, suite.buyer.ID, "is this still available?")
	suite.NoError(err)
	suite.Len(updated.Messages, 1)
	suite.Equal("is this still available?", updated.Messages[0].Content)
	suite.Equal(suite.buyer.ID, updated.Messages[0].SenderID)
	suite.False(updated.LastMessageAt.Before(session.LastMessageAt))
}

func (suite *ChatServiceTestSuite) TestSendMessagePublishesToSessionAndRecipient() {
	session := suite.startSession()

	_, err := suite.svc.SendMessage(session.ID, suite.buyer.ID, "hello")
	suite.NoError(err)

	records := suite.publisher.wait(suite.T(), 2)
	channels := []string{records[0].Channel, records[1].Channel}
	suite.Contains(channels, realtime.SessionChannel(session.ID.String()))
	suite.Contains(channels, realtime.UserChannel(suite.seller.ID.String()))

	payload, ok := records[0].Payload.(MessagePayload)
	suite.True(ok)
	suite.Equal(realtime.EventReceiveMessage, payload.Event)
	suite.Equal(session.ID.String(), payload.SessionID)
}

// A burst of sends overlaps each publish goroutine with the session reload
// of the next call; every published payload must still carry the identity of
// the session the message was written to.
func (suite *ChatServiceTestSuite) TestRapidSendsPublishStableSessionIdentity() {
	session := suite.startSession()

	const sends = 20
	for i := 0; i < sends; i++ {
		_, err := suite.svc.SendMessage(session.ID, suite.buyer.ID, "still there?")
		suite.Require().NoError(err)
	}

	records := suite.publisher.wait(suite.T(), 2*sends)
	sessionChannel := realtime.SessionChannel(session.ID.String())
	sellerChannel := realtime.UserChannel(suite.seller.ID.String())
	for _, record := range records {
		suite.Contains([]string{sessionChannel, sellerChannel}, record.Channel)

		payload, ok := record.Payload.(MessagePayload)
		suite.Require().True(ok)
		suite.Equal(session.ID.String(), payload.SessionID)
		suite.Equal(suite.buyer.ID, payload.Message.SenderID)
	}
}

func (suite *ChatServiceTestSuite) TestSendMessageWorksWithoutPublisher() {
	svc := NewChatService(suite.db, nil)
	session := suite.startSession()

	updated, err := svc.SendMessage(session.ID, suite.seller.ID, "yes, in stock")
	suite.NoError(err)
	suite.Len(updated.Messages, 1)
}

func (suite *ChatServiceTestSuite) TestListSessionsByUserNewestActivityFirst() {
	first := suite.startSession()
	second := suite.startSession()

	_, err := suite.svc.SendMessage(first.ID, suite.buyer.ID, "bumping this thread")
	suite.NoError(err)

	sessions, err := suite.svc.ListSessionsByUser(suite.buyer.ID)
	suite.NoError(err)
	suite.Require().Len(sessions, 2)
	suite.Equal(first.ID, sessions[0].ID)
	suite.Equal(second.ID, sessions[1].ID)
}

func (suite *ChatServiceTestSuite) TestListSessionsByProductScopesToParticipant() {
	suite.startSession()

	sessions, total, err := suite.svc.ListSessionsByProduct(suite.product.ID, suite.buyer.ID, 1, 10)
	suite.NoError(err)
	suite.Equal(int64(1), total)
	suite.Len(sessions, 1)

	sessions, total, err = suite.svc.ListSessionsByProduct(suite.product.ID, uuid.New(), 1, 10)
	suite.NoError(err)
	suite.Equal(int64(0), total)
	suite.Len(sessions, 0)
}

func TestChatServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ChatServiceTestSuite))
}

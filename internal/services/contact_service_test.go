// internal/services/contact_service_test.go
package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/lavshop/storefront-backend/internal/apperrors"
	"github.com/lavshop/storefront-backend/internal/utils"
)

type ContactServiceTestSuite struct {
	suite.Suite
	db  *gorm.DB
	svc *ContactService
}

func (suite *ContactServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.svc = NewContactService(suite.db)
}

func (suite *ContactServiceTestSuite) TestCreateContactRejectsBadEmail() {
	user := seedUser(suite.T(), suite.db, "writer", "writer@example.com")

	_, err := suite.svc.CreateContact(user.ID, &CreateContactRequest{
		Name:    "Writer",
		Email:   "not-an-email",
		Message: "hello",
	})
	suite.Error(err)
	suite.True(apperrors.IsKind(err, apperrors.KindValidation))
}

func (suite *ContactServiceTestSuite) TestCreateContactPersistsSender() {
	user := seedUser(suite.T(), suite.db, "writer", "writer@example.com")

	contact, err := suite.svc.CreateContact(user.ID, &CreateContactRequest{
		Name:    "Writer",
		Title:   "Shipping question",
		Email:   "writer@example.com",
		Message: "when does my order ship?",
	})
	suite.NoError(err)
	suite.Equal(user.ID, contact.UserID)
	suite.Equal("Shipping question", contact.Title)
}

func (suite *ContactServiceTestSuite) TestListContactsPaginates() {
	user := seedUser(suite.T(), suite.db, "writer", "writer@example.com")
	for i := 0; i < 15; i++ {
		_, err := suite.svc.CreateContact(user.ID, &CreateContactRequest{
			Name:    "Writer",
			Email:   "writer@example.com",
			Message: fmt.Sprintf("message %d", i),
		})
		suite.Require().NoError(err)
	}

	params := utils.PaginationParams{Page: 1, Limit: 10, Sort: "created_at", Order: "desc"}
	contacts, total, err := suite.svc.ListContacts(params)
	suite.NoError(err)
	suite.Equal(int64(15), total)
	suite.Len(contacts, 10)

	params.Page = 2
	contacts, _, err = suite.svc.ListContacts(params)
	suite.NoError(err)
	suite.Len(contacts, 5)
}

func TestContactServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ContactServiceTestSuite))
}

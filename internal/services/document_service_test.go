// internal/services/document_service_test.go
package services

import (
	"bytes"
	"mime/multipart"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/plantcert/pvp-backend/internal/config"
	"github.com/plantcert/pvp-backend/internal/models"
	"github.com/plantcert/pvp-backend/internal/utils"
)

// multipartFile builds a real multipart.File/FileHeader pair the same way
// gin's c.FormFile would hand them to the handler.
func multipartFile(t *testing.T, filename string, content []byte) (multipart.File, *multipart.FileHeader) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(&buf, writer.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	header := form.File["file"][0]
	file, err := header.Open()
	require.NoError(t, err)
	return file, header
}

type DocumentServiceTestSuite struct {
	suite.Suite
	db        *gorm.DB
	fixture   *fixture
	documents *DocumentService
}

func (suite *DocumentServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.fixture = newFixture(suite.T(), suite.db)

	storage, err := NewStorageService(&config.Config{
		Server: config.ServerConfig{Port: "8080"},
	})
	suite.Require().NoError(err)

	suite.documents = NewDocumentService(suite.db, storage)
}

func (suite *DocumentServiceTestSuite) TestUploadCreatesRecord() {
	application := suite.fixture.application(suite.fixture.variety("Tree"), models.ApplicationStatusFiled)
	file, header := multipartFile(suite.T(), "questionnaire.pdf", []byte("%PDF-1.7 test"))

	document, err := suite.documents.Upload(suite.fixture.scope(), application.ID, file, header, &UploadDocumentRequest{
		DocType: "Technical Questionnaire",
	})

	suite.Require().NoError(err)
	suite.Equal(application.ID, document.ApplicationID)
	suite.Equal(suite.fixture.Org.ID, document.OrganizationID)
	suite.Equal("Technical Questionnaire", document.DocType)
	suite.Equal("questionnaire.pdf", document.Title) // falls back to the filename
	suite.NotEmpty(document.FileURL)
	suite.Equal(suite.fixture.User.ID, document.UploadedBy)
	suite.True(utils.ValidateFileHash([]byte("%PDF-1.7 test"), document.FileHash))
}

func (suite *DocumentServiceTestSuite) TestUploadCompletesMatchingDocumentTask() {
	application := suite.fixture.application(suite.fixture.variety("Tree"), models.ApplicationStatusFiled)
	trigger := models.TriggerFilingDate
	task := &models.Task{
		OrganizationID: suite.fixture.Org.ID,
		ApplicationID:  application.ID,
		TaskType:       models.TaskTypeDocument,
		TriggerEvent:   &trigger,
		Title:          "Upload Technical Questionnaire",
		DueDate:        date(2024, time.March, 1),
		Status:         models.TaskStatusPending,
	}
	suite.Require().NoError(suite.db.Create(task).Error)

	file, header := multipartFile(suite.T(), "tq.pdf", []byte("%PDF-1.7 test"))
	_, err := suite.documents.Upload(suite.fixture.scope(), application.ID, file, header, &UploadDocumentRequest{
		DocType: "Technical Questionnaire",
	})
	suite.Require().NoError(err)

	var reloaded models.Task
	suite.Require().NoError(suite.db.First(&reloaded, "id = ?", task.ID).Error)
	suite.Equal(models.TaskStatusCompleted, reloaded.Status)
	suite.NotNil(reloaded.CompletedAt)
	suite.Require().NotNil(reloaded.CompletedBy)
	suite.Equal(suite.fixture.User.ID, *reloaded.CompletedBy)
}

func (suite *DocumentServiceTestSuite) TestUploadLeavesUnrelatedTasksOpen() {
	application := suite.fixture.application(suite.fixture.variety("Tree"), models.ApplicationStatusFiled)
	task := &models.Task{
		OrganizationID: suite.fixture.Org.ID,
		ApplicationID:  application.ID,
		TaskType:       models.TaskTypeDocument,
		Title:          "Upload Photographs",
		DueDate:        date(2024, time.March, 1),
		Status:         models.TaskStatusPending,
	}
	suite.Require().NoError(suite.db.Create(task).Error)

	file, header := multipartFile(suite.T(), "tq.pdf", []byte("%PDF-1.7 test"))
	_, err := suite.documents.Upload(suite.fixture.scope(), application.ID, file, header, &UploadDocumentRequest{
		DocType: "Technical Questionnaire",
	})
	suite.Require().NoError(err)

	var reloaded models.Task
	suite.Require().NoError(suite.db.First(&reloaded, "id = ?", task.ID).Error)
	suite.Equal(models.TaskStatusPending, reloaded.Status)
}

func (suite *DocumentServiceTestSuite) TestUploadRejectsDisallowedExtension() {
	application := suite.fixture.application(suite.fixture.variety("Tree"), models.ApplicationStatusFiled)
	file, header := multipartFile(suite.T(), "malware.exe", []byte("MZ"))

	_, err := suite.documents.Upload(suite.fixture.scope(), application.ID, file, header, &UploadDocumentRequest{
		DocType: "Technical Questionnaire",
	})

	suite.ErrorIs(err, ErrFileTypeNotAllowed)
}

func (suite *DocumentServiceTestSuite) TestUploadRejectsUnknownRenewalTerm() {
	application := suite.fixture.application(suite.fixture.variety("Tree"), models.ApplicationStatusFiled)
	file, header := multipartFile(suite.T(), "receipt.pdf", []byte("%PDF-1.7"))
	unknownTerm := uuid.New()

	_, err := suite.documents.Upload(suite.fixture.scope(), application.ID, file, header, &UploadDocumentRequest{
		DocType:       "Renewal Receipt",
		RenewalTermID: &unknownTerm,
	})

	suite.ErrorIs(err, ErrRenewalTermNotFound)
}

func (suite *DocumentServiceTestSuite) TestUploadScopedToTenant() {
	application := suite.fixture.application(suite.fixture.variety("Tree"), models.ApplicationStatusFiled)
	file, header := multipartFile(suite.T(), "tq.pdf", []byte("%PDF-1.7"))

	otherOrg := &models.Organization{Name: "Rival Seeds Ltd", Status: models.OrganizationStatusActive}
	suite.Require().NoError(suite.db.Create(otherOrg).Error)

	_, err := suite.documents.Upload(OrgScope(otherOrg.ID, uuid.New()), application.ID, file, header, &UploadDocumentRequest{
		DocType: "Technical Questionnaire",
	})

	suite.ErrorIs(err, ErrApplicationNotFound)
}

func (suite *DocumentServiceTestSuite) TestListAndDelete() {
	application := suite.fixture.application(suite.fixture.variety("Tree"), models.ApplicationStatusFiled)
	file, header := multipartFile(suite.T(), "tq.pdf", []byte("%PDF-1.7"))
	document, err := suite.documents.Upload(suite.fixture.scope(), application.ID, file, header, &UploadDocumentRequest{
		DocType: "Technical Questionnaire",
	})
	suite.Require().NoError(err)

	documents, err := suite.documents.List(suite.fixture.scope(), application.ID)
	suite.Require().NoError(err)
	suite.Len(documents, 1)

	suite.Require().NoError(suite.documents.Delete(suite.fixture.scope(), document.ID))

	documents, err = suite.documents.List(suite.fixture.scope(), application.ID)
	suite.Require().NoError(err)
	suite.Empty(documents)

	suite.ErrorIs(suite.documents.Delete(suite.fixture.scope(), document.ID), ErrDocumentNotFound)
}

func TestDocumentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DocumentServiceTestSuite))
}

package usecases_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"merovian.backend/internal/domain/entities"
	domainerrors "merovian.backend/internal/domain/errors"
	"merovian.backend/internal/usecases"
)

type kycFixture struct {
	uow      *MockUnitOfWork
	profiles *MockProfileRepository
	kyc      *MockKYCRepository
	storage  *MockObjectStorage
	pub      *recordingPublisher
	uc       *usecases.KYCUsecase
}

func newKYCFixture() *kycFixture {
	f := &kycFixture{
		uow:      new(MockUnitOfWork),
		profiles: new(MockProfileRepository),
		kyc:      new(MockKYCRepository),
		storage:  new(MockObjectStorage),
		pub:      &recordingPublisher{},
	}
	f.uc = usecases.NewKYCUsecase(f.uow, f.profiles, f.kyc, f.storage, f.pub)
	return f
}

func kycSubmission() *entities.KYCSubmission {
	return &entities.KYCSubmission{
		Form: entities.KYCForm{
			FullLegalName: " Ada Lovelace ",
			DOB:           "1990-01-01",
			IDNumber:      "X123",
			Country:       "UK",
			Address:       "1 Street",
			City:          "London",
			PostalCode:    "N1",
		},
		Front: &entities.UploadedFile{Filename: "front.jpeg", ContentType: "image/jpeg", Data: []byte("front")},
		Back:  &entities.UploadedFile{Filename: "back.png", ContentType: "image/png; charset=binary", Data: []byte("back")},
	}
}

func TestKYCUsecase_Submit_FirstSubmission(t *testing.T) {
	defer usecases.SetRandomSuffix(func() (string, error) { return "abc123", nil })()
	f := newKYCFixture()
	ctx := context.Background()
	id := uuid.New()
	profile := entities.NewProfile(id, "ada@example.com", "", time.Now())
	pending := entities.NewProfile(id, "ada@example.com", "", time.Now())
	pending.KYCStatus = entities.KYCPending
	pending.Version = 2

	f.profiles.On("GetByID", ctx, id).Return(profile, nil)
	f.storage.On("Upload", ctx, entities.KYCBucket, id.String()+"/front_abc123.jpeg", "image/jpeg", []byte("front")).
		Return("https://cdn/front", nil)
	f.storage.On("Upload", ctx, entities.KYCBucket, id.String()+"/back_abc123.png", "image/png", []byte("back")).
		Return("https://cdn/back", nil)
	f.uow.On("Do", ctx, mock.Anything).Return(nil)
	f.kyc.On("Upsert", ctx, mock.MatchedBy(func(d *entities.KYCDetails) bool {
		return d.UserID == id && d.FullLegalName == "Ada Lovelace" &&
			d.DocumentFrontURL == "https://cdn/front" && d.DocumentBackURL == "https://cdn/back"
	})).Return(true, nil)
	f.profiles.On("UpdateKYCStatus", ctx, id, entities.KYCPending, profile.Version).Return(pending, nil)

	details, updated, err := f.uc.Submit(ctx, id, kycSubmission())
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/front", details.DocumentFrontURL)
	assert.Equal(t, entities.KYCPending, updated.KYCStatus)
	assert.Equal(t, []string{"kyc_details:INSERT", "profiles:UPDATE"}, f.pub.tables())

	f.storage.AssertExpectations(t)
	f.kyc.AssertExpectations(t)
	f.profiles.AssertExpectations(t)
}

func TestKYCUsecase_Submit_ResubmissionPublishesUpdate(t *testing.T) {
	defer usecases.SetRandomSuffix(func() (string, error) { return "x", nil })()
	f := newKYCFixture()
	ctx := context.Background()
	id := uuid.New()
	rejected := entities.NewProfile(id, "ada@example.com", "", time.Now())
	rejected.KYCStatus = entities.KYCRejected

	f.profiles.On("GetByID", ctx, id).Return(rejected, nil)
	f.storage.On("Upload", ctx, entities.KYCBucket, mock.Anything, mock.Anything, mock.Anything).Return("u", nil)
	f.uow.On("Do", ctx, mock.Anything).Return(nil)
	f.kyc.On("Upsert", ctx, mock.Anything).Return(false, nil)
	f.profiles.On("UpdateKYCStatus", ctx, id, entities.KYCPending, rejected.Version).Return(rejected, nil)

	_, _, err := f.uc.Submit(ctx, id, kycSubmission())
	require.NoError(t, err)
	assert.Equal(t, []string{"kyc_details:UPDATE", "profiles:UPDATE"}, f.pub.tables())
}

func TestKYCUsecase_Submit_MissingDocuments(t *testing.T) {
	f := newKYCFixture()
	sub := kycSubmission()
	sub.Back = nil
	_, _, err := f.uc.Submit(context.Background(), uuid.New(), sub)
	assert.ErrorIs(t, err, domainerrors.ErrMissingDocuments)

	sub = kycSubmission()
	sub.Front.Data = nil
	_, _, err = f.uc.Submit(context.Background(), uuid.New(), sub)
	assert.ErrorIs(t, err, domainerrors.ErrMissingDocuments)
	f.profiles.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestKYCUsecase_Submit_AlreadyVerified(t *testing.T) {
	f := newKYCFixture()
	ctx := context.Background()
	id := uuid.New()
	verified := entities.NewProfile(id, "ada@example.com", "", time.Now())
	verified.KYCStatus = entities.KYCVerified
	f.profiles.On("GetByID", ctx, id).Return(verified, nil)

	_, _, err := f.uc.Submit(ctx, id, kycSubmission())
	assert.ErrorIs(t, err, domainerrors.ErrConflict)
	f.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestKYCUsecase_Submit_UnsupportedType(t *testing.T) {
	f := newKYCFixture()
	ctx := context.Background()
	id := uuid.New()
	f.profiles.On("GetByID", ctx, id).Return(entities.NewProfile(id, "a@b.c", "", time.Now()), nil)

	sub := kycSubmission()
	sub.Front.ContentType = "text/html"
	_, _, err := f.uc.Submit(ctx, id, sub)
	require.Error(t, err)
	assert.Equal(t, "Unsupported document type text/html", domainerrors.FromError(err).Message)
}

func TestKYCUsecase_Submit_UploadFailureLeavesRowsUntouched(t *testing.T) {
	defer usecases.SetRandomSuffix(func() (string, error) { return "x", nil })()
	f := newKYCFixture()
	ctx := context.Background()
	id := uuid.New()
	f.profiles.On("GetByID", ctx, id).Return(entities.NewProfile(id, "a@b.c", "", time.Now()), nil)
	f.storage.On("Upload", ctx, entities.KYCBucket, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("bucket gone"))

	_, _, err := f.uc.Submit(ctx, id, kycSubmission())
	require.ErrorContains(t, err, "upload front document")
	f.uow.AssertNotCalled(t, "Do", mock.Anything, mock.Anything)
}

func TestKYCUsecase_Submit_StatusWriteFailure(t *testing.T) {
	defer usecases.SetRandomSuffix(func() (string, error) { return "x", nil })()
	f := newKYCFixture()
	ctx := context.Background()
	id := uuid.New()
	f.profiles.On("GetByID", ctx, id).Return(entities.NewProfile(id, "a@b.c", "", time.Now()), nil)
	f.storage.On("Upload", ctx, entities.KYCBucket, mock.Anything, mock.Anything, mock.Anything).Return("u", nil)
	f.uow.On("Do", ctx, mock.Anything).Return(nil)
	f.profiles.On("UpdateKYCStatus", ctx, id, entities.KYCPending, int64(1)).Return(nil, errors.New("db down"))

	_, _, err := f.uc.Submit(ctx, id, kycSubmission())
	require.ErrorContains(t, err, "set kyc status")
	assert.Empty(t, f.pub.tables())
	f.kyc.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestKYCUsecase_Submit_VerifiedDuringUpload(t *testing.T) {
	defer usecases.SetRandomSuffix(func() (string, error) { return "x", nil })()
	f := newKYCFixture()
	ctx := context.Background()
	id := uuid.New()
	rejected := entities.NewProfile(id, "ada@example.com", "", time.Now())
	rejected.KYCStatus = entities.KYCRejected
	verified := entities.NewProfile(id, "ada@example.com", "", time.Now())
	verified.KYCStatus = entities.KYCVerified
	verified.Version = 2

	f.profiles.On("GetByID", ctx, id).Return(rejected, nil).Once()
	f.profiles.On("GetByID", ctx, id).Return(verified, nil).Once()
	f.storage.On("Upload", ctx, entities.KYCBucket, mock.Anything, mock.Anything, mock.Anything).Return("u", nil)
	f.uow.On("Do", ctx, mock.Anything).Return(nil)

	_, _, err := f.uc.Submit(ctx, id, kycSubmission())
	assert.ErrorIs(t, err, domainerrors.ErrConflict)
	f.profiles.AssertNotCalled(t, "UpdateKYCStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.kyc.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	assert.Empty(t, f.pub.tables())
}

func TestKYCUsecase_Submit_StaleStatusWrite(t *testing.T) {
	defer usecases.SetRandomSuffix(func() (string, error) { return "x", nil })()
	f := newKYCFixture()
	ctx := context.Background()
	id := uuid.New()
	rejected := entities.NewProfile(id, "ada@example.com", "", time.Now())
	rejected.KYCStatus = entities.KYCRejected
	rejected.Version = 4

	f.profiles.On("GetByID", ctx, id).Return(rejected, nil)
	f.storage.On("Upload", ctx, entities.KYCBucket, mock.Anything, mock.Anything, mock.Anything).Return("u", nil)
	f.uow.On("Do", ctx, mock.Anything).Return(nil)
	f.profiles.On("UpdateKYCStatus", ctx, id, entities.KYCPending, int64(4)).Return(nil, domainerrors.ErrStaleWrite)

	_, _, err := f.uc.Submit(ctx, id, kycSubmission())
	assert.ErrorIs(t, err, domainerrors.ErrStaleWrite)
	assert.Equal(t, http.StatusConflict, domainerrors.FromError(err).Status)
	f.kyc.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	assert.Empty(t, f.pub.tables())
}

func TestKYCUsecase_GetDetails(t *testing.T) {
	f := newKYCFixture()
	ctx := context.Background()
	id := uuid.New()
	f.kyc.On("GetByUserID", ctx, id).Return(&entities.KYCDetails{UserID: id, Country: "UK"}, nil)

	d, err := f.uc.GetDetails(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "UK", d.Country)
}

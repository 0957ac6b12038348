package usecases

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"merovian.backend/internal/domain/entities"
	domainerrors "merovian.backend/internal/domain/errors"
	"merovian.backend/internal/domain/repositories"
	"merovian.backend/pkg/crypto"
	"merovian.backend/pkg/logger"
	"merovian.backend/pkg/metrics"
)

var randomSuffix = crypto.RandomSuffix

var documentExtensions = map[string]string{
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// KYCUsecase handles identity document submission.
type KYCUsecase struct {
	uow         repositories.UnitOfWork
	profileRepo repositories.ProfileRepository
	kycRepo     repositories.KYCRepository
	storage     ObjectStorage
	publisher   EventPublisher
}

func NewKYCUsecase(
	uow repositories.UnitOfWork,
	profileRepo repositories.ProfileRepository,
	kycRepo repositories.KYCRepository,
	storage ObjectStorage,
	publisher EventPublisher,
) *KYCUsecase {
	return &KYCUsecase{
		uow:         uow,
		profileRepo: profileRepo,
		kycRepo:     kycRepo,
		storage:     storage,
		publisher:   publisherOrNoop(publisher),
	}
}

// Submit uploads both document images, then upserts the details row and
// moves the profile to pending in one unit of work. Verification is left
// to an admin review.
func (u *KYCUsecase) Submit(ctx context.Context, userID uuid.UUID, sub *entities.KYCSubmission) (*entities.KYCDetails, *entities.Profile, error) {
	if sub.Front == nil || sub.Back == nil || len(sub.Front.Data) == 0 || len(sub.Back.Data) == 0 {
		return nil, nil, domainerrors.ErrMissingDocuments
	}

	profile, err := u.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if profile.KYCStatus == entities.KYCVerified {
		return nil, nil, domainerrors.Conflict("Identity is already verified")
	}

	frontURL, err := u.upload(ctx, userID, entities.DocumentFront, sub.Front)
	if err != nil {
		return nil, nil, err
	}
	backURL, err := u.upload(ctx, userID, entities.DocumentBack, sub.Back)
	if err != nil {
		return nil, nil, err
	}

	form := sub.Form
	details := &entities.KYCDetails{
		UserID:           userID,
		FullLegalName:    strings.TrimSpace(form.FullLegalName),
		DOB:              strings.TrimSpace(form.DOB),
		IDNumber:         strings.TrimSpace(form.IDNumber),
		Country:          strings.TrimSpace(form.Country),
		Address:          strings.TrimSpace(form.Address),
		City:             strings.TrimSpace(form.City),
		PostalCode:       strings.TrimSpace(form.PostalCode),
		DocumentFrontURL: frontURL,
		DocumentBackURL:  backURL,
	}

	var (
		created bool
		updated *entities.Profile
	)
	// An admin review may land while the documents upload. The status write
	// is guarded by the version read here, so a verification committed in
	// between fails the whole submission instead of being overwritten.
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		current, err := u.profileRepo.GetByID(txCtx, userID)
		if err != nil {
			return err
		}
		if current.KYCStatus == entities.KYCVerified {
			return domainerrors.Conflict("Identity is already verified")
		}
		if updated, err = u.profileRepo.UpdateKYCStatus(txCtx, userID, entities.KYCPending, current.Version); err != nil {
			return fmt.Errorf("set kyc status: %w", err)
		}
		if created, err = u.kycRepo.Upsert(txCtx, details); err != nil {
			return fmt.Errorf("upsert kyc details: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	metrics.RecordKYC(string(entities.KYCPending))
	changeType := entities.ChangeUpdate
	if created {
		changeType = entities.ChangeInsert
	}
	publish(ctx, u.publisher, func() (entities.ChangeEvent, error) {
		return entities.KYCChange(details, changeType)
	})
	publish(ctx, u.publisher, func() (entities.ChangeEvent, error) {
		return entities.ProfileChange(updated, entities.ChangeUpdate)
	})

	logger.Info(ctx, "kyc submitted", zap.String("user_id", userID.String()), zap.Bool("first_submission", created))
	return details, updated, nil
}

// GetDetails returns the caller's submitted details.
func (u *KYCUsecase) GetDetails(ctx context.Context, userID uuid.UUID) (*entities.KYCDetails, error) {
	return u.kycRepo.GetByUserID(ctx, userID)
}

func (u *KYCUsecase) upload(ctx context.Context, userID uuid.UUID, side entities.DocumentSide, file *entities.UploadedFile) (string, error) {
	contentType := strings.ToLower(strings.TrimSpace(strings.Split(file.ContentType, ";")[0]))
	ext, ok := documentExtensions[contentType]
	if !ok {
		return "", domainerrors.NewAppError(http.StatusBadRequest, domainerrors.CodeInvalidInput,
			"Unsupported document type "+contentType, domainerrors.ErrInvalidInput)
	}
	if ext == ".jpg" && strings.ToLower(filepath.Ext(file.Filename)) == ".jpeg" {
		ext = ".jpeg"
	}

	suffix, err := randomSuffix()
	if err != nil {
		return "", err
	}
	path := fmt.Sprintf("%s/%s_%s%s", userID, side, suffix, ext)
	url, err := u.storage.Upload(ctx, entities.KYCBucket, path, contentType, file.Data)
	if err != nil {
		return "", fmt.Errorf("upload %s document: %w", side, err)
	}
	return url, nil
}

package entities

import (
	"time"

	"github.com/google/uuid"
)

// KYCBucket is the storage bucket holding identity documents.
const KYCBucket = "kyc-documents"

// DocumentSide names the two identity document images.
type DocumentSide string

const (
	DocumentFront DocumentSide = "front"
	DocumentBack  DocumentSide = "back"
)

// KYCDetails holds identity data, one row per profile.
type KYCDetails struct {
	UserID           uuid.UUID `json:"userId"`
	FullLegalName    string    `json:"fullLegalName"`
	DOB              string    `json:"dob"`
	IDNumber         string    `json:"idNumber"`
	Country          string    `json:"country"`
	Address          string    `json:"address"`
	City             string    `json:"city"`
	PostalCode       string    `json:"postalCode"`
	DocumentFrontURL string    `json:"documentFrontUrl"`
	DocumentBackURL  string    `json:"documentBackUrl"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// KYCForm is the text part of a KYC submission.
type KYCForm struct {
	FullLegalName string `form:"fullLegalName" binding:"required,max=200"`
	DOB           string `form:"dob" binding:"required"`
	IDNumber      string `form:"idNumber" binding:"required,max=100"`
	Country       string `form:"country" binding:"required,max=100"`
	Address       string `form:"address" binding:"required,max=300"`
	City          string `form:"city" binding:"required,max=100"`
	PostalCode    string `form:"postalCode" binding:"required,max=20"`
}

// KYCSubmission is a form plus both document images.
type KYCSubmission struct {
	Form  KYCForm
	Front *UploadedFile
	Back  *UploadedFile
}

// UpdateKYCStatusInput is an admin review decision.
type UpdateKYCStatusInput struct {
	Status KYCStatus `json:"status" binding:"required"`
}

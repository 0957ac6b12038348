package entities

import "time"

// UploadedFile is an in memory upload.
type UploadedFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// StoredObject is a blob addressed by bucket and path.
type StoredObject struct {
	Bucket      string    `json:"bucket"`
	Path        string    `json:"path"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	Data        []byte    `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
}

package models

import "time"

// DocumentInfo describes a stored application document
type DocumentInfo struct {
	ID            string       `json:"id" bson:"id"`
	ApplicationID string       `json:"applicationId" bson:"application_id"`
	Type          DocumentType `json:"type" bson:"type"`
	Filename      string       `json:"filename" bson:"filename"`
	ContentType   string       `json:"contentType" bson:"content_type"`
	Size          int64        `json:"size" bson:"size"`
	UploadedBy    string       `json:"uploadedBy,omitempty" bson:"uploaded_by,omitempty"`
	UploadedAt    time.Time    `json:"uploadedAt" bson:"uploaded_at"`
}

// MediaInfo describes a stored user media file
type MediaInfo struct {
	ID          string    `json:"id" bson:"id"`
	UserID      string    `json:"userId" bson:"user_id"`
	Type        MediaType `json:"type" bson:"type"`
	Filename    string    `json:"filename" bson:"filename"`
	ContentType string    `json:"contentType" bson:"content_type"`
	Size        int64     `json:"size" bson:"size"`
	UploadedAt  time.Time `json:"uploadedAt" bson:"uploaded_at"`
}

// UploadOutcome reports the result of one file in an upload request
type UploadOutcome struct {
	Type     DocumentType  `json:"type"`
	Filename string        `json:"filename"`
	Success  bool          `json:"success"`
	Error    string        `json:"error,omitempty"`
	Document *DocumentInfo `json:"document,omitempty"`
}

// UploadResponse summarizes an upload request and the resulting status
type UploadResponse struct {
	Outcomes []UploadOutcome   `json:"outcomes"`
	Status   ApplicationStatus `json:"status"`
}

package model

import "elc/shared/model"

const (
	TableName  = "resources"
	EntityName = "resource"

	FieldID          = "id"
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldCategory    = "category"
	FieldFileURL     = "file_url"
	FieldFileName    = "file_name"
	FieldContentType = "content_type"
	FieldSizeBytes   = "size_bytes"
	FieldUploadedBy  = "uploaded_by"
)

// Resource is a file in the digital resource repository. The file itself
// lives in object storage under FileURL.
type Resource struct {
	ID          string `db:"id"`
	Title       string `db:"title"`
	Description string `db:"description"`
	Category    string `db:"category"`
	FileURL     string `db:"file_url"`
	FileName    string `db:"file_name"`
	ContentType string `db:"content_type"`
	SizeBytes   int64  `db:"size_bytes"`
	UploadedBy  string `db:"uploaded_by"`
	model.Metadata
}

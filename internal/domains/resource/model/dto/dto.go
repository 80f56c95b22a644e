package dto

import (
	"mime/multipart"

	"elc/internal/domains/resource/model"
	"elc/shared"
	"elc/shared/constant"
	gDto "elc/shared/dto"
	gModel "elc/shared/model"
	"elc/shared/timezone"

	"github.com/google/uuid"
)

type CreateResourceRequest struct {
	Title       string                `json:"title"       validate:"required,min=3,max=150"`
	Description string                `json:"description" validate:"omitempty,max=1000"`
	Category    string                `json:"category"    validate:"omitempty,max=50"`
	File        *multipart.FileHeader `json:"file"        swaggerignore:"true" validate:"required,mimetypes=application/pdf image/png image/jpeg application/vnd.openxmlformats-officedocument.wordprocessingml.document application/vnd.openxmlformats-officedocument.presentationml.presentation,maxfilesize=20"`
	FileData    multipart.File        `json:"-"`
}

// ContentType returns the content type the client declared for the file.
func (c *CreateResourceRequest) ContentType() string {
	if c.File == nil {
		return constant.Empty
	}

	return c.File.Header.Get(constant.RequestHeaderContentType)
}

func (c *CreateResourceRequest) ToModel(user, fileURL string) model.Resource {
	now := timezone.Now()

	return model.Resource{
		ID:          uuid.NewString(),
		Title:       c.Title,
		Description: c.Description,
		Category:    c.Category,
		FileURL:     fileURL,
		FileName:    c.File.Filename,
		ContentType: c.ContentType(),
		SizeBytes:   c.File.Size,
		UploadedBy:  user,
		Metadata: gModel.NewMetadata(user, now),
	}
}

type ResourceResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	FileURL     string `json:"file_url"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	UploadedBy  string `json:"uploaded_by"`
	gDto.Metadata
}

func (r *ResourceResponse) FromModel(model model.Resource) {
	r.ID = model.ID
	r.Title = model.Title
	r.Description = model.Description
	r.Category = model.Category
	r.FileURL = model.FileURL
	r.FileName = model.FileName
	r.ContentType = model.ContentType
	r.SizeBytes = model.SizeBytes
	r.UploadedBy = model.UploadedBy
	r.Metadata.FromModel(model.Metadata)
}

type GetResourcesResponse struct {
	Resources []ResourceResponse `json:"resources"`
	TotalPage int                `json:"total_page"`
	TotalData int                `json:"total_data"`
}

func (r *GetResourcesResponse) FromModels(models []model.Resource, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Resources = make([]ResourceResponse, len(models))
	for i, m := range models {
		r.Resources[i].FromModel(m)
	}
}

package dto

type SendMessageRequest struct {
	Body    string  `json:"body" validate:"required,notblank,max=4000"`
	FileURL *string `json:"file_url,omitempty" validate:"omitempty,url"`
}

type MarkReadResponse struct {
	Updated int64 `json:"updated"`
}

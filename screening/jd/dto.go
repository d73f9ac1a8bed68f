package jd

type CreateRequest struct {
	Title   string `json:"title"`
	RawText string `json:"raw_text"`
}

type UpdateRequest struct {
	Title   *string `json:"title,omitempty"`
	RawText *string `json:"raw_text,omitempty"`
}

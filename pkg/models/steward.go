package models

import "context"

// RequestContext carries the caller-supplied tenant and user identity. It
// is threaded through to collaborator calls but never validated here;
// security validation is the platform's responsibility.
type RequestContext struct {
	TenantID string `json:"tenant_id,omitempty"`
	UserID   string `json:"user_id,omitempty"`
}

// ContentMetadata is the Librarian's view of one ingested content artifact.
type ContentMetadata struct {
	ContentID    string                 `json:"content_id"`
	ParsedFileID string                 `json:"parsed_file_id"`
	ContentType  string                 `json:"content_type,omitempty"`
	FormatType   string                 `json:"format_type,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// RawParsedPayload is an opaque parsed-file payload as returned by the
// Content Steward. Data is only ever materialized into a table inside the
// tabular normalizer.
type RawParsedPayload struct {
	ParsedFileID string `json:"parsed_file_id"`
	Format       string `json:"format_type"`
	Data         []byte `json:"file_data"`
}

// Librarian is the content-metadata lookup collaborator.
type Librarian interface {
	GetContentMetadata(
		ctx context.Context,
		rctx *RequestContext,
		contentID string,
	) (*ContentMetadata, error)
}

// ContentSteward is the secure raw-file retrieval collaborator. Only the
// embedding creator may call it.
type ContentSteward interface {
	GetParsedFile(
		ctx context.Context,
		rctx *RequestContext,
		parsedFileID string,
	) (*RawParsedPayload, error)
}

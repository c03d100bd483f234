package handlers

import "time"

// AddRedirectRequest is the request body for issuing a redirect link.
type AddRedirectRequest struct {
	Body struct {
		Destination string `doc:"Absolute http/https destination URL" example:"https://example.com/landing" json:"destination"`
		Slug        string `doc:"Optional human-readable slug"        example:"spring-launch"               json:"slug,omitempty"`
	}
}

// AddRedirectResponse is the response for a successfully issued redirect.
type AddRedirectResponse struct {
	Body struct {
		Message         string `doc:"Human-readable status"              json:"message"`
		RedirectURL     string `doc:"Query-parameter form shareable URL" json:"redirectUrl"`
		PathRedirectURL string `doc:"Path form shareable URL"            json:"pathRedirectUrl"`
		SlugRedirectURL string `doc:"Slug form shareable URL"            json:"slugRedirectUrl,omitempty"`
	}
}

// ResolvePathRequest is the path-form resolution request.
type ResolvePathRequest struct {
	Key   string `doc:"Record key"   example:"a1b2c3d4e5f6a7b8" path:"key"`
	Token string `doc:"Signed token" path:"token"`
	Email string `doc:"Optional identity appended to the destination path" query:"email"`
}

// ResolveQueryRequest is the query-form resolution request.
type ResolveQueryRequest struct {
	Key   string `doc:"Record key"   example:"a1b2c3d4e5f6a7b8" path:"key"`
	Token string `doc:"Signed token" query:"token"`
	Email string `doc:"Optional identity appended to the destination path" query:"email"`
}

// ResolveSlugRequest is the slug-form resolution request.
type ResolveSlugRequest struct {
	Slug  string `doc:"Record slug"  example:"spring-launch" path:"slug"`
	Token string `doc:"Signed token" path:"token"`
	Email string `doc:"Optional identity appended to the destination path" query:"email"`
}

// ResolveResponse is either a redirect or an HTML challenge page.
type ResolveResponse struct {
	Status      int
	ContentType string `header:"Content-Type"`
	Location    string `header:"Location"`
	Body        []byte
}

// RecordDTO is the administrative view of a redirect record.
type RecordDTO struct {
	Key         string    `json:"key"`
	Slug        string    `json:"slug,omitempty"`
	Destination string    `json:"destination"`
	Token       string    `json:"token"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ListRedirectsResponse is the full record listing.
type ListRedirectsResponse struct {
	Body []RecordDTO
}

// UpdateRedirectRequest mutates a record's destination. The token is never
// rotated by an update.
type UpdateRedirectRequest struct {
	Key  string `doc:"Record key" path:"key"`
	Body struct {
		Destination string `doc:"New absolute http/https destination URL" json:"destination"`
	}
}

// DeleteRedirectRequest deletes a record by key.
type DeleteRedirectRequest struct {
	Key string `doc:"Record key" path:"key"`
}

// MessageResponse is a generic message body.
type MessageResponse struct {
	Body struct {
		Message string `json:"message"`
	}
}

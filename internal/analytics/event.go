package analytics

import "time"

// Topics for link lifecycle events.
const (
	TopicLinkIssued   = "link.issued"
	TopicLinkResolved = "link.resolved"
	TopicLinkDenied   = "link.denied"
)

// LinkIssuedEvent is emitted when a redirect link is issued.
type LinkIssuedEvent struct {
	EventID     string    `json:"eventId"`
	Key         string    `json:"key"`
	Slug        string    `json:"slug,omitempty"`
	Destination string    `json:"destination"`
	IssuedAt    time.Time `json:"issuedAt"`
	ClientIP    string    `json:"clientIp"`
	UserAgent   string    `json:"userAgent"`
}

// LinkResolvedEvent is emitted when a resolution succeeds with a redirect or
// challenge outcome.
type LinkResolvedEvent struct {
	EventID     string    `json:"eventId"`
	Key         string    `json:"key"`
	Destination string    `json:"destination"`
	WithEmail   bool      `json:"withEmail"`
	Challenged  bool      `json:"challenged"`
	ResolvedAt  time.Time `json:"resolvedAt"`
	ClientIP    string    `json:"clientIp"`
	UserAgent   string    `json:"userAgent"`
	Referrer    string    `json:"referrer,omitempty"`
}

// LinkDeniedEvent is emitted when the bot gate or token checks deny a
// resolution. Reason stays server-side; it is never part of the HTTP reply.
type LinkDeniedEvent struct {
	EventID   string    `json:"eventId"`
	Key       string    `json:"key,omitempty"`
	Slug      string    `json:"slug,omitempty"`
	Reason    string    `json:"reason"`
	DeniedAt  time.Time `json:"deniedAt"`
	ClientIP  string    `json:"clientIp"`
	UserAgent string    `json:"userAgent"`
}

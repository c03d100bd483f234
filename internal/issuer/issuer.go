package issuer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"time"

	"github.com/gatelink/gatelink/internal/redirect"
	"github.com/gatelink/gatelink/internal/token"
	"go.uber.org/zap"
)

// KeyAlphabet and KeyLength define the shape of generated keys: fixed-length
// lowercase hex, ~64 bits of entropy.
const (
	KeyAlphabet = "0123456789abcdef"
	KeyLength   = 16
)

var (
	// ErrInvalidDestination is returned for destinations that are not
	// absolute http/https URLs.
	ErrInvalidDestination = errors.New("invalid destination URL")
	// ErrInvalidSlug is returned for slugs that fail the format check or
	// collide with a reserved route name.
	ErrInvalidSlug = errors.New("invalid slug")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9-]{3,64}$`)

// reservedSlugs are route names a slug may not shadow.
var reservedSlugs = map[string]struct{}{
	"add-redirect": {},
	"redirects":    {},
	"health":       {},
	"s":            {},
}

// KeyGenerator produces a random record key.
type KeyGenerator func() string

// Service mints redirect records: it validates the destination, generates a
// key, signs the token, and persists the record.
type Service struct {
	store       redirect.Repository
	codec       *token.Codec
	generateKey KeyGenerator
	logger      *zap.Logger
}

// NewService creates an issuance service.
func NewService(
	store redirect.Repository,
	codec *token.Codec,
	generateKey KeyGenerator,
	logger *zap.Logger,
) *Service {
	return &Service{
		store:       store,
		codec:       codec,
		generateKey: generateKey,
		logger:      logger,
	}
}

// Issue validates destination, mints a key and token, and persists the
// record. A non-empty slug additionally registers the human-readable
// resolution path.
//
// A random-key collision surfaces as redirect.ErrDuplicateKey; callers may
// retry the whole issuance, the service never retries on its own.
func (s *Service) Issue(ctx context.Context, destination, slug string) (*redirect.Record, error) {
	if err := ValidateDestination(destination); err != nil {
		return nil, err
	}

	if slug != "" {
		if err := validateSlug(slug); err != nil {
			return nil, err
		}
	}

	key := s.generateKey()

	signed, err := s.codec.Sign(key)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	record := &redirect.Record{
		Key:         key,
		Slug:        slug,
		Destination: destination,
		Token:       signed,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.store.Add(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("redirect issued",
		zap.String("key", record.Key),
		zap.String("slug", record.Slug),
		zap.String("destination", record.Destination),
	)

	return record, nil
}

// ValidateDestination checks that raw is an absolute URL with an http or
// https scheme and a host.
func ValidateDestination(raw string) error {
	if raw == "" {
		return ErrInvalidDestination
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return ErrInvalidDestination
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ErrInvalidDestination
	}

	if parsed.Host == "" {
		return ErrInvalidDestination
	}

	return nil
}

func validateSlug(slug string) error {
	if !slugPattern.MatchString(slug) {
		return ErrInvalidSlug
	}

	if _, reserved := reservedSlugs[slug]; reserved {
		return ErrInvalidSlug
	}

	return nil
}

package shortener

import (
	"context"
	"errors"
	"fmt"

	"nexus-go/internal/validation"
)

// maxGenerateAttempts bounds the generate-and-check loop. At the default
// code length a single collision is already unlikely, so hitting this cap
// means the code space is corrupted or effectively full.
const maxGenerateAttempts = 10

// Recorder accepts click events for asynchronous recording. Implementations
// must never block the caller; failures stay inside the recorder.
type Recorder interface {
	Record(shortCode string, info RequestInfo)
}

// Service owns short code allocation, lookups and redirect orchestration
type Service struct {
	repo     Repository
	recorder Recorder
	baseURL  string
}

func NewService(repo Repository, recorder Recorder, baseURL string) *Service {
	return &Service{
		repo:     repo,
		recorder: recorder,
		baseURL:  baseURL,
	}
}

// CreateShortURL creates a new shortened URL with an optional custom code
func (s *Service) CreateShortURL(ctx context.Context, req *CreateURLRequest, creatorIP string) (*URLResponse, error) {
	if err := validation.ValidateURL(req.OriginalURL); err != nil {
		return nil, ErrInvalidURL
	}

	url := &ShortURL{
		OriginalURL: req.OriginalURL,
		CreatorIP:   creatorIP,
	}

	if req.CustomCode != "" {
		if err := validation.ValidateShortCode(req.CustomCode); err != nil {
			return nil, ErrInvalidURL
		}
		url.ShortCode = req.CustomCode
		if err := s.repo.Create(ctx, url); err != nil {
			return nil, err
		}
		return s.toResponse(url), nil
	}

	if err := s.createWithGeneratedCode(ctx, url); err != nil {
		return nil, err
	}
	return s.toResponse(url), nil
}

// createWithGeneratedCode retries generation until an unused code is found.
// The insert itself is the uniqueness arbiter: a constraint violation from a
// concurrent writer just triggers another attempt.
func (s *Service) createWithGeneratedCode(ctx context.Context, url *ShortURL) error {
	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		code, err := GenerateCode(DefaultCodeLength)
		if err != nil {
			return fmt.Errorf("generating short code: %w", err)
		}

		taken, err := s.repo.Exists(ctx, code)
		if err != nil {
			return err
		}
		if taken {
			continue
		}

		url.ShortCode = code
		err = s.repo.Create(ctx, url)
		if errors.Is(err, ErrCodeTaken) {
			// Lost the race to a concurrent writer, try a fresh code
			continue
		}
		return err
	}

	return fmt.Errorf("%w after %d attempts", ErrCodeExhausted, maxGenerateAttempts)
}

// Lookup returns the active record for a code, or ErrNotFound
func (s *Service) Lookup(ctx context.Context, shortCode string) (*URLResponse, error) {
	url, err := s.repo.GetActiveByCode(ctx, shortCode)
	if err != nil {
		return nil, err
	}
	return s.toResponse(url), nil
}

// ResolveAndRecord looks up a code for redirection and hands the click to
// the recorder. Recording is fire-and-forget: the redirect never waits on
// it and never fails because of it.
func (s *Service) ResolveAndRecord(ctx context.Context, shortCode string, info RequestInfo) (string, error) {
	url, err := s.repo.GetActiveByCode(ctx, shortCode)
	if err != nil {
		return "", err
	}

	if s.recorder != nil {
		s.recorder.Record(shortCode, info)
	}

	return url.OriginalURL, nil
}

// List returns paginated URL summaries
func (s *Service) List(ctx context.Context, skip, limit int) ([]*URLResponse, error) {
	urls, err := s.repo.List(ctx, skip, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]*URLResponse, 0, len(urls))
	for _, url := range urls {
		responses = append(responses, s.toResponse(url))
	}
	return responses, nil
}

func (s *Service) toResponse(url *ShortURL) *URLResponse {
	return &URLResponse{
		ID:          url.ID,
		OriginalURL: url.OriginalURL,
		ShortCode:   url.ShortCode,
		ShortURL:    s.baseURL + "/" + url.ShortCode,
		CreatedAt:   url.CreatedAt,
		ClickCount:  url.ClickCount,
		IsActive:    url.IsActive,
	}
}

// Package services – SummaryService
//
// This file implements the summarization pipeline and the history ledger.
// One request runs strictly sequentially: dedup check → resolve → fetch →
// generate → extract. The pipeline performs the dedup-by-link check before
// doing any external work, so a link already in the user's history costs no
// metadata or model calls and returns the stored result instead.
//
// Model-output malformation is recovered locally (degraded fallback summary)
// and never surfaces as an error. Every other external failure maps onto the
// service error taxonomy for the handlers to translate.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/maple-video/maple-backend/internal/domain"
	"github.com/maple-video/maple-backend/internal/gemini"
	"github.com/maple-video/maple-backend/internal/repo"
	"github.com/maple-video/maple-backend/internal/youtube"
)

// VideoCatalog fetches normalized metadata for a resolved video id.
type VideoCatalog interface {
	Video(ctx context.Context, id string) (*domain.VideoDetails, error)
}

// SummaryGenerator produces the raw model reply for a metadata record.
type SummaryGenerator interface {
	Summarize(ctx context.Context, v *domain.VideoDetails) (string, error)
}

// SummaryService coordinates the summarization pipeline and the per-user
// history ledger.
type SummaryService struct {
	Users     UserDirectory
	Catalog   VideoCatalog
	Generator SummaryGenerator
}

// NewSummaryService constructs a SummaryService.
func NewSummaryService(users UserDirectory, catalog VideoCatalog, gen SummaryGenerator) *SummaryService {
	return &SummaryService{Users: users, Catalog: catalog, Generator: gen}
}

// Summarize turns a raw link into a full summarization result for the given
// user.
//
// Returns ErrDuplicateEntry together with the previously stored result when
// the link is already in the user's history; in that case no metadata or
// model call is made.
func (s *SummaryService) Summarize(ctx context.Context, userID, link string) (*domain.SummaryResult, error) {
	tr := otel.Tracer("services/SummaryService")
	ctx, span := tr.Start(ctx, "Summarize",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	link = strings.TrimSpace(link)
	if link == "" {
		return nil, ErrMissingLink
	}

	user, err := s.Users.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	// Dedup short-circuit: an existing entry for this link ends the request
	// before any network call.
	for _, entry := range user.History {
		if entry.Content.Link == link {
			return entry.Content.Data, ErrDuplicateEntry
		}
	}

	videoID, ok := youtube.ResolveVideoID(link)
	if !ok {
		return nil, ErrInvalidURL
	}
	span.SetAttributes(attribute.String("video.id", videoID))

	video, err := s.Catalog.Video(ctx, videoID)
	if err != nil {
		if errors.Is(err, youtube.ErrNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	raw, err := s.Generator.Summarize(ctx, video)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	summary, parsed := gemini.ParseSummary(raw)
	if !parsed {
		log.Warn().
			Str("user_id", userID).
			Str("video_id", videoID).
			Msg("model reply unparseable, using fallback summary")
		fb := gemini.FallbackSummary(video.Title)
		summary = &fb
	}

	return &domain.SummaryResult{YouTube: *video, Data: *summary}, nil
}

// AppendHistory adds an entry to the user's history. The dedup-by-link check
// runs here before the insert, and the conditional store write remains the
// arbiter for appends racing past that check; either way the duplicate case
// returns ErrDuplicateEntry with the current history.
func (s *SummaryService) AppendHistory(ctx context.Context, userID string, entry domain.HistoryEntry) ([]domain.HistoryEntry, error) {
	user, err := s.Users.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Date.IsZero() {
		entry.Date = time.Now().UTC()
	}

	for _, existing := range user.History {
		if existing.Content.Link == entry.Content.Link {
			return user.History, ErrDuplicateEntry
		}
	}

	history, appended, err := s.Users.AppendHistory(ctx, user.ID, entry)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if !appended {
		return history, ErrDuplicateEntry
	}
	return history, nil
}

// RemoveHistory deletes the entry with the given id from the user's history
// and returns the remaining list. An absent entry id is a no-op, not an
// error.
func (s *SummaryService) RemoveHistory(ctx context.Context, userID, entryID string) ([]domain.HistoryEntry, error) {
	if strings.TrimSpace(entryID) == "" {
		return nil, ErrMissingHistoryID
	}

	user, err := s.Users.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	history, err := s.Users.RemoveHistory(ctx, user.ID, entryID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return history, nil
}

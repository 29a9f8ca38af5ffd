package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mathieu-neron/NichePulse/nichepulse-go/internal/model"
)

// resolver stages, visited strictly in order. Each stage is a terminal
// return point; no stage is skipped except by an early terminal return.
type resolverStage int

const (
	stageCacheLookup resolverStage = iota
	stageKeywordHeuristic
	stageVisionModel
	stagePersist
)

func (s resolverStage) String() string {
	switch s {
	case stageCacheLookup:
		return "cache_lookup"
	case stageKeywordHeuristic:
		return "keyword_heuristic"
	case stageVisionModel:
		return "vision_model"
	default:
		return "persist"
	}
}

// classificationCache is the slice of CacheService the resolver needs.
type classificationCache interface {
	GetClassification(ctx context.Context, thumbnailRef string) (*model.CacheEntry, error)
	SetClassification(ctx context.Context, thumbnailRef string, result model.ClassificationResult) error
}

// visionClassifier is the expensive, vision-capable stage.
type visionClassifier interface {
	Classify(ctx context.Context, req model.ClassificationRequest) (model.ClassificationResult, error)
}

// ClassifierService resolves dark-channel classification through the
// cost-aware cascade: cache, then the free keyword heuristic, then the
// vision model, persisting every non-cache terminal result.
//
// Concurrent requests for the same thumbnail may race past the cache and
// both call the vision model; last write wins. Duplicate work is wasteful
// but not incorrect, so no per-key lock is taken.
type ClassifierService struct {
	cache   classificationCache
	keyword *KeywordService
	vision  visionClassifier
	now     func() time.Time
}

func NewClassifierService(cache classificationCache, keyword *KeywordService, vision visionClassifier) *ClassifierService {
	return &ClassifierService{
		cache:   cache,
		keyword: keyword,
		vision:  vision,
		now:     time.Now,
	}
}

// WithClock overrides the resolver's clock, for tests.
func (s *ClassifierService) WithClock(now func() time.Time) *ClassifierService {
	s.now = now
	return s
}

// Classify runs the cascade for one request. Exactly one method labels the
// returned result. An unresolved verdict carries HasEnoughData=false with
// IsDark=false and Confidence=0 — never a confident negative.
func (s *ClassifierService) Classify(ctx context.Context, req model.ClassificationRequest) (model.ClassificationResult, error) {
	// CACHE_LOOKUP: a hit with future expiry returns immediately and
	// skips every downstream stage.
	if s.cache != nil {
		entry, err := s.cache.GetClassification(ctx, req.ThumbnailRef)
		if err != nil {
			log.Printf("classify: cache lookup error (treating as miss): %v", err)
		} else if entry != nil && entry.ExpiresAt.After(s.now()) {
			result := entry.Result
			result.Method = model.MethodCache
			return result, nil
		}
	}

	// KEYWORD_HEURISTIC: free and I/O-less. Only a high-certainty verdict
	// short-circuits; low certainty always escalates.
	verdict := s.keyword.Evaluate(req)
	if verdict.Certainty == model.CertaintyHigh {
		result := resultFromKeyword(verdict, s.now())
		s.persist(ctx, req.ThumbnailRef, result)
		return result, nil
	}

	// VISION_MODEL: the expensive stage, invoked only when the heuristic
	// was inconclusive.
	visionResult, err := s.vision.Classify(ctx, req)
	if err != nil {
		if errors.Is(err, ErrUpstreamUnavailable) {
			// Recoverable: report "don't know" and cache nothing so the
			// next request can retry.
			return inconclusiveResult(err, s.now()), nil
		}
		// Malformed output or missing configuration fails the request; a
		// silently wrong confident answer would be worse than an error.
		return model.ClassificationResult{}, err
	}

	visionResult.Method = model.MethodVisionModel
	visionResult.Timestamp = s.now()

	// PERSIST: every terminal result except a pure cache hit is written
	// back with a forward expiry before being returned.
	s.persist(ctx, req.ThumbnailRef, visionResult)
	return visionResult, nil
}

func (s *ClassifierService) persist(ctx context.Context, thumbnailRef string, result model.ClassificationResult) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetClassification(ctx, thumbnailRef, result); err != nil {
		log.Printf("classify: cache write error for %s stage: %v", stagePersist, err)
	}
}

func resultFromKeyword(v KeywordVerdict, now time.Time) model.ClassificationResult {
	faceSize := model.FaceSizeNone
	if !v.IsDark {
		// Counter-indicators (vlog, facecam) imply an on-camera presenter.
		faceSize = model.FaceSizeMedium
	}
	return model.ClassificationResult{
		IsDark:        v.IsDark,
		Confidence:    v.Confidence,
		HasFace:       !v.IsDark,
		FaceSize:      faceSize,
		ContentType:   "",
		Reason:        v.Reason,
		Method:        model.MethodKeyword,
		HasEnoughData: true,
		Timestamp:     now,
	}
}

func inconclusiveResult(cause error, now time.Time) model.ClassificationResult {
	return model.ClassificationResult{
		IsDark:        false,
		Confidence:    0,
		HasFace:       false,
		FaceSize:      model.FaceSizeNone,
		Reason:        fmt.Sprintf("classification unavailable: %v", cause),
		Method:        model.MethodVisionModel,
		HasEnoughData: false,
		Timestamp:     now,
	}
}

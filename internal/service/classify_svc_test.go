package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mathieu-neron/NichePulse/nichepulse-go/internal/model"
)

type fakeCache struct {
	entry     *model.CacheEntry
	getErr    error
	gets      int
	sets      int
	lastSet   model.ClassificationResult
	lastKey   string
	setFailed error
}

func (f *fakeCache) GetClassification(ctx context.Context, thumbnailRef string) (*model.CacheEntry, error) {
	f.gets++
	return f.entry, f.getErr
}

func (f *fakeCache) SetClassification(ctx context.Context, thumbnailRef string, result model.ClassificationResult) error {
	f.sets++
	f.lastKey = thumbnailRef
	f.lastSet = result
	return f.setFailed
}

type fakeVision struct {
	result model.ClassificationResult
	err    error
	calls  int
}

func (f *fakeVision) Classify(ctx context.Context, req model.ClassificationRequest) (model.ClassificationResult, error) {
	f.calls++
	return f.result, f.err
}

var testClock = func() time.Time {
	return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
}

// neutralRequest has no keyword signal, so the heuristic always escalates.
func neutralRequest() model.ClassificationRequest {
	return model.ClassificationRequest{
		ThumbnailRef: "https://i.ytimg.com/vi/neutral/hq.jpg",
		Title:        "Weekly garden walk",
		ChannelName:  "Gardens",
	}
}

// darkRequest trips a strong dark keyword, resolving at the heuristic stage.
func darkRequest() model.ClassificationRequest {
	return model.ClassificationRequest{
		ThumbnailRef: "https://i.ytimg.com/vi/dark/hq.jpg",
		Title:        "Faceless cash cow channel blueprint",
	}
}

func TestClassify_CacheHitSkipsEverything(t *testing.T) {
	cache := &fakeCache{
		entry: &model.CacheEntry{
			Result: model.ClassificationResult{
				IsDark:        true,
				Confidence:    88,
				Method:        model.MethodVisionModel,
				HasEnoughData: true,
			},
			ExpiresAt: testClock().Add(time.Hour),
		},
	}
	vision := &fakeVision{}
	svc := NewClassifierService(cache, NewKeywordService(), vision).WithClock(testClock)

	// Even a request with a decisive keyword must stop at the cache
	result, err := svc.Classify(context.Background(), darkRequest())
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	if result.Method != model.MethodCache {
		t.Errorf("method = %q, want %q", result.Method, model.MethodCache)
	}
	if !result.IsDark || result.Confidence != 88 {
		t.Errorf("cache hit must return the stored result, got %+v", result)
	}
	if vision.calls != 0 {
		t.Errorf("vision called %d times, want 0 on a cache hit", vision.calls)
	}
	if cache.sets != 0 {
		t.Errorf("cache written %d times, want 0 on a cache hit", cache.sets)
	}
}

func TestClassify_ExpiredEntryIsAMiss(t *testing.T) {
	cache := &fakeCache{
		entry: &model.CacheEntry{
			Result:    model.ClassificationResult{IsDark: true, Confidence: 88},
			ExpiresAt: testClock().Add(-time.Minute),
		},
	}
	vision := &fakeVision{
		result: model.ClassificationResult{IsDark: false, Confidence: 60, HasEnoughData: true},
	}
	svc := NewClassifierService(cache, NewKeywordService(), vision).WithClock(testClock)

	result, err := svc.Classify(context.Background(), neutralRequest())
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if result.Method == model.MethodCache {
		t.Error("expired entry must not resolve as a cache hit")
	}
	if vision.calls != 1 {
		t.Errorf("vision called %d times, want 1 after an expired entry", vision.calls)
	}
}

func TestClassify_CacheErrorDegradesToMiss(t *testing.T) {
	cache := &fakeCache{getErr: errors.New("redis gone")}
	vision := &fakeVision{
		result: model.ClassificationResult{IsDark: true, Confidence: 70, HasEnoughData: true},
	}
	svc := NewClassifierService(cache, NewKeywordService(), vision).WithClock(testClock)

	result, err := svc.Classify(context.Background(), neutralRequest())
	if err != nil {
		t.Fatalf("Classify() error = %v, want nil (cache errors degrade)", err)
	}
	if result.Method != model.MethodVisionModel {
		t.Errorf("method = %q, want %q", result.Method, model.MethodVisionModel)
	}
}

func TestClassify_HighCertaintyKeywordSkipsVision(t *testing.T) {
	cache := &fakeCache{}
	vision := &fakeVision{}
	svc := NewClassifierService(cache, NewKeywordService(), vision).WithClock(testClock)

	result, err := svc.Classify(context.Background(), darkRequest())
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	if result.Method != model.MethodKeyword {
		t.Errorf("method = %q, want %q", result.Method, model.MethodKeyword)
	}
	if !result.IsDark || !result.HasEnoughData {
		t.Errorf("unexpected keyword result: %+v", result)
	}
	if vision.calls != 0 {
		t.Errorf("vision called %d times, want 0 after a high-certainty keyword verdict", vision.calls)
	}
	// Keyword verdicts persist like any other fresh result
	if cache.sets != 1 {
		t.Errorf("cache written %d times, want 1", cache.sets)
	}
	if cache.lastSet.Method != model.MethodKeyword {
		t.Errorf("persisted method = %q, want %q", cache.lastSet.Method, model.MethodKeyword)
	}
}

func TestClassify_LowCertaintyEscalatesToVision(t *testing.T) {
	cache := &fakeCache{}
	vision := &fakeVision{
		result: model.ClassificationResult{
			IsDark: true, Confidence: 82, FaceSize: model.FaceSizeNone, HasEnoughData: true,
		},
	}
	svc := NewClassifierService(cache, NewKeywordService(), vision).WithClock(testClock)

	result, err := svc.Classify(context.Background(), neutralRequest())
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	if vision.calls != 1 {
		t.Errorf("vision called %d times, want 1", vision.calls)
	}
	if result.Method != model.MethodVisionModel {
		t.Errorf("method = %q, want %q", result.Method, model.MethodVisionModel)
	}
	if !result.Timestamp.Equal(testClock()) {
		t.Errorf("timestamp = %v, want clock time", result.Timestamp)
	}
	if cache.sets != 1 {
		t.Errorf("cache written %d times, want 1 after a vision verdict", cache.sets)
	}
}

func TestClassify_UpstreamFailureIsInconclusive(t *testing.T) {
	cache := &fakeCache{}
	vision := &fakeVision{err: ErrUpstreamUnavailable}
	svc := NewClassifierService(cache, NewKeywordService(), vision).WithClock(testClock)

	result, err := svc.Classify(context.Background(), neutralRequest())
	if err != nil {
		t.Fatalf("Classify() error = %v, want nil for a recoverable outage", err)
	}

	if result.HasEnoughData {
		t.Error("hasEnoughData = true, want false on upstream failure")
	}
	if result.Confidence != 0 {
		t.Errorf("confidence = %d, want 0 on upstream failure", result.Confidence)
	}
	if result.IsDark {
		t.Error("an unresolved verdict must not be a confident positive")
	}
	// The cache must stay unwritten so the next request retries
	if cache.sets != 0 {
		t.Errorf("cache written %d times, want 0 on upstream failure", cache.sets)
	}
}

func TestClassify_MalformedResponseFailsRequest(t *testing.T) {
	cache := &fakeCache{}
	vision := &fakeVision{err: &MalformedResponseError{Reason: "no JSON object in model output"}}
	svc := NewClassifierService(cache, NewKeywordService(), vision).WithClock(testClock)

	_, err := svc.Classify(context.Background(), neutralRequest())
	if !IsMalformedResponse(err) {
		t.Errorf("err = %v, want MalformedResponseError passed through", err)
	}
	if cache.sets != 0 {
		t.Errorf("cache written %d times, want 0 on malformed response", cache.sets)
	}
}

func TestClassify_VisionDisabledFailsRequest(t *testing.T) {
	cache := &fakeCache{}
	vision := &fakeVision{err: ErrVisionDisabled}
	svc := NewClassifierService(cache, NewKeywordService(), vision).WithClock(testClock)

	_, err := svc.Classify(context.Background(), neutralRequest())
	if !errors.Is(err, ErrVisionDisabled) {
		t.Errorf("err = %v, want ErrVisionDisabled", err)
	}
}

func TestClassify_PersistFailureDoesNotFailRequest(t *testing.T) {
	cache := &fakeCache{setFailed: errors.New("redis gone")}
	vision := &fakeVision{}
	svc := NewClassifierService(cache, NewKeywordService(), vision).WithClock(testClock)

	result, err := svc.Classify(context.Background(), darkRequest())
	if err != nil {
		t.Fatalf("Classify() error = %v, want nil despite cache write failure", err)
	}
	if result.Method != model.MethodKeyword {
		t.Errorf("method = %q, want %q", result.Method, model.MethodKeyword)
	}
}

func TestResolverStageString(t *testing.T) {
	want := map[resolverStage]string{
		stageCacheLookup:      "cache_lookup",
		stageKeywordHeuristic: "keyword_heuristic",
		stageVisionModel:      "vision_model",
		stagePersist:          "persist",
	}
	for stage, name := range want {
		if stage.String() != name {
			t.Errorf("stage %d = %q, want %q", stage, stage.String(), name)
		}
	}
}

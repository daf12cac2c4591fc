package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/c360studio/labsentinel/cache"
)

// VisionAnalyzer describes a lab image in free text. Externally
// supplied, possibly failing; the pipeline treats it as a black box.
type VisionAnalyzer interface {
	AnalyzeImage(ctx context.Context, image []byte, mimeType string) (string, error)
}

// ProtocolComparer compares a vision description against protocol text
// and returns the raw reasoning output, expected to be JSON but not
// guaranteed to be.
type ProtocolComparer interface {
	CompareAgainstProtocol(ctx context.Context, visionText, protocolText string) (string, error)
}

// State names a pipeline stage for tracing and tests.
type State string

const (
	StateUploaded           State = "UPLOADED"
	StateVisionPending      State = "VISION_PENDING"
	StateVisionCached       State = "VISION_CACHED"
	StateQualityGate        State = "QUALITY_GATE"
	StateAbortedLowQuality  State = "ABORTED_LOW_QUALITY"
	StateReasoningPending   State = "REASONING_PENDING"
	StateReasoningCached    State = "REASONING_CACHED"
	StateNormalized         State = "NORMALIZED"
	StateScored             State = "SCORED"
	StateMismatchOverridden State = "MISMATCH_OVERRIDDEN"
	StateComplete           State = "COMPLETE"
)

// lowQualityThreshold is the declared image quality at or below which
// the pipeline halts before the reasoning call. A short-circuit, not a
// retry condition.
const lowQualityThreshold = 3

// Outcome is what every audit returns. The pipeline never raises: total
// failure still yields an Outcome with a well-formed ERROR record. The
// only Outcome without a record is a low-quality abort, which is a
// designed early exit rather than an error.
type Outcome struct {
	RequestID string `json:"request_id"`

	// State is the terminal state: COMPLETE, or ABORTED_LOW_QUALITY.
	State State `json:"state"`

	// Trace lists every state the pipeline passed through, in order.
	Trace []State `json:"trace"`

	// Vision is the tagged vision stage result.
	Vision VisionResult `json:"-"`

	// Record is the canonical audit record, nil only on a low-quality
	// abort.
	Record *Record `json:"record,omitempty"`

	// DetectedType and ExpectedType are the reconciled experiment-type
	// signals; Mismatch reports whether the override fired.
	DetectedType ExperimentType `json:"detected_type"`
	ExpectedType ExperimentType `json:"expected_type"`
	Mismatch     bool           `json:"mismatch"`
}

// Pipeline sequences cache lookups, the two inference calls,
// normalization, filtering, scoring, and the mismatch override into one
// audit result. Each audit is single-flow and sequential; independent
// audits may run concurrently, sharing only the cache.
type Pipeline struct {
	vision   VisionAnalyzer
	comparer ProtocolComparer
	store    cache.Store
	policy   Policy
	logger   *slog.Logger
	metrics  *Metrics
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithCache sets the content-addressed cache. Without one every audit
// issues both inference calls.
func WithCache(store cache.Store) PipelineOption {
	return func(p *Pipeline) { p.store = store }
}

// WithPolicy overrides the default scoring policy.
func WithPolicy(policy Policy) PipelineOption {
	return func(p *Pipeline) { p.policy = policy }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) { p.logger = logger }
}

// WithMetrics enables prometheus instrumentation.
func WithMetrics(m *Metrics) PipelineOption {
	return func(p *Pipeline) { p.metrics = m }
}

// NewPipeline creates a pipeline over the two inference collaborators.
func NewPipeline(vision VisionAnalyzer, comparer ProtocolComparer, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		vision:   vision,
		comparer: comparer,
		policy:   DefaultPolicy(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Audit runs the full pipeline for one (image, protocol) pair.
func (p *Pipeline) Audit(ctx context.Context, image []byte, mimeType, protocolText string) *Outcome {
	out := &Outcome{
		RequestID: uuid.New().String(),
		Trace:     []State{StateUploaded},
	}

	out.Vision = p.runVision(ctx, out, image, mimeType)

	out.Trace = append(out.Trace, StateQualityGate)
	if q := out.Vision.Observation.Quality; !out.Vision.Failed && q != nil && *q <= lowQualityThreshold {
		p.logger.Info("Audit aborted, declared image quality too low",
			"request_id", out.RequestID,
			"quality", *q)
		out.State = StateAbortedLowQuality
		out.Trace = append(out.Trace, StateAbortedLowQuality)
		p.metrics.audit("LOW_QUALITY")
		return out
	}

	out.ExpectedType = ExpectedProtocolType(protocolText)
	out.DetectedType, out.Mismatch = DetectMismatch(
		out.Vision.Observation.Type, out.Vision.Text(), out.ExpectedType)

	raw, err := p.runReasoning(ctx, out, image, out.Vision.Text(), protocolText)
	if err != nil {
		out.Record = errorRecord(err)
		out.State = StateComplete
		out.Trace = append(out.Trace, StateComplete)
		p.metrics.audit(string(RecordError))
		return out
	}

	rec := Normalize(raw)
	out.Trace = append(out.Trace, StateNormalized)

	if rec.Status == RecordParseError {
		// Terminal, not retried: the raw text is preserved for a human.
		out.Record = rec
		out.State = StateComplete
		out.Trace = append(out.Trace, StateComplete)
		p.metrics.audit(string(RecordParseError))
		return out
	}

	rec.Findings = FilterFindings(rec.Findings)
	score, status := p.policy.Score(rec.Checklist, rec.Findings)
	rec.Score = intPtr(score)
	rec.Status = status
	out.Trace = append(out.Trace, StateScored)

	if out.Mismatch {
		p.policy.ApplyMismatchOverride(rec, out.DetectedType, out.ExpectedType)
		out.Trace = append(out.Trace, StateMismatchOverridden)
	}

	out.Record = rec
	out.State = StateComplete
	out.Trace = append(out.Trace, StateComplete)
	p.metrics.audit(string(rec.Status))
	return out
}

// runVision resolves the vision stage through the cache. Failures are
// captured in the tagged result, never raised, and never cached.
func (p *Pipeline) runVision(ctx context.Context, out *Outcome, image []byte, mimeType string) VisionResult {
	key := cache.VisionKey(image)

	if p.store != nil {
		if cached, ok := p.store.Get(ctx, key); ok {
			p.metrics.cacheLookup("vision", true)
			out.Trace = append(out.Trace, StateVisionCached)
			return OkVision(cached)
		}
		p.metrics.cacheLookup("vision", false)
	}

	out.Trace = append(out.Trace, StateVisionPending)
	text, err := p.vision.AnalyzeImage(ctx, image, mimeType)
	p.metrics.inferenceCall("vision", err)
	if err != nil {
		p.logger.Warn("Vision analysis failed on all models",
			"request_id", out.RequestID,
			"error", err)
		return FailedVision(err.Error())
	}

	if p.store != nil {
		p.store.Put(ctx, key, text)
	}
	return OkVision(text)
}

// runReasoning resolves the reasoning stage through the cache. A
// transport failure is returned for conversion into a synthetic ERROR
// record; successful raw output is cached before normalization so a
// later run re-normalizes identically.
func (p *Pipeline) runReasoning(ctx context.Context, out *Outcome, image []byte, visionText, protocolText string) (string, error) {
	key := cache.AuditKey(image, protocolText)

	if p.store != nil {
		if cached, ok := p.store.Get(ctx, key); ok {
			p.metrics.cacheLookup("audit", true)
			out.Trace = append(out.Trace, StateReasoningCached)
			return cached, nil
		}
		p.metrics.cacheLookup("audit", false)
	}

	out.Trace = append(out.Trace, StateReasoningPending)
	raw, err := p.comparer.CompareAgainstProtocol(ctx, visionText, protocolText)
	p.metrics.inferenceCall("reasoning", err)
	if err != nil {
		p.logger.Warn("Reasoning comparison failed",
			"request_id", out.RequestID,
			"error", err)
		return "", err
	}

	if p.store != nil {
		p.store.Put(ctx, key, raw)
	}
	return raw, nil
}

// errorRecord builds the synthetic record for a reasoning transport
// failure: a complete, well-formed verdict rather than a thrown fault.
func errorRecord(err error) *Record {
	return &Record{
		Score:          intPtr(0),
		Status:         RecordError,
		Summary:        fmt.Sprintf("Audit could not be completed: %v", err),
		Findings:       []Finding{},
		Checklist:      []ChecklistItem{},
		RiskAssessment: "Unable to assess due to an inference transport failure.",
		RecommendedActions: []string{
			"Check API credentials",
			"Verify model availability",
			"Re-run the audit",
		},
	}
}

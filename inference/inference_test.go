package inference

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/c360studio/labsentinel/llm"
	"github.com/c360studio/labsentinel/llm/testutil"
)

func TestVisionAnalyzeImage(t *testing.T) {
	mock := &testutil.MockCompleter{
		Responses: []*llm.Response{
			{Content: "EXPERIMENT_TYPE: MTT_CELL_VIABILITY\nA plate.", Model: "test-model"},
		},
	}
	vision := NewVision(mock)

	text, err := vision.AnalyzeImage(context.Background(), []byte("hello"), "image/png")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !strings.HasPrefix(text, "EXPERIMENT_TYPE:") {
		t.Errorf("unexpected text: %q", text)
	}

	reqs := mock.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	req := reqs[0]

	if req.Capability != "vision" {
		t.Errorf("capability = %q", req.Capability)
	}
	if req.Temperature == nil || *req.Temperature != 0 {
		t.Error("vision calls must be deterministic (temperature 0)")
	}
	if len(req.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(req.Messages))
	}

	msg := req.Messages[0]
	if !strings.HasPrefix(msg.ImageURL, "data:image/png;base64,") {
		t.Errorf("image should be a data URI with the given mime type, got %q", msg.ImageURL)
	}
	if !strings.Contains(msg.ImageURL, "aGVsbG8=") {
		t.Error("image bytes should be base64 encoded into the URI")
	}
	if !strings.Contains(msg.Content, "EXPERIMENT_TYPE:") || !strings.Contains(msg.Content, "IMAGE_QUALITY:") {
		t.Error("prompt must ask for both machine-readable tags")
	}
}

func TestVisionDefaultMimeType(t *testing.T) {
	mock := &testutil.MockCompleter{}
	vision := NewVision(mock)

	_, err := vision.AnalyzeImage(context.Background(), []byte("x"), "")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !strings.HasPrefix(mock.Requests()[0].Messages[0].ImageURL, "data:image/jpeg;base64,") {
		t.Error("missing mime type should default to image/jpeg")
	}
}

func TestVisionPropagatesError(t *testing.T) {
	mock := &testutil.MockCompleter{Err: errors.New("all endpoints failed")}
	vision := NewVision(mock)

	_, err := vision.AnalyzeImage(context.Background(), []byte("x"), "image/jpeg")
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestComparerCompareAgainstProtocol(t *testing.T) {
	mock := &testutil.MockCompleter{
		Responses: []*llm.Response{{Content: `{"summary": "ok"}`, Model: "test-model"}},
	}
	comparer := NewComparer(mock)

	raw, err := comparer.CompareAgainstProtocol(context.Background(),
		"A gel with eight lanes.", "SOP-GE-002: Agarose Gel Electrophoresis")
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if raw != `{"summary": "ok"}` {
		t.Errorf("raw output must pass through unparsed, got %q", raw)
	}

	req := mock.Requests()[0]
	if req.Capability != "reasoning" {
		t.Errorf("capability = %q", req.Capability)
	}
	if req.Temperature == nil || *req.Temperature != 0 {
		t.Error("reasoning calls must be deterministic (temperature 0)")
	}
	if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
		t.Fatalf("expected system+user messages, got %+v", req.Messages)
	}

	user := req.Messages[1].Content
	if !strings.Contains(user, "A gel with eight lanes.") {
		t.Error("user prompt must embed the vision text")
	}
	if !strings.Contains(user, "SOP-GE-002") {
		t.Error("user prompt must embed the protocol text")
	}
	if !strings.Contains(user, "data_integrity_score") {
		t.Error("user prompt must request the structured JSON format")
	}
}

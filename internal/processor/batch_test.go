package processor_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/robwestz/bacowr/internal/autofix"
	"github.com/robwestz/bacowr/internal/domain"
	"github.com/robwestz/bacowr/internal/engine"
	"github.com/robwestz/bacowr/internal/logger"
	"github.com/robwestz/bacowr/internal/processor"
	"github.com/robwestz/bacowr/internal/qc"
	"github.com/robwestz/bacowr/internal/testhelpers"
	"github.com/robwestz/bacowr/internal/validator"
	"github.com/robwestz/bacowr/internal/writer"
)

func testPreflight() *domain.PreflightResult {
	return &domain.PreflightResult{
		Target: domain.TargetProfile{
			URL:       "https://shop.example/item",
			Title:     "Budget Laptops",
			Topic:     "laptops",
			Subtopics: []string{"battery life", "pricing"},
		},
		Publisher: domain.PublisherProfile{
			Domain:         "news.example",
			ReadabilityMin: 5,
			ReadabilityMax: 95,
		},
		Research: domain.IntentResearch{
			Alignment: map[string]domain.IntentAlignment{
				domain.IntentDimensionTopic:       domain.AlignmentAligned,
				domain.IntentDimensionAudience:    domain.AlignmentAligned,
				domain.IntentDimensionFunnelStage: domain.AlignmentAligned,
			},
			RelatedTerms:      []string{"battery life", "screen size", "ram", "storage", "warranty", "processor"},
			RequiredSubtopics: []string{"battery life", "pricing"},
		},
		Bridge: domain.BridgePivot,
	}
}

func passingArticle() string {
	var sb strings.Builder
	sb.WriteString("# Choosing a Laptop on a Budget\n\n")
	sb.WriteString("Picking well means knowing what to skip.\n\n")
	sb.WriteString("## Battery Life\n\n")
	sb.WriteString("Factors like battery life, screen size, ram, storage, warranty, and processor shape the decision. ")
	sb.WriteString("For a worked example, see the [best budget option](https://shop.example/item) guide. ")
	sb.WriteString("It covers each factor in enough depth to act on.\n\n")
	sb.WriteString("## Pricing\n\n")
	sb.WriteString("Pricing follows seasonal cycles. ")
	sb.WriteString("Published [labor statistics](https://www.bls.gov/data.htm) show wide variation in tech spending.\n\n")
	for len(strings.Fields(sb.String())) < 140 {
		sb.WriteString("Good planning beats good luck in nearly every purchase decision worth making. ")
	}
	return sb.String()
}

func rawInput(anchor string) validator.RawInput {
	return validator.RawInput{
		PublisherDomain: "news.example",
		TargetURL:       "https://shop.example/item",
		AnchorText:      anchor,
		Provider:        "mock",
		MinWordCount:    100,
	}
}

func newBatchProcessor(concurrency int) *processor.BatchProcessor {
	factory := writer.NewFactory()
	factory.Register(testhelpers.NewMockWriter("mock", passingArticle()))
	o := engine.New(
		testhelpers.NewMockPreflight(testPreflight()),
		factory,
		qc.NewController(qc.DefaultConfig(), logger.NewNop()),
		autofix.New(qc.Config{}, logger.NewNop()),
		engine.WithGate(processor.NewAdmissionGate(100, 100, logger.NewNop())),
	)
	return processor.NewBatchProcessor(o, concurrency, nil, logger.NewNop())
}

func TestProcess_OrderPreservedAllTerminal(t *testing.T) {
	b := newBatchProcessor(3)

	inputs := []validator.RawInput{
		rawInput("best budget option"),
		rawInput("best budget option"),
		rawInput("best budget option"),
		rawInput("best budget option"),
		rawInput("best budget option"),
	}
	results := b.Process(context.Background(), inputs)

	if len(results) != len(inputs) {
		t.Fatalf("expected %d results, got %d", len(inputs), len(results))
	}
	for i, res := range results {
		if res.Err != nil {
			t.Errorf("result %d: unexpected error %v", i, res.Err)
			continue
		}
		if !res.Result.FinalState.Terminal() {
			t.Errorf("result %d: non-terminal state %s", i, res.Result.FinalState)
		}
		if res.Result.FinalState != domain.StateDelivered {
			t.Errorf("result %d: expected DELIVERED, got %s (%s)", i, res.Result.FinalState, res.Result.AbortDetail)
		}
	}
}

func TestProcess_ValidationRejectsWithoutResult(t *testing.T) {
	b := newBatchProcessor(2)

	results := b.Process(context.Background(), []validator.RawInput{
		rawInput("best budget option"),
		rawInput(strings.Repeat("x", 501)),
	})

	if results[0].Err != nil {
		t.Errorf("valid input rejected: %v", results[0].Err)
	}
	if results[1].Err == nil {
		t.Error("expected validation error for oversized anchor")
	}
	if results[1].Result != nil {
		t.Errorf("rejected input must not carry a result, got %+v", results[1].Result)
	}
}

func TestProcess_EmptyBatch(t *testing.T) {
	b := newBatchProcessor(2)
	if results := b.Process(context.Background(), nil); results != nil {
		t.Errorf("expected nil for empty batch, got %v", results)
	}
}

func TestAdmissionGate_Admit(t *testing.T) {
	gate := processor.NewAdmissionGate(100, 1, logger.NewNop())

	ctx := context.Background()
	if err := gate.Admit(ctx); err != nil {
		t.Fatalf("first admit should pass: %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := gate.Admit(cancelled); err == nil {
		t.Error("admit on cancelled context should fail")
	}
}

func TestAdmissionGate_SlowsCalls(t *testing.T) {
	// 5 rps, burst 1: three admissions need roughly 400ms.
	gate := processor.NewAdmissionGate(5, 1, logger.NewNop())
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := gate.Admit(ctx); err != nil {
			t.Fatalf("admit %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed < 300*time.Millisecond {
		t.Errorf("expected rate limiting to take effect, elapsed %v", elapsed)
	}
}

func TestAdmissionGate_Allow(t *testing.T) {
	gate := processor.NewAdmissionGate(1, 1, logger.NewNop())
	if !gate.Allow() {
		t.Error("first call should be allowed")
	}
	if gate.Allow() {
		t.Error("burst exhausted, second immediate call should be denied")
	}
}

package scan

import "testing"

func TestPromptsForIndustry(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		industry string
	}{
		{name: "known industry", industry: "saas"},
		{name: "case-insensitive lookup", industry: "SaaS"},
		{name: "padded input", industry: "  ecommerce "},
		{name: "unknown industry falls back", industry: "space-mining"},
		{name: "empty industry falls back", industry: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := PromptsForIndustry(tt.industry)
			if len(got) != PromptCount {
				t.Fatalf("got %d prompts, want %d", len(got), PromptCount)
			}
			for i, p := range got {
				if p == "" {
					t.Fatalf("prompt %d is empty", i)
				}
			}
		})
	}
}

func TestPromptsForIndustryFallbackMatchesOther(t *testing.T) {
	t.Parallel()
	unknown := PromptsForIndustry("no-such-industry")
	other := PromptsForIndustry("other")
	for i := range other {
		if unknown[i] != other[i] {
			t.Fatalf("fallback prompt %d differs from other bucket", i)
		}
	}
}

func TestPromptsForIndustryReturnsCopy(t *testing.T) {
	t.Parallel()
	first := PromptsForIndustry("saas")
	first[0] = "mutated"
	second := PromptsForIndustry("saas")
	if second[0] == "mutated" {
		t.Fatalf("PromptsForIndustry leaked its backing array")
	}
}

func TestAllBucketsHaveFivePrompts(t *testing.T) {
	t.Parallel()
	for industry, prompts := range industryPrompts {
		if len(prompts) != PromptCount {
			t.Fatalf("bucket %q has %d prompts, want %d", industry, len(prompts), PromptCount)
		}
	}
}

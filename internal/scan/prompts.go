package scan

import "strings"

// industryPrompts is the closed per-industry question table. Every bucket
// holds exactly PromptCount entries; "other" is the catch-all.
var industryPrompts = map[string][]string{
	"ecommerce": {
		"What are the best online stores for buying products in this category?",
		"Which e-commerce sites offer the best prices and shipping?",
		"What online shops do you recommend for quality products?",
		"Where should I shop online for trustworthy service?",
		"Which online retailers have the best customer reviews?",
	},
	"saas": {
		"What are the best software tools for this use case?",
		"Which SaaS platforms do you recommend for businesses?",
		"What software solutions should I consider for my company?",
		"Which tools offer the best value for teams?",
		"What are the top-rated software platforms in this space?",
	},
	"media": {
		"What are the best websites for news and articles on this topic?",
		"Which publications provide reliable coverage of this subject?",
		"What media outlets should I follow for quality content?",
		"Where can I find in-depth reporting on this area?",
		"Which sites publish the most trustworthy analysis?",
	},
	"education": {
		"What are the best online resources for learning this subject?",
		"Which educational platforms do you recommend?",
		"Where can I find quality courses on this topic?",
		"What websites offer the best learning materials?",
		"Which education providers have the strongest reputation?",
	},
	"healthcare": {
		"What are reliable sources for health information on this topic?",
		"Which healthcare providers or services do you recommend?",
		"Where can I find trustworthy medical guidance online?",
		"What health platforms offer credible information?",
		"Which medical resources are most frequently recommended?",
	},
	"other": {
		"What are the best websites in this field?",
		"Which companies or brands do you recommend in this space?",
		"What online services should I consider for this need?",
		"Where can I find reliable information and services on this topic?",
		"Which providers are most frequently recommended by experts?",
	},
}

// PromptsForIndustry returns the 5-prompt set for an industry tag. Lookup is
// case-insensitive; unknown or empty industries fall back to the "other"
// bucket. Always returns exactly PromptCount prompts.
func PromptsForIndustry(industry string) []string {
	key := strings.ToLower(strings.TrimSpace(industry))
	prompts, ok := industryPrompts[key]
	if !ok {
		prompts = industryPrompts["other"]
	}
	out := make([]string, PromptCount)
	copy(out, prompts)
	return out
}

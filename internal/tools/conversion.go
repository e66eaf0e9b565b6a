package tools

import (
	"fmt"

	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/models"
)

// AdCopyInput is the request body of the ad-copy tool.
type AdCopyInput struct {
	Product      string `json:"product"`
	Platform     string `json:"platform"`
	Audience     string `json:"audience"`
	USP          string `json:"usp"`
	Tone         string `json:"tone"`
	VariantCount int    `json:"variantCount"`
	Industry     string `json:"industry"`
}

func (in *AdCopyInput) normalize() {
	in.Platform = orDefault(in.Platform, "facebook")
	if in.VariantCount <= 0 {
		in.VariantCount = 3
	}
	in.VariantCount = clamp(in.VariantCount, 1, 10)
	in.Tone = orDefault(in.Tone, "persuasive")
}

type AdVariant struct {
	Headline       string `json:"headline"`
	Description    string `json:"description"`
	CallToAction   string `json:"callToAction"`
	CharacterCount int    `json:"characterCount"`
}

// AdCopyOutput is the payload of the ad-copy tool.
type AdCopyOutput struct {
	Platform             string      `json:"platform"`
	Variants             []AdVariant `json:"variants"`
	TargetingSuggestions []string    `json:"targetingSuggestions"`
	ABTestPlan           []string    `json:"abTestPlan"`
}

func AdCopy() Tool {
	return newTool(
		trialTool("ad-copy", "Ad Copy", "advertising", "Platform-specific ad variants ready for A/B testing"),
		"You are a direct-response copywriter who writes ads that respect platform limits and convert.",
		buildAdCopy,
		fallbackAdCopy,
	)
}

func buildAdCopy(in *AdCopyInput) string {
	spec, _ := LookupPlatform(in.Platform)
	return fmt.Sprintf("Write %d %s ad variants. Keep each description under %d characters. "+
		"Include targeting suggestions and an A/B test plan.\n\n", in.VariantCount, spec.Label, spec.CaptionLimit) +
		contextBlock(
			"Product", in.Product,
			"Audience", in.Audience,
			"Unique selling point", in.USP,
			"Tone", in.Tone,
			"Industry", LookupIndustry(in.Industry).Label,
		)
}

func fallbackAdCopy(in *AdCopyInput) AdCopyOutput {
	spec, _ := LookupPlatform(in.Platform)
	profile := LookupIndustry(in.Industry)
	product := orDefault(in.Product, "our solution")
	usp := orDefault(in.USP, "results you can measure")
	audience := orDefault(in.Audience, profile.Audience)

	angles := []struct{ headline, description string }{
		{"Stop struggling with %s", "%s gives you %s. Join others who already switched."},
		{"The smarter way to beat %s", "Discover why %s is the choice for %s."},
		{"Still dealing with %s?", "Try %s today and see %s for yourself."},
		{"%s, made simple", "%s delivers %s without the hassle."},
	}

	variants := make([]AdVariant, 0, in.VariantCount)
	for i := 0; i < in.VariantCount; i++ {
		a := angles[i%len(angles)]
		pain := profile.PainPoints[i%len(profile.PainPoints)]
		var headline, desc string
		switch i % len(angles) {
		case 1:
			headline = fmt.Sprintf(a.headline, pain)
			desc = fmt.Sprintf(a.description, product, audience)
		case 3:
			headline = fmt.Sprintf(a.headline, titleCase(product))
			desc = fmt.Sprintf(a.description, product, usp)
		default:
			headline = fmt.Sprintf(a.headline, pain)
			desc = fmt.Sprintf(a.description, product, usp)
		}
		if spec.CaptionLimit > 0 && len(desc) > spec.CaptionLimit {
			desc = desc[:spec.CaptionLimit]
		}
		variants = append(variants, AdVariant{
			Headline:       headline,
			Description:    desc,
			CallToAction:   profile.CTA,
			CharacterCount: len(headline) + len(desc),
		})
	}

	return AdCopyOutput{
		Platform: spec.Label,
		Variants: variants,
		TargetingSuggestions: []string{
			"Interest targeting around " + profile.Label,
			"Lookalike audience built from existing customers",
			"Retarget site visitors from the last 30 days",
		},
		ABTestPlan: []string{
			"Test headlines first with identical creative",
			"Run each variant until it reaches 1,000 impressions",
			"Keep the winner and test a new call to action next",
		},
	}
}

// LandingPageInput is the request body of the landing-page tool.
type LandingPageInput struct {
	URL            string `json:"url"`
	Goal           string `json:"goal"`
	TargetAudience string `json:"targetAudience"`
	Industry       string `json:"industry"`
}

func (in *LandingPageInput) normalize() {
	in.Goal = orDefault(in.Goal, "lead generation")
}

type PageOverview struct {
	URL             string `json:"url"`
	ConversionScore int    `json:"conversionScore" description:"0-100"`
	Summary         string `json:"summary"`
}

type SectionAudit struct {
	Name     string   `json:"name"`
	Score    int      `json:"score"`
	Findings []string `json:"findings"`
}

// LandingPageOutput is the payload of the landing-page tool.
type LandingPageOutput struct {
	Overview        PageOverview     `json:"overview"`
	Sections        []SectionAudit   `json:"sections"`
	Recommendations []Recommendation `json:"recommendations"`
	ABTestIdeas     []string         `json:"abTestIdeas"`
}

func LandingPage() Tool {
	return newTool(
		paidTool("landing-page", "Landing Page Analysis", "conversion", "Conversion audit of a landing page", models.PlanPro),
		"You are a conversion rate optimisation expert who audits landing pages section by section.",
		buildLandingPage,
		fallbackLandingPage,
	)
}

func buildLandingPage(in *LandingPageInput) string {
	return "Audit the landing page below for conversion. Score each section, give findings, " +
		"prioritised recommendations and A/B test ideas.\n\n" +
		contextBlock(
			"Landing page", in.URL,
			"Conversion goal", in.Goal,
			"Target audience", in.TargetAudience,
			"Industry", LookupIndustry(in.Industry).Label,
		)
}

func fallbackLandingPage(in *LandingPageInput) LandingPageOutput {
	page := orDefault(in.URL, "your landing page")
	sections := []SectionAudit{
		{Name: "Hero", Score: variation(50, 85, page, "hero"), Findings: []string{"Headline should state the outcome, not the feature", "Primary call to action needs more contrast"}},
		{Name: "Social proof", Score: variation(40, 80, page, "proof"), Findings: []string{"Add logos or review counts above the fold", "Use named testimonials with photos"}},
		{Name: "Form", Score: variation(45, 85, page, "form"), Findings: []string{"Reduce fields to the minimum needed for " + in.Goal, "Explain what happens after submitting"}},
		{Name: "Page speed", Score: variation(50, 90, page, "speed"), Findings: []string{"Compress images", "Remove unused third-party scripts"}},
	}
	total := 0
	for _, s := range sections {
		total += s.Score
	}
	score := total / len(sections)

	return LandingPageOutput{
		Overview: PageOverview{
			URL:             page,
			ConversionScore: score,
			Summary:         fmt.Sprintf("%s scores %d/100 for %s. The biggest gains are in the hero and social proof.", page, score, in.Goal),
		},
		Sections: sections,
		Recommendations: []Recommendation{
			{Priority: "high", Action: "Rewrite the headline around the visitor's desired outcome", Impact: "Higher engagement above the fold"},
			{Priority: "high", Action: "Cut form fields", Impact: "Fewer abandoned submissions"},
			{Priority: "medium", Action: "Add testimonials near the call to action", Impact: "Reduced purchase anxiety"},
		},
		ABTestIdeas: []string{
			"Outcome headline versus feature headline",
			"Single-step versus two-step form",
			"Video hero versus static image",
		},
	}
}

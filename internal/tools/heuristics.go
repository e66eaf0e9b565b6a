package tools

import (
	"hash/fnv"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// IndustryProfile carries the heuristics the fallback synthesizers use when the
// model is unavailable.
type IndustryProfile struct {
	Key          string
	Label        string
	Audience     string
	PainPoints   []string
	KeywordSeeds []string
	ContentMix   ContentMix
	PostsPerWeek int
	CTA          string
	Competitors  []string
}

// ContentMix is a percentage split across content pillars; it always sums to 100.
type ContentMix struct {
	Educational  int `json:"educational"`
	Promotional  int `json:"promotional"`
	Entertaining int `json:"entertaining"`
	Community    int `json:"community"`
}

var industryProfiles = map[string]IndustryProfile{
	"general": {
		Key:          "general",
		Label:        "General Business",
		Audience:     "small and mid-sized business owners",
		PainPoints:   []string{"limited time for marketing", "inconsistent lead flow", "unclear return on ad spend"},
		KeywordSeeds: []string{"best", "near me", "services", "pricing", "reviews"},
		ContentMix:   ContentMix{Educational: 40, Promotional: 20, Entertaining: 20, Community: 20},
		PostsPerWeek: 4,
		CTA:          "Get in touch today",
		Competitors:  []string{"Established local leader", "Fast-growing online challenger", "Low-cost alternative"},
	},
	"ecommerce": {
		Key:          "ecommerce",
		Label:        "E-commerce",
		Audience:     "online shoppers comparing products and prices",
		PainPoints:   []string{"cart abandonment", "rising acquisition costs", "low repeat purchase rate"},
		KeywordSeeds: []string{"buy", "online", "free shipping", "discount", "best price"},
		ContentMix:   ContentMix{Educational: 25, Promotional: 40, Entertaining: 20, Community: 15},
		PostsPerWeek: 7,
		CTA:          "Shop the collection",
		Competitors:  []string{"Marketplace sellers", "Direct-to-consumer brands", "Big-box retailers"},
	},
	"saas": {
		Key:          "saas",
		Label:        "SaaS",
		Audience:     "operations and growth teams evaluating software",
		PainPoints:   []string{"long sales cycles", "trial users who never activate", "churn after the first renewal"},
		KeywordSeeds: []string{"software", "tool", "platform", "integration", "alternative"},
		ContentMix:   ContentMix{Educational: 50, Promotional: 20, Entertaining: 10, Community: 20},
		PostsPerWeek: 5,
		CTA:          "Start your free trial",
		Competitors:  []string{"Category incumbent", "All-in-one suite", "Open-source option"},
	},
	"healthcare": {
		Key:          "healthcare",
		Label:        "Healthcare",
		Audience:     "patients researching providers and treatment options",
		PainPoints:   []string{"low appointment show rates", "trust and credibility concerns", "strict advertising rules"},
		KeywordSeeds: []string{"clinic", "doctor", "appointment", "treatment", "near me"},
		ContentMix:   ContentMix{Educational: 55, Promotional: 10, Entertaining: 10, Community: 25},
		PostsPerWeek: 3,
		CTA:          "Book an appointment",
		Competitors:  []string{"Hospital network", "Telehealth provider", "Independent practice"},
	},
	"real_estate": {
		Key:          "real_estate",
		Label:        "Real Estate",
		Audience:     "home buyers and sellers in the local market",
		PainPoints:   []string{"seasonal lead volume", "listing visibility", "standing out among agents"},
		KeywordSeeds: []string{"homes for sale", "realtor", "property", "listings", "market report"},
		ContentMix:   ContentMix{Educational: 35, Promotional: 30, Entertaining: 15, Community: 20},
		PostsPerWeek: 5,
		CTA:          "Schedule a viewing",
		Competitors:  []string{"National brokerage", "Online listing portal", "Boutique agency"},
	},
	"restaurant": {
		Key:          "restaurant",
		Label:        "Restaurant & Food",
		Audience:     "local diners looking for their next meal out",
		PainPoints:   []string{"slow weekday traffic", "delivery platform fees", "review management"},
		KeywordSeeds: []string{"restaurant", "menu", "delivery", "reservations", "best food"},
		ContentMix:   ContentMix{Educational: 15, Promotional: 35, Entertaining: 30, Community: 20},
		PostsPerWeek: 6,
		CTA:          "Reserve your table",
		Competitors:  []string{"Chain restaurant", "Delivery-only kitchen", "Neighbourhood favourite"},
	},
	"education": {
		Key:          "education",
		Label:        "Education",
		Audience:     "students and parents comparing learning options",
		PainPoints:   []string{"enrollment seasonality", "proving outcomes", "course completion"},
		KeywordSeeds: []string{"course", "classes", "online learning", "certification", "tutoring"},
		ContentMix:   ContentMix{Educational: 50, Promotional: 15, Entertaining: 15, Community: 20},
		PostsPerWeek: 4,
		CTA:          "Enroll now",
		Competitors:  []string{"University programme", "Online course marketplace", "Local tutoring centre"},
	},
	"fitness": {
		Key:          "fitness",
		Label:        "Fitness & Wellness",
		Audience:     "health-conscious adults building a routine",
		PainPoints:   []string{"member retention after January", "class fill rates", "differentiating from budget gyms"},
		KeywordSeeds: []string{"gym", "personal trainer", "classes", "workout", "membership"},
		ContentMix:   ContentMix{Educational: 35, Promotional: 20, Entertaining: 25, Community: 20},
		PostsPerWeek: 6,
		CTA:          "Claim your free class",
		Competitors:  []string{"Budget gym chain", "Boutique studio", "Fitness app"},
	},
	"finance": {
		Key:          "finance",
		Label:        "Finance",
		Audience:     "individuals and businesses planning their finances",
		PainPoints:   []string{"compliance review of every message", "building trust", "complex products"},
		KeywordSeeds: []string{"financial advisor", "accounting", "tax", "investment", "planning"},
		ContentMix:   ContentMix{Educational: 60, Promotional: 15, Entertaining: 5, Community: 20},
		PostsPerWeek: 3,
		CTA:          "Book a consultation",
		Competitors:  []string{"Large advisory firm", "Robo-advisor", "Independent accountant"},
	},
	"professional_services": {
		Key:          "professional_services",
		Label:        "Professional Services",
		Audience:     "decision makers looking for a trusted partner",
		PainPoints:   []string{"referral dependency", "long proposal cycles", "demonstrating expertise"},
		KeywordSeeds: []string{"consultant", "agency", "firm", "experts", "case studies"},
		ContentMix:   ContentMix{Educational: 50, Promotional: 20, Entertaining: 10, Community: 20},
		PostsPerWeek: 3,
		CTA:          "Request a proposal",
		Competitors:  []string{"Big-four style firm", "Freelance specialists", "Niche boutique"},
	},
}

// industryAliases maps normalized free-text industries onto a profile key.
var industryAliases = map[string]string{
	"":                      "general",
	"general":               "general",
	"other":                 "general",
	"business":              "general",
	"ecommerce":             "ecommerce",
	"e_commerce":            "ecommerce",
	"online_store":          "ecommerce",
	"retail":                "ecommerce",
	"shop":                  "ecommerce",
	"saas":                  "saas",
	"software":              "saas",
	"technology":            "saas",
	"tech":                  "saas",
	"startup":               "saas",
	"healthcare":            "healthcare",
	"health":                "healthcare",
	"medical":               "healthcare",
	"dental":                "healthcare",
	"clinic":                "healthcare",
	"real_estate":           "real_estate",
	"realestate":            "real_estate",
	"property":              "real_estate",
	"restaurant":            "restaurant",
	"food":                  "restaurant",
	"food_and_beverage":     "restaurant",
	"hospitality":           "restaurant",
	"cafe":                  "restaurant",
	"education":             "education",
	"edtech":                "education",
	"coaching":              "education",
	"fitness":               "fitness",
	"gym":                   "fitness",
	"wellness":              "fitness",
	"finance":               "finance",
	"fintech":               "finance",
	"accounting":            "finance",
	"insurance":             "finance",
	"professional_services": "professional_services",
	"consulting":            "professional_services",
	"legal":                 "professional_services",
	"agency":                "professional_services",
	"marketing":             "professional_services",
}

// normalizeKey lowercases and joins words with underscores.
func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", "_", " ", "_", "&", "and", "/", "_").Replace(s)
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	return strings.Trim(s, "_")
}

// LookupIndustry resolves a free-text industry to its profile. Unknown values
// resolve to the general profile.
func LookupIndustry(industry string) IndustryProfile {
	if key, ok := industryAliases[normalizeKey(industry)]; ok {
		return industryProfiles[key]
	}
	return industryProfiles["general"]
}

// PlatformSpec captures the publishing constraints of one social platform.
type PlatformSpec struct {
	Key          string
	Label        string
	CaptionLimit int
	Hashtags     int
	BestTime     string
	Format       string
	PostsPerWeek int
}

var platformSpecs = map[string]PlatformSpec{
	"instagram":      {Key: "instagram", Label: "Instagram", CaptionLimit: 2200, Hashtags: 10, BestTime: "11:00", Format: "carousel", PostsPerWeek: 5},
	"facebook":       {Key: "facebook", Label: "Facebook", CaptionLimit: 500, Hashtags: 3, BestTime: "13:00", Format: "image post", PostsPerWeek: 4},
	"linkedin":       {Key: "linkedin", Label: "LinkedIn", CaptionLimit: 3000, Hashtags: 5, BestTime: "08:30", Format: "text post", PostsPerWeek: 3},
	"twitter":        {Key: "twitter", Label: "X (Twitter)", CaptionLimit: 280, Hashtags: 2, BestTime: "12:00", Format: "thread", PostsPerWeek: 7},
	"tiktok":         {Key: "tiktok", Label: "TikTok", CaptionLimit: 2200, Hashtags: 5, BestTime: "19:00", Format: "short video", PostsPerWeek: 5},
	"youtube":        {Key: "youtube", Label: "YouTube", CaptionLimit: 5000, Hashtags: 3, BestTime: "17:00", Format: "long-form video", PostsPerWeek: 1},
	"youtube_shorts": {Key: "youtube_shorts", Label: "YouTube Shorts", CaptionLimit: 100, Hashtags: 3, BestTime: "18:00", Format: "short video", PostsPerWeek: 4},
	"pinterest":      {Key: "pinterest", Label: "Pinterest", CaptionLimit: 500, Hashtags: 5, BestTime: "20:00", Format: "pin", PostsPerWeek: 7},
	"google":         {Key: "google", Label: "Google Ads", CaptionLimit: 90, Hashtags: 0, BestTime: "09:00", Format: "search ad", PostsPerWeek: 0},
}

var platformAliases = map[string]string{
	"instagram":       "instagram",
	"ig":              "instagram",
	"insta":           "instagram",
	"reels":           "instagram",
	"instagram_reels": "instagram",
	"facebook":        "facebook",
	"fb":              "facebook",
	"meta":            "facebook",
	"linkedin":        "linkedin",
	"twitter":         "twitter",
	"x":               "twitter",
	"tiktok":          "tiktok",
	"tik_tok":         "tiktok",
	"youtube":         "youtube",
	"yt":              "youtube",
	"youtube_shorts":  "youtube_shorts",
	"shorts":          "youtube_shorts",
	"pinterest":       "pinterest",
	"google":          "google",
	"google_ads":      "google",
	"adwords":         "google",
	"search":          "google",
}

// LookupPlatform resolves a platform name. ok is false for unknown platforms,
// in which case a generic spec labelled with the input is returned.
func LookupPlatform(platform string) (PlatformSpec, bool) {
	if key, found := platformAliases[normalizeKey(platform)]; found {
		return platformSpecs[key], true
	}
	label := strings.TrimSpace(platform)
	if label == "" {
		label = "Instagram"
	}
	return PlatformSpec{Key: normalizeKey(label), Label: label, CaptionLimit: 500, Hashtags: 3, BestTime: "12:00", Format: "post", PostsPerWeek: 3}, false
}

// variation returns a stable value in [lo, hi] derived from the inputs, so
// fallbacks differ across businesses without any randomness.
func variation(lo, hi int, parts ...string) int {
	if hi <= lo {
		return lo
	}
	h := fnv.New32a()
	for _, p := range parts {
		_, _ = h.Write([]byte(strings.ToLower(p)))
		_, _ = h.Write([]byte{0})
	}
	return lo + int(h.Sum32()%uint32(hi-lo+1))
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return strings.TrimSpace(s)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// cleanList trims entries and drops empty ones.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func joinList(in []string, empty string) string {
	if len(in) == 0 {
		return empty
	}
	return strings.Join(in, ", ")
}

func grade(score int) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

func hashtag(s string) string {
	var b strings.Builder
	b.WriteByte('#')
	for _, w := range strings.Fields(s) {
		w = strings.Map(func(r rune) rune {
			if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, w)
		if w == "" {
			continue
		}
		b.WriteString(strings.ToUpper(w[:1]) + strings.ToLower(w[1:]))
	}
	if b.Len() == 1 {
		return "#Marketing"
	}
	return b.String()
}

// contextBlock renders labelled request parameters for a prompt. Empty values
// are rendered as "not specified".
func contextBlock(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString("- ")
		b.WriteString(pairs[i])
		b.WriteString(": ")
		b.WriteString(orDefault(pairs[i+1], "not specified"))
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// truncateRunes cuts s to at most n characters without splitting a rune.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

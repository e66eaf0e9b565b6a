package tools

import (
	"fmt"
	"strings"

	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/models"
)

// SEOAuditInput is the request body of the seo-audit tool.
type SEOAuditInput struct {
	URL          string   `json:"url"`
	BusinessName string   `json:"businessName"`
	Industry     string   `json:"industry"`
	Keywords     []string `json:"keywords"`
	Competitors  []string `json:"competitors"`
}

func (in *SEOAuditInput) normalize() {
	in.URL = strings.TrimSpace(in.URL)
	in.Keywords = cleanList(in.Keywords)
	in.Competitors = cleanList(in.Competitors)
}

type SEOOverview struct {
	URL          string `json:"url"`
	OverallScore int    `json:"overallScore" description:"0-100"`
	Grade        string `json:"grade"`
	Summary      string `json:"summary"`
}

type TechnicalSEO struct {
	Score  int     `json:"score"`
	Issues []Issue `json:"issues"`
}

type OnPageSEO struct {
	Score            int     `json:"score"`
	TitleTag         string  `json:"titleTag"`
	MetaDescription  string  `json:"metaDescription"`
	HeadingStructure string  `json:"headingStructure"`
	Issues           []Issue `json:"issues"`
}

type KeywordInsight struct {
	Keyword     string `json:"keyword"`
	Difficulty  string `json:"difficulty" description:"low, medium or high"`
	Opportunity string `json:"opportunity"`
}

type KeywordAnalysis struct {
	Primary     []KeywordInsight `json:"primary"`
	Suggestions []string         `json:"suggestions"`
}

type ContentQuality struct {
	Score           int      `json:"score"`
	Recommendations []string `json:"recommendations"`
}

// SEOAuditOutput is the payload of the seo-audit tool.
type SEOAuditOutput struct {
	Overview        SEOOverview      `json:"overview"`
	TechnicalSEO    TechnicalSEO     `json:"technicalSeo"`
	OnPage          OnPageSEO        `json:"onPage"`
	Keywords        KeywordAnalysis  `json:"keywords"`
	ContentQuality  ContentQuality   `json:"contentQuality"`
	Recommendations []Recommendation `json:"recommendations"`
}

func SEOAudit() Tool {
	return newTool(
		trialTool("seo-audit", "SEO Audit", "seo", "Technical, on-page and keyword audit of a website"),
		"You are a senior technical SEO consultant who writes precise, prioritised audits.",
		buildSEOAudit,
		fallbackSEOAudit,
	)
}

func buildSEOAudit(in *SEOAuditInput) string {
	profile := LookupIndustry(in.Industry)
	return "Perform a complete SEO audit for the website below. Score each area from 0 to 100, " +
		"list concrete issues with a fix for each, and finish with prioritised recommendations.\n\n" +
		contextBlock(
			"Website", in.URL,
			"Business", in.BusinessName,
			"Industry", profile.Label,
			"Target keywords", joinList(in.Keywords, ""),
			"Competitors", joinList(in.Competitors, ""),
		)
}

func fallbackSEOAudit(in *SEOAuditInput) SEOAuditOutput {
	profile := LookupIndustry(in.Industry)
	site := orDefault(in.URL, "your website")
	name := orDefault(in.BusinessName, site)

	technical := variation(55, 80, site, "technical")
	onPage := variation(50, 78, site, "onpage")
	content := variation(52, 82, site, "content")
	overall := (technical + onPage + content) / 3

	keywords := in.Keywords
	if len(keywords) == 0 {
		keywords = []string{profile.KeywordSeeds[0] + " " + strings.ToLower(profile.Label), strings.ToLower(profile.Label) + " " + profile.KeywordSeeds[1]}
	}
	primary := make([]KeywordInsight, 0, len(keywords))
	difficulties := []string{"low", "medium", "high"}
	for _, kw := range keywords {
		primary = append(primary, KeywordInsight{
			Keyword:     kw,
			Difficulty:  difficulties[variation(0, 2, kw)],
			Opportunity: fmt.Sprintf("Create a dedicated page targeting %q with supporting internal links.", kw),
		})
	}
	suggestions := make([]string, 0, len(profile.KeywordSeeds))
	for _, seed := range profile.KeywordSeeds {
		suggestions = append(suggestions, strings.TrimSpace(keywords[0]+" "+seed))
	}

	return SEOAuditOutput{
		Overview: SEOOverview{
			URL:          site,
			OverallScore: overall,
			Grade:        grade(overall),
			Summary: fmt.Sprintf("%s has a solid base but leaves ranking potential on the table. "+
				"Fixing the technical issues and tightening on-page targeting should come first.", name),
		},
		TechnicalSEO: TechnicalSEO{
			Score: technical,
			Issues: []Issue{
				{Title: "Slow largest contentful paint on mobile", Severity: "critical", Recommendation: "Compress hero images, serve WebP and defer non-critical scripts."},
				{Title: "Missing XML sitemap reference in robots.txt", Severity: "warning", Recommendation: "Add a Sitemap directive pointing to /sitemap.xml."},
				{Title: "No structured data detected", Severity: "notice", Recommendation: "Add Organization and " + profile.Label + " relevant schema markup."},
			},
		},
		OnPage: OnPageSEO{
			Score:            onPage,
			TitleTag:         fmt.Sprintf("%s | %s", titleCase(keywords[0]), name),
			MetaDescription:  fmt.Sprintf("%s helps %s. %s.", name, profile.Audience, profile.CTA),
			HeadingStructure: "Use a single H1 containing the primary keyword, then H2s for each service or topic cluster.",
			Issues: []Issue{
				{Title: "Duplicate title tags across service pages", Severity: "warning", Recommendation: "Write a unique title for every indexable page."},
				{Title: "Images without alt text", Severity: "notice", Recommendation: "Describe each image and include a keyword where natural."},
			},
		},
		Keywords: KeywordAnalysis{
			Primary:     primary,
			Suggestions: suggestions,
		},
		ContentQuality: ContentQuality{
			Score: content,
			Recommendations: []string{
				"Publish in-depth guides that answer the questions " + profile.Audience + " ask most.",
				"Refresh pages older than twelve months with current data.",
				"Add FAQ sections to capture long-tail queries.",
			},
		},
		Recommendations: []Recommendation{
			{Priority: "high", Action: "Fix mobile page speed", Impact: "Improves rankings and reduces bounce rate"},
			{Priority: "high", Action: "Rewrite titles and meta descriptions around target keywords", Impact: "Higher click-through from search results"},
			{Priority: "medium", Action: "Build a content cluster for " + keywords[0], Impact: "Topical authority and more long-tail traffic"},
			{Priority: "low", Action: "Add structured data", Impact: "Eligibility for rich results"},
		},
	}
}

// LocalSEOInput is the request body of the local-seo tool.
type LocalSEOInput struct {
	BusinessName string   `json:"businessName"`
	Location     string   `json:"location"`
	Industry     string   `json:"industry"`
	Services     []string `json:"services"`
	Website      string   `json:"website"`
}

func (in *LocalSEOInput) normalize() {
	in.Services = cleanList(in.Services)
}

type LocalOverview struct {
	BusinessName string `json:"businessName"`
	Location     string `json:"location"`
	LocalScore   int    `json:"localScore" description:"0-100"`
	Summary      string `json:"summary"`
}

type BusinessProfilePlan struct {
	Optimizations []string `json:"optimizations"`
	Categories    []string `json:"categories"`
	PostIdeas     []string `json:"postIdeas"`
}

type Citation struct {
	Directory string `json:"directory"`
	Priority  string `json:"priority"`
	Action    string `json:"action"`
}

// LocalSEOOutput is the payload of the local-seo tool.
type LocalSEOOutput struct {
	Overview              LocalOverview       `json:"overview"`
	GoogleBusinessProfile BusinessProfilePlan `json:"googleBusinessProfile"`
	Citations             []Citation          `json:"citations"`
	LocalKeywords         []string            `json:"localKeywords"`
	ReviewStrategy        []string            `json:"reviewStrategy"`
	Recommendations       []Recommendation    `json:"recommendations"`
}

func LocalSEO() Tool {
	return newTool(
		paidTool("local-seo", "Local SEO", "seo", "Local search visibility plan for a physical business", models.PlanAgency),
		"You are a local search specialist who helps neighbourhood businesses win the map pack.",
		buildLocalSEO,
		fallbackLocalSEO,
	)
}

func buildLocalSEO(in *LocalSEOInput) string {
	profile := LookupIndustry(in.Industry)
	return "Create a local SEO plan covering the Google Business Profile, citations, local keywords and reviews.\n\n" +
		contextBlock(
			"Business", in.BusinessName,
			"Location", in.Location,
			"Industry", profile.Label,
			"Services", joinList(in.Services, ""),
			"Website", in.Website,
		)
}

func fallbackLocalSEO(in *LocalSEOInput) LocalSEOOutput {
	profile := LookupIndustry(in.Industry)
	name := orDefault(in.BusinessName, "Your business")
	location := orDefault(in.Location, "your city")
	services := in.Services
	if len(services) == 0 {
		services = []string{strings.ToLower(profile.Label)}
	}
	score := variation(40, 72, name, location)

	keywords := make([]string, 0, len(services)*2)
	for _, s := range services {
		keywords = append(keywords, s+" in "+location, s+" near me")
	}
	posts := []string{
		"Behind the scenes at " + name,
		"Customer spotlight from " + location,
		"Seasonal offer on " + services[0],
	}

	return LocalSEOOutput{
		Overview: LocalOverview{
			BusinessName: name,
			Location:     location,
			LocalScore:   score,
			Summary:      fmt.Sprintf("%s can grow map-pack visibility in %s by completing its profile and building consistent citations.", name, location),
		},
		GoogleBusinessProfile: BusinessProfilePlan{
			Optimizations: []string{
				"Complete every profile field, including services and attributes.",
				"Upload at least ten recent photos of the location and team.",
				"Keep opening hours, including holiday hours, accurate.",
				"Answer common questions in the Q&A section.",
			},
			Categories: []string{profile.Label, services[0]},
			PostIdeas:  posts,
		},
		Citations: []Citation{
			{Directory: "Google Business Profile", Priority: "high", Action: "Claim and verify the listing"},
			{Directory: "Bing Places", Priority: "high", Action: "Import the Google profile"},
			{Directory: "Apple Business Connect", Priority: "medium", Action: "Create a place card"},
			{Directory: "Yelp", Priority: "medium", Action: "Match name, address and phone exactly"},
			{Directory: "Facebook", Priority: "low", Action: "Add the address and hours to the page"},
		},
		LocalKeywords: keywords,
		ReviewStrategy: []string{
			"Ask for a review at the moment of highest satisfaction.",
			"Send a short link by text message after each visit.",
			"Reply to every review within 48 hours.",
		},
		Recommendations: []Recommendation{
			{Priority: "high", Action: "Fix name, address and phone inconsistencies", Impact: "Stronger local ranking signals"},
			{Priority: "high", Action: "Create a landing page for each service in " + location, Impact: "Relevance for local queries"},
			{Priority: "medium", Action: "Post weekly updates to the business profile", Impact: "Higher engagement on the listing"},
		},
	}
}

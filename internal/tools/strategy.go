package tools

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/models"
)

// ClientReportingInput is the request body of the client-reporting tool.
type ClientReportingInput struct {
	ClientName string             `json:"clientName"`
	Period     string             `json:"period"`
	Channels   []string           `json:"channels"`
	Goals      string             `json:"goals"`
	Metrics    map[string]float64 `json:"metrics"`
	Industry   string             `json:"industry"`
}

func (in *ClientReportingInput) normalize() {
	in.Channels = cleanList(in.Channels)
	if len(in.Channels) == 0 {
		in.Channels = []string{"Organic search", "Paid social", "Email"}
	}
	in.Period = orDefault(in.Period, "last 30 days")
}

type KPI struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Change string `json:"change" description:"change versus the previous period"`
	Status string `json:"status" description:"on-track, at-risk or off-track"`
}

type ChannelReport struct {
	Channel string   `json:"channel"`
	Summary string   `json:"summary"`
	Wins    []string `json:"wins"`
}

// ClientReportingOutput is the payload of the client-reporting tool.
type ClientReportingOutput struct {
	ExecutiveSummary   string          `json:"executiveSummary"`
	KPIs               []KPI           `json:"kpis"`
	ChannelPerformance []ChannelReport `json:"channelPerformance"`
	Insights           []string        `json:"insights"`
	NextSteps          []string        `json:"nextSteps"`
}

func ClientReporting() Tool {
	return newTool(
		paidTool("client-reporting", "Client Reporting", "analytics", "Client-ready performance report with KPIs and next steps", models.PlanPro),
		"You are an agency account director who writes clear, honest performance reports for clients.",
		buildClientReporting,
		fallbackClientReporting,
	)
}

func metricLines(metrics map[string]float64) string {
	if len(metrics) == 0 {
		return ""
	}
	keys := make([]string, 0, len(metrics))
	for k := range metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+strconv.FormatFloat(metrics[k], 'f', -1, 64))
	}
	return strings.Join(parts, ", ")
}

func buildClientReporting(in *ClientReportingInput) string {
	return "Write a client performance report with an executive summary, KPIs with status, " +
		"per-channel performance, insights and next steps.\n\n" +
		contextBlock(
			"Client", in.ClientName,
			"Reporting period", in.Period,
			"Channels", joinList(in.Channels, ""),
			"Goals", in.Goals,
			"Reported metrics", metricLines(in.Metrics),
			"Industry", LookupIndustry(in.Industry).Label,
		)
}

func fallbackClientReporting(in *ClientReportingInput) ClientReportingOutput {
	client := orDefault(in.ClientName, "The client")

	var kpis []KPI
	if len(in.Metrics) > 0 {
		keys := make([]string, 0, len(in.Metrics))
		for k := range in.Metrics {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			kpis = append(kpis, KPI{
				Name:   titleCase(strings.ReplaceAll(k, "_", " ")),
				Value:  strconv.FormatFloat(in.Metrics[k], 'f', -1, 64),
				Change: "n/a",
				Status: "on-track",
			})
		}
	} else {
		kpis = []KPI{
			{Name: "Sessions", Value: "Pending data", Change: "n/a", Status: "on-track"},
			{Name: "Leads", Value: "Pending data", Change: "n/a", Status: "on-track"},
			{Name: "Cost per lead", Value: "Pending data", Change: "n/a", Status: "at-risk"},
		}
	}

	channels := make([]ChannelReport, 0, len(in.Channels))
	for _, ch := range in.Channels {
		channels = append(channels, ChannelReport{
			Channel: ch,
			Summary: fmt.Sprintf("%s activity continued as planned during the %s.", ch, in.Period),
			Wins:    []string{"Consistent publishing cadence maintained", "Tracking verified end to end"},
		})
	}

	return ClientReportingOutput{
		ExecutiveSummary: fmt.Sprintf("%s performance for the %s is summarised below across %d channels. "+
			"Figures should be confirmed against the analytics platform before sharing.", client, in.Period, len(in.Channels)),
		KPIs:               kpis,
		ChannelPerformance: channels,
		Insights: []string{
			"The strongest channel should receive a larger share of next period's budget.",
			"Conversion tracking gaps limit attribution accuracy.",
		},
		NextSteps: []string{
			"Agree KPI targets for the next period",
			"Launch one controlled test per channel",
			"Schedule a mid-period check-in",
		},
	}
}

// CompetitorAnalysisInput is the request body of the competitor-analysis tool.
type CompetitorAnalysisInput struct {
	BusinessName string   `json:"businessName"`
	Industry     string   `json:"industry"`
	Website      string   `json:"website"`
	Competitors  []string `json:"competitors"`
	Focus        string   `json:"focus"`
}

func (in *CompetitorAnalysisInput) normalize() {
	in.Competitors = cleanList(in.Competitors)
	in.Focus = orDefault(in.Focus, "overall marketing")
}

type CompetitorProfile struct {
	Name        string   `json:"name"`
	Positioning string   `json:"positioning"`
	Strengths   []string `json:"strengths"`
	Weaknesses  []string `json:"weaknesses"`
}

// CompetitorAnalysisOutput is the payload of the competitor-analysis tool.
type CompetitorAnalysisOutput struct {
	Summary         string              `json:"summary"`
	Competitors     []CompetitorProfile `json:"competitors"`
	Opportunities   []string            `json:"opportunities"`
	Threats         []string            `json:"threats"`
	Recommendations []Recommendation    `json:"recommendations"`
}

func CompetitorAnalysis() Tool {
	return newTool(
		paidTool("competitor-analysis", "Competitor Analysis", "research", "Competitive landscape with strengths, gaps and opportunities", models.PlanPro),
		"You are a market research analyst who produces sharp, evidence-minded competitor breakdowns.",
		buildCompetitorAnalysis,
		fallbackCompetitorAnalysis,
	)
}

func buildCompetitorAnalysis(in *CompetitorAnalysisInput) string {
	return "Analyse the competitors below. For each, describe positioning, strengths and weaknesses, " +
		"then list opportunities, threats and prioritised recommendations.\n\n" +
		contextBlock(
			"Business", in.BusinessName,
			"Website", in.Website,
			"Industry", LookupIndustry(in.Industry).Label,
			"Competitors", joinList(in.Competitors, ""),
			"Focus", in.Focus,
		)
}

func fallbackCompetitorAnalysis(in *CompetitorAnalysisInput) CompetitorAnalysisOutput {
	profile := LookupIndustry(in.Industry)
	name := orDefault(in.BusinessName, "Your business")
	competitors := in.Competitors
	if len(competitors) == 0 {
		competitors = profile.Competitors
	}

	positioning := []string{"Premium, brand-led", "Value and convenience", "Specialist niche expert", "Broad all-rounder"}
	strengths := [][]string{
		{"Strong brand recognition", "Large content library"},
		{"Aggressive pricing", "Fast onboarding"},
		{"Deep expertise", "Loyal community"},
		{"Wide product range", "Big advertising budget"},
	}
	weaknesses := [][]string{
		{"Slow to respond to trends", "Generic messaging"},
		{"Thin customer support", "Low perceived quality"},
		{"Limited reach", "Inconsistent posting"},
		{"Unfocused positioning", "Weak reviews"},
	}

	profiles := make([]CompetitorProfile, 0, len(competitors))
	for _, c := range competitors {
		i := variation(0, len(positioning)-1, c)
		profiles = append(profiles, CompetitorProfile{
			Name:        c,
			Positioning: positioning[i],
			Strengths:   strengths[i],
			Weaknesses:  weaknesses[i],
		})
	}

	return CompetitorAnalysisOutput{
		Summary: fmt.Sprintf("%s competes with %d notable players in %s. The clearest gap is %s.",
			name, len(profiles), profile.Label, profile.PainPoints[0]),
		Competitors: profiles,
		Opportunities: []string{
			"Own the conversation around " + profile.PainPoints[0],
			"Publish comparison pages for high-intent searches",
			"Showcase customer proof that competitors lack",
		},
		Threats: []string{
			"Price pressure from low-cost entrants",
			"Rising advertising costs in " + profile.Label,
		},
		Recommendations: []Recommendation{
			{Priority: "high", Action: "Sharpen positioning against the closest competitor", Impact: "Clearer differentiation in every channel"},
			{Priority: "medium", Action: "Monitor competitor ads and content monthly", Impact: "Faster response to market moves"},
			{Priority: "low", Action: "Build a review generation programme", Impact: "Social proof advantage"},
		},
	}
}

// ProductLaunchInput is the request body of the product-launch tool.
type ProductLaunchInput struct {
	ProductName string   `json:"productName"`
	Description string   `json:"description"`
	LaunchDate  string   `json:"launchDate"`
	Audience    string   `json:"audience"`
	Budget      string   `json:"budget"`
	Channels    []string `json:"channels"`
	Industry    string   `json:"industry"`
}

func (in *ProductLaunchInput) normalize() {
	in.Channels = cleanList(in.Channels)
	if len(in.Channels) == 0 {
		in.Channels = []string{"Email", "Social media", "Content"}
	}
}

type LaunchOverview struct {
	ProductName string `json:"productName"`
	LaunchDate  string `json:"launchDate"`
	Positioning string `json:"positioning"`
}

type LaunchPhase struct {
	Name       string   `json:"name"`
	Timeline   string   `json:"timeline"`
	Activities []string `json:"activities"`
}

type LaunchMessaging struct {
	Tagline     string   `json:"tagline"`
	KeyMessages []string `json:"keyMessages"`
}

type ChannelPlan struct {
	Channel string   `json:"channel"`
	Tactics []string `json:"tactics"`
}

// ProductLaunchOutput is the payload of the product-launch tool.
type ProductLaunchOutput struct {
	Overview  LaunchOverview  `json:"overview"`
	Phases    []LaunchPhase   `json:"phases"`
	Messaging LaunchMessaging `json:"messaging"`
	Channels  []ChannelPlan   `json:"channels"`
	KPIs      []string        `json:"kpis"`
}

func ProductLaunch() Tool {
	return newTool(
		paidTool("product-launch", "Product Launch", "strategy", "Phased go-to-market plan for a new product", models.PlanPro),
		"You are a go-to-market strategist who plans launches that build momentum before release day.",
		buildProductLaunch,
		fallbackProductLaunch,
	)
}

func buildProductLaunch(in *ProductLaunchInput) string {
	return "Create a phased product launch plan with positioning, messaging, channel tactics and KPIs.\n\n" +
		contextBlock(
			"Product", in.ProductName,
			"Description", in.Description,
			"Launch date", in.LaunchDate,
			"Audience", in.Audience,
			"Budget", in.Budget,
			"Channels", joinList(in.Channels, ""),
			"Industry", LookupIndustry(in.Industry).Label,
		)
}

func fallbackProductLaunch(in *ProductLaunchInput) ProductLaunchOutput {
	profile := LookupIndustry(in.Industry)
	product := orDefault(in.ProductName, "The new product")
	audience := orDefault(in.Audience, profile.Audience)

	plans := make([]ChannelPlan, 0, len(in.Channels))
	for _, ch := range in.Channels {
		plans = append(plans, ChannelPlan{
			Channel: ch,
			Tactics: []string{"Teaser content four weeks out", "Launch day announcement", "Post-launch customer stories"},
		})
	}

	return ProductLaunchOutput{
		Overview: LaunchOverview{
			ProductName: product,
			LaunchDate:  orDefault(in.LaunchDate, "to be confirmed"),
			Positioning: fmt.Sprintf("%s is built for %s who are tired of %s.", product, audience, profile.PainPoints[0]),
		},
		Phases: []LaunchPhase{
			{Name: "Pre-launch", Timeline: "Weeks -6 to -1", Activities: []string{"Build a waitlist", "Brief partners and early users", "Prepare launch assets"}},
			{Name: "Launch", Timeline: "Launch week", Activities: []string{"Announce on every owned channel", "Run launch offer", "Host a live demo"}},
			{Name: "Post-launch", Timeline: "Weeks 1 to 6", Activities: []string{"Collect reviews", "Retarget engaged visitors", "Publish results"}},
		},
		Messaging: LaunchMessaging{
			Tagline: product + ": less " + profile.PainPoints[0] + ", more results.",
			KeyMessages: []string{
				"Solves " + profile.PainPoints[0] + " out of the box",
				"Designed with " + audience + " in mind",
				profile.CTA,
			},
		},
		Channels: plans,
		KPIs:     []string{"Waitlist sign-ups", "Launch week conversions", "Cost per acquisition", "30-day retention"},
	}
}

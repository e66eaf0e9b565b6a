package tools

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/models"
)

// BlogWritingInput is the request body of the blog-writing tool.
type BlogWritingInput struct {
	Topic     string   `json:"topic"`
	Keywords  []string `json:"keywords"`
	Audience  string   `json:"audience"`
	Tone      string   `json:"tone"`
	WordCount int      `json:"wordCount"`
	Industry  string   `json:"industry"`
}

func (in *BlogWritingInput) normalize() {
	in.Keywords = cleanList(in.Keywords)
	if in.WordCount <= 0 {
		in.WordCount = 1200
	}
	in.WordCount = clamp(in.WordCount, 300, 5000)
	in.Tone = orDefault(in.Tone, "informative")
}

type OutlineSection struct {
	Heading string   `json:"heading"`
	Points  []string `json:"points"`
}

// BlogWritingOutput is the payload of the blog-writing tool.
type BlogWritingOutput struct {
	Title             string           `json:"title"`
	MetaDescription   string           `json:"metaDescription" description:"at most 160 characters"`
	Outline           []OutlineSection `json:"outline"`
	Content           string           `json:"content" description:"full article in markdown"`
	Keywords          []string         `json:"keywords"`
	EstimatedReadTime int              `json:"estimatedReadTime" description:"minutes"`
	CallToAction      string           `json:"callToAction"`
}

func BlogWriting() Tool {
	def := trialTool("blog-writing", "Blog Writing", "content", "SEO-optimised long-form blog article")
	// A partial article is not coherent; missing sections force a full fallback.
	def.PatchMissing = false
	return newTool(
		def,
		"You are an experienced content writer who produces well-structured, search-optimised articles.",
		buildBlogWriting,
		fallbackBlogWriting,
	)
}

func buildBlogWriting(in *BlogWritingInput) string {
	profile := LookupIndustry(in.Industry)
	return fmt.Sprintf("Write a complete blog article of roughly %d words in markdown, with an outline, "+
		"a meta description and a closing call to action.\n\n", in.WordCount) +
		contextBlock(
			"Topic", in.Topic,
			"Keywords", joinList(in.Keywords, ""),
			"Audience", orDefault(in.Audience, profile.Audience),
			"Tone", in.Tone,
			"Industry", profile.Label,
		)
}

func fallbackBlogWriting(in *BlogWritingInput) BlogWritingOutput {
	profile := LookupIndustry(in.Industry)
	topic := orDefault(in.Topic, "Growing your business")
	audience := orDefault(in.Audience, profile.Audience)
	keywords := in.Keywords
	if len(keywords) == 0 {
		keywords = []string{strings.ToLower(topic)}
	}

	outline := []OutlineSection{
		{Heading: "Why " + topic + " matters", Points: []string{"The current landscape for " + audience, "What is at stake: " + profile.PainPoints[0]}},
		{Heading: "Common mistakes to avoid", Points: []string{"Treating " + keywords[0] + " as an afterthought", "Measuring the wrong outcomes"}},
		{Heading: "A step-by-step approach", Points: []string{"Set a clear goal", "Build a repeatable process", "Review results monthly"}},
		{Heading: "Putting it into practice", Points: []string{"A simple first week plan", "Tools that help"}},
	}

	var body strings.Builder
	fmt.Fprintf(&body, "# %s\n\n", titleCase(topic))
	fmt.Fprintf(&body, "%s often struggle with %s. This guide walks through a practical approach to %s.\n\n",
		titleCase(audience), profile.PainPoints[0], strings.ToLower(topic))
	for _, sec := range outline {
		fmt.Fprintf(&body, "## %s\n\n", sec.Heading)
		for _, p := range sec.Points {
			fmt.Fprintf(&body, "- %s\n", p)
		}
		body.WriteString("\n")
	}
	fmt.Fprintf(&body, "## Next steps\n\n%s.\n", profile.CTA)

	words := len(strings.Fields(body.String()))
	readTime := max(1, max(words, in.WordCount)/200)

	meta := fmt.Sprintf("A practical guide to %s for %s.", strings.ToLower(topic), audience)
	if utf8.RuneCountInString(meta) > 160 {
		meta = truncateRunes(meta, 157) + "..."
	}

	return BlogWritingOutput{
		Title:             titleCase(topic) + ": A Practical Guide",
		MetaDescription:   meta,
		Outline:           outline,
		Content:           body.String(),
		Keywords:          keywords,
		EstimatedReadTime: readTime,
		CallToAction:      profile.CTA,
	}
}

// EmailMarketingInput is the request body of the email-marketing tool.
type EmailMarketingInput struct {
	BusinessName string `json:"businessName"`
	Product      string `json:"product"`
	Audience     string `json:"audience"`
	CampaignType string `json:"campaignType"`
	Tone         string `json:"tone"`
	EmailCount   int    `json:"emailCount"`
	Industry     string `json:"industry"`
}

func (in *EmailMarketingInput) normalize() {
	in.CampaignType = orDefault(in.CampaignType, "nurture")
	if in.EmailCount <= 0 {
		in.EmailCount = 3
	}
	in.EmailCount = clamp(in.EmailCount, 1, 10)
	in.Tone = orDefault(in.Tone, "friendly")
}

type CampaignSummary struct {
	Name     string `json:"name"`
	Goal     string `json:"goal"`
	Audience string `json:"audience"`
}

type Email struct {
	Day          int    `json:"day" description:"days after the campaign starts"`
	SubjectLine  string `json:"subjectLine"`
	PreviewText  string `json:"previewText"`
	Body         string `json:"body"`
	CallToAction string `json:"callToAction"`
}

type EmailBenchmarks struct {
	ExpectedOpenRate  string `json:"expectedOpenRate"`
	ExpectedClickRate string `json:"expectedClickRate"`
}

// EmailMarketingOutput is the payload of the email-marketing tool.
type EmailMarketingOutput struct {
	Campaign            CampaignSummary `json:"campaign"`
	Emails              []Email         `json:"emails"`
	SubjectLineVariants []string        `json:"subjectLineVariants"`
	Benchmarks          EmailBenchmarks `json:"benchmarks"`
}

func EmailMarketing() Tool {
	return newTool(
		trialTool("email-marketing", "Email Marketing", "email", "Multi-email campaign with subject line variants"),
		"You are an email marketing specialist who writes concise emails that get opened and clicked.",
		buildEmailMarketing,
		fallbackEmailMarketing,
	)
}

func buildEmailMarketing(in *EmailMarketingInput) string {
	profile := LookupIndustry(in.Industry)
	return fmt.Sprintf("Write a %s email campaign of %d emails, each with a send day, subject line, preview text, "+
		"body and call to action. Add subject line variants for A/B testing and realistic benchmarks.\n\n",
		in.CampaignType, in.EmailCount) +
		contextBlock(
			"Business", in.BusinessName,
			"Product or offer", in.Product,
			"Audience", orDefault(in.Audience, profile.Audience),
			"Tone", in.Tone,
			"Industry", profile.Label,
		)
}

func fallbackEmailMarketing(in *EmailMarketingInput) EmailMarketingOutput {
	profile := LookupIndustry(in.Industry)
	name := orDefault(in.BusinessName, "Our team")
	product := orDefault(in.Product, "what we offer")
	audience := orDefault(in.Audience, profile.Audience)

	stages := []struct{ subject, preview, body string }{
		{"Welcome, here is what to expect", "A quick hello from %s", "Thanks for joining us. Over the next few days we will share how %s helps with %s."},
		{"The mistake most people make", "And how to avoid it", "Most %s run into %s. Here is the simple change that fixes it."},
		{"A quick story from a customer", "Real results, no fluff", "One of our customers used %s to get past %s. Here is how they did it."},
		{"Your exclusive offer inside", "Only for subscribers", "As a thank you, here is an offer on %s. It is available for a limited time."},
		{"Last chance", "The offer ends soon", "This is a final reminder that your offer on %s ends soon."},
	}
	emails := make([]Email, 0, in.EmailCount)
	for i := 0; i < in.EmailCount; i++ {
		st := stages[min(i, len(stages)-1)]
		pain := profile.PainPoints[i%len(profile.PainPoints)]
		var body string
		switch strings.Count(st.body, "%s") {
		case 2:
			if i == 1 {
				body = fmt.Sprintf(st.body, audience, pain)
			} else {
				body = fmt.Sprintf(st.body, product, pain)
			}
		default:
			body = fmt.Sprintf(st.body, product)
		}
		preview := st.preview
		if strings.Contains(preview, "%s") {
			preview = fmt.Sprintf(preview, name)
		}
		emails = append(emails, Email{
			Day:          i * 2,
			SubjectLine:  st.subject,
			PreviewText:  preview,
			Body:         body + "\n\n" + name,
			CallToAction: profile.CTA,
		})
	}

	return EmailMarketingOutput{
		Campaign: CampaignSummary{
			Name:     titleCase(in.CampaignType) + " campaign for " + product,
			Goal:     "Move subscribers from interest to purchase",
			Audience: audience,
		},
		Emails: emails,
		SubjectLineVariants: []string{
			"Quick question about " + profile.PainPoints[0],
			"[Name], this is for " + audience,
			"You asked, we listened",
		},
		Benchmarks: EmailBenchmarks{ExpectedOpenRate: "25-35%", ExpectedClickRate: "2-5%"},
	}
}

// ColdOutreachInput is the request body of the cold-outreach tool.
type ColdOutreachInput struct {
	SenderName     string `json:"senderName"`
	Company        string `json:"company"`
	Offer          string `json:"offer"`
	ProspectRole   string `json:"prospectRole"`
	Industry       string `json:"industry"`
	Channel        string `json:"channel"`
	SequenceLength int    `json:"sequenceLength"`
}

func (in *ColdOutreachInput) normalize() {
	in.Channel = orDefault(strings.ToLower(in.Channel), "email")
	if in.SequenceLength <= 0 {
		in.SequenceLength = 3
	}
	in.SequenceLength = clamp(in.SequenceLength, 1, 7)
}

type OutreachMessage struct {
	Step      int    `json:"step"`
	Channel   string `json:"channel"`
	DelayDays int    `json:"delayDays"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
}

// ColdOutreachOutput is the payload of the cold-outreach tool.
type ColdOutreachOutput struct {
	Sequence            []OutreachMessage `json:"sequence"`
	PersonalizationTips []string          `json:"personalizationTips"`
	FollowUpStrategy    string            `json:"followUpStrategy"`
}

func ColdOutreach() Tool {
	return newTool(
		paidTool("cold-outreach", "Cold Outreach", "sales", "Personalised outreach sequence for prospects", models.PlanStarter),
		"You are a B2B sales development lead who writes short, personal, non-spammy outreach.",
		buildColdOutreach,
		fallbackColdOutreach,
	)
}

func buildColdOutreach(in *ColdOutreachInput) string {
	return fmt.Sprintf("Write a %d-step %s outreach sequence. Keep each message under 120 words with one ask.\n\n",
		in.SequenceLength, in.Channel) +
		contextBlock(
			"Sender", in.SenderName,
			"Company", in.Company,
			"Offer", in.Offer,
			"Prospect role", in.ProspectRole,
			"Prospect industry", LookupIndustry(in.Industry).Label,
		)
}

func fallbackColdOutreach(in *ColdOutreachInput) ColdOutreachOutput {
	profile := LookupIndustry(in.Industry)
	sender := orDefault(in.SenderName, "Alex")
	company := orDefault(in.Company, "our company")
	offer := orDefault(in.Offer, "a faster way to hit your targets")
	role := orDefault(in.ProspectRole, "team lead")

	templates := []struct{ subject, body string }{
		{"Idea for your team", "Hi {{firstName}},\n\nI noticed many %ss in %s are dealing with %s. At %s we help with %s.\n\nWorth a 15 minute chat next week?\n\n%s"},
		{"Re: Idea for your team", "Hi {{firstName}},\n\nFollowing up in case this got buried. Teams like yours use %s to tackle %s.\n\nOpen to a quick call?\n\n%s"},
		{"A quick resource", "Hi {{firstName}},\n\nSharing a short case study on how a %s cut the time spent on %s. Happy to walk you through it.\n\n%s"},
		{"Should I close your file?", "Hi {{firstName}},\n\nI have not heard back, so I will assume the timing is not right. If %s becomes a priority, just reply here.\n\n%s"},
	}
	delays := []int{0, 3, 5, 7}

	seq := make([]OutreachMessage, 0, in.SequenceLength)
	for i := 0; i < in.SequenceLength; i++ {
		idx := min(i, len(templates)-1)
		t := templates[idx]
		pain := profile.PainPoints[i%len(profile.PainPoints)]
		var msg string
		switch idx {
		case 0:
			msg = fmt.Sprintf(t.body, role, profile.Label, pain, company, offer, sender)
		case 1:
			msg = fmt.Sprintf(t.body, company, pain, sender)
		case 2:
			msg = fmt.Sprintf(t.body, role, pain, sender)
		default:
			msg = fmt.Sprintf(t.body, pain, sender)
		}
		seq = append(seq, OutreachMessage{
			Step:      i + 1,
			Channel:   in.Channel,
			DelayDays: delays[min(i, len(delays)-1)] + max(0, i-len(delays)+1)*7,
			Subject:   t.subject,
			Message:   msg,
		})
	}

	return ColdOutreachOutput{
		Sequence: seq,
		PersonalizationTips: []string{
			"Reference a recent post, hire or funding round in the first line.",
			"Mention a peer company in " + profile.Label + " you already work with.",
			"Replace {{firstName}} and keep the tone conversational.",
		},
		FollowUpStrategy: fmt.Sprintf("Space %d touches over two weeks and stop after a reply or an explicit no.", in.SequenceLength),
	}
}

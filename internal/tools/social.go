package tools

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/models"
)

// SocialMediaInput is the request body of the social-media tool.
type SocialMediaInput struct {
	BusinessName   string   `json:"businessName"`
	Industry       string   `json:"industry"`
	Platforms      []string `json:"platforms"`
	TargetAudience string   `json:"targetAudience"`
	Goals          string   `json:"goals"`
	Tone           string   `json:"tone"`
	PostCount      int      `json:"postCount"`
}

func (in *SocialMediaInput) normalize() {
	in.Platforms = cleanList(in.Platforms)
	if len(in.Platforms) == 0 {
		in.Platforms = []string{"instagram", "linkedin"}
	}
	if in.PostCount <= 0 {
		in.PostCount = 7
	}
	in.PostCount = clamp(in.PostCount, 1, 30)
	in.Tone = orDefault(in.Tone, "friendly")
}

type SocialPost struct {
	Platform    string   `json:"platform"`
	Day         string   `json:"day"`
	ContentType string   `json:"contentType" description:"educational, promotional, entertaining or community"`
	Caption     string   `json:"caption"`
	Hashtags    []string `json:"hashtags"`
	BestTime    string   `json:"bestTime" description:"HH:MM local time"`
}

type PlatformCadence struct {
	Platform     string `json:"platform"`
	PostsPerWeek int    `json:"postsPerWeek"`
	Format       string `json:"format"`
}

type SocialStrategy struct {
	Cadence   []PlatformCadence `json:"cadence"`
	KeyThemes []string          `json:"keyThemes"`
}

// SocialMediaOutput is the payload of the social-media tool.
type SocialMediaOutput struct {
	ContentMix ContentMix     `json:"contentMix" description:"percentages summing to 100"`
	Posts      []SocialPost   `json:"posts"`
	Strategy   SocialStrategy `json:"strategy"`
	Tips       []string       `json:"tips"`
}

func SocialMedia() Tool {
	return newTool(
		trialTool("social-media", "Social Media Content", "social", "A week of ready-to-post social content"),
		"You are a social media strategist who writes scroll-stopping, on-brand posts.",
		buildSocialMedia,
		fallbackSocialMedia,
	)
}

func buildSocialMedia(in *SocialMediaInput) string {
	profile := LookupIndustry(in.Industry)
	labels := make([]string, 0, len(in.Platforms))
	for _, p := range in.Platforms {
		spec, _ := LookupPlatform(p)
		labels = append(labels, fmt.Sprintf("%s (max %d characters, %d hashtags)", spec.Label, spec.CaptionLimit, spec.Hashtags))
	}
	return fmt.Sprintf("Write %d social media posts spread across the platforms below, with a content mix, "+
		"a posting cadence per platform and practical tips.\n\n", in.PostCount) +
		contextBlock(
			"Business", in.BusinessName,
			"Industry", profile.Label,
			"Platforms", strings.Join(labels, "; "),
			"Target audience", orDefault(in.TargetAudience, profile.Audience),
			"Goals", in.Goals,
			"Tone", in.Tone,
		)
}

var weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

func fallbackSocialMedia(in *SocialMediaInput) SocialMediaOutput {
	profile := LookupIndustry(in.Industry)
	name := orDefault(in.BusinessName, "our team")
	audience := orDefault(in.TargetAudience, profile.Audience)

	pillars := []string{"educational", "promotional", "entertaining", "community"}
	captions := map[string]string{
		"educational":  "Quick tip for %s: here is how to avoid %s. Save this for later.",
		"promotional":  "%s, this one is for you. %s with %s this week.",
		"entertaining": "Tell us you work with %s without telling us. We will go first: %s.",
		"community":    "We love hearing from %s. What is your biggest challenge with %s right now?",
	}

	posts := make([]SocialPost, 0, in.PostCount)
	for i := 0; i < in.PostCount; i++ {
		spec, _ := LookupPlatform(in.Platforms[i%len(in.Platforms)])
		pillar := pillars[i%len(pillars)]
		pain := profile.PainPoints[i%len(profile.PainPoints)]
		var caption string
		switch pillar {
		case "promotional":
			caption = fmt.Sprintf(captions[pillar], titleCase(audience), profile.CTA, name)
		default:
			caption = fmt.Sprintf(captions[pillar], audience, pain)
		}
		if spec.CaptionLimit > 0 {
			caption = truncateRunes(caption, spec.CaptionLimit)
		}
		tags := []string{hashtag(profile.Label), hashtag(name)}
		for _, seed := range profile.KeywordSeeds {
			if len(tags) >= spec.Hashtags {
				break
			}
			tags = append(tags, hashtag(seed))
		}
		if spec.Hashtags < len(tags) {
			tags = tags[:max(spec.Hashtags, 1)]
		}
		posts = append(posts, SocialPost{
			Platform:    spec.Label,
			Day:         weekdays[i%len(weekdays)],
			ContentType: pillar,
			Caption:     caption,
			Hashtags:    tags,
			BestTime:    spec.BestTime,
		})
	}

	cadence := make([]PlatformCadence, 0, len(in.Platforms))
	for _, p := range in.Platforms {
		spec, _ := LookupPlatform(p)
		cadence = append(cadence, PlatformCadence{Platform: spec.Label, PostsPerWeek: max(spec.PostsPerWeek, 1), Format: spec.Format})
	}

	return SocialMediaOutput{
		ContentMix: profile.ContentMix,
		Posts:      posts,
		Strategy: SocialStrategy{
			Cadence:   cadence,
			KeyThemes: []string{"Solving " + profile.PainPoints[0], "Behind the scenes at " + name, "Customer results"},
		},
		Tips: []string{
			"Reply to every comment in the first hour after posting.",
			"Repurpose your best performing post into a different format each month.",
			"End each caption with a single clear call to action.",
		},
	}
}

// ReelsScriptsInput is the request body of the reels-scripts tool.
type ReelsScriptsInput struct {
	Topic       string `json:"topic"`
	Platform    string `json:"platform"`
	Duration    int    `json:"duration"`
	Audience    string `json:"audience"`
	Tone        string `json:"tone"`
	ScriptCount int    `json:"scriptCount"`
}

func (in *ReelsScriptsInput) normalize() {
	in.Platform = orDefault(in.Platform, "instagram")
	if in.Duration <= 0 {
		in.Duration = 30
	}
	in.Duration = clamp(in.Duration, 10, 180)
	if in.ScriptCount <= 0 {
		in.ScriptCount = 3
	}
	in.ScriptCount = clamp(in.ScriptCount, 1, 10)
	in.Tone = orDefault(in.Tone, "energetic")
}

type VideoScript struct {
	Title        string   `json:"title"`
	Hook         string   `json:"hook"`
	Scenes       []Scene  `json:"scenes"`
	CallToAction string   `json:"callToAction"`
	Hashtags     []string `json:"hashtags"`
	Duration     int      `json:"duration" description:"seconds"`
}

// ReelsScriptsOutput is the payload of the reels-scripts tool.
type ReelsScriptsOutput struct {
	Platform string        `json:"platform"`
	Scripts  []VideoScript `json:"scripts"`
	Tips     []string      `json:"tips"`
}

func ReelsScripts() Tool {
	return newTool(
		paidTool("reels-scripts", "Reels/Shorts Scripts", "video", "Short-form video scripts with hooks and shot lists", models.PlanStarter),
		"You are a short-form video producer who knows how to hold attention in the first three seconds.",
		buildReelsScripts,
		fallbackReelsScripts,
	)
}

func buildReelsScripts(in *ReelsScriptsInput) string {
	spec, _ := LookupPlatform(in.Platform)
	return fmt.Sprintf("Write %d short-form video scripts of about %d seconds each for %s. "+
		"Each script needs a hook, timed scenes with visuals and voiceover, a call to action and hashtags.\n\n",
		in.ScriptCount, in.Duration, spec.Label) +
		contextBlock(
			"Topic", in.Topic,
			"Audience", in.Audience,
			"Tone", in.Tone,
		)
}

func fallbackReelsScripts(in *ReelsScriptsInput) ReelsScriptsOutput {
	spec, _ := LookupPlatform(in.Platform)
	topic := orDefault(in.Topic, "your business")
	audience := orDefault(in.Audience, "your audience")

	hooks := []string{
		"Stop scrolling if you care about %s.",
		"Three things nobody tells you about %s.",
		"I tried this %s trick for 30 days.",
		"The biggest %s mistake we see every week.",
		"Here is %s explained in %d seconds.",
	}

	scripts := make([]VideoScript, 0, in.ScriptCount)
	for i := 0; i < in.ScriptCount; i++ {
		tmpl := hooks[i%len(hooks)]
		var hook string
		if strings.Count(tmpl, "%") == 2 {
			hook = fmt.Sprintf(tmpl, topic, in.Duration)
		} else {
			hook = fmt.Sprintf(tmpl, topic)
		}
		scenes := splitScenes(in.Duration, []Scene{
			{Visual: "Close-up talking head, bold caption", Voiceover: hook, TextOverlay: titleCase(topic)},
			{Visual: "Quick cuts showing the problem", Voiceover: "Most " + audience + " get this wrong.", TextOverlay: "The problem"},
			{Visual: "Screen recording or demo", Voiceover: "Here is what to do instead, step by step.", TextOverlay: "The fix"},
			{Visual: "Result shot with on-screen checklist", Voiceover: "Follow for more tips like this.", TextOverlay: "Follow for part 2"},
		})
		scripts = append(scripts, VideoScript{
			Title:        fmt.Sprintf("%s #%s", titleCase(topic), strconv.Itoa(i+1)),
			Hook:         hook,
			Scenes:       scenes,
			CallToAction: "Follow and save this for later",
			Hashtags:     []string{hashtag(topic), hashtag(spec.Label), "#Tips"},
			Duration:     in.Duration,
		})
	}

	return ReelsScriptsOutput{
		Platform: spec.Label,
		Scripts:  scripts,
		Tips: []string{
			"Put the hook on screen as text within the first second.",
			"Film vertically at 1080x1920 with captions burned in.",
			"Post at " + spec.BestTime + " and reply to early comments.",
		},
	}
}

// BlogToVideoInput is the request body of the blog-to-video tool.
type BlogToVideoInput struct {
	BlogTitle   string `json:"blogTitle"`
	BlogContent string `json:"blogContent"`
	Platform    string `json:"platform"`
	Duration    int    `json:"duration"`
	Style       string `json:"style"`
}

func (in *BlogToVideoInput) normalize() {
	in.Platform = orDefault(in.Platform, "youtube_shorts")
	if in.Duration <= 0 {
		in.Duration = 60
	}
	in.Duration = clamp(in.Duration, 15, 600)
	in.Style = orDefault(in.Style, "educational")
}

type Thumbnail struct {
	Concept     string `json:"concept"`
	TextOverlay string `json:"textOverlay"`
}

// BlogToVideoOutput is the payload of the blog-to-video tool.
type BlogToVideoOutput struct {
	VideoTitle   string    `json:"videoTitle"`
	Hook         string    `json:"hook"`
	Scenes       []Scene   `json:"scenes"`
	CallToAction string    `json:"callToAction"`
	Thumbnail    Thumbnail `json:"thumbnail"`
	Captions     []string  `json:"captions"`
	Hashtags     []string  `json:"hashtags"`
}

func BlogToVideo() Tool {
	return newTool(
		paidTool("blog-to-video", "Blog to Video", "video", "Turn a blog post into a video script and storyboard", models.PlanAgency),
		"You are a video editor who turns long-form articles into tight, visual scripts.",
		buildBlogToVideo,
		fallbackBlogToVideo,
	)
}

const blogExcerptLimit = 6000

func buildBlogToVideo(in *BlogToVideoInput) string {
	spec, _ := LookupPlatform(in.Platform)
	content := truncateRunes(in.BlogContent, blogExcerptLimit)
	return fmt.Sprintf("Convert the blog post below into a %d second %s video in a %s style. "+
		"Provide a hook, timed scenes, a thumbnail concept, captions and hashtags.\n\n", in.Duration, spec.Label, in.Style) +
		contextBlock("Blog title", in.BlogTitle) + "\n\nBlog content:\n" + orDefault(content, "not specified")
}

// keyPoints picks the first sentences of the article as talking points.
func keyPoints(content string, n int) []string {
	fields := strings.FieldsFunc(content, func(r rune) bool { return r == '.' || r == '\n' || r == '!' || r == '?' })
	out := make([]string, 0, n)
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if len(f) < 20 {
			continue
		}
		f = truncateRunes(f, 140)
		out = append(out, f)
		if len(out) == n {
			break
		}
	}
	return out
}

func fallbackBlogToVideo(in *BlogToVideoInput) BlogToVideoOutput {
	spec, _ := LookupPlatform(in.Platform)
	title := orDefault(in.BlogTitle, "Key takeaways from our latest article")
	points := keyPoints(in.BlogContent, 3)
	for len(points) < 3 {
		points = append(points, []string{"Why this topic matters now", "The one change that makes the difference", "How to get started today"}[len(points)])
	}

	beats := []Scene{{Visual: "Presenter to camera with title card", Voiceover: "Here is " + title + " in under a minute.", TextOverlay: title}}
	for i, p := range points {
		beats = append(beats, Scene{Visual: "B-roll illustrating point " + strconv.Itoa(i+1), Voiceover: p + ".", TextOverlay: "Point " + strconv.Itoa(i+1)})
	}
	beats = append(beats, Scene{Visual: "End card with link", Voiceover: "Read the full article at the link.", TextOverlay: "Full article in bio"})
	scenes := splitScenes(in.Duration, beats)

	captions := make([]string, 0, len(scenes))
	for _, s := range scenes {
		captions = append(captions, s.Voiceover)
	}

	return BlogToVideoOutput{
		VideoTitle:   title,
		Hook:         "Here is " + title + " in under a minute.",
		Scenes:       scenes,
		CallToAction: "Read the full article at the link",
		Thumbnail:    Thumbnail{Concept: "Presenter pointing at a bold headline", TextOverlay: titleCase(title)},
		Captions:     captions,
		Hashtags:     []string{hashtag(title), hashtag(spec.Label), hashtag("learn on " + spec.Label)},
	}
}

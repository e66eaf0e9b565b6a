package tools

// Recommendation is a prioritised action item shared by the audit-style tools.
type Recommendation struct {
	Priority string `json:"priority" description:"high, medium or low"`
	Action   string `json:"action"`
	Impact   string `json:"impact"`
}

// Issue is a single finding from an audit.
type Issue struct {
	Title          string `json:"title"`
	Severity       string `json:"severity" description:"critical, warning or notice"`
	Recommendation string `json:"recommendation"`
}

// Scene is one beat of a short-form video script.
type Scene struct {
	Timestamp   string `json:"timestamp" description:"start-end in seconds, e.g. 0-3s"`
	Visual      string `json:"visual"`
	Voiceover   string `json:"voiceover"`
	TextOverlay string `json:"textOverlay"`
}

// splitScenes divides a video of the given length into timed scenes.
func splitScenes(seconds int, beats []Scene) []Scene {
	if len(beats) == 0 {
		return nil
	}
	step := seconds / len(beats)
	if step < 1 {
		step = 1
	}
	out := make([]Scene, len(beats))
	for i, b := range beats {
		start := i * step
		end := start + step
		if i == len(beats)-1 {
			end = seconds
		}
		b.Timestamp = itoa(start) + "-" + itoa(end) + "s"
		out[i] = b
	}
	return out
}

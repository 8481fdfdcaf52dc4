package classify

// Indicators are the immutable keyword sets driving the heuristics.
// They are injected at construction so tests and tuning can override
// them without touching logic.
type Indicators struct {
	Org                []string
	MultiPerson        []string
	SingleHostPositive []string
	MultiHostNegative  []string
	Ambiguous          []string
	Scripted           []string
	Honorifics         []string
	NonPersonal        []string
}

// DefaultIndicators returns the reference keyword sets, assembled from
// manual review of collected candidates.
func DefaultIndicators() Indicators {
	return Indicators{
		Org: []string{
			".com", ".fm", ".org", ".net", "llc", "inc", "corp", "company",
			"university", "college", "center", "centre", "institute",
			"foundation", "research center", "media company", "network",
			"studio", "radio station", "salem podcast", "whisper.fm",
			"solgoodmedia.com", "buzzsprout.com", "transistor.fm",
			"trade canyon", "s&p global", "virginia museum", "u.s. army",
			"christian research", "centre for", "wolfram research",
			"podcast network", "academic network", "media group",
			"broadcasting", "association", "society", "university of",
			"college of", "school of", "capital research center",
			"church of", "free church", "communications",
			"reformed theological seminary", "methodist communications",
			"baptist college",
		},
		MultiPerson: []string{
			"&", " and ", ",", "co-", "hosts", "team", "partners", "with",
			"featuring", "/", "mark & adam", "john and jane", "alice & bob",
			"heritage and", "research and", "foundation and", "crew",
			"staff", "students", "faculty", "collective", "group", "band",
			"ensemble", "friends",
		},
		SingleHostPositive: []string{
			"solo", "personal", "individual", "my thoughts", "my podcast",
			"monologue", "lecture", "story", "philosophy", "reflection",
		},
		MultiHostNegative: []string{
			"co-host", "hosts", "team", "together", "panel",
			"multiple hosts", "host and", "hosting with", "co-hosting",
			"joint hosting",
		},
		Ambiguous: []string{
			"discussion", "interview", "conversation",
		},
		Scripted: []string{
			"written", "script", "prepared", "composed", "authored",
			"structured", "organized", "planned", "narrative", "story",
			"lecture", "episode", "series", "chronicles", "explores",
			"recounts", "presents", "delves", "investigates", "examines",
			"analysis", "reflection", "perspective", "journey", "history",
		},
		Honorifics: []string{
			"dr.", "prof.", "professor", "pastor", "rev.", "reverend",
		},
		NonPersonal: []string{
			"podcast", "show", "radio", "broadcast", "media", "network",
			"crew", "team", "staff", "students", "collective", "group",
			"university", "college", "center", "institute", "foundation",
		},
	}
}

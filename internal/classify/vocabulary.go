package classify

// Default title length bounds, in runes
const (
	DefaultMinTitleLength = 3
	DefaultMaxTitleLength = 200
)

// Vocabulary is the data a Classifier matches titles against. Terms and markers are
// compared case- and accent-insensitively; patterns are regular expressions applied to the
// lowercased, accent-folded title.
type Vocabulary struct {
	MinTitleLength int `yaml:"min_length"`
	MaxTitleLength int `yaml:"max_length"`

	// NavigationTerms reject a title that is exactly the term, ignoring surrounding
	// punctuation and arrows ("Menu", "Home »").
	NavigationTerms []string `yaml:"navigation_terms"`

	// BoilerplateMarkers reject a title that contains the marker anywhere.
	BoilerplateMarkers []string `yaml:"boilerplate_markers"`

	// NavigationPatterns reject calls to action and date-only titles.
	NavigationPatterns []string `yaml:"navigation_patterns"`

	// GenericPrograms reject standing offerings that are not a dated occurrence.
	GenericPrograms []string `yaml:"generic_programs"`
}

// DefaultVocabulary returns a fresh copy of the built-in vocabulary.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		MinTitleLength:     DefaultMinTitleLength,
		MaxTitleLength:     DefaultMaxTitleLength,
		NavigationTerms:    clone(defaultNavigationTerms),
		BoilerplateMarkers: clone(defaultBoilerplateMarkers),
		NavigationPatterns: clone(defaultNavigationPatterns),
		GenericPrograms:    clone(defaultGenericPrograms),
	}
}

// Extend returns v with other's lists appended. Non-zero length bounds in other win.
func (v Vocabulary) Extend(other Vocabulary) Vocabulary {
	out := Vocabulary{
		MinTitleLength:     v.MinTitleLength,
		MaxTitleLength:     v.MaxTitleLength,
		NavigationTerms:    append(clone(v.NavigationTerms), other.NavigationTerms...),
		BoilerplateMarkers: append(clone(v.BoilerplateMarkers), other.BoilerplateMarkers...),
		NavigationPatterns: append(clone(v.NavigationPatterns), other.NavigationPatterns...),
		GenericPrograms:    append(clone(v.GenericPrograms), other.GenericPrograms...),
	}
	if other.MinTitleLength > 0 {
		out.MinTitleLength = other.MinTitleLength
	}
	if other.MaxTitleLength > 0 {
		out.MaxTitleLength = other.MaxTitleLength
	}
	return out
}

func clone(s []string) []string {
	return append([]string(nil), s...)
}

var defaultNavigationTerms = []string{
	// site chrome
	"menu", "main menu", "navigation", "nav", "home", "homepage", "back", "next", "previous",
	"skip to content", "skip to main content", "back to top", "close", "open menu",
	"contact", "contact us", "about", "about us", "faq", "help", "careers", "donate",
	"login", "log in", "sign in", "sign up", "register", "my account", "account", "cart",
	"search", "filter", "filters", "sort", "sort by", "share", "follow us", "connect",
	// listing chrome
	"events", "all events", "upcoming events", "past events", "event calendar", "calendar",
	"today", "tomorrow", "this week", "this weekend", "this month", "upcoming", "past",
	"tickets", "buy tickets", "get tickets", "more info", "details", "view event",
	"load more", "read more", "learn more", "see more", "view all", "see all",
	// French site chrome
	"accueil", "a propos", "nous joindre", "contactez-nous", "billets", "billetterie",
	"rechercher", "recherche", "voir tout", "en savoir plus", "plus d'infos",
	"evenements", "calendrier", "connexion",
}

var defaultBoilerplateMarkers = []string{
	"©", "copyright", "all rights reserved", "tous droits reserves",
	"newsletter", "infolettre", "mailing list",
	"privacy policy", "politique de confidentialite", "terms of use", "terms of service",
	"terms and conditions", "cookie policy", "cookie settings", "we use cookies",
	"accept cookies", "javascript is disabled", "enable javascript",
}

var defaultNavigationPatterns = []string{
	// calls to action
	`^(subscribe|sign up|join)\b`,
	`^(abonnez|inscrivez)-vous\b`,
	`^(buy|get|book|purchase) (your )?tickets?\b`,
	`^(view|see|show|browse) (all|more)\b`,
	`^(read|learn|find out) more\b`,
	`^skip to\b`,
	`^(privacy|cookies?)$`,
	`^terms$`,
	`^(latest |all )?(past|upcoming) events\b`,
	`^events (at|near) (our|this)\b`,
	`^list of events\b`,
	// date-only titles
	`^((mon|tues|wednes|thurs|fri|satur|sun)day|mon|tue|wed|thu|fri|sat|sun)?,?\s*(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{1,2}(st|nd|rd|th)?(,?\s+\d{4})?$`,
	`^\d{1,2}/\d{1,2}/\d{2,4}$`,
	`^\d{4}-\d{2}-\d{2}$`,
	`^\d{1,2}(:\d{2})?\s*(am|pm)$`,
}

var defaultGenericPrograms = []string{
	`^pd days?\b`,
	`^free (admission|entry)( days?)?\b`,
	`^(monday|tuesday|wednesday|thursday|friday|saturday|sunday|weekend|weekday)s? programs?$`,
	`^(\d{2}|\d{4})\s*[/-]\s*(\d{2}|\d{4})\s+season\b`,
	`^(20\d{2}\s+)?season (tickets|passes|subscriptions?)\b`,
	`^drop-?in (studios?|sessions?|programs?|classes)\b`,
	`^(memberships?|become a member)\b`,
	`^gift (cards?|certificates?)\b`,
	`^(summer|winter|spring|fall|march break|holiday) camps?\b`,
	`^(group (visits|tours|sales|bookings)|school (programs|visits|groups))\b`,
	`^(private events?|venue rentals?|rentals)$`,
	`^(guided|daily|public) tours?$`,
	`^permanent (collection|exhibition)s?\b`,
	`^(all|upcoming|current) (programs|exhibitions|classes|workshops)$`,
	`^(classes|workshops|programs) (and|&) (workshops|events|classes|camps)$`,
}

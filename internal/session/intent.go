package session

import "strings"

// Intent is a resolved voice command
type Intent int

const (
	Unknown Intent = iota
	ListAll
	SaveNames
	SaveDetails
	Nearest
	Count
	Exit
)

// Priority is the order in which intents are matched. The first intent
// whose keyword occurs in the utterance wins.
var Priority = []Intent{ListAll, SaveNames, SaveDetails, Nearest, Count, Exit}

var intentNames = map[Intent]string{
	Unknown:     "unknown",
	ListAll:     "list_all",
	SaveNames:   "save_names",
	SaveDetails: "save_details",
	Nearest:     "nearest",
	Count:       "count",
	Exit:        "exit",
}

// String returns the snake_case intent name
func (i Intent) String() string {
	if name, ok := intentNames[i]; ok {
		return name
	}
	return "unknown"
}

// ParseIntent maps a snake_case name back to an Intent
func ParseIntent(name string) (Intent, bool) {
	for intent, n := range intentNames {
		if n == name {
			return intent, true
		}
	}
	return Unknown, false
}

// Keywords maps each intent to its trigger words
type Keywords map[Intent][]string

// Merge returns a copy of k with the non-empty entries of override applied
func (k Keywords) Merge(override Keywords) Keywords {
	out := make(Keywords, len(k))
	for intent, words := range k {
		out[intent] = append([]string(nil), words...)
	}
	for intent, words := range override {
		if len(words) > 0 {
			out[intent] = append([]string(nil), words...)
		}
	}
	return out
}

type rule struct {
	intent   Intent
	keywords []string
}

// Resolver classifies utterances by plain substring containment.
// Matching is case-sensitive and not word-bounded.
type Resolver struct {
	rules []rule
}

// NewResolver builds a resolver that checks intents in Priority order
func NewResolver(keywords Keywords) *Resolver {
	r := &Resolver{}
	for _, intent := range Priority {
		var words []string
		for _, w := range keywords[intent] {
			if w != "" {
				words = append(words, w)
			}
		}
		if len(words) == 0 {
			continue
		}
		r.rules = append(r.rules, rule{intent: intent, keywords: words})
	}
	return r
}

// Resolve returns the first intent whose keyword is contained in text
func (r *Resolver) Resolve(text string) Intent {
	for _, rl := range r.rules {
		for _, w := range rl.keywords {
			if strings.Contains(text, w) {
				return rl.intent
			}
		}
	}
	return Unknown
}

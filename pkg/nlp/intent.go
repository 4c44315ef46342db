package nlp

import "strings"

// intentKeywords holds the keyword families in evaluation order. Order
// matters: a message like "change my booking" carries both edit and book
// signals, and cancel is checked first because it is the highest-stakes
// action to get wrong.
var intentKeywords = []struct {
	intent   Intent
	keywords []string
}{
	{IntentCancel, []string{"cancel", "delete", "remove"}},
	{IntentEdit, []string{"edit", "reschedule", "move", "change"}},
	{IntentBook, []string{"book", "schedule", "set up", "add"}},
	{IntentList, []string{"list", "show", "what", "upcoming", "events", "meetings", "history", "held"}},
	{IntentCheck, []string{"free", "available", "slots"}},
	{IntentHelp, []string{"help", "how"}},
}

// ClassifyIntent maps a raw message to an intent via case-insensitive
// substring matching, first family wins. No side effects.
func ClassifyIntent(text string) Intent {
	msg := strings.ToLower(text)
	for _, family := range intentKeywords {
		for _, kw := range family.keywords {
			if strings.Contains(msg, kw) {
				return family.intent
			}
		}
	}
	return IntentUnknown
}

package analysis

import (
	"regexp"
	"strings"
	"time"
)

const (
	IntentCreateAccount = "create_account"
	IntentCheckBalance  = "check_balance"
	IntentMoneyTransfer = "money_transfer"
	IntentGeneralQuery  = "general_query"
)

// intentRules are evaluated in order; the first rule with a matching
// keyword wins
var intentRules = []struct {
	intent   string
	keywords []string
}{
	{IntentCreateAccount, []string{"create account", "open account"}},
	{IntentCheckBalance, []string{"balance", "check balance"}},
	{IntentMoneyTransfer, []string{"transfer", "send money"}},
}

var (
	namePattern   = regexp.MustCompile(`my name is ([a-z ]+)`)
	emailPattern  = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-z]{2,}`)
	amountPattern = regexp.MustCompile(`(\d+(?:\.\d{1,2})?)\s?(?:rupees|rs|usd|dollars)?`)
)

// Extractor turns transcript text into a flat field mapping
type Extractor struct {
	now func() time.Time
}

func NewExtractor() *Extractor {
	return &Extractor{now: time.Now}
}

// NewExtractorWithClock is used where a stable timestamp is needed
func NewExtractorWithClock(now func() time.Time) *Extractor {
	return &Extractor{now: now}
}

// Extract returns rawText, intent and timestamp, plus name, email and
// amount when their patterns match. Keys without a match are left out.
func (e *Extractor) Extract(text string) map[string]any {
	result := map[string]any{
		"rawText": text,
	}

	lower := strings.ToLower(text)
	result["intent"] = DetectIntent(lower)

	if m := namePattern.FindStringSubmatch(lower); m != nil {
		result["name"] = strings.TrimSpace(m[1])
	}
	if m := emailPattern.FindString(lower); m != "" {
		result["email"] = m
	}
	if m := amountPattern.FindStringSubmatch(lower); m != nil {
		result["amount"] = m[1]
	}

	result["timestamp"] = e.now().Format(time.RFC3339)
	return result
}

// DetectIntent expects lower-cased text
func DetectIntent(lower string) string {
	for _, rule := range intentRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.intent
			}
		}
	}
	return IntentGeneralQuery
}

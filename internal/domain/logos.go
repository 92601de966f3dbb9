package domain

import (
	"regexp"
	"strings"
	"unicode"
)

const iconCDN = "https://cdn.simpleicons.org/"

var logoMap = map[string]string{
	"sap":          iconCDN + "sap/0FAAFF",
	"salesforce":   iconCDN + "salesforce/00A1E0",
	"workday":      iconCDN + "workday/FF6319",
	"servicenow":   iconCDN + "servicenow/4CAF50",
	"snowflake":    iconCDN + "snowflake/29B5E8",
	"oracle":       iconCDN + "oracle/F80000",
	"netsuite":     iconCDN + "oracle/F80000",
	"dynamics":     iconCDN + "microsoft/0078D4",
	"slack":        iconCDN + "slack/4A154B",
	"jira":         iconCDN + "jira/0052CC",
	"shopify":      iconCDN + "shopify/96BF48",
	"zoom":         iconCDN + "zoom/0B5CFF",
	"tableau":      iconCDN + "tableau/E97627",
	"mulesoft":     iconCDN + "mulesoft/009ADA",
	"google cloud": iconCDN + "googlecloud/4285F4",
}

var logoAliases = map[string]string{
	"sap s4hana":                 "sap",
	"sap hana":                   "sap",
	"sap cloud platform":         "sap",
	"sap erp":                    "sap",
	"sap ecc":                    "sap",
	"salesforce service cloud":   "salesforce",
	"salesforce marketing cloud": "salesforce",
	"salesforce commerce cloud":  "salesforce",
	"salesforce crm":             "salesforce",
	"servicenow itsm":            "servicenow",
	"service now":                "servicenow",
	"microsoft dynamics 365":     "dynamics",
	"dynamics 365":               "dynamics",
	"google workspace":           "google cloud",
	"google cloud platform":      "google cloud",
	"jira service management":    "jira",
	"atlassian jira":             "jira",
	"slack enterprise":           "slack",
	"oracle fusion":              "oracle",
	"oracle cloud":               "oracle",
	"workday hcm":                "workday",
}

var logoStrip = regexp.MustCompile(`[^a-z0-9\s]`)

// ResolveLogo keeps a non-blank existing URL and otherwise looks the name up
// in the known brand icons. It returns nil when nothing matches.
func ResolveLogo(name string, existing *string) *string {
	if existing != nil {
		if url := OptionalString(*existing); url != nil {
			return url
		}
	}
	normalized := strings.TrimSpace(logoStrip.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), ""))
	if normalized == "" {
		return nil
	}
	key := normalized
	if alias, ok := logoAliases[normalized]; ok {
		key = alias
	}
	if url, ok := logoMap[key]; ok {
		return &url
	}
	if url, ok := logoMap[spaceRun.ReplaceAllString(key, "")]; ok {
		return &url
	}
	return nil
}

// TitleCase capitalizes each whitespace-separated word of a company name.
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

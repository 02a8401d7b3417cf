package extract

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finsight/docingest/constants"
	"github.com/finsight/docingest/internal/amount"
	"github.com/finsight/docingest/internal/dateparse"
	"github.com/finsight/docingest/internal/entity"
)

// Sentinel dates substituted when a contract names no start or end date.
// Defaulted records stay in the pipeline; validation flags them later.
var (
	SentinelStart = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	SentinelEnd   = time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC)
)

const legalSuffix = `(?:Inc|LLC|Corp|Ltd|LP|LLP|Co|SA|SARL|SAS|GmbH)`

var (
	// "between ACME Corp and Widget LLC" — both parties at once.
	betweenPairRule = regexp.MustCompile(
		`(?i)between\s+([A-Z][A-Za-z &,\.]+?` + legalSuffix + `[\.']?)\s+and\s+([A-Z][A-Za-z &,\.]+?` + legalSuffix + `[\.']?)`)

	vendorRules = rules{
		regexp.MustCompile(`(?i)(?:between|party\s*[:\-]\s*(?:one|1|a))[,\s]+([A-Z][A-Za-z &,\.]+` + legalSuffix + `[\.']?)`),
		regexp.MustCompile(`(?i)(?:lender|supplier|service\s*provider|vendor|contractor)\s*[:\-]\s*([A-Z][A-Za-z &,\.]{3,60})`),
		regexp.MustCompile(`(?i)(?:company|firm|corporation)\s+known\s+as\s+([A-Z][A-Za-z &,\.]{3,60})`),
		regexp.MustCompile(`(?i)(?:entered into by|agreement\s+by)\s+(?:and\s+between\s+)?([A-Z][A-Za-z &,\.]+` + legalSuffix + `[\.']?)`),
	}

	startDateRules = rules{
		regexp.MustCompile(`(?i)effective(?:\s+as\s+of)?\s+(?:date[:\s]+)?([A-Za-zà-ÿ]+ \d{1,2},?\s*\d{4})`),
		regexp.MustCompile(`(?i)effective(?:\s+as\s+of)?\s+(?:date[:\s]+)?(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})`),
		regexp.MustCompile(`(?i)(?:start|commencement)\s+date[:\s]+([A-Za-zà-ÿ]+ \d{1,2},?\s*\d{4})`),
		regexp.MustCompile(`(?i)(?:start|commencement)\s+date[:\s]+(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})`),
		regexp.MustCompile(`(?i)dated(?:\s+as\s+of)?\s+([A-Za-zà-ÿ]+ \d{1,2},?\s*\d{4})`),
	}

	endDateRules = rules{
		regexp.MustCompile(`(?i)(?:termination|expir(?:ation|y)|end)\s+date[:\s]+([A-Za-zà-ÿ]+ \d{1,2},?\s*\d{4})`),
		regexp.MustCompile(`(?i)(?:termination|expir(?:ation|y)|end)\s+date[:\s]+(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})`),
		regexp.MustCompile(`(?i)(?:expires?|terminates?)\s+on\s+([A-Za-zà-ÿ]+ \d{1,2},?\s*\d{4})`),
		regexp.MustCompile(`(?i)(?:initial\s+term|term\s+of).*?(?:ending|until|through)\s+([A-Za-zà-ÿ]+ \d{1,2},?\s*\d{4})`),
		regexp.MustCompile(`(?i)through\s+([A-Za-zà-ÿ]+ \d{1,2},?\s*\d{4})`),
	}

	valueRules = rules{
		regexp.MustCompile(`(?i)(?:total|aggregate|contract|annual|maximum)\s+(?:contract\s+)?(?:value|amount|fee|consideration)[:\s]+[\$€£]?\s*([\d,\.]+)`),
		regexp.MustCompile(`(?i)[\$€£]\s*([\d,\.]+)\s*(?:per\s*(?:year|annum|month)|annually|/yr|/year)`),
		regexp.MustCompile(`(?i)(?:fee|payment|compensation)\s+of\s+[\$€£]?\s*([\d,\.]+)`),
		regexp.MustCompile(`(?i)financed\s+amount[:\s]+[\$€£]?\s*([\d,\.]+)`),
		regexp.MustCompile(`[\$€£]([\d,]+(?:\.\d+)?)`),
	}

	valueMultiplierRule = regexp.MustCompile(`(?i)[\$€£]([\d,\.]+)\s*(million|thousand)`)

	digitsRule = regexp.MustCompile(`\d+`)

	titleRules = rules{
		regexp.MustCompile(`(?im)^\s*((?:[A-Z][A-Za-z]*\s+){0,6}AGREEMENT)\s*$`),
		regexp.MustCompile(`(?i)this\s+([A-Za-z ]{3,60}?agreement)`),
	}

	autoRenewRule = regexp.MustCompile(`(?i)auto.?renew|automatic.?renewal|automatically\s+renew|(?:re)?conduction\s+tacite|tacite\s+reconduction`)

	noticeDaysRules = rules{
		regexp.MustCompile(`(?i)(\d{1,3})\s*days?['’]?\s*(?:prior\s+)?(?:written\s+)?notice`),
		regexp.MustCompile(`(?i)notice\s+(?:period\s+)?of\s+(\d{1,3})\s*days?`),
		regexp.MustCompile(`(?i)préavis\s+de\s+(\d{1,3})\s*jours?`),
	}
)

// classifierKeywords drive the single-label contract classifier, checked in
// constants.ClassificationOrder; first category whose pattern matches wins,
// SERVICE when none does.
var classifierKeywords = map[constants.ContractType]*regexp.Regexp{
	constants.ContractLicense:    regexp.MustCompile(`(?i)license|licensing|software|saas|subscription`),
	constants.ContractConsulting: regexp.MustCompile(`(?i)consulting|advisory|professional\s+services`),
	constants.ContractSupply:     regexp.MustCompile(`(?i)supply|procurement|purchase|vendor|delivery`),
	constants.ContractLease:      regexp.MustCompile(`(?i)lease|rental|property`),
	constants.ContractEmployment: regexp.MustCompile(`(?i)employment|executive|compensation|severance`),
}

// clauseMarkers pick out notable clause lines by keyword.
var clauseMarkers = []struct {
	clauseType string
	re         *regexp.Regexp
}{
	{"RENEWAL", regexp.MustCompile(`(?i)^.*(?:renew|reconduction).*$`)},
	{"TERMINATION", regexp.MustCompile(`(?i)^.*(?:terminat|résiliation).*$`)},
	{"PAYMENT", regexp.MustCompile(`(?i)^.*(?:payment\s+terms|payable|échéance).*$`)},
	{"CONFIDENTIALITY", regexp.MustCompile(`(?i)^.*(?:confidential|non.disclosure).*$`)},
}

// ContractExtractor turns raw contract text into a normalized contract record.
type ContractExtractor struct {
	Dates      dateparse.Parser
	Logger     *slog.Logger
	MaxTextLen int // input cap before extraction; 0 means the default
}

func NewContractExtractor(dates dateparse.Parser, logger *slog.Logger) *ContractExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContractExtractor{Dates: dates, Logger: logger}
}

func (e *ContractExtractor) Extract(text string, sourceFile string) entity.Contract {
	text = normalizeText(text, e.MaxTextLen)

	c := entity.Contract{
		SourceFile:        sourceFile,
		ContractID:        contractID(sourceFile),
		Currency:          amount.DetectCurrency(text),
		Status:            "ACTIVE",
		PaymentTermsDays:  30,
		RenewalNoticeDays: 90,
	}

	c.Title = titleRules.firstOr(text, "Untitled Contract")
	c.Type = classify(text)
	c.Parties = extractParties(text)

	start := e.parseContractDate(startDateRules, text, SentinelStart)
	end := e.parseContractDate(endDateRules, text, SentinelEnd)
	c.StartDate = &start
	c.EndDate = &end

	if v, ok := extractValue(text); ok {
		c.Amount = &v
	}

	c.AutoRenew = autoRenewRule.MatchString(text)
	if n, ok := noticeDaysRules.first(text); ok {
		if days, err := amount.Parse(n); err == nil {
			c.RenewalNoticeDays = int(days.IntPart())
		}
	}
	c.Clauses = extractClauses(text)

	e.Logger.Debug("extract.contract.ok",
		"source", sourceFile,
		"contract_id", c.ContractID,
		"type", c.Type,
		"parties", len(c.Parties),
		"auto_renew", c.AutoRenew,
	)
	return c
}

func contractID(sourceFile string) string {
	stem := strings.TrimSuffix(filepath.Base(sourceFile), filepath.Ext(sourceFile))
	if m := digitsRule.FindString(stem); m != "" {
		for len(m) < 3 {
			m = "0" + m
		}
		return fmt.Sprintf("CTR-%s", m)
	}
	if stem == "" || stem == "." {
		return fmt.Sprintf("CONTRACT_%s", uuid.NewString()[:6])
	}
	return fmt.Sprintf("CONTRACT_%s", stem)
}

func classify(text string) constants.ContractType {
	for _, ct := range constants.ClassificationOrder {
		if classifierKeywords[ct].MatchString(text) {
			return ct
		}
	}
	return constants.ContractService
}

func extractParties(text string) []entity.Party {
	if m := betweenPairRule.FindStringSubmatch(text); m != nil {
		return []entity.Party{
			{Name: capParty(m[1]), Role: constants.RoleVendor},
			{Name: capParty(m[2]), Role: constants.RoleClient},
		}
	}
	if v, ok := vendorRules.first(text); ok {
		return []entity.Party{{Name: capParty(v), Role: constants.RoleVendor}}
	}
	return []entity.Party{{Name: "Unknown Vendor", Role: constants.RoleUnknown}}
}

// capParty length-caps a captured party name to avoid runaway matches.
func capParty(name string) string {
	name = strings.TrimSpace(name)
	if len(name) > 60 {
		name = strings.TrimRight(name[:60], " ,.")
	}
	return name
}

func (e *ContractExtractor) parseContractDate(rs rules, text string, sentinel time.Time) time.Time {
	if raw, ok := rs.first(text); ok {
		if d, ok := e.Dates.ParseDate(raw); ok {
			return d
		}
	}
	return sentinel
}

// extractValue parses the contract value, honoring "million"/"thousand"
// multipliers when they follow the figure.
func extractValue(text string) (decimal.Decimal, bool) {
	raw, ok := valueRules.first(text)
	if !ok {
		return decimal.Zero, false
	}
	mult := decimal.NewFromInt(1)
	if m := valueMultiplierRule.FindStringSubmatch(text); m != nil {
		raw = m[1]
		if strings.EqualFold(m[2], "million") {
			mult = decimal.NewFromInt(1_000_000)
		} else {
			mult = decimal.NewFromInt(1_000)
		}
	}
	v, err := amount.Parse(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return v.Mul(mult).Round(2), true
}

func extractClauses(text string) []entity.Clause {
	var clauses []entity.Clause
	seen := map[string]struct{}{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, marker := range clauseMarkers {
			if _, dup := seen[marker.clauseType]; dup {
				continue
			}
			if marker.re.MatchString(line) {
				clauses = append(clauses, entity.Clause{
					Type:        marker.clauseType,
					Description: head(line, 200),
				})
				seen[marker.clauseType] = struct{}{}
			}
		}
	}
	return clauses
}

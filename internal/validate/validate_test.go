package validate

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finsight/docingest/constants"
	"github.com/finsight/docingest/internal/entity"
)

func dec(s string) *decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return &d
}

func fl(v float64) *float64 { return &v }

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func validInvoice() entity.Invoice {
	return entity.Invoice{
		InvoiceID: "INV-2024-0001",
		Vendor:    entity.Vendor{Name: "ACME Corp"},
		Client:    entity.Client{Name: "Widget SARL"},
		Date:      day(2024, time.March, 1),
		DueDate:   day(2024, time.March, 31),
		TotalHT:   dec("1000"),
		TaxRate:   fl(0.20),
		TotalTTC:  dec("1200"),
		Currency:  constants.EUR,
		Status:    constants.StatusUnpaid,
	}
}

func TestInvoiceValid(t *testing.T) {
	r := Invoice(validInvoice())
	if !r.IsValid {
		t.Fatalf("expected valid, got errors: %v", r.Errors)
	}
	if len(r.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", r.Warnings)
	}
}

func TestInvoiceErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*entity.Invoice)
		substr string
	}{
		{"missing id", func(i *entity.Invoice) { i.InvoiceID = "" }, "invoice_id"},
		{"missing vendor", func(i *entity.Invoice) { i.Vendor.Name = "UNKNOWN" }, "vendor"},
		{"missing total", func(i *entity.Invoice) { i.TotalTTC = nil }, "total_ttc"},
		{"negative total", func(i *entity.Invoice) { i.TotalTTC = dec("-5") }, "negative"},
		{"rate out of range", func(i *entity.Invoice) { i.TaxRate = fl(20) }, "between 0 and 1"},
		{"due before issue", func(i *entity.Invoice) {
			i.Date = day(2024, time.March, 31)
			i.DueDate = day(2024, time.March, 1)
		}, "due date"},
	}
	for _, tt := range tests {
		inv := validInvoice()
		tt.mutate(&inv)
		r := Invoice(inv)
		if r.IsValid {
			t.Errorf("%s: expected invalid", tt.name)
			continue
		}
		found := false
		for _, e := range r.Errors {
			if strings.Contains(e, tt.substr) {
				found = true
			}
		}
		if !found {
			t.Errorf("%s: no error containing %q in %v", tt.name, tt.substr, r.Errors)
		}
	}
}

func TestInvoiceWarnings(t *testing.T) {
	inv := validInvoice()
	inv.TotalTTC = dec("1300") // 1000 * 1.20 != 1300
	r := Invoice(inv)
	if !r.IsValid {
		t.Fatalf("amount inconsistency must be a warning, got errors: %v", r.Errors)
	}
	if len(r.Warnings) == 0 || !strings.Contains(r.Warnings[0], "inconsistency") {
		t.Errorf("expected inconsistency warning, got %v", r.Warnings)
	}

	inv = validInvoice()
	inv.TaxRate = fl(0.17) // not a common VAT rate
	inv.TotalTTC = dec("1170")
	r = Invoice(inv)
	if !r.IsValid {
		t.Fatalf("unusual rate must be a warning: %v", r.Errors)
	}
	warned := false
	for _, w := range r.Warnings {
		if strings.Contains(w, "unusual tax rate") {
			warned = true
		}
	}
	if !warned {
		t.Errorf("expected unusual-rate warning, got %v", r.Warnings)
	}

	inv = validInvoice()
	inv.TotalHT = nil
	inv.TaxRate = nil
	inv.TotalTTC = dec("0")
	r = Invoice(inv)
	if !r.IsValid {
		t.Fatalf("zero total must be a warning: %v", r.Errors)
	}
}

func TestContractValidation(t *testing.T) {
	c := entity.Contract{
		ContractID: "CTR-001",
		Title:      "Service Agreement",
		StartDate:  day(2024, time.January, 1),
		EndDate:    day(2025, time.January, 1),
		Parties: []entity.Party{
			{Name: "A", Role: constants.RoleVendor},
			{Name: "B", Role: constants.RoleClient},
		},
		Amount: dec("5000"),
	}
	if r := Contract(c); !r.IsValid {
		t.Fatalf("expected valid: %v", r.Errors)
	}

	c.EndDate = day(2023, time.January, 1)
	if r := Contract(c); r.IsValid {
		t.Error("end before start must be an error")
	}
	c.EndDate = day(2025, time.January, 1)

	c.Parties = c.Parties[:1]
	if r := Contract(c); !r.IsValid || len(r.Warnings) == 0 {
		t.Error("single party should warn, not fail")
	}

	c.Parties = nil
	if r := Contract(c); r.IsValid {
		t.Error("no parties must be an error")
	}

	c.Parties = []entity.Party{
		{Name: "A", Role: constants.RoleUnknown},
		{Name: "B", Role: constants.RoleUnknown},
	}
	r := Contract(c)
	warned := false
	for _, w := range r.Warnings {
		if strings.Contains(w, "roles") {
			warned = true
		}
	}
	if !warned {
		t.Errorf("all-unknown roles should warn, got %v", r.Warnings)
	}
}

func TestBudgetValidation(t *testing.T) {
	row := entity.BudgetRow{
		Department: "Marketing",
		Budget:     dec("100000"),
		Actual:     dec("115000"),
		Variance:   dec("15000"),
	}
	if r := Budget(row); !r.IsValid {
		t.Fatalf("expected valid: %v", r.Errors)
	}

	// 115000 - 100000 = 15000, not 14000: arithmetic error.
	row.Variance = dec("14000")
	r := Budget(row)
	if r.IsValid {
		t.Fatal("variance mismatch must be an error")
	}
	if !strings.Contains(r.Errors[0], "variance inconsistency") {
		t.Errorf("error = %q", r.Errors[0])
	}

	row.Variance = dec("15000")
	row.Budget = dec("-1")
	if r := Budget(row); r.IsValid {
		t.Error("negative budget must be an error")
	}

	if r := Budget(entity.BudgetRow{}); r.IsValid {
		t.Error("missing department and budget must be errors")
	}
}

func TestSimilarity(t *testing.T) {
	if s := similarity("ACME Corp", "acme corp"); s != 1.0 {
		t.Errorf("case-insensitive match = %v, want 1.0", s)
	}
	if s := similarity("  ACME Corp ", "ACME Corp"); s != 1.0 {
		t.Errorf("whitespace-trimmed match = %v, want 1.0", s)
	}
	if s := similarity("ACME Corporation", "ACME Corp"); s <= 0.7 {
		t.Errorf("near match = %v, want > 0.7", s)
	}
	if s := similarity("ACME Corp", "Globex LLC"); s >= 0.5 {
		t.Errorf("different names = %v, want < 0.5", s)
	}
	if s := similarity("", ""); s != 1.0 {
		t.Errorf("empty vs empty = %v, want 1.0", s)
	}
}

func TestDetectDuplicates(t *testing.T) {
	d1 := day(2024, time.March, 1)
	fps := []Fingerprint{
		{Key: "INV-1", Name: "ACME Corp", Amount: dec("1200"), Date: d1},
		{Key: "INV-2", Name: "  acme corp ", Amount: dec("1200"), Date: d1}, // same, noisier
		{Key: "INV-3", Name: "Globex LLC", Amount: dec("980"), Date: day(2024, time.April, 2)},
	}
	dups := DetectDuplicates(fps, DuplicateThreshold)
	if len(dups) != 1 {
		t.Fatalf("got %d duplicates, want 1: %+v", len(dups), dups)
	}
	if dups[0].KeyA != "INV-1" || dups[0].KeyB != "INV-2" {
		t.Errorf("duplicate pair = %s/%s", dups[0].KeyA, dups[0].KeyB)
	}
	if dups[0].Similarity < DuplicateThreshold {
		t.Errorf("similarity = %v, want >= %v", dups[0].Similarity, DuplicateThreshold)
	}
}

func TestDetectDuplicatesAtExactThreshold(t *testing.T) {
	// 20-char names sharing a 19-char block: 2*19/40 = 0.95 exactly.
	fps := []Fingerprint{
		{Key: "INV-1", Name: "Global Services Corp"},
		{Key: "INV-2", Name: "Global Services Core"},
	}
	if s := similarity(fps[0].Name, fps[1].Name); s != DuplicateThreshold {
		t.Fatalf("similarity = %v, want exactly %v", s, DuplicateThreshold)
	}
	dups := DetectDuplicates(fps, DuplicateThreshold)
	if len(dups) != 1 {
		t.Fatalf("pair at exactly the threshold must be reported, got %+v", dups)
	}
	if dups[0].Similarity != DuplicateThreshold {
		t.Errorf("similarity = %v", dups[0].Similarity)
	}
}

func TestDetectDuplicatesCustomThreshold(t *testing.T) {
	fps := []Fingerprint{
		{Key: "INV-1", Name: "Global Services Corp"},
		{Key: "INV-2", Name: "Global Services Core"},
	}
	if dups := DetectDuplicates(fps, 0.99); len(dups) != 0 {
		t.Errorf("raised threshold should exclude the pair: %+v", dups)
	}
	if dups := DetectDuplicates(fps, 0); len(dups) != 1 {
		t.Errorf("zero threshold should fall back to the default: %+v", dups)
	}
}

func TestAmountCloseness(t *testing.T) {
	if v := amountCloseness(*dec("1000"), *dec("1000")); v != 1.0 {
		t.Errorf("equal amounts = %v, want 1.0", v)
	}
	if v := amountCloseness(*dec("1000"), *dec("995")); v <= 0.99 {
		t.Errorf("within a percent = %v, want > 0.99", v)
	}
	if v := amountCloseness(*dec("1000"), *dec("900")); v != 0 {
		t.Errorf("ten percent apart = %v, want 0", v)
	}
	if v := amountCloseness(*dec("1000"), *dec("-1000")); v != 0 {
		t.Errorf("opposite signs = %v, want 0", v)
	}
}

func TestDetectAnomalies(t *testing.T) {
	values := []decimal.Decimal{
		*dec("100"), *dec("102"), *dec("98"), *dec("101"),
		*dec("99"), *dec("103"), *dec("97"), *dec("100"),
		*dec("104"), *dec("96"), *dec("100"), *dec("100"),
		*dec("10000"),
	}
	anomalies := DetectAnomalies(values, DefaultAnomalySigma)
	if len(anomalies) != 1 {
		t.Fatalf("got %d anomalies, want 1", len(anomalies))
	}
	if anomalies[0].Index != 12 {
		t.Errorf("anomaly index = %d, want 12", anomalies[0].Index)
	}
	if anomalies[0].Sigmas <= 3 {
		t.Errorf("sigmas = %v, want > 3", anomalies[0].Sigmas)
	}
}

func TestDetectAnomaliesSmallOrFlatSamples(t *testing.T) {
	small := []decimal.Decimal{*dec("1"), *dec("1000000"), *dec("2")}
	if got := DetectAnomalies(small, 3.0); got != nil {
		t.Errorf("sample of 3 produced anomalies: %+v", got)
	}
	flat := []decimal.Decimal{*dec("5"), *dec("5"), *dec("5"), *dec("5")}
	if got := DetectAnomalies(flat, 3.0); got != nil {
		t.Errorf("zero-spread sample produced anomalies: %+v", got)
	}
}

func TestBatchSummary(t *testing.T) {
	var s BatchSummary

	ok := NewResult()
	s.Add(ok)

	bad := NewResult()
	bad.AddError("boom")
	bad.AddWarning("careful")
	s.Add(bad)

	if s.Total != 2 || s.Valid != 1 || s.Invalid != 1 || s.Warnings != 1 {
		t.Errorf("summary = %+v", s)
	}
	if !strings.Contains(s.String(), "2 records") {
		t.Errorf("String() = %q", s.String())
	}
}

package schema

import (
	"testing"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"lineItem/UsageAccountId", "line_item_usage_account_id"},
		{"reservation/EffectiveCost", "reservation_effective_cost"},
		{"resourceTags/user:CostCenter", "resource_tags_user_cost_center"},
		{"bill/BillingPeriodStartDate", "bill_billing_period_start_date"},
		{"identity/TimeInterval", "identity_time_interval"},
		{"Group", "group_col"},       // reserved word gets a suffix
		{"///", "unknown_column"},    // nothing left after normalization
		{"123abc", "col_123abc"},     // leading digit gets a prefix
		{"a__b--c", "a_b_c"},         // repeated separators collapse
		{"lineItem/7DayCost", "line_item_7_day_cost"}, // digit is mid-name, no prefix
	}
	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestColumnsFields(t *testing.T) {
	cols := Columns{
		{Category: "lineItem", Name: "UsageAccountId", Type: "String"},
		{Category: "lineItem", Name: "UsageStartDate", Type: "DateTime"},
		{Category: "lineItem", Name: "BlendedCost", Type: "BigDecimal"},
		{Category: "reservation", Name: "EffectiveCost", Type: "OptionalBigDecimal"},
		{Category: "reservation", Name: "EffectiveCost", Type: "OptionalBigDecimal"}, // duplicate
		{Category: "reservation", Name: "EffectiveCost", Type: "OptionalBigDecimal"}, // duplicate
		{Category: "savingsPlan", Name: "Region", Type: "SomethingNew"},              // unknown type
	}
	fields := cols.Fields()
	if len(fields) != len(cols) {
		t.Fatalf("expected %d fields, got %d", len(cols), len(fields))
	}
	want := []Field{
		{"line_item_usage_account_id", "STRING", true},
		{"line_item_usage_start_date", "TIMESTAMP", true},
		{"line_item_blended_cost", "BIGNUMERIC", true},
		{"reservation_effective_cost", "BIGNUMERIC", true},
		{"reservation_effective_cost_1", "BIGNUMERIC", true},
		{"reservation_effective_cost_2", "BIGNUMERIC", true},
		{"savings_plan_region", "STRING", true},
	}
	for i, w := range want {
		if fields[i] != w {
			t.Errorf("field %d = %+v, want %+v", i, fields[i], w)
		}
	}
}

func TestNormalizeNameIsDeterministic(t *testing.T) {
	// Loads read the same CSV headers across runs, so the same input must
	// always produce byte-identical output.
	in := "resourceTags/aws:autoscaling:groupName"
	first := NormalizeName(in)
	for i := 0; i < 10; i++ {
		if got := NormalizeName(in); got != first {
			t.Fatalf("normalization not stable: %q vs %q", got, first)
		}
	}
}

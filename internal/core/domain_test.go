package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-08-31")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.String() != "2026-08-31" {
		t.Errorf("String() = %q, want 2026-08-31", d.String())
	}

	for _, bad := range []string{"", "31-08-2026", "2026/08/31", "not a date"} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("ParseDate(%q) = %v, want ErrInvalidDate", bad, err)
		}
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2026, 8, 31)
	raw, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `"2026-08-31"` {
		t.Fatalf("marshal = %s", raw)
	}

	var back Date
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d.Time) {
		t.Errorf("round trip changed the date: %v != %v", back, d)
	}

	var zero Date
	if err := json.Unmarshal([]byte(`""`), &zero); err != nil {
		t.Fatalf("unmarshal empty: %v", err)
	}
	if !zero.IsZero() {
		t.Errorf("empty string should decode to the zero date")
	}
}

func TestExpenseDraftValidate(t *testing.T) {
	valid := ExpenseDraft{
		Amount:          Money{Cents: 1200},
		Date:            NewDate(2026, 8, 30),
		CategoryID:      "cat-1",
		PaymentMethodID: "pm-1",
		GroupID:         "grp-1",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid draft rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*ExpenseDraft)
		want   error
	}{
		{"zero amount", func(d *ExpenseDraft) { d.Amount = Money{} }, ErrInvalidAmount},
		{"zero date", func(d *ExpenseDraft) { d.Date = Date{} }, ErrInvalidDate},
		{"missing category", func(d *ExpenseDraft) { d.CategoryID = " " }, ErrMissingCategory},
		{"missing payment method", func(d *ExpenseDraft) { d.PaymentMethodID = "" }, ErrMissingPayment},
		{"missing group", func(d *ExpenseDraft) { d.GroupID = "" }, ErrMissingGroup},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := valid
			tt.mutate(&draft)
			if err := draft.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRegistrationValidate(t *testing.T) {
	valid := Registration{Username: "sam", Email: "sam@example.com", Password: "longenough"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid registration rejected: %v", err)
	}

	short := valid
	short.Password = "short"
	if err := short.Validate(); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("short password: got %v, want ErrWeakPassword", err)
	}

	noUser := valid
	noUser.Username = ""
	if err := noUser.Validate(); err == nil {
		t.Errorf("missing username should fail")
	}
}

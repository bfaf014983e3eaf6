package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateTerms(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		terms   LoanTerms
		wantErr error
	}{
		{
			name:  "valid terms",
			terms: LoanTerms{Principal: decimal.NewFromInt(5_000_000), AnnualRate: decimal.NewFromInt(18), TermMonths: 24},
		},
		{
			name:  "zero rate allowed",
			terms: LoanTerms{Principal: decimal.NewFromInt(1_200_000), AnnualRate: decimal.Zero, TermMonths: 6},
		},
		{
			name:    "zero principal",
			terms:   LoanTerms{Principal: decimal.Zero, AnnualRate: decimal.NewFromInt(18), TermMonths: 24},
			wantErr: ErrInvalidTerms,
		},
		{
			name:    "negative principal",
			terms:   LoanTerms{Principal: decimal.NewFromInt(-1), AnnualRate: decimal.NewFromInt(18), TermMonths: 24},
			wantErr: ErrInvalidTerms,
		},
		{
			name:    "principal above maximum",
			terms:   LoanTerms{Principal: decimal.RequireFromString("1000000000001"), AnnualRate: decimal.NewFromInt(18), TermMonths: 24},
			wantErr: ErrInvalidTerms,
		},
		{
			name:    "negative rate",
			terms:   LoanTerms{Principal: decimal.NewFromInt(1000), AnnualRate: decimal.NewFromInt(-1), TermMonths: 24},
			wantErr: ErrInvalidRate,
		},
		{
			name:    "rate above maximum",
			terms:   LoanTerms{Principal: decimal.NewFromInt(1000), AnnualRate: decimal.NewFromInt(1001), TermMonths: 24},
			wantErr: ErrInvalidRate,
		},
		{
			name:    "zero term",
			terms:   LoanTerms{Principal: decimal.NewFromInt(1000), AnnualRate: decimal.NewFromInt(18), TermMonths: 0},
			wantErr: ErrInvalidTerms,
		},
		{
			name:    "term above maximum",
			terms:   LoanTerms{Principal: decimal.NewFromInt(1000), AnnualRate: decimal.NewFromInt(18), TermMonths: MaxTermMonths + 1},
			wantErr: ErrInvalidTerms,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTerms(tt.terms)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateMemberID(t *testing.T) {
	t.Parallel()

	if err := ValidateMemberID("member-1"); err != nil {
		t.Fatalf("expected valid member ID, got %v", err)
	}

	if err := ValidateMemberID("   "); !errors.Is(err, ErrInvalidMemberID) {
		t.Fatalf("expected ErrInvalidMemberID, got %v", err)
	}

	if err := ValidateMemberID(strings.Repeat("m", MaxMemberIDLength+1)); !errors.Is(err, ErrInvalidMemberID) {
		t.Fatalf("expected ErrInvalidMemberID for long ID, got %v", err)
	}
}

func TestValidateDescription(t *testing.T) {
	t.Parallel()

	if err := ValidateDescription(""); err != nil {
		t.Fatalf("expected empty description to be allowed, got %v", err)
	}

	if err := ValidateDescription(strings.Repeat("x", MaxDescriptionLength+1)); !errors.Is(err, ErrInvalidDescription) {
		t.Fatalf("expected ErrInvalidDescription, got %v", err)
	}
}

func TestParsePaymentMethod(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    PaymentMethod
		wantErr bool
	}{
		{in: "", want: PaymentMethodCash},
		{in: "PSE", want: PaymentMethodPSE},
		{in: " tarjeta ", want: PaymentMethodCard},
		{in: "transferencia", want: PaymentMethodTransfer},
		{in: "bitcoin", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParsePaymentMethod(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidPaymentMethod) {
				t.Fatalf("%q: expected ErrInvalidPaymentMethod, got %v", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("%q: expected %s, got %s", tt.in, tt.want, got)
		}
	}
}

func TestValidateIdempotencyKey(t *testing.T) {
	t.Parallel()

	if err := ValidateIdempotencyKey("pay-1"); err != nil {
		t.Fatalf("expected valid key, got %v", err)
	}

	if err := ValidateIdempotencyKey(" "); !errors.Is(err, ErrInvalidIdempotencyKey) {
		t.Fatalf("expected ErrInvalidIdempotencyKey, got %v", err)
	}

	if err := ValidateReference(strings.Repeat("r", MaxReferenceLength+1)); !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference, got %v", err)
	}
}

func TestValidatePagination(t *testing.T) {
	t.Parallel()

	limit, offset, _ := ValidatePagination(0, -5)
	if limit != 50 || offset != 0 {
		t.Fatalf("expected defaults 50/0, got %d/%d", limit, offset)
	}

	limit, _, _ = ValidatePagination(5000, 0)
	if limit != 1000 {
		t.Fatalf("expected limit capped at 1000, got %d", limit)
	}
}

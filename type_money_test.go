package lotkeeper

import "testing"

func TestQuantityArithmetic(t *testing.T) {
	// Decimal arithmetic must be exact for the classic float traps.
	got := Q(0.1).Add(Q(0.2))
	if !got.Equal(Q(0.3)) {
		t.Errorf("0.1 + 0.2 = %s, want 0.3", got)
	}
	if got := Q(100).Sub(Q(25)); !got.Equal(Q(75)) {
		t.Errorf("100 - 25 = %s, want 75", got)
	}
	if !Q(10).Min(Q(3)).Equal(Q(3)) {
		t.Errorf("Min(10, 3) != 3")
	}
	if !Q(2).Min(Q(3)).Equal(Q(2)) {
		t.Errorf("Min(2, 3) != 2")
	}
}

func TestParseQuantity(t *testing.T) {
	q, err := ParseQuantity("12.5")
	if err != nil {
		t.Fatal(err)
	}
	if !q.Equal(Q(12.5)) {
		t.Errorf("ParseQuantity(12.5) = %s", q)
	}
	if _, err := ParseQuantity("twelve"); err == nil {
		t.Error("expected error for non-numeric quantity")
	}
}

func TestMoneyArithmetic(t *testing.T) {
	price := USD(400)
	if got := price.Mul(Q(2.5)); !got.Equal(USD(1000)) {
		t.Errorf("400 * 2.5 = %s, want 1000", got)
	}
	if got := USD(1000).Sub(USD(250.50)); !got.Equal(USD(749.50)) {
		t.Errorf("1000 - 250.50 = %s, want 749.50", got)
	}
	if got := USD(-12).Abs(); !got.Equal(USD(12)) {
		t.Errorf("Abs(-12) = %s", got)
	}
	if !USD(-1).IsNegative() || USD(1).IsNegative() {
		t.Error("IsNegative is wrong")
	}
}

func TestMoneyMismatchedCurrencyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic adding USD to EUR")
		}
	}()
	USD(1).Add(M(1, "EUR"))
}

func TestMoneyString(t *testing.T) {
	tests := []struct {
		in   Money
		want string
	}{
		{USD(1234.5), "$1,234.50"},
		{USD(0), "$0.00"},
		{USD(-12), "-$12.00"},
	}
	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
	if got := USD(10).SignedString(); got != "+$10.00" {
		t.Errorf("SignedString() = %q, want +$10.00", got)
	}
}

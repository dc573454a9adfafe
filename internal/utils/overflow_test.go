package utils

import "testing"

func TestCheckMultiplyOverflow(t *testing.T) {
	tests := []struct {
		name    string
		a, b    uint64
		wantErr bool
	}{
		{"small numbers", 10, 20, false},
		{"zero operand", 0, 1 << 63, false},
		{"just fits", 2, 1 << 62, false},
		{"overflows", 1 << 63, 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckMultiplyOverflow(tt.a, tt.b)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckMultiplyOverflow(%d,%d) error = %v, wantErr %v", tt.a, tt.b, err, tt.wantErr)
			}
		})
	}
}

func TestSafeMultiply(t *testing.T) {
	v, err := SafeMultiply(3, 4)
	if err != nil || v != 12 {
		t.Fatalf("SafeMultiply(3,4) = %d, %v, want 12, nil", v, err)
	}
	if _, err := SafeMultiply(1<<63, 2); err == nil {
		t.Fatal("expected overflow error")
	}
}

func TestValidateBufferSize(t *testing.T) {
	if err := ValidateBufferSize(0, 100, "x"); err == nil {
		t.Fatal("expected error for zero size")
	}
	if err := ValidateBufferSize(200, 100, "x"); err == nil {
		t.Fatal("expected error for oversized")
	}
	if err := ValidateBufferSize(50, 100, "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

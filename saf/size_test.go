package saf

import (
	"errors"
	"testing"
)

func TestThreshold(t *testing.T) {
	tests := []struct {
		value   int64
		unit    string
		want    int64
		wantErr bool
	}{
		{value: 500, unit: "MB", want: 500_000_000},
		{value: 1, unit: "mb", want: 1_000_000},
		{value: 2, unit: "GB", want: 2_000_000_000},
		{value: 3, unit: "", want: 3_000_000_000},
		{value: 0, unit: "MB", wantErr: true},
		{value: -1, unit: "GB", wantErr: true},
	}
	for _, tt := range tests {
		got, err := Threshold(tt.value, tt.unit)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidThreshold) {
				t.Errorf("Threshold(%d, %q) error = %v, want ErrInvalidThreshold", tt.value, tt.unit, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("Threshold(%d, %q) = %d, %v; want %d", tt.value, tt.unit, got, err, tt.want)
		}
	}
}

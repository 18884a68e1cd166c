package database

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/multi-agent/spoolgen/internal/config"
)

func TestNewPoolNotConfigured(t *testing.T) {
	_, err := NewPool(context.Background(), &config.Config{})
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

func TestNewPoolBadConnString(t *testing.T) {
	_, err := NewPool(context.Background(), &config.Config{PostgresConnStr: "postgres://%zz"})
	if err == nil {
		t.Error("expected parse error")
	}
}

func TestSafeInt32(t *testing.T) {
	tests := []struct {
		in   int
		want int32
	}{
		{5, 5},
		{-1, 0},
		{math.MaxInt32 + 1, math.MaxInt32},
	}
	for _, tt := range tests {
		if got := safeInt32(tt.in, "x"); got != tt.want {
			t.Errorf("safeInt32(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

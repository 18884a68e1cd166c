// util_test.go: ClampInt / Env* / LoadFromEnv 表驱动测试。
package util

import (
	"testing"
	"time"
)

func TestClampInt(t *testing.T) {
	tests := []struct {
		name      string
		v, lo, hi int
		want      int
	}{
		{"below_min", -1, 1, 100, 1},
		{"above_max", 500, 1, 100, 100},
		{"in_range", 5, 1, 100, 5},
		{"at_min", 1, 1, 100, 1},
		{"at_max", 100, 1, 100, 100},
		{"negative_range", -5, -10, -1, -5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClampInt(tt.v, tt.lo, tt.hi)
			if got != tt.want {
				t.Errorf("ClampInt(%d, %d, %d) = %d, want %d", tt.v, tt.lo, tt.hi, got, tt.want)
			}
		})
	}
}

func TestEnvBool(t *testing.T) {
	tests := []struct {
		raw  string
		def  bool
		want bool
	}{
		{"1", false, true},
		{"TRUE", false, true},
		{" yes ", false, true},
		{"on", false, true},
		{"0", true, false},
		{"off", true, false},
		{"maybe", true, true},
		{"", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Setenv("UTIL_TEST_BOOL", tt.raw)
			if got := EnvBool("UTIL_TEST_BOOL", tt.def); got != tt.want {
				t.Errorf("EnvBool(%q, %v) = %v, want %v", tt.raw, tt.def, got, tt.want)
			}
		})
	}
}

func TestEnvInt_MinAndInvalid(t *testing.T) {
	t.Setenv("UTIL_TEST_INT", "abc")
	if got := EnvInt("UTIL_TEST_INT", 7, 1); got != 7 {
		t.Errorf("invalid: got %d, want 7", got)
	}
	t.Setenv("UTIL_TEST_INT", "-3")
	if got := EnvInt("UTIL_TEST_INT", 7, 1); got != 1 {
		t.Errorf("below min: got %d, want 1", got)
	}
	t.Setenv("UTIL_TEST_INT", "42")
	if got := EnvInt("UTIL_TEST_INT", 7, 1); got != 42 {
		t.Errorf("valid: got %d, want 42", got)
	}
}

func TestLoadFromEnv(t *testing.T) {
	type cfg struct {
		Name    string        `env:"UTIL_TEST_NAME" default:"svc"`
		Rows    int           `env:"UTIL_TEST_ROWS" default:"100" min:"1"`
		Probe   bool          `env:"UTIL_TEST_PROBE" default:"false"`
		Ratio   float64       `env:"UTIL_TEST_RATIO" default:"0.5"`
		Timeout time.Duration `env:"UTIL_TEST_TIMEOUT" default:"30" min:"1"`
		Ignored string
	}

	t.Setenv("UTIL_TEST_ROWS", "0")
	t.Setenv("UTIL_TEST_PROBE", "1")
	t.Setenv("UTIL_TEST_TIMEOUT", "5")

	var c cfg
	LoadFromEnv(&c)

	if c.Name != "svc" {
		t.Errorf("Name = %q, want svc", c.Name)
	}
	if c.Rows != 1 {
		t.Errorf("Rows = %d, want clamp to 1", c.Rows)
	}
	if !c.Probe {
		t.Error("Probe = false, want true")
	}
	if c.Ratio != 0.5 {
		t.Errorf("Ratio = %v, want 0.5", c.Ratio)
	}
	if c.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", c.Timeout)
	}
}

func TestLoadFromEnv_NilSafe(t *testing.T) {
	LoadFromEnv(nil)
	var notPtr struct{}
	LoadFromEnv(notPtr)
}

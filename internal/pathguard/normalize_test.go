package pathguard

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		style Style
		want  string
	}{
		{"empty", "", StyleWindows, ""},
		{"blank", "   \t ", StyleWindows, ""},
		{"appends separator", `C:\Users\me\Reports`, StyleWindows, `C:\Users\me\Reports\`},
		{"keeps separator", `C:\Users\me\Reports\`, StyleWindows, `C:\Users\me\Reports\`},
		{"foreign separator", "C:/Users/me/Reports", StyleWindows, `C:\Users\me\Reports\`},
		{"trims", "  C:\\data  ", StyleWindows, `C:\data\`},
		{"unc", `\\srv\share\x`, StyleWindows, `\\srv\share\x\`},
		{"posix", "/var/exports", StylePOSIX, "/var/exports/"},
		{"posix foreign", `\var\exports`, StylePOSIX, "/var/exports/"},
		{"posix root", "/", StylePOSIX, "/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in, tt.style); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"", " ", `C:\a`, "C:/a/b/", `\\srv\share`, "reports", "/x/y", " a b ", `C:\a\\`, "..", "x\t",
	}
	for _, style := range []Style{StyleWindows, StylePOSIX} {
		for _, in := range inputs {
			once := Normalize(in, style)
			if twice := Normalize(once, style); twice != once {
				t.Errorf("[%s] Normalize not idempotent for %q: %q then %q", style, in, once, twice)
			}
		}
	}
}

func TestHasTraversal(t *testing.T) {
	tests := []struct {
		in    string
		style Style
		want  bool
	}{
		{`reports\..\..\x\`, StyleWindows, true},
		{"..", StyleWindows, true},
		{`C:\a\..`, StyleWindows, true},
		{"C:/a/../b", StyleWindows, true},
		{`..\start`, StyleWindows, true},
		{`C:\a\..\`, StyleWindows, true},
		{`C:\a\...\b`, StyleWindows, true},
		{`C:\a\.. \b`, StyleWindows, true},
		{`C:\a\..b\c`, StyleWindows, false},
		{`C:\a\b..\c`, StyleWindows, false},
		{`C:\a\.\b`, StyleWindows, false},
		{`C:\Users\me`, StyleWindows, false},
		{"/a/../b", StylePOSIX, true},
		{`/a\..\b`, StylePOSIX, true},
		{"/a/..b/c", StylePOSIX, false},
		{"/a/.../c", StylePOSIX, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := HasTraversal(tt.in, tt.style); got != tt.want {
				t.Errorf("HasTraversal(%q, %s) = %v, want %v", tt.in, tt.style, got, tt.want)
			}
		})
	}
}

func TestHasTraversal_AnyPosition(t *testing.T) {
	segs := []string{"a", "b", "c", "d"}
	for i := 0; i <= len(segs); i++ {
		parts := append(append(append([]string{}, segs[:i]...), ".."), segs[i:]...)
		win := `C:\` + join(parts, `\`)
		posix := "/" + join(parts, "/")
		if !HasTraversal(win, StyleWindows) {
			t.Errorf("HasTraversal(%q) = false", win)
		}
		if !HasTraversal(posix, StylePOSIX) {
			t.Errorf("HasTraversal(%q) = false", posix)
		}
	}
}

func join(parts []string, sep string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += sep
		}
		out += p
	}
	return out
}

func TestIsAbsolute(t *testing.T) {
	tests := []struct {
		in    string
		style Style
		want  bool
	}{
		{`C:\x\`, StyleWindows, true},
		{"d:/x", StyleWindows, true},
		{`\\srv\share\`, StyleWindows, true},
		{`C:x`, StyleWindows, false},
		{`reports\x\`, StyleWindows, false},
		{`\x\`, StyleWindows, false},
		{"/x/", StylePOSIX, true},
		{`C:\x\`, StylePOSIX, false},
		{"x/y", StylePOSIX, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := IsAbsolute(tt.in, tt.style); got != tt.want {
				t.Errorf("IsAbsolute(%q, %s) = %v, want %v", tt.in, tt.style, got, tt.want)
			}
		})
	}
}

func TestIsAdminShare(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{`\\srv\C$\`, true},
		{`\\srv\c$\data\`, true},
		{`\\srv\ADMIN$\`, true},
		{`\\srv\admin$\x`, true},
		{`//srv/d$/`, true},
		{`\\?\UNC\srv\C$\`, true},
		{`\\srv\share\`, false},
		{`\\srv\data$\`, false},
		{`C:\C$\`, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := IsAdminShare(tt.in, StyleWindows); got != tt.want {
				t.Errorf("IsAdminShare(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
	if IsAdminShare(`\\srv\C$\`, StylePOSIX) {
		t.Error("POSIX style should never report admin share")
	}
}

func TestParent(t *testing.T) {
	tests := []struct {
		in    string
		style Style
		want  string
	}{
		{`C:\a\b\`, StyleWindows, `C:\a\`},
		{`C:\a\b`, StyleWindows, `C:\a\`},
		{`C:\a\`, StyleWindows, `C:\`},
		{`C:\`, StyleWindows, `C:\`},
		{`\\srv\share\dir\`, StyleWindows, `\\srv\share\`},
		{`\\srv\share\`, StyleWindows, `\\srv\share\`},
		{"/a/b/", StylePOSIX, "/a/"},
		{"/a/", StylePOSIX, "/"},
		{"/", StylePOSIX, "/"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Parent(tt.in, tt.style); got != tt.want {
				t.Errorf("Parent(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCanonicalKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`C:\Windows`, `c:\windows\`},
		{`C:\\Windows\\Temp`, `c:\windows\temp\`},
		{`C:\.\Windows\`, `c:\windows\`},
		{`C:\Windows.\`, `c:\windows\`},
		{`C:\Windows \Temp`, `c:\windows\temp\`},
		{`\\?\C:\Windows\`, `c:\windows\`},
		{`\\.\C:\Windows\`, `c:\windows\`},
		{`\\?\UNC\srv\share\`, `\\srv\share\`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := canonicalKey(tt.in, StyleWindows); got != tt.want {
				t.Errorf("canonicalKey(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

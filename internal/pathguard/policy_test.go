package pathguard

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	apperrors "github.com/multi-agent/spoolgen/pkg/errors"
)

func windowsPolicy(denyRaw string) *Policy {
	return New(NewSettings(StyleWindows, denyRaw, false))
}

func TestValidateExport_Windows(t *testing.T) {
	p := windowsPolicy("")

	tests := []struct {
		name     string
		in       string
		want     string
		wantCode string
		wantKind error
	}{
		{"accepts and normalizes", `C:\Users\me\Reports`, `C:\Users\me\Reports\`, "", nil},
		{"accepts forward slashes", "D:/exports/daily", `D:\exports\daily\`, "", nil},
		{"accepts unc share", `\\srv\exports\daily`, `\\srv\exports\daily\`, "", nil},
		{"required", "   ", "", CodeRequired, apperrors.ErrInvalidInput},
		{"double quote", `C:\x"y\`, "", CodeInvalidChars, apperrors.ErrInvalidInput},
		{"single quote", `C:\x'y\`, "", CodeInvalidChars, apperrors.ErrInvalidInput},
		{"ampersand", `C:\a&b\`, "", CodeInvalidChars, apperrors.ErrInvalidInput},
		{"semicolon", `C:\a;b\`, "", CodeInvalidChars, apperrors.ErrInvalidInput},
		{"pipe", `C:\a|b\`, "", CodeInvalidChars, apperrors.ErrInvalidInput},
		{"angle", `C:\a<b\`, "", CodeInvalidChars, apperrors.ErrInvalidInput},
		{"embedded newline", "C:\\a\nb\\", "", CodeInvalidChars, apperrors.ErrInvalidInput},
		{"embedded tab", "C:\\a\tb\\", "", CodeInvalidChars, apperrors.ErrInvalidInput},
		{"nul", "C:\\a\x00b\\", "", CodeInvalidChars, apperrors.ErrInvalidInput},
		{"traversal relative", `reports\..\..\x\`, "", CodeTraversal, apperrors.ErrInvalidInput},
		{"traversal absolute", `C:\Users\..\Windows\`, "", CodeTraversal, apperrors.ErrInvalidInput},
		{"relative", `reports\daily`, "", CodeNotAbsolute, apperrors.ErrInvalidInput},
		{"drive relative", `C:reports`, "", CodeNotAbsolute, apperrors.ErrInvalidInput},
		{"admin share", `\\srv\C$\`, "", CodeAdminShare, apperrors.ErrForbidden},
		{"admin share named", `\\srv\ADMIN$\tmp`, "", CodeAdminShare, apperrors.ErrForbidden},
		{"system dir", `C:\Windows\Temp\`, "", CodeSystemPath, apperrors.ErrForbidden},
		{"system dir case", `c:\windows\temp`, "", CodeSystemPath, apperrors.ErrForbidden},
		{"system dir dot segment", `C:\.\Windows\Temp`, "", CodeSystemPath, apperrors.ErrForbidden},
		{"system dir doubled sep", `C:\\Program Files\\x`, "", CodeSystemPath, apperrors.ErrForbidden},
		{"system dir trailing dot", `C:\ProgramData.\x`, "", CodeSystemPath, apperrors.ErrForbidden},
		{"system dir device path", `\\?\C:\Windows\System32`, "", CodeSystemPath, apperrors.ErrForbidden},
		{"recycle bin", `C:\$Recycle.Bin\S-1`, "", CodeSystemPath, apperrors.ErrForbidden},
		{"short name program files", `C:\PROGRA~1\App\`, "", CodeSystemPath, apperrors.ErrForbidden},
		{"short name program files x86", `c:\progra~2\`, "", CodeSystemPath, apperrors.ErrForbidden},
		{"short name programdata", `C:\PROGRA~3\x`, "", CodeSystemPath, apperrors.ErrForbidden},
		{"similar name allowed", `C:\WindowsApps\exports`, `C:\WindowsApps\exports\`, "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.ValidateExport(tt.in)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("ValidateExport(%q) error = %v", tt.in, err)
				}
				if got != tt.want {
					t.Errorf("ValidateExport(%q) = %q, want %q", tt.in, got, tt.want)
				}
				return
			}
			if err == nil {
				t.Fatalf("ValidateExport(%q) = %q, want error %s", tt.in, got, tt.wantCode)
			}
			if code := apperrors.CodeOf(err); code != tt.wantCode {
				t.Errorf("code = %q, want %q (err=%v)", code, tt.wantCode, err)
			}
			if !errors.Is(err, tt.wantKind) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.wantKind)
			}
		})
	}
}

// TestValidateExport_CheckOrder 字符检查先于穿越检查，穿越先于绝对路径检查。
func TestValidateExport_CheckOrder(t *testing.T) {
	p := windowsPolicy("")

	_, err := p.ValidateExport(`..\a&b`)
	if code := apperrors.CodeOf(err); code != CodeInvalidChars {
		t.Errorf("chars+traversal: code = %q, want %q", code, CodeInvalidChars)
	}
	_, err = p.ValidateExport(`..\relative`)
	if code := apperrors.CodeOf(err); code != CodeTraversal {
		t.Errorf("traversal+relative: code = %q, want %q", code, CodeTraversal)
	}
	_, err = p.ValidateExport(`\\srv\C$\Windows\`)
	if code := apperrors.CodeOf(err); code != CodeAdminShare {
		t.Errorf("admin share before deny: code = %q, want %q", code, CodeAdminShare)
	}
}

func TestValidateExport_DenyOverride(t *testing.T) {
	p := windowsPolicy(`D:\secret; E:/vault ;;`)

	if _, err := p.ValidateExport(`D:\Secret\x`); apperrors.CodeOf(err) != CodeSystemPath {
		t.Errorf("override prefix not applied: %v", err)
	}
	if _, err := p.ValidateExport(`E:\vault\`); apperrors.CodeOf(err) != CodeSystemPath {
		t.Errorf("override prefix with foreign separator not applied: %v", err)
	}
	// 覆盖后不再使用内置默认值
	if _, err := p.ValidateExport(`C:\Windows\Temp\`); err != nil {
		t.Errorf("defaults should be replaced by override, got %v", err)
	}
}

func TestValidateExport_POSIX(t *testing.T) {
	p := New(NewSettings(StylePOSIX, "", false))

	if got, err := p.ValidateExport("/srv/exports"); err != nil || got != "/srv/exports/" {
		t.Errorf("ValidateExport(/srv/exports) = %q, %v", got, err)
	}
	if _, err := p.ValidateExport("/etc/cron.d"); apperrors.CodeOf(err) != CodeSystemPath {
		t.Errorf("/etc should be denied, got %v", err)
	}
	if _, err := p.ValidateExport("//etc/x"); apperrors.CodeOf(err) != CodeSystemPath {
		t.Errorf("//etc should be denied, got %v", err)
	}
	if _, err := p.ValidateExport("srv/exports"); apperrors.CodeOf(err) != CodeNotAbsolute {
		t.Errorf("relative should be rejected, got %v", err)
	}
	if _, err := p.ValidateExport(`C:\Users\me`); apperrors.CodeOf(err) != CodeNotAbsolute {
		t.Errorf("drive path under posix style should be rejected, got %v", err)
	}
}

func TestReload(t *testing.T) {
	p := windowsPolicy("")
	if _, err := p.ValidateExport(`D:\secret\`); err != nil {
		t.Fatalf("before reload: %v", err)
	}

	p.Reload(NewSettings(StyleWindows, `D:\secret`, false))

	if _, err := p.ValidateExport(`D:\secret\`); apperrors.CodeOf(err) != CodeSystemPath {
		t.Errorf("after reload: want SYSTEM_PATH_DENIED, got %v", err)
	}
	if got := p.Settings().Deny.Prefixes(); len(got) != 1 || got[0] != `D:\secret\` {
		t.Errorf("Prefixes = %q", got)
	}
}

func TestReload_Concurrent(t *testing.T) {
	p := windowsPolicy("")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = p.ValidateExport(`C:\Users\me\`)
		}()
		go func() {
			defer wg.Done()
			p.Reload(NewSettings(StyleWindows, "", false))
		}()
	}
	wg.Wait()
}

func TestValidateExport_Probe(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "plain.txt")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	p := New(NewSettings(StylePOSIX, "/proc", true))

	got, err := p.ValidateExport(root)
	if err != nil {
		t.Fatalf("writable dir: %v", err)
	}
	if got != Normalize(root, StylePOSIX) {
		t.Errorf("got %q", got)
	}
	leftovers, _ := filepath.Glob(filepath.Join(root, ".spool_path_test_*.tmp"))
	if len(leftovers) != 0 {
		t.Errorf("marker files left behind: %v", leftovers)
	}

	if _, err := p.ValidateExport(filepath.Join(root, "missing")); apperrors.CodeOf(err) != CodeNotFound {
		t.Errorf("missing dir: got %v", err)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("missing dir should classify as not found")
	}
	if _, err := p.ValidateExport(file); apperrors.CodeOf(err) != CodeNotADirectory {
		t.Errorf("file: got %v", err)
	}
}

func TestValidateExport_ProbeUnwritable(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root bypasses directory permissions")
	}
	root := t.TempDir()
	ro := filepath.Join(root, "ro")
	if err := os.Mkdir(ro, 0o500); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(ro, 0o700) })

	p := New(NewSettings(StylePOSIX, "/proc", true))
	_, err := p.ValidateExport(ro)
	if apperrors.CodeOf(err) != CodeUnwritable {
		t.Errorf("read-only dir: got %v", err)
	}
	if !errors.Is(err, apperrors.ErrForbidden) {
		t.Errorf("unwritable should classify as forbidden")
	}
}

// TestValidateExport_ProbeOnlyAfterPolicy 策略拒绝时不触发探测。
func TestValidateExport_ProbeOnlyAfterPolicy(t *testing.T) {
	p := windowsPolicy("")
	p.Reload(NewSettings(StyleWindows, "", true))
	called := false
	p.probe = func(string) error { called = true; return nil }

	if _, err := p.ValidateExport(`C:\Windows\`); err == nil {
		t.Fatal("want rejection")
	}
	if called {
		t.Error("probe ran for a rejected path")
	}
	if _, err := p.ValidateExport(`C:\Users\me\`); err != nil {
		t.Fatalf("allowed path: %v", err)
	}
	if !called {
		t.Error("probe not run for an allowed path")
	}
}

package pathguard

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const listOp = "PathPolicy.List"

// Root 目录选择器的入口。
type Root struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// Entry 子目录条目，Denied 表示选择器应置灰。
type Entry struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Denied bool   `json:"denied"`
}

// Listing 一次目录浏览的结果。Parent 在根目录时为 nil。
type Listing struct {
	Path        string  `json:"path"`
	Parent      *string `json:"parent"`
	Folders     []Entry `json:"folders"`
	FolderCount int     `json:"folder_count"`
}

// Roots 返回浏览入口。Windows: docsDir + 存在的盘符；POSIX: "/"。
func (p *Policy) Roots(docsDir string) []Root {
	s := p.settings.Load()
	if s.Style == StylePOSIX {
		return []Root{{Label: "/", Path: "/"}}
	}
	var roots []Root
	if docs := Normalize(docsDir, s.Style); docs != "" {
		roots = append(roots, Root{Label: "Documents", Path: docs})
	}
	for c := 'A'; c <= 'Z'; c++ {
		drive := string(c) + `:\`
		if _, err := os.Stat(drive); err == nil {
			roots = append(roots, Root{Label: drive, Path: drive})
		}
	}
	return roots
}

// List 宽松入口: 与 ValidateExport 相同的前置检查，拒绝进入黑名单/管理共享，
// 枚举子目录 (不跟随符号链接) 并逐项标注 Denied。
func (p *Policy) List(raw string) (*Listing, error) {
	s := p.settings.Load()

	dir, err := precheck(listOp, raw, s.Style)
	if err != nil {
		return nil, err
	}
	if IsAdminShare(dir, s.Style) {
		return nil, forbidden(listOp, CodeAdminShare, "administrative shares are not allowed")
	}
	if _, hit := s.Deny.Match(dir); hit {
		return nil, forbidden(listOp, CodeSystemPath, "access denied: path restricted by policy")
	}

	native := filepath.Clean(dir)
	info, err := os.Stat(native)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, notFound(listOp, "directory not found")
	case errors.Is(err, fs.ErrPermission):
		return nil, forbidden(listOp, CodePermissionDenied, "no permission to access this directory")
	case err != nil:
		return nil, invalid(listOp, CodeListFailed, "could not access the directory")
	case !info.IsDir():
		return nil, invalid(listOp, CodeNotADirectory, "path is not a directory")
	}

	dirents, err := os.ReadDir(native)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, forbidden(listOp, CodePermissionDenied, "no permission to list this directory")
		}
		return nil, invalid(listOp, CodeListFailed, "could not list the directory")
	}

	folders := make([]Entry, 0, len(dirents))
	for _, de := range dirents {
		// DirEntry.IsDir 基于 lstat 类型位，符号链接/junction 不计为目录。
		if !de.IsDir() {
			continue
		}
		child := Normalize(dir+de.Name(), s.Style)
		folders = append(folders, Entry{Name: de.Name(), Path: child, Denied: isDenied(s, child)})
	}
	sort.SliceStable(folders, func(i, j int) bool {
		return strings.ToLower(folders[i].Name) < strings.ToLower(folders[j].Name)
	})

	listing := &Listing{Path: dir, Folders: folders, FolderCount: len(folders)}
	if parent := Parent(dir, s.Style); !samePath(parent, dir, s.Style) {
		listing.Parent = &parent
	}
	return listing, nil
}

func samePath(a, b string, style Style) bool {
	if style == StyleWindows {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package pathmatch contains the pure path comparison helpers savesync uses to
// decide which mappings apply to which workspace folders and saved files.
// All comparisons are case-insensitive and separator-agnostic.
package pathmatch

import (
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🔧 flattenSeps rewrites backslash separators to forward slashes regardless of
// host OS. filepath.ToSlash only does this on Windows, but config files written
// there travel to other machines, so the flatten has to be unconditional.
func flattenSeps(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

// 🔧 normalize folds case and flattens separators for comparison
func normalize(p string) string {
	return strings.ToLower(flattenSeps(p))
}

// 🔍 IsRootOrNested reports whether candidate equals root or is a filesystem
// descendant of it. A trailing separator is appended to both sides before the
// prefix check, so "/foo2" is never treated as nested under "/foo".
func IsRootOrNested(candidate, root string) bool {
	c := normalize(candidate)
	r := normalize(root)
	if !strings.HasSuffix(c, "/") {
		c += "/"
	}
	if !strings.HasSuffix(r, "/") {
		r += "/"
	}
	return strings.HasPrefix(c, r)
}

// 🔍 HasRootPrefix reports whether path starts with root, case-insensitively,
// on a path-segment boundary. Unlike IsRootOrNested it is meant for file
// paths (the candidate is a file, the root is a directory).
func HasRootPrefix(path, root string) bool {
	p := normalize(path)
	r := normalize(root)
	if !strings.HasPrefix(p, r) {
		return false
	}
	rest := p[len(r):]
	return rest == "" || strings.HasSuffix(r, "/") || strings.HasPrefix(rest, "/")
}

// ♻️ RewritePath strips sourceRoot from the front of filePath and joins the
// remainder onto destRoot. The prefix match is re-validated character for
// character (case-insensitive, separator-normalized) instead of trusting the
// caller's guard; a mismatch is an error, never a silently mangled path.
func RewritePath(filePath, sourceRoot, destRoot string) (string, error) {
	if len(filePath) < len(sourceRoot) {
		return "", errors.Errorf("path %q is shorter than source root %q", filePath, sourceRoot)
	}
	head := flattenSeps(filePath[:len(sourceRoot)])
	if !strings.EqualFold(head, flattenSeps(sourceRoot)) {
		return "", errors.Errorf("path %q is not under source root %q", filePath, sourceRoot)
	}
	rest := filePath[len(sourceRoot):]
	if rest != "" && !strings.HasSuffix(head, "/") && rest[0] != '/' && rest[0] != '\\' {
		// "/foobar" under "/foo" would pass the raw prefix check
		return "", errors.Errorf("path %q does not split from %q on a segment boundary", filePath, sourceRoot)
	}
	rest = strings.TrimLeft(flattenSeps(rest), "/")
	return filepath.Join(destRoot, filepath.FromSlash(rest)), nil
}

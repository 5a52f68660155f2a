// Package pathx implements bucket object path arithmetic. Bucket paths are
// always "/"-separated and rooted at "/", independent of the host OS.
package pathx

import "strings"

// Join appends a file or folder name to a bucket path.
func Join(path, name string) string {
	if path == "" || path == "/" {
		return "/" + name
	}
	return strings.TrimSuffix(path, "/") + "/" + name
}

// Relative returns fullPath expressed relative to base, without a leading
// slash. If fullPath is not under base it is returned trimmed of its leading
// slash, so the result is always usable as an archive entry name.
func Relative(fullPath, base string) string {
	if base != "" && base != "/" {
		fullPath = strings.TrimPrefix(fullPath, strings.TrimSuffix(base, "/"))
	}
	return strings.TrimPrefix(fullPath, "/")
}

// Parent returns the parent path of a full object path, "/" for top-level
// objects.
func Parent(fullPath string) string {
	trimmed := strings.TrimSuffix(fullPath, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx <= 0 {
		return "/"
	}
	return trimmed[:idx]
}

package store

import (
	"fmt"
	"net/url"
	"runtime"
	"strings"
)

// PathToURI converts an OS filesystem path into a file: URI per RFC 8089,
// percent-encoding path segments per RFC 3986's reserved set while
// preserving UTF-8, Windows drive letters ("C:"), and UNC authorities.
func PathToURI(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")

	if strings.HasPrefix(path, "//") {
		// UNC path: //host/share/... -> file://host/share/...
		rest := strings.TrimPrefix(path, "//")
		parts := strings.SplitN(rest, "/", 2)
		authority := parts[0]
		tail := ""
		if len(parts) == 2 {
			tail = parts[1]
		}
		return "file://" + authority + "/" + encodeSegments(tail)
	}

	if len(path) >= 2 && path[1] == ':' && isDriveLetter(path[0]) {
		// Windows drive-letter path: C:/foo/bar -> file:///C:/foo/bar
		drive := path[:2]
		tail := strings.TrimPrefix(path[2:], "/")
		return "file:///" + drive + "/" + encodeSegments(tail)
	}

	if strings.HasPrefix(path, "/") {
		return "file://" + encodeSegments(path)
	}

	return "file:" + encodeSegments(path)
}

func isDriveLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func encodeSegments(path string) string {
	segs := strings.Split(path, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}

// URIToPath reverses PathToURI.
func URIToPath(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("store: parse URI: %w", err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("store: not a file URI: %q", uri)
	}

	rawPath := u.Path
	if rawPath == "" && u.Host == "" {
		rawPath = u.Opaque
	}
	decodedPath, err := url.PathUnescape(rawPath)
	if err != nil {
		return "", fmt.Errorf("store: decode URI path: %w", err)
	}

	if u.Host != "" {
		decodedHost, err := url.PathUnescape(u.Host)
		if err != nil {
			return "", fmt.Errorf("store: decode URI host: %w", err)
		}
		if isDriveLetterAuthority(decodedHost) {
			return decodedHost + decodedPath, nil
		}
		return "//" + decodedHost + decodedPath, nil
	}

	if len(decodedPath) >= 3 && decodedPath[0] == '/' && decodedPath[2] == ':' && isDriveLetter(decodedPath[1]) {
		return decodedPath[1:], nil
	}

	if runtime.GOOS == "windows" && strings.HasPrefix(decodedPath, "/") {
		trimmed := strings.TrimPrefix(decodedPath, "/")
		if len(trimmed) >= 2 && trimmed[1] == ':' {
			return trimmed, nil
		}
	}

	return decodedPath, nil
}

func isDriveLetterAuthority(host string) bool {
	return len(host) == 2 && isDriveLetter(host[0]) && host[1] == ':'
}

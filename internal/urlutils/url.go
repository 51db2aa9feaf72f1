// Package urlutils parses and validates the HTTPS URLs of source repositories
// and strips credentials from URLs before they are logged.
package urlutils

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	// ErrInvalidURL indicates that the provided URL is not valid
	ErrInvalidURL = errors.New("invalid URL format")

	// ErrInvalidHost indicates that the host is not an allowed source host
	ErrInvalidHost = errors.New("invalid source host")

	// ErrInvalidPath indicates that the URL path is not a valid repository path
	ErrInvalidPath = errors.New("invalid repository path")

	// ErrNotHTTPS indicates that the URL does not use HTTPS protocol
	ErrNotHTTPS = errors.New("URL must use HTTPS protocol")

	ownerRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,38}$`)
	repoRegex  = regexp.MustCompile(`^[a-zA-Z0-9_.-]{1,100}$`)
)

// HostPolicy decides which hosts source repositories may be fetched from.
// github.com and its subdomains are always allowed.
type HostPolicy struct {
	extra map[string]bool
}

// NewHostPolicy allows github.com plus the given enterprise hosts.
func NewHostPolicy(hosts ...string) *HostPolicy {
	p := &HostPolicy{extra: make(map[string]bool, len(hosts))}
	for _, h := range hosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			p.extra[h] = true
		}
	}
	return p
}

// Allows reports whether host is an accepted source host.
func (p *HostPolicy) Allows(host string) bool {
	host = strings.ToLower(host)
	if host == "github.com" || strings.HasSuffix(host, ".github.com") {
		return true
	}
	return p != nil && p.extra[host]
}

// ParseHTTPSURL parses and validates a source repository URL of the form
// https://host/owner/repo[.git]. A nil policy only allows github.com.
func ParseHTTPSURL(rawURL string, policy *HostPolicy) (*url.URL, error) {
	if strings.HasPrefix(rawURL, "git@") {
		return nil, ErrNotHTTPS
	}
	if !strings.HasPrefix(rawURL, "https://") {
		return nil, ErrInvalidURL
	}

	parsedURL, err := url.Parse(SanitizeURL(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	if !policy.Allows(parsedURL.Hostname()) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidHost, parsedURL.Host)
	}

	pathParts := strings.Split(strings.Trim(parsedURL.Path, "/"), "/")
	if len(pathParts) != 2 {
		return nil, fmt.Errorf("%w: URL must include owner and repository", ErrInvalidPath)
	}

	if !ownerRegex.MatchString(pathParts[0]) {
		return nil, fmt.Errorf("%w: invalid owner name format", ErrInvalidPath)
	}

	if !repoRegex.MatchString(strings.TrimSuffix(pathParts[1], ".git")) {
		return nil, fmt.Errorf("%w: invalid repository name format", ErrInvalidPath)
	}

	return parsedURL, nil
}

// RepositoryURL builds base/owner/repo.git.
func RepositoryURL(base, owner, repo string) string {
	return strings.TrimSuffix(base, "/") + "/" + owner + "/" + repo + ".git"
}

// SanitizeURL removes any credentials from the URL. Values that do not parse
// are returned unchanged.
func SanitizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.User == nil {
		return rawURL
	}
	u.User = nil
	return u.String()
}

package service

import (
	"fmt"
	"net/url"
	"strings"

	"ui-operator/internal/domain/entity"
)

// NavigationPolicy admits URLs whose origin matches one of the allowed origins.
// An allowed host written as "*.example.com" also admits any subdomain of it.
type NavigationPolicy struct {
	origins []origin
}

type origin struct {
	scheme   string
	host     string
	port     string
	wildcard bool
}

func NewNavigationPolicy(allowed []string) (*NavigationPolicy, error) {
	if len(allowed) == 0 {
		return nil, fmt.Errorf("navigation policy needs at least one allowed origin")
	}

	p := &NavigationPolicy{}
	for _, raw := range allowed {
		u, err := url.Parse(strings.TrimSpace(raw))
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid allowed origin %q", raw)
		}
		o := origin{
			scheme: strings.ToLower(u.Scheme),
			host:   strings.ToLower(u.Hostname()),
			port:   effectivePort(u),
		}
		if strings.HasPrefix(o.host, "*.") {
			o.wildcard = true
			o.host = strings.TrimPrefix(o.host, "*.")
		}
		p.origins = append(p.origins, o)
	}
	return p, nil
}

// Check returns a *entity.PolicyViolationError when target is not allowed.
func (p *NavigationPolicy) Check(target string) error {
	u, err := url.Parse(target)
	if err != nil {
		return &entity.PolicyViolationError{URL: target, Reason: "unparsable URL"}
	}
	if u.Scheme == "" || u.Host == "" {
		return &entity.PolicyViolationError{URL: target, Reason: "URL must be absolute"}
	}
	if u.User != nil {
		return &entity.PolicyViolationError{URL: target, Reason: "credentials in URL are not allowed"}
	}

	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	port := effectivePort(u)

	for _, o := range p.origins {
		if o.scheme != scheme || o.port != port {
			continue
		}
		if host == o.host {
			return nil
		}
		if o.wildcard && strings.HasSuffix(host, "."+o.host) {
			return nil
		}
	}
	return &entity.PolicyViolationError{URL: target, Reason: "origin not allowed"}
}

func effectivePort(u *url.URL) string {
	if port := u.Port(); port != "" {
		return port
	}
	switch strings.ToLower(u.Scheme) {
	case "https":
		return "443"
	case "http":
		return "80"
	}
	return ""
}

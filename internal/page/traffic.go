package page

import (
	"net/url"
	"strings"

	"github.com/lnnemml/pulse/internal/storage"
)

// Traffic source labels.
const (
	SourceDirect        = "direct"
	SourceReddit        = "reddit"
	SourceMeta          = "meta"
	SourceEmail         = "email"
	SourceOrganicGoogle = "organic_google"
	SourceOrganicBing   = "organic_bing"
	SourcePrelanding    = "prelanding"
	SourceReferral      = "referral"
)

// ResolveTrafficSource attributes the visit, in precedence order:
//  1. utm_source query parameter on the current URL (normalized; cached in
//     session storage for later same-session pages)
//  2. the cached utm_source from earlier in the session
//  3. referrer host matched against the fixed rule table
func (r *Resolver) ResolveTrafficSource() string {
	if utm := r.utmSource(); utm != "" {
		normalized := normalizeUTM(utm)
		storage.Put(r.scopes.Session, storage.KeyUTMCache, normalized)
		return normalized
	}
	if cached, ok := r.scopes.Session.Get(storage.KeyUTMCache); ok && cached != "" {
		return cached
	}
	return r.classifyReferrer()
}

func (r *Resolver) utmSource() string {
	u, err := url.Parse(r.location)
	if err != nil {
		return ""
	}
	return u.Query().Get("utm_source")
}

// normalizeUTM collapses vendor-specific utm_source spellings onto the
// canonical labels; unrecognized values pass through as-is.
func normalizeUTM(raw string) string {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "reddit"):
		return SourceReddit
	case strings.Contains(lower, "meta"), strings.Contains(lower, "facebook"), strings.Contains(lower, "instagram"):
		return SourceMeta
	case strings.Contains(lower, "email"), strings.Contains(lower, "newsletter"):
		return SourceEmail
	default:
		return lower
	}
}

func (r *Resolver) classifyReferrer() string {
	if r.referrer == "" {
		return SourceDirect
	}
	ref, err := url.Parse(r.referrer)
	if err != nil {
		return SourceReferral
	}
	host := strings.ToLower(ref.Hostname())

	if cur, err := url.Parse(r.location); err == nil && host == strings.ToLower(cur.Hostname()) {
		return SourceDirect
	}

	switch {
	case strings.HasSuffix(host, "reddit.com"):
		return SourceReddit
	case strings.Contains(host, "facebook."), strings.Contains(host, "instagram."):
		return SourceMeta
	case strings.Contains(host, "google."):
		return SourceOrganicGoogle
	case strings.Contains(host, "bing."):
		return SourceOrganicBing
	}
	for _, pre := range r.PrelandingHosts {
		if host == strings.ToLower(pre) {
			return SourcePrelanding
		}
	}
	return SourceReferral
}

// RedditContext is the subreddit and thread extracted from a reddit
// referrer, when present.
type RedditContext struct {
	Subreddit string
	ThreadID  string
}

// ResolveRedditContext parses subreddit and thread id out of a reddit.com
// referrer path (/r/<subreddit>/comments/<id>/...). Both fields are empty
// when the referrer is not a reddit thread.
func (r *Resolver) ResolveRedditContext() RedditContext {
	ref, err := url.Parse(r.referrer)
	if err != nil {
		return RedditContext{}
	}
	if !strings.HasSuffix(strings.ToLower(ref.Hostname()), "reddit.com") {
		return RedditContext{}
	}

	parts := strings.Split(strings.Trim(ref.Path, "/"), "/")
	var ctx RedditContext
	for i := 0; i < len(parts); i++ {
		switch {
		case parts[i] == "r" && i+1 < len(parts):
			ctx.Subreddit = parts[i+1]
		case parts[i] == "comments" && i+1 < len(parts):
			ctx.ThreadID = parts[i+1]
		}
	}
	return ctx
}

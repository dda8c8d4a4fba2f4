// Package page resolves page, device, visitor, and traffic-source context
// for event envelopes, plus the sliding-expiry session record.
package page

import (
	"net/url"
	"strings"

	"github.com/lnnemml/pulse/internal/browser"
	"github.com/lnnemml/pulse/internal/storage"
)

// Class is the page classification attached to envelopes.
type Class string

const (
	ClassHomepage Class = "homepage"
	ClassProduct  Class = "product"
	ClassCheckout Class = "checkout"
	ClassSuccess  Class = "success"
	ClassCart     Class = "cart"
	ClassFAQ      Class = "faq"
	ClassContent  Class = "content"
	ClassContact  Class = "contact"
	ClassOther    Class = "other"
)

// Device is the device classification derived from viewport width.
type Device string

const (
	DeviceMobile  Device = "mobile"
	DeviceTablet  Device = "tablet"
	DeviceDesktop Device = "desktop"
)

// Viewport width breakpoints (exclusive upper bounds).
const (
	mobileMaxWidth = 768
	tabletMaxWidth = 1024
)

// UserType distinguishes first-time visitors from returning ones.
type UserType string

const (
	UserNew       UserType = "new"
	UserReturning UserType = "returning"
	UserUnknown   UserType = "unknown"
)

// Resolver derives page classification, device class, visitor type,
// traffic attribution, and the session record from the current location,
// referrer, and persisted storage.
//
// The location is re-evaluated on every call (no caching) so client-side
// navigation is picked up automatically.
type Resolver struct {
	clock  browser.Clock
	scopes storage.Scopes
	ids    IDGenerator

	location      string
	referrer      string
	viewportWidth int

	// PrelandingHosts are referrer hosts classified as the pre-landing
	// funnel step rather than generic referrals.
	PrelandingHosts []string
}

// NewResolver creates a resolver for the given initial location and
// referrer. ids defaults to UUIDv7 generation when nil.
func NewResolver(clock browser.Clock, scopes storage.Scopes, location, referrer string, viewportWidth int, ids IDGenerator) *Resolver {
	if ids == nil {
		ids = UUIDv7Generator{}
	}
	return &Resolver{
		clock:         clock,
		scopes:        scopes,
		ids:           ids,
		location:      location,
		referrer:      referrer,
		viewportWidth: viewportWidth,
	}
}

// SetLocation updates the current location after a client-side navigation.
func (r *Resolver) SetLocation(location string) {
	r.location = location
}

// Location returns the current full URL.
func (r *Resolver) Location() string { return r.location }

// Path returns the current URL path, or the raw location when it does not
// parse.
func (r *Resolver) Path() string {
	u, err := url.Parse(r.location)
	if err != nil {
		return r.location
	}
	return u.Path
}

// ClassifyPage classifies the current URL path.
func (r *Resolver) ClassifyPage() Class {
	return ClassifyPath(r.Path())
}

// ClassifyPath classifies a URL path into a page class.
func ClassifyPath(path string) Class {
	p := strings.ToLower(path)
	switch {
	case p == "" || p == "/" || p == "/index.html":
		return ClassHomepage
	case strings.Contains(p, "product"):
		return ClassProduct
	case strings.Contains(p, "checkout"):
		return ClassCheckout
	case strings.Contains(p, "success") || strings.Contains(p, "thank"):
		return ClassSuccess
	case strings.Contains(p, "cart"):
		return ClassCart
	case strings.Contains(p, "faq"):
		return ClassFAQ
	case strings.Contains(p, "contact"):
		return ClassContact
	case strings.Contains(p, "blog") || strings.Contains(p, "article") || strings.Contains(p, "about") || strings.Contains(p, "guide"):
		return ClassContent
	default:
		return ClassOther
	}
}

// ClassifyDevice classifies the viewport width.
func (r *Resolver) ClassifyDevice() Device {
	switch {
	case r.viewportWidth < mobileMaxWidth:
		return DeviceMobile
	case r.viewportWidth < tabletMaxWidth:
		return DeviceTablet
	default:
		return DeviceDesktop
	}
}

// ResolveUserType checks the durable visitor marker, setting it on first
// call. Fails open to unknown when storage is unavailable.
func (r *Resolver) ResolveUserType() UserType {
	if _, seen := r.scopes.Durable.Get(storage.KeyVisitorMarker); seen {
		return UserReturning
	}
	if err := r.scopes.Durable.Set(storage.KeyVisitorMarker, "1"); err != nil {
		return UserUnknown
	}
	return UserNew
}

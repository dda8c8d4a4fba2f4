package browser

import "strings"

// Element is the capability descriptor for one DOM element: everything the
// classifiers need to know about an element, with the DOM itself left
// behind at the adapter boundary.
type Element struct {
	Tag     string   // lowercase tag name ("a", "button", "div")
	ID      string   // id attribute, may be empty
	Role    string   // ARIA role, may be empty
	Classes []string // class list
	Href    string   // href attribute for anchors, may be empty

	// Explicit interactive markers extracted by the adapter.
	HasClickHandler bool // onclick attribute or data-action marker
	TypeAttr        string

	// Computed-style affordance hints, used by the dead-click detector.
	Cursor    string // computed cursor style ("pointer", "default", ...)
	LinkColor bool   // text color matches the site's link affordance
}

// Field describes one form field for the form lifecycle tracker.
type Field struct {
	Name     string
	TypeAttr string
	Required bool
}

// interactiveTags is the tag allowlist for Interactive. Mirrors the
// interactive-selector list used on the site: links, buttons, and form
// controls.
var interactiveTags = map[string]bool{
	"a":        true,
	"button":   true,
	"input":    true,
	"select":   true,
	"textarea": true,
	"label":    true,
	"summary":  true,
}

// interactiveRoles is the ARIA role allowlist for Interactive.
var interactiveRoles = map[string]bool{
	"button":   true,
	"link":     true,
	"tab":      true,
	"checkbox": true,
	"menuitem": true,
}

// interactiveClassMarkers are class-name substrings that mark an element as
// intentionally clickable even without a native interactive tag.
var interactiveClassMarkers = []string{"btn", "button", "cta", "clickable", "toggle", "accordion"}

// Interactive reports whether the element is expected to respond to clicks.
// This is the explicit capability classifier: a pure function of the
// descriptor, independent of any real DOM.
func Interactive(el Element) bool {
	if interactiveTags[el.Tag] {
		return true
	}
	if interactiveRoles[el.Role] {
		return true
	}
	if el.HasClickHandler {
		return true
	}
	for _, class := range el.Classes {
		lower := strings.ToLower(class)
		for _, marker := range interactiveClassMarkers {
			if strings.Contains(lower, marker) {
				return true
			}
		}
	}
	return false
}

// Identity returns a stable identity string for same-target comparison in
// the click-rage classifier. Falls back through id, tag+classes.
func (el Element) Identity() string {
	if el.ID != "" {
		return el.Tag + "#" + el.ID
	}
	if len(el.Classes) > 0 {
		return el.Tag + "." + strings.Join(el.Classes, ".")
	}
	return el.Tag
}

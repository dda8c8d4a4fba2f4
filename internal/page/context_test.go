package page

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lnnemml/pulse/internal/storage"
	"github.com/lnnemml/pulse/internal/testutil"
)

func newTestResolver(location, referrer string, width int) (*Resolver, storage.Scopes) {
	scopes := storage.Scopes{Session: storage.NewMemory(), Durable: storage.NewMemory()}
	clock := testutil.NewManualClock()
	r := NewResolver(clock, scopes, location, referrer, width, NewFixedGenerator("s-1", "s-2", "s-3"))
	return r, scopes
}

func TestClassifyPath(t *testing.T) {
	tests := []struct {
		path string
		want Class
	}{
		{"/", ClassHomepage},
		{"/index.html", ClassHomepage},
		{"/product_isrib-a15.html", ClassProduct},
		{"/checkout.html", ClassCheckout},
		{"/success.html", ClassSuccess},
		{"/thank-you.html", ClassSuccess},
		{"/cart.html", ClassCart},
		{"/faq.html", ClassFAQ},
		{"/contact.html", ClassContact},
		{"/blog/how-it-works.html", ClassContent},
		{"/random-page", ClassOther},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyPath(tt.path))
		})
	}
}

func TestClassifyPage_FollowsNavigation(t *testing.T) {
	r, _ := newTestResolver("https://shop.test/", "", 1440)
	assert.Equal(t, ClassHomepage, r.ClassifyPage())

	r.SetLocation("https://shop.test/checkout.html")
	assert.Equal(t, ClassCheckout, r.ClassifyPage())
}

func TestClassifyDevice(t *testing.T) {
	tests := []struct {
		width int
		want  Device
	}{
		{375, DeviceMobile},
		{767, DeviceMobile},
		{768, DeviceTablet},
		{1023, DeviceTablet},
		{1024, DeviceDesktop},
		{1920, DeviceDesktop},
	}
	for _, tt := range tests {
		r, _ := newTestResolver("https://shop.test/", "", tt.width)
		assert.Equal(t, tt.want, r.ClassifyDevice(), "width %d", tt.width)
	}
}

func TestResolveUserType(t *testing.T) {
	r, scopes := newTestResolver("https://shop.test/", "", 1440)

	assert.Equal(t, UserNew, r.ResolveUserType(), "first visit")
	assert.Equal(t, UserReturning, r.ResolveUserType(), "marker set by first call")

	_, ok := scopes.Durable.Get(storage.KeyVisitorMarker)
	assert.True(t, ok)
}

func TestResolveUserType_StorageUnavailable(t *testing.T) {
	scopes := storage.Scopes{Session: storage.NewMemory(), Durable: storage.Unavailable{}}
	r := NewResolver(testutil.NewManualClock(), scopes, "https://shop.test/", "", 1440, NewFixedGenerator("s-1"))

	assert.Equal(t, UserUnknown, r.ResolveUserType())
}

// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"

	"github.com/dalemusser/nutrihub/internal/app/system/authz"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// DefaultSiteName is shown in the page chrome.
const DefaultSiteName = "NutriHub"

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(r, "Page Title", "/default-back"),
//	}
type BaseVM struct {
	SiteName string

	// User context (from auth middleware)
	IsLoggedIn bool
	UserName   string

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	// CSRF protection
	CSRFToken string
}

// NewBaseVM creates a populated BaseVM for a page.
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	name, _, signedIn := authz.UserCtx(r)
	return BaseVM{
		SiteName:    DefaultSiteName,
		IsLoggedIn:  signedIn,
		UserName:    name,
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
	}
}

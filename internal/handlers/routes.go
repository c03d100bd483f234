package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// RegisterRoutes registers the issuance, resolution, and administrative
// routes. Static paths win over the parameterized resolution routes, so the
// admin surface is reachable even though /{key} matches broadly.
func RegisterRoutes(api huma.API, links *LinkHandler, admin *AdminHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "add-redirect",
		Method:      http.MethodPost,
		Path:        "/add-redirect",
		Summary:     "Issue a signed redirect link",
		Description: "Validates the destination, mints a key and signed token, and returns the shareable URL forms.",
		Tags:        []string{"Links"},
	}, links.AddRedirect)

	huma.Register(api, huma.Operation{
		OperationID:   "resolve-path",
		Method:        http.MethodGet,
		Path:          "/{key}/{token}",
		Summary:       "Resolve a redirect link (path form)",
		Description:   "Verifies the token, gates automated traffic, and redirects to the destination or serves the challenge page.",
		Tags:          []string{"Links"},
		DefaultStatus: http.StatusFound,
	}, links.ResolvePath)

	huma.Register(api, huma.Operation{
		OperationID:   "resolve-query",
		Method:        http.MethodGet,
		Path:          "/{key}",
		Summary:       "Resolve a redirect link (query form)",
		Tags:          []string{"Links"},
		DefaultStatus: http.StatusFound,
	}, links.ResolveQuery)

	huma.Register(api, huma.Operation{
		OperationID:   "resolve-slug",
		Method:        http.MethodGet,
		Path:          "/s/{slug}/{token}",
		Summary:       "Resolve a redirect link (slug form)",
		Tags:          []string{"Links"},
		DefaultStatus: http.StatusFound,
	}, links.ResolveSlug)

	huma.Register(api, huma.Operation{
		OperationID: "list-redirects",
		Method:      http.MethodGet,
		Path:        "/redirects",
		Summary:     "List all redirect records",
		Tags:        []string{"Admin"},
	}, admin.ListRedirects)

	huma.Register(api, huma.Operation{
		OperationID: "update-redirect",
		Method:      http.MethodPut,
		Path:        "/redirects/{key}",
		Summary:     "Update a record's destination",
		Tags:        []string{"Admin"},
	}, admin.UpdateRedirect)

	huma.Register(api, huma.Operation{
		OperationID: "delete-redirect",
		Method:      http.MethodDelete,
		Path:        "/redirects/{key}",
		Summary:     "Delete a record",
		Tags:        []string{"Admin"},
	}, admin.DeleteRedirect)
}

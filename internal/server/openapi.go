package server

import (
	"context"
	_ "embed"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/gin-gonic/gin"
)

// siteSchema names the schema whose enum lists the managed sites.
const siteSchema = "Site"

//go:embed openapi.yaml
var embeddedDocument []byte

// LoadDocument loads and validates the API document at path, or the embedded
// one when path is empty.
func LoadDocument(ctx context.Context, path string) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	var (
		doc *openapi3.T
		err error
	)
	if path == "" {
		doc, err = loader.LoadFromData(embeddedDocument)
	} else {
		doc, err = loader.LoadFromFile(path)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load API document")
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, errors.Wrap(err, "invalid API document")
	}
	return doc, nil
}

// Sites returns the managed sites listed by the document.
func Sites(doc *openapi3.T) ([]string, error) {
	if doc.Components == nil {
		return nil, errors.New("API document has no components")
	}

	ref, ok := doc.Components.Schemas[siteSchema]
	if !ok || ref == nil || ref.Value == nil {
		return nil, errors.Newf("API document has no %s schema", siteSchema)
	}

	sites := make([]string, 0, len(ref.Value.Enum))
	for _, v := range ref.Value.Enum {
		site, ok := v.(string)
		if !ok {
			return nil, errors.Newf("%s enum holds a non-string value %v", siteSchema, v)
		}
		sites = append(sites, site)
	}
	if len(sites) == 0 {
		return nil, errors.Newf("%s enum is empty", siteSchema)
	}
	return sites, nil
}

// Validator checks incoming requests against the API document.
type Validator struct {
	router routers.Router
}

// NewValidator builds a validator for doc.
func NewValidator(doc *openapi3.T) (*Validator, error) {
	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request router")
	}
	return &Validator{router: router}, nil
}

// Middleware rejects requests that break the document with 400 and the
// validation message. Requests outside the document pass through untouched.
func (v *Validator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route, pathParams, err := v.router.FindRoute(c.Request)
		if err != nil {
			c.Next()
			return
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    c.Request,
			PathParams: pathParams,
			Route:      route,
			Options: &openapi3filter.Options{
				AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
			},
		}
		if err := openapi3filter.ValidateRequest(c.Request.Context(), input); err != nil {
			c.String(http.StatusBadRequest, err.Error())
			c.Abort()
			return
		}

		c.Next()
	}
}

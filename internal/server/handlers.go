package server

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"

	"github.com/opteama/wifi-aps/internal/inventory"
)

// Reply texts.
const (
	textOrganizationNotFound = "Organization not found"
	textSiteNotFound         = "Site not found"
	textAPNotFound           = "AP not found"

	textAPCreated        = "AP created"
	textAPCreationFailed = "AP creation failed"
	textAPsCreated       = "APs created"
	textAPsCreateFailed  = "APs creation failed"
	textAPUpdated        = "AP updated"
	textAPUpdateFailed   = "AP update failed"
	textAPRemoved        = "AP removed"
	textAPRemovalFailed  = "AP removal failed"
)

func (s *Server) getAll(c *gin.Context) {
	aps, err := s.inventory.ListAll(c.Request.Context())
	if err != nil {
		logRequestError(c, s.logger, "listing failed", err)
		c.String(http.StatusNotFound, textOrganizationNotFound)
		return
	}
	c.JSON(http.StatusOK, aps)
}

func (s *Server) getBySite(c *gin.Context) {
	site, ok := bindPath(c, "site")
	if !ok {
		return
	}

	aps, err := s.inventory.ListSite(c.Request.Context(), site)
	if err != nil {
		logRequestError(c, s.logger, "site listing failed", err)
		c.String(http.StatusNotFound, textSiteNotFound)
		return
	}
	c.JSON(http.StatusOK, aps)
}

func (s *Server) getBySerial(c *gin.Context) {
	site, ok := bindPath(c, "site")
	if !ok {
		return
	}
	serial, ok := bindPath(c, "serial")
	if !ok {
		return
	}

	ap, err := s.inventory.Get(c.Request.Context(), site, serial)
	if err != nil {
		logRequestError(c, s.logger, "lookup failed", err)
		c.String(http.StatusNotFound, textAPNotFound)
		return
	}
	c.JSON(http.StatusOK, ap)
}

func (s *Server) create(c *gin.Context) {
	site, ok := bindPath(c, "site")
	if !ok {
		return
	}

	var in inventory.APInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	if err := s.inventory.Create(c.Request.Context(), site, in); err != nil {
		s.fail(c, err, textAPCreationFailed)
		return
	}
	c.String(http.StatusCreated, textAPCreated)
}

func (s *Server) createMultiple(c *gin.Context) {
	var in []inventory.APInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	if err := s.inventory.CreateMany(c.Request.Context(), in); err != nil {
		s.fail(c, err, textAPsCreateFailed)
		return
	}
	c.String(http.StatusCreated, textAPsCreated)
}

func (s *Server) update(c *gin.Context) {
	site, ok := bindPath(c, "site")
	if !ok {
		return
	}

	var in inventory.APInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	if err := s.inventory.Update(c.Request.Context(), site, in); err != nil {
		s.fail(c, err, textAPUpdateFailed)
		return
	}
	c.String(http.StatusOK, textAPUpdated)
}

func (s *Server) remove(c *gin.Context) {
	site, ok := bindPath(c, "site")
	if !ok {
		return
	}
	serial, ok := bindPath(c, "serial")
	if !ok {
		return
	}

	if err := s.inventory.Remove(c.Request.Context(), site, serial); err != nil {
		s.fail(c, err, textAPRemovalFailed)
		return
	}
	c.String(http.StatusOK, textAPRemoved)
}

// fail replies to a failed write: unknown site is 404, an AP that cannot be
// named is 400, anything else is 403 with text.
func (s *Server) fail(c *gin.Context, err error, text string) {
	logRequestError(c, s.logger, text, err)

	switch {
	case errors.Is(err, inventory.ErrSiteNotFound):
		c.String(http.StatusNotFound, textSiteNotFound)
	case errors.Is(err, inventory.ErrInvalidAP):
		c.String(http.StatusBadRequest, err.Error())
	default:
		c.String(http.StatusForbidden, text)
	}
}

// bindPath reads a required path parameter, replying 400 when it is unusable.
func bindPath(c *gin.Context, name string) (string, bool) {
	var value string
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &value,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return "", false
	}
	return value, true
}

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	rfqdomain "github.com/smallbiznis/procura/internal/rfq/domain"
	vendorportaldomain "github.com/smallbiznis/procura/internal/vendorportal/domain"
)

// registerPortalRoutes wires the unauthenticated, token-gated vendor
// endpoints. Possession of a valid token is the entire authorization
// check, so the routes sit behind the per-address rate limiter.
func (s *Server) registerPortalRoutes() {
	group := s.engine.Group("/vendor-requests")
	if s.portalLimiter != nil {
		group.Use(s.portalLimiter.Middleware())
	}

	group.GET("/:token", s.getVendorRequest)
	group.POST("/:token/response", s.submitVendorResponse)
}

func (s *Server) getVendorRequest(c *gin.Context) {
	view, err := s.portalSvc.GetByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) submitVendorResponse(c *gin.Context) {
	var req vendorportaldomain.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, &rfqdomain.ValidationError{Details: []rfqdomain.FieldError{{
			Field:   "body",
			Code:    "invalid_json",
			Message: "request body is not valid JSON",
		}}})
		return
	}

	if err := s.portalSvc.SubmitResponse(c.Request.Context(), c.Param("token"), req); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "response submitted"})
}

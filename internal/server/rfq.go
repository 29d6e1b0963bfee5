package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	organizationdomain "github.com/smallbiznis/procura/internal/organization/domain"
	rfqdomain "github.com/smallbiznis/procura/internal/rfq/domain"
	vendordomain "github.com/smallbiznis/procura/internal/vendors/domain"
)

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.AuthRequired())

	api.POST("/rfq", s.distributeRFQ)
	api.GET("/rfq", s.listRFQ)
	api.POST("/rfq/vendor-requests/:id/cancel", s.cancelVendorRequest)

	api.GET("/organizations", s.listOrganizations)
	api.POST("/organizations", s.createOrganization)

	api.GET("/vendors", s.listVendors)
	api.POST("/vendors", s.createVendor)
}

func (s *Server) distributeRFQ(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req rfqdomain.DistributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, &rfqdomain.ValidationError{Details: []rfqdomain.FieldError{{
			Field:   "body",
			Code:    "invalid_json",
			Message: "request body is not valid JSON",
		}}})
		return
	}

	result, err := s.rfqSvc.Distribute(c.Request.Context(), userID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (s *Server) listRFQ(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	req := rfqdomain.ListQuotesRequest{
		UserID: userID,
		Cursor: c.Query("cursor"),
	}
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			AbortWithError(c, &rfqdomain.ValidationError{Details: []rfqdomain.FieldError{{
				Field:   "limit",
				Code:    "invalid",
				Message: "limit must be an integer",
			}}})
			return
		}
		req.Limit = limit
	}
	if raw := strings.TrimSpace(c.Query("organizationId")); raw != "" {
		orgID, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, &rfqdomain.ValidationError{Details: []rfqdomain.FieldError{{
				Field:   "organizationId",
				Code:    "invalid",
				Message: "organizationId is not a valid id",
			}}})
			return
		}
		req.OrgID = &orgID
	}

	result, err := s.rfqSvc.ListQuotes(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) cancelVendorRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	if err := s.rfqSvc.CancelVendorRequest(c.Request.Context(), userID, c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "vendor request cancelled"})
}

func (s *Server) listOrganizations(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	items, err := s.organizationSvc.ListOrganizationsByUser(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"organizations": items})
}

func (s *Server) createOrganization(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req organizationdomain.CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, organizationdomain.ErrInvalidName)
		return
	}

	org, err := s.organizationSvc.Create(c.Request.Context(), userID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, org)
}

func (s *Server) listVendors(c *gin.Context) {
	vendors, err := s.vendorSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vendors": vendors})
}

func (s *Server) createVendor(c *gin.Context) {
	var req vendordomain.CreateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, vendordomain.ErrInvalidVendor)
		return
	}

	vendor, err := s.vendorSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, vendor)
}

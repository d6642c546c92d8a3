// Package qual provides the toolchain-qualification routes
package qual

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/blacktop/regvet/api/types"
	"github.com/blacktop/regvet/internal/db"
	"github.com/blacktop/regvet/internal/model"
	"github.com/blacktop/regvet/internal/qual"
	"github.com/blacktop/regvet/pkg/abi"
)

// AddRoutes adds the qualification routes to the router
func AddRoutes(rg *gin.RouterGroup, database db.Database) {
	ledger := qual.NewLedger(database)

	// swagger:route POST /qual Qual postQual
	//
	// Qualify
	//
	// Append a tool binary to the qualification ledger.
	rg.POST("/qual", func(c *gin.Context) {
		var req types.QualRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, types.GenericError{Error: err.Error()})
			return
		}
		arch, err := abi.ParseArchitecture(req.Arch)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, types.GenericError{Error: err.Error()})
			return
		}
		t, err := ledger.Add(req.Tool, req.Version, arch, req.Path)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, model.ErrHashMismatch) {
				status = http.StatusConflict
			}
			c.AbortWithStatusJSON(status, types.GenericError{Error: err.Error()})
			return
		}
		c.JSON(http.StatusCreated, t)
	})

	// swagger:route GET /qual Qual getQual
	//
	// List
	//
	// This will return every qualification ledger entry.
	rg.GET("/qual", func(c *gin.Context) {
		tools, err := ledger.List()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, types.GenericError{Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, tools)
	})

	// swagger:route POST /qual/check Qual postQualCheck
	//
	// Check
	//
	// Verify a tool binary against its ledger entry.
	rg.POST("/qual/check", func(c *gin.Context) {
		var req types.QualRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, types.GenericError{Error: err.Error()})
			return
		}
		arch, err := abi.ParseArchitecture(req.Arch)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, types.GenericError{Error: err.Error()})
			return
		}
		t, err := ledger.Check(req.Tool, req.Version, arch, req.Path)
		if err != nil {
			switch {
			case errors.Is(err, model.ErrNotFound):
				c.AbortWithStatusJSON(http.StatusNotFound, types.GenericError{Error: err.Error()})
			case errors.Is(err, model.ErrHashMismatch):
				c.AbortWithStatusJSON(http.StatusConflict, types.GenericError{Error: err.Error()})
			default:
				c.AbortWithStatusJSON(http.StatusInternalServerError, types.GenericError{Error: err.Error()})
			}
			return
		}
		c.JSON(http.StatusOK, t)
	})
}

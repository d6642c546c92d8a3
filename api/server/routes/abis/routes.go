// Package abis provides the ABI descriptor routes
package abis

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/blacktop/regvet/api/types"
	"github.com/blacktop/regvet/pkg/abi"
)

// swagger:response abisResponse
type abisResponse struct {
	Architectures []abi.Architecture `json:"architectures"`
}

// AddRoutes adds the ABI routes to the router
func AddRoutes(rg *gin.RouterGroup) {
	// swagger:route GET /abis ABI getAbis
	//
	// List
	//
	// This will return the supported architectures.
	rg.GET("/abis", func(c *gin.Context) {
		c.JSON(http.StatusOK, abisResponse{Architectures: abi.Architectures()})
	})
	// swagger:route GET /abis/{arch} ABI getAbi
	//
	// Descriptor
	//
	// This will return the full ABI descriptor for an architecture.
	rg.GET("/abis/:arch", func(c *gin.Context) {
		arch, err := abi.ParseArchitecture(c.Param("arch"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, types.GenericError{Error: err.Error()})
			return
		}
		d, err := abi.Get(arch)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, types.GenericError{Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, d)
	})
}

// Package vet provides the verification routes
package vet

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/blacktop/regvet/api/types"
	"github.com/blacktop/regvet/internal/db"
	"github.com/blacktop/regvet/internal/model"
	"github.com/blacktop/regvet/pkg/abi"
	"github.com/blacktop/regvet/pkg/snapshot"
	"github.com/blacktop/regvet/pkg/verify"
)

// AddRoutes adds the verification routes to the router
func AddRoutes(rg *gin.RouterGroup, database db.Database) {
	// swagger:route POST /verify Verify postVerify
	//
	// Verify
	//
	// Check a before/after register pair against the architecture's ABI.
	// An ABI violation is a 200 with a failing verdict; only malformed
	// input is an error status.
	rg.POST("/verify", func(c *gin.Context) {
		var req types.VerifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, types.GenericError{Error: err.Error()})
			return
		}

		arch, err := abi.ParseArchitecture(req.Arch)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, types.GenericError{Error: err.Error()})
			return
		}
		d, err := abi.Get(arch)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, types.GenericError{Error: err.Error()})
			return
		}
		before, err := snapshot.Capture(arch, req.Before)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, types.GenericError{Error: err.Error()})
			return
		}
		after, err := snapshot.Capture(arch, req.After)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, types.GenericError{Error: err.Error()})
			return
		}

		verdict, err := verify.Check(before, after, d, verify.Options{
			AtEntry:  req.AtEntry,
			ArgCount: req.ArgCount,
			AtExit:   req.AtExit,
		})
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, types.GenericError{Error: err.Error()})
			return
		}

		id := uuid.New().String()
		if database != nil {
			viols, _ := json.Marshal(verdict.Violations)
			if err := database.SaveRun(&model.VerificationRun{
				UUID:         id,
				Architecture: string(arch),
				Pass:         verdict.Pass,
				Violations:   string(viols),
			}); err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, types.GenericError{Error: err.Error()})
				return
			}
		}

		c.JSON(http.StatusOK, types.VerifyResponse{ID: id, Verdict: verdict})
	})

	// swagger:route GET /verify/runs Verify getVerifyRuns
	//
	// Runs
	//
	// This will return the most recent archived verification runs.
	rg.GET("/verify/runs", func(c *gin.Context) {
		if database == nil {
			c.JSON(http.StatusOK, []model.VerificationRun{})
			return
		}
		runs, err := database.Runs(50)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, types.GenericError{Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, runs)
	})
}

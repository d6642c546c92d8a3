// Package routes contains all the routes for the API
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/blacktop/regvet/api/server/routes/abis"
	"github.com/blacktop/regvet/api/server/routes/daemon"
	"github.com/blacktop/regvet/api/server/routes/qual"
	"github.com/blacktop/regvet/api/server/routes/vet"
	"github.com/blacktop/regvet/internal/db"
)

// Add adds the command routes to the router
func Add(rg *gin.RouterGroup, database db.Database) {
	daemon.AddRoutes(rg)
	abis.AddRoutes(rg)
	vet.AddRoutes(rg, database)
	qual.AddRoutes(rg, database)
}

package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORSMiddleware allows the portfolio front end at origin to call the API with
// credentials. Preflight requests (OPTIONS carrying
// Access-Control-Request-Method) are answered here with 204, except on the
// routes listed in ownPreflight, which reach their handler.
func CORSMiddleware(origin string, ownPreflight ...string) gin.HandlerFunc {
	skip := make(map[string]bool, len(ownPreflight))
	for _, route := range ownPreflight {
		skip[route] = true
	}

	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Add("Vary", "Origin")

		if c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != "" && !skip[c.FullPath()] {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

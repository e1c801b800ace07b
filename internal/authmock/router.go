package authmock

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/naveenspark/roam/internal/catalog"
	"github.com/naveenspark/roam/pkg/client"
	"github.com/naveenspark/roam/pkg/domain"
)

// NewRouter serves the mock over the HTTP contract pkg/client speaks.
// middleware runs after recovery and before every route.
func NewRouter(a *Authenticator, middleware ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware...)

	r.POST("/auth/login", func(c *gin.Context) {
		var creds domain.Credentials
		if err := c.ShouldBindJSON(&creds); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "invalid request body"})
			return
		}
		sess, err := a.Authenticate(c.Request.Context(), creds)
		respond(c, sess, err)
	})

	r.POST("/auth/register", func(c *gin.Context) {
		var reg domain.Registration
		if err := c.ShouldBindJSON(&reg); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "invalid request body"})
			return
		}
		sess, err := a.Register(c.Request.Context(), reg)
		respond(c, sess, err)
	})

	api := r.Group("/api", requireToken(a))
	api.GET("/me", func(c *gin.Context) {
		sess, err := a.issue(c.GetString("email"), "")
		if err != nil {
			respond(c, nil, err)
			return
		}
		c.JSON(http.StatusOK, sess.User)
	})
	api.GET("/places", func(c *gin.Context) {
		places := catalog.Search(catalog.Places, catalog.Filter{Category: c.Query("category")})
		c.JSON(http.StatusOK, places)
	})
	api.GET("/places/:id", func(c *gin.Context) {
		p, ok := catalog.ByID(catalog.Places, c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"message": "place not found"})
			return
		}
		c.JSON(http.StatusOK, p)
	})

	return r
}

func requireToken(a *Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "not authenticated"})
			return
		}
		email, valid := a.VerifyToken(token)
		if !valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "token expired or invalid"})
			return
		}
		c.Set("email", email)
		c.Next()
	}
}

func respond(c *gin.Context, body any, err error) {
	if err == nil {
		c.JSON(http.StatusOK, body)
		return
	}
	var httpErr *client.HTTPError
	if errors.As(err, &httpErr) {
		c.JSON(httpErr.StatusCode, gin.H{"message": httpErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
}

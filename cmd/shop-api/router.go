package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/avezhov/shop-api/internal/address"
	"github.com/avezhov/shop-api/internal/catalog"
	"github.com/avezhov/shop-api/internal/httpx"
	"github.com/avezhov/shop-api/internal/user"
)

type deps struct {
	users     userService
	userRepo  user.Repository
	tokens    *user.TokenMaker
	items     catalog.Repository
	addresses address.Repository
	orders    orderService
	logger    zerolog.Logger
}

func newRouter(d deps) *gin.Engine {
	r := gin.New()
	r.Use(httpx.RequestID(), httpx.Logger(d.logger), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// activation links from registration emails land here
	r.GET("/activate/:token", activateHandler(d.users))

	v1 := r.Group("/api/v1")

	v1.POST("/user/register", registerHandler(d.users))
	v1.POST("/user/login", loginHandler(d.users))

	v1.GET("/items", listItemsHandler(d.items))
	v1.GET("/items/:id", getItemHandler(d.items))
	v1.GET("/categories", listCategoriesHandler(d.items))

	auth := v1.Group("", authRequired(d.tokens, d.userRepo))

	auth.GET("/user/me", meHandler())
	auth.POST("/user/roles", grantRoleHandler(d.userRepo))
	auth.GET("/user/vendor-info", getVendorInfoHandler(d.userRepo))
	auth.POST("/user/vendor-info", putVendorInfoHandler(d.userRepo))
	auth.GET("/user/info", listUserInfoHandler(d.userRepo))
	auth.POST("/user/info", putUserInfoHandler(d.userRepo))
	auth.DELETE("/user/info/:type", deleteUserInfoHandler(d.userRepo))
	auth.GET("/positions", listPositionsHandler(d.userRepo))
	auth.POST("/positions", createPositionHandler(d.userRepo))
	auth.DELETE("/positions/:id", deletePositionHandler(d.userRepo))
	auth.POST("/staff-info", putStaffInfoHandler(d.userRepo))
	auth.GET("/staff-info/:id", getStaffInfoHandler(d.userRepo))

	auth.POST("/items", createItemHandler(d.items))
	auth.PUT("/items/:id", updateItemHandler(d.items))
	auth.POST("/items/import", importItemsHandler(d.items))
	auth.POST("/items/:id/info", addItemInfoHandler(d.items))
	auth.POST("/items/:id/categories", assignCategoryHandler(d.items))
	auth.POST("/categories", createCategoryHandler(d.items))
	auth.DELETE("/categories/:id", deleteCategoryHandler(d.items))

	auth.GET("/addresses", listAddressesHandler(d.addresses))
	auth.POST("/addresses", createAddressHandler(d.addresses))
	auth.DELETE("/addresses/:id", deleteAddressHandler(d.addresses))

	auth.GET("/basket", getBasketHandler(d.orders))
	auth.POST("/basket", addToBasketHandler(d.orders))
	auth.GET("/orders", myOrdersHandler(d.orders))
	auth.POST("/orders", startOrderHandler(d.orders))
	auth.GET("/orders/:id", getOrderHandler(d.orders))
	auth.PUT("/orders/:id/state", orderStateHandler(d.orders))
	auth.POST("/orders/:id/cancel", cancelOrderHandler(d.orders))

	return r
}

// authRequired parses the Bearer token and loads the account into the
// request context. Inactive accounts are rejected here once, so handlers
// can assume currentUser is active.
func authRequired(tokens *user.TokenMaker, users user.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if raw == "" || raw == c.GetHeader("Authorization") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		uid, err := tokens.VerifySession(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		u, err := users.GetByID(c.Request.Context(), uid)
		if err != nil || !u.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set("user", u)
		c.Next()
	}
}

func currentUser(c *gin.Context) *user.User {
	v, ok := c.Get("user")
	if !ok {
		return nil
	}
	u, _ := v.(*user.User)
	return u
}

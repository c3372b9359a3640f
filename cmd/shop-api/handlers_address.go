package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/avezhov/shop-api/internal/address"
	"github.com/avezhov/shop-api/internal/authz"
)

// listAddressesHandler returns the caller's own addresses; warehouse staff
// may pass ?all=true to page through every stored address.
func listAddressesHandler(repo address.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		if c.Query("all") == "true" {
			if !authz.Allow(u, authz.ReadAddresses, "") {
				c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
				return
			}
			limit, offset := parsePage(c)
			out, err := repo.ListAll(c.Request.Context(), limit, offset)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"addresses": out, "limit": limit, "offset": offset})
			return
		}
		out, err := repo.ListByUser(c.Request.Context(), u.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"addresses": out})
	}
}

func createAddressHandler(repo address.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		var a address.Address
		if err := c.ShouldBindJSON(&a); err != nil || a.City == "" || a.Street == "" || a.House == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "city, street and house are required"})
			return
		}
		a.ID = uuid.NewString()
		a.UserID = u.ID
		if err := repo.Create(c.Request.Context(), &a); err != nil {
			if errors.Is(err, address.ErrDuplicate) {
				c.JSON(http.StatusConflict, gin.H{"error": "address already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
			return
		}
		c.JSON(http.StatusCreated, a)
	}
}

func deleteAddressHandler(repo address.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		a, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, address.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "address not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
			return
		}
		if !authz.Allow(u, authz.ReadOwn, a.UserID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		if err := repo.Delete(c.Request.Context(), a.ID); err != nil {
			if errors.Is(err, address.ErrInUse) {
				c.JSON(http.StatusConflict, gin.H{"error": "address is referenced by an order"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avezhov/shop-api/internal/authz"
	"github.com/avezhov/shop-api/internal/catalog"
	"github.com/avezhov/shop-api/internal/user"
)

func parsePage(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func listItemsHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := parsePage(c)
		q := catalog.Query{
			Q:        c.Query("q"),
			Category: c.Query("category"),
			Limit:    limit,
			Offset:   offset,
		}
		items, err := repo.List(c.Request.Context(), q)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
			return
		}
		c.JSON(http.StatusOK, catalog.ListResponse{Q: q.Q, Limit: limit, Offset: offset, Items: items})
	}
}

func getItemHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		it, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
			return
		}
		info, err := repo.ListInfo(c.Request.Context(), it.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"item": it, "info": info})
	}
}

func createItemHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		if !authz.Allow(u, authz.ManageItems, "") {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		var req catalog.CreateItemRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name and price are required"})
			return
		}
		price, err := decimal.NewFromString(req.Price)
		if err != nil || price.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price"})
			return
		}
		if req.Quantity < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must not be negative"})
			return
		}
		it := &catalog.Item{
			ID:       uuid.NewString(),
			Name:     req.Name,
			VendorID: u.ID,
			Price:    price.StringFixed(2),
			Quantity: req.Quantity,
			IsActive: true,
		}
		if err := repo.Create(c.Request.Context(), it); err != nil {
			if errors.Is(err, catalog.ErrDuplicate) {
				c.JSON(http.StatusConflict, gin.H{"error": "name already taken"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
			return
		}
		c.JSON(http.StatusCreated, it)
	}
}

func updateItemHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		it, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
			return
		}
		// vendors touch their own goods only, managers anything
		if !authz.Allow(u, authz.ManageItems, "") ||
			(it.VendorID != u.ID && !u.HasRole(user.RoleManager)) {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		var req catalog.UpdateItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
		updatePrice := false
		if req.Price != nil {
			price, err := decimal.NewFromString(*req.Price)
			if err != nil || price.IsNegative() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price"})
				return
			}
			it.Price = price.StringFixed(2)
			updatePrice = true
		}
		if req.Quantity != nil {
			if *req.Quantity < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must not be negative"})
				return
			}
			it.Quantity = *req.Quantity
		}
		if req.IsActive != nil {
			it.IsActive = *req.IsActive
		}
		if err := repo.Update(c.Request.Context(), it, updatePrice); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
			return
		}
		c.JSON(http.StatusOK, it)
	}
}

// importItemsHandler ingests a vendor price list: multipart form with a
// `file` field holding `name,price,quantity` CSV rows.
func importItemsHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		if !authz.Allow(u, authz.ManageItems, "") {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		fh, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file field is required"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read upload"})
			return
		}
		defer f.Close()

		res, err := catalog.ImportCSV(c.Request.Context(), repo, u.ID, f)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// swagger:model AddInfoRequest
type addInfoRequest struct {
	TypeInfo  string `json:"type_info"  example:"color"`
	ValueInfo string `json:"value_info" example:"black"`
}

func addItemInfoHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		it, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
			return
		}
		if !authz.Allow(u, authz.ManageItems, "") ||
			(it.VendorID != u.ID && !u.HasRole(user.RoleManager)) {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		var req addInfoRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.TypeInfo == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "type_info and value_info are required"})
			return
		}
		info := &catalog.ItemInfo{ItemID: it.ID, TypeInfo: req.TypeInfo, ValueInfo: req.ValueInfo}
		if err := repo.AddInfo(c.Request.Context(), info); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
			return
		}
		c.JSON(http.StatusCreated, info)
	}
}

// swagger:model AssignCategoryRequest
type assignCategoryRequest struct {
	CategoryID string `json:"category_id"`
}

func assignCategoryHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		if !authz.Allow(u, authz.ManageCategories, "") {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		var req assignCategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.CategoryID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "category_id is required"})
			return
		}
		if err := repo.AssignCategory(c.Request.Context(), c.Param("id"), req.CategoryID); err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "item or category not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "assign failed"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func listCategoriesHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		cats, err := repo.ListCategories(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"categories": cats})
	}
}

func createCategoryHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		if !authz.Allow(u, authz.ManageCategories, "") {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		var cat catalog.Category
		if err := c.ShouldBindJSON(&cat); err != nil || cat.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
			return
		}
		cat.ID = uuid.NewString()
		if err := repo.CreateCategory(c.Request.Context(), &cat); err != nil {
			if errors.Is(err, catalog.ErrDuplicate) {
				c.JSON(http.StatusConflict, gin.H{"error": "name already taken"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
			return
		}
		c.JSON(http.StatusCreated, cat)
	}
}

func deleteCategoryHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		if !authz.Allow(u, authz.ManageCategories, "") {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		ok, err := repo.DeleteCategory(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

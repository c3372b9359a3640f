package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avezhov/shop-api/internal/authz"
	"github.com/avezhov/shop-api/internal/catalog"
	"github.com/avezhov/shop-api/internal/order"
)

type orderService interface {
	Basket(ctx context.Context, userID string) (*order.Order, []order.Line, error)
	AddToBasket(ctx context.Context, userID, itemID string, qty int) (*order.Order, error)
	StartOrder(ctx context.Context, userID, orderID, addressID string) (*order.Order, error)
	Advance(ctx context.Context, orderID string, action order.Action) (*order.Order, error)
	Delivered(ctx context.Context, orderID string) (*order.Order, error)
	Cancel(ctx context.Context, orderID, comment string) (*order.Order, error)
	MyOrders(ctx context.Context, userID string) ([]order.Order, error)
	Get(ctx context.Context, orderID string) (*order.Order, []order.Line, error)
}

// swagger:model OrderStateRequest
type orderStateRequest struct {
	Action string `json:"action" example:"order_collecting"`
}

func getBasketHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		basket, lines, err := svc.Basket(c.Request.Context(), u.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "basket lookup failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": basket, "items": lines})
	}
}

func addToBasketHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		var req order.AddToBasketRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.ItemID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "item_id and quantity are required"})
			return
		}
		if req.Quantity < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be at least 1"})
			return
		}
		basket, err := svc.AddToBasket(c.Request.Context(), u.ID, req.ItemID, req.Quantity)
		if err != nil {
			if errors.Is(err, order.ErrItemNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "basket update failed"})
			return
		}
		c.JSON(http.StatusOK, basket)
	}
}

// startOrderHandler checks out the caller's basket against the given
// delivery address.
func startOrderHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		var req order.StartOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.AddressID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "address_id is required"})
			return
		}
		basket, _, err := svc.Basket(c.Request.Context(), u.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "basket lookup failed"})
			return
		}
		o, err := svc.StartOrder(c.Request.Context(), u.ID, basket.ID, req.AddressID)
		if err != nil {
			switch {
			case errors.Is(err, order.ErrAddressNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "address not found"})
			case errors.Is(err, order.ErrAddressOwnership):
				c.JSON(http.StatusForbidden, gin.H{"error": "address belongs to another user"})
			case errors.Is(err, catalog.ErrInsufficientStock):
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			case errors.Is(err, order.ErrInvalidTransition):
				c.JSON(http.StatusConflict, gin.H{"error": "order already started"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "checkout failed"})
			}
			return
		}
		c.JSON(http.StatusCreated, o)
	}
}

func myOrdersHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		orders, err := svc.MyOrders(c.Request.Context(), u.ID)
		if err != nil {
			if errors.Is(err, order.ErrNoOrders) {
				c.JSON(http.StatusNotFound, gin.H{"error": "no orders yet"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": orders})
	}
}

func getOrderHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		o, lines, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, order.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
			return
		}
		if !authz.Allow(u, authz.ReadOwn, o.UserID) && !authz.Allow(u, authz.DriveWarehouse, "") {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": o, "items": lines})
	}
}

// orderStateHandler drives the warehouse side of the lifecycle. The caller
// names the transition; order_delivered also closes the order and notifies
// the customer.
func orderStateHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		if !authz.Allow(u, authz.DriveWarehouse, "") {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		var req orderStateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}

		var (
			o   *order.Order
			err error
		)
		switch action := order.Action(req.Action); action {
		case order.ActionCollecting, order.ActionCollected, order.ActionShipped:
			o, err = svc.Advance(c.Request.Context(), c.Param("id"), action)
		case order.ActionDelivered:
			o, err = svc.Delivered(c.Request.Context(), c.Param("id"))
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action"})
			return
		}
		if err != nil {
			switch {
			case errors.Is(err, order.ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			case errors.Is(err, order.ErrInvalidTransition):
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "transition failed"})
			}
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

func cancelOrderHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		o, _, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, order.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
			return
		}
		if !authz.Allow(u, authz.UseBasket, o.UserID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		var req order.CancelOrderRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
				return
			}
		}
		o, err = svc.Cancel(c.Request.Context(), o.ID, req.Comment)
		if err != nil {
			if errors.Is(err, order.ErrInvalidTransition) {
				c.JSON(http.StatusConflict, gin.H{"error": "order already closed"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cancel failed"})
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/avezhov/shop-api/internal/authz"
	"github.com/avezhov/shop-api/internal/user"
)

type userService interface {
	Register(ctx context.Context, in user.RegisterInput) (*user.User, error)
	Activate(ctx context.Context, token string) (*user.User, error)
	Login(ctx context.Context, email, password string) (string, *user.User, error)
}

// swagger:model RegisterRequest
type registerRequest struct {
	Email     string `json:"email"      example:"buyer@example.com"`
	FirstName string `json:"first_name" example:"Ivan"`
	LastName  string `json:"last_name"  example:"Petrov"`
	Password  string `json:"password"   example:"s3cret-pass"`
}

// swagger:model LoginRequest
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// swagger:model GrantRoleRequest
type grantRoleRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role" example:"vendor_base"`
}

func registerHandler(svc userService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
		u, err := svc.Register(c.Request.Context(), user.RegisterInput{
			Email:     req.Email,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Password:  req.Password,
		})
		if err != nil {
			if errors.Is(err, user.ErrAlreadyExist) {
				c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, u)
	}
}

func activateHandler(svc userService) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := svc.Activate(c.Request.Context(), c.Param("token"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or expired activation link"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "activated", "email": u.Email})
	}
}

func loginHandler(svc userService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
		token, u, err := svc.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, user.ErrBadCredentials) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token, "user": u})
	}
}

func meHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, currentUser(c))
	}
}

// only managers hand out roles
func grantRoleHandler(repo user.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		if !u.HasRole(user.RoleManager) {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		var req grantRoleRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
		valid := false
		for _, r := range user.AllRoles {
			if r == req.Role {
				valid = true
				break
			}
		}
		if !valid {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
			return
		}
		if err := repo.GrantRole(c.Request.Context(), req.UserID, req.Role); err != nil {
			if errors.Is(err, user.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "grant failed"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func getVendorInfoHandler(repo user.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		if !authz.Allow(u, authz.ManageItems, "") {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		v, err := repo.GetVendorInfo(c.Request.Context(), u.ID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "vendor info not set"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

// swagger:model UserInfoRequest
type userInfoRequest struct {
	TypeInfo  string `json:"type_info"  example:"phone"`
	ValueInfo string `json:"value_info" example:"+7 900 000-00-00"`
}

// Profile characteristics are strictly owner-scoped: each handler reads and
// writes rows for the authenticated user only.
func listUserInfoHandler(repo user.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		info, err := repo.ListUserInfo(c.Request.Context(), u.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"info": info})
	}
}

func putUserInfoHandler(repo user.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		var req userInfoRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.ValueInfo == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "type_info and value_info are required"})
			return
		}
		valid := false
		for _, t := range user.AllInfoTypes {
			if t == req.TypeInfo {
				valid = true
				break
			}
		}
		if !valid {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown type_info"})
			return
		}
		info := &user.UserInfo{UserID: u.ID, TypeInfo: req.TypeInfo, ValueInfo: req.ValueInfo}
		if err := repo.UpsertUserInfo(c.Request.Context(), info); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
			return
		}
		c.JSON(http.StatusOK, info)
	}
}

func deleteUserInfoHandler(repo user.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		err := repo.DeleteUserInfo(c.Request.Context(), u.ID, c.Param("type"))
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "characteristic not set"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// positions are readable by warehouse staff, writable by managers
func listPositionsHandler(repo user.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		if !u.HasRole(user.RoleManager, user.RoleEmployee) {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		out, err := repo.ListPositions(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"positions": out})
	}
}

func createPositionHandler(repo user.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		if !u.HasRole(user.RoleManager) {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		var p user.Position
		if err := c.ShouldBindJSON(&p); err != nil || p.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
			return
		}
		p.ID = uuid.NewString()
		if err := repo.CreatePosition(c.Request.Context(), &p); err != nil {
			if errors.Is(err, user.ErrAlreadyExist) {
				c.JSON(http.StatusConflict, gin.H{"error": "name already taken"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

func deletePositionHandler(repo user.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		if !u.HasRole(user.RoleManager) {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		ok, err := repo.DeletePosition(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "position not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// swagger:model StaffInfoRequest
type staffInfoRequest struct {
	UserID      string `json:"user_id"`
	ManagerID   string `json:"manager_id,omitempty"`
	PositionID  string `json:"position_id,omitempty"`
	IsActive    *bool  `json:"is_active,omitempty"`
	Description string `json:"description,omitempty"`
}

// managers assign staff records; employees may read their own
func putStaffInfoHandler(repo user.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		if !u.HasRole(user.RoleManager) {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		var req staffInfoRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}
		s := &user.StaffInfo{
			UserID:      req.UserID,
			ManagerID:   req.ManagerID,
			PositionID:  req.PositionID,
			IsActive:    true,
			Description: req.Description,
		}
		if req.IsActive != nil {
			s.IsActive = *req.IsActive
		}
		if err := repo.UpsertStaffInfo(c.Request.Context(), s); err != nil {
			if errors.Is(err, user.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "user, manager or position not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
			return
		}
		c.JSON(http.StatusOK, s)
	}
}

func getStaffInfoHandler(repo user.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		target := c.Param("id")
		if target != u.ID && !u.HasRole(user.RoleManager) {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		s, err := repo.GetStaffInfo(c.Request.Context(), target)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "staff info not set"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
			return
		}
		c.JSON(http.StatusOK, s)
	}
}

func putVendorInfoHandler(repo user.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		if !authz.Allow(u, authz.ManageItems, "") {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		var v user.VendorInfo
		if err := c.ShouldBindJSON(&v); err != nil || v.Name == "" || v.INN == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name and inn are required"})
			return
		}
		v.UserID = u.ID
		if err := repo.UpsertVendorInfo(c.Request.Context(), &v); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

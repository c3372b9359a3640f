package main

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/avezhov/shop-api/internal/user"
)

//
// ===== STUB REPO (implements user.Repository) =====
//

type stubUserRepo struct {
	byID      map[string]*user.User
	roles     map[string][]string
	info      map[string][]user.UserInfo
	positions map[string]*user.Position
	staff     map[string]*user.StaffInfo
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		byID:      make(map[string]*user.User),
		roles:     make(map[string][]string),
		info:      make(map[string][]user.UserInfo),
		positions: make(map[string]*user.Position),
		staff:     make(map[string]*user.StaffInfo),
	}
}

func (s *stubUserRepo) Create(ctx context.Context, u *user.User) error {
	s.byID[u.ID] = u
	return nil
}

func (s *stubUserRepo) GetByID(ctx context.Context, id string) (*user.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	for _, u := range s.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (s *stubUserRepo) SetActive(ctx context.Context, id string, active bool) error {
	u, ok := s.byID[id]
	if !ok {
		return user.ErrNotFound
	}
	u.IsActive = active
	return nil
}

// mirrors the FK behavior of the real repo: unknown user is ErrNotFound
func (s *stubUserRepo) GrantRole(ctx context.Context, userID, role string) error {
	if _, ok := s.byID[userID]; !ok {
		return user.ErrNotFound
	}
	s.roles[userID] = append(s.roles[userID], role)
	return nil
}

func (s *stubUserRepo) UpsertVendorInfo(ctx context.Context, v *user.VendorInfo) error {
	return nil
}

func (s *stubUserRepo) GetVendorInfo(ctx context.Context, userID string) (*user.VendorInfo, error) {
	return nil, user.ErrNotFound
}

func (s *stubUserRepo) UpsertUserInfo(ctx context.Context, info *user.UserInfo) error {
	for i := range s.info[info.UserID] {
		if s.info[info.UserID][i].TypeInfo == info.TypeInfo {
			s.info[info.UserID][i].ValueInfo = info.ValueInfo
			return nil
		}
	}
	s.info[info.UserID] = append(s.info[info.UserID], *info)
	return nil
}

func (s *stubUserRepo) ListUserInfo(ctx context.Context, userID string) ([]user.UserInfo, error) {
	return s.info[userID], nil
}

func (s *stubUserRepo) DeleteUserInfo(ctx context.Context, userID, typeInfo string) error {
	rows := s.info[userID]
	for i := range rows {
		if rows[i].TypeInfo == typeInfo {
			s.info[userID] = append(rows[:i], rows[i+1:]...)
			return nil
		}
	}
	return user.ErrNotFound
}

func (s *stubUserRepo) CreatePosition(ctx context.Context, p *user.Position) error {
	for _, v := range s.positions {
		if v.Name == p.Name {
			return user.ErrAlreadyExist
		}
	}
	cp := *p
	s.positions[p.ID] = &cp
	return nil
}

func (s *stubUserRepo) ListPositions(ctx context.Context) ([]user.Position, error) {
	out := make([]user.Position, 0, len(s.positions))
	for _, p := range s.positions {
		out = append(out, *p)
	}
	return out, nil
}

func (s *stubUserRepo) DeletePosition(ctx context.Context, id string) (bool, error) {
	if _, ok := s.positions[id]; !ok {
		return false, nil
	}
	delete(s.positions, id)
	return true, nil
}

func (s *stubUserRepo) UpsertStaffInfo(ctx context.Context, si *user.StaffInfo) error {
	if _, ok := s.byID[si.UserID]; !ok {
		return user.ErrNotFound
	}
	cp := *si
	s.staff[si.UserID] = &cp
	return nil
}

func (s *stubUserRepo) GetStaffInfo(ctx context.Context, userID string) (*user.StaffInfo, error) {
	si, ok := s.staff[userID]
	if !ok {
		return nil, user.ErrNotFound
	}
	return si, nil
}

func newUserRouter(repo user.Repository, u *user.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("user", u) })

	r.POST("/user/roles", grantRoleHandler(repo))
	r.GET("/user/info", listUserInfoHandler(repo))
	r.POST("/user/info", putUserInfoHandler(repo))
	r.DELETE("/user/info/:type", deleteUserInfoHandler(repo))
	r.GET("/positions", listPositionsHandler(repo))
	r.POST("/positions", createPositionHandler(repo))
	r.DELETE("/positions/:id", deletePositionHandler(repo))
	r.POST("/staff-info", putStaffInfoHandler(repo))
	r.GET("/staff-info/:id", getStaffInfoHandler(repo))
	return r
}

//
// ===== TESTS =====
//

func TestGrantRole_ManagerOnlyAndUnknownUser(t *testing.T) {
	repo := newStubUserRepo()
	repo.byID["u1"] = &user.User{ID: "u1", Email: "u1@example.com", IsActive: true}

	// non-manager gets 403
	r := newUserRouter(repo, customer())
	w := doJSON(r, http.MethodPost, "/user/roles", `{"user_id":"u1","role":"vendor_base"}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer, got %d", w.Code)
	}

	r = newUserRouter(repo, manager())

	// unknown role
	w = doJSON(r, http.MethodPost, "/user/roles", `{"user_id":"u1","role":"superuser"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown role, got %d", w.Code)
	}

	// unknown user surfaces as 404, not a storage error
	w = doJSON(r, http.MethodPost, "/user/roles", `{"user_id":"ghost","role":"vendor_base"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %d body=%s", w.Code, w.Body.String())
	}

	w = doJSON(r, http.MethodPost, "/user/roles", `{"user_id":"u1","role":"vendor_base"}`)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if len(repo.roles["u1"]) != 1 {
		t.Fatalf("role not granted: %+v", repo.roles)
	}
}

func TestUserInfo_OwnerScoped(t *testing.T) {
	repo := newStubUserRepo()
	r := newUserRouter(repo, customer())

	// unknown characteristic type
	w := doJSON(r, http.MethodPost, "/user/info", `{"type_info":"shoe_size","value_info":"42"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown type, got %d", w.Code)
	}

	w = doJSON(r, http.MethodPost, "/user/info", `{"type_info":"phone","value_info":"+7 900 000-00-00"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	// second write with the same type replaces, not appends
	w = doJSON(r, http.MethodPost, "/user/info", `{"type_info":"phone","value_info":"+7 911 111-11-11"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	rows := repo.info["customer-1"]
	if len(rows) != 1 || rows[0].ValueInfo != "+7 911 111-11-11" {
		t.Fatalf("upsert broken: %+v", rows)
	}

	w = doJSON(r, http.MethodGet, "/user/info", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	w = doJSON(r, http.MethodDelete, "/user/info/phone", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	w = doJSON(r, http.MethodDelete, "/user/info/phone", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on repeated delete, got %d", w.Code)
	}
}

func TestPositions_RoleGates(t *testing.T) {
	repo := newStubUserRepo()

	// customers see nothing
	r := newUserRouter(repo, customer())
	w := doJSON(r, http.MethodGet, "/positions", "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer, got %d", w.Code)
	}

	// employees read but do not write
	r = newUserRouter(repo, employee())
	w = doJSON(r, http.MethodGet, "/positions", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	w = doJSON(r, http.MethodPost, "/positions", `{"name":"Picker"}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for employee write, got %d", w.Code)
	}

	r = newUserRouter(repo, manager())
	w = doJSON(r, http.MethodPost, "/positions", `{"name":"Picker"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	w = doJSON(r, http.MethodPost, "/positions", `{"name":"Picker"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate, got %d", w.Code)
	}
}

func TestStaffInfo_AssignAndRead(t *testing.T) {
	repo := newStubUserRepo()
	repo.byID["emp-1"] = &user.User{ID: "emp-1", Email: "e@example.com", IsActive: true}

	// only managers assign
	r := newUserRouter(repo, employee())
	w := doJSON(r, http.MethodPost, "/staff-info", `{"user_id":"emp-1","description":"night shift"}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for employee, got %d", w.Code)
	}

	r = newUserRouter(repo, manager())
	w = doJSON(r, http.MethodPost, "/staff-info", `{"user_id":"emp-1","description":"night shift"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	w = doJSON(r, http.MethodPost, "/staff-info", `{"user_id":"ghost"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %d", w.Code)
	}

	// an employee reads their own record but not a colleague's
	emp := &user.User{ID: "emp-1", Email: "e@example.com", IsActive: true, Roles: []string{user.RoleEmployee}}
	r = newUserRouter(repo, emp)
	w = doJSON(r, http.MethodGet, "/staff-info/emp-1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	w = doJSON(r, http.MethodGet, "/staff-info/emp-2", "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 reading another record, got %d", w.Code)
	}
}

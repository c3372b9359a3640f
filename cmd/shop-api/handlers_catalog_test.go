package main

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/avezhov/shop-api/internal/catalog"
	"github.com/avezhov/shop-api/internal/user"
)

//
// ===== STUB REPO (implements catalog.Repository) =====
//

type stubCatalog struct {
	items      map[string]*catalog.Item
	info       map[string][]catalog.ItemInfo
	categories map[string]*catalog.Category
	lastQuery  catalog.Query
}

func newStubCatalog() *stubCatalog {
	return &stubCatalog{
		items:      make(map[string]*catalog.Item),
		info:       make(map[string][]catalog.ItemInfo),
		categories: make(map[string]*catalog.Category),
	}
}

func (s *stubCatalog) Create(ctx context.Context, it *catalog.Item) error {
	for _, v := range s.items {
		if v.Name == it.Name {
			return catalog.ErrDuplicate
		}
	}
	cp := *it
	s.items[it.ID] = &cp
	return nil
}

func (s *stubCatalog) GetByID(ctx context.Context, id string) (*catalog.Item, error) {
	it, ok := s.items[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func (s *stubCatalog) GetByName(ctx context.Context, name string) (*catalog.Item, error) {
	for _, v := range s.items {
		if v.Name == name {
			cp := *v
			return &cp, nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (s *stubCatalog) List(ctx context.Context, q catalog.Query) ([]catalog.Item, error) {
	s.lastQuery = q
	out := make([]catalog.Item, 0, len(s.items))
	for _, v := range s.items {
		if q.Q != "" && !strings.Contains(strings.ToLower(v.Name), strings.ToLower(q.Q)) {
			continue
		}
		out = append(out, *v)
	}
	return out, nil
}

func (s *stubCatalog) Update(ctx context.Context, it *catalog.Item, updatePrice bool) error {
	cur, ok := s.items[it.ID]
	if !ok {
		return catalog.ErrNotFound
	}
	if updatePrice {
		cur.Price = it.Price
	}
	cur.Quantity = it.Quantity
	cur.IsActive = it.IsActive
	return nil
}

func (s *stubCatalog) AddInfo(ctx context.Context, info *catalog.ItemInfo) error {
	s.info[info.ItemID] = append(s.info[info.ItemID], *info)
	return nil
}

func (s *stubCatalog) ListInfo(ctx context.Context, itemID string) ([]catalog.ItemInfo, error) {
	return s.info[itemID], nil
}

func (s *stubCatalog) CreateCategory(ctx context.Context, c *catalog.Category) error {
	for _, v := range s.categories {
		if v.Name == c.Name {
			return catalog.ErrDuplicate
		}
	}
	cp := *c
	s.categories[c.ID] = &cp
	return nil
}

func (s *stubCatalog) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	out := make([]catalog.Category, 0, len(s.categories))
	for _, v := range s.categories {
		out = append(out, *v)
	}
	return out, nil
}

func (s *stubCatalog) DeleteCategory(ctx context.Context, id string) (bool, error) {
	if _, ok := s.categories[id]; !ok {
		return false, nil
	}
	delete(s.categories, id)
	return true, nil
}

func (s *stubCatalog) AssignCategory(ctx context.Context, itemID, categoryID string) error {
	if _, ok := s.items[itemID]; !ok {
		return catalog.ErrNotFound
	}
	if _, ok := s.categories[categoryID]; !ok {
		return catalog.ErrNotFound
	}
	return nil
}

func newCatalogRouter(repo catalog.Repository, u *user.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if u != nil {
		r.Use(func(c *gin.Context) { c.Set("user", u) })
	}
	r.GET("/items", listItemsHandler(repo))
	r.GET("/items/:id", getItemHandler(repo))
	r.POST("/items", createItemHandler(repo))
	r.PUT("/items/:id", updateItemHandler(repo))
	r.POST("/items/:id/info", addItemInfoHandler(repo))
	r.POST("/categories", createCategoryHandler(repo))
	r.DELETE("/categories/:id", deleteCategoryHandler(repo))
	return r
}

func vendor() *user.User {
	return &user.User{ID: "vendor-1", Email: "v@example.com", IsActive: true, Roles: []string{user.RoleVendor}}
}

func manager() *user.User {
	return &user.User{ID: "mgr-1", Email: "m@example.com", IsActive: true, Roles: []string{user.RoleManager}}
}

//
// ===== TESTS =====
//

func TestCreateItem_VendorOnly(t *testing.T) {
	repo := newStubCatalog()

	// plain customer gets 403
	r := newCatalogRouter(repo, customer())
	w := doJSON(r, http.MethodPost, "/items", `{"name":"Mouse","price":"19.90","quantity":5}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer, got %d", w.Code)
	}

	r = newCatalogRouter(repo, vendor())
	w = doJSON(r, http.MethodPost, "/items", `{"name":"Mouse","price":"19.90","quantity":5}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	// duplicate name
	w = doJSON(r, http.MethodPost, "/items", `{"name":"Mouse","price":"9.90","quantity":1}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate name, got %d", w.Code)
	}

	// bad price
	w = doJSON(r, http.MethodPost, "/items", `{"name":"Pad","price":"free","quantity":1}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on bad price, got %d", w.Code)
	}
}

func TestUpdateItem_OwnershipAndPartial(t *testing.T) {
	repo := newStubCatalog()
	id := uuid.NewString()
	repo.items[id] = &catalog.Item{ID: id, Name: "Keyboard", VendorID: "vendor-1", Price: "100.00", Quantity: 3, IsActive: true}

	// another vendor cannot touch it
	other := &user.User{ID: "vendor-2", Email: "v2@example.com", IsActive: true, Roles: []string{user.RoleVendor}}
	r := newCatalogRouter(repo, other)
	w := doJSON(r, http.MethodPut, "/items/"+id, `{"quantity":1}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign vendor, got %d", w.Code)
	}

	// owner: quantity only, price untouched
	r = newCatalogRouter(repo, vendor())
	w = doJSON(r, http.MethodPut, "/items/"+id, `{"quantity":7}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if got := repo.items[id]; got.Quantity != 7 || got.Price != "100.00" {
		t.Fatalf("partial update broken: %+v", got)
	}

	// manager may touch any item
	r = newCatalogRouter(repo, manager())
	w = doJSON(r, http.MethodPut, "/items/"+id, `{"price":"89.90"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if got := repo.items[id]; got.Price != "89.90" {
		t.Fatalf("price update not applied: %+v", got)
	}
}

func TestGetItem_IncludesInfo(t *testing.T) {
	repo := newStubCatalog()
	id := uuid.NewString()
	repo.items[id] = &catalog.Item{ID: id, Name: "Headset", VendorID: "vendor-1", Price: "49.90", Quantity: 2, IsActive: true}
	repo.info[id] = []catalog.ItemInfo{{ItemID: id, TypeInfo: "color", ValueInfo: "black"}}

	r := newCatalogRouter(repo, nil)
	w := doJSON(r, http.MethodGet, "/items/"+id, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"color"`) {
		t.Fatalf("info missing from response: %s", w.Body.String())
	}

	w = doJSON(r, http.MethodGet, "/items/"+uuid.NewString(), "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestCategories_ManagerOnly(t *testing.T) {
	repo := newStubCatalog()

	r := newCatalogRouter(repo, vendor())
	w := doJSON(r, http.MethodPost, "/categories", `{"name":"Laptops"}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for vendor, got %d", w.Code)
	}

	r = newCatalogRouter(repo, manager())
	w = doJSON(r, http.MethodPost, "/categories", `{"name":"Laptops"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	w = doJSON(r, http.MethodDelete, "/categories/nope", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown category, got %d", w.Code)
	}
}

func TestListItems_PassesQuery(t *testing.T) {
	repo := newStubCatalog()
	id := uuid.NewString()
	repo.items[id] = &catalog.Item{ID: id, Name: "Mouse Pro", VendorID: "vendor-1", Price: "99.90", Quantity: 5, IsActive: true}

	r := newCatalogRouter(repo, nil)
	w := doJSON(r, http.MethodGet, "/items?q=mouse&limit=10&offset=0", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if repo.lastQuery.Q != "mouse" || repo.lastQuery.Limit != 10 {
		t.Fatalf("query not forwarded: %+v", repo.lastQuery)
	}
}

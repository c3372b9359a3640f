// Command seed provisions demo accounts and a small catalog so a fresh
// database is immediately usable: one manager, one warehouse employee, one
// vendor with goods, and one plain customer. Safe to run repeatedly.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/avezhov/shop-api/internal/catalog"
	"github.com/avezhov/shop-api/internal/config"
	"github.com/avezhov/shop-api/internal/store"
	"github.com/avezhov/shop-api/internal/user"
)

type account struct {
	email     string
	firstName string
	lastName  string
	password  string
	roles     []string
}

var accounts = []account{
	{"manager@example.com", "Maria", "Manager", "manager-pass", []string{user.RoleManager}},
	{"employee@example.com", "Egor", "Employee", "employee-pass", []string{user.RoleEmployee}},
	{"vendor@example.com", "Vera", "Vendor", "vendor-pass", []string{user.RoleVendor}},
	{"customer@example.com", "Kira", "Customer", "customer-pass", nil},
}

var demoItems = []struct {
	name     string
	price    string
	quantity int
}{
	{"Mechanical Keyboard", "199.90", 10},
	{"Wireless Mouse", "49.90", 25},
	{"USB-C Dock", "129.00", 8},
}

func main() {
	cfg := config.Load()
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "seed").Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st, err := store.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer st.Close()

	users := user.NewPGRepo(st.Pool)
	items := catalog.NewPGRepo(st.Pool)

	var vendorID string
	for _, a := range accounts {
		u, err := ensureUser(ctx, users, a)
		if err != nil {
			logger.Fatal().Err(err).Str("email", a.email).Msg("seed user failed")
		}
		if u.HasRole(user.RoleVendor) {
			vendorID = u.ID
		}
		logger.Info().Str("email", u.Email).Strs("roles", u.Roles).Msg("account ready")
	}

	for _, d := range demoItems {
		if _, err := items.GetByName(ctx, d.name); err == nil {
			continue
		}
		it := &catalog.Item{
			ID:       uuid.NewString(),
			Name:     d.name,
			VendorID: vendorID,
			Price:    d.price,
			Quantity: d.quantity,
			IsActive: true,
		}
		if err := items.Create(ctx, it); err != nil {
			logger.Fatal().Err(err).Str("name", d.name).Msg("seed item failed")
		}
		logger.Info().Str("name", d.name).Msg("item ready")
	}
}

func ensureUser(ctx context.Context, repo user.Repository, a account) (*user.User, error) {
	if u, err := repo.GetByEmail(ctx, a.email); err == nil {
		return u, nil
	} else if !errors.Is(err, user.ErrNotFound) {
		return nil, err
	}

	hash, err := user.HashPassword(a.password)
	if err != nil {
		return nil, err
	}
	u := &user.User{
		ID:           uuid.NewString(),
		Email:        a.email,
		FirstName:    a.firstName,
		LastName:     a.lastName,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := repo.Create(ctx, u); err != nil {
		return nil, err
	}
	for _, role := range a.roles {
		if err := repo.GrantRole(ctx, u.ID, role); err != nil {
			return nil, err
		}
		u.Roles = append(u.Roles, role)
	}
	return u, nil
}

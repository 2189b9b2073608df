// Package seed loads the demo hospitals, staff accounts and their orders.
package seed

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	orderdomain "medsupply/internal/order/domain"
	"medsupply/internal/security"
	userdomain "medsupply/internal/user/domain"
)

// UserStore is the user repository surface the seeder needs.
type UserStore interface {
	Create(ctx context.Context, u *userdomain.User) error
	Count(ctx context.Context) (int, error)
}

// OrderStore is the order repository surface the seeder needs.
type OrderStore interface {
	Create(ctx context.Context, o *orderdomain.Order) error
}

// Account is a demo login.
type Account struct {
	HospitalName string
	Email        string
	Password     string
	Role         userdomain.Role
}

// DemoAccounts are created on an empty store. Passwords are printed by cmd/seed.
var DemoAccounts = []Account{
	{"Addis General Hospital", "addis.general@medsupply.local", "Password123", userdomain.RoleHospital},
	{"Bahir Dar Clinic", "bahirdar.clinic@medsupply.local", "StrongPass123", userdomain.RoleHospital},
	{"Hawassa Medical Center", "hawassa.center@medsupply.local", "Meds12345", userdomain.RoleHospital},
	{"MedSupply Support", "support@medsupply.local", "Support123", userdomain.RoleSupport},
	{"System Administrator", "admin@medsupply.local", "Admin123", userdomain.RoleAdmin},
}

var demoOrders = []struct {
	medication string
	quantity   int
	status     string
}{
	{"Amoxicillin 500mg", 200, orderdomain.StatusShipped},
	{"Paracetamol 500mg", 500, orderdomain.StatusPendingApproval},
	{"Insulin 100IU", 100, orderdomain.StatusDelivered},
	{"Omeprazole 20mg", 300, orderdomain.StatusPendingApproval},
	{"Vitamin D 1000IU", 150, orderdomain.StatusShipped},
}

// Demo creates DemoAccounts and five orders per hospital account. It does nothing
// when any user already exists and reports whether it seeded.
func Demo(ctx context.Context, users UserStore, orders OrderStore, hasher *security.Hasher) (bool, error) {
	n, err := users.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("seed check: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	now := time.Now().UTC()
	for _, a := range DemoAccounts {
		hash, err := hasher.Hash([]byte(a.Password))
		if err != nil {
			return false, fmt.Errorf("hash password for %s: %w", a.Email, err)
		}
		u := &userdomain.User{
			ID:           uuid.New().String(),
			HospitalName: a.HospitalName,
			Email:        a.Email,
			PasswordHash: hash,
			Role:         a.Role,
			CreatedAt:    now,
		}
		if err := users.Create(ctx, u); err != nil {
			return false, fmt.Errorf("create %s: %w", a.Email, err)
		}
		if a.Role != userdomain.RoleHospital {
			continue
		}
		for _, m := range demoOrders {
			batch, err := batchNumber()
			if err != nil {
				return false, err
			}
			o := &orderdomain.Order{
				ID:             uuid.New().String(),
				UserID:         u.ID,
				MedicationName: m.medication,
				Quantity:       m.quantity,
				Status:         m.status,
				RequestedAt:    now,
				BatchNumber:    batch,
			}
			if err := orders.Create(ctx, o); err != nil {
				return false, fmt.Errorf("create order for %s: %w", a.Email, err)
			}
		}
	}
	log.Printf("seed: created %d demo accounts and their orders", len(DemoAccounts))
	return true, nil
}

// batchNumber returns 8 random hex characters.
func batchNumber() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

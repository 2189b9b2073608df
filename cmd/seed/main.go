// seed inserts the demo hospitals, staff accounts and orders into Postgres.
// Idempotent: skips when any user already exists.
package main

import (
	"context"
	"fmt"
	"log"

	"medsupply/internal/config"
	"medsupply/internal/db"
	orderrepo "medsupply/internal/order/repository"
	"medsupply/internal/security"
	"medsupply/internal/seed"
	userrepo "medsupply/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	seeded, err := seed.Demo(context.Background(),
		userrepo.NewPostgresRepository(conn),
		orderrepo.NewPostgresRepository(conn),
		security.NewHasher(cfg.BcryptCost),
	)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	if !seeded {
		log.Println("Seed already applied (users exist). Skipping.")
		return
	}
	log.Println("Seed completed successfully.")
	for _, a := range seed.DemoAccounts {
		fmt.Printf("%-8s %s / %s\n", a.Role, a.Email, a.Password)
	}
}

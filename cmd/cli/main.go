package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/IM2627/AIESEC-Shop/internal/store"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	addAdminCmd := flag.NewFlagSet("add-admin", flag.ExitOnError)
	email := addAdminCmd.String("email", "", "Email for the new admin")
	password := addAdminCmd.String("password", "", "Password for the new admin")

	if len(os.Args) < 2 {
		fmt.Println("expected 'add-admin' subcommand")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add-admin":
		addAdminCmd.Parse(os.Args[2:])
		if *email == "" || *password == "" {
			fmt.Println("email and password are required")
			addAdminCmd.PrintDefaults()
			os.Exit(1)
		}
		createAdmin(*email, *password)
	default:
		fmt.Println("expected 'add-admin' subcommand")
		os.Exit(1)
	}
}

func createAdmin(email, password string) {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./shop.db"
	}

	db, err := store.NewStore(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	// Ensure tables exist if running cli before the server
	if err := db.InitSchema(); err != nil {
		log.Fatalf("Failed to init schema: %v", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	if err := db.CreateAdmin(email, string(hashedPassword)); err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}

	fmt.Printf("Admin '%s' created successfully.\n", email)
}

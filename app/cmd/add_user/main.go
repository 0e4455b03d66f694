package main

import (
	"flag"
	"fmt"

	"amani-schools/app/config"
	"amani-schools/app/database"
	"amani-schools/app/models"
)

func main() {
	firstName := flag.String("first-name", "", "User first name")
	lastName := flag.String("last-name", "", "User last name")
	email := flag.String("email", "", "User email address")
	password := flag.String("password", "", "Initial password")
	role := flag.String("role", "teacher", "Role to assign (admin, head_teacher, teacher)")
	flag.Parse()

	if *firstName == "" || *lastName == "" || *email == "" || *password == "" {
		fmt.Println("Usage: add_user -first-name NAME -last-name NAME -email EMAIL -password PASSWORD [-role ROLE]")
		return
	}

	// Initialize database connection
	config.InitDB()
	db := config.GetDB()
	if db == nil {
		fmt.Println("Failed to connect to database")
		return
	}
	defer db.Close()

	user := &models.User{
		FirstName: *firstName,
		LastName:  *lastName,
		Email:     *email,
		Password:  *password,
		IsActive:  true,
	}

	if err := database.CreateUser(db, user, []string{*role}); err != nil {
		fmt.Printf("Error creating user: %v\n", err)
		return
	}

	fmt.Printf("User created successfully: %s %s (%s) as %s\n", user.FirstName, user.LastName, user.Email, *role)
}

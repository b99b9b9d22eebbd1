package database

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"portfolio/internal/logger"
	"portfolio/internal/models"
)

// SeedUser is a development account created by Seed.
type SeedUser struct {
	Email       string
	Password    string
	DisplayName string
	Role        models.Role
}

// DevUsers are the accounts created on an empty database in development.
var DevUsers = []SeedUser{
	{Email: "admin@portfolio.local", Password: "admin", DisplayName: "Admin", Role: models.RoleAdministrator},
	{Email: "moderator@portfolio.local", Password: "moderator", DisplayName: "Moderator", Role: models.RoleModerator},
}

// Seed populates an empty database with the development accounts. It is a
// no-op once any user exists.
func Seed(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		logger.Z().Info("database already seeded, skipping")
		return nil
	}

	for _, u := range DevUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("seed bcrypt: %w", err)
		}

		_, err = db.ExecContext(ctx, `
			INSERT INTO users (email, password_hash, display_name, role)
			VALUES ($1, $2, $3, $4)
		`, u.Email, string(hash), u.DisplayName, u.Role)
		if err != nil {
			return fmt.Errorf("seed insert %s: %w", u.Email, err)
		}

		logger.Z().Info("seeded development user",
			zap.String("email", u.Email),
			zap.String("role", string(u.Role)),
		)
	}

	return nil
}

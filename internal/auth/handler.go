package auth

import (
	"strings"

	"buffet-backend/internal/apperror"
	"buffet-backend/internal/config"
	"buffet-backend/internal/database"
	"buffet-backend/internal/httpx"
	"buffet-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,max=100"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// RegisterHandler creates the first admin account. Once any user exists
// further registrations are refused.
func RegisterHandler(store *database.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterRequest
		if err := httpx.BindAndValidate(c, &body); err != nil {
			return err
		}
		body.Username = strings.TrimSpace(strings.ToLower(body.Username))

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return apperror.Infrastructure("hash password", err)
		}

		user := models.User{
			Username:     body.Username,
			PasswordHash: string(hash),
			Name:         strings.TrimSpace(body.Name),
			Role:         models.RoleAdmin,
		}

		var exists bool
		err = store.Transaction(c.UserContext(), func(tx *gorm.DB) error {
			var count int64
			if err := tx.Model(&models.User{}).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				exists = true
				return nil
			}
			return tx.Create(&user).Error
		})
		if err != nil {
			return apperror.FromDB(err, "user not found")
		}
		if exists {
			return fiber.NewError(fiber.StatusForbidden, "an admin account already exists")
		}

		return c.Status(fiber.StatusCreated).JSON(user)
	}
}

func LoginHandler(store *database.Store, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := httpx.BindAndValidate(c, &body); err != nil {
			return err
		}
		username := strings.TrimSpace(strings.ToLower(body.Username))

		db, cancel := store.Conn(c.UserContext())
		defer cancel()

		var user models.User
		if err := db.Where("username = ?", username).First(&user).Error; err != nil {
			if apperror.Is(apperror.FromDB(err, ""), apperror.KindNotFound) {
				return apperror.Unauthorized("invalid username or password")
			}
			return apperror.FromDB(err, "")
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			return apperror.Unauthorized("invalid username or password")
		}

		token, err := GenerateToken(cfg.JWTSecret, &user)
		if err != nil {
			return apperror.Infrastructure("sign token", err)
		}

		return c.JSON(LoginResponse{Token: token, User: &user})
	}
}

func MeHandler(store *database.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := c.Locals(CtxUserIDKey).(string)
		if userID == "" {
			return apperror.Unauthorized("missing user")
		}

		db, cancel := store.Conn(c.UserContext())
		defer cancel()

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			return apperror.FromDB(err, "user not found")
		}
		return c.JSON(user)
	}
}

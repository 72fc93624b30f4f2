package rest

import (
	"context"
	"time"

	"github.com/bikram73/My-Bank/internal/common"
	"github.com/bikram73/My-Bank/internal/money"
	"github.com/bikram73/My-Bank/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

type messageResponse struct {
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

type balanceResponse struct {
	Balance  money.Amount `json:"balance"`
	UID      int64        `json:"uid"`
	Username string       `json:"username"`
	Email    string       `json:"email"`
	Phone    string       `json:"phone"`
	Role     string       `json:"role"`
}

type sessionResponse struct {
	ID        int64     `json:"id"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	Active    bool      `json:"active"`
}

func (s *HTTPServer) NextUID(c *fiber.Ctx) error {
	next, err := s.accounts.NextUID(c.UserContext())
	if err != nil {
		return toHTTPError(err, "DB Error")
	}
	return c.JSON(fiber.Map{"nextUid": next})
}

func (s *HTTPServer) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	account, err := s.accounts.Register(c.UserContext(), services.RegisterRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	})
	if err != nil {
		return toHTTPError(err, "Database error during registration.")
	}

	s.logger.Info(c.UserContext(), "Registered", "account_id", account.ID)
	return c.JSON(messageResponse{Message: "Registration successful", Redirect: "/index.html"})
}

func (s *HTTPServer) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	session, err := s.accounts.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return toHTTPError(err, "Database error")
	}

	c.Cookie(&fiber.Cookie{
		Name:     common.SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		MaxAge:   int(session.MaxAge.Seconds()),
		Expires:  session.ExpiresAt,
		HTTPOnly: true,
		Secure:   s.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(messageResponse{Message: "Login successful", Redirect: "/dashboard.html"})
}

func (s *HTTPServer) Balance(c *fiber.Ctx) error {
	profile, err := s.accounts.Profile(c.UserContext(), sessionToken(c))
	if err != nil {
		return toHTTPError(err, "Database error")
	}

	return c.JSON(balanceResponse{
		Balance:  profile.Balance,
		UID:      profile.ID,
		Username: profile.Username,
		Email:    profile.Email,
		Phone:    profile.Phone,
		Role:     profile.Role,
	})
}

func (s *HTTPServer) ChangePassword(c *fiber.Ctx) error {
	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := s.accounts.ChangePassword(c.UserContext(), sessionToken(c), req.NewPassword); err != nil {
		return toHTTPError(err, "Database error")
	}
	return c.JSON(messageResponse{Message: "Password updated successfully"})
}

func (s *HTTPServer) Sessions(c *fiber.Ctx) error {
	records, err := s.accounts.Sessions(c.UserContext(), sessionToken(c))
	if err != nil {
		return toHTTPError(err, "Database error")
	}

	out := make([]sessionResponse, 0, len(records))
	for _, r := range records {
		out = append(out, sessionResponse{ID: r.ID, IssuedAt: r.IssuedAt, ExpiresAt: r.ExpiresAt, Active: r.Active})
	}
	return c.JSON(fiber.Map{"sessions": out})
}

// Logout only clears the cookie. The token itself stays valid until expiry.
func (s *HTTPServer) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     common.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   s.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(messageResponse{Message: "Logged out", Redirect: "/index.html"})
}

func (s *HTTPServer) Healthz(c *fiber.Ctx) error {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		if err := s.health(ctx); err != nil {
			s.logger.Warn(ctx, "health check failed", "error", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

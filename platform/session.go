package platform

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// expirySkew: Tokens kurz vor Ablauf werden bereits erneuert.
const expirySkew = 30 * time.Second

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login meldet den Seeder-Account an und merkt sich das Session-Token.
func (c *Client) Login(ctx context.Context) error {
	if c.dryRun {
		c.Logger.Info("[DRY RUN] Anmeldung an der Zielplattform übersprungen")
		return nil
	}
	var res loginResponse
	err := c.send(ctx, http.MethodPost, "/auth/login", loginRequest{
		Username: c.Config.PlatformUsername,
		Password: c.Config.PlatformPassword,
	}, &res, false)
	if err != nil {
		return fmt.Errorf("anmeldung: %w", err)
	}
	if res.Token == "" {
		return fmt.Errorf("anmeldung: antwort ohne token")
	}

	exp := tokenExpiry(res.Token)
	c.mu.Lock()
	c.token = res.Token
	c.expiresAt = exp
	c.mu.Unlock()

	c.Logger.Info("An der Zielplattform angemeldet", zap.Time("expires_at", exp))
	return nil
}

// tokenExpiry liest den exp-Claim ohne Signaturprüfung. Kein JWT oder kein exp = läuft nie ab.
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// session liefert ein gültiges Token und meldet sich bei Bedarf neu an.
func (c *Client) session(ctx context.Context) (string, error) {
	c.mu.Lock()
	token, exp := c.token, c.expiresAt
	c.mu.Unlock()

	if token != "" && (exp.IsZero() || c.now().Add(expirySkew).Before(exp)) {
		return token, nil
	}
	if token != "" {
		c.Logger.Info("Session abgelaufen, melde neu an")
	}
	if err := c.Login(ctx); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token, nil
}

func (c *Client) invalidate() {
	c.mu.Lock()
	c.token = ""
	c.expiresAt = time.Time{}
	c.mu.Unlock()
}

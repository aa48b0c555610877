package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"art-seeder/config"
	"art-seeder/models"
)

// StatusError ist eine Antwort der Zielplattform, die nicht wiederholt wird.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// Client spricht die REST-API der Zielplattform. Im Dry-Run werden keine Requests gesendet.
type Client struct {
	Config *config.Config
	Logger *zap.Logger

	client  *http.Client
	baseURL string
	dryRun  bool
	backoff time.Duration
	now     func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewClient erstellt einen Client für PLATFORM_BASE_URL.
func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConnsPerHost = 20

	return &Client{
		Config:  cfg,
		Logger:  logger,
		client:  &http.Client{Transport: t, Timeout: 2 * time.Minute},
		baseURL: strings.TrimRight(cfg.PlatformBaseURL, "/"),
		dryRun:  cfg.PlatformDryRun,
		backoff: 2 * time.Second,
		now:     time.Now,
	}
}

type idResponse struct {
	ID string `json:"id"`
}

type bulkRequest struct {
	Items []models.SocialEdge `json:"items"`
}

type creatorRequest struct {
	UserID string              `json:"user_id"`
	Role   models.CreationRole `json:"role"`
}

func (c *Client) CreateUser(ctx context.Context, user models.TargetUser) (string, error) {
	if c.dryRun {
		return c.fakeID("user", zap.String("username", user.Username)), nil
	}
	var res idResponse
	if err := c.send(ctx, http.MethodPost, "/users", user, &res, true); err != nil {
		return "", err
	}
	return requireID(res, "user "+user.Username)
}

func (c *Client) CreatePublication(ctx context.Context, pub models.TargetPublication) (string, error) {
	if c.dryRun {
		return c.fakeID("publication", zap.String("kind", string(pub.Kind)), zap.String("title", pub.Title)), nil
	}
	var res idResponse
	if err := c.send(ctx, http.MethodPost, "/publications", pub, &res, true); err != nil {
		return "", err
	}
	return requireID(res, "publication "+pub.Title)
}

// CreateCreationLink verknüpft einen Account mit einer Publikation.
func (c *Client) CreateCreationLink(ctx context.Context, link models.CreationLink) error {
	if c.dryRun {
		c.Logger.Debug("[DRY RUN] Verknüpfung",
			zap.String("publication_id", link.PublicationID),
			zap.String("user_id", link.UserID),
			zap.String("role", string(link.Role)))
		return nil
	}
	path := "/publications/" + link.PublicationID + "/creators"
	return c.send(ctx, http.MethodPost, path, creatorRequest{UserID: link.UserID, Role: link.Role}, nil, true)
}

// BulkSetFollows setzt Follows idempotent (PUT).
func (c *Client) BulkSetFollows(ctx context.Context, edges []models.SocialEdge) error {
	return c.bulk(ctx, http.MethodPut, "/follows/bulk", edges)
}

func (c *Client) BulkCreateLikes(ctx context.Context, edges []models.SocialEdge) error {
	return c.bulk(ctx, http.MethodPost, "/likes/bulk", edges)
}

func (c *Client) BulkCreateComments(ctx context.Context, edges []models.SocialEdge) error {
	return c.bulk(ctx, http.MethodPost, "/comments/bulk", edges)
}

func (c *Client) CreateCollabRequest(ctx context.Context, req models.CollabRequest) error {
	if c.dryRun {
		c.Logger.Debug("[DRY RUN] Kollaborationsanfrage", zap.String("sender_id", req.SenderID))
		return nil
	}
	return c.send(ctx, http.MethodPost, "/collaboration-requests", req, nil, true)
}

func (c *Client) CreateUpgradeRequest(ctx context.Context, req models.UpgradeRequest) error {
	if c.dryRun {
		c.Logger.Debug("[DRY RUN] Upgrade-Antrag", zap.String("user_id", req.UserID))
		return nil
	}
	return c.send(ctx, http.MethodPost, "/upgrade-requests", req, nil, true)
}

func (c *Client) bulk(ctx context.Context, method, path string, edges []models.SocialEdge) error {
	if len(edges) == 0 {
		return nil
	}
	if c.dryRun {
		c.Logger.Debug("[DRY RUN] Bulk-Request", zap.String("path", path), zap.Int("items", len(edges)))
		return nil
	}
	return c.send(ctx, method, path, bulkRequest{Items: edges}, nil, true)
}

func (c *Client) fakeID(what string, fields ...zap.Field) string {
	id := uuid.NewString()
	c.Logger.Debug("[DRY RUN] Würde anlegen: "+what, append(fields, zap.String("fake_id", id))...)
	return id
}

func requireID(res idResponse, what string) (string, error) {
	if res.ID == "" {
		return "", fmt.Errorf("%s: antwort ohne id", what)
	}
	return res.ID, nil
}

// send führt einen JSON-Request aus. Netzwerkfehler, 429 und 5xx werden mit linear wachsender
// Pause wiederholt; ein 401 führt einmalig zur Neuanmeldung.
func (c *Client) send(ctx context.Context, method, path string, body, out any, auth bool) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return err
		}
	}

	attempts := c.Config.PlatformMaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}
	relogged := false
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * c.backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		if auth {
			token, err := c.session(ctx)
			if err != nil {
				return err
			}
			req.Header.Set("Authorization", "Bearer "+token)
		}

		log := c.Logger.With(zap.String("method", method), zap.String("path", path), zap.Int("attempt", attempt+1))

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn("Netzwerkfehler bei der Zielplattform", zap.Error(err))
			lastErr = err
			continue
		}

		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			log.Warn("Zielplattform überlastet, wiederhole", zap.Int("status", resp.StatusCode))
			lastErr = &StatusError{Method: method, Path: path, Status: resp.StatusCode, Body: string(b)}
			continue
		case resp.StatusCode == http.StatusUnauthorized && auth && !relogged:
			log.Info("Token abgelehnt, melde neu an")
			c.invalidate()
			relogged = true
			attempt-- // Neuanmeldung zählt nicht als Versuch
			continue
		case resp.StatusCode >= 300:
			return &StatusError{Method: method, Path: path, Status: resp.StatusCode, Body: string(b)}
		}

		if out != nil && len(b) > 0 {
			if err := json.Unmarshal(b, out); err != nil {
				return fmt.Errorf("%s %s: antwort lesen: %w", method, path, err)
			}
		}
		return nil
	}
	return fmt.Errorf("%s %s: nach %d versuchen aufgegeben: %w", method, path, attempts, lastErr)
}

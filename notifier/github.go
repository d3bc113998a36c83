package notifier

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"pararius-alerts/config"
	"pararius-alerts/models"
	"pararius-alerts/utils"
)

const (
	defaultBaseURL = "https://api.github.com"
	httpTimeout    = 15 * time.Second

	// maxDescriptionRunes caps the detail-page description embedded in an
	// issue body; GitHub rejects bodies past 65536 characters.
	maxDescriptionRunes = 500
)

// Client creates one GitHub issue per newly discovered listing. With no
// token or repository configured the client is disabled and every Notify
// reports success without sending, so runs without credentials still
// complete cleanly.
type Client struct {
	token   string
	repo    string
	baseURL string
	http    *http.Client
	logger  *utils.Logger
	retry   *utils.RetryConfig
}

// New creates a GitHub Issues notifier from the configured credentials.
func New(cfg *config.Config, logger *utils.Logger) *Client {
	return &Client{
		token:   cfg.GitHubToken,
		repo:    cfg.GitHubRepo,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: httpTimeout},
		logger:  logger,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
			Retryable:   retryable,
		},
	}
}

// Enabled reports whether the client has credentials to send with.
func (c *Client) Enabled() bool {
	return c.token != "" && c.repo != ""
}

type issueRequest struct {
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Labels []string `json:"labels"`
}

type issueResponse struct {
	HTMLURL string `json:"html_url"`
}

// Notify creates the issue for one listing. The call returns nil only after
// the API confirmed creation (or when the client is disabled); callers flip
// the listing's notified flag on success and leave it for the next run
// otherwise. Transient API failures are retried with backoff in here.
func (c *Client) Notify(l models.StoredListing, details *models.ListingDetails) error {
	if !c.Enabled() {
		c.logger.Info("[notify] Notifications disabled (no token or repository) — skipping issue for %s", l.ID)
		return nil
	}

	title := "🏠 New listing: " + l.Title
	if l.Location != "" {
		title += " — " + l.Location
	}

	payload, err := json.Marshal(issueRequest{
		Title:  title,
		Body:   c.buildBody(l, details),
		Labels: []string{"notification", "new-listing"},
	})
	if err != nil {
		return fmt.Errorf("notify: marshal issue: %w", err)
	}

	var issueURL string
	err = c.retry.Do("create issue for "+l.ID, func() error {
		req, err := http.NewRequest(http.MethodPost, c.baseURL+"/repos/"+c.repo+"/issues", bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "token "+c.token)
		req.Header.Set("Accept", "application/vnd.github.v3+json")
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if resp.StatusCode != http.StatusCreated {
			return &apiError{status: resp.StatusCode, body: strings.TrimSpace(string(body))}
		}

		var created issueResponse
		if err := json.Unmarshal(body, &created); err == nil {
			issueURL = created.HTMLURL
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("notify %s: %w", l.ID, err)
	}

	c.logger.Info("[notify] Issue created for %s: %s", l.ID, issueURL)
	return nil
}

// buildBody renders the issue body: header, the listing's fields with
// Unknown placeholders for whatever the parser could not extract, the image,
// the optional detail-page extras, and the footer linking the web view.
func (c *Client) buildBody(l models.StoredListing, details *models.ListingDetails) string {
	var b strings.Builder

	b.WriteString("## Pararius Apartment Alerts\n\n")
	fmt.Fprintf(&b, "#### [%s](%s)\n", l.Title, l.URL)
	fmt.Fprintf(&b, "- **Price:** %s\n", formatPrice(l.Price))
	fmt.Fprintf(&b, "- **Size:** %s m²\n", intOrUnknown(l.Size))
	fmt.Fprintf(&b, "- **Rooms:** %s\n", intOrUnknown(l.Rooms))
	fmt.Fprintf(&b, "- **Location:** %s\n", orUnknown(l.Location))
	fmt.Fprintf(&b, "- **Interior:** %s\n", orUnknown(l.Interior))
	fmt.Fprintf(&b, "- **Agency:** %s\n", orUnknown(l.Agency))

	if l.ImageURL != "" {
		fmt.Fprintf(&b, "\n![Apartment](%s)\n", l.ImageURL)
	}

	if details != nil {
		if details.Description != "" {
			fmt.Fprintf(&b, "\n### Description\n%s\n", truncate(details.Description, maxDescriptionRunes))
		}
		if details.Available != "" {
			fmt.Fprintf(&b, "\n**Available:** %s\n", details.Available)
		}
		if len(details.Characteristics) > 0 {
			b.WriteString("\n### Characteristics\n")
			keys := make([]string, 0, len(details.Characteristics))
			for k := range details.Characteristics {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(&b, "- **%s:** %s\n", k, details.Characteristics[k])
			}
		}
	}

	b.WriteString("\n---\n")
	b.WriteString("*This issue was automatically created by the Pararius Apartment Alerts system.*\n")
	if owner, name, ok := strings.Cut(c.repo, "/"); ok {
		fmt.Fprintf(&b, "*View all listings on the [web interface](https://%s.github.io/%s/web/).*", owner, name)
	}

	return b.String()
}

// apiError is a non-201 response from the issues endpoint.
type apiError struct {
	status int
	body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("github api status %d: %s", e.status, e.body)
}

func (e *apiError) transient() bool {
	return e.status == http.StatusTooManyRequests || e.status >= 500
}

// retryable classifies notify errors: rate limits, server errors and
// transport failures retry; any other API status (validation, auth) will
// fail identically on resend.
func retryable(err error) bool {
	var ae *apiError
	if errors.As(err, &ae) {
		return ae.transient()
	}
	return true
}

// formatPrice renders a monthly rent like the site does: "€1,200".
func formatPrice(p *float64) string {
	if p == nil {
		return "Unknown"
	}
	digits := strconv.FormatInt(int64(*p+0.5), 10)

	var b strings.Builder
	b.WriteString("€")
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(",")
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func intOrUnknown(v *int) string {
	if v == nil {
		return "Unknown"
	}
	return strconv.Itoa(*v)
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}

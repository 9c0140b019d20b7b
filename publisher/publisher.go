package publisher

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	DefaultAPIBaseURL = "https://api.github.com"
	acceptHeader      = "application/vnd.github.v3+json"
)

// ErrMissingConfig is returned before any request when token, owner or repo is empty.
var ErrMissingConfig = errors.New("missing GitHub configuration: token, owner and repo are required")

// Config is the GitHub target the briefing is committed to.
type Config struct {
	Owner string `json:"owner" yaml:"owner"`
	Repo  string `json:"repo" yaml:"repo"`
	Path  string `json:"path" yaml:"path"`
	Token string `json:"token" yaml:"token"`
}

// Ready reports whether the record carries everything Publish needs.
func (c Config) Ready() bool {
	return c.Token != "" && c.Owner != "" && c.Repo != ""
}

// SyncEnabled reports whether a fresh briefing should be pushed automatically.
func (c Config) SyncEnabled() bool {
	return c.Token != "" && c.Repo != ""
}

// Masked returns a copy safe for display.
func (c Config) Masked() Config {
	if c.Token == "" {
		return c
	}
	tail := ""
	if len(c.Token) > 8 {
		tail = c.Token[len(c.Token)-4:]
	}
	c.Token = "****" + tail
	return c
}

// APIError carries the message GitHub returned for a failed write.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return "github api error: " + e.Message
}

// Publisher commits documents through the GitHub Contents API.
type Publisher struct {
	client  *http.Client
	baseURL string
	verbose bool
	logger  zerolog.Logger
}

// New creates a Publisher. A nil client gets a 60s timeout; an empty baseURL
// means api.github.com.
func New(client *http.Client, baseURL string, verbose bool, logger zerolog.Logger) *Publisher {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}
	return &Publisher{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		verbose: verbose,
		logger:  logger,
	}
}

func (p *Publisher) infof(format string, args ...interface{}) {
	if !p.verbose {
		return
	}
	p.logger.Info().Msgf(format, args...)
}

// TargetPath joins the optional directory prefix and the filename with a single slash.
func TargetPath(prefix, filename string) string {
	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		return filename
	}
	return prefix + "/" + filename
}

// CommitMessage is the fixed message used for every briefing commit.
func CommitMessage(filename string) string {
	return fmt.Sprintf("Daily briefing: %s (via Obsidian AI Sync)", filename)
}

// EncodeContent base64-encodes the UTF-8 bytes of the document.
func EncodeContent(content string) string {
	return base64.StdEncoding.EncodeToString([]byte(content))
}

// Publish creates or updates filename under cfg.Path and returns the file's web URL.
func (p *Publisher) Publish(ctx context.Context, cfg Config, filename, content string) (string, error) {
	if !cfg.Ready() {
		return "", ErrMissingConfig
	}

	target := TargetPath(cfg.Path, filename)
	endpoint := p.contentsURL(cfg, target)

	sha, err := p.lookupSHA(ctx, endpoint, cfg.Token)
	if err != nil {
		return "", err
	}
	if sha != "" {
		p.infof("Found existing %s at sha=%s, updating", target, sha)
	} else {
		p.infof("No existing %s, creating", target)
	}

	body, err := buildPutBody(CommitMessage(filename), EncodeContent(content), sha)
	if err != nil {
		return "", err
	}

	htmlURL, err := p.putContents(ctx, endpoint, cfg.Token, body)
	if err != nil {
		return "", err
	}
	p.infof("Committed %s/%s:%s -> %s", cfg.Owner, cfg.Repo, target, htmlURL)
	return htmlURL, nil
}

func (p *Publisher) contentsURL(cfg Config, target string) string {
	segments := strings.Split(target, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		p.baseURL, url.PathEscape(cfg.Owner), url.PathEscape(cfg.Repo), strings.Join(segments, "/"))
}

// lookupSHA returns the current blob sha, or "" when the file is absent.
// Every non-2xx status counts as absent; only transport errors are returned.
func (p *Publisher) lookupSHA(ctx context.Context, endpoint, token string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	setHeaders(req, token)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode != http.StatusNotFound {
			// 401/403/429 also land here and will surface again on the PUT.
			p.logger.Warn().Int("status", resp.StatusCode).Str("url", endpoint).
				Msg("existence check failed, treating file as absent")
		}
		return "", nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return gjson.GetBytes(data, "sha").String(), nil
}

func (p *Publisher) putContents(ctx context.Context, endpoint, token string, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	setHeaders(req, token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := gjson.GetBytes(data, "message").String()
		if msg == "" {
			msg = resp.Status
		}
		return "", &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	return gjson.GetBytes(data, "content.html_url").String(), nil
}

func buildPutBody(message, encoded, sha string) ([]byte, error) {
	body, err := sjson.SetBytes([]byte(`{}`), "message", message)
	if err != nil {
		return nil, err
	}
	if body, err = sjson.SetBytes(body, "content", encoded); err != nil {
		return nil, err
	}
	if sha != "" {
		if body, err = sjson.SetBytes(body, "sha", sha); err != nil {
			return nil, err
		}
	}
	return body, nil
}

func setHeaders(req *http.Request, token string) {
	req.Header.Set("Authorization", "token "+token)
	req.Header.Set("Accept", acceptHeader)
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/budgetr/internal/model"
	"github.com/google/uuid"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// Config holds the settings for a Client.
type Config struct {
	HTTPClient *http.Client
	Downloader Downloader
	Logger     *slog.Logger
	BaseURL    string
	ExportDir  string
	Timeout    time.Duration
}

// DefaultConfig returns a Config pointing at a local server.
func DefaultConfig() Config {
	return Config{
		BaseURL:   "http://127.0.0.1:8080",
		ExportDir: ".",
		Timeout:   30 * time.Second,
	}
}

// Validate checks that the configuration can produce a client.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("server URL is required")
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("server URL must start with http:// or https://: %s", c.BaseURL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}
	return nil
}

// Client implements API over HTTP. It holds no per-call state and is safe
// for concurrent use.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	downloader Downloader
	logger     *slog.Logger
}

var _ API = (*Client)(nil)

// NewClient creates a client for the server at cfg.BaseURL.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	baseURL, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse server URL: %w", err)
	}
	if baseURL.Path == "" {
		baseURL.Path = "/"
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	downloader := cfg.Downloader
	if downloader == nil {
		exportDir := cfg.ExportDir
		if exportDir == "" {
			exportDir = "."
		}
		downloader = NewFormDownloader(httpClient, exportDir, logger)
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		downloader: downloader,
		logger:     logger,
	}, nil
}

// GetExpenditures lists expenditures matching the query, in server order.
func (c *Client) GetExpenditures(ctx context.Context, query ExpenditureQuery) (*model.Results[*model.Expenditure], error) {
	if query.orderDropped() {
		c.logger.Debug("ignoring sort order without a sort column", "order", query.Order)
	}

	var envelope expenditureEnvelope
	if _, err := c.do(ctx, http.MethodGet, Endpoints.Expenditures, query.Values(), nil, &envelope); err != nil {
		return nil, logFailure(c.logger, "getExpenditures", err)
	}

	return envelope.results(), nil
}

// GetExpenditure fetches a single expenditure by id.
func (c *Client) GetExpenditure(ctx context.Context, id int64) (*model.Expenditure, error) {
	var raw model.RawExpenditure
	if _, err := c.do(ctx, http.MethodGet, expenditurePath(id), nil, nil, &raw); err != nil {
		return nil, logFailure(c.logger, "getExpenditure", err)
	}

	return transformExpenditure(&raw), nil
}

type createExpenditureBody struct {
	Category *string `json:"category,omitempty"`
	Date     string  `json:"date"`
	Amount   float64 `json:"amount"`
}

// CreateExpenditure stores a new expenditure. The category is only sent when
// it has a name; otherwise the server records the expenditure without one.
func (c *Client) CreateExpenditure(ctx context.Context, expenditure *model.Expenditure) (*model.Expenditure, error) {
	if expenditure == nil {
		return nil, logFailure(c.logger, "createExpenditure", &argumentError{errors.New("expenditure is required")})
	}

	body := createExpenditureBody{
		Date:   expenditure.Date().Format(TimeFormat),
		Amount: expenditure.Amount(),
	}
	if category := expenditure.Category(); category.IsReference() {
		name := category.Name()
		body.Category = &name
	}

	var raw model.RawExpenditure
	if _, err := c.do(ctx, http.MethodPost, Endpoints.Expenditures, nil, body, &raw); err != nil {
		return nil, logFailure(c.logger, "createExpenditure", err)
	}

	return transformExpenditure(&raw), nil
}

type updateExpenditureBody struct {
	Date     string  `json:"date"`
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// UpdateExpenditure overwrites date, amount and category of a stored
// expenditure. An expenditure without a named category clears it on the server.
func (c *Client) UpdateExpenditure(ctx context.Context, expenditure *model.Expenditure) (*model.Expenditure, error) {
	if expenditure == nil {
		return nil, logFailure(c.logger, "updateExpenditure", &argumentError{errors.New("expenditure is required")})
	}

	body := updateExpenditureBody{
		Date:   expenditure.Date().Format(TimeFormat),
		Amount: expenditure.Amount(),
	}
	if category := expenditure.Category(); category.IsReference() {
		body.Category = category.Name()
	}

	var raw model.RawExpenditure
	if _, err := c.do(ctx, http.MethodPost, expenditurePath(expenditure.ID()), nil, body, &raw); err != nil {
		return nil, logFailure(c.logger, "updateExpenditure", err)
	}

	return transformExpenditure(&raw), nil
}

// DeleteExpenditure removes an expenditure and returns the raw response body.
func (c *Client) DeleteExpenditure(ctx context.Context, expenditure *model.Expenditure) ([]byte, error) {
	if expenditure == nil {
		return nil, logFailure(c.logger, "deleteExpenditure", &argumentError{errors.New("expenditure is required")})
	}

	payload, err := c.do(ctx, http.MethodDelete, expenditurePath(expenditure.ID()), nil, nil, nil)
	if err != nil {
		return nil, logFailure(c.logger, "deleteExpenditure", err)
	}

	return payload, nil
}

// GetCategories lists all categories, in server order.
func (c *Client) GetCategories(ctx context.Context) (*model.Results[*model.Category], error) {
	var envelope categoryEnvelope
	if _, err := c.do(ctx, http.MethodGet, Endpoints.Categories, nil, nil, &envelope); err != nil {
		return nil, logFailure(c.logger, "getCategories", err)
	}

	return envelope.results(), nil
}

// CreateCategory stores a new category.
func (c *Client) CreateCategory(ctx context.Context, category *model.Category) (*model.Category, error) {
	if category == nil {
		return nil, logFailure(c.logger, "createCategory", &argumentError{errors.New("category is required")})
	}

	body := map[string]string{"name": category.Name()}

	var raw model.RawCategory
	if _, err := c.do(ctx, http.MethodPost, Endpoints.Categories, nil, body, &raw); err != nil {
		return nil, logFailure(c.logger, "createCategory", err)
	}

	return transformCategory(&raw), nil
}

// GetCategoryStats returns the per-category totals for a period as sent by
// the server.
func (c *Client) GetCategoryStats(ctx context.Context, query StatsQuery) ([]model.CategoryStat, error) {
	if err := query.Validate(); err != nil {
		return nil, logFailure(c.logger, "getCategoryStats", &argumentError{err})
	}

	var stats []model.CategoryStat
	if _, err := c.do(ctx, http.MethodGet, Endpoints.CategoryStats, query.Values(), nil, &stats); err != nil {
		return nil, logFailure(c.logger, "getCategoryStats", err)
	}

	return stats, nil
}

// GenerateExcel asks the server for an Excel workbook with one column per
// range. The ranges are posted as a single JSON form field through the
// Downloader; the returned error only reports that the download could not
// be triggered.
func (c *Client) GenerateExcel(ctx context.Context, ranges []ExportRange) error {
	if ranges == nil {
		ranges = []ExportRange{}
	}

	data, err := json.Marshal(ranges)
	if err != nil {
		return fmt.Errorf("failed to encode export ranges: %w", err)
	}

	form := url.Values{}
	form.Set("ranges", string(data))

	endpoint := c.baseURL.JoinPath(Endpoints.ExcelExport).String()
	if err := c.downloader.Download(ctx, endpoint, form); err != nil {
		return fmt.Errorf("failed to trigger excel export: %w", err)
	}

	return nil
}

func expenditurePath(id int64) string {
	return Endpoints.Expenditures + "/" + strconv.FormatInt(id, 10)
}

// do sends one JSON request. A non-2xx status becomes a *statusError; when
// out is non-nil the body is decoded into it. The raw body is returned.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) ([]byte, error) {
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("api request",
		"method", method,
		"path", u.Path,
		"query", u.RawQuery,
		"request_id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("api response",
		"method", method,
		"path", u.Path,
		"status", resp.StatusCode,
		"bytes", len(payload),
		"request_id", requestID)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &statusError{status: resp.StatusCode, message: serverMessage(payload)}
	}

	if out != nil {
		if err := json.Unmarshal(payload, out); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return payload, nil
}

// serverMessage extracts {"message": "..."} from an error body.
func serverMessage(payload []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return strings.TrimSpace(body.Message)
}

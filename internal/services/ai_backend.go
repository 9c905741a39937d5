package services

import (
  "bytes"
  "context"
  "encoding/json"
  "errors"
  "fmt"
  "io"
  "math/rand"
  "net"
  "net/http"
  "strconv"
  "strings"
  "time"

  "github.com/heraerp/hera-dev-sub007/internal/logger"
  "github.com/heraerp/hera-dev-sub007/internal/types"
)

// AIBackend is the uniform contract of one external schema generator. A
// backend may fail on missing credentials, network errors, or a malformed
// response; the orchestrator owns recovery.
type AIBackend interface {
  Name() string
  GenerateSchema(ctx context.Context, requirement string, entityTypeHint string) (*types.GeneratedSchema, error)
}

// AIBackendConfig configures one OpenAI-compatible backend.
type AIBackendConfig struct {
  Name       string
  BaseURL    string
  APIKey     string
  Model      string
  MaxRetries int
  Timeout    time.Duration
}

type openAIBackend struct {
  log        *logger.Logger
  name       string
  baseURL    string
  apiKey     string
  model      string
  httpClient *http.Client
  maxRetries int
}

func NewOpenAIBackend(log *logger.Logger, cfg AIBackendConfig) (AIBackend, error) {
  if cfg.APIKey == "" {
    return nil, fmt.Errorf("backend %s: missing api key", cfg.Name)
  }
  if cfg.BaseURL == "" {
    cfg.BaseURL = "https://api.openai.com"
  }
  if cfg.Model == "" {
    cfg.Model = "gpt-5.2"
  }
  if cfg.MaxRetries <= 0 {
    cfg.MaxRetries = 2
  }
  if cfg.Timeout <= 0 {
    cfg.Timeout = 60 * time.Second
  }
  return &openAIBackend{
    log:        log.With("service", "AIBackend", "backend", cfg.Name),
    name:       cfg.Name,
    baseURL:    cfg.BaseURL,
    apiKey:     cfg.APIKey,
    model:      cfg.Model,
    httpClient: &http.Client{Timeout: cfg.Timeout},
    maxRetries: cfg.MaxRetries,
  }, nil
}

func (c *openAIBackend) Name() string { return c.name }

type backendHTTPError struct {
  StatusCode int
  Body       string
}

func (e *backendHTTPError) Error() string {
  return fmt.Sprintf("http %d: %s", e.StatusCode, e.Body)
}

func isRetryableHTTP(code int) bool {
  if code == 408 || code == 429 {
    return true
  }
  return code >= 500 && code <= 599
}

func isRetryableErr(err error) bool {
  if err == nil {
    return false
  }
  if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
    return false
  }
  var netErr net.Error
  if errors.As(err, &netErr) && netErr.Timeout() {
    return true
  }
  var httpErr *backendHTTPError
  if errors.As(err, &httpErr) {
    return isRetryableHTTP(httpErr.StatusCode)
  }
  return false
}

func jitterSleep(base time.Duration) time.Duration {
  // +/- 20%
  if base <= 0 {
    return 0
  }
  delta := base.Seconds() * 0.2
  low := base.Seconds() - delta
  v := low + rand.Float64()*2*delta
  return time.Duration(v * float64(time.Second))
}

func (c *openAIBackend) doOnce(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
  var buf bytes.Buffer
  if body != nil {
    if err := json.NewEncoder(&buf).Encode(body); err != nil {
      return nil, nil, err
    }
  }

  req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
  if err != nil {
    return nil, nil, err
  }
  req.Header.Set("Authorization", "Bearer "+c.apiKey)
  req.Header.Set("Content-Type", "application/json")

  resp, err := c.httpClient.Do(req)
  if err != nil {
    return nil, nil, err
  }

  raw, readErr := io.ReadAll(resp.Body)
  _ = resp.Body.Close()
  if readErr != nil {
    return resp, nil, readErr
  }

  if resp.StatusCode < 200 || resp.StatusCode >= 300 {
    return resp, raw, &backendHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
  }
  return resp, raw, nil
}

func (c *openAIBackend) do(ctx context.Context, method, path string, body any, out any) error {
  backoff := 1 * time.Second
  var lastErr error

  for attempt := 0; attempt <= c.maxRetries; attempt++ {
    if ctx.Err() != nil {
      return ctx.Err()
    }

    resp, raw, err := c.doOnce(ctx, method, path, body)
    if err == nil {
      if out == nil {
        return nil
      }
      if uErr := json.Unmarshal(raw, out); uErr != nil {
        return fmt.Errorf("decode response: %w; raw=%s", uErr, string(raw))
      }
      return nil
    }
    lastErr = err

    if !isRetryableErr(err) || attempt == c.maxRetries {
      return err
    }

    // Respect Retry-After when present
    sleepFor := backoff
    if resp != nil {
      if ra := strings.TrimSpace(resp.Header.Get("Retry-After")); ra != "" {
        if secs, parseErr := strconv.Atoi(ra); parseErr == nil && secs > 0 {
          sleepFor = time.Duration(secs) * time.Second
        }
      }
    }
    if sleepFor > 10*time.Second {
      sleepFor = 10 * time.Second
    }
    sleepFor = jitterSleep(sleepFor)

    c.log.Warn("Backend request retrying",
      "path", path,
      "attempt", attempt+1,
      "max_retries", c.maxRetries,
      "sleep", sleepFor.String(),
      "error", err.Error(),
    )

    time.Sleep(sleepFor)
    backoff *= 2
  }

  return lastErr
}

type responsesRequest struct {
  Model string `json:"model"`
  Input []struct {
    Role    string `json:"role"`
    Content string `json:"content"`
  } `json:"input"`
  Text struct {
    Format map[string]any `json:"format"`
  } `json:"text"`
  Temperature float64 `json:"temperature,omitempty"`
}

type responsesResponse struct {
  Output []struct {
    Type    string `json:"type"`
    Role    string `json:"role,omitempty"`
    Content []struct {
      Type string `json:"type"`
      Text string `json:"text,omitempty"`
    } `json:"content,omitempty"`
  } `json:"output"`
  Refusal string `json:"refusal,omitempty"`
}

const schemaSystemPrompt = `You design schemas for a universal four-table data model ` +
  `(entities, dynamic attributes, metadata, transactions). Given a business requirement, ` +
  `propose one entity schema: entity_type (snake_case singular), display name, business domain, ` +
  `and the fields a complete implementation needs. Field types are limited to ` +
  `text, number, boolean, date and json. Include per-field confidence between 0 and 1.`

func (c *openAIBackend) GenerateSchema(ctx context.Context, requirement string, entityTypeHint string) (*types.GeneratedSchema, error) {
  user := requirement
  if entityTypeHint != "" {
    user = fmt.Sprintf("%s\n\nEntity type hint: %s", requirement, entityTypeHint)
  }

  req := responsesRequest{
    Model: c.model,
    Input: []struct {
      Role    string `json:"role"`
      Content string `json:"content"`
    }{
      {Role: "system", Content: schemaSystemPrompt},
      {Role: "user", Content: user},
    },
    Temperature: 0.2,
  }
  req.Text.Format = map[string]any{
    "type":   "json_schema",
    "name":   "generated_schema",
    "schema": generatedSchemaJSONSchema(),
    "strict": true,
  }

  var resp responsesResponse
  if err := c.do(ctx, "POST", "/v1/responses", req, &resp); err != nil {
    return nil, &AIBackendError{Backend: c.name, Err: err}
  }
  if resp.Refusal != "" {
    return nil, &AIBackendError{Backend: c.name, Err: fmt.Errorf("model refused: %s", resp.Refusal)}
  }

  var jsonText string
  for _, item := range resp.Output {
    if item.Type == "message" && item.Role == "assistant" {
      for _, part := range item.Content {
        if part.Type == "output_text" && part.Text != "" {
          jsonText += part.Text
        }
      }
    }
  }
  if jsonText == "" {
    return nil, &AIBackendError{Backend: c.name, Err: fmt.Errorf("no output_text in response")}
  }

  var schema types.GeneratedSchema
  if err := json.Unmarshal([]byte(jsonText), &schema); err != nil {
    return nil, &AIBackendError{Backend: c.name, Err: fmt.Errorf("parse model schema: %w", err)}
  }
  for i := range schema.Fields {
    schema.Fields[i].AIGenerated = true
  }
  return &schema, nil
}

// generatedSchemaJSONSchema is the structured-output contract sent to the
// model. It mirrors types.GeneratedSchema minus the envelope pieces the
// orchestrator fills during normalization.
func generatedSchemaJSONSchema() map[string]any {
  fieldType := map[string]any{
    "type": "string",
    "enum": []string{"text", "number", "boolean", "date", "json"},
  }
  return map[string]any{
    "type":                 "object",
    "additionalProperties": false,
    "required":             []string{"entity_type", "name", "fields", "confidence", "suggestions", "business_rules"},
    "properties": map[string]any{
      "entity_type": map[string]any{"type": "string"},
      "name":        map[string]any{"type": "string"},
      "confidence":  map[string]any{"type": "number"},
      "suggestions": map[string]any{
        "type":  "array",
        "items": map[string]any{"type": "string"},
      },
      "business_rules": map[string]any{
        "type":  "array",
        "items": map[string]any{"type": "string"},
      },
      "fields": map[string]any{
        "type": "array",
        "items": map[string]any{
          "type":                 "object",
          "additionalProperties": false,
          "required":             []string{"name", "type", "required", "label", "confidence"},
          "properties": map[string]any{
            "name":        map[string]any{"type": "string"},
            "type":        fieldType,
            "required":    map[string]any{"type": "boolean"},
            "label":       map[string]any{"type": "string"},
            "placeholder": map[string]any{"type": "string"},
            "confidence":  map[string]any{"type": "number"},
          },
        },
      },
    },
  }
}

package actions

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Flowentxo/agentwebapp-sub017/internal/domain"
	"github.com/Flowentxo/agentwebapp-sub017/internal/ports"
	"github.com/Flowentxo/agentwebapp-sub017/internal/xjson"
)

const defaultInvokeTimeout = 30 * time.Second

const maxResponseBytes = 4 << 20

var allowedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// Registry holds the catalog of externally registered actions and invokes
// resolved ones over HTTP. Registration happens at wiring time; the
// catalog is read-only during runs.
type Registry struct {
	mu      sync.RWMutex
	actions map[string]ports.ActionTemplate
	client  *http.Client
	logger  *slog.Logger
}

func NewRegistry(client *http.Client, logger *slog.Logger) *Registry {
	if client == nil {
		client = &http.Client{Timeout: defaultInvokeTimeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		actions: make(map[string]ports.ActionTemplate),
		client:  client,
		logger:  logger.With("component", "action-registry"),
	}
}

func (r *Registry) Register(template ports.ActionTemplate) error {
	if template.Name == "" {
		return domain.NewConfigError("actions", fmt.Errorf("action requires a name"))
	}
	if template.URL == "" {
		return domain.NewConfigError("actions", fmt.Errorf("action %s requires a URL", template.Name))
	}
	method := strings.ToUpper(template.Method)
	if method == "" {
		method = http.MethodPost
	}
	if !allowedMethods[method] {
		return domain.NewConfigError("actions", fmt.Errorf("action %s has unsupported method %q", template.Name, template.Method))
	}
	template.Method = method

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.actions[template.Name]; exists {
		return domain.NewConfigError("actions", fmt.Errorf("action %s already registered", template.Name))
	}
	r.actions[template.Name] = template

	r.logger.Debug("action registered", "action", template.Name, "method", method)
	return nil
}

func (r *Registry) Resolve(name string) (*ports.ActionTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	template, exists := r.actions[name]
	if !exists {
		return nil, domain.NewNotFoundError("action", name)
	}
	return &template, nil
}

// GetAvailableActions returns the catalog sorted by name. Metadata for
// graph authors; never touches a run.
func (r *Registry) GetAvailableActions() []ports.ActionTemplate {
	r.mu.RLock()
	defer r.mu.RUnlock()

	catalog := make([]ports.ActionTemplate, 0, len(r.actions))
	for _, template := range r.actions {
		catalog = append(catalog, template)
	}
	sort.Slice(catalog, func(i, j int) bool { return catalog[i].Name < catalog[j].Name })
	return catalog
}

func (r *Registry) Invoke(ctx context.Context, action ports.ResolvedAction) (*ports.ActionResult, error) {
	var body io.Reader
	if len(action.Payload) > 0 {
		body = bytes.NewReader(action.Payload)
	}

	req, err := http.NewRequestWithContext(ctx, action.Method, action.URL, body)
	if err != nil {
		return nil, domain.NewInternalError(fmt.Sprintf("failed to build request for action %s", action.Name), err)
	}
	if len(action.Payload) > 0 && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range action.Headers {
		req.Header.Set(key, value)
	}

	started := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, domain.NewUpstreamError(action.Name, fmt.Sprintf("action %s failed: %v", action.Name, err))
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, domain.NewUpstreamError(action.Name, fmt.Sprintf("failed to read response from action %s: %v", action.Name, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, domain.NewUpstreamError(action.Name,
			fmt.Sprintf("action %s returned %d (%s)", action.Name, resp.StatusCode, statusClass(resp.StatusCode)))
	}

	r.logger.Debug("action call completed",
		"action", action.Name,
		"status", resp.StatusCode,
		"duration", time.Since(started),
	)

	return &ports.ActionResult{
		StatusCode: resp.StatusCode,
		Body:       decodeBody(resp.Header.Get("Content-Type"), payload),
	}, nil
}

// decodeBody parses JSON responses into structured data and leaves
// everything else as a string.
func decodeBody(contentType string, payload []byte) interface{} {
	if len(payload) == 0 {
		return nil
	}
	if strings.Contains(contentType, "application/json") && xjson.Valid(payload) {
		var decoded interface{}
		if err := xjson.Unmarshal(payload, &decoded); err == nil {
			return decoded
		}
	}
	return string(payload)
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "server error"
	case code >= 400:
		return "client error"
	case code >= 300:
		return "redirect"
	default:
		return "unexpected"
	}
}

// Package client is the HTTP API client used by feedbackctl.
package client

import (
	"context"
	"net/http"
	"strings"

	"feedbackapp/internal/config"
	"feedbackapp/internal/models"
	"feedbackapp/internal/observability"
	contextutils "feedbackapp/internal/utils"
	"feedbackapp/internal/version"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// API paths
const (
	pathRegister       = "/api/auth/register"
	pathLogin          = "/api/auth/login"
	pathLogout         = "/api/auth/logout"
	pathProducts       = "/api/customer/products"
	pathCustomerFeed   = "/api/customer/feedback"
	pathProfile        = "/api/customer/profile"
	pathManagerFeed    = "/api/manager/feedback"
	pathManagerStats   = "/api/manager/feedback/stats"
	pathFeedbackStatus = "/api/manager/feedback/{id}/status"
	pathVersion        = "/api/version"
)

// apiError is the error body written by the server's error middleware.
type apiError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Details  string `json:"details"`
	Severity string `json:"severity"`
}

// Client talks to the feedback service on behalf of a Session.
type Client struct {
	http    *resty.Client
	session *Session
	logger  *observability.Logger
}

// New creates a Client for cfg. The session supplies the bearer token and receives it on login.
func New(cfg config.ClientConfig, session *Session, logger *observability.Logger) *Client {
	if session == nil {
		panic("session cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = session.BaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = config.DefaultHTTPTimeout
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetTransport(otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanOptions(trace.WithSpanKind(trace.SpanKindClient)),
		))

	return &Client{http: httpClient, session: session, logger: logger}
}

// Session returns the session the client reads its token from.
func (c *Client) Session() *Session {
	return c.session
}

// BaseURL returns the service URL requests are sent to.
func (c *Client) BaseURL() string {
	return c.http.BaseURL
}

func (c *Client) request(ctx context.Context) *resty.Request {
	req := c.http.R().SetContext(ctx).SetError(&apiError{})
	if c.session.Authenticated() {
		req.SetAuthToken(c.session.Token)
	}
	return req
}

// check turns a transport failure or a non-2xx response into an AppError.
func check(resp *resty.Response, err error) error {
	if err != nil {
		return contextutils.NewAppErrorWithCause(
			contextutils.ErrorCodeServiceUnavailable,
			contextutils.SeverityError,
			"Feedback service unreachable",
			err.Error(),
			err,
		)
	}
	if !resp.IsError() {
		return nil
	}

	body, _ := resp.Error().(*apiError)
	if body == nil || body.Message == "" {
		return contextutils.NewAppError(codeForStatus(resp.StatusCode()), contextutils.SeverityWarn,
			http.StatusText(resp.StatusCode()), strings.TrimSpace(string(resp.Body())))
	}

	code := contextutils.ErrorCode(body.Code)
	if code == "" {
		code = codeForStatus(resp.StatusCode())
	}
	severity := contextutils.SeverityLevel(body.Severity)
	if severity == "" {
		severity = contextutils.SeverityWarn
	}
	return contextutils.NewAppError(code, severity, body.Message, body.Details)
}

func codeForStatus(status int) contextutils.ErrorCode {
	switch status {
	case http.StatusBadRequest:
		return contextutils.ErrorCodeInvalidInput
	case http.StatusUnauthorized:
		return contextutils.ErrorCodeUnauthorized
	case http.StatusForbidden:
		return contextutils.ErrorCodeForbidden
	case http.StatusNotFound:
		return contextutils.ErrorCodeRecordNotFound
	case http.StatusConflict:
		return contextutils.ErrorCodeRecordExists
	case http.StatusRequestTimeout:
		return contextutils.ErrorCodeTimeout
	case http.StatusServiceUnavailable:
		return contextutils.ErrorCodeServiceUnavailable
	default:
		return contextutils.ErrorCodeInternalError
	}
}

// Register creates an account. It does not sign in.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (result string, err error) {
	ctx, span := observability.TraceClientFunction(ctx, "register",
		attribute.String("user.role", string(req.Role)),
	)
	defer observability.FinishSpan(span, &err)

	var out models.MessageResponse
	resp, err := c.request(ctx).SetBody(req).SetResult(&out).Post(pathRegister)
	if err = check(resp, err); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Login exchanges credentials for a token and stores it in the session file.
func (c *Client) Login(ctx context.Context, email, password string) (result *models.UserSummary, err error) {
	ctx, span := observability.TraceClientFunction(ctx, "login")
	defer observability.FinishSpan(span, &err)

	var out models.LoginResponse
	resp, err := c.request(ctx).
		SetBody(models.LoginRequest{Email: email, Password: password}).
		SetResult(&out).
		Post(pathLogin)
	if err = check(resp, err); err != nil {
		return nil, err
	}

	c.session.BaseURL = c.http.BaseURL
	c.session.Token = out.Token
	c.session.User = out.User
	if err = c.session.Save(); err != nil {
		return nil, err
	}

	c.logger.Info(ctx, "Signed in", map[string]interface{}{
		"email": out.User.Email,
		"role":  string(out.User.Role),
	})
	return &out.User, nil
}

// Logout ends the server session and forgets the local token. The token is dropped even
// when the server cannot be reached.
func (c *Client) Logout(ctx context.Context) (err error) {
	ctx, span := observability.TraceClientFunction(ctx, "logout")
	defer observability.FinishSpan(span, &err)

	resp, reqErr := c.request(ctx).Post(pathLogout)
	if reqErr = check(resp, reqErr); reqErr != nil {
		c.logger.Warn(ctx, "Server logout failed", map[string]interface{}{"error": reqErr.Error()})
	}
	return c.session.Clear()
}

// Products lists the catalog. A failed read is logged and yields an empty list so that
// feedback without a product can still be submitted.
func (c *Client) Products(ctx context.Context) []models.ProductSummary {
	ctx, span := observability.TraceClientFunction(ctx, "list_products")
	var err error
	defer observability.FinishSpan(span, &err)

	var out []models.ProductSummary
	resp, reqErr := c.request(ctx).SetResult(&out).Get(pathProducts)
	if err = check(resp, reqErr); err != nil {
		c.logger.Warn(ctx, "Could not load products", map[string]interface{}{"error": err.Error()})
		return []models.ProductSummary{}
	}
	if out == nil {
		return []models.ProductSummary{}
	}
	return out
}

// Submit posts a new feedback record for the signed-in customer.
func (c *Client) Submit(ctx context.Context, req models.SubmissionRequest) (result *models.Feedback, err error) {
	ctx, span := observability.TraceClientFunction(ctx, "submit_feedback",
		attribute.String("feedback.type", req.FeedbackType),
	)
	defer observability.FinishSpan(span, &err)

	var out models.SubmissionResponse
	resp, err := c.request(ctx).SetBody(req).SetResult(&out).Post(pathCustomerFeed)
	if err = check(resp, err); err != nil {
		return nil, err
	}
	return out.Feedback, nil
}

// History returns the signed-in customer's own feedback, newest first.
func (c *Client) History(ctx context.Context) (result []models.Feedback, err error) {
	ctx, span := observability.TraceClientFunction(ctx, "feedback_history")
	defer observability.FinishSpan(span, &err)

	var out []models.Feedback
	resp, err := c.request(ctx).SetResult(&out).Get(pathCustomerFeed)
	if err = check(resp, err); err != nil {
		return nil, err
	}
	return out, nil
}

// Triage lists all feedback for a manager. Empty status or search leave that filter off.
func (c *Client) Triage(ctx context.Context, status, search string) (result []models.Feedback, err error) {
	ctx, span := observability.TraceClientFunction(ctx, "triage_feedback",
		attribute.String("filter.status", status),
	)
	defer observability.FinishSpan(span, &err)

	req := c.request(ctx)
	if status != "" {
		req.SetQueryParam("status", status)
	}
	if search != "" {
		req.SetQueryParam("search", search)
	}

	var out []models.Feedback
	resp, err := req.SetResult(&out).Get(pathManagerFeed)
	if err = check(resp, err); err != nil {
		return nil, err
	}
	return out, nil
}

// Stats returns the per-status counts of the whole collection.
func (c *Client) Stats(ctx context.Context) (result models.FeedbackStats, err error) {
	ctx, span := observability.TraceClientFunction(ctx, "feedback_stats")
	defer observability.FinishSpan(span, &err)

	var out models.FeedbackStats
	resp, err := c.request(ctx).SetResult(&out).Get(pathManagerStats)
	if err = check(resp, err); err != nil {
		return models.FeedbackStats{}, err
	}
	return out, nil
}

// SetStatus moves a feedback record to status and returns the updated record.
func (c *Client) SetStatus(ctx context.Context, id, status string) (result *models.Feedback, err error) {
	ctx, span := observability.TraceClientFunction(ctx, "set_feedback_status",
		attribute.String("feedback.id", id),
		attribute.String("feedback.status", status),
	)
	defer observability.FinishSpan(span, &err)

	var out models.SubmissionResponse
	resp, err := c.request(ctx).
		SetPathParam("id", id).
		SetBody(models.StatusUpdateRequest{Status: status}).
		SetResult(&out).
		Patch(pathFeedbackStatus)
	if err = check(resp, err); err != nil {
		return nil, err
	}
	return out.Feedback, nil
}

// Profile returns the signed-in user's account.
func (c *Client) Profile(ctx context.Context) (result *models.UserProfile, err error) {
	ctx, span := observability.TraceClientFunction(ctx, "profile")
	defer observability.FinishSpan(span, &err)

	var out models.UserProfile
	resp, err := c.request(ctx).SetResult(&out).Get(pathProfile)
	if err = check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// Version returns the server's build information.
func (c *Client) Version(ctx context.Context) (result version.BuildInfo, err error) {
	ctx, span := observability.TraceClientFunction(ctx, "server_version")
	defer observability.FinishSpan(span, &err)

	var out version.BuildInfo
	resp, err := c.request(ctx).SetResult(&out).Get(pathVersion)
	if err = check(resp, err); err != nil {
		return version.BuildInfo{}, err
	}
	return out, nil
}

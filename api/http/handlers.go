// Package http implements voxline's non-core REST boundary (SPEC_FULL.md
// "Voice Transport Webhooks & TwiML Bootstrap"): TwiML bootstrap for
// inbound Twilio calls, fire-and-forget webhook receivers, the OAuth
// bootstrap callback, and a catalog-sync trigger. Adapted from the
// teacher's api/http/handlers.go Handlers-struct-of-methods shape.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/chadiek/voxline/internal/catalogsync"
	"github.com/chadiek/voxline/internal/jobqueue"
	"github.com/chadiek/voxline/internal/llm"
	"github.com/chadiek/voxline/internal/notify"
	"github.com/chadiek/voxline/internal/oauthbootstrap"
	"github.com/chadiek/voxline/internal/persistence"
	"github.com/chadiek/voxline/internal/protocol"
	"github.com/chadiek/voxline/internal/session"
	"github.com/chadiek/voxline/internal/tenant"
	"github.com/chadiek/voxline/internal/tools"
	"github.com/chadiek/voxline/internal/transport"
	"github.com/chadiek/voxline/internal/webhook"
)

// SessionDeps bundles the per-connect dependencies voiceSession needs to
// resolve a tenant and construct a Session (session.Open's own precondition
// per internal/session's doc comment: tenant resolution and adapter
// construction happen in the caller, since they can fail before any turn
// runs).
type SessionDeps struct {
	Resolver     tenant.Resolver
	PersistStore persistence.Store
	Notifier     notify.Notifier
	LLMConfig    llm.Config
	TurnTimeout  time.Duration
}

// Handlers wires the REST boundary's dependencies.
type Handlers struct {
	deps       SessionDeps
	jobs       *jobqueue.Producer
	syncer     *catalogsync.Syncer
	oauth      *oauthbootstrap.Exchanger
	authToken  func() string
}

// NewHandlers constructs Handlers. oauth/syncer may be nil when those
// integrations are unconfigured — their routes then respond 503.
func NewHandlers(deps SessionDeps, jobs *jobqueue.Producer, syncer *catalogsync.Syncer, oauth *oauthbootstrap.Exchanger, authToken func() string) *Handlers {
	return &Handlers{deps: deps, jobs: jobs, syncer: syncer, oauth: oauth, authToken: authToken}
}

// Register mounts every route on e, matching the teacher's one-call
// Register(e) convention.
func (h *Handlers) Register(e *echo.Echo) {
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	twilioGroup := e.Group("", webhook.TwilioAuth(h.authToken))
	twilioGroup.POST("/twilio/voice", h.twilioVoice)
	twilioGroup.POST("/twilio/status", h.twilioStatus)

	e.POST("/pos/webhook", h.posWebhook)
	e.GET("/oauth/callback", h.oauthCallback)
	e.POST("/catalog/sync", h.catalogSyncTrigger)
	e.GET("/voice/:call_id", h.voiceSession)
}

// twilioVoice returns TwiML bridging the call to our WebSocket session
// transport.
func (h *Handlers) twilioVoice(c echo.Context) error {
	params, ok := webhook.Params(c)
	if !ok {
		return c.String(http.StatusInternalServerError, "missing twilio parameters")
	}
	tenantID := c.QueryParam("tenant_id")
	callID := params["CallSid"]
	if callID == "" {
		callID = uuid.NewString()
	}

	doc := webhook.VoiceTwiML(c, tenantID, callID)
	return c.Blob(http.StatusOK, "application/xml", []byte(doc))
}

// twilioStatus is the fire-and-forget post-call webhook: respond 200
// synchronously, enqueue a durable job for the out-of-scope worker (spec §6
// "synchronous-200-then-enqueue shape").
func (h *Handlers) twilioStatus(c echo.Context) error {
	params, _ := webhook.Params(c)
	tenantID := c.QueryParam("tenant_id")

	if h.jobs != nil {
		job := jobqueue.Job{Kind: "post_call", TenantID: tenantID, Payload: stringMapToAny(params)}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = h.jobs.Enqueue(ctx, job)
		}()
	}
	return c.String(http.StatusOK, "OK")
}

// posWebhook is the same synchronous-200-then-enqueue shape for inbound POS
// provider events.
func (h *Handlers) posWebhook(c echo.Context) error {
	tenantID := c.QueryParam("tenant_id")
	var payload map[string]any
	_ = c.Bind(&payload)

	if h.jobs != nil {
		job := jobqueue.Job{Kind: "pos_event", TenantID: tenantID, Payload: payload}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = h.jobs.Enqueue(ctx, job)
		}()
	}
	return c.String(http.StatusOK, "OK")
}

// oauthCallback exchanges the authorization code WorkOS redirected with.
func (h *Handlers) oauthCallback(c echo.Context) error {
	if h.oauth == nil {
		return c.String(http.StatusServiceUnavailable, "oauth bootstrap not configured")
	}
	code := c.QueryParam("code")
	if code == "" {
		return c.String(http.StatusBadRequest, "missing code")
	}
	ref, err := h.oauth.ExchangeCode(c.Request().Context(), code)
	if err != nil {
		return c.String(http.StatusBadGateway, "failed to exchange oauth code")
	}
	return c.JSON(http.StatusOK, map[string]string{"profile_id": ref.ProfileID, "email": ref.Email})
}

// catalogSyncTrigger triggers a one-shot catalog sync for a tenant, called
// from a cron job or a POS-initiated webhook.
func (h *Handlers) catalogSyncTrigger(c echo.Context) error {
	if h.syncer == nil {
		return c.String(http.StatusServiceUnavailable, "catalog sync not configured")
	}
	tenantID := c.QueryParam("tenant_id")
	catalogURL := c.QueryParam("catalog_url")
	if tenantID == "" || catalogURL == "" {
		return c.String(http.StatusBadRequest, "tenant_id and catalog_url are required")
	}
	if err := h.syncer.Sync(c.Request().Context(), tenantID, catalogURL); err != nil {
		return c.String(http.StatusBadGateway, "catalog sync failed")
	}
	return c.String(http.StatusOK, "OK")
}

// voiceSession upgrades to a websocket first, then resolves the tenant and
// constructs the LLM adapter and tool dispatcher, opening a Session bound
// to the connection (spec §4.5.1 "Open"). A missing/invalid/inactive
// tenant or adapter-construction failure rejects the connection by closing
// it with CloseCodePolicyViolation (spec §4.5.1/§7) rather than failing the
// HTTP upgrade itself — the transport's close code is the only rejection
// signal the voice transport understands once it has bridged the call.
func (h *Handlers) voiceSession(c echo.Context) error {
	tenantID := c.QueryParam("tenant_id")
	callID := c.Param("call_id")

	conn, err := transport.Upgrade(c.Response(), c.Request())
	if err != nil {
		return err
	}

	if tenantID == "" {
		conn.Close(protocol.CloseCodePolicyViolation, "missing tenant_id")
		return nil
	}

	profile, err := h.deps.Resolver.Resolve(c.Request().Context(), tenantID)
	if err != nil {
		conn.Close(protocol.CloseCodePolicyViolation, "tenant not available")
		return nil
	}

	adapter, err := llm.New(h.deps.LLMConfig, profile.SystemPrompt(), tools.Schemas())
	if err != nil {
		conn.Close(protocol.CloseCodePolicyViolation, "failed to construct llm adapter")
		return nil
	}

	dispatcher := tools.New(tenantID, profile.MenuCache, h.deps.PersistStore, h.deps.Notifier)

	sess := session.Open(session.Config{
		TenantID:   tenantID,
		CallID:     callID,
		Adapter:    adapter,
		Dispatcher: dispatcher,
		Transport:  conn,
		Timeout:    h.deps.TurnTimeout,
	})
	defer sess.Close()

	conn.ReadLoop(sess.HandleInbound)
	return nil
}

func stringMapToAny(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

package kassa

import (
	"context"
	"hash"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kassakit/kassakit/cache"
	"github.com/kassakit/kassakit/observe"
)

// tokenKeyPrefix is the cache key prefix tokens are stored under; the full
// key is tokenKeyPrefix + appID. Part of the wire-adjacent contract: a cache
// shared with other client implementations must agree on it.
const tokenKeyPrefix = "OpenApiToken "

// DefaultTimeout is the timeout of the default HTTP transport.
const DefaultTimeout = 30 * time.Second

// Doer is the HTTP transport the client dispatches through. *http.Client
// satisfies it; tests and host applications may substitute their own.
// Timeouts and cancellation are the transport's concern.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config configures a Client. Account, AppID, and Secret are required and
// immutable for the client's lifetime; everything else has a default.
type Config struct {
	// Account is the base URL of the remote service.
	Account string

	// AppID identifies the application to the service.
	AppID string

	// Secret is the shared signing secret.
	Secret string

	// HTTPClient is the transport for all requests.
	// If nil, a default client with a 30s timeout is used.
	HTTPClient Doer

	// Cache stores issued tokens between runs.
	// If nil, a file-backed cache under the user cache directory is used,
	// falling back to an in-memory cache when that directory is unavailable.
	Cache cache.Cache

	// Logger receives debug/error/critical events. If nil, logging is off.
	Logger observe.Logger

	// Metrics records dispatch metrics. If nil, metrics are off.
	Metrics observe.Metrics

	// Tracer creates a span per dispatched call. If nil, tracing is off.
	Tracer observe.Tracer

	// NewHash selects the signature digest algorithm. If nil, MD5 is used -
	// the algorithm the remote service verifies against. Changing it breaks
	// compatibility unless the service agrees.
	NewHash func() hash.Hash
}

// Client is an authenticated client for the remote cash-register API.
//
// It is safe for concurrent use: token state is mutex-guarded and refreshes
// triggered by concurrent 401s are coalesced into a single issuing call.
type Client struct {
	account string
	appID   string
	secret  string
	nonce   string

	httpClient Doer
	cache      cache.Cache
	logger     observe.Logger
	metrics    observe.Metrics
	tracer     observe.Tracer
	newHash    func() hash.Hash

	mu    sync.RWMutex
	token string
	sf    singleflight.Group
}

// New creates a Client and initializes its token: a token already present in
// the cache under "OpenApiToken <appID>" is adopted without a network call;
// otherwise one is requested from the token-issuing endpoint and persisted.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Account) == "" {
		return nil, ErrMissingAccount
	}
	if cfg.AppID == "" {
		return nil, ErrMissingAppID
	}
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}

	c := &Client{
		account:    strings.TrimRight(cfg.Account, "/"),
		appID:      cfg.AppID,
		secret:     cfg.Secret,
		nonce:      newNonce(),
		httpClient: cfg.HTTPClient,
		cache:      cfg.Cache,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
		tracer:     cfg.Tracer,
		newHash:    cfg.NewHash,
	}

	// Apply defaults
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if c.cache == nil {
		c.cache = defaultCache()
	}
	if c.logger == nil {
		c.logger = observe.NewNopLogger()
	}
	if c.metrics == nil {
		c.metrics = observe.NewNopMetrics()
	}
	if c.tracer == nil {
		c.tracer = observe.NewNopTracer()
	}

	if err := c.initToken(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// newNonce mints a replay-deterring value from the current time. One nonce
// is minted per client instance and reused for the session; command lookups
// mint a fresh one per call.
func newNonce() string {
	return strconv.FormatInt(time.Now().UnixNano(), 10)
}

// defaultCache builds the file-backed token store, degrading to memory when
// no user cache directory exists (e.g. in minimal containers).
func defaultCache() cache.Cache {
	dir, err := os.UserCacheDir()
	if err != nil {
		return cache.NewMemoryCache()
	}
	fc, err := cache.NewFileCache(filepath.Join(dir, "kassakit", "tokens.json"))
	if err != nil {
		return cache.NewMemoryCache()
	}
	return fc
}

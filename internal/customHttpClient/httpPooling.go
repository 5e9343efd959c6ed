package customHttpClient

import (
	"net/http"
	"sync"

	"github.com/akolanti/BrandVoice/internal/config"
)

var customTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
	ForceAttemptHTTP2:   true,
}

var once sync.Once
var pooledClient *http.Client

// GetClient returns the process-wide pooled client shared by the model providers.
// No client timeout is set: generation streams are bounded by their context instead.
func GetClient() *http.Client {
	once.Do(func() {
		pooledClient = &http.Client{Transport: customTransport}
	})
	return pooledClient
}

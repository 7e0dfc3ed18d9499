// Package server - Haupt-Router und Server-Setup fuer maskform
// Beinhaltet: Server-Struct, Router-Registrierung, Middleware, Server-Start
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/maskform/maskform/envconfig"
	"github.com/maskform/maskform/huggingface"
	"github.com/maskform/maskform/logutil"
	"github.com/maskform/maskform/store"
	"github.com/maskform/maskform/version"
)

var mode string = gin.ReleaseMode

// Server verwaltet den HTTP-Server, den Modell-Store und den Hub-Loader
type Server struct {
	addr   net.Addr
	store  *store.Store
	loader *huggingface.Loader
}

func init() {
	switch mode {
	case gin.DebugMode:
	case gin.ReleaseMode:
	case gin.TestMode:
	default:
		mode = gin.DebugMode
	}

	gin.SetMode(mode)
}

// NewServer erstellt einen Server. nil-Argumente verwenden die
// Standard-Implementierungen (Store unter MASKFORM_STORE, Hub-Loader
// mit Standard-Client).
func NewServer(st *store.Store, loader *huggingface.Loader) *Server {
	if st == nil {
		st = &store.Store{}
	}
	if loader == nil {
		loader = huggingface.NewLoader(nil)
	}
	return &Server{store: st, loader: loader}
}

// isLocalIP prueft ob die IP-Adresse zu einem lokalen Interface gehoert
func isLocalIP(ip netip.Addr) bool {
	if interfaces, err := net.Interfaces(); err == nil {
		for _, iface := range interfaces {
			addrs, err := iface.Addrs()
			if err != nil {
				continue
			}

			for _, a := range addrs {
				if parsed, _, err := net.ParseCIDR(a.String()); err == nil {
					if parsed.String() == ip.String() {
						return true
					}
				}
			}
		}
	}

	return false
}

// allowedHost prueft ob der Host erlaubt ist
func allowedHost(host string) bool {
	host = strings.ToLower(host)

	if host == "" || host == "localhost" {
		return true
	}

	if hostname, err := os.Hostname(); err == nil && host == strings.ToLower(hostname) {
		return true
	}

	tlds := []string{
		"localhost",
		"local",
		"internal",
	}

	// Pruefe ob der Host eine lokale TLD hat
	for _, tld := range tlds {
		if strings.HasSuffix(host, "."+tld) {
			return true
		}
	}

	return false
}

// allowedHostsMiddleware blockiert Anfragen von nicht erlaubten Hosts
func allowedHostsMiddleware(addr net.Addr) gin.HandlerFunc {
	return func(c *gin.Context) {
		if addr == nil {
			c.Next()
			return
		}

		if addr, err := netip.ParseAddrPort(addr.String()); err == nil && !addr.Addr().IsLoopback() {
			c.Next()
			return
		}

		host, _, err := net.SplitHostPort(c.Request.Host)
		if err != nil {
			host = c.Request.Host
		}

		if addr, err := netip.ParseAddr(host); err == nil {
			if addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() || isLocalIP(addr) {
				c.Next()
				return
			}
		}

		if allowedHost(host) {
			if c.Request.Method == http.MethodOptions {
				c.AbortWithStatus(http.StatusNoContent)
				return
			}

			c.Next()
			return
		}

		c.AbortWithStatus(http.StatusForbidden)
	}
}

// GenerateRoutes erstellt und konfiguriert den HTTP-Router
func (s *Server) GenerateRoutes() (http.Handler, error) {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowWildcard = true
	corsConfig.AllowBrowserExtensions = true
	corsConfig.AllowHeaders = []string{
		"Authorization",
		"Content-Type",
		"User-Agent",
		"Accept",
		"X-Requested-With",
	}
	corsConfig.AllowOrigins = envconfig.AllowedOrigins()

	r := gin.Default()
	r.HandleMethodNotAllowed = true
	r.Use(
		cors.New(corsConfig),
		allowedHostsMiddleware(s.addr),
	)

	// General
	r.HEAD("/", func(c *gin.Context) { c.String(http.StatusOK, "maskform is running") })
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "maskform is running") })
	r.HEAD("/api/version", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"version": version.Version}) })
	r.GET("/api/version", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"version": version.Version}) })

	// Konfigurationen
	r.GET("/api/backbones", s.BackbonesHandler)
	r.GET("/api/defaults", s.DefaultsHandler)
	r.POST("/api/show", s.ShowHandler)
	r.POST("/api/validate", s.ValidateHandler)

	// Lokaler Store
	r.HEAD("/api/models", s.ListHandler)
	r.GET("/api/models", s.ListHandler)
	r.POST("/api/pull", s.PullHandler)
	r.DELETE("/api/models", s.DeleteHandler)

	return r, nil
}

// Serve startet den HTTP-Server auf dem Listener
func Serve(ln net.Listener) error {
	slog.SetDefault(logutil.NewLogger(os.Stderr, envconfig.LogLevel()))
	slog.Info("server config", "env", envconfig.Values())

	s := NewServer(nil, nil)
	s.addr = ln.Addr()
	defer s.store.Close()

	h, err := s.GenerateRoutes()
	if err != nil {
		return err
	}

	ctx, done := context.WithCancel(context.Background())

	slog.Info(fmt.Sprintf("Listening on %s (version %s)", ln.Addr(), version.Version))
	srvr := &http.Server{Handler: h}

	// Auf ctrl+c reagieren und den Server sauber beenden
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		srvr.Close()
		done()
	}()

	err = srvr.Serve(ln)
	// Wenn der Server vom Signal-Handler geschlossen wurde, auf ctx warten,
	// sonst den Fehler direkt melden
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-ctx.Done()
	return nil
}

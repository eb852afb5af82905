package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rcarmo/psd-decoder/internal/config"
	"github.com/rcarmo/psd-decoder/internal/handler"
	"github.com/rcarmo/psd-decoder/internal/logging"
	"github.com/rcarmo/psd-decoder/web"
)

const (
	appName    = "PSD Channel Decoder"
	appVersion = "v1.0.0"
)

type parsedArgs struct {
	host       string
	port       string
	logLevel   string
	maxPixels  int
	concurrent bool
}

func main() {
	args, action := parseFlags()

	switch action {
	case "help":
		showHelp()
		return
	case "version":
		showVersion()
		return
	}

	if err := run(args); err != nil {
		logging.Error("%v", err)
		os.Exit(1)
	}
}

func parseFlags() (parsedArgs, string) {
	return parseFlagsWithArgs(os.Args[1:])
}

func parseFlagsWithArgs(argv []string) (parsedArgs, string) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	hostFlag := fs.String("host", "", "server listen host")
	portFlag := fs.String("port", "", "server listen port")
	logLevelFlag := fs.String("log-level", "", "log level (debug, info, warn, error)")
	maxPixelsFlag := fs.Int("max-pixels", 0, "largest pixel count a request may ask for")
	concurrentFlag := fs.Bool("concurrent", false, "decode the channels of a request in parallel")
	helpFlag := fs.Bool("help", false, "show help")
	versionFlag := fs.Bool("version", false, "show version")

	if err := fs.Parse(argv); err != nil {
		return parsedArgs{}, "help"
	}

	if *helpFlag {
		return parsedArgs{}, "help"
	}

	if *versionFlag {
		return parsedArgs{}, "version"
	}

	return parsedArgs{
		host:       strings.TrimSpace(*hostFlag),
		port:       strings.TrimSpace(*portFlag),
		logLevel:   strings.TrimSpace(*logLevelFlag),
		maxPixels:  *maxPixelsFlag,
		concurrent: *concurrentFlag,
	}, ""
}

func run(args parsedArgs) error {
	cfg, err := config.LoadWithOverrides(config.LoadOptions{
		Host:               args.host,
		Port:               args.port,
		LogLevel:           args.logLevel,
		MaxPixels:          args.maxPixels,
		ConcurrentChannels: args.concurrent,
	})
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	setupLogging(cfg.Logging)

	server := createServer(cfg)
	logging.Info("starting server on %s (TLS=%t, maxPixels=%d, concurrent=%t)",
		server.Addr, cfg.Security.EnableTLS, cfg.Decode.MaxPixels, cfg.Decode.ConcurrentChannels)

	return startServer(server, cfg)
}

func createServer(cfg *config.Config) *http.Server {
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)

	mux := http.NewServeMux()
	if dist, err := web.DistFS(); err == nil {
		mux.Handle("/", http.FileServer(http.FS(dist)))
	} else {
		logging.Warn("demo page unavailable: %v", err)
	}
	handler.New(cfg, logging.Default()).Register(mux)

	h := applySecurityMiddleware(mux, cfg)
	h = requestLoggingMiddleware(h)

	return &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
}

func applySecurityMiddleware(next http.Handler, cfg *config.Config) http.Handler {
	if cfg == nil {
		return securityHeadersMiddleware(corsMiddleware(next, nil))
	}

	h := corsMiddleware(next, cfg.Security.AllowedOrigins)
	h = securityHeadersMiddleware(h)

	return h
}

func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		// Inline script and WASM for the demo page
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' 'unsafe-inline' 'wasm-unsafe-eval'; style-src 'self' 'unsafe-inline'; connect-src 'self' ws: wss:")

		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler, allowedOrigins []string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if isOriginAllowed(origin, allowedOrigins, r.Host) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// isOriginAllowed matches origin exactly against the list, or its host
// against the request host when no list is configured.
func isOriginAllowed(origin string, allowedOrigins []string, host string) bool {
	if origin == "" {
		return false
	}

	for _, allowed := range allowedOrigins {
		if strings.TrimSpace(allowed) == origin {
			return true
		}
	}

	if len(allowedOrigins) != 0 {
		return false
	}

	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	return strings.EqualFold(u.Host, host)
}

func setupLogging(cfg config.LoggingConfig) {
	logging.SetLevelFromString(cfg.Level)
	logging.SetFormat(cfg.Format)
}

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack is required for the /ws upgrade.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return hijacker.Hijack()
}

func requestLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logging.Debug("%s %s %s %d %s", r.RemoteAddr, r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

func startServer(server *http.Server, cfg *config.Config) error {
	if server == nil {
		return fmt.Errorf("server is nil")
	}

	var err error
	if cfg != nil && cfg.Security.EnableTLS {
		err = server.ListenAndServeTLS(cfg.Security.TLSCertFile, cfg.Security.TLSKeyFile)
	} else {
		err = server.ListenAndServe()
	}

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}

func showHelp() {
	fmt.Println(appName)
	fmt.Println("USAGE: psd-decoder-server [options]")
	fmt.Println("OPTIONS:")
	fmt.Println("  -host          Set server listen host (default 0.0.0.0)")
	fmt.Println("  -port          Set server listen port (default 8080)")
	fmt.Println("  -log-level     Set log level (debug, info, warn, error)")
	fmt.Println("  -max-pixels    Largest pixel count a request may ask for")
	fmt.Println("  -concurrent    Decode the channels of a request in parallel")
	fmt.Println("  -version       Show version information")
	fmt.Println("  -help          Show this help message")
	fmt.Println("ENVIRONMENT VARIABLES: SERVER_HOST, SERVER_PORT, LOG_LEVEL, LOG_FORMAT, DECODE_MAX_PIXELS,")
	fmt.Println("  DECODE_MAX_MESSAGE_BYTES, DECODE_CONCURRENT_CHANNELS, ALLOWED_ORIGINS, ENABLE_TLS, TLS_CERT_FILE, TLS_KEY_FILE")
	fmt.Println("ENDPOINTS: POST /decode, GET /ws, GET /healthz")
	fmt.Println("EXAMPLES: psd-decoder-server -host 0.0.0.0 -port 8080 -concurrent")
}

func showVersion() {
	fmt.Printf("%s %s\n", appName, appVersion)
	fmt.Println("Compression: raw, packbits")
	fmt.Println("Layouts: rgb, rgba, grayscale, grayscale+alpha")
}

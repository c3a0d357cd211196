package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/joho/godotenv"

	"imgprompt/internal/domain"
	"imgprompt/internal/imageref"
	"imgprompt/internal/infra"
	"imgprompt/internal/infra/credentials"
	"imgprompt/internal/middleware"
	"imgprompt/internal/providers/aryan"
	"imgprompt/internal/providers/genai"
	"imgprompt/internal/resolver"
)

const usage = `usage:
  promptctl describe [-key KEY] <image-url | data-url | file>
  promptctl setkey [-key KEY]
  promptctl admintoken [-sub NAME] [-ttl DURATION]
`

func main() {
	_ = godotenv.Load()
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := infra.NewLogger("cli").With().Str("cmd", "promptctl").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch os.Args[1] {
	case "describe":
		os.Exit(runDescribe(ctx, cfg, logger, os.Args[2:], os.Stdout, os.Stderr))
	case "setkey":
		os.Exit(runSetKey(ctx, cfg, logger, os.Args[2:]))
	case "admintoken":
		os.Exit(runAdminToken(cfg, os.Args[2:], time.Now(), os.Stdout, os.Stderr))
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func runDescribe(ctx context.Context, cfg *infra.Config, logger infra.Logger, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("describe", flag.ContinueOnError)
	fs.SetOutput(stderr)
	keyFlag := fs.String("key", "", "Gemini API key (falls back to the token store and GEMINI_API_KEY)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	ref, err := readInput(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	var store credentials.KeyReader
	if pool, err := infra.NewDBPool(ctx, cfg); err == nil {
		defer pool.Close()
		store = credentials.NewStore(infra.NewSQLRunner(pool, logger))
	} else if !errors.Is(err, infra.ErrNoDatabase) {
		logger.Warn().Err(err).Msg("token store unavailable")
	}
	chain := credentials.NewChain(store, func() string { return cfg.GeminiAPIKey }, logger)
	credential, _ := chain.Resolve(ctx, *keyFlag)

	engine := resolver.New(resolver.Options{
		Aryan: aryan.NewClient(aryan.Options{
			Endpoint:      cfg.AryanEndpoint,
			BlockInsecure: cfg.BlockInsecureUpstreams,
		}),
		Vision: genai.NewClient(genai.Options{
			BaseURL: cfg.GeminiBaseURL,
			Model:   cfg.GeminiModel,
			Timeout: cfg.GeminiTimeout,
			Logger:  &logger,
		}),
		Fetcher:       imageref.NewHTTPFetcher(imageref.FetcherOptions{Timeout: cfg.ImageFetchTimeout}),
		AryanTimeout:  cfg.AryanTimeout,
		VisionTimeout: cfg.GeminiTimeout,
		Logger:        &logger,
	})

	res, err := engine.Resolve(ctx, ref, credential)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		if domain.KindOf(err).NeedsReauth() {
			fmt.Fprintln(stderr, "run `promptctl setkey -key ...` or pass -key")
		}
		return 1
	}
	fmt.Fprintln(stdout, res.Prompt)
	fmt.Fprintf(stderr, "backend: %s\n", res.Backend)
	return 0
}

// readInput treats arguments that name an existing file as uploads and
// everything else as pasted text.
func readInput(arg string) (domain.ImageReference, error) {
	info, err := os.Stat(arg)
	if err != nil || info.IsDir() {
		return imageref.FromText(arg)
	}
	f, err := os.Open(arg)
	if err != nil {
		return domain.ImageReference{}, err
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return domain.ImageReference{}, fmt.Errorf("detect type: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return domain.ImageReference{}, err
	}
	return imageref.FromFile(mt.String(), info.Size(), f)
}

func runSetKey(ctx context.Context, cfg *infra.Config, logger infra.Logger, args []string) int {
	fs := flag.NewFlagSet("setkey", flag.ContinueOnError)
	keyFlag := fs.String("key", "", "Gemini API key (falls back to GEMINI_API_KEY)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	key := strings.TrimSpace(*keyFlag)
	if key == "" {
		key = strings.TrimSpace(cfg.GeminiAPIKey)
	}
	if key == "" {
		fmt.Fprintln(os.Stderr, "GEMINI API key is required via -key or environment")
		return 1
	}

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "database: %v\n", err)
		return 1
	}
	defer pool.Close()

	store := credentials.NewStore(infra.NewSQLRunner(pool, logger))
	execCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := store.SetGeminiAPIKey(execCtx, key); err != nil {
		fmt.Fprintf(os.Stderr, "failed to persist gemini api key: %v\n", err)
		return 1
	}
	fmt.Println("GEMINI API key stored successfully")
	return 0
}

// runAdminToken prints a bearer token accepted by PUT /v1/auth/key.
func runAdminToken(cfg *infra.Config, args []string, now time.Time, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("admintoken", flag.ContinueOnError)
	fs.SetOutput(stderr)
	sub := fs.String("sub", "operator", "token subject")
	ttl := fs.Duration("ttl", time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if cfg.AdminJWTSecret == "" {
		fmt.Fprintln(stderr, "ADMIN_JWT_SECRET is not set")
		return 1
	}
	if *ttl <= 0 {
		fmt.Fprintln(stderr, "-ttl must be positive")
		return 2
	}
	claims := middleware.NewAdminClaims(*sub, middleware.ScopeKeysWrite, now.Add(*ttl))
	claims.Issuer = "promptctl"
	token, err := middleware.SignJWT(cfg.AdminJWTSecret, claims)
	if err != nil {
		fmt.Fprintf(stderr, "sign token: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, token)
	return 0
}

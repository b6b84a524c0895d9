package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/openlocale/lingogate/pkg/apikey"
	"github.com/openlocale/lingogate/pkg/engine"
	"github.com/openlocale/lingogate/pkg/flood"
	"github.com/openlocale/lingogate/pkg/language"
	"github.com/openlocale/lingogate/pkg/quota"
	"github.com/openlocale/lingogate/pkg/translate"
)

var Serve = &cobra.Command{
	Use:     "serve",
	Short:   "Run the translation API server",
	Example: "lingogate serve --port 5000 --req-limit 80 --char-limit 5000",
	RunE:    runServe,
}

func init() {
	Serve.Flags().StringP("port", "p", "5000", "port to listen on")
	Serve.Flags().StringSlice("languages", []string{"en", "es", "fr", "de", "it", "pt", "ru", "zh", "ja"}, "language codes to serve")
	Serve.Flags().Int64("char-limit", -1, "max characters per request, -1 for unlimited")
	Serve.Flags().Int64("req-limit", -1, "requests per minute per client, -1 for unlimited")
	Serve.Flags().Int64("hourly-req-limit", 0, "hourly request tier base, 0 to disable")
	Serve.Flags().Int("hourly-req-limit-decay", 0, "extra widening hourly tiers")
	Serve.Flags().Int64("hourly-req-limit-multiplier", 60, "hourly scale applied to per-key request rates")
	Serve.Flags().Int64("daily-req-limit", 0, "daily request tier base, 0 to disable")
	Serve.Flags().Int64("daily-req-limit-multiplier", 1440, "daily scale applied to per-key request rates")
	Serve.Flags().String("req-limit-storage", "memory://", "quota counter storage, memory:// or redis://[:password@]host:port")
	Serve.Flags().String("api-keys", "", "path to the API key SQLite database")
	Serve.Flags().Int("ban-threshold", 0, "rate-limit violations before a client is banned, 0 to disable")
	Serve.Flags().String("engine-key", "", "Anthropic API key for the translation engine")
	Serve.Flags().String("engine-model", "", "model the translation engine should use")
	Serve.Flags().Int("engine-rate", 0, "engine calls per minute, 0 for unpaced")
}

func runServe(cmd *cobra.Command, args []string) error {
	v := viper.New()
	v.SetEnvPrefix("LG")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("interrupt received, shutting down")
		cancel()
	}()

	var dir quota.Directory
	if path := v.GetString("api-keys"); path != "" {
		store, err := apikey.Open(path)
		if err != nil {
			return err
		}
		defer store.Close()
		dir = store
	}

	store, memStore, storeCloser, err := openCounterStore(ctx, v.GetString("req-limit-storage"))
	if err != nil {
		return err
	}
	if storeCloser != nil {
		defer storeCloser.Close()
	}

	rules := quota.BuildRules(quota.Config{
		MinuteLimit:      v.GetInt64("req-limit"),
		HourlyLimit:      v.GetInt64("hourly-req-limit"),
		HourlyDecaySteps: v.GetInt("hourly-req-limit-decay"),
		HourlyMultiplier: v.GetInt64("hourly-req-limit-multiplier"),
		DailyLimit:       v.GetInt64("daily-req-limit"),
		DailyMultiplier:  v.GetInt64("daily-req-limit-multiplier"),
	})

	eng, err := engine.NewAnthropic(engine.Config{
		APIKey: v.GetString("engine-key"),
		Model:  v.GetString("engine-model"),
	})
	if err != nil {
		return fmt.Errorf("translation engine: %w", err)
	}

	var pace *rate.Limiter
	if perMinute := v.GetInt("engine-rate"); perMinute > 0 {
		pace = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
	}

	registry, err := buildRegistry(v.GetStringSlice("languages"), eng, pace)
	if err != nil {
		return err
	}

	srv := &server{
		service:          translate.NewService(registry, translate.WithDetector(language.Detect)),
		registry:         registry,
		limiter:          quota.NewLimiter(rules, dir, store),
		tracker:          flood.NewTracker(v.GetInt("ban-threshold")),
		dir:              dir,
		defaultCharLimit: v.GetInt64("char-limit"),
	}
	app := srv.app()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := net.JoinHostPort("", v.GetString("port"))
		slog.Info("listening", "addr", addr, "languages", len(registry.All()))
		return app.Listen(addr)
	})
	g.Go(func() error {
		<-ctx.Done()
		return app.ShutdownWithTimeout(10 * time.Second)
	})
	g.Go(func() error {
		return janitor(ctx, memStore, srv.tracker)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// openCounterStore picks the quota backend from the storage URI. The memory
// store is also returned separately so the janitor can sweep it; the closer is
// non-nil for backends holding a connection.
func openCounterStore(ctx context.Context, storage string) (quota.CounterStore, *quota.MemoryStore, io.Closer, error) {
	if storage == "" || strings.HasPrefix(storage, "memory://") {
		mem := quota.NewMemoryStore()
		return mem, mem, nil, nil
	}
	u, err := url.Parse(storage)
	if err != nil || u.Scheme != "redis" {
		return nil, nil, nil, fmt.Errorf("unsupported req-limit-storage %q", storage)
	}
	password, _ := u.User.Password()
	store := quota.NewRedisStore(u.Host, password)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		store.Close()
		return nil, nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	return store, nil, store, nil
}

// janitor sweeps expired quota windows and decays flood violations until the
// server stops.
func janitor(ctx context.Context, memStore *quota.MemoryStore, tracker *flood.Tracker) error {
	sweep := time.NewTicker(time.Minute)
	defer sweep.Stop()
	forgive := time.NewTicker(10 * time.Minute)
	defer forgive.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sweep.C:
			if memStore != nil {
				memStore.Cleanup()
			}
		case <-forgive.C:
			tracker.Forgive()
		}
	}
}

// displayNames covers the language codes the server can be configured with.
var displayNames = map[string]string{
	"ar": "Arabic",
	"de": "German",
	"el": "Greek",
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"he": "Hebrew",
	"hi": "Hindi",
	"it": "Italian",
	"ja": "Japanese",
	"ko": "Korean",
	"nl": "Dutch",
	"no": "Norwegian",
	"pl": "Polish",
	"pt": "Portuguese",
	"ru": "Russian",
	"th": "Thai",
	"tr": "Turkish",
	"zh": "Chinese",
	"zt": "Chinese (traditional)",
}

// buildRegistry loads the configured languages and wires an engine-backed
// translator for every directed pair.
func buildRegistry(codes []string, eng *engine.Anthropic, pace *rate.Limiter) (*language.Registry, error) {
	langs := make([]*language.Language, 0, len(codes))
	for _, code := range codes {
		code = language.NormalizeCode(code)
		name, ok := displayNames[code]
		if !ok {
			return nil, fmt.Errorf("unknown language code %q", code)
		}
		langs = append(langs, language.New(code, name))
	}
	for _, src := range langs {
		for _, tgt := range langs {
			if src.Code == tgt.Code {
				continue
			}
			src.AddTarget(tgt.Code, engine.Paced(eng.Pair(src.Name, tgt.Name), pace))
		}
	}
	return language.NewRegistry(langs...), nil
}

// server holds the request-path collaborators behind the HTTP routes.
type server struct {
	service          *translate.Service
	registry         *language.Registry
	limiter          *quota.Limiter
	tracker          *flood.Tracker
	dir              quota.Directory
	defaultCharLimit int64
}

func (s *server) app() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(cors.New(cors.Config{
		AllowMethods: "GET, POST",
		AllowHeaders: "Authorization, Content-Type",
	}))

	app.Post("/translate", s.handleTranslate)
	app.Get("/languages", s.handleLanguages)

	return app
}

func (s *server) handleTranslate(c *fiber.Ctx) error {
	addr := clientAddr(c)
	if s.tracker.IsBanned(addr) {
		return errorResponse(c, fiber.StatusForbidden, "too many request limits violations")
	}

	req, perr := parseTranslateRequest(c)
	if perr != nil {
		return errorResponse(c, fiber.StatusBadRequest, perr.Message)
	}

	if err := s.limiter.Allow(c.Context(), addr, req.APIKey, req.Cost()); err != nil {
		var exceeded *quota.ExceededError
		if errors.As(err, &exceeded) {
			s.tracker.Report(addr)
			terr := translate.Unavailable("Slowdown: "+exceeded.RuleLabel, err)
			return errorResponse(c, statusForKind(terr.Kind), terr.Message)
		}
		slog.Error("quota evaluation failed", "err", err)
		return errorResponse(c, fiber.StatusInternalServerError, "cannot evaluate request limits")
	}

	charLimit, err := quota.CharLimit(c.Context(), s.defaultCharLimit, s.dir, req.APIKey)
	if err != nil {
		slog.Error("char limit lookup failed", "err", err)
		return errorResponse(c, fiber.StatusInternalServerError, "cannot evaluate request limits")
	}
	if charLimit != -1 && req.TotalChars() > charLimit {
		return errorResponse(c, fiber.StatusBadRequest,
			fmt.Sprintf("invalid request: request (%d) exceeds character limit (%d)", req.TotalChars(), charLimit))
	}

	result, err := s.service.Translate(c.Context(), req)
	if err != nil {
		var terr *translate.Error
		if errors.As(err, &terr) {
			if terr.Kind == translate.KindEngineFailure {
				slog.Error("translation failed", "err", err, "source", req.Source)
			}
			return errorResponse(c, statusForKind(terr.Kind), terr.Message)
		}
		slog.Error("translation failed", "err", err)
		return errorResponse(c, fiber.StatusInternalServerError, "cannot translate text")
	}

	return c.JSON(result.Payload())
}

type languageInfo struct {
	Code    string   `json:"code"`
	Name    string   `json:"name"`
	Targets []string `json:"targets"`
}

func (s *server) handleLanguages(c *fiber.Ctx) error {
	langs := s.registry.All()
	infos := make([]languageInfo, 0, len(langs))
	for _, l := range langs {
		infos = append(infos, languageInfo{
			Code:    l.Code,
			Name:    l.Name,
			Targets: l.Targets(),
		})
	}
	return c.JSON(infos)
}

func statusForKind(kind translate.Kind) int {
	switch kind {
	case translate.KindBadRequest:
		return fiber.StatusBadRequest
	case translate.KindUnavailable:
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}

func errorResponse(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

func clientAddr(c *fiber.Ctx) string {
	if forwarded := c.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	return c.IP()
}

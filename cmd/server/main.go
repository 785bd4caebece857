package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"midtownwebserver/internal/auth"
	"midtownwebserver/internal/config"
	"midtownwebserver/internal/domain"
	"midtownwebserver/internal/email"
	"midtownwebserver/internal/httpapi"
	"midtownwebserver/internal/service"
	mongostore "midtownwebserver/internal/store/mongo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	logger := newLogger(cfg)

	ctx := context.Background()

	db, err := mongostore.Open(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		logger.Error("mongo open failed", "err", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Client().Disconnect(context.Background())
	}()

	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		logger.Error("ensure indexes failed", "err", err)
		os.Exit(1)
	}

	users := mongostore.NewUsersStore(db)
	projects := mongostore.NewProjectsStore(db)
	gallery := mongostore.NewGalleryStore(db)
	enquiries := mongostore.NewEnquiriesStore(db)

	if err := bootstrapAdminUser(ctx, logger, users, cfg.AdminBootstrapEmail, cfg.AdminBootstrapName, cfg.AdminBootstrapPassword); err != nil {
		logger.Error("bootstrap admin failed", "err", err)
		os.Exit(1)
	}

	sessions := auth.NewSessionIssuer(jwtSecret(cfg, logger), cfg.SessionTTL)
	sender := newSender(cfg, logger)

	authSvc := &service.AuthService{
		Users:          users,
		Sessions:       sessions,
		Email:          sender,
		Logger:         logger,
		VerifyTokenTTL: cfg.VerifyTokenTTL,
		ResetTokenTTL:  cfg.ResetTokenTTL,
		BuildVerifyURL: linkBuilder(cfg, "/verify-email"),
		BuildResetURL:  linkBuilder(cfg, "/reset-password"),
	}
	adminSvc := &service.AdminService{Users: users}
	projectSvc := &service.ProjectService{Store: projects}
	gallerySvc := &service.GalleryService{Store: gallery}
	enquirySvc := &service.EnquiryService{
		Store:    enquiries,
		Projects: projects,
		Email:    sender,
		Inbox:    cfg.EnquiryInbox,
		Logger:   logger,
	}

	router := httpapi.NewRouter(httpapi.RouterOpts{
		Logger:       logger,
		IsProd:       cfg.IsProd(),
		DBPing:       mongostore.Ping(db),
		Auth:         authSvc,
		Admin:        adminSvc,
		Projects:     projectSvc,
		Gallery:      gallerySvc,
		Enquiries:    enquirySvc,
		CookieSecure: cfg.CookieSecure(),
		SessionTTL:   cfg.SessionTTL,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "env", cfg.Env, "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}
}

// bootstrapAdminUser ensures the configured admin account exists. It runs on
// every start and is a no-op when the account is already there.
func bootstrapAdminUser(ctx context.Context, logger *slog.Logger, users *mongostore.UsersStore, emailAddr, name, password string) error {
	if password == "" {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	if len(password) < 12 {
		return errors.New("APP_ADMIN_BOOTSTRAP_PASSWORD: must be at least 12 characters")
	}
	if emailAddr == "" {
		return errors.New("admin bootstrap: email is required")
	}

	_, err := users.GetUserByEmail(ctx, emailAddr)
	if err == nil {
		logger.Info("admin bootstrap: user already exists", "email", emailAddr)
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("admin bootstrap: lookup user: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("admin bootstrap: hash password: %w", err)
	}

	u, err := users.CreateUser(ctx, name, emailAddr, "", hash, domain.RoleAdmin)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			logger.Info("admin bootstrap: user already exists", "email", emailAddr)
			return nil
		}
		return fmt.Errorf("admin bootstrap: create user: %w", err)
	}
	if err := users.MarkEmailVerified(ctx, u.ID); err != nil {
		return fmt.Errorf("admin bootstrap: mark verified: %w", err)
	}

	logger.Info("admin bootstrap: created admin user", "email", emailAddr)
	return nil
}

// jwtSecret returns the configured signing key. Outside prod a missing key is
// replaced with a random one so the server still starts; sessions then do not
// survive a restart.
func jwtSecret(cfg config.Config, logger *slog.Logger) []byte {
	if cfg.JWTSecret != "" {
		return []byte(cfg.JWTSecret)
	}
	logger.Warn("APP_JWT_SECRET not set, using a random key; sessions will not survive restarts")
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		logger.Error("generate jwt secret failed", "err", err)
		os.Exit(1)
	}
	return secret
}

func newSender(cfg config.Config, logger *slog.Logger) email.Sender {
	if !cfg.EmailEnabled() {
		logger.Info("email provider not configured, logging outbound mail")
		return &email.LogSender{Logger: logger}
	}
	sender, err := email.NewPostmarkSender(email.PostmarkConfig{
		ServerToken:  cfg.PostmarkServerToken,
		AccountToken: cfg.PostmarkAccountToken,
		SenderEmail:  cfg.SenderEmail,
	})
	if err != nil {
		logger.Error("postmark sender init failed", "err", err)
		os.Exit(1)
	}
	return sender
}

// linkBuilder builds the absolute URLs embedded in verification and reset
// emails. Without a public URL it falls back to a localhost link, which is
// only useful in dev.
func linkBuilder(cfg config.Config, path string) func(token string) string {
	base := cfg.ParsedPublicURL()
	return func(token string) string {
		if base != nil {
			u := *base
			u.Path = path
			u.RawQuery = "token=" + url.QueryEscape(token)
			return u.String()
		}
		return fmt.Sprintf("http://%s%s?token=%s", cfg.Addr, path, url.QueryEscape(token))
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProd() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

package main

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/church-check-in/internal/checkin"
	"github.com/iliyamo/church-check-in/internal/config"
	"github.com/iliyamo/church-check-in/internal/handler"
	"github.com/iliyamo/church-check-in/internal/mailer"
	"github.com/iliyamo/church-check-in/internal/repository"
	"github.com/iliyamo/church-check-in/internal/router"
	"github.com/iliyamo/church-check-in/internal/store"
	"github.com/iliyamo/church-check-in/internal/utils"
)

func main() {
	// .env is optional on the kiosk; real deployments set the environment.
	_ = godotenv.Load()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()

	cfg := config.Load()
	if cfg.DefaultPIN {
		log.Warn().Msg("ADMIN_PIN not set, using the default PIN")
	}
	if cfg.DefaultSecret {
		log.Warn().Msg("SESSION_SECRET not set, admin sessions will not survive a restart")
	}

	pinHash, err := utils.HashPIN(cfg.AdminPIN, cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("hash admin PIN failed")
	}

	regTable := store.NewTable(filepath.Join(cfg.DataDir, "registrations.csv"), repository.RegistrationHeader)
	logTable := store.NewTable(filepath.Join(cfg.DataDir, "logs.csv"), repository.LogHeader)
	regs := repository.NewRegistrationRepo(regTable)
	logs := repository.NewLogRepo(logTable)

	engine := checkin.NewEngine(regs, logs, checkin.NewCooldown(cfg.ScanCooldown))
	mail := mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom, &log)
	if !mail.Enabled() {
		log.Info().Msg("SMTP not configured, QR emails disabled")
	}

	e := echo.New()
	e.HideBanner = true

	router.RegisterPublic(e, cfg, handler.NewRegisterHandler(cfg, regs, mail, &log), handler.NewCheckInHandler(engine, &log))
	router.RegisterAdmin(e, cfg, handler.NewAuthHandler(cfg, pinHash, &log), handler.NewAdminHandler(cfg, regs, logs, engine, mail, &log))

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
	if err := e.Start(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Swarajroy2006/SoulSync-CosmoHack1/internal/auth"
	"github.com/Swarajroy2006/SoulSync-CosmoHack1/internal/config"
	"github.com/Swarajroy2006/SoulSync-CosmoHack1/internal/core"
	db "github.com/Swarajroy2006/SoulSync-CosmoHack1/internal/core/database"
	"github.com/Swarajroy2006/SoulSync-CosmoHack1/internal/core/llm"
	"github.com/Swarajroy2006/SoulSync-CosmoHack1/internal/core/telephony"
	"github.com/Swarajroy2006/SoulSync-CosmoHack1/internal/services"
)

// App owns every external client. Clients are constructed once here and
// injected into the services that need them.
type App struct {
	DBClient core.DbClient
	LLM      *llm.GeminiLLM
	Server   *Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Database initialized and ready.")

	llmProvider, err := llm.NewGeminiLLM(appCtx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the llm provider: %w", err)
	}

	caller := telephony.NewTwilioCaller(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber)
	if !caller.Configured() {
		log.Println("Twilio credentials not configured. Escalation calls will be simulated.")
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret)

	escalator := services.NewEscalationService(dbClient, caller, cfg.PublicBaseURL)
	chat := services.NewChatService(dbClient, llmProvider)
	sessions := services.NewSessionService(dbClient, llmProvider, escalator, cfg.EscalationThreshold)

	server := NewServer(cfg, dbClient, tokens, chat, sessions)

	return &App{DBClient: dbClient, LLM: llmProvider, Server: server}, nil
}

func (a *App) Close() {
	if a.LLM != nil {
		_ = a.LLM.Close()
	}
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}

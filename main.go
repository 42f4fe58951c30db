package main

import (
	"fmt"
	"log"

	"github.com/diego12655/cv-analyzer-pro/internal/config"
	"github.com/diego12655/cv-analyzer-pro/internal/database"
	"github.com/diego12655/cv-analyzer-pro/internal/router"
	"github.com/diego12655/cv-analyzer-pro/internal/scorer"
)

func main() {
	// load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.JWT.Secret == "" {
		log.Fatal("jwt secret is required (CVA_JWT_SECRET or jwt.secret)")
	}

	// init database
	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}

	// run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	// LLM scorer
	sc := scorer.NewAnthropicScorer(cfg.Anthropic.APIKey, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens)

	// setup router
	r := router.SetupRouter(cfg, db, sc)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	log.Printf("server listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("run server: %v", err)
	}
}

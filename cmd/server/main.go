package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/usman11267/ai-project/internal/catalog"
	"github.com/usman11267/ai-project/internal/config"
	"github.com/usman11267/ai-project/internal/oracle"
	"github.com/usman11267/ai-project/internal/platform/telegram"
	"github.com/usman11267/ai-project/internal/report"
	"github.com/usman11267/ai-project/internal/session"
	"github.com/usman11267/ai-project/internal/symptom"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// 1. Reference data
	cat, err := catalog.New(cfg.MedicineDataset)
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}
	resolver := symptom.NewResolver(cat)

	// 2. Session store
	var store session.Store = session.NewMemoryStore()
	if cfg.DatabaseURL != "" {
		var db *sql.DB
		for i := 0; i < 10; i++ {
			db, err = sql.Open("postgres", cfg.DatabaseURL)
			if err == nil {
				err = db.Ping()
			}
			if err == nil {
				break
			}
			log.Printf("Waiting for DB... (%d/10)", i+1)
			time.Sleep(2 * time.Second)
		}
		if err != nil {
			log.Fatalf("could not connect to DB: %v", err)
		}
		log.Println("Connected to Database.")

		m, err := migrate.New(cfg.MigrationsPath, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("migration init failed: %v", err)
		}
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			log.Fatalf("migration up failed: %v", err)
		}
		log.Println("Migrations applied successfully.")

		store = session.NewPostgresStore(db)
	} else {
		log.Println("DATABASE_URL not set, using in-memory session store.")
	}

	// 3. Oracles
	clarifier := oracle.NewRuleOracle(cat)
	var prescriber session.PrescriptionOracle = oracle.NewTemplatePrescriber(cat)
	if cfg.OpenAIKey != "" {
		prescriber = oracle.NewLLMPrescriber(prescriber, cfg.OpenAIKey, cfg.OpenAIModel)
		log.Println("Using LLM-backed prescriber.")
	}

	// 4. Reports
	reportSvc := report.NewService(telegram.NewClient(cfg.TelegramToken), cfg.DoctorChatID)
	var reports session.ReportSender
	if cfg.TelegramToken != "" && cfg.DoctorChatID != 0 {
		reports = reportSvc
	} else {
		log.Println("Warning: TELEGRAM_BOT_TOKEN or DOCTOR_CHAT_ID not set. Doctor reports disabled.")
	}

	// 5. Services
	svc := session.NewService(store, resolver, clarifier, prescriber, session.Options{
		Reports:                reports,
		MaxQuestionsPerSymptom: cfg.MaxQuestionsPerSymptom,
		TTL:                    cfg.SessionTTL,
	})
	handler := session.NewHandler(svc, cat, reportSvc)

	// 6. Expiry sweep
	go func() {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		for range ticker.C {
			n, err := svc.SweepExpired(context.Background())
			if err != nil {
				log.Printf("expiry sweep failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("expiry sweep removed %d session(s)", n)
			}
		}
	}()

	// 7. Router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS for frontend
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
			if r.Method == "OPTIONS" {
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	r.Route("/api", func(r chi.Router) {
		session.RegisterRoutes(r, handler)
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("Server starting on %s...", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"worklane.org/internal/account"
	"worklane.org/internal/directory"
	"worklane.org/internal/engage"
	"worklane.org/internal/httpapi"
	"worklane.org/internal/obs"
	"worklane.org/internal/store/pg"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	var db *sql.DB
	if dsn := os.Getenv("WORKLANE_PG_DSN"); dsn != "" {
		var err error
		db, err = pg.Open(dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		if err := pg.Ping(context.Background(), db, 5*time.Second); err != nil {
			log.Fatalf("ping db: %v", err)
		}
	}
	if db == nil {
		log.Fatal("missing DSN: set WORKLANE_PG_DSN")
	}

	accountStore, err := account.NewPGStore(db)
	if err != nil {
		log.Fatalf("account store: %v", err)
	}
	accounts, err := account.NewService(accountStore)
	if err != nil {
		log.Fatalf("account service: %v", err)
	}
	directoryStore, err := directory.NewPGStore(db)
	if err != nil {
		log.Fatalf("directory store: %v", err)
	}
	employees, err := directory.NewService(directoryStore)
	if err != nil {
		log.Fatalf("directory service: %v", err)
	}
	engageStore, err := engage.NewPGStore(db)
	if err != nil {
		log.Fatalf("engage store: %v", err)
	}
	feed, err := engage.NewService(engageStore)
	if err != nil {
		log.Fatalf("engage service: %v", err)
	}

	api := httpapi.New(httpapi.ReadyProbe{DB: db}, version, accounts,
		httpapi.WithDirectory(employees),
		httpapi.WithEngage(feed),
	)

	handler := httpapi.Logging(
		httpapi.SecurityHeaders(
			httpapi.CORS(
				httpapi.RateLimit(
					httpapi.MaxBodyBytes(api.Handler(), 1<<20),
					20, 10,
				),
			),
		),
	)

	addr := os.Getenv("WORKLANE_HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting worklane-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	_ = db.Close()
	log.Println("Stopped")
}

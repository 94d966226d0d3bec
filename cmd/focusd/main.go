package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AmanKajla032004/Aurora-sub000/internal/api"
	"github.com/AmanKajla032004/Aurora-sub000/internal/config"
	"github.com/AmanKajla032004/Aurora-sub000/internal/notify"
	"github.com/AmanKajla032004/Aurora-sub000/internal/service"
	"github.com/AmanKajla032004/Aurora-sub000/internal/store"
	"github.com/AmanKajla032004/Aurora-sub000/internal/store/memory"
	redisstore "github.com/AmanKajla032004/Aurora-sub000/internal/store/redis"
	"github.com/AmanKajla032004/Aurora-sub000/internal/web"
	"github.com/jonboulle/clockwork"
)

func main() {
	redisConfig := config.GetRedisConfig()
	focusConfig := config.GetFocusConfig()
	clock := clockwork.NewRealClock()

	// Initialize the document store
	var st store.Store
	if redisConfig.Enabled {
		redisStore, err := redisstore.NewStore(redisConfig)
		if err != nil {
			log.Fatalf("Failed to initialize Redis store: %v", err)
		}
		defer func() {
			if err := redisStore.Close(); err != nil {
				log.Printf("Error closing Redis connection: %v", err)
			}
		}()
		st = redisStore
	} else {
		st = memory.NewStore()
	}

	// Initialize the service layer. Completion events are logged here; a
	// presentation layer embedding the core would supply its own sink.
	sink := notify.NopSink{}
	roomService := service.NewRoomService(st, sink, clock)
	presenceService := service.NewPresenceService(st, clock)
	directory := service.NewDirectory(st, presenceService)

	// Wire the garbage collector: opportunistic on leave, periodic in the background
	reaper := service.NewReaper(st, roomService, clock, focusConfig.SweepInterval, focusConfig.PresenceStaleAfter)
	roomService.AttachReaper(reaper)

	reaperCtx, stopReaper := context.WithCancel(context.Background())
	defer stopReaper()
	go reaper.Run(reaperCtx)

	// Register the SSE update callback with the room service
	sseManager := web.NewSSEManager(directory)
	roomService.RegisterUpdateCallback(sseManager.NotifyRoomUpdate)

	// Set up routes
	mux := api.SetupRoutes(roomService, directory, focusConfig.HeartbeatInterval)
	mux.Handle("/events", sseManager)

	// Configure the HTTP server
	server := &http.Server{
		Addr:         ":" + focusConfig.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disable write timeout for SSE connections
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine
	go func() {
		log.Printf("Starting focusd server on port %s", focusConfig.Port)
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for an interrupt or terminate signal from the OS
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until a signal is received or an error occurs
	select {
	case err := <-serverErrors:
		log.Fatalf("Error starting server: %v", err)

	case <-shutdown:
		log.Println("Shutting down server...")

		// Stop background collection and close SSE connections first
		stopReaper()
		sseManager.Shutdown()

		// Create a deadline to wait for
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// Doesn't block if there are no connections, but will otherwise
		// wait until the timeout deadline.
		if err := server.Shutdown(ctx); err != nil {
			server.Close()
			log.Fatalf("Error shutting down server: %v", err)
		}

		log.Println("Server gracefully stopped")
	}
}

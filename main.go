package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"porteria_local/internal/api"
	"porteria_local/internal/api/handler"
	"porteria_local/internal/api/middleware"
	"porteria_local/internal/config"
	"porteria_local/internal/repository/reservasdb"
	"porteria_local/internal/repository/sqlite"
	"porteria_local/internal/service"
)

func main() {
	// 1. Cargar configuración
	cfg := config.Load()
	log.Println("Configuración cargada.")

	// 2. Base de datos local
	db, err := sqlite.NewDB(cfg.SQLitePath)
	if err != nil {
		log.Fatalf("No se pudo abrir la base de datos local: %v", err)
	}
	defer db.Close()
	log.Println("Base de datos local lista:", cfg.SQLitePath)

	// 3. Base externa de reservas (opcional: la portería funciona sin ella)
	var reservaService *service.ReservaService
	reservasDB, err := reservasdb.NewDB(cfg.ReservasDSN)
	if err != nil {
		log.Printf("[RESERVAS] Sin conexión a la base de reservas, módulo degradado: %v", err)
		reservaService = service.NewReservaService(nil)
	} else {
		defer reservasDB.Close()
		reservaService = service.NewReservaService(reservasdb.NewReservaRepository(reservasDB))
		log.Println("[RESERVAS] Módulo de reservas conectado.")
	}

	// 4. Repositorios
	registroRepo := sqlite.NewRegistroRepository(db)
	turnoRepo := sqlite.NewTurnoRepository(db)
	categoriaRepo := sqlite.NewCategoriaRepository(db)
	usuarioRepo := sqlite.NewUsuarioRepository(db)

	// 5. WebSocket manager para el tablero local
	wsManager := handler.NewWebSocketManager()
	go wsManager.Start()

	// 6. Servicios
	syncService := service.NewSyncService(categoriaRepo, usuarioRepo, registroRepo, turnoRepo,
		cfg.CentralURL, cfg.MaestraURL, cfg.PorteriaID, cfg.TimeoutServidorRemoto)
	syncService.SetEstadoListener(wsManager.BroadcastEstadoPatio)

	authService := service.NewAuthService(usuarioRepo, cfg.JWTSecret, cfg.JWTExpirationHours)
	registroService := service.NewRegistroService(registroRepo, categoriaRepo, reservaService, syncService)
	turnoService := service.NewTurnoService(turnoRepo, registroRepo, syncService, cfg.PorteriaID)

	authMiddleware := middleware.NewAuthMiddleware(authService)

	// 7. Sincronización inicial con el central (no fatal si está caído)
	func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.TimeoutServidorRemoto)
		defer cancel()
		if err := syncService.SincronizarDesdeCentral(ctx); err != nil {
			log.Printf("[SINCRO] Sincronización inicial falló, se continúa con datos locales: %v", err)
		}
	}()

	// 8. Tareas programadas
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go iniciarExpiracionReservas(jobCtx, reservaService, cfg.IntervaloExpiracion)
	go iniciarEstadoLive(jobCtx, syncService, cfg.IntervaloEstadoLive)

	// 9. Router y servidor HTTP
	router := api.SetupRouter(authService, registroService, turnoService, reservaService, authMiddleware, wsManager)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Printf("Portería local escuchando en el puerto %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Error en ListenAndServe(): %v", err)
		}
	}()

	// Apagado ordenado
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Apagando el servidor...")

	cancelJobs()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("El servidor tuvo que apagarse a la fuerza: %v", err)
	}

	log.Println("Servidor apagado.")
}

func iniciarExpiracionReservas(ctx context.Context, reservas *service.ReservaService, intervalo time.Duration) {
	if !reservas.Disponible() {
		return
	}
	ticker := time.NewTicker(intervalo)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			if err := reservas.ExpirarVencidas(sweepCtx); err != nil {
				log.Printf("[RESERVAS] Error expirando reservas vencidas: %v", err)
			}
			cancel()
		}
	}
}

func iniciarEstadoLive(ctx context.Context, sync *service.SyncService, intervalo time.Duration) {
	ticker := time.NewTicker(intervalo)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pushCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			if err := sync.EnviarEstadoPatio(pushCtx); err != nil {
				log.Printf("[SINCRO] No se pudo enviar el estado del patio: %v", err)
			}
			cancel()
		}
	}
}

package api

import (
	"porteria_local/internal/api/handler"
	"porteria_local/internal/api/middleware"
	"porteria_local/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRouter(as *service.AuthService, rs *service.RegistroService, ts *service.TurnoService,
	resS *service.ReservaService, authMw *middleware.AuthMiddleware, wsManager *handler.WebSocketManager) *gin.Engine {
	r := gin.Default()
	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// La conexión en tiempo real no lleva auth, igual que el resto de la API
	// local: el servidor solo escucha en la máquina de la portería.
	wsHandler := handler.NewWebSocketHandler(wsManager)
	r.GET("/ws", wsHandler.HandleWebSocket)

	authHandler := handler.NewAuthHandler(as)
	registroHandler := handler.NewRegistroHandler(rs)
	dashboardHandler := handler.NewDashboardHandler(rs)
	turnoHandler := handler.NewTurnoHandler(ts)
	reservaHandler := handler.NewReservaHandler(resS)

	apiRoutes := r.Group("/api")
	{
		apiRoutes.POST("/login", authHandler.Login)
		apiRoutes.GET("/usuarios", authMw.Authenticate(), authMw.AuthorizeRol("admin"), authHandler.Usuarios)

		apiRoutes.POST("/ingreso", registroHandler.Ingresar)
		apiRoutes.GET("/vehiculo/:placa", registroHandler.ConsultarPorPlaca)
		apiRoutes.GET("/calcular/:id", registroHandler.Calcular)
		apiRoutes.POST("/procesar-pago", registroHandler.ProcesarPago)
		apiRoutes.DELETE("/registros/:id", registroHandler.Liberar)
		apiRoutes.GET("/historial", registroHandler.Historial)

		apiRoutes.GET("/dashboard/stats", dashboardHandler.Stats)
		apiRoutes.GET("/dashboard/activos", dashboardHandler.Activos)
		apiRoutes.GET("/verificar-cupo/:categoria", dashboardHandler.VerificarCupo)
		apiRoutes.GET("/categorias", dashboardHandler.Categorias)

		turnoRoutes := apiRoutes.Group("/turnos")
		{
			turnoRoutes.POST("/abrir", turnoHandler.Abrir)
			turnoRoutes.GET("/resumen-actual", turnoHandler.ResumenActual)
			turnoRoutes.POST("/cerrar", turnoHandler.Cerrar)
		}

		reservaRoutes := apiRoutes.Group("/reservas")
		{
			reservaRoutes.GET("/buscar/:placa", reservaHandler.BuscarPorPlaca)
			reservaRoutes.GET("/pendientes", reservaHandler.Pendientes)
			reservaRoutes.DELETE("/liberar/:id", reservaHandler.Liberar)
		}
	}

	return r
}

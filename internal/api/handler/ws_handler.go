package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"porteria_local/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // la UI de escritorio se conecta desde file:// o localhost
	},
}

// WebSocketManager retransmite a la UI local la misma instantánea del patio
// que se envía al maestro, para que el tablero se refresque sin sondear.
type WebSocketManager struct {
	clients    map[*websocket.Conn]bool
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	broadcast  chan []byte
	mutex      sync.RWMutex
}

func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clients:    make(map[*websocket.Conn]bool),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		broadcast:  make(chan []byte, 16),
	}
}

func (wsm *WebSocketManager) Start() {
	for {
		select {
		case client := <-wsm.register:
			wsm.mutex.Lock()
			wsm.clients[client] = true
			wsm.mutex.Unlock()

		case client := <-wsm.unregister:
			wsm.mutex.Lock()
			if _, ok := wsm.clients[client]; ok {
				delete(wsm.clients, client)
				client.Close()
			}
			wsm.mutex.Unlock()

		case message := <-wsm.broadcast:
			wsm.mutex.Lock()
			for client := range wsm.clients {
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					client.Close()
					delete(wsm.clients, client)
				}
			}
			wsm.mutex.Unlock()
		}
	}
}

// BroadcastEstadoPatio no bloquea: si el canal está lleno la instantánea se
// descarta, la siguiente llega en segundos.
func (wsm *WebSocketManager) BroadcastEstadoPatio(estado domain.EstadoPatioMaestro) {
	message, err := json.Marshal(estado)
	if err != nil {
		log.Printf("Error serializando estado del patio: %v", err)
		return
	}
	select {
	case wsm.broadcast <- message:
	default:
	}
}

type WebSocketHandler struct {
	wsManager *WebSocketManager
}

func NewWebSocketHandler(wsManager *WebSocketManager) *WebSocketHandler {
	return &WebSocketHandler{wsManager: wsManager}
}

// GET /ws
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("No se pudo abrir el WebSocket: %v", err)
		return
	}

	h.wsManager.register <- conn

	go func() {
		defer func() {
			h.wsManager.unregister <- conn
		}()
		for {
			// Solo se escribe hacia el cliente; leer detecta la desconexión.
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"porteria_local/internal/domain"
	"porteria_local/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// SyncService habla con el servidor central (pull de configuración al inicio)
// y con el maestro (push de movimientos, cierres y estado del patio).
//
// Todos los push son at-most-once: se disparan en una goroutine, los fallos
// se registran y se descartan, no hay cola ni reintentos. El estado local
// manda; el tablero del maestro es solo observacional y puede quedar
// desactualizado si estuvo caído durante un evento.
type SyncService struct {
	categoriaRepo repository.CategoriaRepository
	usuarioRepo   repository.UsuarioRepository
	registroRepo  repository.RegistroRepository
	turnoRepo     repository.TurnoRepository

	client     *http.Client
	centralURL string
	maestraURL string
	porteriaID string

	// listener recibe cada instantánea del patio para retransmitirla a la UI
	// local (WebSocket). Puede ser nil.
	listener func(domain.EstadoPatioMaestro)
}

func NewSyncService(
	categoriaRepo repository.CategoriaRepository,
	usuarioRepo repository.UsuarioRepository,
	registroRepo repository.RegistroRepository,
	turnoRepo repository.TurnoRepository,
	centralURL, maestraURL, porteriaID string,
	timeout time.Duration,
) *SyncService {
	return &SyncService{
		categoriaRepo: categoriaRepo,
		usuarioRepo:   usuarioRepo,
		registroRepo:  registroRepo,
		turnoRepo:     turnoRepo,
		client:        &http.Client{Timeout: timeout},
		centralURL:    centralURL,
		maestraURL:    maestraURL,
		porteriaID:    porteriaID,
	}
}

func (s *SyncService) SetEstadoListener(fn func(domain.EstadoPatioMaestro)) {
	s.listener = fn
}

// SincronizarDesdeCentral trae tarifas y usuarios del servidor central. Si el
// central no responde dentro del timeout la portería arranca con lo que tenga
// en la base local; nunca bloquea el inicio más allá del timeout del cliente.
func (s *SyncService) SincronizarDesdeCentral(ctx context.Context) error {
	if err := s.actualizarTarifas(ctx); err != nil {
		log.Printf("[SINCRO] Servidor central no disponible (tarifas): %v", err)
		return err
	}
	if err := s.actualizarUsuarios(ctx); err != nil {
		log.Printf("[SINCRO] Servidor central no disponible (usuarios): %v", err)
		return err
	}
	log.Println("[SINCRO] Datos de central actualizados.")
	return nil
}

func (s *SyncService) actualizarTarifas(ctx context.Context) error {
	var tarifas map[string]domain.TarifaCentral
	if err := s.getJSON(ctx, s.centralURL+"/tarifas", &tarifas); err != nil {
		return err
	}
	for tipo, t := range tarifas {
		idLocal, ok := domain.MapeoTarifasCentral[strings.ToLower(tipo)]
		if !ok {
			log.Printf("[SINCRO] Tipo de tarifa desconocido '%s', se ignora.", tipo)
			continue
		}
		capacidad := t.Capacidad
		if capacidad <= 0 {
			capacidad = 100
		}
		if err := s.categoriaRepo.ActualizarTarifas(ctx, idLocal, t.Minuto, t.Hora, capacidad); err != nil {
			log.Printf("[SINCRO] No se pudo actualizar la tarifa de '%s': %v", idLocal, err)
		}
	}
	return nil
}

func (s *SyncService) actualizarUsuarios(ctx context.Context) error {
	var usuarios []domain.UsuarioCentral
	if err := s.getJSON(ctx, s.centralURL+"/usuarios", &usuarios); err != nil {
		return err
	}
	for _, u := range usuarios {
		password := u.Password
		// El central puede mandar claves en claro o ya hasheadas; el prefijo
		// del algoritmo distingue los casos.
		if !strings.HasPrefix(password, "$2b$") && !strings.HasPrefix(password, "$2a$") {
			hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				log.Printf("[SINCRO] No se pudo hashear la clave del usuario '%s': %v", u.Usuario, err)
				continue
			}
			password = string(hashed)
		}
		err := s.usuarioRepo.Upsert(ctx, &domain.Usuario{
			ID:       u.ID,
			Nombre:   u.Nombre,
			Usuario:  u.Usuario,
			Rol:      u.Rol,
			Password: password,
		})
		if err != nil {
			log.Printf("[SINCRO] No se pudo guardar el usuario '%s': %v", u.Usuario, err)
		}
	}
	return nil
}

// NotificarIngreso informa al maestro un ingreso recién registrado.
func (s *SyncService) NotificarIngreso(reg *domain.Registro) {
	nombre := s.nombreEmpleado(reg.IDTurno)
	s.postAsync("/sincronizar-movimiento", domain.MovimientoMaestro{
		EventoID:      uuid.NewString(),
		ID:            reg.ID,
		Placa:         reg.Placa,
		TipoVehiculo:  reg.CategoriaID,
		Entrada:       reg.Entrada.Format(time.RFC3339),
		UsuarioNombre: nombre,
		PorteriaID:    s.porteriaID,
	})
	s.NotificarEstadoPatio()
}

// NotificarSalida informa al maestro un pago procesado.
func (s *SyncService) NotificarSalida(reg *domain.Registro, salida time.Time, total float64, metodo string) {
	nombre := s.nombreEmpleado(reg.IDTurno)
	duracion := int64(salida.Sub(reg.Entrada).Minutes())
	if duracion < 1 {
		duracion = 1
	}
	s.postAsync("/sincronizar-movimiento", domain.MovimientoMaestro{
		EventoID:        uuid.NewString(),
		ID:              reg.ID,
		Placa:           reg.Placa,
		TipoVehiculo:    reg.CategoriaID,
		Entrada:         reg.Entrada.Format(time.RFC3339),
		Salida:          salida.Format(time.RFC3339),
		TotalPagado:     total,
		MetodoPago:      metodo,
		UsuarioNombre:   nombre,
		DuracionMinutos: duracion,
		PorteriaID:      s.porteriaID,
	})
	s.NotificarEstadoPatio()
}

// ReportarCierre envía el reporte de cierre de turno al maestro.
func (s *SyncService) ReportarCierre(cierre domain.CierreTurnoMaestro) {
	s.postAsync("/reportar-cierre", cierre)
}

// NotificarEstadoPatio arma la instantánea del patio y la publica al maestro
// y al listener local sin bloquear al llamador.
func (s *SyncService) NotificarEstadoPatio() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.client.Timeout)
		defer cancel()
		if err := s.EnviarEstadoPatio(ctx); err != nil {
			log.Printf("[SINCRO] No se pudo enviar el estado del patio: %v", err)
		}
	}()
}

// EnviarEstadoPatio es la versión síncrona que usa el timer periódico.
func (s *SyncService) EnviarEstadoPatio(ctx context.Context) error {
	ocupacion, err := s.registroRepo.CountActivos(ctx)
	if err != nil {
		return err
	}
	ingresos, err := s.registroRepo.IngresosHoy(ctx)
	if err != nil {
		return err
	}
	detalle, err := s.registroRepo.OcupacionPorCategoria(ctx)
	if err != nil {
		return err
	}

	estado := domain.EstadoPatioMaestro{
		EventoID:         uuid.NewString(),
		IngresosHoy:      ingresos,
		OcupacionTotal:   ocupacion,
		DetalleOcupacion: detalle,
	}
	if s.listener != nil {
		s.listener(estado)
	}
	return s.post(ctx, "/actualizar-estado-patio", estado)
}

func (s *SyncService) nombreEmpleado(turnoID int64) string {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	nombre, err := s.turnoRepo.NombreEmpleado(ctx, turnoID)
	if err != nil || nombre == "" {
		return "Sistema"
	}
	return nombre
}

// postAsync dispara el envío y descarta el resultado: contrato at-most-once.
func (s *SyncService) postAsync(path string, payload any) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.client.Timeout)
		defer cancel()
		if err := s.post(ctx, path, payload); err != nil {
			log.Printf("[SINCRO] Envío a maestro falló (%s): %v", path, err)
		}
	}()
}

func (s *SyncService) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.maestraURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("el maestro respondió %d", resp.StatusCode)
	}
	return nil
}

func (s *SyncService) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("el central respondió %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

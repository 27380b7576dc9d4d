package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"porteria_local/internal/domain"
	"porteria_local/internal/repository"
	"porteria_local/internal/repository/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type syncFixture struct {
	db       *sql.DB
	catRepo  repository.CategoriaRepository
	usrRepo  repository.UsuarioRepository
	regRepo  repository.RegistroRepository
	turnRepo repository.TurnoRepository
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()
	db, err := sqlite.NewDB(":memory:")
	require.NoError(t, err, "no se pudo crear la base de prueba")
	t.Cleanup(func() { db.Close() })
	return &syncFixture{
		db:       db,
		catRepo:  sqlite.NewCategoriaRepository(db),
		usrRepo:  sqlite.NewUsuarioRepository(db),
		regRepo:  sqlite.NewRegistroRepository(db),
		turnRepo: sqlite.NewTurnoRepository(db),
	}
}

func (f *syncFixture) servicio(centralURL, maestraURL string) *SyncService {
	return NewSyncService(f.catRepo, f.usrRepo, f.regRepo, f.turnRepo,
		centralURL, maestraURL, "Porteria_Test", 2*time.Second)
}

func TestSincronizarDesdeCentralActualizaTarifas(t *testing.T) {
	central := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tarifas":
			// Claves con la taxonomía del central, no la local. "dron" es
			// desconocida y debe ignorarse sin tumbar el resto.
			json.NewEncoder(w).Encode(map[string]domain.TarifaCentral{
				"Motos":     {Minuto: 60, Hora: 3500, Capacidad: 40},
				"automovil": {Minuto: 120, Hora: 6000},
				"dron":      {Minuto: 1, Hora: 10},
			})
		case "/usuarios":
			json.NewEncoder(w).Encode([]domain.UsuarioCentral{})
		default:
			http.NotFound(w, r)
		}
	}))
	defer central.Close()

	f := newSyncFixture(t)
	s := f.servicio(central.URL, central.URL)
	require.NoError(t, s.SincronizarDesdeCentral(context.Background()))

	moto, err := f.catRepo.FindByID(context.Background(), "moto")
	require.NoError(t, err)
	assert.Equal(t, 60.0, moto.TarifaMinuto)
	assert.Equal(t, 3500.0, moto.TarifaHora)
	assert.Equal(t, 40, moto.CapacidadMax)

	// Sin capacidad publicada se usa el tope por defecto.
	liviano, err := f.catRepo.FindByID(context.Background(), "liviano")
	require.NoError(t, err)
	assert.Equal(t, 120.0, liviano.TarifaMinuto)
	assert.Equal(t, 100, liviano.CapacidadMax)

	// La categoría sin tarifa publicada conserva la suya.
	otros, err := f.catRepo.FindByID(context.Background(), "otros")
	require.NoError(t, err)
	assert.Equal(t, 150.0, otros.TarifaMinuto)
}

func TestSincronizarDesdeCentralHasheaClaves(t *testing.T) {
	yaHasheada := "$2b$10$abcdefghijklmnopqrstuvABCDEFGHIJKLMNOPQRSTUVWXYZ012345"
	central := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tarifas":
			json.NewEncoder(w).Encode(map[string]domain.TarifaCentral{})
		case "/usuarios":
			json.NewEncoder(w).Encode([]domain.UsuarioCentral{
				{ID: "u1", Nombre: "María", Usuario: "maria", Rol: "operador", Password: "clave123"},
				{ID: "u2", Nombre: "Pedro", Usuario: "pedro", Rol: "admin", Password: yaHasheada},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer central.Close()

	f := newSyncFixture(t)
	s := f.servicio(central.URL, central.URL)
	require.NoError(t, s.SincronizarDesdeCentral(context.Background()))

	maria, err := f.usrRepo.FindByUsuario(context.Background(), "maria")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(maria.Password, "$2"))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(maria.Password), []byte("clave123")))

	pedro, err := f.usrRepo.FindByUsuario(context.Background(), "pedro")
	require.NoError(t, err)
	assert.Equal(t, yaHasheada, pedro.Password)
}

func TestSincronizarDesdeCentralCaidoNoEsFatal(t *testing.T) {
	f := newSyncFixture(t)
	s := f.servicio("http://127.0.0.1:1", "http://127.0.0.1:1")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.Error(t, s.SincronizarDesdeCentral(ctx))

	// Las categorías sembradas siguen intactas.
	categorias, err := f.catRepo.FindAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, categorias, 3)
}

func TestEnviarEstadoPatio(t *testing.T) {
	recibido := make(chan domain.EstadoPatioMaestro, 1)
	maestro := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/actualizar-estado-patio", r.URL.Path)
		var estado domain.EstadoPatioMaestro
		require.NoError(t, json.NewDecoder(r.Body).Decode(&estado))
		recibido <- estado
	}))
	defer maestro.Close()

	f := newSyncFixture(t)
	_, err := f.regRepo.Create(context.Background(), &domain.Registro{
		Placa: "ABC123", CategoriaID: "moto", Puesto: "M-1",
		Entrada: time.Now(), Estado: domain.RegistroActivo,
	})
	require.NoError(t, err)

	s := f.servicio(maestro.URL, maestro.URL)
	var escuchado domain.EstadoPatioMaestro
	s.SetEstadoListener(func(e domain.EstadoPatioMaestro) { escuchado = e })

	require.NoError(t, s.EnviarEstadoPatio(context.Background()))

	select {
	case estado := <-recibido:
		assert.NotEmpty(t, estado.EventoID)
		assert.Equal(t, 1, estado.OcupacionTotal)
		assert.Equal(t, 1, estado.DetalleOcupacion["Motos"])
		assert.Equal(t, estado.EventoID, escuchado.EventoID)
	case <-time.After(2 * time.Second):
		t.Fatal("el maestro nunca recibió el estado del patio")
	}
}

func TestNotificarSalidaPublicaElMovimiento(t *testing.T) {
	movimientos := make(chan domain.MovimientoMaestro, 2)
	maestro := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/sincronizar-movimiento" {
			var mov domain.MovimientoMaestro
			require.NoError(t, json.NewDecoder(r.Body).Decode(&mov))
			movimientos <- mov
		}
	}))
	defer maestro.Close()

	f := newSyncFixture(t)
	s := f.servicio(maestro.URL, maestro.URL)

	entrada := time.Now().Add(-45 * time.Minute)
	s.NotificarSalida(&domain.Registro{
		ID: 7, Placa: "ABC123", CategoriaID: "liviano", Entrada: entrada, IDTurno: 1,
	}, time.Now(), 4500, "Efectivo")

	select {
	case mov := <-movimientos:
		assert.NotEmpty(t, mov.EventoID)
		assert.Equal(t, int64(7), mov.ID)
		assert.Equal(t, "ABC123", mov.Placa)
		assert.Equal(t, 4500.0, mov.TotalPagado)
		assert.Equal(t, "Efectivo", mov.MetodoPago)
		assert.Equal(t, int64(45), mov.DuracionMinutos)
		assert.Equal(t, "Porteria_Test", mov.PorteriaID)
		// Sin usuario en la base local el movimiento sale a nombre del sistema.
		assert.Equal(t, "Sistema", mov.UsuarioNombre)
	case <-time.After(2 * time.Second):
		t.Fatal("el maestro nunca recibió el movimiento")
	}
}

// Un maestro caído no puede afectar la operación local: el envío falla en su
// goroutine y el llamador sigue como si nada.
func TestNotificarConMaestroCaidoNoBloquea(t *testing.T) {
	f := newSyncFixture(t)
	s := f.servicio("http://127.0.0.1:1", "http://127.0.0.1:1")

	hecho := make(chan struct{})
	go func() {
		s.NotificarIngreso(&domain.Registro{ID: 1, Placa: "ABC123", Entrada: time.Now()})
		close(hecho)
	}()

	select {
	case <-hecho:
	case <-time.After(time.Second):
		t.Fatal("NotificarIngreso bloqueó al llamador")
	}
}

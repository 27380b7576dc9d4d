package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"porteria_local/internal/domain"
	"porteria_local/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type SQLiteTestSuite struct {
	suite.Suite
	db        *sql.DB
	registros repository.RegistroRepository
	turnos    repository.TurnoRepository
	catRepo   repository.CategoriaRepository
	usuarios  repository.UsuarioRepository
	ctx       context.Context
}

func (s *SQLiteTestSuite) SetupTest() {
	db, err := NewDB(":memory:")
	require.NoError(s.T(), err, "no se pudo crear la base de prueba")
	s.db = db
	s.registros = NewRegistroRepository(db)
	s.turnos = NewTurnoRepository(db)
	s.catRepo = NewCategoriaRepository(db)
	s.usuarios = NewUsuarioRepository(db)
	s.ctx = context.Background()
}

func (s *SQLiteTestSuite) TearDownTest() {
	if s.db != nil {
		s.db.Close()
	}
}

func TestSQLiteTestSuite(t *testing.T) {
	suite.Run(t, new(SQLiteTestSuite))
}

func (s *SQLiteTestSuite) crearRegistro(placa, categoria, puesto string) *domain.Registro {
	reg, err := s.registros.Create(s.ctx, &domain.Registro{
		Placa:       placa,
		CategoriaID: categoria,
		Puesto:      puesto,
		Color:       "Rojo",
		Entrada:     time.Now(),
		IDTurno:     1,
		Estado:      domain.RegistroActivo,
	})
	require.NoError(s.T(), err)
	return reg
}

func (s *SQLiteTestSuite) TestCategoriasSembradas() {
	categorias, err := s.catRepo.FindAll(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), categorias, 3)

	cat, err := s.catRepo.FindByID(s.ctx, "liviano")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Livianos", cat.Nombre)
	assert.Equal(s.T(), 100.0, cat.TarifaMinuto)
	assert.Equal(s.T(), 5000.0, cat.TarifaHora)
	assert.Equal(s.T(), "L", cat.Prefijo)
}

func (s *SQLiteTestSuite) TestLimpiezaDeCategoriasNoOficiales() {
	_, err := s.db.Exec(
		`INSERT INTO categorias (id, nombre, tarifa_minuto, tarifa_hora, capacidad_max, prefijo)
		 VALUES ('bicicleta', 'Bicicletas', 10, 500, 20, 'B')`)
	require.NoError(s.T(), err)

	// Al reabrir la base la fila intrusa desaparece y las tarifas ajustadas
	// de las oficiales sobreviven.
	require.NoError(s.T(), s.catRepo.ActualizarTarifas(s.ctx, "moto", 80, 4000, 60))
	require.NoError(s.T(), sembrarCategorias(s.db))

	_, err = s.catRepo.FindByID(s.ctx, "bicicleta")
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)

	moto, err := s.catRepo.FindByID(s.ctx, "moto")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 80.0, moto.TarifaMinuto)
	assert.Equal(s.T(), 4000.0, moto.TarifaHora)
}

func (s *SQLiteTestSuite) TestPlacaActivaDuplicadaFalla() {
	s.crearRegistro("ABC123", "liviano", "L-1")

	_, err := s.registros.Create(s.ctx, &domain.Registro{
		Placa:       "ABC123",
		CategoriaID: "liviano",
		Puesto:      "L-2",
		Entrada:     time.Now(),
		Estado:      domain.RegistroActivo,
	})
	assert.ErrorIs(s.T(), err, repository.ErrDuplicateEntry)
}

func (s *SQLiteTestSuite) TestPuestoActivoDuplicadoFalla() {
	s.crearRegistro("ABC123", "liviano", "L-1")

	_, err := s.registros.Create(s.ctx, &domain.Registro{
		Placa:       "XYZ789",
		CategoriaID: "liviano",
		Puesto:      "L-1",
		Entrada:     time.Now(),
		Estado:      domain.RegistroActivo,
	})
	assert.ErrorIs(s.T(), err, repository.ErrDuplicateEntry)
}

func (s *SQLiteTestSuite) TestPlacaReutilizableTrasFinalizar() {
	reg := s.crearRegistro("ABC123", "liviano", "L-1")
	require.NoError(s.T(), s.registros.Finalizar(s.ctx, reg.ID, time.Now(), 4500, "Efectivo", 1))

	// La guarda de unicidad solo cubre el estado vivo.
	s.crearRegistro("ABC123", "liviano", "L-1")
}

func (s *SQLiteTestSuite) TestFinalizarSoloAplicaSobreActivos() {
	reg := s.crearRegistro("ABC123", "liviano", "L-1")
	require.NoError(s.T(), s.registros.Finalizar(s.ctx, reg.ID, time.Now(), 4500, "Efectivo", 1))

	err := s.registros.Finalizar(s.ctx, reg.ID, time.Now(), 9000, "Efectivo", 1)
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)

	// El primer pago queda intacto.
	pagado, err := s.registros.FindByID(s.ctx, reg.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), domain.RegistroFinalizado, pagado.Estado)
	assert.Equal(s.T(), 4500.0, pagado.TotalPagado.Float64)
}

func (s *SQLiteTestSuite) TestLiberarDejaTotalEnCero() {
	reg := s.crearRegistro("ABC123", "liviano", "L-1")
	require.NoError(s.T(), s.registros.Liberar(s.ctx, reg.ID, time.Now()))

	liberado, err := s.registros.FindByID(s.ctx, reg.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), domain.RegistroLiberado, liberado.Estado)
	assert.Equal(s.T(), 0.0, liberado.TotalPagado.Float64)
	assert.True(s.T(), liberado.Salida.Valid)
}

func (s *SQLiteTestSuite) TestFindActivoByPlaca() {
	s.crearRegistro("ABC123", "moto", "M-1")

	reg, err := s.registros.FindActivoByPlaca(s.ctx, "ABC123")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Motos", reg.CategoriaNombre)

	_, err = s.registros.FindActivoByPlaca(s.ctx, "NOEXISTE")
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
}

func (s *SQLiteTestSuite) TestConteosPorCategoria() {
	s.crearRegistro("AAA111", "moto", "M-1")
	s.crearRegistro("BBB222", "moto", "M-2")
	s.crearRegistro("CCC333", "liviano", "L-1")

	motos, err := s.registros.CountActivosByCategoria(s.ctx, "moto")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 2, motos)

	total, err := s.registros.CountActivos(s.ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 3, total)

	detalle, err := s.registros.OcupacionPorCategoria(s.ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 2, detalle["Motos"])
	assert.Equal(s.T(), 1, detalle["Livianos"])
	assert.Equal(s.T(), 0, detalle["Otros"])
}

func (s *SQLiteTestSuite) TestHistorialFiltraPorPlaca() {
	reg := s.crearRegistro("ABC123", "liviano", "L-1")
	require.NoError(s.T(), s.registros.Finalizar(s.ctx, reg.ID, time.Now(), 2000, "Efectivo", 1))
	s.crearRegistro("XYZ789", "moto", "M-1")

	resultados, err := s.registros.Historial(s.ctx, domain.HistorialFiltroDTO{Placa: "ABC"})
	require.NoError(s.T(), err)
	require.Len(s.T(), resultados, 1)
	assert.Equal(s.T(), "ABC123", resultados[0].Placa)

	todos, err := s.registros.Historial(s.ctx, domain.HistorialFiltroDTO{})
	require.NoError(s.T(), err)
	assert.Len(s.T(), todos, 2)
}

func (s *SQLiteTestSuite) TestIngresosHoySoloCuentaSalidasDelDia() {
	reg := s.crearRegistro("ABC123", "liviano", "L-1")
	require.NoError(s.T(), s.registros.Finalizar(s.ctx, reg.ID, time.Now(), 4500, "Efectivo", 1))

	// Un activo no suma aunque exista.
	s.crearRegistro("XYZ789", "moto", "M-1")

	// Una salida de ayer tampoco.
	viejo := s.crearRegistro("DDD444", "moto", "M-2")
	_, err := s.db.Exec(
		`UPDATE registros SET salida = ?, total_pagado = 9999, estado = 'FINALIZADO' WHERE id = ?`,
		time.Now().Add(-48*time.Hour), viejo.ID)
	require.NoError(s.T(), err)

	ingresos, err := s.registros.IngresosHoy(s.ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 4500.0, ingresos)
}

func (s *SQLiteTestSuite) TestTotalesTurnoParteEfectivoYDigital() {
	turno, err := s.turnos.Abrir(s.ctx, "op-1", 50000)
	require.NoError(s.T(), err)

	r1 := s.crearRegistroEnTurno("AAA111", "liviano", "L-1", turno.ID)
	r2 := s.crearRegistroEnTurno("BBB222", "liviano", "L-2", turno.ID)
	r3 := s.crearRegistroEnTurno("CCC333", "moto", "M-1", turno.ID)

	require.NoError(s.T(), s.registros.Finalizar(s.ctx, r1.ID, time.Now(), 4500, "Efectivo", turno.ID))
	require.NoError(s.T(), s.registros.Finalizar(s.ctx, r2.ID, time.Now(), 3000, "Nequi", turno.ID))

	efectivo, digital, ingresados, salidos, err := s.registros.TotalesTurno(s.ctx, turno.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 4500.0, efectivo)
	assert.Equal(s.T(), 3000.0, digital)
	assert.Equal(s.T(), 3, ingresados)
	assert.Equal(s.T(), 2, salidos)

	// El liberado no suma a lo recaudado pero sí a los ingresados.
	require.NoError(s.T(), s.registros.Liberar(s.ctx, r3.ID, time.Now()))
	efectivo, digital, ingresados, salidos, err = s.registros.TotalesTurno(s.ctx, turno.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 4500.0, efectivo)
	assert.Equal(s.T(), 3000.0, digital)
	assert.Equal(s.T(), 3, ingresados)
	assert.Equal(s.T(), 2, salidos)
}

func (s *SQLiteTestSuite) crearRegistroEnTurno(placa, categoria, puesto string, turnoID int64) *domain.Registro {
	reg, err := s.registros.Create(s.ctx, &domain.Registro{
		Placa:       placa,
		CategoriaID: categoria,
		Puesto:      puesto,
		Entrada:     time.Now(),
		IDTurno:     turnoID,
		Estado:      domain.RegistroActivo,
	})
	require.NoError(s.T(), err)
	return reg
}

func (s *SQLiteTestSuite) TestUnSoloTurnoAbiertoPorOperador() {
	_, err := s.turnos.Abrir(s.ctx, "op-1", 50000)
	require.NoError(s.T(), err)

	_, err = s.turnos.Abrir(s.ctx, "op-1", 50000)
	assert.ErrorIs(s.T(), err, repository.ErrDuplicateEntry)

	// Otro operador sí puede abrir el suyo.
	_, err = s.turnos.Abrir(s.ctx, "op-2", 30000)
	assert.NoError(s.T(), err)
}

func (s *SQLiteTestSuite) TestCerrarTurnoEsIrreversible() {
	turno, err := s.turnos.Abrir(s.ctx, "op-1", 50000)
	require.NoError(s.T(), err)

	require.NoError(s.T(), s.turnos.Cerrar(s.ctx, turno.ID, time.Now(), 8000, 0, 1, 1))

	cerrado, err := s.turnos.FindByID(s.ctx, turno.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), domain.TurnoCerrado, cerrado.Estado)
	assert.Equal(s.T(), 8000.0, cerrado.TotalEfectivo)
	assert.True(s.T(), cerrado.HoraCierre.Valid)

	err = s.turnos.Cerrar(s.ctx, turno.ID, time.Now(), 999, 999, 9, 9)
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)

	// Cerrado el anterior, el operador puede abrir uno nuevo.
	_, err = s.turnos.Abrir(s.ctx, "op-1", 50000)
	assert.NoError(s.T(), err)
}

func (s *SQLiteTestSuite) TestNombreEmpleado() {
	require.NoError(s.T(), s.usuarios.Upsert(s.ctx, &domain.Usuario{
		ID: "op-1", Usuario: "maria", Password: "x", Rol: "operador", Nombre: "María Pérez",
	}))
	turno, err := s.turnos.Abrir(s.ctx, "op-1", 50000)
	require.NoError(s.T(), err)

	nombre, err := s.turnos.NombreEmpleado(s.ctx, turno.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "María Pérez", nombre)
}

func (s *SQLiteTestSuite) TestUpsertUsuarioActualiza() {
	u := &domain.Usuario{ID: "op-1", Usuario: "maria", Password: "hash1", Rol: "operador", Nombre: "María"}
	require.NoError(s.T(), s.usuarios.Upsert(s.ctx, u))

	u.Password = "hash2"
	u.Rol = "admin"
	require.NoError(s.T(), s.usuarios.Upsert(s.ctx, u))

	guardado, err := s.usuarios.FindByUsuario(s.ctx, "maria")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "hash2", guardado.Password)
	assert.Equal(s.T(), "admin", guardado.Rol)

	todos, err := s.usuarios.FindAll(s.ctx)
	require.NoError(s.T(), err)
	assert.Len(s.T(), todos, 1)
}

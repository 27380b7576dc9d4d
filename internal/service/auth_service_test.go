package service

import (
	"context"
	"testing"
	"time"

	"porteria_local/internal/domain"
	"porteria_local/internal/repository"
	"porteria_local/internal/repository/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService(t *testing.T) (*AuthService, repository.UsuarioRepository) {
	t.Helper()
	db, err := sqlite.NewDB(":memory:")
	require.NoError(t, err, "no se pudo crear la base de prueba")
	t.Cleanup(func() { db.Close() })

	usrRepo := sqlite.NewUsuarioRepository(db)
	return NewAuthService(usrRepo, "secreto-de-prueba", time.Hour), usrRepo
}

func sembrarUsuario(t *testing.T, repo repository.UsuarioRepository, usuario, clave, rol string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(clave), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(context.Background(), &domain.Usuario{
		ID: "u-" + usuario, Usuario: usuario, Password: string(hash), Rol: rol, Nombre: "Usuario " + usuario,
	}))
}

func TestLoginExitoso(t *testing.T) {
	s, repo := newAuthService(t)
	sembrarUsuario(t, repo, "maria", "clave123", "operador")

	resp, err := s.Login(context.Background(), domain.LoginDTO{Usuario: "maria", Password: "clave123"})
	require.NoError(t, err)
	assert.Equal(t, "maria", resp.Usuario)
	assert.Equal(t, "operador", resp.Rol)
	assert.NotEmpty(t, resp.Token)

	claims, err := s.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "u-maria", claims["sub"])
	assert.Equal(t, "operador", claims["rol"])
}

func TestLoginConClaveIncorrecta(t *testing.T) {
	s, repo := newAuthService(t)
	sembrarUsuario(t, repo, "maria", "clave123", "operador")

	_, err := s.Login(context.Background(), domain.LoginDTO{Usuario: "maria", Password: "otra"})
	assert.ErrorIs(t, err, ErrCredencialesInvalidas)
}

func TestLoginConUsuarioInexistente(t *testing.T) {
	s, _ := newAuthService(t)

	// No se filtra si falló el usuario o la clave.
	_, err := s.Login(context.Background(), domain.LoginDTO{Usuario: "nadie", Password: "clave123"})
	assert.ErrorIs(t, err, ErrCredencialesInvalidas)
}

func TestValidateTokenRechazaBasura(t *testing.T) {
	s, _ := newAuthService(t)

	_, err := s.ValidateToken("no-es-un-jwt")
	assert.ErrorIs(t, err, ErrTokenInvalido)
}

func TestValidateTokenRechazaOtraFirma(t *testing.T) {
	s, repo := newAuthService(t)
	sembrarUsuario(t, repo, "maria", "clave123", "operador")
	resp, err := s.Login(context.Background(), domain.LoginDTO{Usuario: "maria", Password: "clave123"})
	require.NoError(t, err)

	otro := NewAuthService(nil, "otro-secreto", time.Hour)
	_, err = otro.ValidateToken(resp.Token)
	assert.ErrorIs(t, err, ErrTokenInvalido)
}

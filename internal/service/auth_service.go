package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"porteria_local/internal/domain"
	"porteria_local/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrCredencialesInvalidas = errors.New("usuario o clave incorrecta")
var ErrTokenInvalido = errors.New("token inválido o vencido")

type AuthService struct {
	usuarioRepo   repository.UsuarioRepository
	jwtSecret     string
	jwtExpiration time.Duration
}

func NewAuthService(usuarioRepo repository.UsuarioRepository, jwtSecret string, jwtExpiration time.Duration) *AuthService {
	return &AuthService{
		usuarioRepo:   usuarioRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

func (s *AuthService) Login(ctx context.Context, dto domain.LoginDTO) (*domain.LoginRespuestaDTO, error) {
	usuario, err := s.usuarioRepo.FindByUsuario(ctx, dto.Usuario)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCredencialesInvalidas
		}
		return nil, fmt.Errorf("error consultando el usuario: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(usuario.Password), []byte(dto.Password)); err != nil {
		return nil, ErrCredencialesInvalidas
	}

	claims := jwt.MapClaims{
		"sub":     usuario.ID,
		"exp":     time.Now().Add(s.jwtExpiration).Unix(),
		"iat":     time.Now().Unix(),
		"rol":     usuario.Rol,
		"usuario": usuario.Usuario,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	firmado, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("error firmando el token: %w", err)
	}

	return &domain.LoginRespuestaDTO{
		ID:      usuario.ID,
		Usuario: usuario.Usuario,
		Rol:     usuario.Rol,
		Nombre:  usuario.Nombre,
		Token:   firmado,
	}, nil
}

// ValidateToken lo usa el middleware de autenticación.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token vencido", ErrTokenInvalido)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalido, err)
	}
	if !token.Valid {
		return nil, ErrTokenInvalido
	}
	return claims, nil
}

func (s *AuthService) Usuarios(ctx context.Context) ([]domain.Usuario, error) {
	return s.usuarioRepo.FindAll(ctx)
}

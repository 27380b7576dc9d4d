package domain

type Categoria struct {
	ID           string  `json:"id"`
	Nombre       string  `json:"nombre"`
	TarifaMinuto float64 `json:"tarifa_minuto"`
	TarifaHora   float64 `json:"tarifa_hora"`
	CapacidadMax int     `json:"capacidad_max"`
	Prefijo      string  `json:"prefijo"`
}

// CategoriasOficiales son las únicas categorías válidas de la portería.
// Cualquier otra fila en la tabla se elimina al iniciar.
var CategoriasOficiales = []Categoria{
	{ID: "moto", Nombre: "Motos", TarifaMinuto: 50, TarifaHora: 3000, CapacidadMax: 50, Prefijo: "M"},
	{ID: "liviano", Nombre: "Livianos", TarifaMinuto: 100, TarifaHora: 5000, CapacidadMax: 30, Prefijo: "L"},
	{ID: "otros", Nombre: "Otros", TarifaMinuto: 150, TarifaHora: 7000, CapacidadMax: 10, Prefijo: "X"},
}

// MapeoTarifasCentral traduce las claves de tarifa del servidor central a los
// ids de categoría locales. Las dos taxonomías evolucionan por separado, por
// eso es una tabla y no condicionales.
var MapeoTarifasCentral = map[string]string{
	"moto":        "moto",
	"motos":       "moto",
	"motocicleta": "moto",
	"liviano":     "liviano",
	"livianos":    "liviano",
	"carro":       "liviano",
	"automovil":   "liviano",
	"otro":        "otros",
	"otros":       "otros",
	"pesado":      "otros",
}

// TarifaCentral es una entrada del tarifario que publica el servidor central.
type TarifaCentral struct {
	Minuto    float64 `json:"minuto"`
	Hora      float64 `json:"hora"`
	Capacidad int     `json:"capacidad"`
}

type CupoDTO struct {
	CapacidadMax int `json:"capacidad_max"`
	Ocupados     int `json:"ocupados"`
	Disponible   int `json:"disponible"`
}

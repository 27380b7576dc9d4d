package service

import (
	"math"
	"time"
)

// CalcularTarifa calcula los minutos facturables y el total a pagar de una
// estadía. Se factura mínimo 1 minuto. Por debajo de la hora se cobra por
// minuto; a partir de la hora se cobran las horas completas a tarifa de hora
// y el sobrante en minutos a tarifa de minuto. El resultado se redondea a la
// unidad de moneda.
//
// La función es pura: la pantalla de cobro y el pago la invocan por igual,
// pero el valor que se persiste es el que llega en el pago.
func CalcularTarifa(entrada, ahora time.Time, tarifaMinuto, tarifaHora float64) (minutos int64, total int64) {
	minutos = int64(math.Ceil(ahora.Sub(entrada).Minutes()))
	if minutos < 1 {
		minutos = 1
	}

	var bruto float64
	if minutos < 60 {
		bruto = float64(minutos) * tarifaMinuto
	} else {
		horas := minutos / 60
		restantes := minutos % 60
		bruto = float64(horas)*tarifaHora + float64(restantes)*tarifaMinuto
	}
	return minutos, int64(math.Round(bruto))
}

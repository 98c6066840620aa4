// Package nit valida y formatea el NIT colombiano (dígito de verificación módulo 11).
package nit

import (
	"errors"
	"fmt"
	"unicode"
)

// ErrInvalid NIT mal formado o con dígito de verificación incorrecto.
var ErrInvalid = errors.New("nit inválido")

// pesos de la DIAN para los 9 dígitos base, de izquierda a derecha.
var weights = [9]int{41, 37, 29, 23, 19, 17, 13, 7, 3}

// CheckDigit calcula el dígito de verificación de un NIT base de 9 dígitos.
func CheckDigit(base string) (byte, error) {
	digits := extractDigits(base)
	if len(digits) != 9 {
		return 0, fmt.Errorf("%w: se esperaban 9 dígitos base, hay %d", ErrInvalid, len(digits))
	}
	return checkDigit(digits), nil
}

// Validate acepta el NIT base (9 dígitos) o con dígito de verificación (10 dígitos),
// con o sin puntos y guion: "900123456", "900.123.456-8", "9001234568".
func Validate(s string) error {
	digits := extractDigits(s)
	switch len(digits) {
	case 9:
		return nil
	case 10:
		if want := checkDigit(digits[:9]); digits[9] != want {
			return fmt.Errorf("%w: dígito de verificación %c, se esperaba %c", ErrInvalid, digits[9], want)
		}
		return nil
	default:
		return fmt.Errorf("%w: %d dígitos", ErrInvalid, len(digits))
	}
}

// Format devuelve el NIT como "900.123.456-8". Si no es válido devuelve s sin cambios.
func Format(s string) string {
	if Validate(s) != nil {
		return s
	}
	d := extractDigits(s)
	return fmt.Sprintf("%s.%s.%s-%c", d[0:3], d[3:6], d[6:9], checkDigit(d[:9]))
}

func checkDigit(base []byte) byte {
	var sum int
	for i, d := range base {
		sum += int(d-'0') * weights[i]
	}
	r := sum % 11
	if r < 2 {
		return byte('0' + r)
	}
	return byte('0' + 11 - r)
}

func extractDigits(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if unicode.IsDigit(r) {
			out = append(out, byte(r))
		}
	}
	return out
}

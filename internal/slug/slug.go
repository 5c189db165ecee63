// Package slug deriva identificadores URL-safe a partir de nombres de producto.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify normaliza un texto a un identificador apto para URL: minúsculas,
// sin acentos, palabras separadas por un solo guión. Es total (entrada
// basura produce cadena vacía) e idempotente.
func Slugify(texto string) string {
	// Descomponer acentos (NFD) y descartar las marcas diacríticas.
	limpiador := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	limpio, _, err := transform.String(limpiador, texto)
	if err != nil {
		limpio = texto
	}

	limpio = strings.ToLower(limpio)

	var b strings.Builder
	for _, r := range limpio {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsSpace(r), r == '-':
			b.WriteRune('-')
		}
	}

	// Colapsar corridas de guiones y recortar los extremos.
	partes := strings.FieldsFunc(b.String(), func(r rune) bool { return r == '-' })
	return strings.Join(partes, "-")
}

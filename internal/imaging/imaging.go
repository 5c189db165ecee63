// Package imaging convierte archivos binarios en cadenas base64 transportables
// (data URLs) y maneja el prefijo data: en la frontera con el backend.
package imaging

import (
	"context"
	"encoding/base64"
	"io"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const tipoPorDefecto = "image/jpeg"

// File es un archivo seleccionado por el usuario, pendiente de ingesta.
type File struct {
	Nombre string
	Tipo   string // media type, p.ej. image/png; vacío asume image/jpeg
	Reader io.Reader
}

// Result es el desenlace de la ingesta de un archivo dentro de un lote.
// Cada archivo falla o triunfa por separado; Index conserva la posición
// de selección original.
type Result struct {
	Index   int
	DataURL string
	Err     error
}

// Ingest lee un archivo completo y lo codifica como data URL.
func Ingest(r io.Reader, mediaType string) (string, error) {
	datos, err := io.ReadAll(r)
	if err != nil {
		return "", errors.Wrap(err, "leyendo archivo de imagen")
	}
	return AddPrefix(base64.StdEncoding.EncodeToString(datos), mediaType), nil
}

// IngestEach ingesta un lote con aislamiento por archivo: un archivo corrupto
// no bloquea al resto de la galería. Los resultados quedan en el orden de
// selección aunque las lecturas terminen en otro orden.
func IngestEach(ctx context.Context, archivos []File) []Result {
	resultados := make([]Result, len(archivos))
	var wg sync.WaitGroup
	for i, f := range archivos {
		wg.Add(1)
		go func(i int, f File) {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				resultados[i] = Result{Index: i, Err: err}
				return
			}
			url, err := Ingest(f.Reader, f.Tipo)
			resultados[i] = Result{Index: i, DataURL: url, Err: err}
		}(i, f)
	}
	wg.Wait()
	return resultados
}

// IngestAll ingesta un lote fallando completo ante el primer error, para
// quien prefiera todo-o-nada. El orden de salida es el de entrada.
func IngestAll(ctx context.Context, archivos []File) ([]string, error) {
	resultados := make([]string, len(archivos))
	g, ctx := errgroup.WithContext(ctx)
	for i, f := range archivos {
		i, f := i, f
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			url, err := Ingest(f.Reader, f.Tipo)
			if err != nil {
				return errors.Wrapf(err, "archivo %d (%s)", i, f.Nombre)
			}
			resultados[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return resultados, nil
}

// HasPrefix indica si el valor ya viene como data URL.
func HasPrefix(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// StripPrefix devuelve el base64 crudo que espera el backend. Un valor sin
// prefijo ya está en esa forma y pasa intacto, lo que evita la doble
// codificación al reenviar un producto editado.
func StripPrefix(s string) string {
	if !HasPrefix(s) {
		return s
	}
	if i := strings.Index(s, ","); i >= 0 {
		return s[i+1:]
	}
	return s
}

// AddPrefix antepone el prefijo data URL a un base64 crudo. Valores vacíos o
// ya prefijados pasan intactos.
func AddPrefix(s, mediaType string) string {
	if s == "" || HasPrefix(s) {
		return s
	}
	if mediaType == "" {
		mediaType = tipoPorDefecto
	}
	return "data:" + mediaType + ";base64," + s
}

// StripAll aplica StripPrefix a una galería completa conservando el orden.
func StripAll(imagenes []string) []string {
	if imagenes == nil {
		return nil
	}
	salida := make([]string, len(imagenes))
	for i, img := range imagenes {
		salida[i] = StripPrefix(img)
	}
	return salida
}

// AddAll aplica AddPrefix a una galería completa conservando el orden.
func AddAll(imagenes []string, mediaType string) []string {
	if imagenes == nil {
		return nil
	}
	salida := make([]string, len(imagenes))
	for i, img := range imagenes {
		salida[i] = AddPrefix(img, mediaType)
	}
	return salida
}

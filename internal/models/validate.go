package models

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/VicenteFuentes2404/huerto-hogar/internal/slug"
)

// Claves de error de campo que entiende la capa de presentación.
const (
	CampoNombre    = "nombre"
	CampoSlug      = "slug"
	CampoPrecio    = "precio"
	CampoCategoria = "categoria"
	CampoImagen    = "imagen"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("precio", func(fl validator.FieldLevel) bool {
		_, ok := ParsearPrecio(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("categoria", func(fl validator.FieldLevel) bool {
		valor := fl.Field().String()
		for _, c := range Categorias {
			if valor == c {
				return true
			}
		}
		return false
	})
	return v
}

// Vista del borrador que consume el validador. Mantenerla aparte permite
// normalizar los campos antes de evaluar las reglas.
type borradorValidable struct {
	Nombre    string `validate:"required"`
	Slug      string `validate:"required"`
	Precio    string `validate:"required,precio"`
	Categoria string `validate:"required,categoria"`
}

var mensajesPorCampo = map[string]struct {
	clave   string
	mensaje string
}{
	"Nombre":    {CampoNombre, "El nombre es obligatorio."},
	"Slug":      {CampoSlug, "El identificador es obligatorio."},
	"Precio":    {CampoPrecio, "El precio debe ser válido."},
	"Categoria": {CampoCategoria, "Debes seleccionar una categoría."},
}

// Validar evalúa todas las reglas del borrador y devuelve los errores por
// campo, todos juntos, para que la interfaz muestre cada problema de una vez.
// Un mapa vacío significa borrador válido. La unicidad del slug se
// pre-verifica contra slugsExistentes (la última instantánea del catálogo);
// la verificación autoritativa ocurre en el adaptador de persistencia.
// Es determinista y no tiene efectos secundarios.
func Validar(b Borrador, slugsExistentes []string) map[string]string {
	errores := map[string]string{}

	vista := borradorValidable{
		Nombre:    strings.TrimSpace(b.Nombre),
		Slug:      slug.Slugify(b.Slug),
		Precio:    b.Precio,
		Categoria: strings.TrimSpace(b.Categoria),
	}

	if err := validate.Struct(vista); err != nil {
		if fallas, ok := err.(validator.ValidationErrors); ok {
			for _, falla := range fallas {
				if m, conocido := mensajesPorCampo[falla.StructField()]; conocido {
					errores[m.clave] = m.mensaje
				}
			}
		}
	}

	if !b.EsEdicion {
		if strings.TrimSpace(b.Imagen) == "" {
			errores[CampoImagen] = "Debes subir una imagen principal."
		}
		if _, yaMarcado := errores[CampoSlug]; !yaMarcado {
			for _, existente := range slugsExistentes {
				if existente == vista.Slug {
					errores[CampoSlug] = "Ya existe un producto con ese identificador."
					break
				}
			}
		}
	}

	return errores
}

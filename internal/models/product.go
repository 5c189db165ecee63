package models

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/VicenteFuentes2404/huerto-hogar/internal/slug"
)

// Categorías permitidas del catálogo. Conjunto cerrado.
const (
	CategoriaFruta    = "Fruta"
	CategoriaVerdura  = "Verdura"
	CategoriaOrganico = "Orgánicos"
)

// Categorias lista las categorías válidas en el orden en que se muestran.
var Categorias = []string{CategoriaFruta, CategoriaVerdura, CategoriaOrganico}

// Producto representa un producto del catálogo. El slug hace de identificador
// y es inmutable después de la creación.
type Producto struct {
	Slug          string    `json:"id" bson:"_id"`
	Nombre        string    `json:"nombre" bson:"nombre" binding:"required"`
	Precio        int       `json:"precio" bson:"precio"`
	Descripcion   string    `json:"descripcion" bson:"descripcion"`
	Categoria     string    `json:"categoria" bson:"categoria" binding:"required"`
	Disponible    bool      `json:"disponible" bson:"disponible"`
	Imagen        string    `json:"imagen" bson:"imagen"`
	Imagenes      []string  `json:"imagenes" bson:"imagenes"`
	CreadoEn      time.Time `json:"creado_en,omitempty" bson:"creado_en"`
	ActualizadoEn time.Time `json:"actualizado_en,omitempty" bson:"actualizado_en"`
}

// NewProducto construye un producto con los valores por defecto explícitos.
// Todo producto nace disponible y con galería vacía; ningún llamador debe
// inferir defaults por su cuenta.
func NewProducto() Producto {
	return Producto{
		Disponible: true,
		Imagenes:   []string{},
	}
}

// Borrador es la copia de trabajo de un formulario de administración. Los
// campos llegan como los entrega el formulario (el precio como texto) y se
// coaccionan recién al construir el Producto definitivo.
type Borrador struct {
	Slug        string
	Nombre      string
	Precio      string
	Descripcion string
	Categoria   string
	Disponible  bool
	Imagen      string
	Imagenes    []string
	// EsEdicion marca que el borrador proviene de un producto ya persistido:
	// el slug no se re-verifica y la imagen existente cuenta como presente.
	EsEdicion bool
}

// NewBorrador construye un borrador vacío con los defaults de NewProducto.
func NewBorrador() Borrador {
	return Borrador{
		Disponible: true,
		Imagenes:   []string{},
	}
}

// BorradorDe construye el borrador de edición de un producto existente.
func BorradorDe(p Producto) Borrador {
	return Borrador{
		Slug:        p.Slug,
		Nombre:      p.Nombre,
		Precio:      strconv.Itoa(p.Precio),
		Descripcion: p.Descripcion,
		Categoria:   p.Categoria,
		Disponible:  p.Disponible,
		Imagen:      p.Imagen,
		Imagenes:    append([]string(nil), p.Imagenes...),
		EsEdicion:   true,
	}
}

// ParsearPrecio interpreta la entrada de precio del formulario: debe ser un
// número finito no negativo; los decimales se redondean al peso.
func ParsearPrecio(entrada string) (int, bool) {
	entrada = strings.TrimSpace(entrada)
	if entrada == "" {
		return 0, false
	}
	valor, err := strconv.ParseFloat(entrada, 64)
	if err != nil || math.IsNaN(valor) || math.IsInf(valor, 0) || valor < 0 {
		return 0, false
	}
	return int(math.Round(valor)), true
}

// AProducto coacciona el borrador a su forma persistible. Asume que el
// borrador ya pasó por Validar.
func (b Borrador) AProducto() Producto {
	p := NewProducto()
	p.Slug = slug.Slugify(b.Slug)
	p.Nombre = strings.TrimSpace(b.Nombre)
	if precio, ok := ParsearPrecio(b.Precio); ok {
		p.Precio = precio
	}
	p.Descripcion = b.Descripcion
	p.Categoria = b.Categoria
	p.Disponible = b.Disponible
	p.Imagen = b.Imagen
	if len(b.Imagenes) > 0 {
		p.Imagenes = append([]string(nil), b.Imagenes...)
	}
	return p
}

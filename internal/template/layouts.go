package template

type rgb struct{ r, g, b int }

var (
	black     = rgb{0, 0, 0}
	slate     = rgb{51, 65, 85}
	navy      = rgb{30, 58, 138}
	teal      = rgb{15, 118, 110}
	crimson   = rgb{185, 28, 28}
	plum      = rgb{107, 33, 168}
	forest    = rgb{21, 128, 61}
	amber     = rgb{180, 83, 9}
	lightGrey = rgb{243, 244, 246}
)

// layout is one visual variant. The built-in templates differ only in these knobs.
type layout struct {
	title      string
	font       string
	page       string
	accent     rgb
	headerBand bool
	compact    bool
	taxColumn  bool
	hideBank   bool
	cobrand    bool
	letterhead bool
	thermal    bool
	qtyLabel   string
	priceLabel string
	// eager layouts serialize immediately and return bytes instead of a Builder.
	eager bool
}

var layouts = map[string]layout{
	"classic":     {font: "Helvetica", page: "A4", accent: slate},
	"modern":      {font: "Helvetica", page: "A4", accent: teal, headerBand: true},
	"minimal":     {font: "Helvetica", page: "A4", accent: black, hideBank: true, eager: true},
	"compact":     {font: "Helvetica", page: "A4", accent: slate, compact: true},
	"corporate":   {font: "Helvetica", page: "A4", accent: navy, headerBand: true, taxColumn: true},
	"elegant":     {font: "Times", page: "A4", accent: plum, letterhead: true},
	"bold":        {font: "Helvetica", page: "A4", accent: crimson, headerBand: true, eager: true},
	"monochrome":  {font: "Courier", page: "A4", accent: black, eager: true},
	"letterhead":  {font: "Times", page: "A4", accent: navy, letterhead: true, taxColumn: true},
	"cobranded":   {font: "Helvetica", page: "A4", accent: teal, cobrand: true, headerBand: true},
	"service":     {font: "Helvetica", page: "A4", accent: forest, qtyLabel: "Hours", priceLabel: "Rate"},
	"retail":      {font: "Helvetica", page: "Letter", accent: amber, compact: true},
	"tax-invoice": {title: "TAX INVOICE", font: "Helvetica", page: "A4", accent: slate, taxColumn: true},
	"proforma":    {title: "PROFORMA INVOICE", font: "Helvetica", page: "A4", accent: amber, hideBank: true},
	"thermal":     {font: "Courier", accent: black, thermal: true, compact: true, eager: true},
	"statement":   {title: "STATEMENT", font: "Helvetica", page: "A4", accent: navy, cobrand: true, eager: true},
}

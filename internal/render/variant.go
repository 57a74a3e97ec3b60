// Package render turns letter fields into print-ready HTML. Every
// (letter type, layout version) pair is a named variant built from the shared
// fragments plus a layout file and a format file.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"sort"

	"github.com/policy-letter-api/internal/domain"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

type layout struct {
	file        string
	formatFiles map[domain.LetterType]string
	upperCase   bool // name and address block
	ccFootnote  bool // CC line instead of signer details
}

var layouts = map[domain.LayoutVersion]layout{
	domain.LayoutV1: {
		file:        "v1.gohtml",
		formatFiles: formatFiles("v1"),
		upperCase:   true,
	},
	domain.LayoutV2: {
		file:        "v2.gohtml",
		formatFiles: formatFiles("v2"),
		upperCase:   true,
		ccFootnote:  true,
	},
	domain.LayoutV3: {
		file:        "v3.gohtml",
		formatFiles: formatFiles("v2"),
		upperCase:   true,
		ccFootnote:  true,
	},
	domain.LayoutV5: {
		file:        "v5.gohtml",
		formatFiles: formatFiles("v5"),
		upperCase:   true,
		ccFootnote:  true,
	},
	domain.LayoutV6: {
		file:        "v6.gohtml",
		formatFiles: formatFiles("v6"),
		ccFootnote:  true,
	},
}

func formatFiles(prefix string) map[domain.LetterType]string {
	return map[domain.LetterType]string{
		domain.LetterFormat1: prefix + "_format1.gohtml",
		domain.LetterFormat2: prefix + "_format2.gohtml",
	}
}

// Variant is one concrete letter template.
type Variant struct {
	Type   domain.LetterType
	Layout domain.LayoutVersion

	upperCase  bool
	ccFootnote bool
	tmpl       *template.Template
}

// Name is "<letterType>/<layoutVersion>".
func (v *Variant) Name() string {
	return string(v.Type) + "/" + string(v.Layout)
}

type variantKey struct {
	t domain.LetterType
	l domain.LayoutVersion
}

var registry = mustBuildRegistry()

func mustBuildRegistry() map[variantKey]*Variant {
	reg := make(map[variantKey]*Variant)
	for version, lay := range layouts {
		for letterType, formatFile := range lay.formatFiles {
			tmpl := template.Must(template.New(string(letterType)+"_"+string(version)).
				ParseFS(templateFS, "templates/fragments.gohtml", "templates/"+lay.file, "templates/"+formatFile))
			reg[variantKey{letterType, version}] = &Variant{
				Type:       letterType,
				Layout:     version,
				upperCase:  lay.upperCase,
				ccFootnote: lay.ccFootnote,
				tmpl:       tmpl,
			}
		}
	}
	return reg
}

// Lookup returns the variant for a letter type and layout. An empty layout
// selects domain.DefaultLayout.
func Lookup(t domain.LetterType, l domain.LayoutVersion) (*Variant, error) {
	if l == "" {
		l = domain.DefaultLayout
	}
	v, ok := registry[variantKey{t, l}]
	if !ok {
		return nil, fmt.Errorf("no letter variant %s/%s: %w", t, l, domain.ErrBadRequest)
	}
	return v, nil
}

// Variants lists every registered variant ordered by name.
func Variants() []*Variant {
	out := make([]*Variant, 0, len(registry))
	for _, v := range registry {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// HTML renders f with the given images.
func (v *Variant) HTML(f *domain.LetterFields, img Images) (string, error) {
	var buf bytes.Buffer
	if err := v.tmpl.ExecuteTemplate(&buf, "document", v.view(f, img)); err != nil {
		return "", fmt.Errorf("execute %s: %w: %w", v.Name(), domain.ErrRender, err)
	}
	return buf.String(), nil
}

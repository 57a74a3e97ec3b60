// Package pdf post-processes rendered letters with pdfcpu.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Properties are the document info entries stamped on every letter.
type Properties struct {
	Title   string
	Subject string
	Author  string
}

// Finalizer validates a PDF and adds document properties.
type Finalizer struct{}

func NewFinalizer() *Finalizer { return &Finalizer{} }

func configuration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.WriteObjectStream = false
	conf.WriteXRefStream = false
	return conf
}

// Finalize returns a copy of doc with props applied.
func (f *Finalizer) Finalize(doc []byte, props Properties) ([]byte, error) {
	conf := configuration()
	if err := api.Validate(bytes.NewReader(doc), conf); err != nil {
		return nil, fmt.Errorf("validate pdf: %w", err)
	}

	m := map[string]string{}
	if props.Title != "" {
		m["Title"] = props.Title
	}
	if props.Subject != "" {
		m["Subject"] = props.Subject
	}
	if props.Author != "" {
		m["Author"] = props.Author
	}
	if len(m) == 0 {
		return doc, nil
	}

	var out bytes.Buffer
	if err := api.AddProperties(bytes.NewReader(doc), &out, m, conf); err != nil {
		return nil, fmt.Errorf("add pdf properties: %w", err)
	}
	return out.Bytes(), nil
}

// PageCount reports the number of pages in doc.
func (f *Finalizer) PageCount(doc []byte) (int, error) {
	return api.PageCount(bytes.NewReader(doc), configuration())
}

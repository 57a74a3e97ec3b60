package render

import (
	"encoding/base64"
	"html/template"
	"path/filepath"
	"strings"

	"github.com/policy-letter-api/internal/domain"
)

// Images holds the data URIs embedded in a letter. Empty entries are omitted
// from the output; QR is only drawn when QR.Code is set.
type Images struct {
	Logo      template.URL
	Signature template.URL
	QR        QRImages
}

// QRImages is the payment QR with its scheme logos.
type QRImages struct {
	Code     template.URL
	MauCAS   template.URL
	ZwennPay template.URL
}

// View is the template data for one letter.
type View struct {
	Title        string
	F            *domain.LetterFields
	NameLine     string
	AddressLines []string
	Intro        string
	Closing      string
	Agreement    string
	Assuring     string
	Footnote     string
	Logo         template.URL
	Signature    template.URL
	QR           *QRImages
}

// DataURI encodes b as an inline image named name.
func DataURI(name string, b []byte) template.URL {
	if len(b) == 0 {
		return ""
	}
	return template.URL("data:" + imageType(name) + ";base64," + base64.StdEncoding.EncodeToString(b))
}

func imageType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}

// CCLine is the advisor copy line printed under the signature.
func CCLine(advisorName string) string {
	if name := strings.TrimSpace(advisorName); name != "" {
		return "C.C Your Insurance Advisor, " + name + ", NIC Team"
	}
	return "C.C Your Insurance Advisor, NIC Team"
}

func (v *Variant) view(f *domain.LetterFields, img Images) *View {
	texts := DefaultTexts(v.Type)
	fill := strings.NewReplacer("{applicationDate}", f.ApplicationDate, "{returnDate}", f.ReturnDate)
	pick := func(s, fallback string) string {
		if strings.TrimSpace(s) == "" {
			s = fallback
		}
		return fill.Replace(s)
	}

	caseFn := func(s string) string { return s }
	if v.upperCase {
		caseFn = strings.ToUpper
	}
	lines := make([]string, 0, 3)
	for _, l := range []string{f.Address1, f.Address2, f.Address3} {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, caseFn(l))
		}
	}

	view := &View{
		Title:        "Policy Letter " + f.PolicyNo,
		F:            f,
		NameLine:     caseFn(f.CustomerName()),
		AddressLines: lines,
		Intro:        pick(f.IntroText, texts.Intro),
		Closing:      pick(f.ClosingText, texts.Closing),
		Agreement:    pick(f.AgreementText, texts.Agreement),
		Assuring:     pick(f.AssuringText, texts.Assuring),
		Logo:         img.Logo,
		Signature:    img.Signature,
	}
	if v.ccFootnote {
		view.Footnote = CCLine(f.AdvisorName)
	} else {
		view.Footnote = f.SignerDetails
	}
	if img.QR.Code != "" {
		qr := img.QR
		view.QR = &qr
	}
	return view
}

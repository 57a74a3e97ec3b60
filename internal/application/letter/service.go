package letter

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/policy-letter-api/internal/application/qr"
	"github.com/policy-letter-api/internal/domain"
	"github.com/policy-letter-api/internal/infrastructure/assets"
	"github.com/policy-letter-api/internal/infrastructure/pdf"
	"github.com/policy-letter-api/internal/pkg/validate"
	"github.com/policy-letter-api/internal/render"
	"golang.org/x/sync/errgroup"
)

type AssetSource interface {
	Load(ctx context.Context, name string) ([]byte, error)
}

type PDFRenderer interface {
	RenderPDF(ctx context.Context, html string) ([]byte, error)
}

type Finalizer interface {
	Finalize(doc []byte, props pdf.Properties) ([]byte, error)
	PageCount(doc []byte) (int, error)
}

type Notifier interface {
	SendLetterEmail(ctx context.Context, pdf []byte, req *domain.LetterRequest, sentBy string) (*domain.Recipients, error)
}

// Profiles resolves the signer defaults of a signed-in user.
type Profiles interface {
	Lookup(email string) (domain.AuthorizedUser, bool)
}

type ServiceDeps struct {
	QR          qr.Service // nil renders without a payment QR
	Assets      AssetSource
	PDF         PDFRenderer
	Finalizer   Finalizer
	Notifier    Notifier
	Profiles    Profiles
	CompanyName string
}

// Letter is a rendered PDF ready to download or email.
type Letter struct {
	PDF      []byte
	FileName string
	Variant  string
	Pages    int // 0 when the count could not be read
}

type Service interface {
	Generate(ctx context.Context, req *domain.LetterRequest, user string) (*Letter, error)
	Send(ctx context.Context, req *domain.LetterRequest, user string) (*domain.Recipients, error)
}

type service struct {
	qr        qr.Service
	assets    AssetSource
	pdf       PDFRenderer
	finalizer Finalizer
	notifier  Notifier
	profiles  Profiles
	company   string
	readFile  func(string) ([]byte, error)
}

func NewService(deps ServiceDeps) Service {
	return &service{
		qr:        deps.QR,
		assets:    deps.Assets,
		pdf:       deps.PDF,
		finalizer: deps.Finalizer,
		notifier:  deps.Notifier,
		profiles:  deps.Profiles,
		company:   deps.CompanyName,
		readFile:  os.ReadFile,
	}
}

func (s *service) Generate(ctx context.Context, req *domain.LetterRequest, user string) (*Letter, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	variant, err := render.Lookup(req.LetterType, req.Layout())
	if err != nil {
		return nil, err
	}

	fields := *req.Data
	s.applySigner(&fields, req.LetterType, user)

	var tok *qr.Token
	if s.qr != nil {
		tok = s.qr.Provision(ctx, fields.PolicyNo, fields.FirstName, fields.Surname)
	}
	defer tok.Release()

	images, err := s.loadImages(ctx, &fields, tok)
	if err != nil {
		return nil, err
	}
	html, err := variant.HTML(&fields, images)
	if err != nil {
		return nil, err
	}

	doc, err := s.pdf.RenderPDF(ctx, html)
	if err != nil {
		return nil, renderErr("render pdf", err)
	}
	doc, err = s.finalizer.Finalize(doc, pdf.Properties{
		Title:   "Policy Letter " + fields.PolicyNo,
		Subject: fields.PolicyNo,
		Author:  s.company,
	})
	if err != nil {
		return nil, renderErr("finalize pdf", err)
	}

	pages, err := s.finalizer.PageCount(doc)
	if err != nil {
		slog.Warn("pdf page count unavailable", "policy_no", fields.PolicyNo, "err", err)
	}

	slog.Info("letter rendered", "variant", variant.Name(), "policy_no", fields.PolicyNo, "qr", tok != nil, "bytes", len(doc), "pages", pages)
	return &Letter{
		PDF:      doc,
		FileName: FileName(&fields, req.Layout()),
		Variant:  variant.Name(),
		Pages:    pages,
	}, nil
}

func (s *service) Send(ctx context.Context, req *domain.LetterRequest, user string) (*domain.Recipients, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Data.AdvisorName) == "" || strings.TrimSpace(req.Data.AdvisorEmail) == "" {
		return nil, fmt.Errorf("insurance advisor name and email are required: %w", domain.ErrBadRequest)
	}
	letter, err := s.Generate(ctx, req, user)
	if err != nil {
		return nil, err
	}
	return s.notifier.SendLetterEmail(ctx, letter.PDF, req, user)
}

// FileName is "letter_<policyNo>_<layout>.pdf" with slashes in the policy number replaced.
func FileName(f *domain.LetterFields, layout domain.LayoutVersion) string {
	return "letter_" + f.FileSafePolicyNo() + "_" + string(layout) + ".pdf"
}

func checkRequest(req *domain.LetterRequest) error {
	if req == nil || req.Data == nil || req.LetterType == "" {
		return fmt.Errorf("letter type and data are required: %w", domain.ErrBadRequest)
	}
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	return nil
}

// applySigner fills blank signer fields from the user's roster profile and
// falls back to the stock signature image.
func (s *service) applySigner(f *domain.LetterFields, t domain.LetterType, user string) {
	if s.profiles != nil && user != "" {
		if p, ok := s.profiles.Lookup(user); ok {
			if f.SignerName == "" {
				f.SignerName = p.SignerName
			}
			if f.SignerTitle == "" {
				f.SignerTitle = p.SignerTitle
			}
			if f.SignatureFile == "" {
				f.SignatureFile = p.SignatureFile
			}
		}
	}
	if !ValidSignatureFile(f.SignatureFile) {
		if f.SignatureFile != "" {
			slog.Warn("ignoring signature file", "name", f.SignatureFile)
		}
		f.SignatureFile = render.DefaultSignature(t)
	}
}

// ValidSignatureFile accepts bare png or jpeg file names.
func ValidSignatureFile(name string) bool {
	if !assets.IsBareName(name) {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}

// loadImages fetches every image concurrently. A missing image is left out
// of the letter; only cancellation aborts the render.
func (s *service) loadImages(ctx context.Context, f *domain.LetterFields, tok *qr.Token) (render.Images, error) {
	var (
		img render.Images
		mu  sync.Mutex
	)
	g, gctx := errgroup.WithContext(ctx)

	load := func(name string, set func(u template.URL)) {
		g.Go(func() error {
			b, err := s.assets.Load(gctx, name)
			if err != nil {
				if cerr := gctx.Err(); cerr != nil {
					return cerr
				}
				logMissing(name, err)
				return nil
			}
			mu.Lock()
			set(render.DataURI(name, b))
			mu.Unlock()
			return nil
		})
	}

	load(render.LogoFile, func(u template.URL) { img.Logo = u })
	load(f.SignatureFile, func(u template.URL) { img.Signature = u })

	if tok != nil {
		g.Go(func() error {
			b, err := s.readFile(tok.ImagePath)
			if err != nil {
				slog.Warn("qr image unreadable", "path", tok.ImagePath, "err", err)
				return nil
			}
			mu.Lock()
			img.QR.Code = render.DataURI(tok.ImagePath, b)
			mu.Unlock()
			return nil
		})
		load(render.MauCASFile, func(u template.URL) { img.QR.MauCAS = u })
		load(render.ZwennPayFile, func(u template.URL) { img.QR.ZwennPay = u })
	}

	if err := g.Wait(); err != nil {
		return render.Images{}, err
	}
	return img, nil
}

func logMissing(name string, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		slog.Warn("letter asset missing", "name", name)
		return
	}
	slog.Warn("letter asset unavailable", "name", name, "err", err)
}

func renderErr(op string, err error) error {
	if errors.Is(err, domain.ErrRender) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrRender, err)
}

package domain

import "strings"

// LetterType selects the letter family.
type LetterType string

const (
	LetterFormat1 LetterType = "format1"
	LetterFormat2 LetterType = "format2"
)

// LayoutVersion selects a visual variant of a letter family.
type LayoutVersion string

const (
	LayoutV1 LayoutVersion = "v1"
	LayoutV2 LayoutVersion = "v2"
	LayoutV3 LayoutVersion = "v3"
	LayoutV5 LayoutVersion = "v5"
	LayoutV6 LayoutVersion = "v6"
)

// DefaultLayout is used when a request names no layout version.
const DefaultLayout = LayoutV1

// LetterRequest is the body of /pdf/generate and /pdf/send-email.
type LetterRequest struct {
	LetterType    LetterType    `json:"letterType" validate:"required,oneof=format1 format2"`
	LayoutVersion LayoutVersion `json:"layoutVersion" validate:"omitempty,oneof=v1 v2 v3 v5 v6"`
	Data          *LetterFields `json:"data" validate:"required"`
}

// Layout returns the requested layout version or DefaultLayout.
func (r *LetterRequest) Layout() LayoutVersion {
	if r.LayoutVersion == "" {
		return DefaultLayout
	}
	return r.LayoutVersion
}

// LetterFields is the form data substituted into a letter template.
type LetterFields struct {
	Ref  string `json:"ref"`
	Date string `json:"date"`

	CustomerTitle string `json:"customerTitle" validate:"required"`
	FirstName     string `json:"firstName" validate:"required"`
	Surname       string `json:"surname" validate:"required"`
	Address1      string `json:"address1" validate:"required"`
	Address2      string `json:"address2" validate:"required"`
	Address3      string `json:"address3,omitempty"`

	PolicyNo         string `json:"policyNo" validate:"required"`
	ApplicationDate  string `json:"applicationDate"`
	PolicyType       string `json:"policyType"`
	SumAssured       string `json:"sumAssured"`
	Term             string `json:"term"`
	CommencementDate string `json:"commencementDate"`
	Benefits         string `json:"benefits"`
	MonthlyPremium   string `json:"monthlyPremium" validate:"required_without=RevisedPremium"`
	RevisedPremium   string `json:"revisedPremium"`
	ExtraPremium     string `json:"extraPremium"`
	Remarks          string `json:"remarks"`
	Option1          string `json:"option1"`
	Option2          string `json:"option2"`
	ReturnDate       string `json:"returnDate"`

	SignerName    string `json:"signerName"`
	SignerTitle   string `json:"signerTitle"`
	SignerDetails string `json:"signerDetails"`
	SignatureFile string `json:"signatureFile"`

	AdvisorName   string `json:"advisorName"`
	AdvisorEmail  string `json:"advisorEmail" validate:"omitempty,email"`
	CustomerEmail string `json:"customerEmail,omitempty" validate:"omitempty,email"`

	IntroText     string `json:"introText"`
	ClosingText   string `json:"closingText"`
	AgreementText string `json:"agreementText"`
	AssuringText  string `json:"assuringText"`
}

// CustomerName is "<title> <first> <surname>" with blanks collapsed.
func (f *LetterFields) CustomerName() string {
	return strings.Join(strings.Fields(f.CustomerTitle+" "+f.FirstName+" "+f.Surname), " ")
}

// FileSafePolicyNo replaces path separators so the policy number can be used in file names.
func (f *LetterFields) FileSafePolicyNo() string {
	return strings.ReplaceAll(f.PolicyNo, "/", "_")
}

package render

import "github.com/policy-letter-api/internal/domain"

// Texts are the free-text paragraphs of a letter.
type Texts struct {
	Intro     string
	Closing   string
	Agreement string
	Assuring  string
}

const assuring = "Assuring you of our best services."

var defaultTexts = map[domain.LetterType]Texts{
	domain.LetterFormat1: {
		Intro:     "Please refer to your application for life assurance dated {applicationDate}, we wish to inform you that your life cover has been accepted as per details set below:",
		Closing:   "We should be grateful if you could confirm your acceptance to the above terms by signing and returning this letter by {returnDate}. After this date we shall conclude that you are agreeable with our terms and subsequently, the policy contract will be issued on Option 2.",
		Agreement: "I agree / do not agree with the terms and conditions as set above. Please proceed with Option...........",
		Assuring:  assuring,
	},
	domain.LetterFormat2: {
		Intro:     "Please refer to your application for life assurance. We wish to inform you that your life cover has been accepted as per details set below:",
		Closing:   "We should be grateful if you could confirm your acceptance to the above terms by signing and returning this letter by {returnDate} along with the outstanding balance and new standing order.",
		Agreement: "I agree / do not agree with the terms and conditions as set above. Please proceed with the issue/cancel of my life insurance policy.",
		Assuring:  assuring,
	},
}

// DefaultTexts returns the stock paragraphs for a letter type.
func DefaultTexts(t domain.LetterType) Texts {
	return defaultTexts[t]
}

// DefaultSignature is the signature image used when none is chosen.
func DefaultSignature(t domain.LetterType) string {
	if t == domain.LetterFormat2 {
		return "signature2.png"
	}
	return "signature1.png"
}

// Static image names in the asset source.
const (
	LogoFile     = "NICLOGO.jpg"
	MauCASFile   = "maucas2.jpeg"
	ZwennPayFile = "zwennPay.jpg"
)

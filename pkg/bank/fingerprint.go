package bank

// Kind distinguishes a positive (event of interest) fingerprint from a
// negative (known benign excursion) one.
type Kind int

const (
	// Positive fingerprints represent known events of interest; a match is
	// "good" under evaluation policies that scan the positive bank.
	Positive Kind = iota
	// Negative fingerprints represent known benign excursions; a match
	// suppresses the final match decision under policies that scan the
	// negative bank.
	Negative
)

func (k Kind) String() string {
	if k == Positive {
		return "positive"
	}
	return "negative"
}

// Fingerprint is a named, typed coefficient vector loaded from the bank
// directory.
type Fingerprint struct {
	// Name is the filename up to, but not including, the first '.'.
	Name string
	// Kind is derived from the name's leading character ('p' or 'n').
	Kind Kind
	// Coeffs is the loaded coefficient vector, possibly shorter than the
	// configured fingerprint length.
	Coeffs []float64
}

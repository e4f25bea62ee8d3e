// Package bank loads and holds the in-memory catalog of positive and
// negative fingerprint exemplars the matcher compares captured windows
// against.
package bank

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// MaxBank is the upper bound on the number of fingerprint files a bank will
// load from a single directory.
const MaxBank = 500

var (
	positivePattern = regexp.MustCompile(`^p_.*\.fpr.*$`)
	negativePattern = regexp.MustCompile(`^n_.*\.fpr.*$`)
)

// Bank is an ordered, read-only-after-construction catalog of fingerprints.
type Bank struct {
	fingerprints []Fingerprint
}

// Load scans dir for files matching `p_.*\.fpr.*` or `n_.*\.fpr.*`, parses
// each as a newline-separated list of reals, and returns the resulting Bank.
// length is the configured fingerprint length; fingerprints longer than it
// are accepted but flagged via the returned warnings.
func Load(dir string, length int) (*Bank, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, &Error{Op: "open directory " + dir, Err: err}
	}

	var candidates []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if positivePattern.MatchString(name) || negativePattern.MatchString(name) {
			candidates = append(candidates, name)
		}
	}

	if len(candidates) > MaxBank {
		return nil, nil, &Error{Op: "scan directory", Err: fmt.Errorf("too many candidate fingerprint files (%d > %d)", len(candidates), MaxBank)}
	}

	b := &Bank{fingerprints: make([]Fingerprint, 0, len(candidates))}
	var warnings []string

	for _, name := range candidates {
		fp, err := loadOne(dir, name)
		if err != nil {
			return nil, nil, err
		}
		if len(fp.Coeffs) > length {
			warnings = append(warnings, fmt.Sprintf("fingerprint %q has length %d, exceeds fingerprint_length %d", fp.Name, len(fp.Coeffs), length))
		}
		b.fingerprints = append(b.fingerprints, fp)
	}

	return b, warnings, nil
}

func loadOne(dir, name string) (Fingerprint, error) {
	path := filepath.Join(dir, name)
	f, err := os.Open(path)
	if err != nil {
		return Fingerprint{}, &Error{Op: "open file " + path, Err: err}
	}
	defer f.Close()

	dot := strings.Index(name, ".")
	patName := name
	if dot >= 0 {
		patName = name[:dot]
	}

	kind := Negative
	if strings.HasPrefix(name, "p") {
		kind = Positive
	}

	var coeffs []float64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return Fingerprint{}, &Error{Op: "parse fingerprint file " + path, Err: err}
		}
		coeffs = append(coeffs, v)
	}
	if err := scanner.Err(); err != nil {
		return Fingerprint{}, &Error{Op: "read fingerprint file " + path, Err: err}
	}

	return Fingerprint{Name: patName, Kind: kind, Coeffs: coeffs}, nil
}

// Len returns the number of loaded fingerprints.
func (b *Bank) Len() int {
	if b == nil {
		return 0
	}
	return len(b.fingerprints)
}

// All returns the fingerprints in the order they were loaded.
func (b *Bank) All() []Fingerprint {
	if b == nil {
		return nil
	}
	return b.fingerprints
}

// Empty returns an empty, ready-to-use Bank (no directory scanned).
func Empty() *Bank {
	return &Bank{}
}

// FromFingerprints builds a Bank directly from an already-loaded slice,
// preserving its order. Intended for tests and for callers assembling a bank
// from something other than a directory scan.
func FromFingerprints(fps []Fingerprint) *Bank {
	return &Bank{fingerprints: fps}
}
